package export

// Dataset defines tabular export content. ColumnWidths, when present, runs
// parallel to Headers and is honoured by renderers that support sizing.
type Dataset struct {
	Headers      []string
	ColumnWidths []float64
	Rows         []map[string]string
}
