package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/models"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
	"github.com/noah-isme/library-portal-api/pkg/export"
)

// exportColumns is the spreadsheet layout, widths running parallel.
var exportColumns = []string{
	"Branch", "PRN", "Name", "Phone Number", "Library Number", "Email",
	"Admitted Year", "Roll Number", "Gender", "Blood Group", "Category",
	"Date of Birth", "Parent Mobile", "Permanent Address", "Local Address",
	"Registration Date",
}

var exportColumnWidths = []float64{12, 15, 25, 15, 18, 30, 15, 15, 10, 12, 12, 15, 15, 40, 40, 18}

type spreadsheetRenderer interface {
	Render(data export.Dataset, sheetName string) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type idCardRenderer interface {
	Render(cards []export.IDCard) ([]byte, error)
}

// ExportResult is a rendered download.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders the filtered record set as a spreadsheet, a CSV
// fallback or a printable ID card batch.
type ExportService struct {
	records recordLister
	xlsx    spreadsheetRenderer
	csv     csvRenderer
	cards   idCardRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(records recordLister, xlsx spreadsheetRenderer, csv csvRenderer, cards idCardRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		records: records,
		xlsx:    xlsx,
		csv:     csv,
		cards:   cards,
		logger:  logger,
		now:     time.Now,
	}
}

// Spreadsheet renders the filtered records as an XLSX workbook. When the
// workbook renderer fails, the same dataset is retried as CSV so the
// download still succeeds.
func (s *ExportService) Spreadsheet(ctx context.Context, filter models.StudentFilter) (*ExportResult, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := buildDataset(records)
	stamp := s.now().Format("2006-01-02")

	data, err := s.xlsx.Render(dataset, "Students")
	if err != nil {
		s.logger.Warn("xlsx render failed, falling back to csv", zap.Error(err))
		return s.renderCSV(dataset, stamp)
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("library_students_%s.xlsx", stamp),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

// CSV renders the filtered records as force-quoted CSV.
func (s *ExportService) CSV(ctx context.Context, filter models.StudentFilter) (*ExportResult, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.renderCSV(buildDataset(records), s.now().Format("2006-01-02"))
}

// IDCards renders a printable PDF batch for the filtered records.
func (s *ExportService) IDCards(ctx context.Context, filter models.StudentFilter) (*ExportResult, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no students match the export filter")
	}

	cards := make([]export.IDCard, len(records))
	for i, record := range records {
		cards[i] = export.IDCard{
			Name:          record.Name,
			PRN:           record.PRN,
			LibraryNumber: record.LibraryNumber,
			Course:        record.Course,
			Gender:        orPlaceholder(record.Gender),
			BloodGroup:    orPlaceholder(record.BloodGroup),
			DateOfBirth:   formatDate(record.DateOfBirth),
			Mobile:        record.Mobile,
			Address:       cardAddress(record),
			PhotoURL:      record.PhotoURL,
		}
	}

	data, err := s.cards.Render(cards)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render id cards")
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("library_id_cards_%s.pdf", s.now().Format("2006-01-02")),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

func (s *ExportService) renderCSV(dataset export.Dataset, stamp string) (*ExportResult, error) {
	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("library_students_%s.csv", stamp),
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

func (s *ExportService) filtered(ctx context.Context, filter models.StudentFilter) ([]models.StudentRecord, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	out := records[:0:0]
	for _, record := range records {
		if filter.Matches(record) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func buildDataset(records []models.StudentRecord) export.Dataset {
	rows := make([]map[string]string, len(records))
	for i, record := range records {
		rows[i] = map[string]string{
			"Branch":            orPlaceholder(record.Course),
			"PRN":               orPlaceholder(record.PRN),
			"Name":              orPlaceholder(record.Name),
			"Phone Number":      orPlaceholder(record.Mobile),
			"Library Number":    orPlaceholder(record.LibraryNumber),
			"Email":             orPlaceholder(record.Email),
			"Admitted Year":     orPlaceholder(record.AdmittedYear),
			"Roll Number":       orPlaceholder(record.RollNumber),
			"Gender":            orPlaceholder(record.Gender),
			"Blood Group":       orPlaceholder(record.BloodGroup),
			"Category":          orPlaceholder(record.Category),
			"Date of Birth":     formatDate(record.DateOfBirth),
			"Parent Mobile":     orPlaceholder(record.ParentMobile),
			"Permanent Address": orPlaceholder(record.PermanentAddress),
			"Local Address":     orPlaceholder(record.LocalAddress),
			"Registration Date": formatDate(record.RegistrationDate),
		}
	}
	return export.Dataset{
		Headers:      exportColumns,
		ColumnWidths: exportColumnWidths,
		Rows:         rows,
	}
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}

// cardAddress prefers the permanent address and falls back to the local one.
func cardAddress(record models.StudentRecord) string {
	if strings.TrimSpace(record.PermanentAddress) != "" {
		return record.PermanentAddress
	}
	if strings.TrimSpace(record.LocalAddress) != "" {
		return record.LocalAddress
	}
	return "Not provided"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02/01/2006")
}

type tokenParser interface {
	Parse(token string, allowExpired bool) (ownerID, relPath string, expiresAt time.Time, err error)
}

type photoOpener interface {
	Open(filename string) (*os.File, error)
}

// StoragePhotoLoader resolves card photo URLs. Tokens minted by this
// service are read straight from local storage; anything else is fetched
// over HTTP.
type StoragePhotoLoader struct {
	storage photoOpener
	signer  tokenParser
	client  *http.Client
	logger  *zap.Logger
}

// NewStoragePhotoLoader constructs the loader.
func NewStoragePhotoLoader(storage photoOpener, signer tokenParser, logger *zap.Logger) *StoragePhotoLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoragePhotoLoader{
		storage: storage,
		signer:  signer,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Load implements export.PhotoLoader.
func (l *StoragePhotoLoader) Load(url string) ([]byte, string, error) {
	if idx := strings.Index(url, "/photos/"); idx >= 0 {
		token := url[idx+len("/photos/"):]
		// Card batches outlive URL expiry; the signature still has to hold.
		if _, relPath, _, err := l.signer.Parse(token, true); err == nil {
			return l.loadLocal(relPath)
		}
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, "", fmt.Errorf("unresolvable photo url %q", url)
	}

	resp, err := l.client.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch photo: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, "", fmt.Errorf("read photo body: %w", err)
	}
	return data, imageTypeFor(url, resp.Header.Get("Content-Type")), nil
}

func (l *StoragePhotoLoader) loadLocal(relPath string) ([]byte, string, error) {
	f, err := l.storage.Open(relPath)
	if err != nil {
		return nil, "", fmt.Errorf("open stored photo: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read stored photo: %w", err)
	}
	return data, imageTypeFor(relPath, ""), nil
}

func imageTypeFor(name, contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "PNG"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "JPG"
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "PNG"
	default:
		return "JPG"
	}
}
