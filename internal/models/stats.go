package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CourseCount is one entry of the course distribution.
type CourseCount struct {
	Course string
	Count  int
}

// CourseDistribution maps course code to student count while preserving
// first-seen order, which plain Go maps cannot guarantee.
type CourseDistribution struct {
	entries []CourseCount
	index   map[string]int
}

// NewCourseDistribution returns an empty distribution.
func NewCourseDistribution() *CourseDistribution {
	return &CourseDistribution{index: make(map[string]int)}
}

// Add increments the count for the given course, appending it on first sight.
func (d *CourseDistribution) Add(course string) {
	if course == "" {
		return
	}
	if i, ok := d.index[course]; ok {
		d.entries[i].Count++
		return
	}
	d.index[course] = len(d.entries)
	d.entries = append(d.entries, CourseCount{Course: course, Count: 1})
}

// Entries returns the distribution in insertion order.
func (d *CourseDistribution) Entries() []CourseCount {
	return d.entries
}

// Total sums all counts.
func (d *CourseDistribution) Total() int {
	total := 0
	for _, e := range d.entries {
		total += e.Count
	}
	return total
}

// MarshalJSON renders a JSON object with keys in insertion order.
func (d *CourseDistribution) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Course)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(e.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a distribution; key order follows the document.
func (d *CourseDistribution) UnmarshalJSON(data []byte) error {
	d.entries = nil
	d.index = make(map[string]int)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var count int
		if err := dec.Decode(&count); err != nil {
			return err
		}
		d.index[key] = len(d.entries)
		d.entries = append(d.entries, CourseCount{Course: key, Count: count})
	}
	_, err = dec.Token()
	return err
}

// DashboardStats summarises the current record set.
type DashboardStats struct {
	TotalStudents      int                 `json:"totalStudents"`
	NewRegistrations   int                 `json:"newRegistrations"`
	CourseDistribution *CourseDistribution `json:"courseDistribution"`
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
