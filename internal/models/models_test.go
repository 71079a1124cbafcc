package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseDistributionPreservesInsertionOrder(t *testing.T) {
	dist := NewCourseDistribution()
	for _, course := range []string{"IT", "CSE", "IT", "BCA", "CSE", "IT"} {
		dist.Add(course)
	}

	raw, err := json.Marshal(dist)
	require.NoError(t, err)
	assert.Equal(t, `{"IT":3,"CSE":2,"BCA":1}`, string(raw))
	assert.Equal(t, 6, dist.Total())

	var restored CourseDistribution
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, dist.Entries(), restored.Entries())
}

func TestCourseDistributionIgnoresEmptyCourse(t *testing.T) {
	dist := NewCourseDistribution()
	dist.Add("")
	assert.Empty(t, dist.Entries())
}

func TestStudentFilterMatches(t *testing.T) {
	record := StudentRecord{
		Name: "Asha Kulkarni", PRN: "2230001234", Email: "asha@example.edu",
		LibraryNumber: "LIB2412345", Course: "CSE", AdmittedYear: "2022",
	}

	cases := []struct {
		name   string
		filter StudentFilter
		want   bool
	}{
		{"empty filter", StudentFilter{}, true},
		{"search by name fragment", StudentFilter{Search: "kulk"}, true},
		{"search by prn", StudentFilter{Search: "223000"}, true},
		{"search by library number", StudentFilter{Search: "lib24"}, true},
		{"search miss", StudentFilter{Search: "ravi"}, false},
		{"course match", StudentFilter{Course: "CSE"}, true},
		{"course mismatch", StudentFilter{Course: "IT"}, false},
		{"year mismatch", StudentFilter{Year: "2023"}, false},
		{"all terms must hold", StudentFilter{Search: "asha", Course: "CSE", Year: "2022"}, true},
		{"search hit but wrong course", StudentFilter{Search: "asha", Course: "IT"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(record))
		})
	}
}

func TestStudentRecordJSONShape(t *testing.T) {
	raw, err := json.Marshal(StudentRecord{UserID: "u1", Name: "Asha"})
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"userId":"u1"`)
	// An unset photo never serialises as an empty string.
	assert.NotContains(t, string(raw), "photoUrl")
}
