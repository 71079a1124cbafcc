package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/pkg/export"
	"github.com/noah-isme/library-portal-api/pkg/storage"
)

type failingXLSX struct{}

func (failingXLSX) Render(export.Dataset, string) ([]byte, error) {
	return nil, errors.New("workbook renderer broken")
}

type capturingCards struct {
	got []export.IDCard
}

func (c *capturingCards) Render(cards []export.IDCard) ([]byte, error) {
	c.got = cards
	return []byte("%PDF-stub"), nil
}

func exportFixtures() []models.StudentRecord {
	reg := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return []models.StudentRecord{
		{
			UserID: "u1", Name: "Asha Kulkarni", PRN: "2230001234", LibraryNumber: "LIB2410001",
			Course: "CSE", Email: "asha@example.edu", Mobile: "9876543210", AdmittedYear: "2022",
			Gender: "Female", PermanentAddress: "12 MG Road, Pune",
			DateOfBirth: time.Date(2004, 8, 14, 0, 0, 0, 0, time.UTC), RegistrationDate: reg,
		},
		{
			UserID: "u2", Name: "Ravi Jadhav", PRN: "2230005678", LibraryNumber: "LIB2410002",
			Course: "IT", Email: "ravi@example.edu", Mobile: "9000000001", AdmittedYear: "2023",
			RegistrationDate: reg,
		},
	}
}

func TestExportCSVPlaceholdersAndFilter(t *testing.T) {
	svc := NewExportService(staticLister{records: exportFixtures()}, NewXLSXStub(), export.NewCSVExporter(), nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	result, err := svc.CSV(context.Background(), models.StudentFilter{Course: "IT"})
	require.NoError(t, err)

	assert.Equal(t, "library_students_2024-06-01.csv", result.FileName)
	body := string(result.Data)
	assert.Contains(t, body, `"Ravi Jadhav"`)
	assert.NotContains(t, body, "Asha")
	// Ravi has no roll number, blood group or date of birth on record.
	assert.Contains(t, body, `"N/A"`)

	lines := strings.Split(strings.TrimSpace(body), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t, len(exportColumns), strings.Count(lines[0], `","`)+1)
}

func TestExportSpreadsheetFallsBackToCSV(t *testing.T) {
	svc := NewExportService(staticLister{records: exportFixtures()}, failingXLSX{}, export.NewCSVExporter(), nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	result, err := svc.Spreadsheet(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, "library_students_2024-06-01.csv", result.FileName)
	assert.Contains(t, result.ContentType, "text/csv")
}

func TestExportSpreadsheetXLSX(t *testing.T) {
	svc := NewExportService(staticLister{records: exportFixtures()}, export.NewXLSXExporter(), export.NewCSVExporter(), nil, zap.NewNop())

	result, err := svc.Spreadsheet(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.FileName, ".xlsx"))
	assert.NotEmpty(t, result.Data)
}

func TestExportIDCards(t *testing.T) {
	cards := &capturingCards{}
	svc := NewExportService(staticLister{records: exportFixtures()}, nil, nil, cards, zap.NewNop())

	result, err := svc.IDCards(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	require.Len(t, cards.got, 2)
	// Records sort by name, so Asha renders first.
	assert.Equal(t, "LIB2410001", cards.got[0].LibraryNumber)
	assert.Equal(t, "14/08/2004", cards.got[0].DateOfBirth)
	assert.Equal(t, "Female", cards.got[0].Gender)
	assert.Equal(t, "9876543210", cards.got[0].Mobile)
	assert.Equal(t, "12 MG Road, Pune", cards.got[0].Address)
	assert.Equal(t, "N/A", cards.got[1].BloodGroup)
	assert.Equal(t, "Not provided", cards.got[1].Address)
}

func TestExportIDCardsEmptySelection(t *testing.T) {
	svc := NewExportService(staticLister{}, nil, nil, &capturingCards{}, zap.NewNop())

	_, err := svc.IDCards(context.Background(), models.StudentFilter{})
	require.Error(t, err)
}

func TestStoragePhotoLoaderLocalToken(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save("u1-123.png", []byte("png-bytes"))
	require.NoError(t, err)

	signer := storage.NewSignedURLSigner("photo-secret", time.Hour)
	token, _, err := signer.Generate("u1", "u1-123.png")
	require.NoError(t, err)

	loader := NewStoragePhotoLoader(store, signer, zap.NewNop())
	data, imageType, err := loader.Load("/api/v1/photos/" + token)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "PNG", imageType)
}

func TestStoragePhotoLoaderRejectsUnknownScheme(t *testing.T) {
	signer := storage.NewSignedURLSigner("photo-secret", time.Hour)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	loader := NewStoragePhotoLoader(store, signer, zap.NewNop())
	_, _, err = loader.Load("ftp://elsewhere/photo.jpg")
	require.Error(t, err)
}

// NewXLSXStub returns a renderer that always succeeds with empty bytes,
// for paths where workbook content is not under test.
func NewXLSXStub() spreadsheetRenderer { return xlsxStub{} }

type xlsxStub struct{}

func (xlsxStub) Render(export.Dataset, string) ([]byte, error) { return []byte("xlsx"), nil }
