package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/dto"
	"github.com/noah-isme/library-portal-api/internal/middleware"
	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/internal/service"
	"github.com/noah-isme/library-portal-api/pkg/config"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStudents struct {
	registerErr error
	loginErr    error
	records     []models.StudentRecord
	deleted     []string
	photoURL    string
}

func (f *fakeStudents) Register(_ context.Context, req dto.RegisterStudentRequest) (*models.StudentRecord, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.StudentRecord{
		UserID:        "u1",
		Name:          req.StudentData.Name,
		PRN:           req.StudentData.PRN,
		LibraryNumber: "LIB2412345",
	}, nil
}

func (f *fakeStudents) Login(context.Context, string, string) (string, *models.Account, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "issued-token", &models.Account{ID: "u1", Email: "asha@example.edu", Name: "Asha", Role: models.RoleStudent}, nil
}

func (f *fakeStudents) Profile(_ context.Context, userID string) (*models.StudentRecord, error) {
	for i := range f.records {
		if f.records[i].UserID == userID {
			return &f.records[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student data not found")
}

func (f *fakeStudents) ListAll(context.Context) ([]models.StudentRecord, error) {
	return f.records, nil
}

func (f *fakeStudents) Update(_ context.Context, userID string, req dto.UpdateStudentRequest) (*models.StudentRecord, error) {
	record, err := f.Profile(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		record.Name = *req.Name
	}
	return record, nil
}

func (f *fakeStudents) Delete(_ context.Context, userID string) error {
	if _, err := f.Profile(context.Background(), userID); err != nil {
		return err
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeStudents) UploadPhoto(_ context.Context, userID string, data []byte, fileName string) (string, error) {
	if len(data) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "missing file or user ID")
	}
	return f.photoURL, nil
}

func asUser(claims *models.TokenClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, claims)
		c.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterStudentEndpoint(t *testing.T) {
	h := NewAuthHandler(&fakeStudents{}, config.LibrarianConfig{}, service.NewMetricsService())
	r := gin.New()
	r.POST("/register-student", h.RegisterStudent)

	w := doJSON(t, r, http.MethodPost, "/register-student", dto.RegisterStudentRequest{
		Email:    "asha@example.edu",
		Password: "pass",
		StudentData: dto.StudentPayload{
			Name: "Asha", PRN: "2230001234", Mobile: "9876543210",
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.RegisterStudentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "LIB2412345", resp.LibraryNumber)
	assert.Equal(t, "u1", resp.UserID)
}

func TestRegisterStudentConflict(t *testing.T) {
	h := NewAuthHandler(&fakeStudents{registerErr: appErrors.ErrConflict}, config.LibrarianConfig{}, nil)
	r := gin.New()
	r.POST("/register-student", h.RegisterStudent)

	w := doJSON(t, r, http.MethodPost, "/register-student", dto.RegisterStudentRequest{Email: "x@y.z", Password: "p"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestLoginEndpoint(t *testing.T) {
	h := NewAuthHandler(&fakeStudents{}, config.LibrarianConfig{}, nil)
	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/login", dto.LoginRequest{Identifier: "2230001234", Password: "pass"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "issued-token", resp.AccessToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
}

func TestLoginRequiresIdentifier(t *testing.T) {
	h := NewAuthHandler(&fakeStudents{}, config.LibrarianConfig{}, nil)
	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/login", map[string]string{"password": "pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLibrarianLogin(t *testing.T) {
	librarian := config.LibrarianConfig{Email: "librarian@college.edu", Password: "console-pass"}

	cases := []struct {
		name string
		req  dto.LibrarianLoginRequest
		want int
	}{
		{"valid pair", dto.LibrarianLoginRequest{Email: "librarian@college.edu", Password: "console-pass"}, http.StatusOK},
		{"case-insensitive email", dto.LibrarianLoginRequest{Email: "Librarian@College.EDU", Password: "console-pass"}, http.StatusOK},
		{"wrong password", dto.LibrarianLoginRequest{Email: "librarian@college.edu", Password: "nope"}, http.StatusUnauthorized},
		{"wrong email", dto.LibrarianLoginRequest{Email: "other@college.edu", Password: "console-pass"}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeStudents{}, librarian, nil)
			r := gin.New()
			r.POST("/librarian-login", h.LibrarianLogin)

			w := doJSON(t, r, http.MethodPost, "/librarian-login", tc.req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), models.RoleLibrarian)
			}
		})
	}
}

func TestLibrarianLoginUnconfigured(t *testing.T) {
	h := NewAuthHandler(&fakeStudents{}, config.LibrarianConfig{}, nil)
	r := gin.New()
	r.POST("/librarian-login", h.LibrarianLogin)

	w := doJSON(t, r, http.MethodPost, "/librarian-login", dto.LibrarianLoginRequest{Email: "a@b.c", Password: "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func studentFixture() models.StudentRecord {
	return models.StudentRecord{
		UserID: "u1", Name: "Asha Kulkarni", PRN: "2230001234",
		LibraryNumber: "LIB2412345", Course: "CSE", Email: "asha@example.edu",
	}
}

func TestProfileEndpoint(t *testing.T) {
	students := &fakeStudents{records: []models.StudentRecord{studentFixture()}}
	h := NewStudentHandler(students, nil, nil, zap.NewNop())
	r := gin.New()
	r.GET("/student-profile", asUser(&models.TokenClaims{UserID: "u1"}), h.Profile)

	w := doJSON(t, r, http.MethodGet, "/student-profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "LIB2412345")
}

func TestProfileMissingRecord(t *testing.T) {
	h := NewStudentHandler(&fakeStudents{}, nil, nil, zap.NewNop())
	r := gin.New()
	r.GET("/student-profile", asUser(&models.TokenClaims{UserID: "ghost"}), h.Profile)

	w := doJSON(t, r, http.MethodGet, "/student-profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListStudentsEmptyIsArray(t *testing.T) {
	h := NewStudentHandler(&fakeStudents{}, nil, nil, zap.NewNop())
	r := gin.New()
	r.GET("/students", h.List)

	w := doJSON(t, r, http.MethodGet, "/students", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"students":[]`)
}

func TestUpdateStudentEndpoint(t *testing.T) {
	students := &fakeStudents{records: []models.StudentRecord{studentFixture()}}
	h := NewStudentHandler(students, nil, nil, zap.NewNop())
	r := gin.New()
	r.PUT("/student/:userId", h.Update)

	w := doJSON(t, r, http.MethodPut, "/student/u1", map[string]string{"name": "Asha K."})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asha K.")

	w = doJSON(t, r, http.MethodPut, "/student/ghost", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteStudentEndpoint(t *testing.T) {
	students := &fakeStudents{records: []models.StudentRecord{studentFixture()}}
	h := NewStudentHandler(students, nil, nil, zap.NewNop())
	r := gin.New()
	r.DELETE("/student/:userId", h.Delete)

	w := doJSON(t, r, http.MethodDelete, "/student/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"u1"}, students.deleted)
}

func TestUploadPhotoEndpoint(t *testing.T) {
	students := &fakeStudents{records: []models.StudentRecord{studentFixture()}, photoURL: "/api/v1/photos/tok"}
	h := NewStudentHandler(students, nil, nil, zap.NewNop())
	r := gin.New()
	r.POST("/upload-photo", h.UploadPhoto)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("userId", "u1"))
	part, err := mw.CreateFormFile("photo", "portrait.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-photo", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/photos/tok")
}

func TestUploadPhotoMissingFile(t *testing.T) {
	h := NewStudentHandler(&fakeStudents{}, nil, nil, zap.NewNop())
	r := gin.New()
	r.POST("/upload-photo", h.UploadPhoto)

	w := doJSON(t, r, http.MethodPost, "/upload-photo", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeParser struct {
	relPath string
	err     error
}

func (p fakeParser) Parse(string, bool) (string, string, time.Time, error) {
	return "u1", p.relPath, time.Now().Add(time.Hour), p.err
}

type dirOpener struct{ dir string }

func (d dirOpener) Open(filename string) (*os.File, error) {
	return os.Open(d.dir + "/" + filename)
}

func TestServePhoto(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/u1-1.jpg", []byte("jpeg-bytes"), 0o644))

	h := NewStudentHandler(&fakeStudents{}, fakeParser{relPath: "u1-1.jpg"}, dirOpener{dir: dir}, zap.NewNop())
	r := gin.New()
	r.GET("/photos/:token", h.ServePhoto)

	w := doJSON(t, r, http.MethodGet, "/photos/whatever", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg-bytes", w.Body.String())
}

func TestServePhotoRejectsBadToken(t *testing.T) {
	h := NewStudentHandler(&fakeStudents{}, fakeParser{err: assert.AnError}, dirOpener{}, zap.NewNop())
	r := gin.New()
	r.GET("/photos/:token", h.ServePhoto)

	w := doJSON(t, r, http.MethodGet, "/photos/expired", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type fakeExports struct {
	lastFilter models.StudentFilter
	lastKind   string
}

func (f *fakeExports) result(kind, name, contentType string) (*service.ExportResult, error) {
	f.lastKind = kind
	return &service.ExportResult{FileName: name, ContentType: contentType, Data: []byte(kind)}, nil
}

func (f *fakeExports) Spreadsheet(_ context.Context, filter models.StudentFilter) (*service.ExportResult, error) {
	f.lastFilter = filter
	return f.result("xlsx", "students.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (f *fakeExports) CSV(_ context.Context, filter models.StudentFilter) (*service.ExportResult, error) {
	f.lastFilter = filter
	return f.result("csv", "students.csv", "text/csv")
}

func (f *fakeExports) IDCards(_ context.Context, filter models.StudentFilter) (*service.ExportResult, error) {
	f.lastFilter = filter
	return f.result("idcards", "cards.pdf", "application/pdf")
}

func TestExportDownloadFormats(t *testing.T) {
	exports := &fakeExports{}
	h := NewExportHandler(exports, service.NewMetricsService())
	r := gin.New()
	r.GET("/students/export", h.Download)

	cases := []struct {
		query    string
		wantKind string
		wantName string
	}{
		{"", "xlsx", "students.xlsx"},
		{"?format=csv", "csv", "students.csv"},
		{"?format=idcards&course=CSE&year=2022", "idcards", "cards.pdf"},
	}

	for _, tc := range cases {
		w := doJSON(t, r, http.MethodGet, "/students/export"+tc.query, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tc.wantKind, exports.lastKind)
		assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), tc.wantName))
	}
	assert.Equal(t, "CSE", exports.lastFilter.Course)
	assert.Equal(t, "2022", exports.lastFilter.Year)
}

func TestExportDownloadUnknownFormat(t *testing.T) {
	h := NewExportHandler(&fakeExports{}, nil)
	r := gin.New()
	r.GET("/students/export", h.Download)

	w := doJSON(t, r, http.MethodGet, "/students/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	dist := models.NewCourseDistribution()
	dist.Add("CSE")
	h := NewDashboardHandler(staticStats{stats: &models.DashboardStats{TotalStudents: 1, CourseDistribution: dist}})
	r := gin.New()
	r.GET("/dashboard-stats", h.Stats)

	w := doJSON(t, r, http.MethodGet, "/dashboard-stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalStudents":1`)
	assert.Contains(t, w.Body.String(), `"CSE":1`)
}

type staticStats struct {
	stats *models.DashboardStats
}

func (s staticStats) Stats(context.Context) (*models.DashboardStats, error) {
	return s.stats, nil
}
