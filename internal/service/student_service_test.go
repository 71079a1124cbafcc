package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/dto"
	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/internal/repository"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
)

type memoryStudentStore struct {
	records map[string]*models.StudentRecord
	byPRN   map[string]string
	byPhone map[string]string
}

func newMemoryStudentStore() *memoryStudentStore {
	return &memoryStudentStore{
		records: map[string]*models.StudentRecord{},
		byPRN:   map[string]string{},
		byPhone: map[string]string{},
	}
}

func (m *memoryStudentStore) Save(_ context.Context, record *models.StudentRecord) error {
	clone := *record
	m.records[record.UserID] = &clone
	return nil
}

func (m *memoryStudentStore) FindByUserID(_ context.Context, userID string) (*models.StudentRecord, error) {
	record, ok := m.records[userID]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *memoryStudentStore) List(_ context.Context) ([]models.StudentRecord, error) {
	out := make([]models.StudentRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, *record)
	}
	return out, nil
}

func (m *memoryStudentStore) Delete(_ context.Context, userID string) error {
	delete(m.records, userID)
	return nil
}

func (m *memoryStudentStore) SetPRNIndex(_ context.Context, prn, userID string) error {
	m.byPRN[prn] = userID
	return nil
}

func (m *memoryStudentStore) UserIDByPRN(_ context.Context, prn string) (string, error) {
	userID, ok := m.byPRN[prn]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return userID, nil
}

func (m *memoryStudentStore) DeletePRNIndex(_ context.Context, prn string) error {
	delete(m.byPRN, prn)
	return nil
}

func (m *memoryStudentStore) SetMobileIndex(_ context.Context, mobile, userID string) error {
	m.byPhone[mobile] = userID
	return nil
}

func (m *memoryStudentStore) UserIDByMobile(_ context.Context, mobile string) (string, error) {
	userID, ok := m.byPhone[mobile]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return userID, nil
}

func (m *memoryStudentStore) DeleteMobileIndex(_ context.Context, mobile string) error {
	delete(m.byPhone, mobile)
	return nil
}

type fakeIdentity struct {
	accounts map[string]*models.Account
	password map[string]string
	lastAuth string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]*models.Account{}, password: map[string]string{}}
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password, name, prn string) (*models.Account, error) {
	key := strings.ToLower(email)
	if _, exists := f.accounts[key]; exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	}
	account := &models.Account{
		ID:    "acct-" + prn,
		Email: key,
		Name:  name,
		Role:  models.RoleStudent,
		PRN:   prn,
	}
	f.accounts[key] = account
	f.password[key] = password
	return account, nil
}

func (f *fakeIdentity) Authenticate(_ context.Context, email, password string) (string, *models.Account, error) {
	key := strings.ToLower(email)
	f.lastAuth = key
	account, ok := f.accounts[key]
	if !ok || f.password[key] != password {
		return "", nil, appErrors.ErrInvalidCredentials
	}
	return "token-" + account.ID, account, nil
}

type fakePhotoStorage struct {
	saved   map[string][]byte
	deleted []string
}

func (f *fakePhotoStorage) Save(filename string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[filename] = data
	return filename, nil
}

func (f *fakePhotoStorage) Delete(filename string) error {
	f.deleted = append(f.deleted, filename)
	return nil
}

type fakeSigner struct{}

func (fakeSigner) Generate(ownerID, relPath string) (string, time.Time, error) {
	return ownerID + "." + relPath, time.Now().Add(time.Hour), nil
}

func (fakeSigner) Parse(token string, _ bool) (string, string, time.Time, error) {
	owner, rel, ok := strings.Cut(token, ".")
	if !ok {
		return "", "", time.Time{}, assert.AnError
	}
	return owner, rel, time.Now().Add(time.Hour), nil
}

func newTestStudentService(t *testing.T) (*StudentService, *memoryStudentStore, *fakeIdentity) {
	t.Helper()
	store := newMemoryStudentStore()
	identity := newFakeIdentity()
	svc := NewStudentService(store, identity, &fakePhotoStorage{}, fakeSigner{}, StudentServiceConfig{APIPrefix: "/api/v1"}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	svc.randInt = func(n int) int { return 33333 }
	return svc, store, identity
}

func validRegistration() dto.RegisterStudentRequest {
	return dto.RegisterStudentRequest{
		Email:    "asha@example.edu",
		Password: "s3cret-pass",
		StudentData: dto.StudentPayload{
			Name:         "Asha Kulkarni",
			PRN:          "2230001234",
			Course:       "CSE",
			Mobile:       "9876543210",
			ParentMobile: "9123456780",
			RollNumber:   "41",
			Gender:       "Female",
			BloodGroup:   "B+",
			Category:     "Open",
			DateOfBirth:  "14/08/2004",
			AdmittedYear: "2022",
		},
	}
}

func TestRegisterCreatesRecordAndIndexes(t *testing.T) {
	svc, store, identity := newTestStudentService(t)

	record, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "LIB2443333", record.LibraryNumber)
	assert.Equal(t, "acct-2230001234", record.UserID)
	assert.Equal(t, time.Date(2004, 8, 14, 0, 0, 0, 0, time.UTC), record.DateOfBirth)
	assert.Contains(t, identity.accounts, "asha@example.edu")

	assert.Equal(t, record.UserID, store.byPRN["2230001234"])
	assert.Equal(t, record.UserID, store.byPhone["9876543210"])
	stored, err := store.FindByUserID(context.Background(), record.UserID)
	require.NoError(t, err)
	assert.Equal(t, record.LibraryNumber, stored.LibraryNumber)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dto.RegisterStudentRequest)
		message string
	}{
		{"missing name", func(r *dto.RegisterStudentRequest) { r.StudentData.Name = "" }, "Name is required"},
		{"missing password", func(r *dto.RegisterStudentRequest) { r.Password = "" }, "Password is required"},
		{"bad email", func(r *dto.RegisterStudentRequest) { r.Email = "not-an-email" }, "Email address is not valid"},
		{"short prn", func(r *dto.RegisterStudentRequest) { r.StudentData.PRN = "12345" }, "PRN must be exactly 10 digits"},
		{"alpha mobile", func(r *dto.RegisterStudentRequest) { r.StudentData.Mobile = "98765abcde" }, "Mobile number must be exactly 10 digits"},
		{"bad dob format", func(r *dto.RegisterStudentRequest) { r.StudentData.DateOfBirth = "14-08-2004" }, "DD/MM/YYYY"},
		{"impossible dob", func(r *dto.RegisterStudentRequest) { r.StudentData.DateOfBirth = "31/02/2004" }, "DD/MM/YYYY"},
		{"future dob", func(r *dto.RegisterStudentRequest) { r.StudentData.DateOfBirth = "01/01/2030" }, "future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestStudentService(t)
			req := validRegistration()
			tt.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Contains(t, appErr.Message, tt.message)
		})
	}
}

func TestRegisterRejectsDuplicatePRNAndMobile(t *testing.T) {
	svc, _, _ := newTestStudentService(t)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Email = "other@example.edu"
	_, err = svc.Register(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	dup.StudentData.PRN = "2230009999"
	_, err = svc.Register(context.Background(), dup)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "mobile")
}

func TestLoginIdentifierResolution(t *testing.T) {
	svc, _, identity := newTestStudentService(t)
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	tests := []struct {
		name       string
		identifier string
	}{
		{"by email", "asha@example.edu"},
		{"by prn", "2230001234"},
		{"by mobile", "9876543210"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, account, err := svc.Login(context.Background(), tt.identifier, "s3cret-pass")
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, "asha@example.edu", account.Email)
			assert.Equal(t, "asha@example.edu", identity.lastAuth)
		})
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc, _, _ := newTestStudentService(t)

	_, _, err := svc.Login(context.Background(), "0000000000", "whatever")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestStudentService(t)
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "asha@example.edu", "wrong")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestUpdateMovesIndexes(t *testing.T) {
	svc, store, _ := newTestStudentService(t)
	record, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	newPRN := "2230005678"
	newMobile := "9000000001"
	updated, err := svc.Update(context.Background(), record.UserID, dto.UpdateStudentRequest{
		PRN:    &newPRN,
		Mobile: &newMobile,
	})
	require.NoError(t, err)

	assert.Equal(t, newPRN, updated.PRN)
	assert.Equal(t, record.LibraryNumber, updated.LibraryNumber)

	_, err = store.UserIDByPRN(context.Background(), "2230001234")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	userID, err := store.UserIDByPRN(context.Background(), newPRN)
	require.NoError(t, err)
	assert.Equal(t, record.UserID, userID)

	_, err = store.UserIDByMobile(context.Background(), "9876543210")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestUpdateUnknownStudent(t *testing.T) {
	svc, _, _ := newTestStudentService(t)

	name := "Nobody"
	_, err := svc.Update(context.Background(), "missing", dto.UpdateStudentRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteRemovesRecordAndIndexes(t *testing.T) {
	svc, store, _ := newTestStudentService(t)
	record, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), record.UserID))

	_, err = store.FindByUserID(context.Background(), record.UserID)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = store.UserIDByPRN(context.Background(), record.PRN)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = store.UserIDByMobile(context.Background(), record.Mobile)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	err = svc.Delete(context.Background(), record.UserID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUploadPhotoPatchesRecord(t *testing.T) {
	svc, store, _ := newTestStudentService(t)
	record, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	url, err := svc.UploadPhoto(context.Background(), record.UserID, []byte{0xFF, 0xD8, 0xFF}, "portrait.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/api/v1/photos/"), url)

	stored, err := store.FindByUserID(context.Background(), record.UserID)
	require.NoError(t, err)
	assert.Equal(t, url, stored.PhotoURL)
}

func TestDeleteRemovesStoredPhoto(t *testing.T) {
	store := newMemoryStudentStore()
	photos := &fakePhotoStorage{}
	svc := NewStudentService(store, newFakeIdentity(), photos, fakeSigner{}, StudentServiceConfig{APIPrefix: "/api/v1"}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	svc.randInt = func(n int) int { return 1 }

	record, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	_, err = svc.UploadPhoto(context.Background(), record.UserID, []byte{0xFF}, "p.jpg")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), record.UserID))
	require.Len(t, photos.deleted, 1)
	assert.Contains(t, photos.deleted[0], record.UserID)
}

func TestUploadPhotoRejectsEmptyInput(t *testing.T) {
	svc, _, _ := newTestStudentService(t)

	_, err := svc.UploadPhoto(context.Background(), "", nil, "x.jpg")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
