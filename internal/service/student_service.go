package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/dto"
	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/internal/repository"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
)

type studentStore interface {
	Save(ctx context.Context, record *models.StudentRecord) error
	FindByUserID(ctx context.Context, userID string) (*models.StudentRecord, error)
	List(ctx context.Context) ([]models.StudentRecord, error)
	Delete(ctx context.Context, userID string) error
	SetPRNIndex(ctx context.Context, prn, userID string) error
	UserIDByPRN(ctx context.Context, prn string) (string, error)
	DeletePRNIndex(ctx context.Context, prn string) error
	SetMobileIndex(ctx context.Context, mobile, userID string) error
	UserIDByMobile(ctx context.Context, mobile string) (string, error)
	DeleteMobileIndex(ctx context.Context, mobile string) error
}

type identityGateway interface {
	CreateAccount(ctx context.Context, email, password, name, prn string) (*models.Account, error)
	Authenticate(ctx context.Context, email, password string) (string, *models.Account, error)
}

type photoStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

type photoSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (ownerID, relPath string, expiresAt time.Time, err error)
}

var (
	tenDigits = regexp.MustCompile(`^\d{10}$`)
	validate  = validator.New()
)

// StudentServiceConfig tunes URL construction for stored photos.
type StudentServiceConfig struct {
	APIPrefix string
}

// StudentService implements registration, login resolution and record
// management over the key-value store.
type StudentService struct {
	records  studentStore
	identity identityGateway
	photos   photoStorage
	signer   photoSigner
	logger   *zap.Logger
	cfg      StudentServiceConfig
	now      func() time.Time
	randInt  func(n int) int
}

// NewStudentService constructs the student service.
func NewStudentService(records studentStore, identity identityGateway, photos photoStorage, signer photoSigner, cfg StudentServiceConfig, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &StudentService{
		records:  records,
		identity: identity,
		photos:   photos,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		randInt:  rand.Intn,
	}
}

// Register creates the identity account, generates the library number and
// writes the primary record plus both lookup indexes, in that order.
func (s *StudentService) Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.StudentRecord, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	dob, err := ParseDateOfBirth(req.StudentData.DateOfBirth, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.records.UserIDByPRN(ctx, req.StudentData.PRN); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this PRN is already registered")
	} else if !errors.Is(err, repository.ErrKeyNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check PRN index")
	}
	if _, err := s.records.UserIDByMobile(ctx, req.StudentData.Mobile); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this mobile number is already registered")
	} else if !errors.Is(err, repository.ErrKeyNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mobile index")
	}

	account, err := s.identity.CreateAccount(ctx, req.Email, req.Password, req.StudentData.Name, req.StudentData.PRN)
	if err != nil {
		return nil, err
	}

	record := &models.StudentRecord{
		UserID:           account.ID,
		Name:             req.StudentData.Name,
		PRN:              req.StudentData.PRN,
		LibraryNumber:    s.generateLibraryNumber(),
		Course:           req.StudentData.Course,
		Email:            req.Email,
		Mobile:           req.StudentData.Mobile,
		ParentMobile:     req.StudentData.ParentMobile,
		RollNumber:       req.StudentData.RollNumber,
		Gender:           req.StudentData.Gender,
		BloodGroup:       req.StudentData.BloodGroup,
		Category:         req.StudentData.Category,
		DateOfBirth:      dob,
		AdmittedYear:     req.StudentData.AdmittedYear,
		PermanentAddress: req.StudentData.PermanentAddress,
		LocalAddress:     req.StudentData.LocalAddress,
		RegistrationDate: s.now().UTC(),
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist student record")
	}
	if err := s.records.SetPRNIndex(ctx, record.PRN, record.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write PRN index")
	}
	if err := s.records.SetMobileIndex(ctx, record.Mobile, record.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write mobile index")
	}

	return record, nil
}

// Login resolves the identifier to an email and authenticates. Identifiers
// without an '@' are tried as a 10-digit PRN, then as a mobile number.
// PRNs and mobile numbers are both 10 digits, so a PRN-index miss still
// falls through to the mobile index.
func (s *StudentService) Login(ctx context.Context, identifier, password string) (string, *models.Account, error) {
	email := identifier

	if !strings.Contains(identifier, "@") {
		var (
			userID string
			err    error
		)
		if tenDigits.MatchString(identifier) {
			userID, err = s.records.UserIDByPRN(ctx, identifier)
			if errors.Is(err, repository.ErrKeyNotFound) {
				userID, err = s.records.UserIDByMobile(ctx, identifier)
			}
		} else {
			userID, err = s.records.UserIDByMobile(ctx, identifier)
		}
		if err != nil {
			if errors.Is(err, repository.ErrKeyNotFound) {
				return "", nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
			}
			return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve identifier")
		}

		record, err := s.records.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrKeyNotFound) {
				return "", nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
			}
			return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
		}
		email = record.Email
	}

	return s.identity.Authenticate(ctx, email, password)
}

// Profile returns the record belonging to the given account.
func (s *StudentService) Profile(ctx context.Context, userID string) (*models.StudentRecord, error) {
	record, err := s.records.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student data not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}
	return record, nil
}

// ListAll returns every student record, index entries excluded.
func (s *StudentService) ListAll(ctx context.Context) ([]models.StudentRecord, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return records, nil
}

// Update merges the supplied fields into the existing record. Format
// constraints are intentionally not re-validated on this path; the lookup
// indexes are moved when the PRN or mobile number changes.
func (s *StudentService) Update(ctx context.Context, userID string, req dto.UpdateStudentRequest) (*models.StudentRecord, error) {
	record, err := s.records.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}

	oldPRN, oldMobile := record.PRN, record.Mobile

	applyString(&record.Name, req.Name)
	applyString(&record.PRN, req.PRN)
	applyString(&record.Email, req.Email)
	applyString(&record.Mobile, req.Mobile)
	applyString(&record.ParentMobile, req.ParentMobile)
	applyString(&record.RollNumber, req.RollNumber)
	applyString(&record.Course, req.Course)
	applyString(&record.AdmittedYear, req.AdmittedYear)
	applyString(&record.Gender, req.Gender)
	applyString(&record.BloodGroup, req.BloodGroup)
	applyString(&record.Category, req.Category)
	applyString(&record.PermanentAddress, req.PermanentAddress)
	applyString(&record.LocalAddress, req.LocalAddress)

	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseDateLenient(*req.DateOfBirth)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date of birth is not a recognisable date")
		}
		record.DateOfBirth = dob
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist student record")
	}

	if record.PRN != oldPRN {
		if err := s.records.DeletePRNIndex(ctx, oldPRN); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop old PRN index")
		}
		if err := s.records.SetPRNIndex(ctx, record.PRN, userID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write PRN index")
		}
	}
	if record.Mobile != oldMobile {
		if err := s.records.DeleteMobileIndex(ctx, oldMobile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop old mobile index")
		}
		if err := s.records.SetMobileIndex(ctx, record.Mobile, userID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write mobile index")
		}
	}

	return record, nil
}

// Delete removes the primary record together with both lookup indexes.
func (s *StudentService) Delete(ctx context.Context, userID string) error {
	record, err := s.records.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}

	if err := s.records.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student record")
	}
	if err := s.records.DeletePRNIndex(ctx, record.PRN); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete PRN index")
	}
	if err := s.records.DeleteMobileIndex(ctx, record.Mobile); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete mobile index")
	}

	s.removeStoredPhoto(record.PhotoURL)
	return nil
}

// removeStoredPhoto drops the binary behind a photo URL minted by this
// service. Cleanup failures only log; the record deletion already went
// through.
func (s *StudentService) removeStoredPhoto(photoURL string) {
	idx := strings.Index(photoURL, "/photos/")
	if idx < 0 {
		return
	}
	_, relPath, _, err := s.signer.Parse(photoURL[idx+len("/photos/"):], true)
	if err != nil {
		return
	}
	if err := s.photos.Delete(relPath); err != nil {
		s.logger.Warn("failed to remove stored photo", zap.String("file", relPath), zap.Error(err))
	}
}

// UploadPhoto stores the binary, signs a retrieval URL and patches the
// record. The patch is a second step: when it fails, the stored binary is
// left behind and the failure is surfaced to the caller.
func (s *StudentService) UploadPhoto(ctx context.Context, userID string, data []byte, fileName string) (string, error) {
	if userID == "" || len(data) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "missing file or user ID")
	}

	record, err := s.records.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}

	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if ext == "" {
		ext = "jpg"
	}
	storedName := fmt.Sprintf("%s-%d.%s", userID, s.now().UnixMilli(), ext)

	if _, err := s.photos.Save(storedName, data); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}

	token, _, err := s.signer.Generate(userID, storedName)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo URL")
	}
	photoURL := fmt.Sprintf("%s/photos/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)

	record.PhotoURL = photoURL
	if err := s.records.Save(ctx, record); err != nil {
		s.logger.Warn("photo stored but record patch failed, binary left unlinked",
			zap.String("user_id", userID), zap.String("file", storedName), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link photo to record")
	}

	return photoURL, nil
}

func (s *StudentService) generateLibraryNumber() string {
	year := s.now().Format("06")
	return fmt.Sprintf("LIB%s%d", year, 10000+s.randInt(90000))
}

func validateRegistration(req dto.RegisterStudentRequest) error {
	required := []struct {
		value string
		name  string
	}{
		{req.StudentData.Name, "Name"},
		{req.StudentData.PRN, "PRN Number"},
		{req.Email, "Email"},
		{req.Password, "Password"},
		{req.StudentData.Gender, "Gender"},
		{req.StudentData.Course, "Course"},
		{req.StudentData.BloodGroup, "Blood Group"},
		{req.StudentData.Mobile, "Mobile Number"},
		{req.StudentData.ParentMobile, "Parent Mobile Number"},
		{req.StudentData.DateOfBirth, "Date of Birth"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return appErrors.Clone(appErrors.ErrValidation, field.name+" is required")
		}
	}

	if err := validate.Var(req.Email, "email"); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "Email address is not valid")
	}
	if !tenDigits.MatchString(req.StudentData.PRN) {
		return appErrors.Clone(appErrors.ErrValidation, "PRN must be exactly 10 digits")
	}
	if !tenDigits.MatchString(req.StudentData.Mobile) {
		return appErrors.Clone(appErrors.ErrValidation, "Mobile number must be exactly 10 digits")
	}
	if !tenDigits.MatchString(req.StudentData.ParentMobile) {
		return appErrors.Clone(appErrors.ErrValidation, "Parent mobile number must be exactly 10 digits")
	}

	return nil
}

// ParseDateOfBirth accepts DD/MM/YYYY (the display format) and rejects
// impossible calendar dates and dates in the future. The stored value is
// normalized to UTC midnight.
func ParseDateOfBirth(raw string, now time.Time) (time.Time, error) {
	dob, err := time.ParseInLocation("02/01/2006", raw, time.UTC)
	if err != nil {
		// The web client submits the already-normalized ISO form.
		dob, err = parseDateLenient(raw)
		if err != nil {
			return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date of birth must be a valid date in DD/MM/YYYY format")
		}
	}
	if dob.After(now) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date of birth cannot be in the future")
	}
	return dob, nil
}

func parseDateLenient(raw string) (time.Time, error) {
	for _, layout := range []string{"02/01/2006", "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
