package repository

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/models"
)

// Key namespaces. Primary records and lookup indexes live under distinct
// prefixes so listing never has to sniff value shapes.
const (
	recordKeyPrefix = "member:record:"
	prnKeyPrefix    = "member:prn:"
	phoneKeyPrefix  = "member:phone:"
)

// StudentRepository persists student records and their lookup indexes.
type StudentRepository struct {
	store  Store
	logger *zap.Logger
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(store Store, logger *zap.Logger) *StudentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRepository{store: store, logger: logger}
}

// Save writes the primary record.
func (r *StudentRepository) Save(ctx context.Context, record *models.StudentRecord) error {
	return r.store.Set(ctx, recordKeyPrefix+record.UserID, record)
}

// FindByUserID loads the primary record, returning ErrKeyNotFound when absent.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentRecord, error) {
	var record models.StudentRecord
	if err := r.store.Get(ctx, recordKeyPrefix+userID, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// List scans the record namespace and decodes every student record. Values
// that do not decode to a record carrying a library number are skipped.
func (r *StudentRepository) List(ctx context.Context) ([]models.StudentRecord, error) {
	raws, err := r.store.ScanByPrefix(ctx, recordKeyPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]models.StudentRecord, 0, len(raws))
	for _, raw := range raws {
		var record models.StudentRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			r.logger.Warn("skipping undecodable record value", zap.Error(err))
			continue
		}
		if record.LibraryNumber == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes the primary record.
func (r *StudentRepository) Delete(ctx context.Context, userID string) error {
	return r.store.Delete(ctx, recordKeyPrefix+userID)
}

// SetPRNIndex maps a PRN to the owning user ID.
func (r *StudentRepository) SetPRNIndex(ctx context.Context, prn, userID string) error {
	return r.store.Set(ctx, prnKeyPrefix+prn, userID)
}

// UserIDByPRN resolves a PRN to a user ID via the lookup index.
func (r *StudentRepository) UserIDByPRN(ctx context.Context, prn string) (string, error) {
	var userID string
	if err := r.store.Get(ctx, prnKeyPrefix+prn, &userID); err != nil {
		return "", err
	}
	return userID, nil
}

// DeletePRNIndex removes the PRN lookup entry.
func (r *StudentRepository) DeletePRNIndex(ctx context.Context, prn string) error {
	return r.store.Delete(ctx, prnKeyPrefix+prn)
}

// SetMobileIndex maps a mobile number to the owning user ID.
func (r *StudentRepository) SetMobileIndex(ctx context.Context, mobile, userID string) error {
	return r.store.Set(ctx, phoneKeyPrefix+mobile, userID)
}

// UserIDByMobile resolves a mobile number to a user ID via the lookup index.
func (r *StudentRepository) UserIDByMobile(ctx context.Context, mobile string) (string, error) {
	var userID string
	if err := r.store.Get(ctx, phoneKeyPrefix+mobile, &userID); err != nil {
		return "", err
	}
	return userID, nil
}

// DeleteMobileIndex removes the mobile lookup entry.
func (r *StudentRepository) DeleteMobileIndex(ctx context.Context, mobile string) error {
	return r.store.Delete(ctx, phoneKeyPrefix+mobile)
}
