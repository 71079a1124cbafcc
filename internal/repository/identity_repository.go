package repository

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/models"
)

const (
	accountKeyPrefix = "identity:account:"
	emailKeyPrefix   = "identity:email:"
)

// IdentityRepository persists identity-provider accounts with an email
// lookup index, in the same key-value store as the member records.
type IdentityRepository struct {
	store  Store
	logger *zap.Logger
}

// NewIdentityRepository constructs an IdentityRepository.
func NewIdentityRepository(store Store, logger *zap.Logger) *IdentityRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityRepository{store: store, logger: logger}
}

// Save writes the account and its email index entry.
func (r *IdentityRepository) Save(ctx context.Context, account *models.Account) error {
	if err := r.store.Set(ctx, accountKeyPrefix+account.ID, account); err != nil {
		return err
	}
	return r.store.Set(ctx, emailKeyPrefix+normalizeEmail(account.Email), account.ID)
}

// FindByID loads an account by its ID.
func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.store.Get(ctx, accountKeyPrefix+id, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmail resolves the email index and loads the account.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var id string
	if err := r.store.Get(ctx, emailKeyPrefix+normalizeEmail(email), &id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
