package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/internal/repository"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
)

type accountRepository interface {
	Save(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// IdentityConfig defines token issuance settings.
type IdentityConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// IdentityService is the identity gateway: account creation, password
// authentication and bearer-token verification.
type IdentityService struct {
	repo   accountRepository
	logger *zap.Logger
	config IdentityConfig
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(repo accountRepository, logger *zap.Logger, config IdentityConfig) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = 24 * time.Hour
	}
	return &IdentityService{repo: repo, logger: logger, config: config}
}

// CreateAccount registers a new account, failing with a conflict when the
// email is already taken.
func (s *IdentityService) CreateAccount(ctx context.Context, email, password, name, prn string) (*models.Account, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	} else if !errors.Is(err, repository.ErrKeyNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         models.RoleStudent,
		PRN:          prn,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist account")
	}

	return account, nil
}

// Authenticate verifies the email/password pair and issues an access token.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (string, *models.Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return "", nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}

	token, err := s.generateAccessToken(account)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return token, account, nil
}

// VerifyToken parses and validates an access token returning the claims.
func (s *IdentityService) VerifyToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *IdentityService) generateAccessToken(account *models.Account) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.TokenClaims{
		UserID: account.ID,
		Email:  account.Email,
		Name:   account.Name,
		Role:   account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}
