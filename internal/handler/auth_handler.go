package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-portal-api/internal/dto"
	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/internal/service"
	"github.com/noah-isme/library-portal-api/pkg/config"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
	"github.com/noah-isme/library-portal-api/pkg/response"
)

type registrationService interface {
	Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.StudentRecord, error)
	Login(ctx context.Context, identifier, password string) (string, *models.Account, error)
}

// AuthHandler wires registration and both login flows to HTTP.
type AuthHandler struct {
	students  registrationService
	librarian config.LibrarianConfig
	metrics   *service.MetricsService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(students registrationService, librarian config.LibrarianConfig, metrics *service.MetricsService) *AuthHandler {
	return &AuthHandler{students: students, librarian: librarian, metrics: metrics}
}

// RegisterStudent godoc
// @Summary Register a new student
// @Description Create an identity account plus the library member record
// @Tags Authentication
// @Accept json
// @Produce json
// @Security ServiceKey
// @Param payload body dto.RegisterStudentRequest true "Registration payload"
// @Success 201 {object} dto.RegisterStudentResponse
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 409 {object} response.ErrorEnvelope
// @Router /register-student [post]
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	record, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordRegistration()

	response.JSON(c, http.StatusCreated, dto.RegisterStudentResponse{
		Success:       true,
		LibraryNumber: record.LibraryNumber,
		UserID:        record.UserID,
	})
}

// Login godoc
// @Summary Authenticate a student
// @Description Authenticate by email, PRN or mobile number
// @Tags Authentication
// @Accept json
// @Produce json
// @Security ServiceKey
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	token, account, err := h.students.Login(c.Request.Context(), strings.TrimSpace(req.Identifier), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Success:     true,
		AccessToken: token,
		User: dto.UserInfo{
			ID:    account.ID,
			Email: account.Email,
			Name:  account.Name,
			Role:  account.Role,
		},
	})
}

// LibrarianLogin godoc
// @Summary Authenticate the librarian
// @Description Check the configured librarian credential pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Security ServiceKey
// @Param payload body dto.LibrarianLoginRequest true "Librarian credentials"
// @Success 200 {object} dto.LibrarianLoginResponse
// @Failure 401 {object} response.ErrorEnvelope
// @Router /librarian-login [post]
func (h *AuthHandler) LibrarianLogin(c *gin.Context) {
	var req dto.LibrarianLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	if h.librarian.Email == "" || h.librarian.Password == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "librarian access is not configured"))
		return
	}

	// Both comparisons always run so timing reveals nothing about which
	// half of the pair was wrong.
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(req.Email))), []byte(strings.ToLower(h.librarian.Email)))
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.librarian.Password))
	if emailOK&passwordOK != 1 {
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	response.OK(c, dto.LibrarianLoginResponse{
		Success: true,
		Role:    models.RoleLibrarian,
		Email:   h.librarian.Email,
	})
}
