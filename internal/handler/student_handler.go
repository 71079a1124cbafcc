package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/dto"
	"github.com/noah-isme/library-portal-api/internal/middleware"
	"github.com/noah-isme/library-portal-api/internal/models"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
	"github.com/noah-isme/library-portal-api/pkg/response"
)

// maxPhotoBytes caps photo uploads at 5 MiB.
const maxPhotoBytes = 5 << 20

type studentManager interface {
	Profile(ctx context.Context, userID string) (*models.StudentRecord, error)
	ListAll(ctx context.Context) ([]models.StudentRecord, error)
	Update(ctx context.Context, userID string, req dto.UpdateStudentRequest) (*models.StudentRecord, error)
	Delete(ctx context.Context, userID string) error
	UploadPhoto(ctx context.Context, userID string, data []byte, fileName string) (string, error)
}

type photoTokenParser interface {
	Parse(token string, allowExpired bool) (ownerID, relPath string, expiresAt time.Time, err error)
}

type photoFileOpener interface {
	Open(filename string) (*os.File, error)
}

// StudentHandler wires record management and photo retrieval to HTTP.
type StudentHandler struct {
	students studentManager
	signer   photoTokenParser
	photos   photoFileOpener
	logger   *zap.Logger
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(students studentManager, signer photoTokenParser, photos photoFileOpener, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{students: students, signer: signer, photos: photos, logger: logger}
}

// Profile godoc
// @Summary Fetch the caller's own record
// @Tags Students
// @Produce json
// @Security ServiceKey
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /student-profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.students.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProfileResponse{Success: true, Student: record})
}

// List godoc
// @Summary List all student records
// @Tags Console
// @Produce json
// @Security ServiceKey
// @Success 200 {object} dto.StudentsResponse
// @Failure 403 {object} response.ErrorEnvelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	records, err := h.students.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if records == nil {
		records = []models.StudentRecord{}
	}

	response.OK(c, dto.StudentsResponse{Success: true, Students: records})
}

// Update godoc
// @Summary Merge fields into an existing record
// @Tags Console
// @Accept json
// @Produce json
// @Security ServiceKey
// @Param userId path string true "Record owner"
// @Param payload body dto.UpdateStudentRequest true "Fields to merge"
// @Success 200 {object} dto.StudentResponse
// @Failure 404 {object} response.ErrorEnvelope
// @Router /student/{userId} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	record, err := h.students.Update(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StudentResponse{Success: true, Student: record})
}

// Delete godoc
// @Summary Delete a record and its lookup indexes
// @Tags Console
// @Produce json
// @Security ServiceKey
// @Param userId path string true "Record owner"
// @Success 200 {object} dto.DeleteResponse
// @Failure 404 {object} response.ErrorEnvelope
// @Router /student/{userId} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DeleteResponse{Success: true})
}

// UploadPhoto godoc
// @Summary Attach a photo to a member record
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Security ServiceKey
// @Param photo formData file true "Photo binary"
// @Param userId formData string true "Record owner"
// @Success 200 {object} dto.UploadPhotoResponse
// @Failure 400 {object} response.ErrorEnvelope
// @Router /upload-photo [post]
func (h *StudentHandler) UploadPhoto(c *gin.Context) {
	userID := c.PostForm("userId")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing file or user ID"))
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing photo file"))
		return
	}
	if file.Size > maxPhotoBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo exceeds the 5 MB limit"))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxPhotoBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	photoURL, err := h.students.UploadPhoto(c.Request.Context(), userID, data, file.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.UploadPhotoResponse{Success: true, PhotoURL: photoURL})
}

// ServePhoto godoc
// @Summary Serve a stored photo by signed token
// @Tags Students
// @Produce image/jpeg
// @Param token path string true "Signed photo token"
// @Success 200 {file} binary
// @Failure 403 {object} response.ErrorEnvelope
// @Router /photos/{token} [get]
func (h *StudentHandler) ServePhoto(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired photo link"))
		return
	}

	f, err := h.photos.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "photo not found"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat photo"))
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	http.ServeContent(c.Writer, c.Request, relPath, info.ModTime(), f)
}
