package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/internal/service"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
	"github.com/noah-isme/library-portal-api/pkg/response"
)

type exportProvider interface {
	Spreadsheet(ctx context.Context, filter models.StudentFilter) (*service.ExportResult, error)
	CSV(ctx context.Context, filter models.StudentFilter) (*service.ExportResult, error)
	IDCards(ctx context.Context, filter models.StudentFilter) (*service.ExportResult, error)
}

// ExportHandler streams rendered downloads to console clients.
type ExportHandler struct {
	exports exportProvider
	metrics *service.MetricsService
}

// NewExportHandler creates a new handler.
func NewExportHandler(exports exportProvider, metrics *service.MetricsService) *ExportHandler {
	return &ExportHandler{exports: exports, metrics: metrics}
}

// Download godoc
// @Summary Export the filtered record set
// @Description Renders xlsx, csv or a printable id-card PDF batch
// @Tags Console
// @Produce application/octet-stream
// @Security ServiceKey
// @Param format query string false "xlsx, csv or idcards" default(xlsx)
// @Param search query string false "Substring match on name, PRN, email or library number"
// @Param course query string false "Exact course code"
// @Param year query string false "Exact admitted year"
// @Success 200 {file} binary
// @Failure 400 {object} response.ErrorEnvelope
// @Router /students/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
	filter := models.StudentFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Course: strings.TrimSpace(c.Query("course")),
		Year:   strings.TrimSpace(c.Query("year")),
	}

	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "xlsx")))

	var (
		result *service.ExportResult
		err    error
	)
	switch format {
	case "xlsx":
		result, err = h.exports.Spreadsheet(c.Request.Context(), filter)
	case "csv":
		result, err = h.exports.CSV(c.Request.Context(), filter)
	case "idcards":
		result, err = h.exports.IDCards(c.Request.Context(), filter)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown export format, expected xlsx, csv or idcards"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordExport(format)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
