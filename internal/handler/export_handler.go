package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repairdesk/repairdesk-api/internal/models"
	"github.com/repairdesk/repairdesk-api/internal/service"
	appErrors "github.com/repairdesk/repairdesk-api/pkg/errors"
	"github.com/repairdesk/repairdesk-api/pkg/response"
)

type exportService interface {
	RenderLedger(ctx context.Context, principal models.Principal, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler streams the repair-request ledger export.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Export the repair request ledger
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /admin/requests/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is disabled"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := c.DefaultQuery("format", string(service.ExportFormatCSV))
	result, err := h.service.RenderLedger(c.Request.Context(), claims.Principal(), service.ExportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
