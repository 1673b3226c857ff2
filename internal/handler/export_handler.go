package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-engine/internal/dto"
	"github.com/noah-isme/sma-timetable-engine/internal/models"
	"github.com/noah-isme/sma-timetable-engine/internal/service"
	"github.com/noah-isme/sma-timetable-engine/pkg/response"
)

type timetableExporter interface {
	Export(ctx context.Context, timetableID, format string) (*service.ExportFile, error)
	ShareLink(ctx context.Context, timetableID, format string) (*dto.ExportLinkResponse, error)
	ExportByToken(ctx context.Context, token string) (*service.ExportFile, error)
}

// ExportHandler streams weekly grid exports of stored timetables.
type ExportHandler struct {
	service    timetableExporter
	timetables timetableGetter
}

// NewExportHandler constructs the handler. Timetables are looked up to keep institute-bound tokens
// on their own institute.
func NewExportHandler(svc *service.ExportService, timetables *service.TimetableService) *ExportHandler {
	return &ExportHandler{service: svc, timetables: timetables}
}

// Export godoc
// @Summary Download a timetable as a weekly grid
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Timetable ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /timetables/{id}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	if !authorizeTimetable(c, h.timetables, c.Param("id")) {
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", string(models.ExportFormatCSV)))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// CreateLink godoc
// @Summary Create a signed download link for a timetable export
// @Tags Exports
// @Produce json
// @Param id path string true "Timetable ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 201 {object} response.Envelope
// @Router /timetables/{id}/export-links [post]
func (h *ExportHandler) CreateLink(c *gin.Context) {
	if !authorizeTimetable(c, h.timetables, c.Param("id")) {
		return
	}
	link, err := h.service.ShareLink(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", string(models.ExportFormatCSV)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Download an export through a signed link
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.ExportByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

func sendFile(c *gin.Context, file *service.ExportFile) {
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
