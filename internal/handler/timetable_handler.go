package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-engine/internal/dto"
	"github.com/noah-isme/sma-timetable-engine/internal/middleware"
	"github.com/noah-isme/sma-timetable-engine/internal/models"
	"github.com/noah-isme/sma-timetable-engine/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
	"github.com/noah-isme/sma-timetable-engine/pkg/response"
)

const (
	maxRequestRooms = 64
	modePreview     = "preview"
)

type timetablePreviewResponse struct {
	Mode     string                         `json:"mode"`
	Proposal *dto.GenerateTimetableResponse `json:"proposal"`
}

type timetableManager interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Accept(ctx context.Context, req dto.AcceptTimetableRequest) (*dto.AcceptTimetableResponse, error)
	AcceptProposal(ctx context.Context, proposalID string) (*dto.AcceptTimetableResponse, error)
	ProposalInstitute(proposalID string) (string, error)
	Update(ctx context.Context, id string, req dto.UpdateTimetableEntriesRequest) (*models.Timetable, error)
	Discard(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error)
	RebuildIndex(ctx context.Context, id string) (*dto.IndexStatusResponse, error)
	IndexStatus(ctx context.Context, id string) (*dto.IndexStatusResponse, error)
	ProbeConflicts(ctx context.Context, query dto.ConflictProbeQuery) ([]models.SessionIndexEntry, error)
}

// TimetableHandler exposes timetable generation and lifecycle endpoints.
type TimetableHandler struct {
	service timetableManager
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a timetable proposal
// @Description Builds the time grid, places every course session and reports conflicts. Nothing is persisted; the proposal can be accepted by id until it expires.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	if len(req.Rooms) > maxRequestRooms {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "rooms exceeds supported limit"))
		return
	}
	institute, err := scopeInstitute(c, req.InstituteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.InstituteID = institute

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "strategy", result.Strategy)
	payload := timetablePreviewResponse{Mode: modePreview, Proposal: result}
	response.JSON(c, http.StatusOK, payload, nil, middleware.ResponseMeta(c))
}

// Accept godoc
// @Summary Persist a reviewed timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.AcceptTimetableRequest true "Accepted timetable"
// @Success 201 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Accept(c *gin.Context) {
	var req dto.AcceptTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	institute, err := scopeInstitute(c, req.InstituteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.InstituteID = institute

	result, err := h.service.Accept(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// AcceptProposal godoc
// @Summary Persist a generated proposal as is
// @Tags Timetables
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/proposals/{id}/accept [post]
func (h *TimetableHandler) AcceptProposal(c *gin.Context) {
	proposalID := c.Param("id")
	if instituteBound(claimsFromContext(c)) {
		institute, err := h.service.ProposalInstitute(proposalID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !authorizeInstitute(c, institute, "proposal not found or expired") {
			return
		}
	}

	result, err := h.service.AcceptProposal(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List stored timetables
// @Tags Timetables
// @Produce json
// @Param instituteId query string false "Institute ID"
// @Param class query string false "Class"
// @Param semester query string false "Semester"
// @Param status query string false "ACTIVE or SUPERSEDED"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	institute, err := scopeInstitute(c, query.InstituteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	query.InstituteID = institute

	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a stored timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	tt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !authorizeInstitute(c, tt.InstituteID, "timetable not found") {
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// UpdateEntries godoc
// @Summary Replace the entries of an active timetable
// @Description Conflicts are recomputed and the session index is rebuilt from the new entries.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.UpdateTimetableEntriesRequest true "Entries"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/entries [put]
func (h *TimetableHandler) UpdateEntries(c *gin.Context) {
	if !authorizeTimetable(c, h.service, c.Param("id")) {
		return
	}
	var req dto.UpdateTimetableEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entries payload"))
		return
	}
	tt, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Delete godoc
// @Summary Discard a timetable and its session index rows
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if !authorizeTimetable(c, h.service, c.Param("id")) {
		return
	}
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reindex godoc
// @Summary Rebuild the session index rows of a timetable
// @Tags Session Index
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/reindex [post]
func (h *TimetableHandler) Reindex(c *gin.Context) {
	if !authorizeTimetable(c, h.service, c.Param("id")) {
		return
	}
	status, err := h.service.RebuildIndex(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// IndexStatus godoc
// @Summary Compare a timetable with its session index rows
// @Tags Session Index
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/index [get]
func (h *TimetableHandler) IndexStatus(c *gin.Context) {
	if !authorizeTimetable(c, h.service, c.Param("id")) {
		return
	}
	status, err := h.service.IndexStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Conflicts godoc
// @Summary Find sessions of other classes that overlap a window
// @Tags Session Index
// @Produce json
// @Param instituteId query string true "Institute ID"
// @Param facultyId query string false "Faculty ID"
// @Param room query string false "Room"
// @Param day query string true "Day"
// @Param start query string true "Start HH:MM"
// @Param end query string true "End HH:MM"
// @Param class query string false "Class to exclude"
// @Success 200 {object} response.Envelope
// @Router /session-index/conflicts [get]
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	var query dto.ConflictProbeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	institute, err := scopeInstitute(c, query.InstituteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	query.InstituteID = institute

	rows, err := h.service.ProbeConflicts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
