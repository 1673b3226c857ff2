package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-engine/internal/dto"
	"github.com/noah-isme/sma-timetable-engine/internal/middleware"
	"github.com/noah-isme/sma-timetable-engine/internal/models"
	"github.com/noah-isme/sma-timetable-engine/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
)

type timetableManagerMock struct {
	generateReq  dto.GenerateTimetableRequest
	generateErr  error
	acceptReq    dto.AcceptTimetableRequest
	listQuery    dto.TimetableQuery
	probeQuery   dto.ConflictProbeQuery
	discarded    string
	stored       *models.Timetable
	updateErr    error
	proposalSeen string
	touched      []string
}

func (m *timetableManagerMock) Generate(_ context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.generateReq = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateTimetableResponse{
		ProposalID: "proposal-1",
		Strategy:   service.StrategyDeterministic,
		Grid:       []string{"09:00-09:50"},
		Entries:    []models.TimetableEntry{{ID: "math-MONDAY-0", SubjectID: "math", Day: "MONDAY", StartTime: "09:00", EndTime: "09:50"}},
		Conflicts:  []models.Conflict{},
	}, nil
}

func (m *timetableManagerMock) Accept(_ context.Context, req dto.AcceptTimetableRequest) (*dto.AcceptTimetableResponse, error) {
	m.acceptReq = req
	return &dto.AcceptTimetableResponse{TimetableID: "tt-1", Version: 1, Superseded: []string{}}, nil
}

func (m *timetableManagerMock) ProposalInstitute(proposalID string) (string, error) {
	if proposalID != "proposal-1" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return "inst-1", nil
}

func (m *timetableManagerMock) AcceptProposal(_ context.Context, proposalID string) (*dto.AcceptTimetableResponse, error) {
	m.proposalSeen = proposalID
	m.touched = append(m.touched, "accept-proposal")
	if proposalID != "proposal-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return &dto.AcceptTimetableResponse{TimetableID: "tt-2", Version: 2, Superseded: []string{"tt-1"}}, nil
}

func (m *timetableManagerMock) Update(_ context.Context, id string, req dto.UpdateTimetableEntriesRequest) (*models.Timetable, error) {
	m.touched = append(m.touched, "update")
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.Timetable{ID: id, Status: models.TimetableStatusActive, Entries: make([]models.TimetableEntry, len(req.Entries))}, nil
}

func (m *timetableManagerMock) Discard(_ context.Context, id string) error {
	m.discarded = id
	m.touched = append(m.touched, "discard")
	return nil
}

func (m *timetableManagerMock) Get(_ context.Context, id string) (*models.Timetable, error) {
	if m.stored == nil || m.stored.ID != id {
		return nil, appErrors.Wrap(sql.ErrNoRows, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "timetable not found")
	}
	return m.stored, nil
}

func (m *timetableManagerMock) List(_ context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	m.listQuery = query
	return []models.Timetable{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *timetableManagerMock) RebuildIndex(_ context.Context, id string) (*dto.IndexStatusResponse, error) {
	m.touched = append(m.touched, "reindex")
	return &dto.IndexStatusResponse{TimetableID: id, Entries: 3, IndexedRows: 3, InSync: true}, nil
}

func (m *timetableManagerMock) IndexStatus(_ context.Context, id string) (*dto.IndexStatusResponse, error) {
	m.touched = append(m.touched, "index")
	return &dto.IndexStatusResponse{TimetableID: id, Entries: 3, IndexedRows: 1}, nil
}

func (m *timetableManagerMock) ProbeConflicts(_ context.Context, query dto.ConflictProbeQuery) ([]models.SessionIndexEntry, error) {
	m.probeQuery = query
	return []models.SessionIndexEntry{}, nil
}

func newTimetableRouter(h *TimetableHandler, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	if claims != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, claims)
			c.Next()
		})
	}
	r.POST("/timetables/generate", h.Generate)
	r.POST("/timetables", h.Accept)
	r.POST("/timetables/proposals/:id/accept", h.AcceptProposal)
	r.GET("/timetables", h.List)
	r.GET("/timetables/:id", h.Get)
	r.PUT("/timetables/:id/entries", h.UpdateEntries)
	r.DELETE("/timetables/:id", h.Delete)
	r.POST("/timetables/:id/reindex", h.Reindex)
	r.GET("/timetables/:id/index", h.IndexStatus)
	r.GET("/session-index/conflicts", h.Conflicts)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func generatePayload() dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{
		InstituteID: "inst-1",
		Class:       "X-A",
		Department:  "science",
		Semester:    "2024-1",
		Rooms:       []string{"R1"},
	}
}

func TestTimetableGenerateReturnsPreview(t *testing.T) {
	svc := &timetableManagerMock{}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)

	w := doJSON(r, http.MethodPost, "/timetables/generate", generatePayload())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "X-A", svc.generateReq.Class)
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, modePreview, data["mode"])
	proposal := data["proposal"].(map[string]interface{})
	assert.Equal(t, "proposal-1", proposal["proposalId"])
	meta := envelope["meta"].(map[string]interface{})
	assert.Equal(t, service.StrategyDeterministic, meta["strategy"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestTimetableGenerateRejectsMalformedBody(t *testing.T) {
	r := newTimetableRouter(&TimetableHandler{service: &timetableManagerMock{}}, nil)
	w := doJSON(r, http.MethodPost, "/timetables/generate", `{"class":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableGenerateRejectsTooManyRooms(t *testing.T) {
	svc := &timetableManagerMock{}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)
	payload := generatePayload()
	payload.Rooms = make([]string, maxRequestRooms+1)
	for i := range payload.Rooms {
		payload.Rooms[i] = "R"
	}

	w := doJSON(r, http.MethodPost, "/timetables/generate", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.generateReq.Class)
}

func TestTimetableGenerateMapsConfigurationError(t *testing.T) {
	svc := &timetableManagerMock{generateErr: appErrors.Clone(appErrors.ErrInvalidConfiguration, "session duration must be positive")}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)

	w := doJSON(r, http.MethodPost, "/timetables/generate", generatePayload())

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	envelope := decodeEnvelope(t, w)
	errBody := envelope["error"].(map[string]interface{})
	assert.Equal(t, appErrors.ErrInvalidConfiguration.Code, errBody["code"])
}

func TestTimetableGenerateEnforcesInstituteScope(t *testing.T) {
	svc := &timetableManagerMock{}
	claims := &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin, InstituteID: "inst-2"}
	r := newTimetableRouter(&TimetableHandler{service: svc}, claims)

	w := doJSON(r, http.MethodPost, "/timetables/generate", generatePayload())
	assert.Equal(t, http.StatusForbidden, w.Code)

	claims.Role = models.RoleSuperAdmin
	w = doJSON(r, http.MethodPost, "/timetables/generate", generatePayload())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTimetableAcceptCreates(t *testing.T) {
	svc := &timetableManagerMock{}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)
	payload := dto.AcceptTimetableRequest{
		InstituteID: "inst-1", Class: "X-A", Department: "science", Semester: "2024-1",
		Entries: []dto.TimetableEntryRequest{{SubjectID: "math", Day: "MONDAY", StartTime: "09:00", EndTime: "09:50"}},
	}

	w := doJSON(r, http.MethodPost, "/timetables", payload)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, svc.acceptReq.Entries, 1)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "tt-1", data["timetableId"])
}

func TestTimetableAcceptProposal(t *testing.T) {
	svc := &timetableManagerMock{}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)

	w := doJSON(r, http.MethodPost, "/timetables/proposals/proposal-1/accept", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"tt-1"}, data["superseded"])

	w = doJSON(r, http.MethodPost, "/timetables/proposals/gone/accept", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "gone", svc.proposalSeen)
}

func TestTimetableListDefaultsToTokenInstitute(t *testing.T) {
	svc := &timetableManagerMock{}
	claims := &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher, InstituteID: "inst-9"}
	r := newTimetableRouter(&TimetableHandler{service: svc}, claims)

	w := doJSON(r, http.MethodGet, "/timetables?class=X-A&page=2&pageSize=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.TimetableQuery{InstituteID: "inst-9", Class: "X-A", Page: 2, PageSize: 5}, svc.listQuery)
	assert.Contains(t, decodeEnvelope(t, w), "pagination")
}

func TestTimetableGetHidesOtherInstitutes(t *testing.T) {
	svc := &timetableManagerMock{stored: &models.Timetable{ID: "tt-1", InstituteID: "inst-1"}}

	r := newTimetableRouter(&TimetableHandler{service: svc}, &models.JWTClaims{Role: models.RoleTeacher, InstituteID: "inst-1"})
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/timetables/tt-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/timetables/tt-404", nil).Code)

	r = newTimetableRouter(&TimetableHandler{service: svc}, &models.JWTClaims{Role: models.RoleTeacher, InstituteID: "inst-2"})
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/timetables/tt-1", nil).Code)
}

func TestTimetableUpdateEntries(t *testing.T) {
	svc := &timetableManagerMock{}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)
	payload := dto.UpdateTimetableEntriesRequest{Entries: []dto.TimetableEntryRequest{
		{SubjectID: "math", Day: "MONDAY", StartTime: "09:00", EndTime: "09:50"},
		{SubjectID: "chem", Day: "MONDAY", StartTime: "10:00", EndTime: "10:50"},
	}}

	w := doJSON(r, http.MethodPut, "/timetables/tt-1/entries", payload)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["entries"], 2)

	svc.updateErr = appErrors.Clone(appErrors.ErrConflict, "only active timetables can be edited")
	w = doJSON(r, http.MethodPut, "/timetables/tt-1/entries", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTimetableDeleteAndIndexRoutes(t *testing.T) {
	svc := &timetableManagerMock{}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)

	w := doJSON(r, http.MethodDelete, "/timetables/tt-3", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tt-3", svc.discarded)

	w = doJSON(r, http.MethodPost, "/timetables/tt-3/reindex", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeEnvelope(t, w)["data"].(map[string]interface{})["inSync"])

	w = doJSON(r, http.MethodGet, "/timetables/tt-3/index", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeEnvelope(t, w)["data"].(map[string]interface{})["inSync"])
}

func TestTimetableRoutesRejectOtherInstitutes(t *testing.T) {
	svc := &timetableManagerMock{stored: &models.Timetable{ID: "tt-b", InstituteID: "inst-b"}}
	r := newTimetableRouter(&TimetableHandler{service: svc}, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin, InstituteID: "inst-a"})
	entries := dto.UpdateTimetableEntriesRequest{Entries: []dto.TimetableEntryRequest{
		{SubjectID: "math", Day: "MONDAY", StartTime: "09:00", EndTime: "09:50"},
	}}

	cases := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPut, "/timetables/tt-b/entries", entries},
		{http.MethodDelete, "/timetables/tt-b", nil},
		{http.MethodPost, "/timetables/tt-b/reindex", nil},
		{http.MethodGet, "/timetables/tt-b/index", nil},
		{http.MethodPost, "/timetables/proposals/proposal-1/accept", nil},
	}
	for _, tc := range cases {
		w := doJSON(r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
	assert.Empty(t, svc.touched)
	assert.Empty(t, svc.discarded)
	assert.Empty(t, svc.proposalSeen)

	// unknown ids stay not found for bound tokens
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/timetables/tt-missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPost, "/timetables/proposals/gone/accept", nil).Code)
	assert.Empty(t, svc.touched)
}

func TestTimetableRoutesAllowOwnInstitute(t *testing.T) {
	svc := &timetableManagerMock{stored: &models.Timetable{ID: "tt-b", InstituteID: "inst-b"}}
	claims := &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin, InstituteID: "inst-b"}
	r := newTimetableRouter(&TimetableHandler{service: svc}, claims)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/timetables/tt-b/reindex", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/timetables/tt-b/index", nil).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/timetables/tt-b", nil).Code)
	assert.Equal(t, "tt-b", svc.discarded)

	// proposal-1 belongs to inst-1
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPost, "/timetables/proposals/proposal-1/accept", nil).Code)
	claims.InstituteID = "inst-1"
	assert.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/timetables/proposals/proposal-1/accept", nil).Code)

	claims.Role = models.RoleSuperAdmin
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/timetables/tt-b/reindex", nil).Code)
	assert.Equal(t, []string{"reindex", "index", "discard", "accept-proposal", "reindex"}, svc.touched)
}

func TestTimetableConflictsBindsQuery(t *testing.T) {
	svc := &timetableManagerMock{}
	r := newTimetableRouter(&TimetableHandler{service: svc}, nil)

	w := doJSON(r, http.MethodGet, "/session-index/conflicts?instituteId=inst-1&facultyId=f-1&day=MONDAY&start=09:00&end=10:00&class=X-A", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ConflictProbeQuery{
		InstituteID: "inst-1", FacultyID: "f-1", Day: "MONDAY", Start: "09:00", End: "10:00", Class: "X-A",
	}, svc.probeQuery)
	assert.Equal(t, []interface{}{}, decodeEnvelope(t, w)["data"])
}

type exporterMock struct {
	format  string
	exports int
	links   int
}

func (m *exporterMock) Export(_ context.Context, timetableID, format string) (*service.ExportFile, error) {
	m.format = format
	m.exports++
	if format == "docx" {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, "unsupported export format")
	}
	return &service.ExportFile{Filename: "timetable_X-A_2024-1_v1." + format, ContentType: "text/csv", Data: []byte("Time,MONDAY\n")}, nil
}

func (m *exporterMock) ShareLink(_ context.Context, timetableID, format string) (*dto.ExportLinkResponse, error) {
	m.links++
	return &dto.ExportLinkResponse{URL: "/api/v1/exports/token", Format: format, ExpiresAt: time.Date(2024, 7, 16, 8, 0, 0, 0, time.UTC)}, nil
}

func (m *exporterMock) ExportByToken(_ context.Context, token string) (*service.ExportFile, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid export link")
	}
	return &service.ExportFile{Filename: "t.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

func newExportRouter(svc *exporterMock) *gin.Engine {
	return newScopedExportRouter(svc, nil, nil)
}

func newScopedExportRouter(svc *exporterMock, timetables timetableGetter, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &ExportHandler{service: svc, timetables: timetables}
	r := gin.New()
	if claims != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, claims)
			c.Next()
		})
	}
	r.GET("/timetables/:id/export", h.Export)
	r.POST("/timetables/:id/export-links", h.CreateLink)
	r.GET("/exports/:token", h.Download)
	return r
}

func TestExportStreamsFile(t *testing.T) {
	svc := &exporterMock{}
	r := newExportRouter(svc)

	w := doJSON(r, http.MethodGet, "/timetables/tt-1/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, "attachment; filename=\"timetable_X-A_2024-1_v1.csv\"", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "Time,MONDAY\n", w.Body.String())

	w = doJSON(r, http.MethodGet, "/timetables/tt-1/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportLinks(t *testing.T) {
	r := newExportRouter(&exporterMock{})

	w := doJSON(r, http.MethodPost, "/timetables/tt-1/export-links?format=pdf", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pdf", decodeEnvelope(t, w)["data"].(map[string]interface{})["format"])

	w = doJSON(r, http.MethodGet, "/exports/good", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = doJSON(r, http.MethodGet, "/exports/forged", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportRejectsOtherInstitutes(t *testing.T) {
	svc := &exporterMock{}
	timetables := &timetableManagerMock{stored: &models.Timetable{ID: "tt-b", InstituteID: "inst-b"}}
	claims := &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher, InstituteID: "inst-a"}
	r := newScopedExportRouter(svc, timetables, claims)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/timetables/tt-b/export?format=pdf", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPost, "/timetables/tt-b/export-links", nil).Code)
	assert.Zero(t, svc.exports)
	assert.Zero(t, svc.links)

	claims.InstituteID = "inst-b"
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/timetables/tt-b/export?format=pdf", nil).Code)
	assert.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/timetables/tt-b/export-links", nil).Code)
	assert.Equal(t, 1, svc.exports)
	assert.Equal(t, 1, svc.links)
}

type invalidatorMock struct {
	institute string
	err       error
}

func (m *invalidatorMock) Invalidate(_ context.Context, instituteID string) error {
	m.institute = instituteID
	return m.err
}

func TestCatalogInvalidate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &invalidatorMock{}
	h := &CatalogHandler{catalog: mock}
	r := gin.New()
	r.DELETE("/catalog/:instituteId/cache", h.Invalidate)

	w := doJSON(r, http.MethodDelete, "/catalog/inst-1/cache", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "inst-1", mock.institute)

	mock.err = errors.New("redis down")
	w = doJSON(r, http.MethodDelete, "/catalog/inst-1/cache", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsReadiness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)
	r.GET("/health", h.Health)
	r.GET("/metrics/summary", h.Summary)

	w := doJSON(r, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, map[string]interface{}{"postgres": "ok", "redis": "connection refused"}, body["checks"])

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/health", nil).Code)

	w = doJSON(r, http.MethodGet, "/metrics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeEnvelope(t, w)["data"], "generations")
}
