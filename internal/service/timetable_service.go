package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-engine/internal/dto"
	"github.com/noah-isme/sma-timetable-engine/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
	"github.com/noah-isme/sma-timetable-engine/pkg/jobs"
)

// JobTypeIndexRepair identifies queued session index repairs.
const JobTypeIndexRepair = "session_index.repair"

type timetableStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) error
	MarkSuperseded(ctx context.Context, exec sqlx.ExtContext, instituteID, class, semester, keepID string) ([]string, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	UpdateEntries(ctx context.Context, id string, entries []models.TimetableEntry, conflicts []models.Conflict) error
	Delete(ctx context.Context, id string) error
	ListHistoricalEntries(ctx context.Context, instituteID string) ([]models.TimetableEntry, error)
}

type catalogReader interface {
	Faculty(ctx context.Context, instituteID, department string) ([]models.Faculty, error)
	Courses(ctx context.Context, instituteID, department string) ([]models.Course, error)
}

type sessionIndexer interface {
	Upsert(ctx context.Context, timetableID string, entries []models.TimetableEntry, instituteID, department string) error
	Rebuild(ctx context.Context, timetableID string, entries []models.TimetableEntry, instituteID, department string) error
	Remove(ctx context.Context, timetableID string) error
	FindConflicting(ctx context.Context, probe models.SessionProbe) ([]models.SessionIndexEntry, error)
	Count(ctx context.Context, timetableID string) (int, error)
}

type timetableTxProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type repairDispatcher interface {
	Enqueue(job jobs.Job) error
}

// IndexRepairPayload is carried by repair jobs.
type IndexRepairPayload struct {
	TimetableID string
	Operation   string
}

// TimetableServiceConfig governs generation and persistence behaviour.
type TimetableServiceConfig struct {
	ProposalTTL     time.Duration
	UseSessionIndex bool
	DefaultDay      models.TimeSlotConfig
	Now             func() time.Time
}

// TimetableService runs generation, keeps proposals for review and persists accepted timetables
// together with their session index.
type TimetableService struct {
	timetables timetableStore
	catalog    catalogReader
	index      sessionIndexer
	engine     *AssignmentEngine
	analyzer   *ConflictAnalyzer
	metrics    *MetricsService
	tx         timetableTxProvider
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        TimetableServiceConfig
	store      *timetableProposalStore

	mu     sync.RWMutex
	repair repairDispatcher
}

// NewTimetableService wires timetable dependencies. tx and metrics may be nil.
func NewTimetableService(
	timetables timetableStore,
	catalog catalogReader,
	index sessionIndexer,
	tx timetableTxProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &TimetableService{
		timetables: timetables,
		catalog:    catalog,
		index:      index,
		engine:     NewAssignmentEngine(),
		analyzer:   NewConflictAnalyzer(),
		metrics:    metrics,
		tx:         tx,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		store:      newTimetableProposalStore(cfg.ProposalTTL, cfg.Now),
	}
}

// SetRepairQueue attaches the queue that retries failed session index writes.
func (s *TimetableService) SetRepairQueue(queue repairDispatcher) {
	s.mu.Lock()
	s.repair = queue
	s.mu.Unlock()
}

// Generate builds the grid, places the department's courses and analyzes the result against
// accepted timetables of other classes. The proposal is kept for review until it expires.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	dayCfg := s.cfg.DefaultDay
	if req.Config != nil {
		dayCfg = req.Config.ToModel()
	}
	grid, err := BuildSlots(dayCfg)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidConfiguration.Code, appErrors.ErrInvalidConfiguration.Status, err.Error())
	}

	faculty, err := s.catalog.Faculty(ctx, req.InstituteID, req.Department)
	if err != nil {
		return nil, err
	}
	courses, err := s.catalog.Courses(ctx, req.InstituteID, req.Department)
	if err != nil {
		return nil, err
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = StrategyDeterministic
	}
	seed := s.cfg.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	started := time.Now()
	result := s.engine.Generate(AssignmentRequest{
		InstituteID:         req.InstituteID,
		Class:               req.Class,
		Department:          req.Department,
		Semester:            req.Semester,
		Courses:             courses,
		Faculty:             faculty,
		Rooms:               req.Rooms,
		Grid:                grid,
		Days:                req.Days,
		ShortBreakMinutes:   dayCfg.ShortBreakMinutes,
		ExclusiveClassSlots: req.ExclusiveClassSlots,
		Strategy:            strategy,
		Seed:                seed,
	})

	conflicts := result.Conflicts
	history, err := s.history(ctx, req.InstituteID, result.Entries)
	if err != nil {
		s.logger.Warn("historical conflict check skipped", zap.String("institute_id", req.InstituteID), zap.Error(err))
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictTypePreference,
			Severity:    models.SeverityLow,
			Description: "conflicts with other classes could not be checked",
		})
	} else {
		conflicts = append(conflicts, s.analyzer.Analyze(result.Entries, history)...)
	}
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	s.metrics.ObserveGeneration(strategy, time.Since(started), len(result.Entries), conflicts)

	now := s.cfg.Now()
	proposal := timetableProposal{
		ID:          uuid.NewString(),
		Request:     req,
		Strategy:    strategy,
		Entries:     result.Entries,
		Conflicts:   conflicts,
		GeneratedAt: now,
	}
	s.store.Save(proposal)

	labels := make([]string, 0, len(grid))
	for _, slot := range grid {
		labels = append(labels, slot.Label())
	}
	s.logger.Info("timetable generated",
		zap.String("proposal_id", proposal.ID),
		zap.String("class", req.Class),
		zap.String("strategy", strategy),
		zap.Int("entries", len(result.Entries)),
		zap.Int("conflicts", len(conflicts)),
	)

	return &dto.GenerateTimetableResponse{
		ProposalID: proposal.ID,
		ExpiresAt:  now.Add(s.cfg.ProposalTTL),
		Strategy:   strategy,
		Grid:       labels,
		Entries:    result.Entries,
		Conflicts:  conflicts,
		Summary:    summarizeConflicts(conflicts),
	}, nil
}

// ProposalInstitute reports which institute a pending proposal was generated for.
func (s *TimetableService) ProposalInstitute(proposalID string) (string, error) {
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return proposal.Request.InstituteID, nil
}

// AcceptProposal persists a stored proposal unchanged.
func (s *TimetableService) AcceptProposal(ctx context.Context, proposalID string) (*dto.AcceptTimetableResponse, error) {
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	tt := &models.Timetable{
		InstituteID:  proposal.Request.InstituteID,
		Class:        proposal.Request.Class,
		Department:   proposal.Request.Department,
		Semester:     proposal.Request.Semester,
		AcademicYear: proposal.Request.AcademicYear,
		Entries:      proposal.Entries,
		Conflicts:    proposal.Conflicts,
		GeneratedAt:  proposal.GeneratedAt,
	}
	resp, err := s.persist(ctx, tt)
	if err != nil {
		return nil, err
	}
	s.store.Delete(proposalID)
	return resp, nil
}

// Accept persists a reviewed, possibly hand-edited, timetable. Conflicts are recomputed when the
// caller supplies none.
func (s *TimetableService) Accept(ctx context.Context, req dto.AcceptTimetableRequest) (*dto.AcceptTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	entries, err := normalizeEntries(req.Entries, req.Class, req.Department)
	if err != nil {
		return nil, err
	}

	conflicts := req.Conflicts
	if conflicts == nil {
		conflicts = s.analyze(ctx, req.InstituteID, entries)
	}
	tt := &models.Timetable{
		InstituteID:  req.InstituteID,
		Class:        req.Class,
		Department:   req.Department,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Entries:      entries,
		Conflicts:    conflicts,
	}
	if req.GeneratedAt != nil {
		tt.GeneratedAt = req.GeneratedAt.UTC()
	}
	return s.persist(ctx, tt)
}

// Update replaces the entries of an active timetable and rebuilds its session index rows.
func (s *TimetableService) Update(ctx context.Context, id string, req dto.UpdateTimetableEntriesRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entries payload")
	}
	tt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tt.Status != models.TimetableStatusActive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only active timetables can be edited")
	}
	entries, err := normalizeEntries(req.Entries, tt.Class, tt.Department)
	if err != nil {
		return nil, err
	}
	conflicts := s.analyze(ctx, tt.InstituteID, entries)

	if err := s.timetables.UpdateEntries(ctx, id, entries, conflicts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}
	tt.Entries = entries
	tt.Conflicts = conflicts
	tt.UpdatedAt = s.cfg.Now()

	err = s.index.Rebuild(ctx, tt.ID, entries, tt.InstituteID, tt.Department)
	s.metrics.RecordIndexWrite(IndexOpRebuild, err)
	if err != nil {
		s.scheduleRepair(tt.ID, IndexOpRebuild, err)
	}
	return tt, nil
}

// Discard deletes a timetable and its session index rows.
func (s *TimetableService) Discard(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	err := s.index.Remove(ctx, id)
	s.metrics.RecordIndexWrite(IndexOpRemove, err)
	if err != nil {
		s.scheduleRepair(id, IndexOpRemove, err)
	}
	return nil
}

// Get loads a timetable.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	tt, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return tt, nil
}

// List returns timetables matching the query.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	items, total, err := s.timetables.List(ctx, models.TimetableFilter{
		InstituteID: query.InstituteID,
		Class:       query.Class,
		Semester:    query.Semester,
		Status:      models.TimetableStatus(query.Status),
		Page:        page,
		PageSize:    size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// RebuildIndex re-derives the session index rows of a timetable from its stored entries.
func (s *TimetableService) RebuildIndex(ctx context.Context, id string) (*dto.IndexStatusResponse, error) {
	tt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.syncIndex(ctx, tt); err != nil {
		return nil, err
	}
	return s.IndexStatus(ctx, id)
}

// IndexStatus compares a timetable's entry count with its indexed rows.
func (s *TimetableService) IndexStatus(ctx context.Context, id string) (*dto.IndexStatusResponse, error) {
	tt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.index.Count(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := len(tt.Entries)
	if tt.Status != models.TimetableStatusActive {
		expected = 0
	}
	return &dto.IndexStatusResponse{
		TimetableID: id,
		Entries:     len(tt.Entries),
		IndexedRows: rows,
		InSync:      rows == expected,
	}, nil
}

// ProbeConflicts asks the session index whether a faculty member or room is busy in a window.
func (s *TimetableService) ProbeConflicts(ctx context.Context, query dto.ConflictProbeQuery) ([]models.SessionIndexEntry, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict probe")
	}
	start, err := models.ParseClock(query.Start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := models.ParseClock(query.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	rows, err := s.index.FindConflicting(ctx, models.SessionProbe{
		InstituteID:  query.InstituteID,
		FacultyID:    query.FacultyID,
		Room:         query.Room,
		Day:          query.Day,
		StartMinutes: start,
		EndMinutes:   end,
		Class:        query.Class,
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.SessionIndexEntry{}
	}
	return rows, nil
}

// HandleIndexRepair is the queue handler for failed session index writes. Active timetables are
// rebuilt; superseded or deleted ones have their rows removed.
func (s *TimetableService) HandleIndexRepair(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(IndexRepairPayload)
	if !ok || payload.TimetableID == "" {
		s.logger.Error("dropping malformed index repair job", zap.String("job_id", job.ID))
		return nil
	}

	tt, err := s.timetables.FindByID(ctx, payload.TimetableID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = s.index.Remove(ctx, payload.TimetableID)
	case err != nil:
		err = fmt.Errorf("load timetable %s: %w", payload.TimetableID, err)
	default:
		err = s.syncIndex(ctx, tt)
	}
	if err != nil {
		s.metrics.RecordIndexRepair("error")
		return err
	}
	s.metrics.RecordIndexRepair("ok")
	s.logger.Info("session index repaired", zap.String("timetable_id", payload.TimetableID), zap.Int("attempt", job.Attempt))
	return nil
}

func (s *TimetableService) persist(ctx context.Context, tt *models.Timetable) (*dto.AcceptTimetableResponse, error) {
	var superseded []string
	if s.tx != nil {
		tx, err := s.tx.BeginTxx(ctx, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
		}
		superseded, err = s.writeVersion(ctx, tx, tt)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		}
	} else {
		var err error
		superseded, err = s.writeVersion(ctx, nil, tt)
		if err != nil {
			return nil, err
		}
	}

	err := s.index.Upsert(ctx, tt.ID, tt.Entries, tt.InstituteID, tt.Department)
	s.metrics.RecordIndexWrite(IndexOpUpsert, err)
	if err != nil {
		s.scheduleRepair(tt.ID, IndexOpUpsert, err)
	}
	for _, id := range superseded {
		removeErr := s.index.Remove(ctx, id)
		s.metrics.RecordIndexWrite(IndexOpRemove, removeErr)
		if removeErr != nil {
			s.scheduleRepair(id, IndexOpRemove, removeErr)
		}
	}

	s.logger.Info("timetable accepted",
		zap.String("timetable_id", tt.ID),
		zap.String("class", tt.Class),
		zap.Int("version", tt.Version),
		zap.Int("superseded", len(superseded)),
	)
	if superseded == nil {
		superseded = []string{}
	}
	return &dto.AcceptTimetableResponse{TimetableID: tt.ID, Version: tt.Version, Superseded: superseded}, nil
}

func (s *TimetableService) writeVersion(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) ([]string, error) {
	if tt.GeneratedAt.IsZero() {
		tt.GeneratedAt = s.cfg.Now()
	}
	if err := s.timetables.CreateVersioned(ctx, exec, tt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}
	superseded, err := s.timetables.MarkSuperseded(ctx, exec, tt.InstituteID, tt.Class, tt.Semester, tt.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to supersede previous timetables")
	}
	return superseded, nil
}

func (s *TimetableService) syncIndex(ctx context.Context, tt *models.Timetable) error {
	if tt.Status == models.TimetableStatusActive {
		err := s.index.Rebuild(ctx, tt.ID, tt.Entries, tt.InstituteID, tt.Department)
		s.metrics.RecordIndexWrite(IndexOpRebuild, err)
		return err
	}
	err := s.index.Remove(ctx, tt.ID)
	s.metrics.RecordIndexWrite(IndexOpRemove, err)
	return err
}

func (s *TimetableService) scheduleRepair(timetableID, op string, cause error) {
	s.logger.Error("session index write failed",
		zap.String("timetable_id", timetableID),
		zap.String("op", op),
		zap.Error(cause),
	)
	s.mu.RLock()
	queue := s.repair
	s.mu.RUnlock()
	if queue == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeIndexRepair,
		Payload: IndexRepairPayload{TimetableID: timetableID, Operation: op},
	}
	if err := queue.Enqueue(job); err != nil {
		s.logger.Error("failed to enqueue index repair", zap.String("timetable_id", timetableID), zap.Error(err))
		return
	}
	s.metrics.RecordIndexRepair("scheduled")
}

// analyze runs the conflict analyzer over a caller-supplied entry set.
func (s *TimetableService) analyze(ctx context.Context, instituteID string, entries []models.TimetableEntry) []models.Conflict {
	history, err := s.history(ctx, instituteID, entries)
	if err != nil {
		s.logger.Warn("historical conflict check skipped", zap.String("institute_id", instituteID), zap.Error(err))
		history = nil
	}
	conflicts := s.analyzer.Analyze(entries, history)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	return conflicts
}

// history returns accepted entries of other classes that may collide with the candidate set. With
// the session index enabled each entry is probed; otherwise every active timetable is scanned.
func (s *TimetableService) history(ctx context.Context, instituteID string, entries []models.TimetableEntry) ([]models.TimetableEntry, error) {
	if !s.cfg.UseSessionIndex {
		return s.timetables.ListHistoricalEntries(ctx, instituteID)
	}

	seen := make(map[string]struct{})
	var rows []models.SessionIndexEntry
	for _, entry := range entries {
		start, end, err := entry.Interval()
		if err != nil {
			continue
		}
		if entry.FacultyID == "" && entry.Room == "" {
			continue
		}
		matched, err := s.index.FindConflicting(ctx, models.SessionProbe{
			InstituteID:  instituteID,
			FacultyID:    entry.FacultyID,
			Room:         entry.Room,
			Day:          entry.Day,
			StartMinutes: start,
			EndMinutes:   end,
			Class:        entry.Class,
		})
		if err != nil {
			return nil, err
		}
		for _, row := range matched {
			if _, ok := seen[row.ID]; ok {
				continue
			}
			seen[row.ID] = struct{}{}
			rows = append(rows, row)
		}
	}
	return historyFromIndex(rows), nil
}

func normalizeEntries(items []dto.TimetableEntryRequest, class, department string) ([]models.TimetableEntry, error) {
	entries := make([]models.TimetableEntry, 0, len(items))
	ids := make(map[string]struct{}, len(items))
	for i, item := range items {
		entry := item.ToModel()
		if entry.ID == "" {
			entry.ID = fmt.Sprintf("%s-%s-%d", entry.SubjectID, entry.Day, i)
		}
		if _, dup := ids[entry.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate entry id %s", entry.ID))
		}
		ids[entry.ID] = struct{}{}
		if entry.Class == "" {
			entry.Class = class
		}
		if entry.Department == "" {
			entry.Department = department
		}
		start, end, err := entry.Interval()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("entry %s has an invalid time", entry.ID))
		}
		if start >= end {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %s must start before it ends", entry.ID))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func summarizeConflicts(conflicts []models.Conflict) dto.ConflictSummary {
	summary := dto.ConflictSummary{
		Total:      len(conflicts),
		BySeverity: make(map[string]int),
		ByType:     make(map[string]int),
	}
	for _, c := range conflicts {
		summary.BySeverity[string(c.Severity)]++
		summary.ByType[string(c.Type)]++
	}
	return summary
}

type timetableProposal struct {
	ID          string
	Request     dto.GenerateTimetableRequest
	Strategy    string
	Entries     []models.TimetableEntry
	Conflicts   []models.Conflict
	GeneratedAt time.Time
}

type timetableProposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newTimetableProposalStore(ttl time.Duration, now func() time.Time) *timetableProposalStore {
	return &timetableProposalStore{ttl: ttl, now: now, items: make(map[string]timetableProposal)}
}

// Save stores the proposal and drops expired ones.
func (s *timetableProposalStore) Save(proposal timetableProposal) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if now.Sub(item.GeneratedAt) > s.ttl {
			delete(s.items, id)
		}
	}
	s.items[proposal.ID] = proposal
}

func (s *timetableProposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if s.now().Sub(proposal.GeneratedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *timetableProposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *timetableProposalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
