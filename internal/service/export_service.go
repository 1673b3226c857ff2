package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-engine/internal/dto"
	"github.com/noah-isme/sma-timetable-engine/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
	"github.com/noah-isme/sma-timetable-engine/pkg/export"
	"github.com/noah-isme/sma-timetable-engine/pkg/sharelink"
)

type timetableLoader interface {
	Get(ctx context.Context, id string) (*models.Timetable, error)
}

type sheetRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
	ContentType() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
}

// ExportFile is a rendered timetable ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders stored timetables as weekly grids and issues signed download links.
type ExportService struct {
	timetables timetableLoader
	renderers  map[models.ExportFormat]sheetRenderer
	signer     *sharelink.Signer
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService. signer may be nil, which disables share links.
func NewExportService(timetables timetableLoader, signer *sharelink.Signer, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		timetables: timetables,
		renderers: map[models.ExportFormat]sheetRenderer{
			models.ExportFormatCSV:  export.NewCSVExporter(),
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatXLSX: export.NewXLSXExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// Export renders the timetable in the requested format.
func (s *ExportService) Export(ctx context.Context, timetableID, format string) (*ExportFile, error) {
	parsed, ok := models.ParseExportFormat(format)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	tt, err := s.timetables.Get(ctx, timetableID)
	if err != nil {
		return nil, err
	}

	renderer := s.renderers[parsed]
	data, err := renderer.Render(BuildWeeklySheet(tt))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}
	s.logger.Debug("timetable exported", zap.String("timetable_id", tt.ID), zap.String("format", string(parsed)), zap.Int("bytes", len(data)))
	return &ExportFile{
		Filename:    exportFilename(tt, parsed),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// ShareLink signs a download link for the timetable export.
func (s *ExportService) ShareLink(ctx context.Context, timetableID, format string) (*dto.ExportLinkResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "export links are disabled")
	}
	if _, ok := models.ParseExportFormat(format); !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	if _, err := s.timetables.Get(ctx, timetableID); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Sign(timetableID, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	return &dto.ExportLinkResponse{
		URL:       fmt.Sprintf("%s/exports/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		Format:    format,
		ExpiresAt: expiresAt,
	}, nil
}

// ExportByToken renders the export a share link points at.
func (s *ExportService) ExportByToken(ctx context.Context, token string) (*ExportFile, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "export links are disabled")
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		msg := "invalid export link"
		if errors.Is(err, sharelink.ErrExpiredToken) {
			msg = "export link expired"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, msg)
	}
	return s.Export(ctx, claims.Subject, claims.Format)
}

// BuildWeeklySheet lays the timetable out with one row per time range and one column per day.
// Monday to Friday are always shown; other days only when they carry entries.
func BuildWeeklySheet(tt *models.Timetable) export.Sheet {
	days := append([]string(nil), models.SchoolDays...)
	dayIndex := make(map[string]int, len(days))
	for i, day := range days {
		dayIndex[day] = i
	}
	for _, entry := range tt.Entries {
		if _, ok := dayIndex[entry.Day]; !ok {
			dayIndex[entry.Day] = -1
			days = append(days, entry.Day)
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return models.DayOrder(days[i]) < models.DayOrder(days[j]) })
	for i, day := range days {
		dayIndex[day] = i
	}

	type timeRange struct{ start, end string }
	cells := make(map[timeRange][]string)
	ranges := make([]timeRange, 0)
	for _, entry := range tt.Entries {
		key := timeRange{entry.StartTime, entry.EndTime}
		if _, ok := cells[key]; !ok {
			cells[key] = make([]string, len(days))
			ranges = append(ranges, key)
		}
		col := dayIndex[entry.Day]
		text := describeEntry(entry)
		if cells[key][col] != "" {
			text = cells[key][col] + "\n---\n" + text
		}
		cells[key][col] = text
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start < ranges[j].start
		}
		return ranges[i].end < ranges[j].end
	})

	rows := make([][]string, 0, len(ranges))
	for _, r := range ranges {
		rows = append(rows, append([]string{r.start + "-" + r.end}, cells[r]...))
	}
	return export.Sheet{
		Title:   fmt.Sprintf("%s %s v%d", tt.Class, tt.Semester, tt.Version),
		Headers: append([]string{"Time"}, days...),
		Rows:    rows,
	}
}

func describeEntry(entry models.TimetableEntry) string {
	subject := entry.SubjectName
	if subject == "" {
		subject = entry.SubjectID
	}
	if entry.Type == models.EntryTypeLab {
		subject += " (lab)"
	}
	parts := []string{subject}
	if label := facultyLabel(entry); label != "" {
		parts = append(parts, label)
	}
	if entry.Room != "" {
		parts = append(parts, entry.Room)
	}
	return strings.Join(parts, "\n")
}

func exportFilename(tt *models.Timetable, format models.ExportFormat) string {
	return fmt.Sprintf("timetable_%s_%s_v%d.%s", sanitizeFilename(tt.Class), sanitizeFilename(tt.Semester), tt.Version, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 60 {
		return result[:60]
	}
	return result
}
