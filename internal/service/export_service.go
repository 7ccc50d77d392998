package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
	"github.com/unitime-app/unitime-api/pkg/export"
)

type exportSubjectLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
}

const exportTimeLayout = "2006-01-02 15:04"

// MissingSubjectLabel is rendered when an event references a deleted
// subject.
const MissingSubjectLabel = "Môn đã xóa"

// ExportService renders a user's schedule as a downloadable document.
type ExportService struct {
	events   dashboardEventLister
	subjects exportSubjectLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(events dashboardEventLister, subjects exportSubjectLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		events:   events,
		subjects: subjects,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// EventsCSV renders the full event list as CSV.
func (s *ExportService) EventsCSV(ctx context.Context, userID string) ([]byte, error) {
	table, err := s.buildTable(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(*table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// EventsPDF renders the full event list as a PDF table.
func (s *ExportService) EventsPDF(ctx context.Context, userID string) ([]byte, error) {
	table, err := s.buildTable(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(*table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return data, nil
}

func (s *ExportService) buildTable(ctx context.Context, userID string) (*export.Table, error) {
	events, err := s.events.ListByUser(ctx, userID, models.EventFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	subjects, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	names := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		names[sub.ID] = sub.Name
	}

	table := &export.Table{
		Title:   "Schedule",
		Columns: []string{"Title", "Subject", "Type", "Priority", "Start", "End", "Completed"},
	}
	for _, ev := range events {
		subject := ""
		if ev.SubjectID != nil {
			var ok bool
			if subject, ok = names[*ev.SubjectID]; !ok {
				subject = MissingSubjectLabel
			}
		}
		completed := "no"
		if ev.IsCompleted {
			completed = "yes"
		}
		table.Rows = append(table.Rows, []string{
			ev.Title,
			subject,
			string(ev.Type),
			string(ev.Priority),
			ev.StartTime.Format(exportTimeLayout),
			ev.EndTime.Format(exportTimeLayout),
			completed,
		})
	}
	return table, nil
}
