package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/models"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
	"github.com/tutorhub/tutorhub-api/pkg/export"
)

type exportBookingLister interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.BookingDetail, error)
}

// ExportFormat selects the rendered output for an export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered export bytes plus HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders teacher-facing booking reports.
type ExportService struct {
	bookings exportBookingLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

func NewExportService(bookings exportBookingLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		bookings: bookings,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

var bookingExportHeaders = []string{"Student", "Subject", "Start", "End", "Status", "Requested At"}

// ExportBookings renders the acting teacher's bookings as CSV or PDF.
func (s *ExportService) ExportBookings(ctx context.Context, actor *models.JWTClaims, format ExportFormat) (*ExportResult, error) {
	if !actor.IsTeacherRole() && !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.NewValidation(map[string]string{"format": "format must be csv or pdf"})
	}

	bookings, err := s.bookings.ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}

	dataset := export.Dataset{Title: "Lesson Bookings", Headers: bookingExportHeaders}
	for _, booking := range bookings {
		dataset.AddRow(
			booking.StudentUsername,
			booking.SubjectName,
			booking.StartDatetime.Format("2006-01-02 15:04"),
			booking.EndDatetime.Format("2006-01-02 15:04"),
			string(booking.Status),
			booking.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	stamp := s.now().Format("20060102-150405")
	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("bookings-%s.pdf", stamp),
		}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("bookings-%s.csv", stamp),
		}, nil
	}
}
