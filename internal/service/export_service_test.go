package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/models"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
)

func TestExportBookingsCSV(t *testing.T) {
	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	bookings := &mockBookingRepo{bookings: map[string]*models.LessonBooking{
		"b1": {ID: "b1", StudentID: "s1", TeacherID: "t1", SubjectID: "sub1", StartDatetime: start, EndDatetime: start.Add(time.Hour), Status: models.BookingStatusApproved, CreatedAt: start.Add(-48 * time.Hour)},
	}}
	svc := NewExportService(bookings, zap.NewNop())

	result, err := svc.ExportBookings(context.Background(), teacherClaims("t1"), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Content)
	assert.Contains(t, body, "Student,Subject,Start,End,Status,Requested At")
	assert.Contains(t, body, "approved")
	assert.Contains(t, body, "2026-09-07 14:00")
}

func TestExportBookingsPDF(t *testing.T) {
	bookings := &mockBookingRepo{}
	svc := NewExportService(bookings, zap.NewNop())

	result, err := svc.ExportBookings(context.Background(), teacherClaims("t1"), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportBookingsRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockBookingRepo{}, zap.NewNop())

	_, err := svc.ExportBookings(context.Background(), teacherClaims("t1"), ExportFormat("xlsx"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "format")
}

func TestExportBookingsForbiddenForStudents(t *testing.T) {
	svc := NewExportService(&mockBookingRepo{}, zap.NewNop())

	_, err := svc.ExportBookings(context.Background(), studentClaims("s1"), ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
