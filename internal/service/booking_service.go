package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/models"
	"github.com/tutorhub/tutorhub-api/internal/repository"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
)

type availabilityRepository interface {
	Create(ctx context.Context, availability *models.TeacherAvailability) error
	FindByID(ctx context.Context, id string) (*models.TeacherAvailability, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error)
}

type bookingRepository interface {
	Create(ctx context.Context, booking *models.LessonBooking) error
	FindByID(ctx context.Context, id string) (*models.LessonBooking, error)
	FindDetailByID(ctx context.Context, id string) (*models.BookingDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.BookingDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error)
	UpdateStatusIfPending(ctx context.Context, id string, status models.BookingStatus) (*models.LessonBooking, error)
}

type teacherSubjectChecker interface {
	TeacherTeaches(ctx context.Context, teacherID, subjectID string) (bool, error)
}

// CreateAvailabilityRequest describes a new weekly availability slot.
type CreateAvailabilityRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// RequestBookingRequest describes a student's booking request.
type RequestBookingRequest struct {
	AvailabilityID string `json:"availability_id" validate:"required"`
	DurationHours  int    `json:"duration_hours"`
}

// BookingService implements the availability and booking engine.
type BookingService struct {
	availabilities availabilityRepository
	bookings       bookingRepository
	subjects       teacherSubjectChecker
	validator      *validator.Validate
	logger         *zap.Logger
	metrics        *MetricsService
	location       *time.Location
	advanceNotice  time.Duration
	now            func() time.Time
}

// NewBookingService constructs BookingService. The location is the single
// zone bookings are composed in; advanceNotice is the minimum lead time for
// a booking start.
func NewBookingService(availabilities availabilityRepository, bookings bookingRepository, subjects teacherSubjectChecker, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, location *time.Location, advanceNotice time.Duration) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	if advanceNotice <= 0 {
		advanceNotice = 24 * time.Hour
	}
	return &BookingService{
		availabilities: availabilities,
		bookings:       bookings,
		subjects:       subjects,
		validator:      validate,
		logger:         logger,
		metrics:        metrics,
		location:       location,
		advanceNotice:  advanceNotice,
		now:            time.Now,
	}
}

// CreateAvailability publishes a weekly recurring slot for the acting
// teacher. The full invariant set is checked before the write.
func (s *BookingService) CreateAvailability(ctx context.Context, actor *models.JWTClaims, req CreateAvailabilityRequest) (*models.TeacherAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	fields := map[string]string{}
	if !actor.IsTeacherRole() {
		fields["teacher"] = "selected user does not hold the teacher role"
	}
	start, startErr := parseClock(req.StartTime)
	if startErr != nil {
		fields["start_time"] = "expected HH:MM"
	}
	end, endErr := parseClock(req.EndTime)
	if endErr != nil {
		fields["end_time"] = "expected HH:MM"
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		fields["end_time"] = "end time must be after start time"
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		fields["weekday"] = "weekday must be between 0 (Monday) and 6 (Sunday)"
	}
	if len(fields) == 0 {
		teaches, err := s.subjects.TeacherTeaches(ctx, actor.UserID, req.SubjectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teaching subjects")
		}
		if !teaches {
			fields["subject"] = "this teacher has not selected this subject"
		}
	}
	if len(fields) > 0 {
		return nil, appErrors.NewValidation(fields)
	}

	availability := &models.TeacherAvailability{
		TeacherID: actor.UserID,
		SubjectID: req.SubjectID,
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.availabilities.Create(ctx, availability); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability")
	}
	return availability, nil
}

// ListAvailabilities returns the acting teacher's published slots.
func (s *BookingService) ListAvailabilities(ctx context.Context, actor *models.JWTClaims) ([]models.AvailabilityDetail, error) {
	if !actor.IsTeacherRole() && !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	slots, err := s.availabilities.ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availabilities")
	}
	return slots, nil
}

// RequestBooking books the next occurrence of an availability slot for the
// acting student. The slot's weekday is resolved to the next calendar date
// on or after today (today counts when it matches); the start must be at
// least the advance-notice window away.
func (s *BookingService) RequestBooking(ctx context.Context, actor *models.JWTClaims, req RequestBookingRequest) (*models.BookingDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	duration := req.DurationHours
	if duration <= 0 {
		duration = 1
	}

	availability, err := s.availabilities.FindByID(ctx, req.AvailabilityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	slotStart, err := parseClock(availability.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored availability has an invalid start time")
	}

	now := s.now().In(s.location)
	daysAhead := (availability.Weekday - mondayIndex(now.Weekday()) + 7) % 7
	startDate := now.AddDate(0, 0, daysAhead)
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), slotStart.Hour(), slotStart.Minute(), 0, 0, s.location)
	end := start.Add(time.Duration(duration) * time.Hour)

	// Strict boundary: exactly advanceNotice ahead is allowed.
	if start.Before(now.Add(s.advanceNotice)) {
		return nil, appErrors.Clone(appErrors.ErrAdvanceNotice, "")
	}

	teaches, err := s.subjects.TeacherTeaches(ctx, availability.TeacherID, availability.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teaching subjects")
	}
	if !teaches {
		return nil, appErrors.NewValidation(map[string]string{"subject": "teacher does not teach this subject"})
	}

	booking := &models.LessonBooking{
		StudentID:     actor.UserID,
		TeacherID:     availability.TeacherID,
		SubjectID:     availability.SubjectID,
		StartDatetime: start,
		EndDatetime:   end,
		Status:        models.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	detail, err := s.bookings.FindDetailByID(ctx, booking.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking detail")
	}
	s.logger.Info("booking requested",
		zap.String("booking_id", booking.ID),
		zap.String("student_id", actor.UserID),
		zap.Time("start", start))
	return detail, nil
}

// ListMyBookings returns the actor's bookings, newest-created first.
// Teachers and admins see their teacher-side bookings; everyone else sees
// their student-side bookings. Role wins over identity when both apply.
func (s *BookingService) ListMyBookings(ctx context.Context, actor *models.JWTClaims) ([]models.BookingDetail, error) {
	if actor.IsTeacherRole() || actor.IsAdmin {
		bookings, err := s.bookings.ListByTeacher(ctx, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
		}
		return bookings, nil
	}
	bookings, err := s.bookings.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// ApproveBooking transitions a pending booking to approved.
func (s *BookingService) ApproveBooking(ctx context.Context, actor *models.JWTClaims, bookingID string) (*models.BookingDetail, error) {
	return s.decideBooking(ctx, actor, bookingID, models.BookingStatusApproved)
}

// RejectBooking transitions a pending booking to rejected.
func (s *BookingService) RejectBooking(ctx context.Context, actor *models.JWTClaims, bookingID string) (*models.BookingDetail, error) {
	return s.decideBooking(ctx, actor, bookingID, models.BookingStatusRejected)
}

func (s *BookingService) decideBooking(ctx context.Context, actor *models.JWTClaims, bookingID string, status models.BookingStatus) (*models.BookingDetail, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	if !actor.IsAdmin && !(actor.IsTeacherRole() && booking.TeacherID == actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	// The pending precondition is re-checked against a locked row inside
	// the update transaction; this early check only shapes the error for
	// the common case.
	if booking.Status != models.BookingStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("only pending bookings can be %s", status))
	}

	if _, err := s.bookings.UpdateStatusIfPending(ctx, bookingID, status); err != nil {
		if errors.Is(err, repository.ErrBookingNotPending) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("only pending bookings can be %s", status))
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking")
	}
	s.metrics.RecordBookingDecision(string(status))

	detail, err := s.bookings.FindDetailByID(ctx, bookingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking detail")
	}
	return detail, nil
}

// mondayIndex maps Go's Sunday-first weekday onto the stored Monday=0
// convention.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// parseClock parses an "HH:MM" wall-clock value.
func parseClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", value, err)
	}
	return t, nil
}
