package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/models"
	"github.com/tutorhub/tutorhub-api/internal/repository"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
)

type mockAvailabilityRepo struct {
	slots   map[string]*models.TeacherAvailability
	created []*models.TeacherAvailability
}

func (m *mockAvailabilityRepo) Create(ctx context.Context, availability *models.TeacherAvailability) error {
	if availability.ID == "" {
		availability.ID = "av-created"
	}
	if m.slots == nil {
		m.slots = make(map[string]*models.TeacherAvailability)
	}
	m.slots[availability.ID] = availability
	m.created = append(m.created, availability)
	return nil
}

func (m *mockAvailabilityRepo) FindByID(ctx context.Context, id string) (*models.TeacherAvailability, error) {
	if slot, ok := m.slots[id]; ok {
		return slot, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAvailabilityRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error) {
	var list []models.AvailabilityDetail
	for _, slot := range m.slots {
		if slot.TeacherID == teacherID {
			list = append(list, models.AvailabilityDetail{TeacherAvailability: *slot})
		}
	}
	return list, nil
}

type mockBookingRepo struct {
	bookings map[string]*models.LessonBooking
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.LessonBooking) error {
	if booking.ID == "" {
		booking.ID = "b-created"
	}
	if m.bookings == nil {
		m.bookings = make(map[string]*models.LessonBooking)
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.LessonBooking, error) {
	if booking, ok := m.bookings[id]; ok {
		copied := *booking
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) FindDetailByID(ctx context.Context, id string) (*models.BookingDetail, error) {
	if booking, ok := m.bookings[id]; ok {
		return &models.BookingDetail{LessonBooking: *booking}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.BookingDetail, error) {
	var list []models.BookingDetail
	for _, booking := range m.bookings {
		if booking.TeacherID == teacherID {
			list = append(list, models.BookingDetail{LessonBooking: *booking})
		}
	}
	return list, nil
}

func (m *mockBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	var list []models.BookingDetail
	for _, booking := range m.bookings {
		if booking.StudentID == studentID {
			list = append(list, models.BookingDetail{LessonBooking: *booking})
		}
	}
	return list, nil
}

func (m *mockBookingRepo) UpdateStatusIfPending(ctx context.Context, id string, status models.BookingStatus) (*models.LessonBooking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if booking.Status != models.BookingStatusPending {
		return nil, repository.ErrBookingNotPending
	}
	booking.Status = status
	copied := *booking
	return &copied, nil
}

type mockTeacherSubjects struct {
	pairs map[string]bool
}

func (m *mockTeacherSubjects) TeacherTeaches(ctx context.Context, teacherID, subjectID string) (bool, error) {
	return m.pairs[teacherID+"/"+subjectID], nil
}

func teacherClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Username: "teach", Roles: []string{"teacher"}}
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Username: "stud", Roles: []string{"student"}}
}

func newBookingService(availabilities *mockAvailabilityRepo, bookings *mockBookingRepo, subjects *mockTeacherSubjects) *BookingService {
	london, _ := time.LoadLocation("Europe/London")
	return NewBookingService(availabilities, bookings, subjects, validator.New(), zap.NewNop(), nil, london, 24*time.Hour)
}

func TestCreateAvailabilityFieldValidation(t *testing.T) {
	svc := newBookingService(&mockAvailabilityRepo{}, &mockBookingRepo{}, &mockTeacherSubjects{})

	_, err := svc.CreateAvailability(context.Background(), studentClaims("s1"), CreateAvailabilityRequest{
		SubjectID: "sub1", Weekday: 0, StartTime: "15:00", EndTime: "14:00",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "teacher")
	assert.Contains(t, appErr.Fields, "end_time")
}

func TestCreateAvailabilityRejectsUntaughtSubject(t *testing.T) {
	svc := newBookingService(&mockAvailabilityRepo{}, &mockBookingRepo{}, &mockTeacherSubjects{})

	_, err := svc.CreateAvailability(context.Background(), teacherClaims("t1"), CreateAvailabilityRequest{
		SubjectID: "sub1", Weekday: 2, StartTime: "14:00", EndTime: "15:00",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "subject")
}

func TestCreateAvailabilitySuccess(t *testing.T) {
	availabilities := &mockAvailabilityRepo{}
	subjects := &mockTeacherSubjects{pairs: map[string]bool{"t1/sub1": true}}
	svc := newBookingService(availabilities, &mockBookingRepo{}, subjects)

	slot, err := svc.CreateAvailability(context.Background(), teacherClaims("t1"), CreateAvailabilityRequest{
		SubjectID: "sub1", Weekday: 4, StartTime: "09:30", EndTime: "10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", slot.TeacherID)
	assert.Equal(t, 4, slot.Weekday)
	require.Len(t, availabilities.created, 1)
}

func TestRequestBookingExactAdvanceBoundary(t *testing.T) {
	london, _ := time.LoadLocation("Europe/London")
	availabilities := &mockAvailabilityRepo{slots: map[string]*models.TeacherAvailability{
		"av1": {ID: "av1", TeacherID: "t1", SubjectID: "sub1", Weekday: 1, StartTime: "14:00", EndTime: "15:00"},
	}}
	bookings := &mockBookingRepo{}
	subjects := &mockTeacherSubjects{pairs: map[string]bool{"t1/sub1": true}}
	svc := newBookingService(availabilities, bookings, subjects)

	// Monday 14:00; the Tuesday slot starts exactly 24h later, which is
	// allowed.
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 14, 0, 0, 0, london) }

	detail, err := svc.RequestBooking(context.Background(), studentClaims("s1"), RequestBookingRequest{AvailabilityID: "av1"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 3, 14, 0, 0, 0, london), detail.StartDatetime)
	assert.Equal(t, time.Date(2026, 3, 3, 15, 0, 0, 0, london), detail.EndDatetime)
	assert.Equal(t, models.BookingStatusPending, detail.Status)
}

func TestRequestBookingTooSoon(t *testing.T) {
	london, _ := time.LoadLocation("Europe/London")
	availabilities := &mockAvailabilityRepo{slots: map[string]*models.TeacherAvailability{
		"av1": {ID: "av1", TeacherID: "t1", SubjectID: "sub1", Weekday: 1, StartTime: "14:00", EndTime: "15:00"},
	}}
	svc := newBookingService(availabilities, &mockBookingRepo{}, &mockTeacherSubjects{pairs: map[string]bool{"t1/sub1": true}})

	// Monday 15:00; the Tuesday slot is only 23h away.
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 15, 0, 0, 0, london) }

	_, err := svc.RequestBooking(context.Background(), studentClaims("s1"), RequestBookingRequest{AvailabilityID: "av1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAdvanceNotice.Code, appErrors.FromError(err).Code)
}

func TestRequestBookingSameWeekdayCountsToday(t *testing.T) {
	london, _ := time.LoadLocation("Europe/London")
	availabilities := &mockAvailabilityRepo{slots: map[string]*models.TeacherAvailability{
		"av1": {ID: "av1", TeacherID: "t1", SubjectID: "sub1", Weekday: 0, StartTime: "10:00", EndTime: "11:00"},
	}}
	svc := newBookingService(availabilities, &mockBookingRepo{}, &mockTeacherSubjects{pairs: map[string]bool{"t1/sub1": true}})

	// Monday 08:00 against a Monday slot resolves to today, not next week,
	// so the 10:00 start can never clear the notice window.
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 8, 0, 0, 0, london) }

	_, err := svc.RequestBooking(context.Background(), studentClaims("s1"), RequestBookingRequest{AvailabilityID: "av1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAdvanceNotice.Code, appErrors.FromError(err).Code)
}

func TestRequestBookingWrapsToNextWeek(t *testing.T) {
	london, _ := time.LoadLocation("Europe/London")
	availabilities := &mockAvailabilityRepo{slots: map[string]*models.TeacherAvailability{
		"av1": {ID: "av1", TeacherID: "t1", SubjectID: "sub1", Weekday: 0, StartTime: "10:00", EndTime: "11:00"},
	}}
	svc := newBookingService(availabilities, &mockBookingRepo{}, &mockTeacherSubjects{pairs: map[string]bool{"t1/sub1": true}})

	// Wednesday; the Monday slot resolves to next Monday, five days out.
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 9, 0, 0, 0, london) }

	detail, err := svc.RequestBooking(context.Background(), studentClaims("s1"), RequestBookingRequest{AvailabilityID: "av1", DurationHours: 2})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 10, 0, 0, 0, london), detail.StartDatetime)
	assert.Equal(t, time.Date(2026, 3, 9, 12, 0, 0, 0, london), detail.EndDatetime)
}

func TestRequestBookingUnknownAvailability(t *testing.T) {
	svc := newBookingService(&mockAvailabilityRepo{}, &mockBookingRepo{}, &mockTeacherSubjects{})

	_, err := svc.RequestBooking(context.Background(), studentClaims("s1"), RequestBookingRequest{AvailabilityID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApproveBookingSuccess(t *testing.T) {
	bookings := &mockBookingRepo{bookings: map[string]*models.LessonBooking{
		"b1": {ID: "b1", StudentID: "s1", TeacherID: "t1", SubjectID: "sub1", Status: models.BookingStatusPending},
	}}
	svc := newBookingService(&mockAvailabilityRepo{}, bookings, &mockTeacherSubjects{})

	detail, err := svc.ApproveBooking(context.Background(), teacherClaims("t1"), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusApproved, detail.Status)
}

func TestApproveBookingForbiddenForOtherTeacher(t *testing.T) {
	bookings := &mockBookingRepo{bookings: map[string]*models.LessonBooking{
		"b1": {ID: "b1", StudentID: "s1", TeacherID: "t1", Status: models.BookingStatusPending},
	}}
	svc := newBookingService(&mockAvailabilityRepo{}, bookings, &mockTeacherSubjects{})

	_, err := svc.ApproveBooking(context.Background(), teacherClaims("t2"), "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRejectBookingAlreadyDecided(t *testing.T) {
	bookings := &mockBookingRepo{bookings: map[string]*models.LessonBooking{
		"b1": {ID: "b1", StudentID: "s1", TeacherID: "t1", Status: models.BookingStatusApproved},
	}}
	svc := newBookingService(&mockAvailabilityRepo{}, bookings, &mockTeacherSubjects{})

	_, err := svc.RejectBooking(context.Background(), teacherClaims("t1"), "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.BookingStatusApproved, bookings.bookings["b1"].Status)
}

func TestAdminMayDecideAnyBooking(t *testing.T) {
	bookings := &mockBookingRepo{bookings: map[string]*models.LessonBooking{
		"b1": {ID: "b1", StudentID: "s1", TeacherID: "t1", Status: models.BookingStatusPending},
	}}
	svc := newBookingService(&mockAvailabilityRepo{}, bookings, &mockTeacherSubjects{})

	admin := &models.JWTClaims{UserID: "a1", Roles: []string{}, IsAdmin: true}
	detail, err := svc.RejectBooking(context.Background(), admin, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, detail.Status)
}

func TestListMyBookingsRoleWinsOverIdentity(t *testing.T) {
	bookings := &mockBookingRepo{bookings: map[string]*models.LessonBooking{
		"b1": {ID: "b1", StudentID: "u1", TeacherID: "t1", Status: models.BookingStatusPending},
		"b2": {ID: "b2", StudentID: "s2", TeacherID: "u1", Status: models.BookingStatusPending},
	}}
	svc := newBookingService(&mockAvailabilityRepo{}, bookings, &mockTeacherSubjects{})

	// u1 holds both roles; the teacher side is returned.
	dual := &models.JWTClaims{UserID: "u1", Roles: []string{"student", "teacher"}}
	list, err := svc.ListMyBookings(context.Background(), dual)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b2", list[0].ID)

	asStudent, err := svc.ListMyBookings(context.Background(), studentClaims("u1"))
	require.NoError(t, err)
	require.Len(t, asStudent, 1)
	assert.Equal(t, "b1", asStudent[0].ID)
}
