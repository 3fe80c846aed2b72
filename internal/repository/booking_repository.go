package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/tutorhub-api/internal/models"
)

// ErrBookingNotPending signals that a status transition was attempted on a
// booking that is no longer pending. Detected inside the update transaction
// so concurrent decisions resolve to a single winner.
var ErrBookingNotPending = errors.New("booking is not pending")

// BookingRepository handles persistence of lesson bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create persists a new lesson booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.LessonBooking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	const query = `INSERT INTO lesson_bookings (id, student_id, teacher_id, subject_id, start_datetime, end_datetime, status, created_at)
        VALUES (:id, :student_id, :teacher_id, :subject_id, :start_datetime, :end_datetime, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// FindByID returns a booking by its ID.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.LessonBooking, error) {
	const query = `SELECT id, student_id, teacher_id, subject_id, start_datetime, end_datetime, status, created_at
        FROM lesson_bookings WHERE id = $1 LIMIT 1`
	var booking models.LessonBooking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &booking, nil
}

const bookingDetailSelect = `SELECT b.id, b.student_id, b.teacher_id, b.subject_id, b.start_datetime, b.end_datetime, b.status, b.created_at,
        st.username AS student_username, t.username AS teacher_username, s.name AS subject_name
        FROM lesson_bookings b
        JOIN users st ON st.id = b.student_id
        JOIN users t ON t.id = b.teacher_id
        JOIN subjects s ON s.id = b.subject_id`

// FindDetailByID returns a booking with usernames and subject name resolved.
func (r *BookingRepository) FindDetailByID(ctx context.Context, id string) (*models.BookingDetail, error) {
	query := bookingDetailSelect + ` WHERE b.id = $1 LIMIT 1`
	var detail models.BookingDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking detail: %w", err)
	}
	return &detail, nil
}

// ListByTeacher returns the teacher-side bookings, newest-created first.
func (r *BookingRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.BookingDetail, error) {
	query := bookingDetailSelect + ` WHERE b.teacher_id = $1 ORDER BY b.created_at DESC`
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher bookings: %w", err)
	}
	return bookings, nil
}

// ListByStudent returns the student-side bookings, newest-created first.
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	query := bookingDetailSelect + ` WHERE b.student_id = $1 ORDER BY b.created_at DESC`
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, studentID); err != nil {
		return nil, fmt.Errorf("list student bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatusIfPending transitions a booking out of pending. The row is
// locked and its status re-read inside the transaction; a booking that is no
// longer pending returns ErrBookingNotPending and nothing is written.
func (r *BookingRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.BookingStatus) (*models.LessonBooking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking transition: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const selectQuery = `SELECT id, student_id, teacher_id, subject_id, start_datetime, end_datetime, status, created_at
        FROM lesson_bookings WHERE id = $1 FOR UPDATE`
	var booking models.LessonBooking
	if err := tx.GetContext(ctx, &booking, selectQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}

	if booking.Status != models.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	if _, err := tx.ExecContext(ctx, `UPDATE lesson_bookings SET status = $2 WHERE id = $1`, id, status); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking transition: %w", err)
	}

	booking.Status = status
	return &booking, nil
}
