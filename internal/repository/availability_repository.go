package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/tutorhub-api/internal/models"
)

// AvailabilityRepository handles persistence of recurring availability slots.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Create persists a new availability slot.
func (r *AvailabilityRepository) Create(ctx context.Context, availability *models.TeacherAvailability) error {
	if availability.ID == "" {
		availability.ID = uuid.NewString()
	}
	const query = `INSERT INTO teacher_availabilities (id, teacher_id, subject_id, weekday, start_time, end_time)
        VALUES (:id, :teacher_id, :subject_id, :weekday, :start_time, :end_time)`
	if _, err := r.db.NamedExecContext(ctx, query, availability); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// FindByID returns an availability slot by its ID.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.TeacherAvailability, error) {
	const query = `SELECT id, teacher_id, subject_id, weekday, start_time, end_time
        FROM teacher_availabilities WHERE id = $1 LIMIT 1`
	var availability models.TeacherAvailability
	if err := r.db.GetContext(ctx, &availability, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find availability: %w", err)
	}
	return &availability, nil
}

// ListByTeacher returns the teacher's published slots with subject info,
// ordered by weekday then start time.
func (r *AvailabilityRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error) {
	const query = `SELECT a.id, a.teacher_id, a.subject_id, a.weekday, a.start_time, a.end_time,
        s.name AS subject_name, s.code AS subject_code
        FROM teacher_availabilities a
        JOIN subjects s ON s.id = a.subject_id
        WHERE a.teacher_id = $1
        ORDER BY a.weekday, a.start_time`
	var slots []models.AvailabilityDetail
	if err := r.db.SelectContext(ctx, &slots, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher availabilities: %w", err)
	}
	return slots, nil
}
