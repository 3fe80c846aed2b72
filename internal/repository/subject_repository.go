package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/tutorhub-api/internal/models"
)

// SubjectRepository handles the subject catalog and the student/teacher
// subject associations.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns the whole catalog ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, code, name FROM subjects ORDER BY name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByIDs returns the catalog entries matching the given ids.
func (r *SubjectRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, code, name FROM subjects WHERE id IN (%s)`, strings.Join(placeholders, ","))
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("find subjects by ids: %w", err)
	}
	return subjects, nil
}

// ListByUser returns the subjects a student has selected.
func (r *SubjectRepository) ListByUser(ctx context.Context, userID string) ([]models.Subject, error) {
	const query = `SELECT s.id, s.code, s.name FROM subjects s
        JOIN user_subjects us ON us.subject_id = s.id
        WHERE us.user_id = $1 ORDER BY s.name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, userID); err != nil {
		return nil, fmt.Errorf("list user subjects: %w", err)
	}
	return subjects, nil
}

// ListByTeacher returns the subjects a teacher has declared.
func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Subject, error) {
	const query = `SELECT s.id, s.code, s.name FROM subjects s
        JOIN teacher_subjects ts ON ts.subject_id = s.id
        WHERE ts.teacher_id = $1 ORDER BY s.name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// ReplaceUserSubjects rewrites a student's subject set wholesale. The delete
// and inserts run in one transaction so a concurrent reader never observes a
// partial set.
func (r *SubjectRepository) ReplaceUserSubjects(ctx context.Context, userID string, subjectIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace user subjects: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_subjects WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear user subjects: %w", err)
	}
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_subjects (id, user_id, subject_id) VALUES ($1, $2, $3)`,
			uuid.NewString(), userID, subjectID); err != nil {
			return fmt.Errorf("insert user subject: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace user subjects: %w", err)
	}
	return nil
}

// ReplaceTeacherSubjects rewrites a teacher's declared subject set wholesale
// inside one transaction.
func (r *SubjectRepository) ReplaceTeacherSubjects(ctx context.Context, teacherID string, subjectIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace teacher subjects: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_subjects WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear teacher subjects: %w", err)
	}
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_subjects (id, teacher_id, subject_id) VALUES ($1, $2, $3)`,
			uuid.NewString(), teacherID, subjectID); err != nil {
			return fmt.Errorf("insert teacher subject: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace teacher subjects: %w", err)
	}
	return nil
}

// TeacherTeaches checks the (teacher, subject) qualification pair.
func (r *SubjectRepository) TeacherTeaches(ctx context.Context, teacherID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher subject: %w", err)
	}
	return true, nil
}

// UserSelected checks the (student, subject) interest pair.
func (r *SubjectRepository) UserSelected(ctx context.Context, userID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM user_subjects WHERE user_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check user subject: %w", err)
	}
	return true, nil
}

// SeedSubject inserts a catalog entry when its code is absent, reporting
// whether a row was created.
func (r *SubjectRepository) SeedSubject(ctx context.Context, code, name string) (bool, error) {
	const query = `INSERT INTO subjects (id, code, name) VALUES ($1, $2, $3)
        ON CONFLICT (code) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, uuid.NewString(), code, name)
	if err != nil {
		return false, fmt.Errorf("seed subject %s: %w", code, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed subject rows affected: %w", err)
	}
	return affected > 0, nil
}
