package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/tutorhub-api/internal/models"
)

// SubmissionRepository handles persistence of homework submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create persists a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO submissions (id, task_id, student_id, file_path, submitted_at, feedback_text, feedback_at, locked)
        VALUES (:id, :task_id, :student_id, :file_path, :submitted_at, :feedback_text, :feedback_at, :locked)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

const submissionDetailSelect = `SELECT sub.id, sub.task_id, sub.student_id, sub.file_path, sub.submitted_at,
        sub.feedback_text, sub.feedback_at, sub.locked,
        t.title AS task_title, t.teacher_id AS task_teacher_id,
        s.name AS subject_name, u.username AS student_username
        FROM submissions sub
        JOIN tasks t ON t.id = sub.task_id
        JOIN subjects s ON s.id = t.subject_id
        JOIN users u ON u.id = sub.student_id`

// FindDetailByID returns a submission with task and student info resolved.
func (r *SubmissionRepository) FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	query := submissionDetailSelect + ` WHERE sub.id = $1 LIMIT 1`
	var detail models.SubmissionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission detail: %w", err)
	}
	return &detail, nil
}

// FindLatest returns the most recent submission for a (task, student) pair.
func (r *SubmissionRepository) FindLatest(ctx context.Context, taskID, studentID string) (*models.Submission, error) {
	const query = `SELECT id, task_id, student_id, file_path, submitted_at, feedback_text, feedback_at, locked
        FROM submissions WHERE task_id = $1 AND student_id = $2
        ORDER BY submitted_at DESC LIMIT 1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, taskID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest submission: %w", err)
	}
	return &submission, nil
}

// ListByTeacher returns submissions across all tasks owned by the teacher,
// newest-submitted first.
func (r *SubmissionRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.SubmissionDetail, error) {
	query := submissionDetailSelect + ` WHERE t.teacher_id = $1 ORDER BY sub.submitted_at DESC`
	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher submissions: %w", err)
	}
	return submissions, nil
}

// ListByTask returns submissions for one task, newest-submitted first.
func (r *SubmissionRepository) ListByTask(ctx context.Context, taskID string) ([]models.SubmissionDetail, error) {
	query := submissionDetailSelect + ` WHERE sub.task_id = $1 ORDER BY sub.submitted_at DESC`
	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, taskID); err != nil {
		return nil, fmt.Errorf("list task submissions: %w", err)
	}
	return submissions, nil
}

// ListByStudentAndTasks returns a student's submissions across the given
// tasks ordered by submitted_at descending, for latest-per-task annotation.
func (r *SubmissionRepository) ListByStudentAndTasks(ctx context.Context, studentID string, taskIDs []string) ([]models.Submission, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(taskIDs))
	args := make([]interface{}, 0, len(taskIDs)+1)
	args = append(args, studentID)
	for i, id := range taskIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT id, task_id, student_id, file_path, submitted_at, feedback_text, feedback_at, locked
        FROM submissions WHERE student_id = $1 AND task_id IN (%s)
        ORDER BY submitted_at DESC`, strings.Join(placeholders, ","))
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, fmt.Errorf("list student submissions: %w", err)
	}
	return submissions, nil
}

// UpdateFeedback applies feedback, feedback timestamp and lock state in one
// statement.
func (r *SubmissionRepository) UpdateFeedback(ctx context.Context, id, feedbackText string, feedbackAt *time.Time, locked bool) error {
	const query = `UPDATE submissions SET feedback_text = $2, feedback_at = $3, locked = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, feedbackText, feedbackAt, locked); err != nil {
		return fmt.Errorf("update submission feedback: %w", err)
	}
	return nil
}
