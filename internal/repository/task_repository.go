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

// TaskRepository handles persistence of homework tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO tasks (id, teacher_id, subject_id, title, description, release_at, due_at, created_at)
        VALUES (:id, :teacher_id, :subject_id, :title, :description, :release_at, :due_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

const taskDetailSelect = `SELECT t.id, t.teacher_id, t.subject_id, t.title, t.description, t.release_at, t.due_at, t.created_at,
        s.name AS subject_name, s.code AS subject_code, u.username AS teacher_username
        FROM tasks t
        JOIN subjects s ON s.id = t.subject_id
        JOIN users u ON u.id = t.teacher_id`

// FindByID returns a task by its ID.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	const query = `SELECT id, teacher_id, subject_id, title, description, release_at, due_at, created_at
        FROM tasks WHERE id = $1 LIMIT 1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// ListByTeacher returns a teacher's tasks, newest-created first.
func (r *TaskRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TaskDetail, error) {
	query := taskDetailSelect + ` WHERE t.teacher_id = $1 ORDER BY t.created_at DESC`
	var tasks []models.TaskDetail
	if err := r.db.SelectContext(ctx, &tasks, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher tasks: %w", err)
	}
	return tasks, nil
}

// ListBySubjects returns tasks for any of the given subjects, newest-created
// first.
func (r *TaskRepository) ListBySubjects(ctx context.Context, subjectIDs []string) ([]models.TaskDetail, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(subjectIDs))
	args := make([]interface{}, len(subjectIDs))
	for i, id := range subjectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`%s WHERE t.subject_id IN (%s) ORDER BY t.created_at DESC`,
		taskDetailSelect, strings.Join(placeholders, ","))
	var tasks []models.TaskDetail
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks by subjects: %w", err)
	}
	return tasks, nil
}
