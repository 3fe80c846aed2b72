package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/models"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
)

type taskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TaskDetail, error)
	ListBySubjects(ctx context.Context, subjectIDs []string) ([]models.TaskDetail, error)
}

type submissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error)
	FindLatest(ctx context.Context, taskID, studentID string) (*models.Submission, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.SubmissionDetail, error)
	ListByTask(ctx context.Context, taskID string) ([]models.SubmissionDetail, error)
	ListByStudentAndTasks(ctx context.Context, studentID string, taskIDs []string) ([]models.Submission, error)
	UpdateFeedback(ctx context.Context, id, feedbackText string, feedbackAt *time.Time, locked bool) error
}

type homeworkSubjectReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
	UserSelected(ctx context.Context, userID, subjectID string) (bool, error)
	TeacherTeaches(ctx context.Context, teacherID, subjectID string) (bool, error)
}

type submissionStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
}

// CreateTaskRequest describes a new homework task.
type CreateTaskRequest struct {
	SubjectID   string     `json:"subject_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	ReleaseAt   *time.Time `json:"release_at"`
	DueAt       *time.Time `json:"due_at"`
}

// FeedbackRequest carries a teacher's feedback decision for a submission.
type FeedbackRequest struct {
	FeedbackText string `json:"feedback_text"`
	Lock         bool   `json:"lock"`
}

// HomeworkService implements the task and submission engine.
type HomeworkService struct {
	tasks       taskRepository
	submissions submissionRepository
	subjects    homeworkSubjectReader
	store       submissionStore
	validator   *validator.Validate
	logger      *zap.Logger
	maxFileSize int64
	now         func() time.Time
}

// NewHomeworkService constructs HomeworkService. maxFileSize caps uploaded
// submission files in bytes.
func NewHomeworkService(tasks taskRepository, submissions submissionRepository, subjects homeworkSubjectReader, store submissionStore, validate *validator.Validate, logger *zap.Logger, maxFileSize int64) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &HomeworkService{
		tasks:       tasks,
		submissions: submissions,
		subjects:    subjects,
		store:       store,
		validator:   validate,
		logger:      logger,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// MaxFileSize returns the submission upload cap in bytes.
func (s *HomeworkService) MaxFileSize() int64 {
	return s.maxFileSize
}

// CreateTask publishes a homework task owned by the acting teacher.
func (s *HomeworkService) CreateTask(ctx context.Context, actor *models.JWTClaims, req CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	fields := map[string]string{}
	if !actor.IsTeacherRole() {
		fields["teacher"] = "selected user does not hold the teacher role"
	}
	if req.ReleaseAt != nil && req.DueAt != nil && !req.DueAt.After(*req.ReleaseAt) {
		fields["due_at"] = "due date must be after the release date"
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

	task := &models.Task{
		TeacherID:   actor.UserID,
		SubjectID:   req.SubjectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ReleaseAt:   req.ReleaseAt,
		DueAt:       req.DueAt,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	return task, nil
}

// ListMyTasks returns tasks owned by the acting teacher.
func (s *HomeworkService) ListMyTasks(ctx context.Context, actor *models.JWTClaims) ([]models.TaskDetail, error) {
	if !actor.IsTeacherRole() && !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	tasks, err := s.tasks.ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// ListTasksForStudent returns tasks across the student's selected subjects,
// each annotated with the student's latest submission if any. Tasks come
// back newest first; an empty subject selection yields an empty list.
func (s *HomeworkService) ListTasksForStudent(ctx context.Context, actor *models.JWTClaims) ([]models.StudentTask, error) {
	subjects, err := s.subjects.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if len(subjects) == 0 {
		return []models.StudentTask{}, nil
	}

	subjectIDs := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subjectIDs = append(subjectIDs, subject.ID)
	}
	tasks, err := s.tasks.ListBySubjects(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	if len(tasks) == 0 {
		return []models.StudentTask{}, nil
	}

	taskIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}
	submissions, err := s.submissions.ListByStudentAndTasks(ctx, actor.UserID, taskIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	// Rows arrive newest-submitted first, so the first row seen per task is
	// the operative submission.
	latest := make(map[string]*models.LatestSubmission, len(submissions))
	for _, submission := range submissions {
		if _, seen := latest[submission.TaskID]; seen {
			continue
		}
		latest[submission.TaskID] = &models.LatestSubmission{
			ID:           submission.ID,
			SubmittedAt:  submission.SubmittedAt,
			FeedbackText: submission.FeedbackText,
			FeedbackAt:   submission.FeedbackAt,
			Locked:       submission.Locked,
			FilePath:     submission.FilePath,
		}
	}

	result := make([]models.StudentTask, 0, len(tasks))
	for _, task := range tasks {
		entry := models.StudentTask{TaskDetail: task}
		if sub, ok := latest[task.ID]; ok {
			entry.Submitted = true
			entry.Latest = sub
		}
		result = append(result, entry)
	}
	return result, nil
}

// Submit stores an uploaded file as a new submission for the task. Only
// students may submit; a locked latest submission blocks further uploads
// for the pair.
func (s *HomeworkService) Submit(ctx context.Context, actor *models.JWTClaims, taskID, filename string, file io.Reader) (*models.Submission, error) {
	if actor.IsTeacherRole() {
		return nil, appErrors.NewValidation(map[string]string{"student": "only students can submit"})
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	selected, err := s.subjects.UserSelected(ctx, actor.UserID, task.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject selection")
	}
	if !selected {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you have not selected this task's subject")
	}

	previous, err := s.submissions.FindLatest(ctx, taskID, actor.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous submission")
	}
	if previous != nil && previous.Locked {
		return nil, appErrors.Clone(appErrors.ErrSubmissionLocked, "")
	}

	if file == nil || strings.TrimSpace(filename) == "" {
		return nil, appErrors.NewValidation(map[string]string{"file": "a submission file is required"})
	}

	storedName := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(filename))
	if _, err := s.store.SaveStream(storedName, io.LimitReader(file, s.maxFileSize)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission file")
	}

	submission := &models.Submission{
		TaskID:      taskID,
		StudentID:   actor.UserID,
		FilePath:    storedName,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}
	s.logger.Info("submission received",
		zap.String("submission_id", submission.ID),
		zap.String("task_id", taskID),
		zap.String("student_id", actor.UserID))
	return submission, nil
}

// ListSubmissionsForTeacher returns submissions across all tasks owned by
// the acting teacher.
func (s *HomeworkService) ListSubmissionsForTeacher(ctx context.Context, actor *models.JWTClaims) ([]models.SubmissionDetail, error) {
	if !actor.IsTeacherRole() && !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	submissions, err := s.submissions.ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// ListSubmissionsForTask returns every submission for one task. Only the
// task's owner and admins may look.
func (s *HomeworkService) ListSubmissionsForTask(ctx context.Context, actor *models.JWTClaims, taskID string) ([]models.SubmissionDetail, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	if !actor.IsAdmin && task.TeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	submissions, err := s.submissions.ListByTask(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// GiveFeedback records feedback on a submission and optionally locks it.
// Locking requires non-empty feedback text; the check happens before any
// write so a rejected lock leaves the submission untouched.
func (s *HomeworkService) GiveFeedback(ctx context.Context, actor *models.JWTClaims, submissionID string, req FeedbackRequest) (*models.SubmissionDetail, error) {
	detail, err := s.submissions.FindDetailByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if !actor.IsAdmin && detail.TaskTeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	text := strings.TrimSpace(req.FeedbackText)
	if req.Lock && text == "" {
		return nil, appErrors.NewValidation(map[string]string{"feedback_text": "feedback text is required to lock a submission"})
	}

	var feedbackAt *time.Time
	if text != "" {
		now := s.now().UTC()
		feedbackAt = &now
	}
	if err := s.submissions.UpdateFeedback(ctx, submissionID, text, feedbackAt, req.Lock); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
	}

	updated, err := s.submissions.FindDetailByID(ctx, submissionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload submission")
	}
	return updated, nil
}

// OpenSubmissionFile opens the stored file for a submission. The student
// who submitted, the owning task's teacher and admins may download.
func (s *HomeworkService) OpenSubmissionFile(ctx context.Context, actor *models.JWTClaims, submissionID string) (*models.SubmissionDetail, *os.File, error) {
	detail, err := s.submissions.FindDetailByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	allowed := actor.IsAdmin || detail.StudentID == actor.UserID || detail.TaskTeacherID == actor.UserID
	if !allowed {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	file, err := s.store.Open(detail.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "submission file not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open submission file")
	}
	return detail, file, nil
}
