package service

import (
	"context"
	"database/sql"
	"io"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/models"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
)

type mockTaskRepo struct {
	tasks map[string]*models.Task
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = "task-created"
	}
	if m.tasks == nil {
		m.tasks = make(map[string]*models.Task)
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if task, ok := m.tasks[id]; ok {
		return task, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.TaskDetail, error) {
	var list []models.TaskDetail
	for _, task := range m.tasks {
		if task.TeacherID == teacherID {
			list = append(list, models.TaskDetail{Task: *task})
		}
	}
	return list, nil
}

func (m *mockTaskRepo) ListBySubjects(ctx context.Context, subjectIDs []string) ([]models.TaskDetail, error) {
	wanted := make(map[string]struct{}, len(subjectIDs))
	for _, id := range subjectIDs {
		wanted[id] = struct{}{}
	}
	var list []models.TaskDetail
	for _, task := range m.tasks {
		if _, ok := wanted[task.SubjectID]; ok {
			list = append(list, models.TaskDetail{Task: *task})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type mockSubmissionRepo struct {
	submissions map[string]*models.Submission
	updates     int
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = "sub-created"
	}
	if m.submissions == nil {
		m.submissions = make(map[string]*models.Submission)
	}
	m.submissions[submission.ID] = submission
	return nil
}

func (m *mockSubmissionRepo) detail(submission *models.Submission, taskTeacherID string) *models.SubmissionDetail {
	return &models.SubmissionDetail{Submission: *submission, TaskTeacherID: taskTeacherID}
}

func (m *mockSubmissionRepo) FindDetailByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	if submission, ok := m.submissions[id]; ok {
		// Task ids double as owner ids in these fixtures via taskOwners.
		return m.detail(submission, taskOwners[submission.TaskID]), nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) FindLatest(ctx context.Context, taskID, studentID string) (*models.Submission, error) {
	var latest *models.Submission
	for _, submission := range m.submissions {
		if submission.TaskID != taskID || submission.StudentID != studentID {
			continue
		}
		if latest == nil || submission.SubmittedAt.After(latest.SubmittedAt) {
			latest = submission
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	copied := *latest
	return &copied, nil
}

func (m *mockSubmissionRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.SubmissionDetail, error) {
	var list []models.SubmissionDetail
	for _, submission := range m.submissions {
		if taskOwners[submission.TaskID] == teacherID {
			list = append(list, *m.detail(submission, teacherID))
		}
	}
	return list, nil
}

func (m *mockSubmissionRepo) ListByTask(ctx context.Context, taskID string) ([]models.SubmissionDetail, error) {
	var list []models.SubmissionDetail
	for _, submission := range m.submissions {
		if submission.TaskID == taskID {
			list = append(list, *m.detail(submission, taskOwners[taskID]))
		}
	}
	return list, nil
}

func (m *mockSubmissionRepo) ListByStudentAndTasks(ctx context.Context, studentID string, taskIDs []string) ([]models.Submission, error) {
	wanted := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		wanted[id] = struct{}{}
	}
	var list []models.Submission
	for _, submission := range m.submissions {
		if submission.StudentID != studentID {
			continue
		}
		if _, ok := wanted[submission.TaskID]; ok {
			list = append(list, *submission)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SubmittedAt.After(list[j].SubmittedAt) })
	return list, nil
}

func (m *mockSubmissionRepo) UpdateFeedback(ctx context.Context, id, feedbackText string, feedbackAt *time.Time, locked bool) error {
	submission, ok := m.submissions[id]
	if !ok {
		return sql.ErrNoRows
	}
	submission.FeedbackText = feedbackText
	submission.FeedbackAt = feedbackAt
	submission.Locked = locked
	m.updates++
	return nil
}

// taskOwners maps fixture task ids to their owning teacher.
var taskOwners = map[string]string{"task1": "t1", "task2": "t2"}

type mockHomeworkSubjects struct {
	selected map[string][]models.Subject
	teaches  map[string]bool
}

func (m *mockHomeworkSubjects) ListByUser(ctx context.Context, userID string) ([]models.Subject, error) {
	return m.selected[userID], nil
}

func (m *mockHomeworkSubjects) UserSelected(ctx context.Context, userID, subjectID string) (bool, error) {
	for _, subject := range m.selected[userID] {
		if subject.ID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockHomeworkSubjects) TeacherTeaches(ctx context.Context, teacherID, subjectID string) (bool, error) {
	return m.teaches[teacherID+"/"+subjectID], nil
}

type mockStore struct {
	saved map[string]string
}

func (m *mockStore) SaveStream(filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	m.saved[filename] = string(data)
	return filename, nil
}

func (m *mockStore) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func newHomeworkService(tasks *mockTaskRepo, submissions *mockSubmissionRepo, subjects *mockHomeworkSubjects, store *mockStore) *HomeworkService {
	return NewHomeworkService(tasks, submissions, subjects, store, validator.New(), zap.NewNop(), 1<<20)
}

func TestCreateTaskRequiresTaughtSubject(t *testing.T) {
	svc := newHomeworkService(&mockTaskRepo{}, &mockSubmissionRepo{}, &mockHomeworkSubjects{}, &mockStore{})

	_, err := svc.CreateTask(context.Background(), teacherClaims("t1"), CreateTaskRequest{SubjectID: "sub1", Title: "Quadratics"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "subject")
}

func TestCreateTaskSuccess(t *testing.T) {
	tasks := &mockTaskRepo{}
	subjects := &mockHomeworkSubjects{teaches: map[string]bool{"t1/sub1": true}}
	svc := newHomeworkService(tasks, &mockSubmissionRepo{}, subjects, &mockStore{})

	task, err := svc.CreateTask(context.Background(), teacherClaims("t1"), CreateTaskRequest{SubjectID: "sub1", Title: "  Quadratics  "})
	require.NoError(t, err)
	assert.Equal(t, "Quadratics", task.Title)
	assert.Equal(t, "t1", task.TeacherID)
}

func TestSubmitUnknownTask(t *testing.T) {
	svc := newHomeworkService(&mockTaskRepo{}, &mockSubmissionRepo{}, &mockHomeworkSubjects{}, &mockStore{})

	_, err := svc.Submit(context.Background(), studentClaims("s1"), "missing", "work.pdf", strings.NewReader("data"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsTeacherRole(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"}}}
	submissions := &mockSubmissionRepo{}
	subjects := &mockHomeworkSubjects{selected: map[string][]models.Subject{"dual": {{ID: "sub1"}}}}
	svc := newHomeworkService(tasks, submissions, subjects, &mockStore{})

	dual := &models.JWTClaims{UserID: "dual", Username: "both", Roles: []string{"student", "teacher"}}
	_, err := svc.Submit(context.Background(), dual, "task1", "work.pdf", strings.NewReader("data"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "student")
	assert.Empty(t, submissions.submissions)
}

func TestSubmitRequiresSubjectSelection(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"}}}
	svc := newHomeworkService(tasks, &mockSubmissionRepo{}, &mockHomeworkSubjects{}, &mockStore{})

	_, err := svc.Submit(context.Background(), studentClaims("s1"), "task1", "work.pdf", strings.NewReader("data"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSubmitBlockedWhenLatestLocked(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"}}}
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"old": {ID: "old", TaskID: "task1", StudentID: "s1", SubmittedAt: time.Now().Add(-time.Hour), Locked: true},
	}}
	subjects := &mockHomeworkSubjects{selected: map[string][]models.Subject{"s1": {{ID: "sub1"}}}}
	svc := newHomeworkService(tasks, submissions, subjects, &mockStore{})

	_, err := svc.Submit(context.Background(), studentClaims("s1"), "task1", "work.pdf", strings.NewReader("data"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSubmissionLocked.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestSubmitMissingFileAfterTaskChecks(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"}}}
	subjects := &mockHomeworkSubjects{selected: map[string][]models.Subject{"s1": {{ID: "sub1"}}}}

	// Unknown task wins over the missing file.
	svc := newHomeworkService(tasks, &mockSubmissionRepo{}, subjects, &mockStore{})
	_, err := svc.Submit(context.Background(), studentClaims("s1"), "missing", "", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// A locked latest submission wins over the missing file.
	locked := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"old": {ID: "old", TaskID: "task1", StudentID: "s1", SubmittedAt: time.Now().Add(-time.Hour), Locked: true},
	}}
	svc = newHomeworkService(tasks, locked, subjects, &mockStore{})
	_, err = svc.Submit(context.Background(), studentClaims("s1"), "task1", "", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSubmissionLocked.Code, appErrors.FromError(err).Code)

	// With the task resolved and unlocked, the missing file is the error.
	svc = newHomeworkService(tasks, &mockSubmissionRepo{}, subjects, &mockStore{})
	_, err = svc.Submit(context.Background(), studentClaims("s1"), "task1", "", nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "file")
}

func TestSubmitStoresFileAndCreatesRow(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"}}}
	submissions := &mockSubmissionRepo{}
	subjects := &mockHomeworkSubjects{selected: map[string][]models.Subject{"s1": {{ID: "sub1"}}}}
	store := &mockStore{}
	svc := newHomeworkService(tasks, submissions, subjects, store)

	submission, err := svc.Submit(context.Background(), studentClaims("s1"), "task1", "work.pdf", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "task1", submission.TaskID)
	assert.False(t, submission.Locked)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "payload", store.saved[submission.FilePath])
	assert.True(t, strings.HasSuffix(submission.FilePath, ".pdf"))
}

func TestResubmissionAllowedWhenUnlocked(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"}}}
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"old": {ID: "old", TaskID: "task1", StudentID: "s1", SubmittedAt: time.Now().Add(-time.Hour)},
	}}
	subjects := &mockHomeworkSubjects{selected: map[string][]models.Subject{"s1": {{ID: "sub1"}}}}
	svc := newHomeworkService(tasks, submissions, subjects, &mockStore{})

	_, err := svc.Submit(context.Background(), studentClaims("s1"), "task1", "rework.pdf", strings.NewReader("v2"))
	require.NoError(t, err)
	assert.Len(t, submissions.submissions, 2)
}

func TestGiveFeedbackLockRequiresText(t *testing.T) {
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"sub1": {ID: "sub1", TaskID: "task1", StudentID: "s1"},
	}}
	svc := newHomeworkService(&mockTaskRepo{}, submissions, &mockHomeworkSubjects{}, &mockStore{})

	_, err := svc.GiveFeedback(context.Background(), teacherClaims("t1"), "sub1", FeedbackRequest{FeedbackText: "   ", Lock: true})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "feedback_text")
	// No partial write happened.
	assert.Zero(t, submissions.updates)
	assert.False(t, submissions.submissions["sub1"].Locked)
}

func TestGiveFeedbackLocksWithText(t *testing.T) {
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"sub1": {ID: "sub1", TaskID: "task1", StudentID: "s1"},
	}}
	svc := newHomeworkService(&mockTaskRepo{}, submissions, &mockHomeworkSubjects{}, &mockStore{})

	detail, err := svc.GiveFeedback(context.Background(), teacherClaims("t1"), "sub1", FeedbackRequest{FeedbackText: "Good work", Lock: true})
	require.NoError(t, err)
	assert.True(t, detail.Locked)
	assert.Equal(t, "Good work", detail.FeedbackText)
	require.NotNil(t, detail.FeedbackAt)
}

func TestGiveFeedbackClearingTextClearsTimestamp(t *testing.T) {
	at := time.Now().Add(-time.Hour)
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"sub1": {ID: "sub1", TaskID: "task1", StudentID: "s1", FeedbackText: "old", FeedbackAt: &at},
	}}
	svc := newHomeworkService(&mockTaskRepo{}, submissions, &mockHomeworkSubjects{}, &mockStore{})

	detail, err := svc.GiveFeedback(context.Background(), teacherClaims("t1"), "sub1", FeedbackRequest{FeedbackText: ""})
	require.NoError(t, err)
	assert.Empty(t, detail.FeedbackText)
	assert.Nil(t, detail.FeedbackAt)
	assert.False(t, detail.Locked)
}

func TestGiveFeedbackForbiddenForOtherTeacher(t *testing.T) {
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"sub1": {ID: "sub1", TaskID: "task1", StudentID: "s1"},
	}}
	svc := newHomeworkService(&mockTaskRepo{}, submissions, &mockHomeworkSubjects{}, &mockStore{})

	_, err := svc.GiveFeedback(context.Background(), teacherClaims("t2"), "sub1", FeedbackRequest{FeedbackText: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestListTasksForStudentAnnotatesLatestSubmission(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{
		"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"},
		"task2": {ID: "task2", TeacherID: "t2", SubjectID: "sub2"},
	}}
	older := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"first":  {ID: "first", TaskID: "task1", StudentID: "s1", SubmittedAt: older},
		"second": {ID: "second", TaskID: "task1", StudentID: "s1", SubmittedAt: newer, FeedbackText: "better"},
	}}
	subjects := &mockHomeworkSubjects{selected: map[string][]models.Subject{"s1": {{ID: "sub1"}, {ID: "sub2"}}}}
	svc := newHomeworkService(tasks, submissions, subjects, &mockStore{})

	list, err := svc.ListTasksForStudent(context.Background(), studentClaims("s1"))
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := make(map[string]models.StudentTask, len(list))
	for _, entry := range list {
		byID[entry.ID] = entry
	}
	submitted := byID["task1"]
	assert.True(t, submitted.Submitted)
	require.NotNil(t, submitted.Latest)
	assert.Equal(t, "second", submitted.Latest.ID)
	assert.Equal(t, "better", submitted.Latest.FeedbackText)

	unsubmitted := byID["task2"]
	assert.False(t, unsubmitted.Submitted)
	assert.Nil(t, unsubmitted.Latest)
}

func TestListTasksForStudentEmptySelection(t *testing.T) {
	svc := newHomeworkService(&mockTaskRepo{}, &mockSubmissionRepo{}, &mockHomeworkSubjects{}, &mockStore{})

	list, err := svc.ListTasksForStudent(context.Background(), studentClaims("s1"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListSubmissionsForTaskOwnership(t *testing.T) {
	tasks := &mockTaskRepo{tasks: map[string]*models.Task{"task1": {ID: "task1", TeacherID: "t1", SubjectID: "sub1"}}}
	submissions := &mockSubmissionRepo{submissions: map[string]*models.Submission{
		"sub1": {ID: "sub1", TaskID: "task1", StudentID: "s1"},
	}}
	svc := newHomeworkService(tasks, submissions, &mockHomeworkSubjects{}, &mockStore{})

	_, err := svc.ListSubmissionsForTask(context.Background(), teacherClaims("t2"), "task1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	admin := &models.JWTClaims{UserID: "a1", IsAdmin: true}
	list, err := svc.ListSubmissionsForTask(context.Background(), admin, "task1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
