package models

import "time"

// Task is a homework assignment published by a teacher for a subject they
// teach. Tasks are immutable after creation.
type Task struct {
	ID          string     `db:"id" json:"id"`
	TeacherID   string     `db:"teacher_id" json:"teacher_id"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	ReleaseAt   *time.Time `db:"release_at" json:"release_at,omitempty"`
	DueAt       *time.Time `db:"due_at" json:"due_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// TaskDetail enriches Task with subject and teacher info.
type TaskDetail struct {
	Task
	SubjectName     string `db:"subject_name" json:"subject_name"`
	SubjectCode     string `db:"subject_code" json:"subject_code"`
	TeacherUsername string `db:"teacher_username" json:"teacher_username"`
}

// Submission is a student's file artifact handed in for a task. Several
// submissions per (task, student) may exist; the latest by submitted_at is
// the operative one.
type Submission struct {
	ID           string     `db:"id" json:"id"`
	TaskID       string     `db:"task_id" json:"task_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	FilePath     string     `db:"file_path" json:"file_path"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submitted_at"`
	FeedbackText string     `db:"feedback_text" json:"feedback_text"`
	FeedbackAt   *time.Time `db:"feedback_at" json:"feedback_at,omitempty"`
	Locked       bool       `db:"locked" json:"locked"`
}

// SubmissionDetail enriches Submission with task and student info.
type SubmissionDetail struct {
	Submission
	TaskTitle       string `db:"task_title" json:"task_title"`
	TaskTeacherID   string `db:"task_teacher_id" json:"-"`
	SubjectName     string `db:"subject_name" json:"subject_name"`
	StudentUsername string `db:"student_username" json:"student_username"`
}

// LatestSubmission summarises a student's most recent submission for a task.
type LatestSubmission struct {
	ID           string     `json:"id"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	FeedbackText string     `json:"feedback_text"`
	FeedbackAt   *time.Time `json:"feedback_at,omitempty"`
	Locked       bool       `json:"locked"`
	FilePath     string     `json:"file_path"`
}

// StudentTask annotates a task with the requesting student's submission
// state.
type StudentTask struct {
	TaskDetail
	Submitted bool              `json:"submitted"`
	Latest    *LatestSubmission `json:"latest_submission,omitempty"`
}
