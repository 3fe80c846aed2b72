package models

// Subject represents one entry of the tutoring subject catalog. Subjects are
// seeded once and immutable afterwards.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// UserSubject links a student to a subject they are interested in.
type UserSubject struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"user_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
}

// TeacherSubject links a teacher to a subject they are qualified to teach.
type TeacherSubject struct {
	ID        string `db:"id" json:"id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
}
