package models

import "time"

// Weekday labels indexed Monday=0 through Sunday=6, matching the stored
// availability weekday values.
var WeekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// TeacherAvailability is a teacher-published recurring weekly time window for
// one subject. Times are "HH:MM" strings in the configured booking zone.
type TeacherAvailability struct {
	ID        string `db:"id" json:"id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	Weekday   int    `db:"weekday" json:"weekday"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

// AvailabilityDetail enriches TeacherAvailability with subject info.
type AvailabilityDetail struct {
	TeacherAvailability
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}

// BookingStatus represents the lifecycle of a lesson booking.
type BookingStatus string

// Possible booking statuses. Cancelled and completed are declared for
// external tooling; no operation currently transitions into them.
const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// LessonBooking is a student's request to occupy a concrete instance of an
// availability slot.
type LessonBooking struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	TeacherID     string        `db:"teacher_id" json:"teacher_id"`
	SubjectID     string        `db:"subject_id" json:"subject_id"`
	StartDatetime time.Time     `db:"start_datetime" json:"start"`
	EndDatetime   time.Time     `db:"end_datetime" json:"end"`
	Status        BookingStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// BookingDetail carries the wire serialization of a booking.
type BookingDetail struct {
	LessonBooking
	StudentUsername string `db:"student_username" json:"student_username"`
	TeacherUsername string `db:"teacher_username" json:"teacher_username"`
	SubjectName     string `db:"subject_name" json:"subject_name"`
}
