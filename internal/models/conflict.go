package models

import "time"

// WeeklyConflict describes an existing weekly slot that collides with a
// proposed one in the same classroom.
type WeeklyConflict struct {
	ActivityID   string `json:"activity_id"`
	ActivityName string `json:"activity_name,omitempty"`
	ClassroomID  string `json:"classroom_id"`
	Weekday      int    `json:"weekday"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// BookingConflict describes an existing reservation that collides with a
// proposed absolute time range.
type BookingConflict struct {
	ReservationID string    `json:"reservation_id"`
	ClassroomID   string    `json:"classroom_id"`
	TeacherID     string    `json:"teacher_id"`
	ActivityID    *string   `json:"activity_id,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

// WeeklyConflictError is returned when weekly slots overlap existing occupations.
type WeeklyConflictError struct {
	Message   string           `json:"message"`
	Conflicts []WeeklyConflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *WeeklyConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// BookingConflictError is returned when an absolute-time booking overlaps
// existing reservations of the classroom or of the teacher.
type BookingConflictError struct {
	Message   string            `json:"message"`
	Conflicts []BookingConflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
