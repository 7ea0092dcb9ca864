package models

import "time"

// Reservation is a one-off or recurrence-generated absolute-time booking of a
// classroom by a teacher. Rows generated from a recurrence rule are fully
// independent; cancelling one never affects the others.
type Reservation struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ActivityID  *string   `db:"activity_id" json:"activity_id,omitempty"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time `db:"ends_at" json:"ends_at"`
	Notes       string    `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ReservationFilter describes query params for listing reservations.
type ReservationFilter struct {
	ClassroomID string
	TeacherID   string
	ActivityID  string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// RecurringItemError records the failure of a single occurrence in a
// recurring reservation batch.
type RecurringItemError struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
}

// RecurringResult summarises a best-effort recurring reservation batch.
type RecurringResult struct {
	Created []Reservation        `json:"created"`
	Errors  []RecurringItemError `json:"errors,omitempty"`
}
