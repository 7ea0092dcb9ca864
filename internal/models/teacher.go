package models

import "time"

// Teacher is a person who can be booked for classroom reservations.
type Teacher struct {
	ID            string     `db:"id" json:"id"`
	FullName      string     `db:"full_name" json:"full_name"`
	Email         string     `db:"email" json:"email"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	CanTeach      bool       `db:"can_teach" json:"can_teach"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Available reports whether the teacher can currently take bookings.
func (t *Teacher) Available() bool {
	return t != nil && t.CanTeach && t.DeactivatedAt == nil
}

// TeacherFilter describes query params for listing teachers.
type TeacherFilter struct {
	Name       string
	ActiveOnly bool
	Page       int
	PageSize   int
}
