package models

import "time"

// Member is a club member who can enroll in activities.
type Member struct {
	ID        string     `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Email     string     `db:"email" json:"email"`
	Active    bool       `db:"active" json:"active"`
	JoinedAt  time.Time  `db:"joined_at" json:"joined_at"`
	LeftAt    *time.Time `db:"left_at" json:"left_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive EnrollmentStatus = "ACTIVE"
	EnrollmentStatusLeft   EnrollmentStatus = "LEFT"
)

// Enrollment captures a member's registration to an activity. The count of
// active enrollments feeds the classroom capacity check.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	MemberID   string           `db:"member_id" json:"member_id"`
	ActivityID string           `db:"activity_id" json:"activity_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	JoinedAt   time.Time        `db:"joined_at" json:"joined_at"`
	LeftAt     *time.Time       `db:"left_at" json:"left_at,omitempty"`
}
