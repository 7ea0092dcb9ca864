package models

import "time"

// Activity is a recurring club program with a weekly schedule and enrollment.
type Activity struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	MaxEnrollment int        `db:"max_enrollment" json:"max_enrollment"`
	Active        bool       `db:"active" json:"active"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// WeeklySlot is a recurring (weekday, start, end) commitment owned by an activity.
// Weekday follows time.Weekday numbering (0 = Sunday). Times are wall-clock
// "HH:MM" strings at minute precision.
type WeeklySlot struct {
	ID         string    `db:"id" json:"id"`
	ActivityID string    `db:"activity_id" json:"activity_id"`
	Weekday    int       `db:"weekday" json:"weekday"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ActivityFilter describes query params for listing activities.
type ActivityFilter struct {
	Name       string
	ActiveOnly bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
