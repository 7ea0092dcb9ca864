package models

import "time"

// Classroom is a schedulable physical resource with finite capacity.
type Classroom struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Capacity      int        `db:"capacity" json:"capacity"`
	Location      string     `db:"location" json:"location"`
	Category      string     `db:"category" json:"category"`
	Active        bool       `db:"active" json:"active"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ClassroomFilter describes query params for listing classrooms.
type ClassroomFilter struct {
	Category    string
	MinCapacity int
	ActiveOnly  bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// ClassroomSuggestion is a candidate classroom ranked for an activity.
type ClassroomSuggestion struct {
	Classroom  Classroom `json:"classroom"`
	Enrolled   int       `json:"enrolled"`
	SpareSeats int       `json:"spare_seats"`
}
