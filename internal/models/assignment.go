package models

import "time"

// Assignment binds one activity to one classroom for its weekly slots.
// At most one active assignment may exist per (activity, classroom) pair.
type Assignment struct {
	ID            string     `db:"id" json:"id"`
	ActivityID    string     `db:"activity_id" json:"activity_id"`
	ClassroomID   string     `db:"classroom_id" json:"classroom_id"`
	AssignedAt    time.Time  `db:"assigned_at" json:"assigned_at"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	Active        bool       `db:"active" json:"active"`
	Priority      int        `db:"priority" json:"priority"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail enriches Assignment with activity and classroom names.
type AssignmentDetail struct {
	Assignment
	ActivityName  string `db:"activity_name" json:"activity_name"`
	ClassroomName string `db:"classroom_name" json:"classroom_name"`
}

// BatchAssignmentItemError records the failure of a single classroom in a
// multi-classroom assignment batch.
type BatchAssignmentItemError struct {
	ClassroomID string `json:"classroom_id"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// BatchAssignmentResult summarises a best-effort multi-classroom batch.
type BatchAssignmentResult struct {
	Created []Assignment               `json:"created"`
	Errors  []BatchAssignmentItemError `json:"errors,omitempty"`
}

// Decision is the outcome of validating an assignment request.
type Decision struct {
	Accepted bool             `json:"accepted"`
	Reasons  []DecisionReason `json:"reasons,omitempty"`
}

// DecisionReason explains one ground for rejecting an assignment.
type DecisionReason struct {
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Conflicts []WeeklyConflict `json:"conflicts,omitempty"`
}
