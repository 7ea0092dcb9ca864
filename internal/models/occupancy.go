package models

// OccupancyReport aggregates assignment and booking counts for a classroom.
type OccupancyReport struct {
	ClassroomID          string            `json:"classroom_id"`
	ClassroomName        string            `json:"classroom_name"`
	TotalAssignments     int               `json:"total_assignments"`
	ActiveAssignments    int               `json:"active_assignments"`
	InactiveAssignments  int               `json:"inactive_assignments"`
	TotalReservations    int               `json:"total_reservations"`
	UpcomingReservations int               `json:"upcoming_reservations"`
	WeekdayBreakdown     []WeekdaySlotLoad `json:"weekday_breakdown,omitempty"`
}

// WeekdaySlotLoad counts the active weekly slots occupying a classroom on one weekday.
type WeekdaySlotLoad struct {
	Weekday int            `json:"weekday"`
	Slots   []OccupiedSlot `json:"slots"`
}

// OccupiedSlot names one weekly commitment inside a weekday breakdown.
type OccupiedSlot struct {
	ActivityID   string `json:"activity_id"`
	ActivityName string `json:"activity_name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// AvailabilityReport is the outcome of checking one classroom for one activity.
type AvailabilityReport struct {
	ActivityID  string           `json:"activity_id"`
	ClassroomID string           `json:"classroom_id"`
	Available   bool             `json:"available"`
	Enrolled    int              `json:"enrolled"`
	Capacity    int              `json:"capacity"`
	Conflicts   []WeeklyConflict `json:"conflicts,omitempty"`
}
