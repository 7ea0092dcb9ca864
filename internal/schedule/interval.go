package schedule

import (
	"fmt"
	"time"
)

// Interval is a half-open range [Start, End) over an arbitrary integer axis.
// Weekly slots use minutes since midnight; absolute bookings use Unix seconds.
// Every conflict check in the system goes through Overlaps so the boundary
// semantics stay consistent: ranges that merely touch do not overlap.
type Interval struct {
	Start int64
	End   int64
}

// Overlaps reports whether the two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Valid reports whether the interval has positive duration.
func (i Interval) Valid() bool {
	return i.Start < i.End
}

// FromTimes builds an interval from absolute timestamps.
func FromTimes(start, end time.Time) Interval {
	return Interval{Start: start.Unix(), End: end.Unix()}
}

// FromMinutes builds an interval from minutes since midnight.
func FromMinutes(start, end int) Interval {
	return Interval{Start: int64(start), End: int64(end)}
}

// ParseMinuteOfDay converts a wall-clock "HH:MM" string to minutes since midnight.
func ParseMinuteOfDay(value string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(value, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time of day %q out of range", value)
	}
	return hh*60 + mm, nil
}

// FormatMinuteOfDay renders minutes since midnight as "HH:MM".
func FormatMinuteOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotInterval parses a weekly slot's wall-clock bounds into an interval.
func SlotInterval(startTime, endTime string) (Interval, error) {
	start, err := ParseMinuteOfDay(startTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseMinuteOfDay(endTime)
	if err != nil {
		return Interval{}, err
	}
	iv := FromMinutes(start, end)
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("slot %s-%s has no duration", startTime, endTime)
	}
	return iv, nil
}
