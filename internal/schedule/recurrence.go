package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Frequency enumerates supported recurrence frequencies.
type Frequency string

// Supported frequencies.
const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

// DefaultMaxOccurrences caps generation when the caller does not set a limit.
const DefaultMaxOccurrences = 100

// Rule describes how a base time range repeats. It is transient: rules are
// expanded into independent occurrences and never persisted.
type Rule struct {
	Frequency Frequency      `json:"frequency" validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	Interval  int            `json:"interval" validate:"required,min=1"`
	Weekdays  []time.Weekday `json:"weekdays,omitempty"`
	Until     *time.Time     `json:"until,omitempty"`
	Count     int            `json:"count,omitempty"`
}

// Occurrence is one concrete materialization of a recurrence rule.
type Occurrence struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the rule is well formed and bounded.
func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("unsupported frequency %q", r.Frequency)
	}
	if r.Interval < 1 {
		return errors.New("recurrence interval must be positive")
	}
	if r.Until == nil && r.Count <= 0 {
		return errors.New("recurrence rule needs an end date or an occurrence count")
	}
	if len(r.Weekdays) > 0 && r.Frequency != FrequencyWeekly {
		return fmt.Errorf("weekday filter is only valid for WEEKLY rules, got %s", r.Frequency)
	}
	for _, wd := range r.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("invalid weekday %d in filter", wd)
		}
	}
	return nil
}

// Expand materializes the rule into concrete occurrences anchored on base.
// Each occurrence keeps the base duration. Generation stops at the first of:
// the cursor passing the inclusive end date, the rule's occurrence count, or
// maxOccurrences (DefaultMaxOccurrences when <= 0).
//
// For WEEKLY rules the weekday filter selects which examined days are emitted;
// the cursor still advances by 7*interval days per step, so with interval > 1
// only the anchor weekday of each stepped week is ever examined. This mirrors
// the documented product behavior and is kept deliberately.
func Expand(base Occurrence, rule Rule, maxOccurrences int) ([]Occurrence, error) {
	if !base.Start.Before(base.End) {
		return nil, errors.New("base range must have positive duration")
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	limit := maxOccurrences
	if limit <= 0 {
		limit = DefaultMaxOccurrences
	}
	if rule.Count > 0 && rule.Count < limit {
		limit = rule.Count
	}

	// Weekly stepping advances whole weeks, so the cursor weekday never moves
	// off the anchor's. A filter that excludes the anchor weekday therefore
	// excludes every step.
	if rule.Frequency == FrequencyWeekly && len(rule.Weekdays) > 0 && !weekdayAllowed(base.Start.Weekday(), rule.Weekdays) {
		return nil, nil
	}

	duration := base.End.Sub(base.Start)
	var out []Occurrence

	for step := 0; len(out) < limit; step++ {
		cursor := advance(base.Start, rule, step)
		if rule.Until != nil && afterDay(cursor, *rule.Until) {
			break
		}
		out = append(out, Occurrence{Start: cursor, End: cursor.Add(duration)})
	}

	return out, nil
}

func advance(anchor time.Time, rule Rule, step int) time.Time {
	switch rule.Frequency {
	case FrequencyDaily:
		return anchor.AddDate(0, 0, step*rule.Interval)
	case FrequencyWeekly:
		return anchor.AddDate(0, 0, step*7*rule.Interval)
	default:
		// Monthly steps are computed from the anchor so day-of-month drift
		// never accumulates across iterations.
		return anchor.AddDate(0, step*rule.Interval, 0)
	}
}

// afterDay reports whether t falls on a later calendar day than bound.
func afterDay(t, bound time.Time) bool {
	ty, tm, td := t.Date()
	by, bm, bd := bound.Date()
	if ty != by {
		return ty > by
	}
	if tm != bm {
		return tm > bm
	}
	return td > bd
}

func weekdayAllowed(wd time.Weekday, allowed []time.Weekday) bool {
	for _, a := range allowed {
		if a == wd {
			return true
		}
	}
	return false
}
