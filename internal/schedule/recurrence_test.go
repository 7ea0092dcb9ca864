package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseOccurrence(start time.Time, duration time.Duration) Occurrence {
	return Occurrence{Start: start, End: start.Add(duration)}
}

func TestExpandWeeklyMondays(t *testing.T) {
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) // Monday
	until := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	rule := Rule{
		Frequency: FrequencyWeekly,
		Interval:  1,
		Weekdays:  []time.Weekday{time.Monday},
		Until:     &until,
	}

	occurrences, err := Expand(baseOccurrence(start, time.Hour), rule, 0)
	require.NoError(t, err)
	require.Len(t, occurrences, 4)

	expected := []int{4, 11, 18, 25}
	for i, occ := range occurrences {
		assert.Equal(t, expected[i], occ.Start.Day())
		assert.Equal(t, time.Monday, occ.Start.Weekday())
		assert.Equal(t, time.Hour, occ.End.Sub(occ.Start))
	}
}

func TestExpandDailyInterval(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rule := Rule{Frequency: FrequencyDaily, Interval: 2, Count: 3}

	occurrences, err := Expand(baseOccurrence(start, 30*time.Minute), rule, 0)
	require.NoError(t, err)
	require.Len(t, occurrences, 3)
	assert.Equal(t, 4, occurrences[0].Start.Day())
	assert.Equal(t, 6, occurrences[1].Start.Day())
	assert.Equal(t, 8, occurrences[2].Start.Day())
}

func TestExpandMonthlyKeepsDayOfMonth(t *testing.T) {
	start := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	rule := Rule{Frequency: FrequencyMonthly, Interval: 1, Count: 4}

	occurrences, err := Expand(baseOccurrence(start, 2*time.Hour), rule, 0)
	require.NoError(t, err)
	require.Len(t, occurrences, 4)
	for i, occ := range occurrences {
		assert.Equal(t, 15, occ.Start.Day())
		assert.Equal(t, time.Month(1+i), occ.Start.Month())
	}
}

func TestExpandNeverExceedsCap(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rule := Rule{Frequency: FrequencyDaily, Interval: 1, Count: 500}

	occurrences, err := Expand(baseOccurrence(start, time.Hour), rule, 10)
	require.NoError(t, err)
	assert.Len(t, occurrences, 10)
}

func TestExpandDefaultCapApplies(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rule := Rule{Frequency: FrequencyDaily, Interval: 1, Count: 100000}

	occurrences, err := Expand(baseOccurrence(start, time.Hour), rule, 0)
	require.NoError(t, err)
	assert.Len(t, occurrences, DefaultMaxOccurrences)
}

func TestExpandStopsAtInclusiveEndDate(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	until := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	rule := Rule{Frequency: FrequencyDaily, Interval: 1, Until: &until}

	occurrences, err := Expand(baseOccurrence(start, time.Hour), rule, 0)
	require.NoError(t, err)
	require.Len(t, occurrences, 3)
	for _, occ := range occurrences {
		assert.False(t, afterDay(occ.Start, until))
	}
}

func TestExpandWeeklyFilterExcludingAnchorYieldsNothing(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) // Monday
	rule := Rule{
		Frequency: FrequencyWeekly,
		Interval:  2,
		Weekdays:  []time.Weekday{time.Thursday},
		Count:     5,
	}

	occurrences, err := Expand(baseOccurrence(start, time.Hour), rule, 0)
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestExpandWeeklySteppedInterval(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) // Monday
	rule := Rule{Frequency: FrequencyWeekly, Interval: 2, Count: 3}

	occurrences, err := Expand(baseOccurrence(start, time.Hour), rule, 0)
	require.NoError(t, err)
	require.Len(t, occurrences, 3)
	assert.Equal(t, 4, occurrences[0].Start.Day())
	assert.Equal(t, 18, occurrences[1].Start.Day())
	assert.Equal(t, 1, occurrences[2].Start.Day())
	assert.Equal(t, time.April, occurrences[2].Start.Month())
}

func TestExpandValidation(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	_, err := Expand(baseOccurrence(start, 0), Rule{Frequency: FrequencyDaily, Interval: 1, Count: 1}, 0)
	assert.Error(t, err)

	_, err = Expand(baseOccurrence(start, time.Hour), Rule{Frequency: "HOURLY", Interval: 1, Count: 1}, 0)
	assert.Error(t, err)

	_, err = Expand(baseOccurrence(start, time.Hour), Rule{Frequency: FrequencyDaily, Interval: 0, Count: 1}, 0)
	assert.Error(t, err)

	_, err = Expand(baseOccurrence(start, time.Hour), Rule{Frequency: FrequencyDaily, Interval: 1}, 0)
	assert.Error(t, err)

	_, err = Expand(baseOccurrence(start, time.Hour), Rule{Frequency: FrequencyDaily, Interval: 1, Count: 1, Weekdays: []time.Weekday{time.Monday}}, 0)
	assert.Error(t, err)
}
