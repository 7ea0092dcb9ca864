package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalOverlapsIsSymmetric(t *testing.T) {
	a := FromMinutes(600, 720)
	b := FromMinutes(660, 780)

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
}

func TestIntervalTouchingBoundariesDoNotOverlap(t *testing.T) {
	a := FromMinutes(600, 720)
	b := FromMinutes(720, 780)

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
}

func TestIntervalOverlapsItself(t *testing.T) {
	a := FromMinutes(540, 600)
	assert.True(t, a.Overlaps(a))
}

func TestIntervalContainment(t *testing.T) {
	outer := FromMinutes(480, 720)
	inner := FromMinutes(540, 600)

	assert.True(t, outer.Overlaps(inner))
	assert.True(t, inner.Overlaps(outer))
}

func TestIntervalDisjointRanges(t *testing.T) {
	a := FromMinutes(480, 540)
	b := FromMinutes(600, 660)

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
}

func TestFromTimesOverlap(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	a := FromTimes(day.Add(10*time.Hour), day.Add(11*time.Hour))
	b := FromTimes(day.Add(10*time.Hour+30*time.Minute), day.Add(11*time.Hour+30*time.Minute))
	c := FromTimes(day.Add(11*time.Hour), day.Add(12*time.Hour))

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}

func TestParseMinuteOfDay(t *testing.T) {
	minutes, err := ParseMinuteOfDay("10:30")
	require.NoError(t, err)
	assert.Equal(t, 630, minutes)

	_, err = ParseMinuteOfDay("25:00")
	assert.Error(t, err)

	_, err = ParseMinuteOfDay("bogus")
	assert.Error(t, err)
}

func TestFormatMinuteOfDay(t *testing.T) {
	assert.Equal(t, "09:05", FormatMinuteOfDay(545))
	assert.Equal(t, "00:00", FormatMinuteOfDay(0))
}

func TestSlotIntervalRejectsZeroDuration(t *testing.T) {
	_, err := SlotInterval("10:00", "10:00")
	assert.Error(t, err)

	iv, err := SlotInterval("10:00", "12:00")
	require.NoError(t, err)
	assert.True(t, iv.Valid())
}
