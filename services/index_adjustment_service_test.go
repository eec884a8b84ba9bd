package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func date(year int, m time.Month, day int) time.Time {
	return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
}

func TestComputeIndexAdjustment(t *testing.T) {
	s := NewIndexAdjustmentService()

	result, err := s.Compute(IndexAdjustmentDTO{
		CurrentRent: 1000,
		VpiOldValue: 100,
		VpiNewValue: 105,
		VpiOldMonth: month(2024, time.January),
		VpiNewMonth: month(2025, time.January),
	})
	require.NoError(t, err)
	assert.Equal(t, 1050.00, result.NewRent)
	assert.Equal(t, 5.00, result.PercentChange)
	assert.Equal(t, 50.00, result.Delta)
}

func TestComputeIndexAdjustmentCommercialRounding(t *testing.T) {
	s := NewIndexAdjustmentService()

	// 850.50 * 121.5 / 118.3 = 873.5059... rounds to 873.51
	result, err := s.Compute(IndexAdjustmentDTO{
		CurrentRent: 850.50,
		VpiOldValue: 118.3,
		VpiNewValue: 121.5,
		VpiOldMonth: month(2024, time.March),
		VpiNewMonth: month(2025, time.March),
	})
	require.NoError(t, err)
	assert.Equal(t, 873.51, result.NewRent)

	// Exactly half a cent rounds away from zero
	result, err = s.Compute(IndexAdjustmentDTO{
		CurrentRent: 100,
		VpiOldValue: 1000,
		VpiNewValue: 1001.05,
		VpiOldMonth: month(2024, time.March),
		VpiNewMonth: month(2025, time.March),
	})
	require.NoError(t, err)
	assert.Equal(t, 100.11, result.NewRent)
}

func TestComputeIndexAdjustmentRejectsDecrease(t *testing.T) {
	s := NewIndexAdjustmentService()

	cases := []struct {
		name   string
		old    float64
		newVal float64
	}{
		{"decrease", 105, 100},
		{"equal", 105, 105},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Compute(IndexAdjustmentDTO{
				CurrentRent: 900,
				VpiOldValue: tc.old,
				VpiNewValue: tc.newVal,
				VpiOldMonth: month(2024, time.January),
				VpiNewMonth: month(2025, time.January),
			})
			assert.Error(t, err)
		})
	}
}

func TestComputeIndexAdjustmentRejectsInvalidInputs(t *testing.T) {
	s := NewIndexAdjustmentService()

	// Zero index value
	_, err := s.Compute(IndexAdjustmentDTO{
		CurrentRent: 900,
		VpiOldValue: 0,
		VpiNewValue: 105,
		VpiOldMonth: month(2024, time.January),
		VpiNewMonth: month(2025, time.January),
	})
	assert.Error(t, err)

	// Zero rent
	_, err = s.Compute(IndexAdjustmentDTO{
		CurrentRent: 0,
		VpiOldValue: 100,
		VpiNewValue: 105,
		VpiOldMonth: month(2024, time.January),
		VpiNewMonth: month(2025, time.January),
	})
	assert.Error(t, err)

	// New reading not from a later month
	_, err = s.Compute(IndexAdjustmentDTO{
		CurrentRent: 900,
		VpiOldValue: 100,
		VpiNewValue: 105,
		VpiOldMonth: month(2025, time.January),
		VpiNewMonth: month(2025, time.January),
	})
	assert.Error(t, err)
}

func TestEarliestEffectiveDateBaseCandidate(t *testing.T) {
	// Announced mid-March, the increase can take effect on May 1 at the
	// earliest: the month after next
	now := date(2025, time.March, 15)
	got := earliestEffectiveDateAt(now, nil, nil)
	assert.Equal(t, date(2025, time.May, 1), got)

	// Year rollover
	now = date(2025, time.November, 30)
	got = earliestEffectiveDateAt(now, nil, nil)
	assert.Equal(t, date(2026, time.January, 1), got)
}

func TestEarliestEffectiveDatePossibleSince(t *testing.T) {
	now := date(2025, time.March, 15)

	// An earlier possibleSince does not lower the base candidate
	early := date(2025, time.January, 1)
	got := earliestEffectiveDateAt(now, &early, nil)
	assert.Equal(t, date(2025, time.May, 1), got)

	// A later possibleSince raises the candidate
	late := date(2025, time.September, 1)
	got = earliestEffectiveDateAt(now, &late, nil)
	assert.Equal(t, late, got)
}

func TestEarliestEffectiveDateTwelveMonthRule(t *testing.T) {
	now := date(2025, time.March, 15)

	// The previous change binds the rent for twelve months
	lastChange := date(2024, time.August, 1)
	got := earliestEffectiveDateAt(now, nil, &lastChange)
	assert.Equal(t, date(2025, time.August, 1), got)

	// A change long ago no longer binds
	lastChange = date(2023, time.February, 1)
	got = earliestEffectiveDateAt(now, nil, &lastChange)
	assert.Equal(t, date(2025, time.May, 1), got)

	// Same day of month is kept
	lastChange = date(2024, time.October, 15)
	got = earliestEffectiveDateAt(now, nil, &lastChange)
	assert.Equal(t, date(2025, time.October, 15), got)
}

func TestEarliestEffectiveDateLeapDayClamps(t *testing.T) {
	now := date(2024, time.March, 1)

	// Feb 29 has no counterpart in 2025; the bound clamps to Feb 28
	lastChange := date(2024, time.February, 29)
	got := earliestEffectiveDateAt(now, nil, &lastChange)
	assert.Equal(t, date(2025, time.February, 28), got)
}

func TestEarliestEffectiveDateMonotonicity(t *testing.T) {
	now := date(2025, time.March, 15)

	// Later possibleSince never yields an earlier result
	prev := earliestEffectiveDateAt(now, nil, nil)
	for m := 0; m < 36; m++ {
		since := date(2025, time.January, 1).AddDate(0, m, 0)
		got := earliestEffectiveDateAt(now, &since, nil)
		assert.False(t, got.Before(prev), "possibleSince %v lowered the result", since)
		prev = got
	}

	// Later lastChange never yields an earlier result
	prev = earliestEffectiveDateAt(now, nil, nil)
	for m := 0; m < 36; m++ {
		change := date(2023, time.June, 10).AddDate(0, m, 0)
		got := earliestEffectiveDateAt(now, nil, &change)
		assert.False(t, got.Before(prev), "lastChange %v lowered the result", change)
		prev = got
	}
}
