package services

import (
	"mietwerk/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoan(balance, rate, payment float64, end *time.Time) models.Loan {
	return models.Loan{
		RemainingBalance: balance,
		InterestRate:     rate,
		MonthlyPayment:   payment,
		StartDate:        date(2020, time.January, 1),
		EndDate:          end,
	}
}

func TestGenerateScheduleNoEndDate(t *testing.T) {
	now := date(2025, time.June, 10)

	// Without a usable end date no schedule is computable
	schedule := generateScheduleAt(testLoan(100000, 3.5, 600, nil), now)
	assert.Empty(t, schedule.Rows)
	assert.Empty(t, schedule.ChartRows)
	assert.Equal(t, 0.0, schedule.TotalInterest)
	assert.Equal(t, 0.0, schedule.TotalPrincipal)
	assert.Equal(t, 0.0, schedule.FinalBalance)
}

func TestGenerateSchedulePastEndDate(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2024, time.December, 31)

	schedule := generateScheduleAt(testLoan(100000, 3.5, 600, &end), now)
	assert.Empty(t, schedule.Rows)
}

func TestGenerateScheduleFixedInterestEndWins(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2045, time.June, 1)
	fixedEnd := date(2026, time.June, 1)

	loan := testLoan(100000, 3.5, 600, &end)
	loan.FixedInterestEndDate = &fixedEnd

	// The fixed interest end bounds the schedule: 13 months inclusive
	schedule := generateScheduleAt(loan, now)
	assert.Len(t, schedule.Rows, 13)
	assert.Equal(t, date(2025, time.June, 1), schedule.Rows[0].Month)
	assert.Equal(t, fixedEnd, schedule.Rows[len(schedule.Rows)-1].Month)
}

func TestGenerateScheduleZeroBalance(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2035, time.June, 1)

	schedule := generateScheduleAt(testLoan(0, 3.5, 600, &end), now)
	assert.LessOrEqual(t, len(schedule.Rows), 1)
	assert.Equal(t, 0.0, schedule.FinalBalance)
}

func TestGenerateScheduleAmortization(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2026, time.May, 1)

	// One year at 6%: first month interest is 0.5% of the balance
	schedule := generateScheduleAt(testLoan(100000, 6, 1200, &end), now)
	require.Len(t, schedule.Rows, 12)

	first := schedule.Rows[0]
	assert.InDelta(t, 500.0, first.Interest, 1e-9)
	assert.InDelta(t, 700.0, first.Principal, 1e-9)
	assert.InDelta(t, 99300.0, first.Balance, 1e-9)

	// Interest falls and principal grows month over month
	for i := 1; i < len(schedule.Rows); i++ {
		assert.Less(t, schedule.Rows[i].Interest, schedule.Rows[i-1].Interest)
		assert.Greater(t, schedule.Rows[i].Principal, schedule.Rows[i-1].Principal)
	}
}

func TestGenerateScheduleEarlyPayoff(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2030, time.May, 1)

	// 10000 at 5% with 1000/month is paid off in well under a year
	schedule := generateScheduleAt(testLoan(10000, 5, 1000, &end), now)
	require.NotEmpty(t, schedule.Rows)
	assert.Less(t, len(schedule.Rows), 60)
	assert.Equal(t, 0.0, schedule.FinalBalance)

	// The final payment only covers what is left
	last := schedule.Rows[len(schedule.Rows)-1]
	assert.Less(t, last.Principal, 1000.0)
}

func TestGenerateScheduleNegativeAmortizationStagnates(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2027, time.May, 1)

	// The payment does not even cover the interest; the balance must
	// stagnate instead of growing
	schedule := generateScheduleAt(testLoan(100000, 6, 400, &end), now)
	require.Len(t, schedule.Rows, 24)

	for _, row := range schedule.Rows {
		assert.Equal(t, 0.0, row.Principal)
		assert.Equal(t, 100000.0, row.Balance)
		assert.GreaterOrEqual(t, row.Balance, 0.0)
	}
	assert.Equal(t, 100000.0, schedule.FinalBalance)
}

func TestGenerateScheduleBalanceNeverNegative(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2045, time.May, 1)

	schedule := generateScheduleAt(testLoan(50000, 2.5, 800, &end), now)
	for _, row := range schedule.Rows {
		assert.GreaterOrEqual(t, row.Balance, 0.0)
	}
}

func TestGenerateScheduleAccountingIdentity(t *testing.T) {
	now := date(2025, time.June, 10)

	cases := []struct {
		name    string
		balance float64
		rate    float64
		payment float64
		end     time.Time
	}{
		{"full payoff", 10000, 5, 1000, date(2030, time.May, 1)},
		{"partial payoff", 200000, 3.2, 900, date(2030, time.May, 1)},
		{"stagnating", 100000, 6, 400, date(2027, time.May, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schedule := generateScheduleAt(testLoan(tc.balance, tc.rate, tc.payment, &tc.end), now)
			assert.InDelta(t, tc.balance, schedule.TotalPrincipal+schedule.FinalBalance, 1e-6)
		})
	}
}

func TestDownsampleRowsShortScheduleUnchanged(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2026, time.May, 1)

	schedule := generateScheduleAt(testLoan(100000, 6, 1200, &end), now)
	require.Len(t, schedule.Rows, 12)
	assert.Equal(t, schedule.Rows, schedule.ChartRows)
}

func TestDownsampleRowsLongSchedule(t *testing.T) {
	now := date(2025, time.June, 10)
	end := date(2035, time.May, 1)

	// 120 months, stagnating so the schedule runs to the end date
	schedule := generateScheduleAt(testLoan(100000, 6, 400, &end), now)
	require.Len(t, schedule.Rows, 120)

	// Every second row plus the final row
	assert.Len(t, schedule.ChartRows, 61)
	last := schedule.Rows[len(schedule.Rows)-1]
	assert.Equal(t, last, schedule.ChartRows[len(schedule.ChartRows)-1])

	// The aggregates stay those of the full series
	assert.InDelta(t, 100000.0, schedule.FinalBalance, 1e-9)
	assert.InDelta(t, 120*500.0, schedule.TotalInterest, 1e-6)
}
