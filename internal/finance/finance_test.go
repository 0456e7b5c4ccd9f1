package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoanAmount(t *testing.T) {
	tests := []struct {
		cost, deposit string
		want          string
	}{
		{"1000", "200", "800"},
		{"1000", "1200", "0"},
		{"1000", "1000", "0"},
		{"1,000", "200", "800"},
		{"12,500.50", "2,500", "10000.5"},
		{"1000", "", "1000"},
		{"1000", "abc", "1000"},
		{"-50", "", "0"},
		{"", "200", ""},
		{"abc", "200", ""},
		{"1000abc", "200", "800"},
		{"1000", "200R", "800"},
		{"12.5.3", "", "12.5"},
		{"R1000", "200", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		got := LoanAmount(tt.cost, tt.deposit)
		require.Equal(t, tt.want, got, "LoanAmount(%q, %q)", tt.cost, tt.deposit)
	}
}

func TestLoanAmountNeverNegative(t *testing.T) {
	for cost := 0; cost <= 2000; cost += 250 {
		for deposit := 0; deposit <= 2000; deposit += 250 {
			got := LoanAmount(decimal.NewFromInt(int64(cost)).String(), decimal.NewFromInt(int64(deposit)).String())
			d, ok := ParseAmount(got)
			require.True(t, ok)
			require.False(t, d.IsNegative(), "cost=%d deposit=%d gave %s", cost, deposit, got)
			if deposit <= cost {
				require.True(t, d.Equal(decimal.NewFromInt(int64(cost-deposit))))
			} else {
				require.True(t, d.IsZero())
			}
		}
	}
}

func TestProgress(t *testing.T) {
	d := decimal.NewFromInt
	require.Equal(t, 0, Progress(d(0), d(0)))
	require.Equal(t, 0, Progress(d(-10), d(0)))
	require.Equal(t, 0, Progress(d(1000), d(1000)))
	require.Equal(t, 50, Progress(d(1000), d(500)))
	require.Equal(t, 100, Progress(d(1000), d(0)))
	require.Equal(t, 33, Progress(d(3), d(2)))
	require.Equal(t, 67, Progress(d(3), d(1)))
	// 12.5% rounds half up.
	require.Equal(t, 13, Progress(d(800), d(700)))
	// Over-reported remaining amounts are not clamped.
	require.Equal(t, -50, Progress(d(1000), d(1500)))
}

func TestProgressToPaidTime(t *testing.T) {
	require.Equal(t, PaidTime{Months: 6, Days: 0, TotalMonths: 12, TotalDays: 360}, ProgressToPaidTime(50, 12))
	require.Equal(t, PaidTime{Months: 0, Days: 0, TotalMonths: 12, TotalDays: 360}, ProgressToPaidTime(0, 12))
	require.Equal(t, PaidTime{Months: 12, Days: 0, TotalMonths: 12, TotalDays: 360}, ProgressToPaidTime(100, 12))
	require.Equal(t, PaidTime{Months: 3, Days: 28, TotalMonths: 12, TotalDays: 360}, ProgressToPaidTime(33, 12))
	require.Equal(t, PaidTime{Months: 0, Days: 0, TotalMonths: 0, TotalDays: 0}, ProgressToPaidTime(50, 0))

	require.Equal(t, 180, ProgressToPaidTime(50, 12).PaidDays())
}

func TestPaidTimeRemaining(t *testing.T) {
	months, days := ProgressToPaidTime(50, 12).Remaining()
	require.Equal(t, 6, months)
	require.Equal(t, 0, days)

	months, days = ProgressToPaidTime(33, 12).Remaining()
	require.Equal(t, 8, months)
	require.Equal(t, 2, days)

	months, days = ProgressToPaidTime(150, 12).Remaining()
	require.Equal(t, 0, months)
	require.Equal(t, 0, days)
}

func TestDaysActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.Equal(t, 0, DaysActive(now, now))
	require.Equal(t, 0, DaysActive(now.Add(-23*time.Hour), now))
	require.Equal(t, 1, DaysActive(now.Add(-24*time.Hour), now))
	require.Equal(t, 1, DaysActive(now.Add(-47*time.Hour), now))
	require.Equal(t, 9, DaysActive(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), now))
	require.Equal(t, 0, DaysActive(now.AddDate(0, 0, 5), now))
	require.Equal(t, 0, DaysActive(time.Time{}, now))
}
