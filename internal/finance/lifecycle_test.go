package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/armory/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMissedMonths(t *testing.T) {
	start := date(2026, 1, 1)
	now := date(2026, 6, 15)
	payments := []time.Time{date(2026, 1, 10), date(2026, 2, 10)}

	require.Equal(t, 3, MissedMonths(start, payments, 12, now, 0))
	require.Equal(t, 2, MissedMonths(start, payments, 12, now, 30))
	require.Equal(t, 5, MissedMonths(start, nil, 12, now, 0))

	// Only the loan term is considered.
	require.Equal(t, 0, MissedMonths(start, payments, 2, now, 0))

	// A late payment within the grace window still counts.
	late := []time.Time{date(2026, 1, 10), date(2026, 2, 10), date(2026, 3, 10), date(2026, 4, 10), date(2026, 5, 10), date(2026, 6, 5)}
	require.Equal(t, 0, MissedMonths(start, late, 12, now, 30))

	require.Equal(t, 0, MissedMonths(time.Time{}, nil, 12, now, 0))
	require.Equal(t, 0, MissedMonths(start, nil, 0, now, 0))
}

func TestMissedMonthsPaymentSettlesOnePeriod(t *testing.T) {
	start := date(2026, 1, 1)

	// A payment in the grace tail of January cannot also settle February.
	require.Equal(t, 1, MissedMonths(start, []time.Time{date(2026, 2, 20)}, 12, date(2026, 4, 15), 30))

	// Paying every other month leaves every other period unpaid.
	everyOther := []time.Time{date(2026, 10, 10), date(2026, 2, 10), date(2026, 4, 10), date(2026, 6, 10), date(2026, 8, 10)}
	require.Equal(t, 1, MissedMonths(start, everyOther, 12, date(2026, 12, 15), 30))

	// Paying every third month accumulates two missed periods at a time.
	everyThird := []time.Time{date(2026, 1, 10), date(2026, 4, 10), date(2026, 7, 10)}
	require.Equal(t, 2, MissedMonths(start, everyThird, 12, date(2026, 10, 15), 0))

	// A single late payment settles January only, so Penalty still follows.
	loan := model.LoanData{
		LoanAmount:      decimal.NewFromInt(1000),
		RemainingAmount: decimal.NewFromInt(500),
		LoanDuration:    12,
		Status:          model.StatusPendingPayment,
	}
	a := DefaultRules().Assess(loan, []time.Time{date(2026, 2, 25)}, start, date(2026, 6, 15))
	require.Equal(t, model.StatusPenalty, a.Suggested)
	require.Equal(t, 3, a.MissedMonths)
}

func TestAssess(t *testing.T) {
	start := date(2026, 1, 1)
	now := date(2026, 6, 15)
	payments := []time.Time{date(2026, 1, 10), date(2026, 2, 10)}

	loan := model.LoanData{
		LoanAmount:      decimal.NewFromInt(1000),
		RemainingAmount: decimal.NewFromInt(500),
		LoanDuration:    12,
		Status:          model.StatusPendingPayment,
	}

	rules := DefaultRules()
	a := rules.Assess(loan, payments, start, now)
	require.False(t, a.Changed())
	require.Equal(t, 2, a.MissedMonths)

	rules.GraceDays = 0
	a = rules.Assess(loan, payments, start, now)
	require.True(t, a.Changed())
	require.Equal(t, model.StatusPenalty, a.Suggested)
	require.Equal(t, 3, a.MissedMonths)
	require.NotEmpty(t, a.Reason)

	paid := loan
	paid.RemainingAmount = decimal.Zero
	a = rules.Assess(paid, payments, start, now)
	require.Equal(t, model.StatusPaid, a.Suggested)

	cancelled := loan
	cancelled.Status = model.StatusCancelled
	a = rules.Assess(cancelled, nil, start, now)
	require.False(t, a.Changed())
	require.Equal(t, 0, a.MissedMonths)
}

func TestAssessGrace(t *testing.T) {
	start := date(2026, 1, 1)
	loan := model.LoanData{
		LoanAmount:      decimal.NewFromInt(1000),
		RemainingAmount: decimal.NewFromInt(1000),
		LoanDuration:    12,
		Status:          model.StatusGrace,
	}
	rules := DefaultRules()

	a := rules.Assess(loan, nil, start, date(2026, 1, 20))
	require.False(t, a.Changed())

	a = rules.Assess(loan, []time.Time{date(2026, 1, 5)}, start, date(2026, 2, 5))
	require.Equal(t, model.StatusPendingPayment, a.Suggested)

	// Grace loans cannot move straight to Paid.
	loan.RemainingAmount = decimal.Zero
	a = rules.Assess(loan, nil, start, date(2026, 1, 20))
	require.False(t, a.Changed())
}

func TestCancellationSettlement(t *testing.T) {
	rules := DefaultRules()

	s := rules.CancellationSettlement(decimal.NewFromInt(500))
	require.True(t, s.Penalty.Equal(decimal.NewFromInt(50)))
	require.True(t, s.Refund.Equal(decimal.NewFromInt(450)))

	s = rules.CancellationSettlement(decimal.RequireFromString("333.33"))
	require.True(t, s.Penalty.Equal(decimal.RequireFromString("33.33")))
	require.True(t, s.Refund.Equal(decimal.RequireFromString("300")))

	s = rules.CancellationSettlement(decimal.Zero)
	require.True(t, s.Penalty.IsZero())
	require.True(t, s.Refund.IsZero())

	rules.CancellationFeePercent = decimal.NewFromInt(150)
	s = rules.CancellationSettlement(decimal.NewFromInt(100))
	require.True(t, s.Penalty.Equal(decimal.NewFromInt(100)))
	require.True(t, s.Refund.IsZero())
}

func TestStorageCharge(t *testing.T) {
	rules := DefaultRules()
	in := date(2026, 1, 1)
	out := date(2026, 1, 11)

	days, charge := rules.StorageCharge(in, &out, date(2026, 2, 1))
	require.Equal(t, 10, days)
	require.True(t, charge.Equal(decimal.NewFromInt(100)))

	days, charge = rules.StorageCharge(in, nil, date(2026, 1, 4))
	require.Equal(t, 3, days)
	require.True(t, charge.Equal(decimal.NewFromInt(30)))

	days, charge = rules.StorageCharge(in, nil, in)
	require.Equal(t, 0, days)
	require.True(t, charge.IsZero())
}
