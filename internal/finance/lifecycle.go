package finance

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/armory/internal/model"
)

// Rules are the business rules that drive loan and storage lifecycles.
type Rules struct {
	// GraceDays is how long after the start date a loan stays in Grace and
	// how late a monthly payment may arrive before it counts as missed.
	GraceDays int
	// DefaultAfterMissed is the number of consecutive missed monthly
	// payments after which a loan is moved to Penalty.
	DefaultAfterMissed int
	// CancellationFeePercent is deducted from the deposit on cancellation.
	CancellationFeePercent decimal.Decimal
	// StorageDailyRate is charged against the customer's credit for every
	// day a firearm is booked in.
	StorageDailyRate decimal.Decimal
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		GraceDays:              30,
		DefaultAfterMissed:     3,
		CancellationFeePercent: decimal.NewFromInt(10),
		StorageDailyRate:       decimal.NewFromInt(10),
	}
}

// MissedMonths counts the consecutive monthly periods, ending with the most
// recent closed one, in which no payment was received. A period closes
// GraceDays after its end; at most durationMonths periods are considered.
// Each payment settles at most one period, the earliest open one it falls in.
func MissedMonths(start time.Time, payments []time.Time, durationMonths int, now time.Time, graceDays int) int {
	if start.IsZero() || durationMonths <= 0 {
		return 0
	}

	sorted := slices.Clone(payments)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	missed, next := 0, 0
	for k := 0; k < durationMonths; k++ {
		from := start.AddDate(0, k, 0)
		to := start.AddDate(0, k+1, 0)
		closes := to.AddDate(0, 0, graceDays)
		if closes.After(now) {
			break
		}

		// Payments before this period cannot settle it or any later one.
		for next < len(sorted) && sorted[next].Before(from) {
			next++
		}
		if next < len(sorted) && sorted[next].Before(closes) {
			next++
			missed = 0
		} else {
			missed++
		}
	}
	return missed
}

// Assessment is the lifecycle state a loan should be in.
type Assessment struct {
	Current      model.LoanStatus
	Suggested    model.LoanStatus
	MissedMonths int
	Reason       string
}

// Changed reports whether the suggested status differs from the current one.
func (a Assessment) Changed() bool {
	return a.Suggested != a.Current
}

// Assess applies the lifecycle rules to a loan. Only transitions allowed by
// the status machine are ever suggested.
func (r Rules) Assess(loan model.LoanData, payments []time.Time, start, now time.Time) Assessment {
	a := Assessment{Current: loan.Status, Suggested: loan.Status}
	if loan.Status.Terminal() {
		return a
	}

	a.MissedMonths = MissedMonths(start, payments, loan.LoanDuration, now, r.GraceDays)

	switch {
	case loan.LoanAmount.IsPositive() && !loan.RemainingAmount.IsPositive() && loan.Status.CanTransition(model.StatusPaid):
		a.Suggested = model.StatusPaid
		a.Reason = "loan is fully repaid"
	case r.DefaultAfterMissed > 0 && a.MissedMonths >= r.DefaultAfterMissed && loan.Status.CanTransition(model.StatusPenalty):
		a.Suggested = model.StatusPenalty
		a.Reason = fmt.Sprintf("%d consecutive monthly payments missed", a.MissedMonths)
	case loan.Status == model.StatusGrace && !start.IsZero() && !now.Before(start.AddDate(0, 0, r.GraceDays)):
		a.Suggested = model.StatusPendingPayment
		a.Reason = "grace period has ended"
	}
	return a
}

// Settlement is the outcome of cancelling a loan.
type Settlement struct {
	Penalty decimal.Decimal
	Refund  decimal.Decimal
}

// CancellationSettlement deducts the cancellation fee from the deposit.
// The penalty never exceeds the deposit.
func (r Rules) CancellationSettlement(deposit decimal.Decimal) Settlement {
	if !deposit.IsPositive() {
		return Settlement{Penalty: decimal.Zero, Refund: decimal.Zero}
	}
	penalty := deposit.Mul(r.CancellationFeePercent).Div(hundred).Round(2)
	penalty = decimal.Min(decimal.Max(penalty, decimal.Zero), deposit)
	return Settlement{Penalty: penalty, Refund: deposit.Sub(penalty)}
}

// StorageCharge returns the days and amount charged for a storage entry.
// Charging stops on the book-out date.
func (r Rules) StorageCharge(bookedIn time.Time, bookedOut *time.Time, now time.Time) (int, decimal.Decimal) {
	end := now
	if bookedOut != nil && bookedOut.Before(now) {
		end = *bookedOut
	}
	days := DaysActive(bookedIn, end)
	return days, r.StorageDailyRate.Mul(decimal.NewFromInt(int64(days)))
}
