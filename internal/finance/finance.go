// Package finance holds the loan arithmetic shown on forms and loan cards.
package finance

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DaysPerMonth is the fixed month length used for paid-time display.
const DaysPerMonth = 30

var hundred = decimal.NewFromInt(100)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount parses a user-entered amount, ignoring thousands separators
// and spaces. Like a browser number parse it reads the leading number and
// ignores anything after it, so "1000abc" is 1000.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), " ", "")
	s = leadingNumber.FindString(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// LoanAmount returns the financed amount for a firearm cost and deposit as a
// string suitable for a form field. It returns "" when the cost cannot be
// parsed, the cost itself when the deposit cannot be parsed, and never a
// negative amount.
func LoanAmount(firearmCost, depositAmount string) string {
	cost, ok := ParseAmount(firearmCost)
	if !ok {
		return ""
	}
	deposit, ok := ParseAmount(depositAmount)
	if !ok {
		return decimal.Max(cost, decimal.Zero).String()
	}
	return NetAmount(cost, deposit).String()
}

// NetAmount is cost minus deposit, floored at zero.
func NetAmount(cost, deposit decimal.Decimal) decimal.Decimal {
	return decimal.Max(cost.Sub(deposit), decimal.Zero)
}

// Progress returns the percentage of the loan already repaid, rounded half up.
// Remaining amounts larger than the loan yield a negative percentage.
func Progress(loanAmount, remaining decimal.Decimal) int {
	if !loanAmount.IsPositive() {
		return 0
	}
	pct := loanAmount.Sub(remaining).Div(loanAmount).Mul(hundred)
	return int(pct.Add(decimal.NewFromFloat(0.5)).Floor().IntPart())
}

// PaidTime is a repayment percentage expressed as elapsed time.
type PaidTime struct {
	Months      int
	Days        int
	TotalMonths int
	TotalDays   int
}

// ProgressToPaidTime converts a repayment percentage into whole months and
// remaining days of the loan term, using 30-day months.
func ProgressToPaidTime(progress, totalMonths int) PaidTime {
	totalDays := totalMonths * DaysPerMonth
	paidDays := int(math.Floor(float64(progress) / 100 * float64(totalDays)))
	return PaidTime{
		Months:      int(math.Floor(float64(paidDays) / DaysPerMonth)),
		Days:        paidDays % DaysPerMonth,
		TotalMonths: totalMonths,
		TotalDays:   totalDays,
	}
}

// PaidDays is the number of term days covered by the paid time.
func (p PaidTime) PaidDays() int {
	return p.Months*DaysPerMonth + p.Days
}

// Remaining returns the months and days of the term not yet covered.
func (p PaidTime) Remaining() (months, days int) {
	left := p.TotalDays - p.PaidDays()
	if left < 0 {
		left = 0
	}
	return left / DaysPerMonth, left % DaysPerMonth
}

// DaysActive returns the whole days elapsed since start, never negative.
func DaysActive(start, now time.Time) int {
	if start.IsZero() {
		return 0
	}
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
