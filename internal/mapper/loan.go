package mapper

import (
	"time"

	"github.com/erazemk/armory/internal/finance"
	"github.com/erazemk/armory/internal/model"
)

// MapLoan converts an enriched loan row into its view model. now is the
// reference time for DaysActive; the result depends on nothing else.
//
// A missing loan amount is derived from cost and deposit, and a missing
// remaining amount defaults to the loan amount. The remaining amount is not
// clamped, so an over-reported balance yields negative progress.
func MapLoan(row EnrichedLoan, now time.Time) model.LoanData {
	cost := row.FirearmCost.Decimal()
	deposit := row.DepositAmount.Decimal()
	loanAmount := row.LoanAmount.Or(finance.NetAmount(cost, deposit))
	remaining := row.RemainAmount.Or(loanAmount)

	customerID := string(row.CustomerID)
	if customerID == "" && row.Customer != nil {
		customerID = string(row.Customer.ID)
	}

	data := model.LoanData{
		LoanID:          string(row.ID),
		CustomerID:      customerID,
		QuoteNumber:     string(row.QuoteNumber),
		InvoiceNumber:   string(row.InvoiceNumber),
		FirearmCost:     cost,
		DepositAmount:   deposit,
		HasDeposit:      row.DepositAmount.Valid,
		LoanAmount:      loanAmount,
		RemainingAmount: remaining,
		LoanDuration:    row.Duration.Int(),
		StartDate:       string(row.StartDate),
		DaysActive:      finance.DaysActive(ParseDate(string(row.StartDate)), now),
		LoanProgress:    finance.Progress(loanAmount, remaining),
		InterestRate:    row.Interest.Decimal(),
		Status:          model.ParseLoanStatus(string(row.Status)),
	}

	if c := row.Customer; c != nil {
		data.FullName = string(c.FullName)
		data.Email = string(c.Email)
		data.PhoneNumber = string(c.PhoneNumber)
		data.IDNumber = string(c.IDNumber)
	}
	if f := row.Firearm; f != nil {
		data.Firearm = model.FirearmDetails{
			MakeModel:    f.makeModel(),
			StockNumber:  string(f.StockNumber),
			SerialNumber: string(f.SerialNumber),
		}
	}
	return data
}

// MapLoans maps every row with the same reference time.
func MapLoans(rows []EnrichedLoan, now time.Time) []model.LoanData {
	out := make([]model.LoanData, 0, len(rows))
	for _, r := range rows {
		out = append(out, MapLoan(r, now))
	}
	return out
}

// LoanFromFirearm lifts a loan nested under a firearm into an enriched loan
// row, attaching the firearm itself.
func LoanFromFirearm(f FirearmRef, ln FirearmLoanRow) EnrichedLoan {
	row := EnrichedLoan{
		ID:            ln.ID,
		QuoteNumber:   ln.QuoteNumber,
		InvoiceNumber: ln.InvoiceNumber,
		FirearmCost:   ln.FirearmCost,
		DepositAmount: ln.DepositAmount,
		LoanAmount:    ln.LoanAmount,
		RemainAmount:  ln.RemainAmount,
		Duration:      ln.Duration,
		Interest:      ln.Interest,
		StartDate:     ln.StartDate,
		Status:        ln.Status,
		Firearm: &FirearmRef{
			ID:           f.ID,
			MakeModel:    Text(f.makeModel()),
			StockNumber:  f.StockNumber,
			SerialNumber: f.SerialNumber,
		},
	}
	if ln.Customer != nil {
		c := *ln.Customer
		row.Customer = &c
		row.CustomerID = c.ID
	}
	return row
}
