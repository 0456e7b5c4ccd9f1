package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanData is the view model of a single loan joined with its customer and firearm.
type LoanData struct {
	LoanID          string          `json:"loanId"`
	CustomerID      string          `json:"customerId"`
	QuoteNumber     string          `json:"quoteNumber"`
	InvoiceNumber   string          `json:"invoiceNumber,omitempty"`
	FirearmCost     decimal.Decimal `json:"firearmCost"`
	DepositAmount   decimal.Decimal `json:"depositAmount"`
	HasDeposit      bool            `json:"-"`
	LoanAmount      decimal.Decimal `json:"loanAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	LoanDuration    int             `json:"loanDuration"`
	StartDate       string          `json:"loanCreatedAt"`
	DaysActive      int             `json:"daysActive"`
	LoanProgress    int             `json:"loanProgress"`
	FullName        string          `json:"fullName"`
	Email           string          `json:"email"`
	PhoneNumber     string          `json:"phoneNumber"`
	IDNumber        string          `json:"idNumber"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	PenaltyAmount   decimal.Decimal `json:"penaltyAmount"`
	Firearm         FirearmDetails  `json:"firearmDetails"`
	Status          LoanStatus      `json:"status"`
}

// FirearmDetails is the firearm summary shown on a loan.
type FirearmDetails struct {
	MakeModel    string `json:"makeModel"`
	StockNumber  string `json:"stockNumber"`
	SerialNumber string `json:"serialNumber"`
}

// CreateLoanInput is the payload sent to the backend when opening a loan.
type CreateLoanInput struct {
	FirearmCost   decimal.Decimal `json:"firearm_cost"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	Duration      int             `json:"duration"`
	Interest      decimal.Decimal `json:"interest"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	StartDate     string          `json:"start_date"`
	CustomerID    string          `json:"customer_id"`
	QuoteNumber   string          `json:"quote_number,omitempty"`
	Status        LoanStatus      `json:"status"`
}

// LoanTrendPoint is one monthly bucket of the dashboard loan chart.
type LoanTrendPoint struct {
	Month          time.Time       `json:"month"`
	LoanCount      int             `json:"loan_count"`
	TotalLoanValue decimal.Decimal `json:"total_loan_value"`
}

// PendingLoan is a dashboard row for a loan awaiting payment.
type PendingLoan struct {
	FullName        string          `json:"full_name"`
	Status          LoanStatus      `json:"status"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}
