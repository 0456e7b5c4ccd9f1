package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Firearm is the view model of a firearm with its owners, storage and loans.
type Firearm struct {
	ID            string          `json:"id"`
	MakeModel     string          `json:"makeModel"`
	StockNumber   string          `json:"stockNumber"`
	SerialNumber  string          `json:"serialNumber"`
	DateAdded     time.Time       `json:"dateAdded"`
	BookedOut     bool            `json:"bookedOut"`
	BookedOutDate *time.Time      `json:"bookedOutDate,omitempty"`
	InvoiceNumber string          `json:"invoiceNumber,omitempty"`
	Customers     []FirearmOwner  `json:"customers"`
	Storage       *FirearmStorage `json:"storage,omitempty"`
	Loans         []FirearmLoan   `json:"loans"`
}

// FirearmOwner is a customer attached to a firearm.
type FirearmOwner struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	IDNumber    string   `json:"idNumber"`
	PhoneNumber string   `json:"phoneNumber"`
	Email       string   `json:"email"`
	Address     *Address `json:"address,omitempty"`
}

// FirearmStorage is the active storage record of a firearm.
type FirearmStorage struct {
	ID          string `json:"id"`
	StorageType string `json:"storageType"`
	Credit      string `json:"credit"`
}

// FirearmLoan is a loan as nested under a firearm.
type FirearmLoan struct {
	ID            string          `json:"id"`
	QuoteNumber   string          `json:"quoteNumber"`
	InvoiceNumber string          `json:"invoiceNumber"`
	FirearmCost   decimal.Decimal `json:"firearmCost"`
	LoanAmount    decimal.Decimal `json:"loanAmount"`
	RemainAmount  decimal.Decimal `json:"remainAmount"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
	Duration      int             `json:"duration"`
	Interest      decimal.Decimal `json:"interest"`
	StartDate     string          `json:"startDate"`
	Status        LoanStatus      `json:"status"`
	Completed     bool            `json:"completed"`
	Customer      *FirearmOwner   `json:"customer,omitempty"`
	Payment       *Payment        `json:"payment,omitempty"`
	Penalty       *Penalty        `json:"penalty,omitempty"`
}

// Penalty is a penalty applied to a loan.
type Penalty struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	DateApplied *time.Time      `json:"dateApplied,omitempty"`
	Reason      string          `json:"reason"`
}

// FirearmInput is the payload for creating or updating a firearm.
type FirearmInput struct {
	MakeModel    string `json:"make_model"`
	StockNumber  string `json:"stock_number"`
	SerialNumber string `json:"serial_number"`
	CustomerID   string `json:"customers_id,omitempty"`
	LoanID       string `json:"loans_id,omitempty"`
}
