package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StorageEntry is a firearm held on the premises on behalf of a customer.
type StorageEntry struct {
	ID            string          `json:"id"`
	StorageType   string          `json:"storageType"`
	BookedInDate  *time.Time      `json:"bookedInDate,omitempty"`
	BookedOutDate *time.Time      `json:"bookedOutDate,omitempty"`
	Firearm       *StorageFirearm `json:"firearm,omitempty"`
	Customer      *FirearmOwner   `json:"customer,omitempty"`
	Loan          *StorageLoan    `json:"loan,omitempty"`

	// Charge is the storage fee accrued so far, filled in by the caller.
	ChargeDays int             `json:"chargeDays"`
	Charge     decimal.Decimal `json:"charge"`
}

// Active reports whether the firearm is still booked in.
func (e *StorageEntry) Active() bool {
	return e.BookedOutDate == nil
}

// StorageFirearm is the firearm held by a storage entry.
type StorageFirearm struct {
	ID            string     `json:"id"`
	MakeModel     string     `json:"makeModel"`
	StockNumber   string     `json:"stockNumber"`
	SerialNumber  string     `json:"serialNumber"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	BookedOut     bool       `json:"bookedOut"`
	BookedOutDate *time.Time `json:"bookedOutDate,omitempty"`
}

// StorageLoan is the loan linked to a storage entry.
type StorageLoan struct {
	ID            string     `json:"id"`
	QuoteNumber   string     `json:"quoteNumber"`
	InvoiceNumber string     `json:"invoiceNumber"`
	StartDate     string     `json:"startDate"`
	Status        LoanStatus `json:"status"`
}

// StorageInput is the payload for booking a firearm into storage.
type StorageInput struct {
	FirearmID   string `json:"firearm_id"`
	CustomerID  string `json:"customer_id"`
	StorageType string `json:"storage_type"`
	BookInDate  string `json:"bookin_date"`
	BookOutDate string `json:"bookout_date,omitempty"`
}
