package model

import "github.com/shopspring/decimal"

// Address is a customer's postal address.
type Address struct {
	ID         string `json:"id,omitempty"`
	StreetName string `json:"street_name"`
	Town       string `json:"town"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ClientData is the view model of a customer.
type ClientData struct {
	ID           string          `json:"id"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	PhoneNumber  string          `json:"phoneNumber"`
	IDNumber     string          `json:"idNumber"`
	LoansCount   int             `json:"loansCount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Address      *Address        `json:"address,omitempty"`
}

// ClientInput is the payload for creating or updating a customer.
type ClientInput struct {
	FullName    string  `json:"full_name"`
	IDNumber    string  `json:"id_number,omitempty"`
	PhoneNumber string  `json:"phone_number"`
	Email       string  `json:"email,omitempty"`
	Address     Address `json:"address"`
}
