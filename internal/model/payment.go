package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is the way a payment was made.
type PaymentType string

// Payment types.
const (
	PaymentEFT  PaymentType = "EFT"
	PaymentCash PaymentType = "Cash"
	PaymentCard PaymentType = "Card"
)

// ParsePaymentType accepts any casing of a payment type.
func ParsePaymentType(s string) (PaymentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eft":
		return PaymentEFT, nil
	case "cash":
		return PaymentCash, nil
	case "card":
		return PaymentCard, nil
	}
	return "", fmt.Errorf("unknown payment type %q", s)
}

// Payment is a loan or credit payment.
type Payment struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        PaymentType     `json:"type"`
	Date        *time.Time      `json:"date,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	LoanID      string          `json:"loanId,omitempty"`
	CustomerID  string          `json:"customerId,omitempty"`
	QuoteNumber string          `json:"quoteNumber,omitempty"`
	FullName    string          `json:"fullName,omitempty"`
}

// LoanPaymentInput is the payload for recording a loan payment.
type LoanPaymentInput struct {
	LoanID      string          `json:"loan_id"`
	Amount      decimal.Decimal `json:"payment_amount"`
	Type        PaymentType     `json:"payment_type"`
	PaymentDate string          `json:"payment_date"`
}

// CreditPaymentInput is the payload for topping up a customer's credit.
type CreditPaymentInput struct {
	CustomerID string          `json:"customers_id"`
	Amount     decimal.Decimal `json:"amount"`
	Type       PaymentType     `json:"payment_type"`
}

// CreditPaymentResult is the backend's answer to a credit payment.
type CreditPaymentResult struct {
	Message          string          `json:"message"`
	CustomerID       string          `json:"customer_id"`
	AmountCredited   decimal.Decimal `json:"amount_credited"`
	NewCreditBalance decimal.Decimal `json:"new_credit_balance"`
}

// LatestPayment is a dashboard row for a recently settled loan.
type LatestPayment struct {
	FullName  string          `json:"full_name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
}
