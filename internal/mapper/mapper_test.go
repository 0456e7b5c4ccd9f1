package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/armory/internal/model"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decodeLoan(t *testing.T, s string) EnrichedLoan {
	t.Helper()
	var row EnrichedLoan
	require.NoError(t, json.Unmarshal([]byte(s), &row))
	return row
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  string
	}{
		{`12`, true, "12"},
		{`12.5`, true, "12.5"},
		{`"12"`, true, "12"},
		{`"1,250.75"`, true, "1250.75"},
		{`" 30 "`, true, "30"},
		{`null`, false, "0"},
		{`""`, false, "0"},
		{`"abc"`, false, "0"},
		{`true`, false, "0"},
		{`{}`, false, "0"},
	}
	for _, tt := range tests {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(tt.in), &n), tt.in)
		require.Equal(t, tt.valid, n.Valid, tt.in)
		require.True(t, n.Decimal().Equal(dec(tt.want)), "%s gave %s", tt.in, n.Decimal())
	}

	var n Number
	require.NoError(t, json.Unmarshal([]byte(`"12.9"`), &n))
	require.Equal(t, 12, n.Int())
}

func TestText(t *testing.T) {
	var v struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
		D Text `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":42,"c":null,"d":{"k":1}}`), &v))
	require.Equal(t, Text("x"), v.A)
	require.Equal(t, Text("42"), v.B)
	require.Equal(t, Text(""), v.C)
	require.Equal(t, Text(""), v.D)
}

func TestParseDate(t *testing.T) {
	require.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), ParseDate("2026-01-05"))
	require.True(t, ParseDate("2026-01-05T10:30:00Z").Equal(time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)))
	require.True(t, ParseDate("2026-01-05T10:30:00.123456+02:00").Equal(time.Date(2026, 1, 5, 8, 30, 0, 123456000, time.UTC)))
	require.True(t, ParseDate("2026-01-05 10:30:00").Equal(time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)))
	require.True(t, ParseDate("").IsZero())
	require.True(t, ParseDate("yesterday").IsZero())
}

func TestMapLoan(t *testing.T) {
	row := decodeLoan(t, `{
		"id": "loan-1",
		"customer_id": "cust-1",
		"quote_number": "Q-100",
		"invoice_number": "INV-9",
		"firearm_cost": 12000,
		"deposit_amount": "2,000",
		"loan_amount": 10000,
		"remain_amount": 7500,
		"duration": "12",
		"interest": "7.5",
		"start_date": "2026-03-01",
		"status": "Grace",
		"customer": {"id": "cust-1", "full_name": "Jan Novak", "email": "jan@example.com", "phone_number": "012 345", "id_number": "800101"},
		"firearm": {"id": "f-1", "make_model": "Glock 19", "stock_number": "S-1", "serial_number": "SN-1"}
	}`)

	got := MapLoan(row, testNow)
	require.Equal(t, "loan-1", got.LoanID)
	require.Equal(t, "cust-1", got.CustomerID)
	require.Equal(t, "Q-100", got.QuoteNumber)
	require.Equal(t, "INV-9", got.InvoiceNumber)
	require.True(t, got.FirearmCost.Equal(dec("12000")))
	require.True(t, got.DepositAmount.Equal(dec("2000")))
	require.True(t, got.HasDeposit)
	require.True(t, got.LoanAmount.Equal(dec("10000")))
	require.True(t, got.RemainingAmount.Equal(dec("7500")))
	require.Equal(t, 12, got.LoanDuration)
	require.True(t, got.InterestRate.Equal(dec("7.5")))
	require.Equal(t, "2026-03-01", got.StartDate)
	require.Equal(t, 9, got.DaysActive)
	require.Equal(t, 25, got.LoanProgress)
	require.Equal(t, "Jan Novak", got.FullName)
	require.Equal(t, "jan@example.com", got.Email)
	require.Equal(t, "012 345", got.PhoneNumber)
	require.Equal(t, "800101", got.IDNumber)
	require.Equal(t, model.FirearmDetails{MakeModel: "Glock 19", StockNumber: "S-1", SerialNumber: "SN-1"}, got.Firearm)
	require.Equal(t, model.StatusGrace, got.Status)
}

func TestMapLoanAlternateKeys(t *testing.T) {
	row := decodeLoan(t, `{
		"id": "loan-2",
		"start_date": "2026-03-10T12:00:00Z",
		"loan_amount": "800",
		"customers": {"id": "cust-2", "full_name": "Ana"},
		"firearms": {"id": "f-2", "model": "CZ 75", "serial_number": "SN-2"}
	}`)

	got := MapLoan(row, testNow)
	require.Equal(t, "cust-2", got.CustomerID)
	require.Equal(t, "Ana", got.FullName)
	require.Equal(t, "CZ 75", got.Firearm.MakeModel)
	require.Equal(t, "SN-2", got.Firearm.SerialNumber)
	require.Equal(t, 0, got.DaysActive)
	require.True(t, got.RemainingAmount.Equal(dec("800")))
	require.Equal(t, 0, got.LoanProgress)
	require.False(t, got.HasDeposit)
}

func TestMapLoanDefaults(t *testing.T) {
	row := decodeLoan(t, `{
		"id": "loan-3",
		"firearm_cost": "1000",
		"deposit_amount": "1200",
		"duration": "twelve",
		"interest": null,
		"start_date": "2027-01-01",
		"status": "Archived"
	}`)

	got := MapLoan(row, testNow)
	require.True(t, got.LoanAmount.IsZero())
	require.True(t, got.RemainingAmount.IsZero())
	require.Equal(t, 0, got.LoanProgress)
	require.Equal(t, 0, got.LoanDuration)
	require.True(t, got.InterestRate.IsZero())
	require.Equal(t, 0, got.DaysActive)
	require.Equal(t, model.StatusPendingPayment, got.Status)
	require.Equal(t, model.FirearmDetails{}, got.Firearm)
	require.Empty(t, got.FullName)

	// Loan amount missing: derived from cost and deposit.
	row = decodeLoan(t, `{"id":"loan-4","firearm_cost":"1000","deposit_amount":"200","remain_amount":"400"}`)
	got = MapLoan(row, testNow)
	require.True(t, got.LoanAmount.Equal(dec("800")))
	require.Equal(t, 50, got.LoanProgress)
}

func TestMapLoanOverpaidBalanceNotClamped(t *testing.T) {
	row := decodeLoan(t, `{"id":"l","loan_amount":1000,"remain_amount":1500,"start_date":"2026-03-01"}`)
	require.Equal(t, -50, MapLoan(row, testNow).LoanProgress)
}

func TestMapLoanIdempotent(t *testing.T) {
	row := decodeLoan(t, `{
		"id": "loan-1", "loan_amount": 900, "remain_amount": 300, "duration": "6",
		"start_date": "2026-01-15", "status": "pending payment",
		"customer": {"full_name": "A"}, "firearm": {"make_model": "B"}
	}`)

	a := MapLoan(row, testNow)
	b := MapLoan(row, testNow)
	require.Equal(t, a, b)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, ja, jb)
	require.Equal(t, model.StatusPendingPayment, a.Status)
}

func TestLoanFromFirearm(t *testing.T) {
	var f FirearmRow
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "f-1", "make_model": "Glock 19", "stock_number": "S-1", "serial_number": "SN-1",
		"loans": [{"id": "loan-9", "loan_amount": "500", "remain_amount": "250", "start_date": "2026-03-01",
			"customer": {"id": "cust-9", "full_name": "Eva"}}]
	}`), &f))

	row := LoanFromFirearm(f.FirearmRef, f.Loans[0])
	got := MapLoan(row, testNow)
	require.Equal(t, "loan-9", got.LoanID)
	require.Equal(t, "cust-9", got.CustomerID)
	require.Equal(t, "Eva", got.FullName)
	require.Equal(t, "Glock 19", got.Firearm.MakeModel)
	require.Equal(t, 50, got.LoanProgress)
}
