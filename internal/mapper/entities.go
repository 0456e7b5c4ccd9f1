package mapper

import (
	"strings"

	"github.com/erazemk/armory/internal/model"
)

func mapAddress(a *AddressRow) *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{
		ID:         string(a.ID),
		StreetName: string(a.StreetName),
		Town:       string(a.Town),
		Province:   string(a.Province),
		PostalCode: string(a.PostalCode),
		Country:    string(a.Country),
	}
}

// MapCustomer converts a customer row. loanCounts maps customer ids to the
// number of loans that reference them and may be nil.
func MapCustomer(row CustomerRow, loanCounts map[string]int) model.ClientData {
	id := string(row.ID)
	return model.ClientData{
		ID:           id,
		FullName:     string(row.FullName),
		Email:        string(row.Email),
		PhoneNumber:  string(row.PhoneNumber),
		IDNumber:     string(row.IDNumber),
		LoansCount:   loanCounts[id],
		CreditAmount: row.CreditAmount.Decimal(),
		Address:      mapAddress(row.Address),
	}
}

// CountLoans counts loans per customer id, skipping loans without one.
func CountLoans(loans []LoanRef) map[string]int {
	counts := make(map[string]int)
	for _, l := range loans {
		if l.CustomerID == "" {
			continue
		}
		counts[string(l.CustomerID)]++
	}
	return counts
}

func mapOwner(c CustomerRef, addr *AddressRow) model.FirearmOwner {
	return model.FirearmOwner{
		ID:          string(c.ID),
		Name:        string(c.FullName),
		IDNumber:    string(c.IDNumber),
		PhoneNumber: string(c.PhoneNumber),
		Email:       string(c.Email),
		Address:     mapAddress(addr),
	}
}

// MapFirearm converts a firearm with its relations.
func MapFirearm(row FirearmRow) model.Firearm {
	f := model.Firearm{
		ID:            string(row.ID),
		MakeModel:     row.makeModel(),
		StockNumber:   string(row.StockNumber),
		SerialNumber:  string(row.SerialNumber),
		DateAdded:     ParseDate(string(row.CreatedAt)),
		BookedOut:     bool(row.BookedOut),
		BookedOutDate: parseDatePtr(row.BookedOutDate),
		InvoiceNumber: string(row.InvoiceNumber),
		Customers:     make([]model.FirearmOwner, 0, len(row.Customers)),
		Loans:         make([]model.FirearmLoan, 0, len(row.Loans)),
	}

	for _, c := range row.Customers {
		f.Customers = append(f.Customers, mapOwner(c.CustomerRef, c.Address))
	}

	if s := row.Storage; s != nil {
		f.Storage = &model.FirearmStorage{
			ID:          string(s.ID),
			StorageType: string(s.StorageType),
			Credit:      string(s.Credit),
		}
	}

	for _, ln := range row.Loans {
		loan := model.FirearmLoan{
			ID:            string(ln.ID),
			QuoteNumber:   string(ln.QuoteNumber),
			InvoiceNumber: string(ln.InvoiceNumber),
			FirearmCost:   ln.FirearmCost.Decimal(),
			LoanAmount:    ln.LoanAmount.Decimal(),
			RemainAmount:  ln.RemainAmount.Decimal(),
			DepositAmount: ln.DepositAmount.Decimal(),
			Duration:      ln.Duration.Int(),
			Interest:      ln.Interest.Decimal(),
			StartDate:     string(ln.StartDate),
			Status:        model.ParseLoanStatus(string(ln.Status)),
			Completed:     bool(ln.Completed),
		}
		if f.InvoiceNumber == "" && loan.InvoiceNumber != "" && f.BookedOut {
			f.InvoiceNumber = loan.InvoiceNumber
		}
		if ln.Customer != nil {
			owner := mapOwner(*ln.Customer, nil)
			loan.Customer = &owner
		}
		if p := ln.LoanPayment; p != nil {
			pt, _ := model.ParsePaymentType(string(p.PaymentType))
			loan.Payment = &model.Payment{
				ID:     string(p.ID),
				Amount: p.PaymentAmount.Decimal(),
				Type:   pt,
				Date:   parseDatePtr(p.PaymentDate),
				LoanID: loan.ID,
			}
		}
		if p := ln.Penalty; p != nil {
			loan.Penalty = &model.Penalty{
				ID:          string(p.ID),
				Amount:      p.Amount.Decimal(),
				DateApplied: parseDatePtr(p.DateApplied),
				Reason:      string(p.Reason),
			}
		}
		f.Loans = append(f.Loans, loan)
	}
	return f
}

// MapStorage converts a storage entry from either the list or detail shape.
func MapStorage(row StorageRow) model.StorageEntry {
	e := model.StorageEntry{
		ID:            string(row.ID),
		StorageType:   string(row.StorageType),
		BookedInDate:  parseDatePtr(row.BookedInDate),
		BookedOutDate: parseDatePtr(row.BookedOutDate),
	}
	if f := row.Firearm; f != nil {
		e.Firearm = &model.StorageFirearm{
			ID:            string(f.ID),
			MakeModel:     f.makeModel(),
			StockNumber:   string(f.StockNumber),
			SerialNumber:  string(f.SerialNumber),
			CreatedAt:     parseDatePtr(f.CreatedAt),
			BookedOut:     bool(f.BookedOut),
			BookedOutDate: parseDatePtr(f.BookedOutDate),
		}
	}
	if c := row.Customer; c != nil {
		owner := mapOwner(*c, nil)
		e.Customer = &owner
	}
	if l := row.Loan; l != nil {
		e.Loan = &model.StorageLoan{
			ID:            string(l.ID),
			QuoteNumber:   string(l.QuoteNumber),
			InvoiceNumber: string(l.InvoiceNumber),
			StartDate:     string(l.StartDate),
			Status:        model.ParseLoanStatus(string(l.Status)),
		}
	}
	return e
}

// MapStaff converts a staff row. Roles are lowercased.
func MapStaff(row StaffRow) model.Staff {
	return model.Staff{
		ID:        string(row.ID),
		FullName:  string(row.FullName),
		Email:     string(row.Email),
		Phone:     string(row.PhoneNumber),
		Role:      strings.ToLower(strings.TrimSpace(string(row.Role))),
		IDNumber:  string(row.IDNumber),
		CreatedAt: parseDatePtr(row.CreatedAt),
		Blocked:   bool(row.Blocked),
	}
}

// MapPayment converts a payment row. Payment types are accepted in any case;
// unknown types are left empty.
func MapPayment(row PaymentRow) model.Payment {
	pt, _ := model.ParsePaymentType(string(row.PaymentType))
	amount := row.PaymentAmount
	if !amount.Valid {
		amount = row.Amount
	}
	quote := string(row.QuoteNumber)
	if quote == "" && row.Loan != nil {
		quote = string(row.Loan.QuoteNumber)
	}
	return model.Payment{
		ID:          string(row.ID),
		Amount:      amount.Decimal(),
		Type:        pt,
		Date:        parseDatePtr(row.PaymentDate),
		CreatedAt:   parseDatePtr(row.CreatedAt),
		LoanID:      string(row.LoanID),
		CustomerID:  string(row.CustomerID),
		QuoteNumber: quote,
		FullName:    string(row.FullName),
	}
}
