package mapper

import "encoding/json"

// CustomerRef is a customer as nested in other rows.
type CustomerRef struct {
	ID           Text   `json:"id"`
	FullName     Text   `json:"full_name"`
	Email        Text   `json:"email"`
	PhoneNumber  Text   `json:"phone_number"`
	IDNumber     Text   `json:"id_number"`
	CreditAmount Number `json:"credit_amount"`
}

// FirearmRef is a firearm as nested in other rows. Older responses call the
// make and model field "model".
type FirearmRef struct {
	ID            Text `json:"id"`
	MakeModel     Text `json:"make_model"`
	Model         Text `json:"model"`
	StockNumber   Text `json:"stock_number"`
	SerialNumber  Text `json:"serial_number"`
	CreatedAt     Text `json:"created_at"`
	BookedOut     Flag `json:"booked_out"`
	BookedOutDate Text `json:"booked_out_date"`
	BookInDate    Text `json:"bookin_date"`
	BookOutDate   Text `json:"bookout_date"`
	InvoiceNumber Text `json:"invoice_number"`
}

func (f *FirearmRef) makeModel() string {
	if f.MakeModel != "" {
		return string(f.MakeModel)
	}
	return string(f.Model)
}

// EnrichedLoan is a loan row joined with its customer and firearm. The
// backend nests those under "customer" or "customers" and "firearm" or
// "firearms" depending on the endpoint; both are accepted.
type EnrichedLoan struct {
	ID            Text
	CustomerID    Text
	QuoteNumber   Text
	InvoiceNumber Text
	FirearmCost   Number
	DepositAmount Number
	LoanAmount    Number
	RemainAmount  Number
	Duration      Number
	Interest      Number
	StartDate     Text
	Status        Text
	Customer      *CustomerRef
	Firearm       *FirearmRef
}

type enrichedLoanJSON struct {
	ID            Text         `json:"id"`
	CustomerID    Text         `json:"customer_id"`
	QuoteNumber   Text         `json:"quote_number"`
	InvoiceNumber Text         `json:"invoice_number"`
	FirearmCost   Number       `json:"firearm_cost"`
	DepositAmount Number       `json:"deposit_amount"`
	LoanAmount    Number       `json:"loan_amount"`
	RemainAmount  Number       `json:"remain_amount"`
	Duration      Number       `json:"duration"`
	Interest      Number       `json:"interest"`
	StartDate     Text         `json:"start_date"`
	Status        Text         `json:"status"`
	Customer      *CustomerRef `json:"customer"`
	Customers     *CustomerRef `json:"customers"`
	Firearm       *FirearmRef  `json:"firearm"`
	Firearms      *FirearmRef  `json:"firearms"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *EnrichedLoan) UnmarshalJSON(b []byte) error {
	var raw enrichedLoanJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*l = EnrichedLoan{
		ID:            raw.ID,
		CustomerID:    raw.CustomerID,
		QuoteNumber:   raw.QuoteNumber,
		InvoiceNumber: raw.InvoiceNumber,
		FirearmCost:   raw.FirearmCost,
		DepositAmount: raw.DepositAmount,
		LoanAmount:    raw.LoanAmount,
		RemainAmount:  raw.RemainAmount,
		Duration:      raw.Duration,
		Interest:      raw.Interest,
		StartDate:     raw.StartDate,
		Status:        raw.Status,
		Customer:      raw.Customer,
		Firearm:       raw.Firearm,
	}
	if l.Customer == nil {
		l.Customer = raw.Customers
	}
	if l.Firearm == nil {
		l.Firearm = raw.Firearms
	}
	return nil
}

// AddressRow is a customer address.
type AddressRow struct {
	ID         Text `json:"id"`
	StreetName Text `json:"street_name"`
	Town       Text `json:"town"`
	Province   Text `json:"province"`
	PostalCode Text `json:"postal_code"`
	Country    Text `json:"country"`
}

// CustomerRow is a customer as listed by /customers. The address comes under
// "address" or "customer_address".
type CustomerRow struct {
	CustomerRef
	Address *AddressRow
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CustomerRow) UnmarshalJSON(b []byte) error {
	var raw struct {
		CustomerRef
		Address         *AddressRow `json:"address"`
		CustomerAddress *AddressRow `json:"customer_address"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.CustomerRef = raw.CustomerRef
	c.Address = raw.Address
	if c.Address == nil {
		c.Address = raw.CustomerAddress
	}
	return nil
}

// LoanRef is the minimal loan shape used to count loans per customer.
type LoanRef struct {
	ID         Text `json:"id"`
	CustomerID Text `json:"customer_id"`
}

// FirearmOwnerRow is a customer nested under a firearm.
type FirearmOwnerRow struct {
	CustomerRef
	Address *AddressRow `json:"address"`
}

// LoanPaymentRow is a payment nested under a loan.
type LoanPaymentRow struct {
	ID            Text   `json:"id"`
	PaymentAmount Number `json:"payment_amount"`
	PaymentType   Text   `json:"payment_type"`
	PaymentDate   Text   `json:"payment_date"`
}

// PenaltyRow is a penalty nested under a loan. The backend spells the amount
// field "penaltie_amount".
type PenaltyRow struct {
	ID          Text   `json:"id"`
	Amount      Number `json:"penaltie_amount"`
	DateApplied Text   `json:"date_applied"`
	Reason      Text   `json:"reason"`
}

// FirearmLoanRow is a loan nested under a firearm.
type FirearmLoanRow struct {
	ID            Text            `json:"id"`
	FirearmCost   Number          `json:"firearm_cost"`
	QuoteNumber   Text            `json:"quote_number"`
	LoanAmount    Number          `json:"loan_amount"`
	Duration      Number          `json:"duration"`
	Interest      Number          `json:"interest"`
	RemainAmount  Number          `json:"remain_amount"`
	DepositAmount Number          `json:"deposit_amount"`
	StartDate     Text            `json:"start_date"`
	Status        Text            `json:"status"`
	Completed     Flag            `json:"completed"`
	InvoiceNumber Text            `json:"invoice_number"`
	Customer      *CustomerRef    `json:"customer"`
	LoanPayment   *LoanPaymentRow `json:"loan_payment"`
	Penalty       *PenaltyRow     `json:"penalty"`
}

// StorageRef is the storage record nested under a firearm.
type StorageRef struct {
	ID          Text `json:"id"`
	StorageType Text `json:"storage_type"`
	Credit      Text `json:"credit"`
}

// FirearmRow is a firearm with its owners, storage and loans.
type FirearmRow struct {
	FirearmRef
	Customers []FirearmOwnerRow `json:"customers"`
	Storage   *StorageRef       `json:"storage"`
	Loans     []FirearmLoanRow  `json:"loans"`
}

// StorageLoanRef is the loan nested under a storage entry.
type StorageLoanRef struct {
	ID            Text `json:"id"`
	QuoteNumber   Text `json:"quote_number"`
	InvoiceNumber Text `json:"invoice_number"`
	StartDate     Text `json:"start_date"`
	Status        Text `json:"status"`
}

// StorageRow is a storage entry. The detail endpoint nests "firearm" and
// "customer" and carries the booking dates itself; the list endpoint nests
// "firearms" and "customers" and keeps the dates on the firearm.
type StorageRow struct {
	ID            Text
	StorageType   Text
	BookedInDate  Text
	BookedOutDate Text
	CreatedAt     Text
	Firearm       *FirearmRef
	Customer      *CustomerRef
	Loan          *StorageLoanRef
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StorageRow) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID            Text            `json:"id"`
		StorageType   Text            `json:"storage_type"`
		BookedInDate  Text            `json:"booked_in_date"`
		BookedOutDate Text            `json:"booked_out_date"`
		CreatedAt     Text            `json:"created_at"`
		Firearm       *FirearmRef     `json:"firearm"`
		Firearms      *FirearmRef     `json:"firearms"`
		Customer      *CustomerRef    `json:"customer"`
		Customers     *CustomerRef    `json:"customers"`
		Loan          *StorageLoanRef `json:"loan"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = StorageRow{
		ID:            raw.ID,
		StorageType:   raw.StorageType,
		BookedInDate:  raw.BookedInDate,
		BookedOutDate: raw.BookedOutDate,
		CreatedAt:     raw.CreatedAt,
		Firearm:       raw.Firearm,
		Customer:      raw.Customer,
		Loan:          raw.Loan,
	}
	if s.Firearm == nil && raw.Firearms != nil {
		s.Firearm = raw.Firearms
		if s.BookedInDate == "" {
			s.BookedInDate = raw.Firearms.BookInDate
		}
		if s.BookedOutDate == "" {
			s.BookedOutDate = raw.Firearms.BookOutDate
		}
	}
	if s.BookedInDate == "" {
		s.BookedInDate = s.CreatedAt
	}
	if s.Customer == nil {
		s.Customer = raw.Customers
	}
	return nil
}

// StaffRow is a staff member as returned by /admin/staff.
type StaffRow struct {
	ID          Text `json:"id"`
	FullName    Text `json:"full_name"`
	Email       Text `json:"email"`
	PhoneNumber Text `json:"phone_number"`
	Role        Text `json:"role"`
	CreatedAt   Text `json:"created_at"`
	IDNumber    Text `json:"id_number"`
	Blocked     Flag `json:"blocked"`
}

// PaymentRow is a loan payment history item or a latest-payment row.
type PaymentRow struct {
	ID            Text      `json:"id"`
	PaymentAmount Number    `json:"payment_amount"`
	Amount        Number    `json:"amount"`
	PaymentType   Text      `json:"payment_type"`
	PaymentDate   Text      `json:"payment_date"`
	LoanID        Text      `json:"loan_id"`
	CustomerID    Text      `json:"customer_id"`
	CreatedAt     Text      `json:"created_at"`
	QuoteNumber   Text      `json:"quote_number"`
	FullName      Text      `json:"full_name"`
	Loan          *QuoteRef `json:"loans"`
}

// QuoteRef is a loan reduced to its quote number.
type QuoteRef struct {
	QuoteNumber Text `json:"quote_number"`
}
