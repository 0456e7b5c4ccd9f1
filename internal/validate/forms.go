package validate

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/erazemk/armory/internal/model"
)

// Loan limits.
var (
	MaxFirearmCost = decimal.NewFromInt(1_000_000)
	MaxInterest    = decimal.NewFromInt(100)
)

// Loan duration bounds, in months.
const (
	MinDuration = 1
	MaxDuration = 120
)

// LoanForm is the new-loan wizard as submitted.
type LoanForm struct {
	FullName      string `form:"full_name" validate:"required,max=100"`
	Email         string `form:"email" validate:"omitempty,email"`
	PhoneNumber   string `form:"phone_number" validate:"required,max=20,phone"`
	IDNumber      string `form:"id_number" validate:"required,max=20,idnumber"`
	Street        string `form:"street" validate:"max=200"`
	Town          string `form:"town" validate:"max=100"`
	Province      string `form:"province" validate:"max=100"`
	PostalCode    string `form:"postal_code" validate:"max=10,digits"`
	Country       string `form:"country" validate:"max=100"`
	QuoteNumber   string `form:"quote_number" validate:"decimal"`
	StartDate     string `form:"start_date" validate:"required,date"`
	FirearmCost   string `form:"firearm_cost" validate:"required,decimal"`
	DepositAmount string `form:"deposit_amount" validate:"decimal"`
	LoanAmount    string `form:"loan_amount" validate:"required,decimal"`
	Duration      string `form:"duration" validate:"required,digits"`
	Interest      string `form:"interest" validate:"decimal"`
	CustomerID    string `form:"customer_id" validate:"required"`
}

// loanFormRules checks the numeric ranges once the fields are known to
// parse.
func loanFormRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(LoanForm)

	if decimalRe.MatchString(f.FirearmCost) && f.FirearmCost != "" {
		cost := parseDecimal(f.FirearmCost)
		switch {
		case !cost.IsPositive():
			sl.ReportError(f.FirearmCost, "firearm_cost", "FirearmCost", "gt", "0")
		case cost.GreaterThan(MaxFirearmCost):
			sl.ReportError(f.FirearmCost, "firearm_cost", "FirearmCost", "lte", MaxFirearmCost.String())
		}
		if f.DepositAmount != "" && decimalRe.MatchString(f.DepositAmount) &&
			parseDecimal(f.DepositAmount).GreaterThan(cost) {
			sl.ReportError(f.DepositAmount, "deposit_amount", "DepositAmount", "ltefield", "FirearmCost")
		}
	}
	if f.LoanAmount != "" && decimalRe.MatchString(f.LoanAmount) && !parseDecimal(f.LoanAmount).IsPositive() {
		sl.ReportError(f.LoanAmount, "loan_amount", "LoanAmount", "gt", "0")
	}
	if f.Duration != "" && digitsRe.MatchString(f.Duration) {
		n, err := strconv.Atoi(f.Duration)
		if err != nil || n < MinDuration || n > MaxDuration {
			sl.ReportError(f.Duration, "duration", "Duration", "range", "1-120")
		}
	}
	if f.Interest != "" && decimalRe.MatchString(f.Interest) {
		rate := parseDecimal(f.Interest)
		if rate.IsNegative() || rate.GreaterThan(MaxInterest) {
			sl.ReportError(f.Interest, "interest", "Interest", "range", "0-100")
		}
	}
}

// Input validates the form and returns the loan to create.
func (f LoanForm) Input() (model.CreateLoanInput, error) {
	f = trimLoan(f)
	if err := check(f); err != nil {
		return model.CreateLoanInput{}, err
	}
	duration, _ := strconv.Atoi(f.Duration)
	return model.CreateLoanInput{
		FirearmCost:   parseDecimal(f.FirearmCost),
		LoanAmount:    parseDecimal(f.LoanAmount),
		Duration:      duration,
		Interest:      parseDecimal(f.Interest),
		DepositAmount: parseDecimal(f.DepositAmount),
		StartDate:     f.StartDate,
		CustomerID:    f.CustomerID,
		QuoteNumber:   f.QuoteNumber,
		Status:        model.StatusGrace,
	}, nil
}

func trimLoan(f LoanForm) LoanForm {
	for _, s := range []*string{
		&f.FullName, &f.Email, &f.PhoneNumber, &f.IDNumber, &f.PostalCode,
		&f.QuoteNumber, &f.StartDate, &f.FirearmCost, &f.DepositAmount,
		&f.LoanAmount, &f.Duration, &f.Interest, &f.CustomerID,
	} {
		*s = strings.TrimSpace(*s)
	}
	return f
}

// ClientForm creates or edits a client.
type ClientForm struct {
	FullName    string `form:"full_name" validate:"required,max=100"`
	Email       string `form:"email" validate:"omitempty,email"`
	PhoneNumber string `form:"phone_number" validate:"required,max=20,phone"`
	IDNumber    string `form:"id_number" validate:"omitempty,max=20,idnumber"`
	Street      string `form:"street" validate:"max=200"`
	Town        string `form:"town" validate:"max=100"`
	Province    string `form:"province" validate:"max=100"`
	PostalCode  string `form:"postal_code" validate:"max=10,digits"`
	Country     string `form:"country" validate:"max=100"`
}

// Input validates the form and returns the client payload.
func (f ClientForm) Input() (model.ClientInput, error) {
	for _, s := range []*string{&f.FullName, &f.Email, &f.PhoneNumber, &f.IDNumber, &f.PostalCode} {
		*s = strings.TrimSpace(*s)
	}
	if err := check(f); err != nil {
		return model.ClientInput{}, err
	}
	return model.ClientInput{
		FullName:    f.FullName,
		IDNumber:    f.IDNumber,
		PhoneNumber: f.PhoneNumber,
		Email:       f.Email,
		Address: model.Address{
			StreetName: f.Street,
			Town:       f.Town,
			Province:   f.Province,
			PostalCode: f.PostalCode,
			Country:    f.Country,
		},
	}, nil
}

// InviteForm invites a new staff member.
type InviteForm struct {
	Email       string `form:"email" validate:"required,email"`
	FullName    string `form:"full_name" validate:"required,max=100"`
	PhoneNumber string `form:"phone_number" validate:"required,max=20,phone"`
	Role        string `form:"role" validate:"required,role"`
	IDNumber    string `form:"id_number" validate:"omitempty,max=20,idnumber"`
}

// Input validates the form and returns the invitation. The redirect is
// left to the gateway.
func (f InviteForm) Input() (model.InviteInput, error) {
	f.Email = strings.TrimSpace(f.Email)
	f.Role = strings.ToLower(strings.TrimSpace(f.Role))
	if err := check(f); err != nil {
		return model.InviteInput{}, err
	}
	return model.InviteInput{
		Email: f.Email,
		Profile: model.InviteProfile{
			FullName:    strings.TrimSpace(f.FullName),
			PhoneNumber: strings.TrimSpace(f.PhoneNumber),
			Role:        f.Role,
			IDNumber:    strings.TrimSpace(f.IDNumber),
		},
	}, nil
}

// StaffForm edits a staff member.
type StaffForm struct {
	FullName    string `form:"full_name" validate:"required,max=100"`
	Email       string `form:"email" validate:"required,email"`
	PhoneNumber string `form:"phone_number" validate:"omitempty,max=20,phone"`
	Role        string `form:"role" validate:"required,role"`
	IDNumber    string `form:"id_number" validate:"omitempty,max=20,idnumber"`
}

// Input validates the form and returns the staff payload.
func (f StaffForm) Input() (model.StaffInput, error) {
	f.Role = strings.ToLower(strings.TrimSpace(f.Role))
	if err := check(f); err != nil {
		return model.StaffInput{}, err
	}
	return model.StaffInput{
		FullName:    strings.TrimSpace(f.FullName),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Role:        f.Role,
		IDNumber:    strings.TrimSpace(f.IDNumber),
		Email:       strings.TrimSpace(f.Email),
	}, nil
}

// PaymentForm records a loan payment.
type PaymentForm struct {
	LoanID      string `form:"loan_id" validate:"required"`
	Amount      string `form:"amount" validate:"required,decimal"`
	PaymentType string `form:"payment_type" validate:"required,paymenttype"`
	PaymentDate string `form:"payment_date" validate:"omitempty,date"`
}

// Input validates the form and returns the payment payload.
func (f PaymentForm) Input() (model.LoanPaymentInput, error) {
	f.Amount = strings.TrimSpace(f.Amount)
	if err := check(f); err != nil {
		return model.LoanPaymentInput{}, err
	}
	amount := parseDecimal(f.Amount)
	if !amount.IsPositive() {
		return model.LoanPaymentInput{}, Errors{"amount": messages["amount.gt"]}
	}
	pt, _ := model.ParsePaymentType(f.PaymentType)
	return model.LoanPaymentInput{
		LoanID:      f.LoanID,
		Amount:      amount,
		Type:        pt,
		PaymentDate: strings.TrimSpace(f.PaymentDate),
	}, nil
}

// CreditForm tops up a client's credit.
type CreditForm struct {
	CustomerID  string `form:"customer_id" validate:"required"`
	Amount      string `form:"amount" validate:"required,decimal"`
	PaymentType string `form:"payment_type" validate:"required,paymenttype"`
}

// Input validates the form and returns the credit payload.
func (f CreditForm) Input() (model.CreditPaymentInput, error) {
	f.Amount = strings.TrimSpace(f.Amount)
	if err := check(f); err != nil {
		return model.CreditPaymentInput{}, err
	}
	amount := parseDecimal(f.Amount)
	if !amount.IsPositive() {
		return model.CreditPaymentInput{}, Errors{"amount": messages["amount.gt"]}
	}
	pt, _ := model.ParsePaymentType(f.PaymentType)
	return model.CreditPaymentInput{CustomerID: f.CustomerID, Amount: amount, Type: pt}, nil
}

// FirearmForm registers or edits a firearm.
type FirearmForm struct {
	MakeModel    string `form:"make_model" validate:"required,max=200"`
	StockNumber  string `form:"stock_number" validate:"max=100"`
	SerialNumber string `form:"serial_number" validate:"max=100"`
	CustomerID   string `form:"customer_id"`
	LoanID       string `form:"loan_id"`
}

// Input validates the form and returns the firearm payload.
func (f FirearmForm) Input() (model.FirearmInput, error) {
	for _, s := range []*string{&f.MakeModel, &f.StockNumber, &f.SerialNumber} {
		*s = strings.TrimSpace(*s)
	}
	if err := check(f); err != nil {
		return model.FirearmInput{}, err
	}
	return model.FirearmInput{
		MakeModel:    f.MakeModel,
		StockNumber:  f.StockNumber,
		SerialNumber: f.SerialNumber,
		CustomerID:   f.CustomerID,
		LoanID:       f.LoanID,
	}, nil
}

// StorageForm books a firearm into storage.
type StorageForm struct {
	FirearmID   string `form:"firearm_id" validate:"required"`
	CustomerID  string `form:"customer_id" validate:"required"`
	StorageType string `form:"storage_type" validate:"required,max=50"`
	BookInDate  string `form:"bookin_date" validate:"required,date"`
}

// Input validates the form and returns the storage payload.
func (f StorageForm) Input() (model.StorageInput, error) {
	f.StorageType = strings.TrimSpace(f.StorageType)
	f.BookInDate = strings.TrimSpace(f.BookInDate)
	if err := check(f); err != nil {
		return model.StorageInput{}, err
	}
	return model.StorageInput{
		FirearmID:   f.FirearmID,
		CustomerID:  f.CustomerID,
		StorageType: f.StorageType,
		BookInDate:  f.BookInDate,
	}, nil
}

// SettingsForm edits the company settings.
type SettingsForm struct {
	CompanyName   string `form:"company_name" validate:"max=200"`
	CompanyEmail  string `form:"company_email" validate:"omitempty,email"`
	CompanyNumber string `form:"company_number" validate:"max=50"`
	CompanyLogo   string `form:"company_logo" validate:"omitempty,url"`
	CompanyURL    string `form:"company_url" validate:"omitempty,http_url"`
}

// Input validates the form and returns the settings.
func (f SettingsForm) Input() (model.Settings, error) {
	for _, s := range []*string{&f.CompanyName, &f.CompanyEmail, &f.CompanyNumber, &f.CompanyLogo, &f.CompanyURL} {
		*s = strings.TrimSpace(*s)
	}
	if err := check(f); err != nil {
		return model.Settings{}, err
	}
	return model.Settings{
		CompanyName:   f.CompanyName,
		CompanyEmail:  f.CompanyEmail,
		CompanyNumber: f.CompanyNumber,
		CompanyLogo:   f.CompanyLogo,
		CompanyURL:    f.CompanyURL,
	}, nil
}
