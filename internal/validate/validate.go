// Package validate checks dashboard form input before it is sent to the
// backend and converts valid forms into backend payloads.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

var (
	phoneRe    = regexp.MustCompile(`^[0-9\s\-+()]+$`)
	idNumberRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	digitsRe   = regexp.MustCompile(`^[0-9]*$`)
	decimalRe  = regexp.MustCompile(`^[0-9.]*$`)
)

// Errors maps form field names to a message. It is returned as an error
// when a form is invalid.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for a field, or "".
func (e Errors) Field(name string) string {
	return e[name]
}

// AsErrors extracts field errors from err.
func AsErrors(err error) (Errors, bool) {
	var e Errors
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("form"), ","); name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	mustRegister(val, "phone", matches(phoneRe))
	mustRegister(val, "idnumber", matches(idNumberRe))
	mustRegister(val, "digits", matches(digitsRe))
	mustRegister(val, "decimal", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		if !decimalRe.MatchString(s) {
			return false
		}
		_, err := decimal.NewFromString(s)
		return err == nil
	})
	mustRegister(val, "date", func(fl validator.FieldLevel) bool {
		return !mapper.ParseDate(strings.TrimSpace(fl.Field().String())).IsZero()
	})
	mustRegister(val, "paymenttype", func(fl validator.FieldLevel) bool {
		_, err := model.ParsePaymentType(fl.Field().String())
		return err == nil
	})
	mustRegister(val, "role", func(fl validator.FieldLevel) bool {
		role := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		for _, r := range model.Roles {
			if r == role {
				return true
			}
		}
		return false
	})
	val.RegisterStructValidation(loanFormRules, LoanForm{})
	return val
}

func mustRegister(val *validator.Validate, tag string, fn validator.Func) {
	if err := val.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// check validates s and converts validator errors to Errors. Only the first
// failure per field is kept.
func check(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating form: %w", err)
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, ok := out[fe.Field()]; ok {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

// messages override the generic text for a field and tag.
var messages = map[string]string{
	"full_name.required":       "Full name is required",
	"email.email":              "Invalid email format",
	"phone_number.required":    "Phone number is required",
	"phone_number.phone":       "Invalid phone number format",
	"id_number.required":       "ID number is required",
	"id_number.idnumber":       "ID number can only contain letters, numbers, and hyphens",
	"postal_code.digits":       "Postal code must contain only numbers",
	"quote_number.decimal":     "Quote number must contain only numbers and periods",
	"start_date.required":      "Loan start date is required",
	"start_date.date":          "Invalid date format",
	"firearm_cost.required":    "Firearm cost is required",
	"firearm_cost.decimal":     "Firearm cost must be a valid number",
	"firearm_cost.gt":          "Firearm cost must be greater than 0",
	"firearm_cost.lte":         "Firearm cost cannot exceed R1,000,000",
	"deposit_amount.decimal":   "Deposit amount must be a valid number",
	"deposit_amount.ltefield":  "Deposit amount cannot exceed firearm cost",
	"loan_amount.required":     "Loan amount is required",
	"loan_amount.decimal":      "Loan amount must be a valid number",
	"loan_amount.gt":           "Loan amount must be greater than 0",
	"duration.required":        "Loan duration is required",
	"duration.digits":          "Loan duration must be a whole number",
	"duration.range":           "Loan duration must be between 1 and 120 months",
	"interest.decimal":         "Interest rate must be a valid number",
	"interest.range":           "Interest rate must be between 0% and 100%",
	"customer_id.required":     "Please select an existing client",
	"amount.gt":                "Amount must be greater than 0",
	"payment_type.paymenttype": "Payment type must be EFT, Cash or Card",
	"role.role":                "Role must be admin, manager or staff",
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be less than %s characters", label, fe.Param())
	case "email":
		return "Invalid email format"
	case "url", "http_url":
		return label + " must be a valid URL"
	case "date":
		return "Invalid date format"
	case "decimal":
		return label + " must be a valid number"
	}
	return label + " is invalid"
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
