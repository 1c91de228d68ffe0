package checkout

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/perfura/storefront/internal/models"
)

// Form is the shipping and contact data typed by the shopper.
type Form struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAddress    = "address"
	FieldCity       = "city"
	FieldPostalCode = "postalCode"
)

var ErrUnknownField = errors.New("unknown checkout field")

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

// Clear drops the message of a field the shopper is editing.
func (fe FieldErrors) Clear(field string) {
	delete(fe, field)
}

func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError blocks submission; nothing is sent while it is returned.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid checkout form: " + strings.Join(e.Fields.Fields(), ", ")
}

func Validate(form Form) FieldErrors {
	errs := FieldErrors{}

	required := func(field, value, message string) bool {
		if strings.TrimSpace(value) == "" {
			errs[field] = message
			return false
		}
		return true
	}

	required(FieldName, form.Name, "Name is required")
	if required(FieldEmail, form.Email, "Email is required") && !emailPattern.MatchString(form.Email) {
		errs[FieldEmail] = "Invalid email format"
	}
	if required(FieldPhone, form.Phone, "Phone number is required") && !phonePattern.MatchString(strings.TrimSpace(form.Phone)) {
		errs[FieldPhone] = "Invalid phone number format"
	}
	required(FieldAddress, form.Address, "Address is required")
	required(FieldCity, form.City, "City is required")
	required(FieldPostalCode, form.PostalCode, "Postal code is required")

	return errs
}

func (f Form) customer() models.CustomerInfo {
	return models.CustomerInfo{
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Address:    strings.TrimSpace(f.Address),
		City:       strings.TrimSpace(f.City),
		PostalCode: strings.TrimSpace(f.PostalCode),
	}
}
