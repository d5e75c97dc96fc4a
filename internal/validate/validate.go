// Package validate holds the input rules shared by the profile and rental
// services.
package validate

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"rentctl/internal/errs"
)

var (
	ssnDashed  = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	ssnDigits  = regexp.MustCompile(`^\d{9}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrInvalidSSN        = errs.New(errs.Validation, "invalid SSN format, use XXX-XX-XXXX or XXXXXXXXX")
	ErrInvalidEmail      = errs.New(errs.Validation, "invalid email format")
	ErrInvalidFirstName  = errs.New(errs.Validation, "invalid first name, use only letters and spaces")
	ErrInvalidLastName   = errs.New(errs.Validation, "invalid last name, use only letters, spaces, and hyphens")
	ErrInvalidPassportID = errs.New(errs.Validation, "passport ID cannot be empty")
	ErrInvalidPhone      = errs.New(errs.Validation, "phone number cannot be empty")
	ErrInvalidTerm       = errs.New(errs.Validation, "contract length must be a positive number of months")
	ErrNegativeFee       = errs.New(errs.Validation, "broker fee cannot be negative")
	ErrInvalidFee        = errs.New(errs.Validation, "broker fee must be a finite number")
)

// SSN accepts XXX-XX-XXXX or nine bare digits.
func SSN(ssn string) error {
	if ssnDashed.MatchString(ssn) || ssnDigits.MatchString(ssn) {
		return nil
	}
	return ErrInvalidSSN
}

func Email(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func PassportID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidPassportID
	}
	return nil
}

func Phone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrInvalidPhone
	}
	return nil
}

// FirstName allows letters and spaces.
func FirstName(name string) error {
	if !nameOf(name, false) {
		return ErrInvalidFirstName
	}
	return nil
}

// LastName allows letters, spaces and hyphens.
func LastName(name string) error {
	if !nameOf(name, true) {
		return ErrInvalidLastName
	}
	return nil
}

func nameOf(name string, hyphen bool) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsSpace(r):
		case hyphen && r == '-':
		default:
			return false
		}
	}
	return true
}

// Term checks a contract length in months.
func Term(months int) error {
	if months <= 0 {
		return ErrInvalidTerm
	}
	return nil
}

// BrokerFee checks that a fee is a finite, non-negative amount.
func BrokerFee(fee float64) error {
	if math.IsNaN(fee) || math.IsInf(fee, 0) {
		return ErrInvalidFee
	}
	if fee < 0 {
		return ErrNegativeFee
	}
	return nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LeaseEnd counts every month as 30 days; it is not calendar-aware.
func LeaseEnd(start time.Time, months int) time.Time {
	return Day(start).AddDate(0, 0, 30*months)
}
