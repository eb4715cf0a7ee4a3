// Package validate holds the field validators and display formatters shared
// by the API handlers and the terminal client.
package validate

import (
	"regexp"
	"strings"

	"github.com/harrylevesque/clientdir/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// Digits strips every non-digit character from s.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

func Email(email string) bool {
	return emailPattern.MatchString(email)
}

// Phone accepts 10 or 11 digits once punctuation is removed.
func Phone(phone string) bool {
	n := len(Digits(phone))
	return n >= 10 && n <= 11
}

func NotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

func Credentials(username, password string) bool {
	return NotEmpty(username) && NotEmpty(password)
}

// FieldErrors maps a form field to a human readable problem.
type FieldErrors map[string]string

// ClientErrors reports every invalid field of a client form.
func ClientErrors(c models.ClientInput) FieldErrors {
	errs := FieldErrors{}
	if !NotEmpty(c.Name) {
		errs["name"] = "name is required"
	}
	switch {
	case !NotEmpty(c.Email):
		errs["email"] = "email is required"
	case !Email(c.Email):
		errs["email"] = "invalid email"
	}
	switch {
	case !NotEmpty(c.Phone):
		errs["phone"] = "phone is required"
	case !Phone(c.Phone):
		errs["phone"] = "invalid phone"
	}
	if !NotEmpty(c.Address.Street) {
		errs["street"] = "street is required"
	}
	if !NotEmpty(c.Address.City) {
		errs["city"] = "city is required"
	}
	if !NotEmpty(c.Address.Zipcode) {
		errs["zipcode"] = "zip code is required"
	}
	return errs
}

func Client(c models.ClientInput) bool {
	return len(ClientErrors(c)) == 0
}

// RegistrationErrors reports every invalid field of a sign-up form. The
// confirmation is only checked when supplied.
func RegistrationErrors(r models.Registration) FieldErrors {
	errs := FieldErrors{}
	if !NotEmpty(r.Username) {
		errs["username"] = "username is required"
	}
	if !NotEmpty(r.Password) {
		errs["password"] = "password is required"
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		errs["confirm_password"] = "passwords do not match"
	}
	if !NotEmpty(r.Name) {
		errs["name"] = "name is required"
	}
	switch {
	case !NotEmpty(r.Email):
		errs["email"] = "email is required"
	case !Email(r.Email):
		errs["email"] = "invalid email"
	}
	return errs
}

func Registration(r models.Registration) bool {
	return len(RegistrationErrors(r)) == 0
}
