package service

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	minimumAge = 18
	dateLayout = "2006-01-02"
)

// Validation messages.
const (
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgInvalidDateOfBirth = "Date of birth must be a valid date (YYYY-MM-DD)."
	MsgUnderage           = "You must be at least 18 years old to register."
	MsgInvalidGender      = "Please select a valid gender."
)

// Genders accepted on the registration form.
var Genders = []string{"Male", "Female", "Other", "Prefer not to say"}

// RegistrationForm is the applicant-supplied registration data.
type RegistrationForm struct {
	FullName    string `form:"full_name" json:"full_name"`
	Username    string `form:"username" json:"username"`
	Email       string `form:"email" json:"email"`
	Phone       string `form:"phone" json:"phone"`
	Address     string `form:"address" json:"address"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth"`
	Gender      string `form:"gender" json:"gender"`
	NationalID  string `form:"national_id" json:"national_id"`
}

// Normalize trims surrounding whitespace from every field.
func (f *RegistrationForm) Normalize() {
	for _, field := range []*string{
		&f.FullName, &f.Username, &f.Email, &f.Phone,
		&f.Address, &f.DateOfBirth, &f.Gender, &f.NationalID,
	} {
		*field = strings.TrimSpace(*field)
	}
}

type requiredField struct {
	label string
	value string
}

func (f *RegistrationForm) requiredFields() []requiredField {
	return []requiredField{
		{"Full name", f.FullName},
		{"Username", f.Username},
		{"Email", f.Email},
		{"Phone", f.Phone},
		{"Address", f.Address},
		{"Date of birth", f.DateOfBirth},
		{"Gender", f.Gender},
		{"National id", f.NationalID},
	}
}

var validate = validator.New()

// Validate checks the form against now and returns the parsed date of birth
// together with every failure message, in form order.
func (f *RegistrationForm) Validate(now time.Time) (time.Time, []string) {
	var messages []string
	for _, field := range f.requiredFields() {
		if field.value == "" {
			messages = append(messages, field.label+" is required.")
		}
	}

	if f.Email != "" && validate.Var(f.Email, "email") != nil {
		messages = append(messages, MsgInvalidEmail)
	}

	var dob time.Time
	if f.DateOfBirth != "" {
		parsed, err := time.Parse(dateLayout, f.DateOfBirth)
		switch {
		case err != nil:
			messages = append(messages, MsgInvalidDateOfBirth)
		case !OldEnough(parsed, now):
			messages = append(messages, MsgUnderage)
		default:
			dob = parsed
		}
	}

	if f.Gender != "" && !validGender(f.Gender) {
		messages = append(messages, MsgInvalidGender)
	}

	return dob, messages
}

// OldEnough reports whether someone born on dob has reached the minimum age
// on the calendar date of now. A birthday falling today counts.
func OldEnough(dob, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	by, bm, bd := dob.Date()
	born := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return !born.AddDate(minimumAge, 0, 0).After(today)
}

func validGender(g string) bool {
	for _, allowed := range Genders {
		if g == allowed {
			return true
		}
	}
	return false
}
