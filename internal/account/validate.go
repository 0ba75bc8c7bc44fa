package account

import (
	"regexp"
	"strings"

	"github.com/badoux/checkmail"

	"monexel/internal/core"
)

const (
	MsgName          = "Name should contain only letters and spaces."
	MsgPhone         = "Phone number must be 10 digits only."
	MsgPassword      = "Password must be at least 6 characters and include one letter, one number, and one special character."
	MsgEmail         = "Please enter a valid email address."
	MsgResetPassword = "Password must be at least 6 characters long."
)

const minPasswordLength = 6

var (
	nameRe          = regexp.MustCompile(`^[A-Za-z\s]+$`)
	phoneRe         = regexp.MustCompile(`^\d{10}$`)
	passwordCharsRe = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{6,}$`)
	letterRe        = regexp.MustCompile(`[A-Za-z]`)
	digitRe         = regexp.MustCompile(`\d`)
	symbolRe        = regexp.MustCompile(`[@$!%*?&]`)
)

func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return core.NewValidationError("name", MsgName)
	}
	return nil
}

func ValidatePhone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return core.NewValidationError("phoneNumber", MsgPhone)
	}
	return nil
}

// ValidatePassword requires at least six characters from letters, digits and
// @$!%*?&, with at least one of each class.
func ValidatePassword(password string) error {
	ok := passwordCharsRe.MatchString(password) &&
		letterRe.MatchString(password) &&
		digitRe.MatchString(password) &&
		symbolRe.MatchString(password)
	if !ok {
		return core.NewValidationError("password", MsgPassword)
	}
	return nil
}

// ValidateEmail checks the format only; no MX lookup is made.
func ValidateEmail(email string) error {
	if err := checkmail.ValidateFormat(strings.TrimSpace(email)); err != nil {
		return core.NewValidationError("email", MsgEmail)
	}
	return nil
}

func ValidateRegistration(r core.Registration) error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidatePhone(r.PhoneNumber); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

func ValidateProfile(u core.User) error {
	if err := ValidateName(u.Name); err != nil {
		return err
	}
	return ValidatePhone(u.PhoneNumber)
}

func ValidatePasswordReset(r core.PasswordReset) error {
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if len(r.NewPassword) < minPasswordLength {
		return core.NewValidationError("newPassword", MsgResetPassword)
	}
	return nil
}
