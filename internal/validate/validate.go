// Package validate holds the input rules shared by every request type.
package validate

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	svcErr "github.com/oggyb/nameless/internal/errors"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{5,20}$`)
	passwordChars   = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{6,}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
)

// Rule sets, applied with validation.Field.
var (
	Username = []validation.Rule{
		validation.Required,
		validation.Match(usernamePattern).Error("must be 5-20 letters, digits, '_' or '-'"),
	}
	Password = []validation.Rule{
		validation.Required,
		validation.By(password),
	}
	Email = []validation.Rule{
		validation.Required,
		validation.RuneLength(3, 128),
		is.Email,
	}
	Title = []validation.Rule{
		validation.Required,
		validation.RuneLength(30, 100),
	}
	Content = []validation.Rule{
		validation.Required,
		validation.RuneLength(200, 5000),
	}
	AboutMe = []validation.Rule{
		validation.RuneLength(0, 1000),
	}
)

func password(value interface{}) error {
	s, _ := value.(string)
	if !passwordChars.MatchString(s) || !hasLetter.MatchString(s) || !hasDigit.MatchString(s) {
		return errors.New("must be at least 6 characters with a letter and a digit (symbols: @$!%*#?&)")
	}
	return nil
}

// Equals fails unless the value equals want.
func Equals(want string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New("values must match")
		}
		return nil
	}
}

// Rules flattens rule sets so extra rules can follow a shared set.
func Rules(sets ...[]validation.Rule) []validation.Rule {
	var out []validation.Rule
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Check converts an ozzo-validation result into a ValidationFailed error
// carrying one reason per field.
func Check(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return svcErr.Validation("request", err.Error())
	}

	fields := make(map[string]string, len(fieldErrs))
	for name, ferr := range fieldErrs {
		if ferr != nil {
			fields[name] = ferr.Error()
		}
	}
	return svcErr.ValidationFields(fields)
}

// Value validates a single value and reports it under field.
func Value(field string, value interface{}, rules ...validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return svcErr.Validation(field, err.Error())
	}
	return nil
}

// Normalize trims surrounding whitespace from identifiers.
func Normalize(s string) string { return strings.TrimSpace(s) }
