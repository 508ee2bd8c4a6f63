package validate_test

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"

	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/validate"
)

func TestUsername(t *testing.T) {
	assert.Error(t, validate.Value("username", "ab", validate.Username...))
	assert.NoError(t, validate.Value("username", "valid_user1", validate.Username...))
	assert.Error(t, validate.Value("username", "has space", validate.Username...))
	assert.Error(t, validate.Value("username", strings.Repeat("a", 21), validate.Username...))
	assert.Error(t, validate.Value("username", "", validate.Username...))

	err := validate.Value("username", "ab", validate.Username...)
	assert.True(t, svcErr.Is(err, svcErr.KindValidation))
}

func TestPassword(t *testing.T) {
	for _, ok := range []string{"Abcdef1!", "abc123", "A1@$!%*#?&"} {
		assert.NoError(t, validate.Value("password", ok, validate.Password...), ok)
	}
	for _, bad := range []string{"abc12", "abcdefgh", "12345678", "abc 123", "abc123^"} {
		assert.Error(t, validate.Value("password", bad, validate.Password...), bad)
	}
}

func TestTitleAndContentLengths(t *testing.T) {
	assert.Error(t, validate.Value("title", strings.Repeat("t", 29), validate.Title...))
	assert.NoError(t, validate.Value("title", strings.Repeat("t", 30), validate.Title...))
	assert.Error(t, validate.Value("title", strings.Repeat("t", 101), validate.Title...))

	assert.Error(t, validate.Value("content", strings.Repeat("c", 199), validate.Content...))
	assert.NoError(t, validate.Value("content", strings.Repeat("é", 200), validate.Content...))
	assert.Error(t, validate.Value("content", strings.Repeat("c", 5001), validate.Content...))
}

type pair struct {
	Email  string `json:"email"`
	Repeat string `json:"repeat_email"`
}

func (p pair) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validate.Email...),
		validation.Field(&p.Repeat, validation.Required, validation.By(validate.Equals(p.Email))),
	)
}

func TestCheck_FieldLevelReasons(t *testing.T) {
	err := validate.Check(pair{Email: "not-an-email", Repeat: "other"}.Validate())

	var se *svcErr.Error
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, svcErr.KindValidation, se.Kind)
	assert.Contains(t, se.Fields, "email")
	assert.Equal(t, "values must match", se.Fields["repeat_email"])

	assert.NoError(t, validate.Check(pair{Email: "a@b.io", Repeat: "a@b.io"}.Validate()))
}
