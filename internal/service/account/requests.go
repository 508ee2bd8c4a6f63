package account

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/oggyb/nameless/internal/validate"
)

// RegisterRequest is the payload of a registration initiation.
type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeat_password"`
}

// Validate checks field formats and that both passwords match.
func (r RegisterRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Username, validate.Username...),
		validation.Field(&r.Email, validate.Email...),
		validation.Field(&r.Password, validate.Password...),
		validation.Field(&r.RepeatPassword, validation.Required, validation.By(validate.Equals(r.Password))),
	))
}

// LoginRequest accepts either the username or the email as Login.
type LoginRequest struct {
	Login    string `json:"username_or_email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Password, validation.Required),
	))
}

type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username"`
	Password    string `json:"password"`
}

func (r ChangeUsernameRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.NewUsername, validate.Username...),
		validation.Field(&r.Password, validation.Required),
	))
}

type ChangeEmailRequest struct {
	Password       string `json:"password"`
	NewEmail       string `json:"new_email"`
	RepeatNewEmail string `json:"repeat_new_email"`
}

func (r ChangeEmailRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.NewEmail, validate.Email...),
		validation.Field(&r.RepeatNewEmail, validation.Required, validation.By(validate.Equals(r.NewEmail))),
	))
}

// ChangePasswordRequest carries the new password twice.
type ChangePasswordRequest struct {
	Password       string `json:"password"`
	RepeatPassword string `json:"repeat_password"`
}

func (r ChangePasswordRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Password, validate.Password...),
		validation.Field(&r.RepeatPassword, validation.Required, validation.By(validate.Equals(r.Password))),
	))
}

// ConfirmRequest is the code typed in by the user.
type ConfirmRequest struct {
	Code int `json:"email_code"`
}

func (r ConfirmRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
	))
}

type AboutMeRequest struct {
	Description *string `json:"description"`
}

func (r AboutMeRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Description, validate.AboutMe...),
	))
}
