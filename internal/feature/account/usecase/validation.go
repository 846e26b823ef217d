package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// minPasswordLength and maxPasswordLength bound the password length in characters.
	// Keep in sync with the min/max tags below.
	minPasswordLength = 6
	maxPasswordLength = 30
)

// RegisterInput is the payload of Register.
type RegisterInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=30"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginInput is the payload of Login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordInput is the payload of ResetPassword.
type ResetPasswordInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=30"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// UpdateUserInput is the payload of UpdateUser.
// Empty optional fields are left untouched.
// ConfirmPassword is checked by updateUserRules only when Password is supplied.
type UpdateUserInput struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"omitempty,min=6,max=30"`
	ConfirmPassword string `json:"confirmPassword"`
}

var fieldLabels = map[string]string{
	"name":            "Name",
	"email":           "Email",
	"password":        "Password",
	"confirmPassword": "Confirm password",
}

// loginMessages keeps the login route's own wording for missing fields.
// Keys are "<field>.<tag>".
var loginMessages = map[string]string{
	"email.required":    "Email field is required",
	"password.required": "Password field is required",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so the error map matches the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(updateUserRules, UpdateUserInput{})
	return v
}

// updateUserRules applies the confirmation rule only when a new password is supplied.
func updateUserRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(UpdateUserInput)
	if in.Password == "" {
		return
	}
	switch {
	case in.ConfirmPassword == "":
		sl.ReportError(in.ConfirmPassword, "confirmPassword", "ConfirmPassword", "required", "")
	case in.ConfirmPassword != in.Password:
		sl.ReportError(in.ConfirmPassword, "confirmPassword", "ConfirmPassword", "eqfield", "Password")
	}
}

// validateInput runs every rule on in and returns a *ValidationError holding all violations.
func validateInput(in any) error {
	return validateWith(in, nil)
}

// validateWith is validateInput with per-operation message overrides.
func validateWith(in any, messages map[string]string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, ok := fields[fe.Field()]; ok {
			continue
		}
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			fields[fe.Field()] = msg
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min", "max":
		return fmt.Sprintf("%s must be between %d and %d characters", label, minPasswordLength, maxPasswordLength)
	case "eqfield":
		return "Passwords mismatch"
	default:
		return label + " is invalid"
	}
}
