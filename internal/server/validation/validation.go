// Package validation checks the shape of inbound requests, declared with
// `validate` struct tags, and reports problems as a field-name to message
// map keyed by JSON names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// messages maps "<field>.<tag>" to the text reported for that failure.
var messages = map[string]string{
	"username.notblank":        "Username is required",
	"username.min":             "Username must be between 3 and 50 characters",
	"username.max":             "Username must be between 3 and 50 characters",
	"email.notblank":           "Email is required",
	"email.email":              "Email should be valid",
	"email.max":                "Email must not exceed 100 characters",
	"password.notblank":        "Password is required",
	"password.min":             "Password must be at least 8 characters long",
	"password.max":             "Password must not exceed 72 characters",
	"password.maxbytes":        "Password must not exceed 72 bytes",
	"fullName.max":             "Full name must not exceed 100 characters",
	"emailOrUsername.notblank": "Email or username is required",
	"emailOrUsername.min":      "Email or username must be between 3 and 100 characters",
	"emailOrUsername.max":      "Email or username must be between 3 and 100 characters",
}

// Error lists every field that failed validation. It matches
// common.ErrValidation.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "Invalid input data: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == common.ErrValidation
}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		_ = validate.RegisterValidation("maxbytes", maxBytes)
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// maxBytes bounds the encoded length of a string, unlike max which counts
// runes. bcrypt only accepts passwords up to 72 bytes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("maxbytes: bad parameter %q", fl.Param()))
	}
	return len(fl.Field().String()) <= limit
}

// Struct validates s and returns *Error when any constraint fails. Only the
// first failing rule per field is reported.
func Struct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return &Error{Fields: fields}
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	switch fe.Tag() {
	case "notblank", "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "maxbytes":
		return "must be at most " + fe.Param() + " bytes"
	default:
		return "is invalid"
	}
}
