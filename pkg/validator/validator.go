package validator

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

var (
	global     *validator.Validate
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{6,19}$`)
)

const (
	MinTeamSize = 1
	MaxTeamSize = 6
)

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

// FieldError is the first failed rule of a validated struct.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return e.Msg + ": " + e.Field
}

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("teamsize", validateTeamSize)
	_ = v.RegisterValidation("required_when", validateRequiredWhen)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateTeamSize(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := fl.Field().Int()
		return n >= MinTeamSize && n <= MaxTeamSize
	}
	return false
}

// validateRequiredWhen makes a string field mandatory while the boolean sibling named
// by the tag parameter is true, e.g. `required_when=AccommodationRequired`.
func validateRequiredWhen(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	for parent.Kind() == reflect.Ptr {
		if parent.IsNil() {
			return true
		}
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return true
	}
	flag := parent.FieldByName(fl.Param())
	for flag.IsValid() && flag.Kind() == reflect.Ptr {
		if flag.IsNil() {
			return true
		}
		flag = flag.Elem()
	}
	if !flag.IsValid() || flag.Kind() != reflect.Bool || !flag.Bool() {
		return true
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required", "notblank", "required_when":
		msg = ErrFieldRequired
	case "email", "url", "phone":
		msg = ErrInvalidFormat
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "teamsize":
		msg = "Team size must be between 1 and 6"
	default:
		msg = ErrUnknownValidation
	}
	return &FieldError{Field: fieldPath(ve.Namespace()), Msg: msg}
}

// fieldPath drops the root struct name from a namespace like "RegisterRequest.team_members[0].email".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
