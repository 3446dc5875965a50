package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Support session type validation
	validate.RegisterValidation("session_type", func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		return t == "read_only" || t == "support_mode"
	})

	// Organization role validation
	validate.RegisterValidation("org_role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		validRoles := []string{"owner", "admin", "member"}
		for _, r := range validRoles {
			if role == r {
				return true
			}
		}
		return false
	})

	// Impersonation mode validation
	validate.RegisterValidation("impersonation_mode", func(fl validator.FieldLevel) bool {
		mode := fl.Field().String()
		return mode == "read" || mode == "write"
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "uuid":
			errors[field] = "Invalid UUID format"
		case "session_type":
			errors[field] = "Invalid session type. Must be: read_only or support_mode"
		case "org_role":
			errors[field] = "Invalid role. Must be: owner, admin, or member"
		case "impersonation_mode":
			errors[field] = "Invalid mode. Must be: read or write"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
