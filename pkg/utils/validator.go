package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	emailPattern   = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

	validBloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	validRoles      = []string{"donor", "patient", "hospital"}
	validUrgencies  = []string{"critical", "urgent", "normal"}
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	mustRegister("phone", matchPattern(phonePattern))
	mustRegister("pincode", matchPattern(pincodePattern))
	mustRegister("blood_type", oneOf(validBloodTypes))
	mustRegister("user_role", oneOf(validRoles))
	mustRegister("urgency", oneOf(validUrgencies))
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func matchPattern(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(strings.ToLower(email)))
}

// ValidationMessage renders validator errors as a single readable line.
func ValidationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, ", ")
}
