package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom validations are
// registered in init() before the first call to Struct.
var v = validator.New()

func init() {
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, ok := ParsePrice(fl.Field().String())
		return ok
	})
}

// ParsePrice parses a decimal price. NaN, infinities and negative values are rejected.
func ParsePrice(raw string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, false
	}
	return p, true
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, message(fe))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// First validates s and returns only the first failing field, in declaration order.
func First(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	return errors.New(message(ve[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("Invalid %s, expected one of: %s", strings.ToLower(field), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "price":
		return fmt.Sprintf("%s must be a non-negative number", field)
	default:
		return fmt.Sprintf("field '%s' failed '%s'", field, fe.Tag())
	}
}
