// internal/app/system/rpc/validate.go
package rpc

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/go-playground/validator/v10"
)

var siretRe = regexp.MustCompile(`^[0-9]{14}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("siret", func(fl validator.FieldLevel) bool {
		return siretRe.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the struct tags of in. Non-struct inputs always pass.
func Validate(in any) error {
	rv := reflect.ValueOf(in)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("invalid input: %v", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return apperr.ValidationFields(fields)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "siret":
		return "must be exactly 14 digits"
	case "base64":
		return "must be base64 encoded"
	case "required_if":
		return "is required when " + fe.Param()
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}
