// Package validation registers the custom binding rules used by request structs
// and turns binding failures into per-field messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/carauction/carauction-backend/pkg/util"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	TagStrongPassword = "strongpassword"
	TagProvidedCode   = "providedcode"
)

var registerOnce sync.Once

// Register installs the custom rules on gin's validator. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("validation: gin binding engine is not go-playground/validator")
		}
		if err := RegisterOn(v); err != nil {
			panic(err)
		}
	})
}

// RegisterOn installs the custom rules and the json/form field naming on v.
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation(TagStrongPassword, func(fl validator.FieldLevel) bool {
		return util.IsStrongPassword(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagStrongPassword, err)
	}
	if err := v.RegisterValidation(TagProvidedCode, func(fl validator.FieldLevel) bool {
		return isDigits(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagProvidedCode, err)
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FieldErrors converts a binding error into field -> message pairs.
// Errors that are not tied to a field are reported under "body".
func FieldErrors(err error) map[string]string {
	fields := map[string]string{}
	if err == nil {
		return fields
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			name := fe.Field()
			if _, exists := fields[name]; !exists {
				fields[name] = message(fe)
			}
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var codeErr *ProvidedCodeError
	switch {
	case errors.As(err, &codeErr):
		fields["providedCode"] = "Provided code must be a number"
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			fields[typeErr.Field] = fmt.Sprintf("Must be of type %s", typeErr.Type.String())
		} else {
			fields["body"] = "Request body has the wrong shape"
		}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		fields["body"] = "Request body is not valid JSON"
	case errors.Is(err, io.EOF):
		fields["body"] = "Request body is required"
	default:
		fields["body"] = "Invalid request"
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label(fe.Field()))
	case "email":
		return "Must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", label(fe.Field()), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label(fe.Field()), fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must not contain more than %s items", label(fe.Field()), fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s characters", label(fe.Field()), fe.Param())
	case TagStrongPassword:
		return fmt.Sprintf("%s must be at least 8 characters and contain a lowercase letter, an uppercase letter and a digit", label(fe.Field()))
	case TagProvidedCode:
		return "Provided code must be a number"
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", label(fe.Field()))
	}
	return fmt.Sprintf("%s is invalid", label(fe.Field()))
}

// label turns a camelCase field name into a sentence-case label.
func label(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
