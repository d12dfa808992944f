package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LinkedInPattern matches a public LinkedIn profile URL
var LinkedInPattern = regexp.MustCompile(`^https://(www\.)?linkedin\.com/in/[a-zA-Z0-9-]+/?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("linkedin", func(fl validator.FieldLevel) bool {
		return LinkedInPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// FieldError describes one failed rule
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is returned by ValidateStruct when one or more rules fail
type Errors struct {
	Fields []FieldError
}

// Error returns the message of the first failed rule
func (e *Errors) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// Details renders the failures for an error response body
func (e *Errors) Details() map[string]interface{} {
	return map[string]interface{}{"fields": e.Fields}
}

// ValidateStruct validates a struct using go-playground/validator.
// A failed rule's message comes from the field's `msg` tag when present.
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := &Errors{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: messageFor(val.Type(), fe),
		})
	}
	return out
}

func messageFor(t reflect.Type, fe validator.FieldError) string {
	if sf, ok := t.FieldByName(fe.StructField()); ok {
		if msg := sf.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("field '%s' failed validation: %s", fe.Field(), fe.Tag())
}
