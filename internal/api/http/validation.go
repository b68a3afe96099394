package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their query parameter name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

var validationMessages = map[string]string{
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gtefield": "%s must be greater than or equal to %s",
}

// validateQuery validates a query struct and rewrites failures in terms of
// the request's parameter names.
func validateQuery(q interface{}) error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, translateFieldError(q, fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func translateFieldError(q interface{}, fe validator.FieldError) string {
	param := fe.Param()
	if fe.Tag() == "gtefield" {
		param = queryName(q, param)
	}
	if tmpl, ok := validationMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), param)
	}
	return fmt.Sprintf("invalid %s", fe.Field())
}

// queryName maps a struct field of q to its query parameter name.
func queryName(q interface{}, field string) string {
	t := reflect.TypeOf(q)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(field); ok {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
	}
	return field
}
