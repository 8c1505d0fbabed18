package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// Validator adapts go-playground/validator to echo.Validator.  Field
// errors are reported under their JSON names with the same
// ValidationError type the repositories use.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
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
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &repository.ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe.Namespace()), fieldMessage(fe))
	}
	return out
}

// fieldPath drops the leading struct type name: "ReservationInput.tickets[0].row"
// becomes "tickets[0].row".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required."
	case "email":
		return "enter a valid email address."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("ensure this field has at least %s characters.", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("ensure this field has at least %s elements.", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("ensure this value is greater than %s.", fe.Param())
	}
	return fmt.Sprintf("failed on the %q rule.", fe.Tag())
}
