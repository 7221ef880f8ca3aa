package command

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected field. Loc is the JSON path of the field.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned by Validate when a payload is rejected.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("gateway_url", isGatewayURL)
		validate = v
	})
	return validate
}

func isGatewayURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate checks a command or response against its field rules.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Loc:  append([]string{"body"}, jsonPath(fe.Namespace())...),
			Msg:  message(fe),
			Type: fe.Tag(),
		})
	}
	return out
}

// jsonPath turns "SetSensorState.SensorCommand.devices[0].address" into
// ["devices", "0", "address"]. Go type and embedded field names are dropped;
// JSON names are always lower case.
func jsonPath(namespace string) []string {
	var path []string
	for _, seg := range strings.Split(namespace, ".") {
		name, index, hasIndex := strings.Cut(seg, "[")
		if name == "" || unicode.IsUpper(rune(name[0])) {
			continue
		}
		path = append(path, name)
		if hasIndex {
			path = append(path, strings.TrimSuffix(index, "]"))
		}
	}
	return path
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gateway_url":
		return "must be an absolute http or https URL"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
