package handler

// REQUEST PARSING:
// Every JSON body is decoded into a small request struct and then checked
// with go-playground/validator using `validate:"..."` tags. Numeric fields
// that must be present are pointers, so "missing" (nil) and "zero" differ.
//
// Validation failures come back as apperror.ValidationFailed, so writeError
// answers them with 400 like any other domain validation error.

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/dongne/internal/apperror"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire name (json, then form tag) instead of the
	// Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
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
	})
	return v
}

// decodeJSON reads r's body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return apperror.ValidationFailed("body", "Invalid input")
	}
	fe := ve[0]
	return apperror.ValidationFailed(fe.Field(), validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

// queryFloat parses a float query parameter. A missing parameter is NaN; a
// malformed one is a validation error.
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return math.NaN(), nil
	}
	return parseFloat(name, raw)
}

// requireQueryFloats parses every named query parameter and fails on the
// first one that is missing or malformed.
func requireQueryFloats(r *http.Request, message string, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, err := queryFloat(r, name)
		if err != nil || math.IsNaN(v) {
			return nil, apperror.ValidationFailed(name, message)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a number", name))
	}
	return v, nil
}

// formFloat parses an optional float form field into a pointer, nil when
// the field is absent or empty.
func formFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := parseFloat(name, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
