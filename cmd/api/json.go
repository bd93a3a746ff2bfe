package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals validate as numbers so gte/lte tags apply to prices
	Validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

const maxBodyBytes = 1_048_578 //1mb

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

// readJSONObject decodes an arbitrary object, keeping unknown fields. An
// empty body decodes to an empty map.
func readJSONObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}

	return writeJSON(w, status, &envelope{
		Success: false,
		Message: message,
		Status:  status,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}

// validationMessage flattens validator errors into "field: reason; ...".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: is required", field))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than or equal to %s", field, fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s: must be less than or equal to %s", field, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: must be at most %s", field, fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s: must be a valid email address", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s: must be a valid URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
