// Package httpapi holds the JSON response envelope and request decoding
// shared by every HTTP handler.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// A single validator instance is used, because it caches struct parsing.
func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

var (
	// ErrEmptyBody is returned by Read when the request carries no JSON object.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrValidation wraps field validation failures returned by Read.
	ErrValidation = errors.New("validation failed")
)

// Write outputs value as a JSON response body.
func Write(w http.ResponseWriter, status int, value any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(value); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Response already started, nothing we can do on a write error
	_, _ = w.Write(buf.Bytes())
}

// Read decodes the JSON request body into value and validates it using the
// `validate` struct tags. A body of `null` is treated as empty.
func Read(r *http.Request, value any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ErrEmptyBody
	}

	if err := json.Unmarshal(raw, value); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}

	err = validate.Struct(value)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, ve := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", ve.Namespace(), ve.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
	}
	if err != nil {
		return fmt.Errorf("validation: %w", err)
	}
	return nil
}
