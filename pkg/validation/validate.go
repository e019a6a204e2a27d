// Package validation checks request fields before they reach the core:
// required strings, UUID shape, enum membership, numeric ranges. Failures
// are reported together so a caller sees every bad field at once.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validator accumulates field errors across checks. The zero value is ready
// to use.
type Validator struct {
	errs []string
}

// Require flags an empty value.
func (v *Validator) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.errs = append(v.errs, fmt.Sprintf("%s is required", field))
	}
}

// UUID flags a value that is not a well-formed UUID. Empty values are
// flagged too; combine with Require only when a distinct message is wanted.
func (v *Validator) UUID(field, value string) {
	if _, err := uuid.Parse(value); err != nil {
		v.errs = append(v.errs, fmt.Sprintf("%s must be a valid UUID", field))
	}
}

// OneOf flags a value outside the allowed set. An empty value passes; pair
// with Require for mandatory enums.
func (v *Validator) OneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.errs = append(v.errs, fmt.Sprintf("%s must be one of [%s]", field, strings.Join(allowed, ", ")))
}

// NonNegative flags a negative number.
func (v *Validator) NonNegative(field string, n int64) {
	if n < 0 {
		v.errs = append(v.errs, fmt.Sprintf("%s must not be negative", field))
	}
}

// RequireBytes flags an empty byte payload.
func (v *Validator) RequireBytes(field string, b []byte) {
	if len(b) == 0 {
		v.errs = append(v.errs, fmt.Sprintf("%s is required", field))
	}
}

// Err returns the accumulated errors joined with "; ", or nil when every
// check passed.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(v.errs, "; "))
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
