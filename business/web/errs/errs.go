// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// =============================================================================

// FromChain maps the errors produced by the chain into trusted errors with
// the matching HTTP status. Errors the chain doesn't define are returned
// as is.
func FromChain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, chain.ErrChainLinkage), errors.Is(err, database.ErrOutOfOrder):
		return NewTrusted(err, http.StatusConflict)
	case errors.Is(err, chain.ErrProofInvalid), errors.Is(err, chain.ErrHeaderHashMismatch):
		return NewTrusted(err, http.StatusBadRequest)
	case errors.Is(err, chain.ErrMiningCancelled):
		return NewTrusted(err, http.StatusRequestTimeout)
	case errors.Is(err, database.ErrBlockNotFound):
		return NewTrusted(err, http.StatusNotFound)
	case errors.Is(err, chain.ErrEmptyChain):
		return NewTrusted(err, http.StatusServiceUnavailable)
	}

	return err
}

// FromDecode passes validation errors through so they are reported with
// their fields and marks any other decoding failure as a bad request.
func FromDecode(err error) error {
	if err == nil || validate.IsFieldErrors(err) {
		return err
	}

	return NewTrusted(err, http.StatusBadRequest)
}
