package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrSigning               = errors.New("signing failed")
	ErrNoClaim               = errors.New("no claim found")
	ErrMalformedSignerOutput = errors.New("malformed signer output")
	ErrNotFound              = errors.New("not found")
	ErrDuplicateRecord       = errors.New("duplicate record")
	ErrValidationFailed      = errors.New("validation failed")
	ErrPolicyDenied          = errors.New("policy denied")
)
