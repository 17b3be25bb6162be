package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means the OAuth client id or secret is not configured.
	ErrMissingCredentials = errors.New("missing OAuth client credentials")
	// ErrAuthRequired means no usable token is stored; run the auth flow.
	ErrAuthRequired = errors.New("authorization required")
	ErrNotFound     = errors.New("message not found")
	// ErrBackendUnavailable covers transport and remote service failures.
	ErrBackendUnavailable = errors.New("mail backend unavailable")
	ErrInvalidRequest     = errors.New("invalid request")
)

// ErrMissingFields is the validation failure for a draft without To or Subject.
var ErrMissingFields = fmt.Errorf("%w: To and Subject are required", ErrInvalidRequest)
