package auth

import "errors"

var (
	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS is configured.
	ErrMissingCredentials = errors.New("missing Google credentials")

	// ErrInvalidCredentials is returned when the configured credentials cannot
	// be parsed into a usable service-account configuration.
	ErrInvalidCredentials = errors.New("invalid Google credentials")
)
