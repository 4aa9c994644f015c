// Package auth implements the credential provider for the remote storage
// account.
//
// Credentials come from the environment, the same two ways the rest of the
// Google tooling reads them:
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file, OR
//   - GOOGLE_CREDENTIALS: inline JSON credentials string
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const revokeEndpoint = "https://accounts.google.com/o/oauth2/revoke"

// Provider supplies and manages access tokens for the remote storage account.
type Provider interface {
	// Token returns a currently valid access token.
	Token(ctx context.Context) (string, error)

	// Valid reports whether the credentials can actually reach the storage
	// account, by probing the account endpoint.
	Valid(ctx context.Context) (bool, error)

	// Revoke invalidates the current token with the identity provider.
	Revoke(ctx context.Context) error
}

// ServiceAccount is a Provider backed by a Google service-account JWT config.
type ServiceAccount struct {
	config *jwt.Config
}

// NewServiceAccount builds a provider from the environment.
func NewServiceAccount() (*ServiceAccount, error) {
	const op = "NewServiceAccount"

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		data, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: reading credentials file: %w", op, err)
		}
		creds = data
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: %w: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS", op, ErrMissingCredentials)
	}

	config, err := google.JWTConfigFromJSON(creds, drive.DriveScope, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidCredentials, err)
	}

	return &ServiceAccount{config: config}, nil
}

// Client returns an HTTP client that injects and refreshes the access token.
// Remote API clients (Drive, Sheets) are built on top of it.
func (sa *ServiceAccount) Client(ctx context.Context) *http.Client {
	return sa.config.Client(ctx)
}

// Token implements Provider.
func (sa *ServiceAccount) Token(ctx context.Context) (string, error) {
	const op = "Token"

	token, err := sa.config.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token.AccessToken, nil
}

// Valid implements Provider by fetching the storage account's user info.
func (sa *ServiceAccount) Valid(ctx context.Context) (bool, error) {
	const op = "Valid"

	svc, err := drive.NewService(ctx, option.WithHTTPClient(sa.Client(ctx)))
	if err != nil {
		return false, fmt.Errorf("%s: creating drive service: %w", op, err)
	}

	if _, err := svc.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		return false, nil
	}
	return true, nil
}

// Revoke implements Provider.
func (sa *ServiceAccount) Revoke(ctx context.Context) error {
	const op = "Revoke"

	token, err := sa.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		revokeEndpoint+"?token="+url.QueryEscape(token), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: revoke endpoint returned status %d", op, resp.StatusCode)
	}
	return nil
}
