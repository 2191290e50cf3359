package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const minPasswordLength = 8

// Register creates a new account and returns its first session credentials.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	var creds Credentials
	body := registerRequest{Name: name, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Login exchanges account credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	var creds Credentials
	body := loginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return fmt.Errorf("%w: invalid email address %q", ErrValidation, email)
	}
	return nil
}
