// ABOUTME: Merchant credentials sent with every MSU gateway request.
// ABOUTME: Printing or logging a Credentials value never reveals the secrets.

package msu

import (
	"errors"
	"log/slog"
)

const redacted = "[REDACTED]"

// Credentials identifies the merchant to the gateway.
type Credentials struct {
	Merchant string
	User     string
	Password string
}

// Validate reports the first missing credential.
func (c Credentials) Validate() error {
	switch {
	case c.Merchant == "":
		return errors.New("merchant is required")
	case c.User == "":
		return errors.New("merchant user is required")
	case c.Password == "":
		return errors.New("merchant password is required")
	}
	return nil
}

// String implements fmt.Stringer without exposing any value.
func (c Credentials) String() string {
	return "msu.Credentials{" + redacted + "}"
}

// GoString keeps %#v from printing the fields.
func (c Credentials) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer. Only presence is logged.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("merchant_set", c.Merchant != ""),
		slog.Bool("user_set", c.User != ""),
		slog.Bool("password_set", c.Password != ""),
	)
}
