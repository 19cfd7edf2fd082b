package google

import (
	"errors"
	"fmt"
)

// ErrNoConnection is returned when the user has no stored Google Calendar
// connection (never connected, or disconnected).
var ErrNoConnection = errors.New("no google calendar connection for user")

// ValidationError marks a request rejected before any provider call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TokenRefreshError is returned when the stored refresh token could not be
// exchanged for a fresh access token. NeedsReconnect distinguishes a
// permanently revoked credential from a transient provider failure.
type TokenRefreshError struct {
	NeedsReconnect bool
	Err            error
}

func (e *TokenRefreshError) Error() string {
	if e.NeedsReconnect {
		return fmt.Sprintf("token refresh rejected, reconnection required: %v", e.Err)
	}
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *TokenRefreshError) Unwrap() error {
	return e.Err
}

// ProviderError carries a provider response status and message through to the
// caller unchanged.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("google calendar returned %d: %s", e.Status, e.Message)
}
