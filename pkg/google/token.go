package google

import (
	"context"
	"errors"
	"time"

	"github.com/daymark/daymark/internal/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// refreshWindow is how close to expiry a stored access token may get before
// it is refreshed instead of used.
const refreshWindow = 5 * time.Minute

// providerCallTimeout bounds every outbound call to Google; the provider is
// a third party and gets no unbounded waits.
const providerCallTimeout = 10 * time.Second

// Refresh responses with these OAuth error codes mean the stored credential
// is gone for good and the user has to reconnect; everything else is treated
// as transient.
var permanentRefreshErrorCodes = map[string]bool{
	"invalid_grant":       true,
	"invalid_client":      true,
	"unauthorized_client": true,
}

// TokenLifecycleManager keeps one user's stored access token usable: it
// hands back the stored token while it is comfortably fresh and refreshes
// it through the provider's token endpoint otherwise.
type TokenLifecycleManager struct {
	connections ConnectionRepo
	oauthConfig *oauth2.Config
	clock       utils.Clock
}

func NewTokenLifecycleManager(connections ConnectionRepo, oauthConfig *oauth2.Config, clock utils.Clock) *TokenLifecycleManager {
	return &TokenLifecycleManager{
		connections: connections,
		oauthConfig: oauthConfig,
		clock:       clock,
	}
}

// EnsureValid returns an access token valid for at least refreshWindow from
// now. On refresh, the new token and expiry are persisted before the token
// is returned. Failures are TokenRefreshError values; NeedsReconnect is set
// only for the permanent provider error codes.
//
// Two concurrent requests near expiry may both refresh; Google's refresh
// endpoint tolerates that, and the later write wins.
func (m *TokenLifecycleManager) EnsureValid(ctx context.Context, conn CalendarConnection) (string, error) {
	now := m.clock.Now()
	if conn.TokenExpiresAt.Sub(now) >= refreshWindow {
		return conn.AccessToken, nil
	}

	if conn.RefreshToken == "" {
		log.Warnf("user %d has no refresh token stored, reconnection required", conn.UserId)
		return "", &TokenRefreshError{NeedsReconnect: true, Err: errors.New("no refresh token stored")}
	}

	log.Debugf("access token for user %d expires at %s, refreshing", conn.UserId, conn.TokenExpiresAt)
	token, err := m.refresh(ctx, conn)
	if err != nil {
		refreshErr := classifyRefreshError(err)
		if refreshErr.NeedsReconnect {
			log.Warnf("token refresh for user %d rejected permanently: %v", conn.UserId, err)
			return "", refreshErr
		}
		// One bounded retry for transient failures before giving up.
		log.Warnf("token refresh for user %d failed, retrying once: %v", conn.UserId, err)
		token, err = m.refresh(ctx, conn)
		if err != nil {
			return "", classifyRefreshError(err)
		}
	}

	if err := m.connections.UpdateTokens(ctx, conn.UserId, token.AccessToken, token.Expiry); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (m *TokenLifecycleManager) refresh(ctx context.Context, conn CalendarConnection) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, providerCallTimeout)
	defer cancel()

	// A token with no access token and a stored refresh token forces the
	// TokenSource straight to the refresh grant.
	stale := &oauth2.Token{RefreshToken: conn.RefreshToken}
	return m.oauthConfig.TokenSource(ctx, stale).Token()
}

func classifyRefreshError(err error) *TokenRefreshError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && permanentRefreshErrorCodes[retrieveErr.ErrorCode] {
		return &TokenRefreshError{NeedsReconnect: true, Err: err}
	}
	return &TokenRefreshError{NeedsReconnect: false, Err: err}
}
