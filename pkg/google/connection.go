package google

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const providerGoogle = "google"

// CalendarConnection is the stored OAuth credential for one (user, provider)
// pair. AccessToken is never used past TokenExpiresAt; both token fields are
// rewritten together by the refresh that produced them.
type CalendarConnection struct {
	UserId         int
	Provider       string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	UpdatedAt      time.Time
}

type ConnectionRepo interface {
	// GetByUserId returns the user's connection, or ErrNoConnection when the
	// user never completed the consent flow (or has disconnected).
	GetByUserId(ctx context.Context, userId int) (CalendarConnection, error)
	// CreateWithNonce replaces any previous connection row with a fresh one
	// holding only the OAuth state nonce; tokens arrive via the callback.
	CreateWithNonce(ctx context.Context, userId int, nonce string) error
	// StoreTokensByNonce fills in the token fields on the row created for the
	// given nonce after a successful authorization-code exchange.
	StoreTokensByNonce(ctx context.Context, nonce string, accessToken string, refreshToken string, expiresAt time.Time) error
	// UpdateTokens persists a refreshed access token and its expiry in a
	// single statement.
	UpdateTokens(ctx context.Context, userId int, accessToken string, expiresAt time.Time) error
	Delete(ctx context.Context, userId int) error
}

type ConnectionRepoImpl struct {
	db *pgxpool.Pool
}

func NewConnectionRepo(db *pgxpool.Pool) *ConnectionRepoImpl {
	return &ConnectionRepoImpl{db: db}
}

func (r *ConnectionRepoImpl) GetByUserId(ctx context.Context, userId int) (CalendarConnection, error) {
	query := `SELECT user_id, provider, access_token, refresh_token, token_expires_at, updated_at
				FROM calendar_connection WHERE user_id = $1 AND provider = $2 AND access_token IS NOT NULL`
	var conn CalendarConnection
	err := r.db.QueryRow(ctx, query, userId, providerGoogle).Scan(
		&conn.UserId,
		&conn.Provider,
		&conn.AccessToken,
		&conn.RefreshToken,
		&conn.TokenExpiresAt,
		&conn.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CalendarConnection{}, ErrNoConnection
	} else if err != nil {
		log.Errorf("failed to get calendar connection for user %d: %v", userId, err)
		return CalendarConnection{}, err
	}
	return conn, nil
}

func (r *ConnectionRepoImpl) CreateWithNonce(ctx context.Context, userId int, nonce string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM calendar_connection WHERE user_id = $1 AND provider = $2`, userId, providerGoogle)
	if err != nil {
		log.Errorf("failed to delete old calendar connection for user %d: %v", userId, err)
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO calendar_connection (user_id, provider, nonce, updated_at) VALUES ($1, $2, $3, now())`,
		userId, providerGoogle, nonce)
	if err != nil {
		log.Errorf("failed to store calendar connection nonce for user %d: %v", userId, err)
		return err
	}
	return tx.Commit(ctx)
}

func (r *ConnectionRepoImpl) StoreTokensByNonce(ctx context.Context, nonce string, accessToken string, refreshToken string, expiresAt time.Time) error {
	query := `UPDATE calendar_connection SET access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = now()
				WHERE nonce = $4`
	result, err := r.db.Exec(ctx, query, accessToken, refreshToken, expiresAt, nonce)
	if err != nil {
		log.Errorf("failed to store tokens for nonce: %v", err)
		return err
	}
	if result.RowsAffected() == 0 {
		return errors.New("no calendar connection for nonce")
	}
	return nil
}

func (r *ConnectionRepoImpl) UpdateTokens(ctx context.Context, userId int, accessToken string, expiresAt time.Time) error {
	query := `UPDATE calendar_connection SET access_token = $1, token_expires_at = $2, updated_at = now()
				WHERE user_id = $3 AND provider = $4`
	result, err := r.db.Exec(ctx, query, accessToken, expiresAt, userId, providerGoogle)
	if err != nil {
		log.Errorf("failed to update tokens for user %d: %v", userId, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNoConnection
	}
	return nil
}

func (r *ConnectionRepoImpl) Delete(ctx context.Context, userId int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM calendar_connection WHERE user_id = $1 AND provider = $2`, userId, providerGoogle)
	if err != nil {
		log.Errorf("failed to delete calendar connection for user %d: %v", userId, err)
	}
	return err
}
