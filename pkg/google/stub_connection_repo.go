package google

import (
	"context"
	"errors"
	"time"
)

type StubConnectionRepo struct {
	data map[int]CalendarConnection
	// TokenUpdates counts UpdateTokens calls, for refresh tests.
	TokenUpdates int
}

func NewStubConnectionRepo() *StubConnectionRepo {
	return &StubConnectionRepo{data: map[int]CalendarConnection{}}
}

func (s *StubConnectionRepo) Put(conn CalendarConnection) {
	s.data[conn.UserId] = conn
}

func (s *StubConnectionRepo) GetByUserId(ctx context.Context, userId int) (CalendarConnection, error) {
	conn, ok := s.data[userId]
	if !ok || conn.AccessToken == "" {
		return CalendarConnection{}, ErrNoConnection
	}
	return conn, nil
}

func (s *StubConnectionRepo) CreateWithNonce(ctx context.Context, userId int, nonce string) error {
	s.data[userId] = CalendarConnection{UserId: userId, Provider: providerGoogle}
	return nil
}

func (s *StubConnectionRepo) StoreTokensByNonce(ctx context.Context, nonce string, accessToken string, refreshToken string, expiresAt time.Time) error {
	return errors.New("not supported by stub")
}

func (s *StubConnectionRepo) UpdateTokens(ctx context.Context, userId int, accessToken string, expiresAt time.Time) error {
	conn, ok := s.data[userId]
	if !ok {
		return ErrNoConnection
	}
	conn.AccessToken = accessToken
	conn.TokenExpiresAt = expiresAt
	s.data[userId] = conn
	s.TokenUpdates++
	return nil
}

func (s *StubConnectionRepo) Delete(ctx context.Context, userId int) error {
	delete(s.data, userId)
	return nil
}
