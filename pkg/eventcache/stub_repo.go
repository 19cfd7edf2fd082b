package eventcache

import (
	"context"
	"fmt"
)

type StubRepository struct {
	data map[string]CachedEvent
	// FailPut makes every Put return an error, for failure-path tests.
	FailPut bool
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]CachedEvent{}}
}

func (s *StubRepository) Get(ctx context.Context, userId int, eventId string) (CachedEvent, error) {
	event, ok := s.data[cacheKey(userId, eventId)]
	if !ok {
		return CachedEvent{}, ErrNotCached
	}
	return event, nil
}

func (s *StubRepository) Put(ctx context.Context, event CachedEvent) error {
	if s.FailPut {
		return fmt.Errorf("stub put failure")
	}
	s.data[cacheKey(event.UserId, event.EventId)] = event
	return nil
}

func (s *StubRepository) Delete(ctx context.Context, userId int, eventId string) error {
	delete(s.data, cacheKey(userId, eventId))
	return nil
}
