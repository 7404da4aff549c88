package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"quiz-outcome-service/internal/domain"
)

// SessionStore keeps browser sessions in Redis as JSON under quiz:session:{id}.
// Every save refreshes the key's TTL, so idle sessions expire on their own.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, id string) (domain.Session, bool, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, errors.Wrap(err, "load session")
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, false, errors.Wrap(err, "decode session")
	}
	return session, true, nil
}

func (s *SessionStore) Save(ctx context.Context, id string, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	return errors.Wrap(s.client.Set(ctx, s.key(id), raw, s.ttl).Err(), "save session")
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(s.client.Del(ctx, s.key(id)).Err(), "delete session")
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
