package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store implementation backed by Redis. Sessions are
// stored as JSON with a TTL matching their expiry, so Redis evicts
// expired sessions on its own.
//
// Values round-trip through JSON; numeric values come back as float64.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKeyPrefix sets the key namespace. Default: "session".
func WithRedisKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "session",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) tokenKey(token string) string { return s.prefix + ":token:" + token }
func (s *RedisStore) idKey(id string) string       { return s.prefix + ":id:" + id }
func (s *RedisStore) userKey(userID string) string { return s.prefix + ":user:" + userID }

// sessionRecord is the wire form of a Session.
type sessionRecord struct {
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	UserID       *string        `json:"user_id,omitempty"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	Values       map[string]any `json:"values,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

func recordFromSession(sess *Session) sessionRecord {
	return sessionRecord{
		ID:           sess.ID,
		Token:        sess.Token,
		UserID:       sess.UserID,
		IP:           sess.IP,
		UserAgent:    sess.UserAgent,
		Values:       sess.Values,
		CreatedAt:    sess.CreatedAt,
		LastActiveAt: sess.LastActiveAt,
		ExpiresAt:    sess.ExpiresAt,
	}
}

func (r sessionRecord) toSession() *Session {
	sess := &Session{
		ID:           r.ID,
		Token:        r.Token,
		UserID:       r.UserID,
		IP:           r.IP,
		UserAgent:    r.UserAgent,
		Values:       r.Values,
		CreatedAt:    r.CreatedAt,
		LastActiveAt: r.LastActiveAt,
		ExpiresAt:    r.ExpiresAt,
	}
	if sess.Values == nil {
		sess.Values = make(map[string]any)
	}
	return sess
}

// Create persists a new session.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess, "")
}

// Get retrieves a session by its token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("session: decode record: %w", err)
	}

	sess := rec.toSession()
	if sess.IsExpired() {
		// TTL eviction lags the wall clock; treat as gone.
		_ = s.deleteSession(ctx, sess)
		return nil, ErrExpired
	}
	return sess, nil
}

// Update saves changes to an existing session. Handles token rotation
// by dropping the key under the previous token.
func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	oldToken, err := s.client.Get(ctx, s.idKey(sess.ID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: redis get: %w", err)
	}
	if oldToken == sess.Token {
		oldToken = ""
	}
	return s.write(ctx, sess, oldToken)
}

// write stores the session under both its token and ID keys, removing
// staleToken first when the token rotated.
func (s *RedisStore) write(ctx context.Context, sess *Session, staleToken string) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(recordFromSession(sess))
	if err != nil {
		return fmt.Errorf("session: encode record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if staleToken != "" {
			pipe.Del(ctx, s.tokenKey(staleToken))
		}
		pipe.Set(ctx, s.tokenKey(sess.Token), data, ttl)
		pipe.Set(ctx, s.idKey(sess.ID), sess.Token, ttl)
		if sess.UserID != nil && *sess.UserID != "" {
			key := s.userKey(*sess.UserID)
			pipe.SAdd(ctx, key, sess.ID)
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis write: %w", err)
	}
	return nil
}

// Delete removes a session by its ID.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("session: redis get: %w", err)
	}

	sess, err := s.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired) {
			_ = s.client.Del(ctx, s.idKey(id)).Err()
			return nil
		}
		return err
	}
	return s.deleteSession(ctx, sess)
}

func (s *RedisStore) deleteSession(ctx context.Context, sess *Session) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.tokenKey(sess.Token))
		pipe.Del(ctx, s.idKey(sess.ID))
		if sess.UserID != nil && *sess.UserID != "" {
			pipe.SRem(ctx, s.userKey(*sess.UserID), sess.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (s *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("session: redis smembers: %w", err)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, s.userKey(userID)).Err()
}

// Touch updates the LastActiveAt timestamp without changing the TTL.
func (s *RedisStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("session: redis get: %w", err)
	}

	data, err := s.client.Get(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("session: redis get: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("session: decode record: %w", err)
	}
	rec.LastActiveAt = lastActiveAt

	out, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: encode record: %w", err)
	}
	return s.client.Set(ctx, s.tokenKey(token), out, redis.KeepTTL).Err()
}
