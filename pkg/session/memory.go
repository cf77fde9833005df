package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation. Suitable for
// development and single-process deployments; sessions do not survive
// restarts. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	byToken   map[string]*Session
	idToToken map[string]string
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken:   make(map[string]*Session),
		idToToken: make(map[string]string),
	}
}

// Create persists a new session.
func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byToken[sess.Token] = cloneSession(sess)
	s.idToToken[sess.ID] = sess.Token
	return nil
}

// Get retrieves a session by its token. The returned session is a copy;
// changes are not visible to other requests until Update is called.
func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.byToken[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return cloneSession(sess), nil
}

// Update saves changes to an existing session. Handles token rotation
// by re-indexing the session under its current token.
func (s *MemoryStore) Update(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldToken, ok := s.idToToken[sess.ID]; ok && oldToken != sess.Token {
		delete(s.byToken, oldToken)
	}
	s.byToken[sess.Token] = cloneSession(sess)
	s.idToToken[sess.ID] = sess.Token
	return nil
}

// Delete removes a session by its ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.idToToken[id]; ok {
		delete(s.byToken, token)
		delete(s.idToToken, id)
	}
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (s *MemoryStore) DeleteByUserID(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.byToken {
		if sess.UserID != nil && *sess.UserID == userID {
			delete(s.byToken, token)
			delete(s.idToToken, sess.ID)
		}
	}
	return nil
}

// Touch updates the LastActiveAt timestamp without loading the full session.
func (s *MemoryStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.idToToken[id]
	if !ok {
		return ErrNotFound
	}
	s.byToken[token].LastActiveAt = lastActiveAt
	return nil
}

// DeleteExpired removes all expired sessions. Wire it into a scheduled
// task to keep memory bounded on long-running processes.
func (s *MemoryStore) DeleteExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, sess := range s.byToken {
		if now.After(sess.ExpiresAt) {
			delete(s.byToken, token)
			delete(s.idToToken, sess.ID)
		}
	}
	return nil
}

// Len returns the number of stored sessions, expired included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

func cloneSession(sess *Session) *Session {
	c := *sess
	c.Values = maps.Clone(sess.Values)
	return &c
}
