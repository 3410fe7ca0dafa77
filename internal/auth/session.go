package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound is returned when a session is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore registers live token ids against the user they belong to.
type SessionStore interface {
	Create(ctx context.Context, id string, userID int64, ttl time.Duration) error
	GetUserID(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis with a TTL per key.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a new Redis session store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Create stores the session until ttl elapses.
func (s *RedisStore) Create(ctx context.Context, id string, userID int64, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKeyPrefix+id, strconv.FormatInt(userID, 10), ttl).Err()
}

// GetUserID returns the user of a live session.
func (s *RedisStore) GetUserID(ctx context.Context, id string) (int64, error) {
	v, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// Delete removes a session by ID.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore is the process-local SessionStore used when Redis is not configured.
// Expired entries are dropped on lookup and swept on every Create.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, id string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, k)
		}
	}
	s.sessions[id] = memorySession{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) GetUserID(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, id)
		return 0, ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
