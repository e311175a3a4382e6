package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dashmed/dashmed/internal/token"
	redisdb "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a session id resolves to nothing, either
// because it never existed or because its TTL elapsed.
var ErrNotFound = errors.New("session not found")

// Store persists session payloads keyed by an opaque id. Every write
// refreshes the session TTL.
type Store interface {
	// New creates a session with a fresh id and returns the id.
	New(ctx context.Context, data map[string]string) (string, error)
	// Get returns the payload of a session, or ErrNotFound.
	Get(ctx context.Context, id string) (map[string]string, error)
	// Set replaces the payload of an existing session.
	Set(ctx context.Context, id string, data map[string]string) error
	// Destroy removes a session. Destroying a missing session is not an error.
	Destroy(ctx context.Context, id string) error
}

const keyPrefix = "dashmed:session:"

// RedisStore keeps sessions in Redis hashes so they survive restarts and
// are shared across instances.
type RedisStore struct {
	client *redisdb.Client
	ttl    time.Duration
}

func NewRedisStore(client *redisdb.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) New(ctx context.Context, data map[string]string) (string, error) {
	id, err := token.New()
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (map[string]string, error) {
	data, err := s.client.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, data map[string]string) error {
	key := keyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(data) > 0 {
		fields := make(map[string]interface{}, len(data))
		for k, v := range data {
			fields[k] = v
		}
		pipe.HSet(ctx, key, fields)
	} else {
		// Keep the key alive even when the payload is empty so the id
		// stays valid until its TTL.
		pipe.HSet(ctx, key, "_", "")
	}
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

// MemoryStore is the fallback when Redis is unavailable and the backend
// used by handler tests. Sessions vanish on restart.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
}

type memorySession struct {
	data      map[string]string
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
	}
}

func (s *MemoryStore) New(ctx context.Context, data map[string]string) (string, error) {
	id, err := token.New()
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || time.Now().After(sess.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	copied := make(map[string]string, len(sess.data))
	for k, v := range sess.data {
		copied[k] = v
	}
	return copied, nil
}

func (s *MemoryStore) Set(ctx context.Context, id string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	s.sessions[id] = memorySession{data: copied, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
