package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for an unknown reminder id.
var ErrNotFound = errors.New("reminders: not found")

// Store persists reminders and indexes pending ones by due time.
type Store interface {
	Create(ctx context.Context, r *Reminder) error
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]Reminder, error)
	Get(ctx context.Context, id string) (*Reminder, error)
	Update(ctx context.Context, r *Reminder) error
}

// RedisStore keeps each reminder as JSON and pending ids in a sorted set
// scored by due time.
type RedisStore struct {
	client *redis.Client
}

const (
	redisDueKey    = "pitaya:reminders:due"
	redisItemPrefix = "pitaya:reminder:"
)

// NewRedisStore wraps a redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, r *Reminder) error {
	return s.write(ctx, r)
}

func (s *RedisStore) Update(ctx context.Context, r *Reminder) error {
	return s.write(ctx, r)
}

func (s *RedisStore) write(ctx context.Context, r *Reminder) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("reminders: encode: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisItemPrefix+r.ID, data, 0)
		if r.Status == StatusPending {
			pipe.ZAdd(ctx, redisDueKey, redis.Z{Score: float64(r.DueAt.Unix()), Member: r.ID})
		} else {
			pipe.ZRem(ctx, redisDueKey, r.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reminders: redis write: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Reminder, error) {
	data, err := s.client.Get(ctx, redisItemPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reminders: redis get: %w", err)
	}
	var r Reminder
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("reminders: decode %s: %w", id, err)
	}
	return &r, nil
}

func (s *RedisStore) ListDue(ctx context.Context, asOf time.Time, limit int) ([]Reminder, error) {
	ids, err := s.client.ZRangeByScore(ctx, redisDueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(asOf.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("reminders: list due: %w", err)
	}
	out := make([]Reminder, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			s.client.ZRem(ctx, redisDueKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Reminder
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Reminder)}
}

func (m *MemoryStore) Create(_ context.Context, r *Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID] = *r
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, r *Reminder) error {
	return m.Create(ctx, r)
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStore) ListDue(_ context.Context, asOf time.Time, limit int) ([]Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Reminder
	for _, r := range m.items {
		if r.Status == StatusPending && !r.DueAt.After(asOf) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
