package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var ErrCorruptState = errors.New("persisted workspace state is corrupt")

// StateStore persists the tab list and active pointer of a workspace under
// two separate keys per owner.
type StateStore interface {
	Load(ctx context.Context, owner string) (tabs []Entry, active int64, err error)
	Save(ctx context.Context, owner string, tabs []Entry, active int64) error
}

func tabsKey(owner string) string   { return "workspace:" + owner + ":tabs" }
func activeKey(owner string) string { return "workspace:" + owner + ":active" }

// RedisStore keeps workspace state in Redis.
type RedisStore struct {
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewRedisStore builds a store whose keys expire ttl after the last write.
// A zero ttl keeps them forever.
func NewRedisStore(rdb goredis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, owner string) ([]Entry, int64, error) {
	vals, err := s.rdb.MGet(ctx, tabsKey(owner), activeKey(owner)).Result()
	if err != nil {
		return nil, TabHome, fmt.Errorf("load workspace %s: %w", owner, err)
	}

	var tabs []Entry
	if raw, ok := vals[0].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &tabs); err != nil {
			return nil, TabHome, fmt.Errorf("%w: tabs: %v", ErrCorruptState, err)
		}
	}

	active := TabHome
	if raw, ok := vals[1].(string); ok && raw != "" {
		active, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, TabHome, fmt.Errorf("%w: active: %v", ErrCorruptState, err)
		}
	}
	return tabs, active, nil
}

func (s *RedisStore) Save(ctx context.Context, owner string, tabs []Entry, active int64) error {
	if tabs == nil {
		tabs = []Entry{}
	}
	raw, err := json.Marshal(tabs)
	if err != nil {
		return fmt.Errorf("encode tabs: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, tabsKey(owner), raw, s.ttl)
		pipe.Set(ctx, activeKey(owner), strconv.FormatInt(active, 10), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save workspace %s: %w", owner, err)
	}
	return nil
}

// MemoryStore keeps workspace state in process. Used when Redis is not
// configured and in tests.
type MemoryStore struct {
	mu     sync.Mutex
	tabs   map[string][]Entry
	active map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tabs: map[string][]Entry{}, active: map[string]int64{}}
}

func (s *MemoryStore) Load(_ context.Context, owner string) ([]Entry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.active[owner]
	if !ok {
		active = TabHome
	}
	return append([]Entry(nil), s.tabs[owner]...), active, nil
}

func (s *MemoryStore) Save(_ context.Context, owner string, tabs []Entry, active int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[owner] = append([]Entry(nil), tabs...)
	s.active[owner] = active
	return nil
}
