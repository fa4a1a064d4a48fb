package seen

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
)

// Store holds per-(user, channel) last-seen watermarks in epoch
// milliseconds. Missing channels read as 0, i.e. everything unread.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
	Set(ctx context.Context, userID uuid.UUID, channelID string, epochMs int64) error
}

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedisStore(log *logger.Logger) (Store, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{log: log.With("service", "SeenStore"), rdb: rdb}, nil
}

func seenKey(userID uuid.UUID) string {
	return "seen:" + userID.String()
}

func (s *redisStore) Get(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, seenKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("seen hgetall: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for channel, val := range raw {
		ms, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			s.log.Warn("bad seen watermark, skipping", "channel", channel, "value", val)
			continue
		}
		out[channel] = ms
	}
	return out, nil
}

func (s *redisStore) Set(ctx context.Context, userID uuid.UUID, channelID string, epochMs int64) error {
	if channelID == "" {
		return nil
	}
	if err := s.rdb.HSet(ctx, seenKey(userID), channelID, epochMs).Err(); err != nil {
		return fmt.Errorf("seen hset: %w", err)
	}
	return nil
}

// memoryStore is the single-process fallback when Redis is not configured.
type memoryStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]map[string]int64
}

func NewMemoryStore() Store {
	return &memoryStore{data: map[uuid.UUID]map[string]int64{}}
}

func (s *memoryStore) Get(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.data[userID]))
	for channel, ms := range s.data[userID] {
		out[channel] = ms
	}
	return out, nil
}

func (s *memoryStore) Set(ctx context.Context, userID uuid.UUID, channelID string, epochMs int64) error {
	if channelID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[userID] == nil {
		s.data[userID] = map[string]int64{}
	}
	s.data[userID][channelID] = epochMs
	return nil
}
