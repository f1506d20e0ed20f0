package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kurral/feedengine/internal/domain"
)

// Redis key layout. Scores are plain JSON values; engagement events go
// into a per-viewer sorted set scored by event time so history reads
// come back in order.
func scoreKey(authorID string) string {
	return fmt.Sprintf("feed:score:%s", authorID)
}

func engagementKey(viewerID string) string {
	return fmt.Sprintf("feed:engagement:%s", viewerID)
}

// RedisScoreStore implements reputation.Store on Redis.
type RedisScoreStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisScoreStore wraps an existing client. A zero ttl keeps scores
// forever.
func NewRedisScoreStore(rdb *redis.Client, ttl time.Duration) *RedisScoreStore {
	return &RedisScoreStore{rdb: rdb, ttl: ttl}
}

func (s *RedisScoreStore) LoadScore(ctx context.Context, authorID string) (domain.KurralScore, bool, error) {
	b, err := s.rdb.Get(ctx, scoreKey(authorID)).Bytes()
	if err == redis.Nil {
		return domain.KurralScore{}, false, nil
	}
	if err != nil {
		return domain.KurralScore{}, false, fmt.Errorf("redis get score: %w", err)
	}
	var score domain.KurralScore
	if err := json.Unmarshal(b, &score); err != nil {
		return domain.KurralScore{}, false, fmt.Errorf("decode score %s: %w", authorID, err)
	}
	return score, true, nil
}

func (s *RedisScoreStore) SaveScore(ctx context.Context, score domain.KurralScore) error {
	b, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("encode score %s: %w", score.AuthorID, err)
	}
	if err := s.rdb.Set(ctx, scoreKey(score.AuthorID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set score: %w", err)
	}
	return nil
}

// RedisEngagementLog implements EngagementLog on a per-viewer sorted
// set, trimmed to a bounded length on every append.
type RedisEngagementLog struct {
	rdb *redis.Client
	max int64
}

// NewRedisEngagementLog wraps an existing client, keeping at most max
// events per viewer.
func NewRedisEngagementLog(rdb *redis.Client, max int64) *RedisEngagementLog {
	if max <= 0 {
		max = 500
	}
	return &RedisEngagementLog{rdb: rdb, max: max}
}

func (l *RedisEngagementLog) Append(ctx context.Context, ev domain.EngagementEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode engagement event: %w", err)
	}
	key := engagementKey(ev.ViewerID)
	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(ev.At.UnixMilli()), Member: string(b)})
	pipe.ZRemRangeByRank(ctx, key, 0, -(l.max + 1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append engagement: %w", err)
	}
	return nil
}

func (l *RedisEngagementLog) History(ctx context.Context, viewerID string, limit int) ([]domain.EngagementEvent, error) {
	if limit <= 0 || int64(limit) > l.max {
		limit = int(l.max)
	}
	raw, err := l.rdb.ZRange(ctx, engagementKey(viewerID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis engagement history: %w", err)
	}
	out := make([]domain.EngagementEvent, 0, len(raw))
	for _, member := range raw {
		var ev domain.EngagementEvent
		if err := json.Unmarshal([]byte(member), &ev); err != nil {
			// A corrupt entry should not wedge tuning for the viewer.
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
