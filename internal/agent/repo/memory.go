package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swayam-agent/server/internal/agent/model"
	errx "github.com/swayam-agent/server/internal/core/error"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// RedisMemoryStore keeps short free-text notes per session and retrieves
// the ones most similar to a query by token overlap. Good enough for
// recalling facts the user mentioned turns ago without an embedding service.
type RedisMemoryStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisMemoryStore(rdb redis.Cmdable, ttl time.Duration) *RedisMemoryStore {
	return &RedisMemoryStore{rdb: rdb, ttl: ttl}
}

func (r *RedisMemoryStore) memoryKey(sessionID string) string {
	return fmt.Sprintf("session:%s:memory", sessionID)
}

func (r *RedisMemoryStore) Store(ctx context.Context, sessionID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	key := r.memoryKey(sessionID)
	if err := r.rdb.RPush(ctx, key, text).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push memory record to redis")
		return errx.WrapRedis(err)
	}
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire on memory key")
			return errx.WrapRedis(err)
		}
	}
	return nil
}

func (r *RedisMemoryStore) Retrieve(ctx context.Context, sessionID, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return nil, nil
	}
	key := r.memoryKey(sessionID)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load memory records from redis")
		return nil, errx.WrapRedis(err)
	}
	return rankByOverlap(rows, query, topK), nil
}

type scoredRecord struct {
	text  string
	score int
	index int
}

// rankByOverlap scores each record by the number of distinct query tokens
// it contains. Records with no overlap are dropped; ties keep insertion
// order so newer context does not displace older equally-relevant facts.
func rankByOverlap(records []string, query string, topK int) []string {
	qtokens := tokenize(query)
	if len(qtokens) == 0 {
		return nil
	}
	scored := make([]scoredRecord, 0, len(records))
	for i, rec := range records {
		rtokens := tokenize(rec)
		score := 0
		for tok := range qtokens {
			if _, ok := rtokens[tok]; ok {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredRecord{text: rec, score: score, index: i})
		}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].score != scored[b].score {
			return scored[a].score > scored[b].score
		}
		return scored[a].index < scored[b].index
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.text)
	}
	return out
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]")
		if len(tok) >= 2 {
			out[tok] = struct{}{}
		}
	}
	return out
}

var _ model.MemoryStore = (*RedisMemoryStore)(nil)
