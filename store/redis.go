package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"pulsebot/models"
	"pulsebot/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	histKeyPrefix   = "sess:hist:"
	bookedKeyPrefix = "sess:booked:"
	lockKeyPrefix   = "sess:lock:"
	metaKeyPrefix   = "sess:meta:"

	// lockTTL guards against an instance crashing while holding a booking
	// lock; it must comfortably exceed the slowest full booking attempt.
	lockTTL = 2 * time.Minute
)

// RedisStore keeps session state in Redis so multiple instances can serve
// the same webhook. The booking lock rides on SET NX, which gives the same
// compare-and-set guarantee the in-memory store provides with its mutex.
type RedisStore struct {
	client       *redis.Client
	historyLimit int
	ttl          time.Duration
}

func NewRedisStore(client *redis.Client, historyLimit int, ttl time.Duration) *RedisStore {
	if historyLimit <= 0 {
		historyLimit = 12
	}
	return &RedisStore{client: client, historyLimit: historyLimit, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) models.Session {
	logger := utils.GetLogger()
	sess := models.Session{ContactID: id}

	raw, err := s.client.LRange(ctx, histKeyPrefix+id, 0, -1).Result()
	if err != nil && err != redis.Nil {
		logger.Warn("redis store: history read failed", zap.String("contactId", id), zap.Error(err))
	}
	for _, item := range raw {
		var turn models.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			logger.Warn("redis store: dropping unreadable turn", zap.String("contactId", id), zap.Error(err))
			continue
		}
		sess.History = append(sess.History, turn)
	}

	sess.Booked = s.IsBooked(ctx, id)

	meta, err := s.client.HGetAll(ctx, metaKeyPrefix+id).Result()
	if err == nil {
		if ts, ok := meta["lastCustomerAt"]; ok {
			if parsed, perr := time.Parse(time.RFC3339, ts); perr == nil {
				sess.LastCustomerAt = parsed
			}
		}
		if n, ok := meta["nudges"]; ok {
			if count, serr := strconv.Atoi(n); serr == nil {
				sess.NudgesSent = count
			}
		}
	}
	return sess
}

func (s *RedisStore) AppendTurn(ctx context.Context, id, role, text string) {
	logger := utils.GetLogger()

	b, err := json.Marshal(models.Turn{Role: role, Text: text})
	if err != nil {
		logger.Warn("redis store: turn marshal failed", zap.String("contactId", id), zap.Error(err))
		return
	}

	key := histKeyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, b)
	pipe.LTrim(ctx, key, int64(-s.historyLimit), -1)
	pipe.Expire(ctx, key, s.ttl)
	if role == "user" {
		metaKey := metaKeyPrefix + id
		pipe.HSet(ctx, metaKey, "lastCustomerAt", time.Now().Format(time.RFC3339), "nudges", 0)
		pipe.Expire(ctx, metaKey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("redis store: append failed", zap.String("contactId", id), zap.Error(err))
	}
}

func (s *RedisStore) MarkBooked(ctx context.Context, id string) {
	if err := s.client.Set(ctx, bookedKeyPrefix+id, "1", s.ttl).Err(); err != nil {
		utils.GetLogger().Error("redis store: mark booked failed", zap.String("contactId", id), zap.Error(err))
	}
}

func (s *RedisStore) IsBooked(ctx context.Context, id string) bool {
	val, err := s.client.Get(ctx, bookedKeyPrefix+id).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		utils.GetLogger().Warn("redis store: booked read failed", zap.String("contactId", id), zap.Error(err))
		return false
	}
	return val == "1"
}

func (s *RedisStore) TryAcquireBookingLock(ctx context.Context, id string) bool {
	ok, err := s.client.SetNX(ctx, lockKeyPrefix+id, "1", lockTTL).Result()
	if err != nil {
		// Treat an unreachable backend as lock-held: better to drop one
		// duplicate delivery than to risk a double booking.
		utils.GetLogger().Error("redis store: lock acquire failed", zap.String("contactId", id), zap.Error(err))
		return false
	}
	return ok
}

func (s *RedisStore) ReleaseBookingLock(ctx context.Context, id string) {
	if err := s.client.Del(ctx, lockKeyPrefix+id).Err(); err != nil {
		utils.GetLogger().Warn("redis store: lock release failed", zap.String("contactId", id), zap.Error(err))
	}
}

func (s *RedisStore) RecordNudge(ctx context.Context, id string) {
	metaKey := metaKeyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, metaKey, "nudges", 1)
	pipe.Expire(ctx, metaKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		utils.GetLogger().Warn("redis store: nudge record failed", zap.String("contactId", id), zap.Error(err))
	}
}
