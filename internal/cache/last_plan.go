package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"example.com/ai-travel-planner/internal/metrics"
	"example.com/ai-travel-planner/internal/models"
)

const lastPlanKeyPrefix = "chalo:last-plan:"

// KV is the subset of the Redis client the last-plan slot needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LastPlanStore keeps the most recent plan per session; the last writer wins.
type LastPlanStore struct {
	kv  KV
	ttl time.Duration
}

// NewLastPlanStore создает хранилище последнего плана.
func NewLastPlanStore(kv KV, ttl time.Duration) *LastPlanStore {
	return &LastPlanStore{kv: kv, ttl: ttl}
}

func lastPlanKey(sessionID uuid.UUID) string {
	return lastPlanKeyPrefix + sessionID.String()
}

// Save сохраняет план сессии, перезаписывая предыдущий.
func (s *LastPlanStore) Save(ctx context.Context, sessionID uuid.UUID, plan models.TravelPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return err
	}

	return s.kv.Set(ctx, lastPlanKey(sessionID), payload, s.ttl).Err()
}

// Load возвращает последний план сессии. Отсутствие ключа и битое значение
// одинаково означают отсутствие плана; битое значение удаляется.
func (s *LastPlanStore) Load(ctx context.Context, sessionID uuid.UUID) (models.TravelPlan, bool, error) {
	key := lastPlanKey(sessionID)

	data, err := s.kv.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCacheLookup("miss")
		return models.TravelPlan{}, false, nil
	}
	if err != nil {
		return models.TravelPlan{}, false, err
	}

	plan, ok := models.DecodePlan(data)
	if !ok {
		metrics.ObserveCacheLookup("corrupt")
		if err := s.kv.Del(ctx, key).Err(); err != nil {
			slog.WarnContext(ctx, "failed to clear corrupted last plan", slog.String("session_id", sessionID.String()), slog.String("error", err.Error()))
		}
		return models.TravelPlan{}, false, nil
	}

	metrics.ObserveCacheLookup("hit")
	return plan, true, nil
}

// Clear удаляет последний план сессии.
func (s *LastPlanStore) Clear(ctx context.Context, sessionID uuid.UUID) error {
	return s.kv.Del(ctx, lastPlanKey(sessionID)).Err()
}
