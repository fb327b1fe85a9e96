package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SurveyCacheKeyPrefix is the Redis key prefix for cached survey documents
	SurveyCacheKeyPrefix = "cache:survey:"
	// DefaultSurveyTTL bounds how long a stale entry can survive a racing write.
	DefaultSurveyTTL     = 5 * time.Minute
)

// SurveyCache keeps the JSON encoding of single surveys in Redis. Updates call
// Delete after writing. A read that loaded the old document before the update
// and calls Set after that Delete re-caches the old copy, which then lives
// until the TTL expires.
type SurveyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSurveyCache(client *redis.Client, ttl time.Duration) *SurveyCache {
	if ttl <= 0 {
		ttl = DefaultSurveyTTL
	}
	return &SurveyCache{client: client, ttl: ttl}
}

// Get returns the cached bytes. A miss is (nil, false, nil).
func (c *SurveyCache) Get(ctx context.Context, surveyID string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, SurveyCacheKeyPrefix+surveyID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *SurveyCache) Set(ctx context.Context, surveyID string, data []byte) error {
	return c.client.Set(ctx, SurveyCacheKeyPrefix+surveyID, data, c.ttl).Err()
}

func (c *SurveyCache) Delete(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, SurveyCacheKeyPrefix+surveyID).Err()
}
