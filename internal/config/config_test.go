package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_MAX_HISTORY", "")
	t.Setenv("RANKING_NORMALIZE_SCORES", "")

	cfg := Load()

	assert.Equal(t, 20, cfg.Recommendation.MaxHistory)
	assert.Equal(t, 50, cfg.Recommendation.MaxViewedItems)
	assert.Equal(t, 10, cfg.Recommendation.MaxCategories)
	assert.False(t, cfg.Recommendation.NormalizeScores)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_MAX_HISTORY", "8")
	t.Setenv("RANKING_NORMALIZE_SCORES", "true")
	t.Setenv("EMBEDDING_TIMEOUT", "250ms")
	t.Setenv("RESPONSE_TIMEOUT", "7")
	t.Setenv("TRENDING_MIN_RATING", "3.5")

	cfg := Load()

	assert.Equal(t, 8, cfg.Recommendation.MaxHistory)
	assert.True(t, cfg.Recommendation.NormalizeScores)
	assert.Equal(t, 250*time.Millisecond, cfg.Recommendation.EmbeddingTimeout)
	assert.Equal(t, 7*time.Second, cfg.Recommendation.ResponseTimeout)
	assert.Equal(t, 3.5, cfg.Recommendation.TrendingMinRating)
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	t.Setenv("SOME_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}

func TestLoadRaisesLockTTLToLongestHold(t *testing.T) {
	t.Setenv("SESSION_LOCK_TTL", "30s")
	t.Setenv("SESSION_STORE_TIMEOUT", "3s")
	t.Setenv("EMBEDDING_TIMEOUT", "10s")
	t.Setenv("VECTOR_SEARCH_TIMEOUT", "5s")
	t.Setenv("RESPONSE_TIMEOUT", "15s")

	cfg := Load()

	assert.Equal(t, 36*time.Second, cfg.Recommendation.MaxLockHold())
	assert.Equal(t, 36*time.Second, cfg.Recommendation.LockTTL)
}

func TestLoadKeepsLongerLockTTL(t *testing.T) {
	t.Setenv("SESSION_LOCK_TTL", "")

	cfg := Load()

	assert.Equal(t, time.Minute, cfg.Recommendation.LockTTL)
	assert.GreaterOrEqual(t, cfg.Recommendation.LockTTL, cfg.Recommendation.MaxLockHold())
}
