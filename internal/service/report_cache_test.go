package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/evaluation"
)

func cachedResult() *RunResult {
	return &RunResult{
		Display: &evaluation.DisplayTable{Index: "Daily"},
	}
}

// TestReportCacheSetGet stores and retrieves a result by key
func TestReportCacheSetGet(t *testing.T) {
	rc := NewReportCache(time.Minute, time.Minute)
	key := CacheKey{Dataset: "sales.csv", ConfigHash: "abc123"}

	assert.Nil(t, rc.Get(key), "empty cache should miss")

	stored := cachedResult()
	rc.Set(key, stored)

	got := rc.Get(key)
	require.NotNil(t, got)
	assert.Same(t, stored, got)
	assert.Equal(t, 1, rc.ItemCount())

	hits, misses, ratio := rc.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

// TestReportCacheKeyIsolation keeps results for different configs apart
func TestReportCacheKeyIsolation(t *testing.T) {
	rc := NewReportCache(time.Minute, time.Minute)
	rc.Set(CacheKey{Dataset: "sales.csv", ConfigHash: "aaa"}, cachedResult())

	assert.Nil(t, rc.Get(CacheKey{Dataset: "sales.csv", ConfigHash: "bbb"}))
	assert.Nil(t, rc.Get(CacheKey{Dataset: "other.csv", ConfigHash: "aaa"}))
	assert.NotNil(t, rc.Get(CacheKey{Dataset: "sales.csv", ConfigHash: "aaa"}))
}

// TestReportCacheExpiry lets entries age out after the TTL
func TestReportCacheExpiry(t *testing.T) {
	rc := NewReportCache(20*time.Millisecond, time.Minute)
	key := CacheKey{Dataset: "sales.csv", ConfigHash: "abc123"}
	rc.Set(key, cachedResult())

	require.NotNil(t, rc.Get(key))

	time.Sleep(60 * time.Millisecond)
	assert.Nil(t, rc.Get(key), "entry should expire after TTL")
}

// TestReportCacheInvalidateDataset drops only the named dataset's entries
func TestReportCacheInvalidateDataset(t *testing.T) {
	rc := NewReportCache(time.Minute, time.Minute)
	rc.Set(CacheKey{Dataset: "sales.csv", ConfigHash: "aaa"}, cachedResult())
	rc.Set(CacheKey{Dataset: "sales.csv", ConfigHash: "bbb"}, cachedResult())
	rc.Set(CacheKey{Dataset: "demand.csv", ConfigHash: "ccc"}, cachedResult())

	rc.InvalidateDataset("sales.csv")

	assert.Nil(t, rc.Get(CacheKey{Dataset: "sales.csv", ConfigHash: "aaa"}))
	assert.Nil(t, rc.Get(CacheKey{Dataset: "sales.csv", ConfigHash: "bbb"}))
	assert.NotNil(t, rc.Get(CacheKey{Dataset: "demand.csv", ConfigHash: "ccc"}))
}

// TestReportCacheClear flushes entries and resets counters
func TestReportCacheClear(t *testing.T) {
	rc := NewReportCache(time.Minute, time.Minute)
	key := CacheKey{Dataset: "sales.csv", ConfigHash: "abc123"}
	rc.Set(key, cachedResult())
	rc.Get(key)
	rc.Get(CacheKey{Dataset: "sales.csv", ConfigHash: "zzz"})

	rc.Clear()

	assert.Equal(t, 0, rc.ItemCount())
	hits, misses, ratio := rc.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(0), misses)
	assert.Equal(t, 0.0, ratio)
}

// TestNewReportCacheFromConfig sizes the cache from app configuration
func TestNewReportCacheFromConfig(t *testing.T) {
	rc := NewReportCacheFromConfig(config.CacheConfig{TTLSeconds: 300, CleanupSeconds: 600})
	require.NotNil(t, rc)
	assert.Equal(t, 5*time.Minute, rc.ttl)
}
