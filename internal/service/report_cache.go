package service

import (
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/metrics"
)

// CacheKey represents a unique key for caching evaluation results
type CacheKey struct {
	Dataset    string
	ConfigHash string
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return k.Dataset + ":" + k.ConfigHash
}

// ReportCache provides in-memory caching for evaluation results
type ReportCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewReportCache creates a new report cache
func NewReportCache(ttl, cleanup time.Duration) *ReportCache {
	return &ReportCache{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// NewReportCacheFromConfig creates a report cache sized from app configuration
func NewReportCacheFromConfig(cfg config.CacheConfig) *ReportCache {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	cleanup := time.Duration(cfg.CleanupSeconds) * time.Second
	return NewReportCache(ttl, cleanup)
}

// Get retrieves a cached evaluation result
func (rc *ReportCache) Get(key CacheKey) *RunResult {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, found := rc.cache.Get(key.String()); found {
		if result, ok := cached.(*RunResult); ok {
			rc.hitCount++
			metrics.RecordCacheResult(true)
			return result
		}
	}

	rc.missCount++
	metrics.RecordCacheResult(false)
	return nil
}

// Set stores an evaluation result in cache
func (rc *ReportCache) Set(key CacheKey, result *RunResult) {
	rc.cache.Set(key.String(), result, rc.ttl)
}

// InvalidateDataset removes all cache entries for a specific dataset
func (rc *ReportCache) InvalidateDataset(dataset string) {
	prefix := dataset + ":"
	for k := range rc.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			rc.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (rc *ReportCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hitCount = 0
	rc.missCount = 0
}

// Stats returns cache statistics
func (rc *ReportCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	hits = rc.hitCount
	misses = rc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (rc *ReportCache) ItemCount() int {
	return rc.cache.ItemCount()
}
