package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/huangsam/ecoscore/core/engine"
	"github.com/huangsam/ecoscore/core/trend"
	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cachedAnalyzer runs the engine behind the result cache. Entries are keyed by
// content and engine fingerprint, so they never go stale.
type cachedAnalyzer struct {
	eng   *engine.Engine
	store contract.CacheStore
}

var _ trend.Analyzer = &cachedAnalyzer{} // Compile-time check

// newCachedAnalyzer wraps eng with the result store of mgr, if there is one.
func newCachedAnalyzer(eng *engine.Engine, mgr contract.CacheManager) *cachedAnalyzer {
	a := &cachedAnalyzer{eng: eng}
	if mgr != nil {
		a.store = mgr.GetResultStore()
	}
	return a
}

// Analyze implements trend.Analyzer.
func (a *cachedAnalyzer) Analyze(ctx context.Context, src []byte) (*schema.AnalysisResult, error) {
	if a.store == nil {
		return a.eng.Analyze(ctx, src)
	}

	key := generateCacheKey(a.eng.Fingerprint(), src)

	// Check for cache hit
	if result := checkCacheHit(a.store, key); result != nil {
		return result, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, a.eng, a.store, key, src)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *schema.AnalysisResult {
	data, version, _, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil // Cache miss
	}
	var result schema.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// computeAndStore computes the result and stores it in cache.
// Parse errors are not cached.
func computeAndStore(ctx context.Context, eng *engine.Engine, store contract.CacheStore, key string, src []byte) (*schema.AnalysisResult, error) {
	result, err := eng.Analyze(ctx, src)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store cached result", err)
		}
	}
	return result, nil
}

// generateCacheKey hashes the engine fingerprint together with the source bytes.
func generateCacheKey(fingerprint string, src []byte) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}
