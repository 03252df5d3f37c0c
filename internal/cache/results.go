package cache

import (
	"encoding/json"
	"time"

	"github.com/ppiankov/triplecheck/internal/model"
)

// ResultCache stores validation results keyed by schema, vocabulary and
// document content
type ResultCache struct {
	cache Cache
	ttl   time.Duration
}

// NewResultCache wraps a byte cache
func NewResultCache(c Cache, ttl time.Duration) *ResultCache {
	return &ResultCache{cache: c, ttl: ttl}
}

// ResultKey builds the key for a document validated against a schema and
// heuristic vocabulary. Format and base IRI are part of the key because
// they change how the same bytes parse.
func ResultKey(schemaFingerprint, vocabFingerprint, format, base string, content []byte) string {
	return CacheKey("result", schemaFingerprint, vocabFingerprint, format, base, ContentHash(content))
}

// Get returns a cached result. Undecodable entries count as misses.
func (r *ResultCache) Get(key string) (model.Result, bool) {
	data, ok := r.cache.Get(key)
	if !ok {
		return model.Result{}, false
	}
	var res model.Result
	if err := json.Unmarshal(data, &res); err != nil {
		_ = r.cache.Delete(key)
		return model.Result{}, false
	}
	return model.NewResult(res.Errors, res.Warnings), true
}

// Put stores a result
func (r *ResultCache) Put(key string, res model.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return r.cache.Set(key, data, r.ttl)
}
