package lookup

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cso-health-insurance/server/internal/agent/nlu"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

const keyCacheTTL = 10 * time.Minute

// KeyDetector finds which payload key of a collection holds the policy number by
// fuzzy-matching the keys of one sample record. Results are cached per collection.
type KeyDetector struct {
	store RecordStore
	cache *cache.Cache
}

func NewKeyDetector(store RecordStore) *KeyDetector {
	return &KeyDetector{
		store: store,
		cache: cache.New(keyCacheTTL, 2*keyCacheTTL),
	}
}

// PolicyKey returns the detected key, or nlu.DefaultPolicyKey when the sample has no
// key at or above nlu.FieldMatchThreshold. Failed samples are not cached.
func (d *KeyDetector) PolicyKey(ctx context.Context, collection string) string {
	if v, ok := d.cache.Get(collection); ok {
		return v.(string)
	}

	sample, err := d.store.Scroll(ctx, collection, nil, 1)
	if err != nil {
		logx.Warn().Err(err).Str("collection", collection).Msg("policy key detection failed, using default")
		return nlu.DefaultPolicyKey
	}

	key := nlu.DefaultPolicyKey
	if len(sample) > 0 {
		keys := make([]string, 0, len(sample[0]))
		for k := range sample[0] {
			keys = append(keys, k)
		}
		if best, score := nlu.BestKey(sortedKeys(keys), nlu.PolicyKeyAliases); score >= nlu.FieldMatchThreshold {
			key = best
		}
	}
	d.cache.SetDefault(collection, key)
	logx.Debug().Str("collection", collection).Str("key", key).Msg("policy key detected")
	return key
}
