package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// ReadCache is a cache-aside reader. Implemented by cache.Loader.
type ReadCache interface {
	Load(ctx context.Context, key string, dest any, load func(ctx context.Context) (any, error)) (hit bool, err error)
	Invalidate(ctx context.Context, keys []string, prefixes ...string)
}

// directReads bypasses caching
type directReads struct{}

func (directReads) Load(ctx context.Context, _ string, dest any, load func(ctx context.Context) (any, error)) (bool, error) {
	v, err := load(ctx)
	if err != nil {
		return false, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return false, json.Unmarshal(b, dest)
}

func (directReads) Invalidate(context.Context, []string, ...string) {}

func productKey(partnerID, id uuid.UUID) string {
	return fmt.Sprintf("products:%s:%s", partnerID, id)
}

func productListPrefix(partnerID uuid.UUID) string {
	return fmt.Sprintf("products:%s:list:", partnerID)
}

// listKey derives a stable key from a filter value
func listKey(prefix string, filter any) string {
	b, _ := json.Marshal(filter)
	h := fnv.New64a()
	_, _ = h.Write(b)
	return fmt.Sprintf("%s%x", prefix, h.Sum64())
}
