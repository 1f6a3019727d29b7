package store

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/odvcencio/revstore/pkg/pathenc"
)

// encoder maps logical names to physical ones, optionally memoising the
// result. Long data paths hash on every call, so stores that re-open the
// same revlogs benefit from the cache.
type encoder struct {
	cache *lru.Cache[string, string]
}

func newEncoder(size int) (*encoder, error) {
	if size <= 0 {
		return &encoder{}, nil
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("encode cache: %w", err)
	}
	return &encoder{cache: c}, nil
}

func (e *encoder) encode(name string) string {
	if e.cache == nil {
		return pathenc.HybridEncode(name)
	}
	if v, ok := e.cache.Get(name); ok {
		return v
	}
	v := pathenc.HybridEncode(name)
	e.cache.Add(name, v)
	return v
}
