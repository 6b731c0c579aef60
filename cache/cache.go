// Package cache is the query cache in front of the list endpoints. Keys are
// scoped by entity and user so a write only drops the lists it can affect.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Store interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Invalidate drops every cached list of the given entities for the user.
	Invalidate(ctx context.Context, userID uuid.UUID, entities ...string) error
}

// ListKey builds the cache key of a filtered list.
func ListKey(entity string, userID uuid.UUID, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprint(params))
	}
	return fmt.Sprintf("%s:list:%s:%x", entity, userID, md5.Sum(data))
}

func listPattern(entity string, userID uuid.UUID) string {
	return fmt.Sprintf("%s:list:%s:*", entity, userID)
}

// Remember returns the cached value under key or loads and caches it. Cache
// failures fall through to load.
func Remember[T any](ctx context.Context, store Store, key string, load func() (T, error)) (T, error) {
	var cached T
	if found, err := store.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	_ = store.Set(ctx, key, v)
	return v, nil
}

// Nop is used when no redis is configured.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Nop) Set(context.Context, string, any) error { return nil }

func (Nop) Invalidate(context.Context, uuid.UUID, ...string) error { return nil }
