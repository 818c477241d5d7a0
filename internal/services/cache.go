package services

import (
	"context"
	"sync"

	"regiond/internal/models"
)

// Slot memoizes one value for the lifetime of a unit of work. The value
// must not depend on call arguments.
type Slot[V any] struct {
	mu  sync.Mutex
	set bool
	val V
}

// GetOrCompute returns the cached value, calling fn on a miss. Errors are
// not cached.
func (s *Slot[V]) GetOrCompute(ctx context.Context, fn func(context.Context) (V, error)) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return s.val, nil
	}
	v, err := fn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	s.val, s.set = v, true
	return v, nil
}

func (s *Slot[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero V
	s.val, s.set = zero, false
}

type FabricsCache struct {
	DefaultFabric Slot[*models.Fabric]
}

func (c *FabricsCache) Clear() {
	c.DefaultFabric.Clear()
}
