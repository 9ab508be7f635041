// Package lock serializes audit chain appends per subject.
package lock

import (
	"context"
	"fmt"
)

// numShards spreads subjects over independent locks. Subjects that hash to
// the same shard serialize against each other, which is safe but slower.
const numShards = 128

// Sharded is an in-process per-subject lock. It only protects appends made by
// this process; use Redis when several replicas share one store.
type Sharded struct {
	shards [numShards]chan struct{}
}

func NewSharded() *Sharded {
	s := &Sharded{}
	for i := range s.shards {
		s.shards[i] = make(chan struct{}, 1)
	}
	return s
}

// Lock blocks until the subject's shard is free or ctx is done.
func (s *Sharded) Lock(ctx context.Context, subjectID string) (func(), error) {
	shard := s.shards[hashString(subjectID)%numShards]
	select {
	case shard <- struct{}{}:
		return func() { <-shard }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire audit lock for %s: %w", subjectID, ctx.Err())
	}
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
