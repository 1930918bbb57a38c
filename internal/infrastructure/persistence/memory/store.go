// Package memory provides an in-memory DocumentStore used by tests and
// local development. It honors the same version discipline as the DynamoDB
// implementation: versions start at 1 and only the conditional-write paths
// bump them.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"schoolhub-backend/internal/repository"
)

// Store is a thread-safe in-memory DocumentStore.
type Store struct {
	mu sync.RWMutex
	// partitions maps partition key -> sort key -> record.
	partitions map[string]map[string]*repository.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		partitions: make(map[string]map[string]*repository.Record),
	}
}

var _ repository.DocumentStore = (*Store)(nil)

// Get returns a copy of the record at key.
func (s *Store) Get(_ context.Context, key repository.Key) (*repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.lookup(key)
	if rec == nil {
		return nil, repository.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

// Query returns all records matching q, ordered by sort key.
func (s *Store) Query(_ context.Context, q repository.Query) ([]*repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		sortValue string
		rec       *repository.Record
	}
	var hits []hit

	if q.Index == "" {
		for sk, rec := range s.partitions[q.PartitionValue] {
			if strings.HasPrefix(sk, q.SortKeyPrefix) {
				hits = append(hits, hit{sk, rec})
			}
		}
	} else {
		pkAttr, skAttr := q.Index.PKAttr(), q.Index.SKAttr()
		for _, partition := range s.partitions {
			for _, rec := range partition {
				if rec.IndexKeys[pkAttr] != q.PartitionValue {
					continue
				}
				if strings.HasPrefix(rec.IndexKeys[skAttr], q.SortKeyPrefix) {
					hits = append(hits, hit{rec.IndexKeys[skAttr], rec})
				}
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].sortValue < hits[j].sortValue })

	out := make([]*repository.Record, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.rec.Clone())
	}
	return out, nil
}

// Put creates a new record, failing when the key is occupied.
func (s *Store) Put(_ context.Context, rec *repository.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(rec.EntityKey) != nil {
		return repository.ErrRecordExists
	}
	s.insert(rec.Clone())
	return nil
}

// ConditionalUpdate applies patch under a version-equality condition.
func (s *Store) ConditionalUpdate(_ context.Context, key repository.Key, patch *repository.Patch, expectedVersion int) (*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.applyLocked(key, patch, expectedVersion)
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// TransactWrite applies all writes atomically: preconditions are checked
// for the whole batch before any record is touched.
func (s *Store) TransactWrite(_ context.Context, writes []repository.ConditionalWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range writes {
		rec := s.lookup(w.Key)
		if rec == nil || rec.Version != w.ExpectedVersion {
			return repository.ErrTransactionConflict
		}
	}
	for _, w := range writes {
		if _, err := s.applyLocked(w.Key, w.Patch, w.ExpectedVersion); err != nil {
			// Preconditions were verified above; this cannot happen while
			// the lock is held.
			return repository.ErrTransactionConflict
		}
	}
	return nil
}

func (s *Store) applyLocked(key repository.Key, patch *repository.Patch, expectedVersion int) (*repository.Record, error) {
	rec := s.lookup(key)
	if rec == nil || rec.Version != expectedVersion {
		return nil, repository.ErrVersionConflict
	}

	for field, value := range patch.Fields() {
		switch field {
		case repository.FieldUpdatedAt:
			if t, ok := value.(time.Time); ok {
				rec.UpdatedAt = t
			}
		case repository.FieldUpdatedBy:
			if by, ok := value.(string); ok {
				rec.UpdatedBy = by
			}
		default:
			rec.Attributes[field] = value
		}
	}
	rec.Version = expectedVersion + 1
	return rec, nil
}

func (s *Store) lookup(key repository.Key) *repository.Record {
	partition := s.partitions[key.PartitionKey()]
	if partition == nil {
		return nil
	}
	return partition[key.SortKey()]
}

func (s *Store) insert(rec *repository.Record) {
	pk := rec.EntityKey.PartitionKey()
	if s.partitions[pk] == nil {
		s.partitions[pk] = make(map[string]*repository.Record)
	}
	s.partitions[pk][rec.EntityKey.SortKey()] = rec
}
