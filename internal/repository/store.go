package repository

import (
	"context"
	"errors"
)

// Sentinel errors returned by DocumentStore implementations. Services map
// them to the caller-facing taxonomy; the retry executor's predicates match
// on them.
var (
	// ErrRecordNotFound is returned by Get when no record exists at the key.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists is returned by Put when the create-only condition fails.
	ErrRecordExists = errors.New("record already exists")

	// ErrVersionConflict is returned by ConditionalUpdate when the stored
	// version no longer equals the expected one: another writer won the race.
	ErrVersionConflict = errors.New("version conflict")

	// ErrTransactionConflict is returned by TransactWrite when the atomic
	// batch aborts, either because a precondition failed or because a
	// concurrent transaction touched one of its records.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrStoreUnavailable wraps transient infrastructure failures
	// (throttling, timeouts, internal store errors).
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Query describes a read against the tenant partition or one of the
// secondary indexes. PartitionValue is always derived from a TenantID by the
// key model, which keeps queries tenant-scoped.
type Query struct {
	// Index selects a secondary index; empty means the main table.
	Index IndexName
	// PartitionValue is the exact partition key value to query.
	PartitionValue string
	// SortKeyPrefix, when non-empty, restricts results to sort keys with
	// this prefix (begins_with semantics).
	SortKeyPrefix string
}

// ConditionalWrite is one version-guarded update inside an atomic batch.
type ConditionalWrite struct {
	Key             Key
	Patch           *Patch
	ExpectedVersion int
}

// DocumentStore is the only component that touches the physical store.
//
// Put is used solely for first-time creation (create-only condition).
// ConditionalUpdate and TransactWrite are the only paths that mutate
// existing records; both enforce version equality and bump the version by
// exactly 1, so the optimistic-lock invariant cannot be bypassed.
type DocumentStore interface {
	// Get returns the record at key, or ErrRecordNotFound.
	Get(ctx context.Context, key Key) (*Record, error)

	// Query returns all records matching q, following pagination internally.
	Query(ctx context.Context, q Query) ([]*Record, error)

	// Put creates a new record. The record's Version must be 1; Put fails
	// with ErrRecordExists when a record already occupies the key.
	Put(ctx context.Context, rec *Record) error

	// ConditionalUpdate applies patch to the record at key if and only if
	// its stored version equals expectedVersion, setting the new version to
	// expectedVersion+1. Returns the updated record, or ErrVersionConflict.
	ConditionalUpdate(ctx context.Context, key Key, patch *Patch, expectedVersion int) (*Record, error)

	// TransactWrite applies all writes atomically: every write's version
	// precondition must hold or the whole batch aborts with
	// ErrTransactionConflict.
	TransactWrite(ctx context.Context, writes []ConditionalWrite) error
}

// IsConflict reports whether err is one of the optimistic-concurrency
// conflicts that a mutating operation retries against fresh state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrTransactionConflict)
}

// IsTransient reports whether err is a transient infrastructure failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// RetryableWriteError is the default retry predicate for mutating
// operations: conflicts and transient store failures retry, everything else
// propagates immediately.
func RetryableWriteError(err error) bool {
	return IsConflict(err) || IsTransient(err)
}
