package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub-backend/internal/repository"
)

func schoolRecord(t *testing.T, tenant repository.TenantID, schoolID, name string) *repository.Record {
	t.Helper()
	key, err := repository.SchoolKey(tenant, schoolID)
	require.NoError(t, err)

	now := time.Now().UTC()
	return &repository.Record{
		TenantID:   tenant.String(),
		EntityKey:  key,
		EntityType: repository.EntityTypeSchool,
		Version:    1,
		CreatedAt:  now,
		CreatedBy:  "tester",
		UpdatedAt:  now,
		UpdatedBy:  "tester",
		IndexKeys: map[string]string{
			repository.AttrEntityIndexPK: repository.EntityIndexPK(tenant, schoolID),
			repository.AttrEntityIndexSK: repository.EntityIndexSK("SCHOOL", schoolID),
		},
		Attributes: map[string]any{"name": name},
	}
}

func TestPutThenGet(t *testing.T) {
	store := New()
	tenant := repository.TenantID("t1")
	rec := schoolRecord(t, tenant, "s1", "North High")

	require.NoError(t, store.Put(context.Background(), rec))

	key, _ := repository.SchoolKey(tenant, "s1")
	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "North High", got.String("name"))
}

func TestPutRejectsExistingKey(t *testing.T) {
	store := New()
	tenant := repository.TenantID("t1")

	require.NoError(t, store.Put(context.Background(), schoolRecord(t, tenant, "s1", "a")))
	err := store.Put(context.Background(), schoolRecord(t, tenant, "s1", "b"))
	assert.ErrorIs(t, err, repository.ErrRecordExists)
}

func TestGetMissingRecord(t *testing.T) {
	store := New()
	key, _ := repository.SchoolKey(repository.TenantID("t1"), "nope")

	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestConditionalUpdateBumpsVersion(t *testing.T) {
	store := New()
	tenant := repository.TenantID("t1")
	require.NoError(t, store.Put(context.Background(), schoolRecord(t, tenant, "s1", "old")))

	key, _ := repository.SchoolKey(tenant, "s1")
	patch := repository.NewPatch().Set("name", "new").Audit("editor", time.Now().UTC())

	updated, err := store.ConditionalUpdate(context.Background(), key, patch, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "new", updated.String("name"))
	assert.Equal(t, "editor", updated.UpdatedBy)
}

func TestConditionalUpdateStaleVersion(t *testing.T) {
	store := New()
	tenant := repository.TenantID("t1")
	require.NoError(t, store.Put(context.Background(), schoolRecord(t, tenant, "s1", "old")))

	key, _ := repository.SchoolKey(tenant, "s1")
	patch := repository.NewPatch().Set("name", "new")

	_, err := store.ConditionalUpdate(context.Background(), key, patch, 7)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	// Failed condition must leave the record untouched.
	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "old", got.String("name"))
}

func TestTransactWriteAllOrNothing(t *testing.T) {
	store := New()
	tenant := repository.TenantID("t1")
	require.NoError(t, store.Put(context.Background(), schoolRecord(t, tenant, "s1", "a")))
	require.NoError(t, store.Put(context.Background(), schoolRecord(t, tenant, "s2", "b")))

	k1, _ := repository.SchoolKey(tenant, "s1")
	k2, _ := repository.SchoolKey(tenant, "s2")

	err := store.TransactWrite(context.Background(), []repository.ConditionalWrite{
		{Key: k1, Patch: repository.NewPatch().Set("name", "a2"), ExpectedVersion: 1},
		{Key: k2, Patch: repository.NewPatch().Set("name", "b2"), ExpectedVersion: 99},
	})
	assert.ErrorIs(t, err, repository.ErrTransactionConflict)

	// The first write must not have been applied.
	got, _ := store.Get(context.Background(), k1)
	assert.Equal(t, "a", got.String("name"))
	assert.Equal(t, 1, got.Version)

	// With correct versions the whole batch lands.
	err = store.TransactWrite(context.Background(), []repository.ConditionalWrite{
		{Key: k1, Patch: repository.NewPatch().Set("name", "a2"), ExpectedVersion: 1},
		{Key: k2, Patch: repository.NewPatch().Set("name", "b2"), ExpectedVersion: 1},
	})
	require.NoError(t, err)

	got, _ = store.Get(context.Background(), k1)
	assert.Equal(t, "a2", got.String("name"))
	assert.Equal(t, 2, got.Version)
}

func TestQueryByIndexPrefix(t *testing.T) {
	store := New()
	tenant := repository.TenantID("t1")
	require.NoError(t, store.Put(context.Background(), schoolRecord(t, tenant, "s1", "a")))

	// Two sub-entities under the same school share the entity index partition.
	for _, id := range []string{"d1", "d2"} {
		key, err := repository.DepartmentKey(tenant, "s1", id)
		require.NoError(t, err)
		now := time.Now().UTC()
		require.NoError(t, store.Put(context.Background(), &repository.Record{
			TenantID:   tenant.String(),
			EntityKey:  key,
			EntityType: repository.EntityTypeDepartment,
			Version:    1,
			CreatedAt:  now,
			UpdatedAt:  now,
			IndexKeys: map[string]string{
				repository.AttrEntityIndexPK: repository.EntityIndexPK(tenant, "s1"),
				repository.AttrEntityIndexSK: repository.EntityIndexSK("DEPT", id),
			},
			Attributes: map[string]any{"name": id},
		}))
	}

	recs, err := store.Query(context.Background(), repository.Query{
		Index:          repository.IndexEntity,
		PartitionValue: repository.EntityIndexPK(tenant, "s1"),
		SortKeyPrefix:  "DEPT#",
	})
	require.NoError(t, err)
	require.Len(t, recs, 2, "school record must not match the DEPT prefix")
	assert.Equal(t, "d1", recs[0].String("name"))
	assert.Equal(t, "d2", recs[1].String("name"))
}

func TestClonesIsolateCallers(t *testing.T) {
	store := New()
	tenant := repository.TenantID("t1")
	rec := schoolRecord(t, tenant, "s1", "original")
	require.NoError(t, store.Put(context.Background(), rec))

	// Mutating the caller's copy must not leak into the store.
	rec.Attributes["name"] = "mutated"

	key, _ := repository.SchoolKey(tenant, "s1")
	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "original", got.String("name"))

	got.Attributes["name"] = "mutated again"
	again, _ := store.Get(context.Background(), key)
	assert.Equal(t, "original", again.String("name"))
}
