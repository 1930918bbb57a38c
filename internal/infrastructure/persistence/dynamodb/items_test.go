package dynamodb

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub-backend/internal/repository"
)

func sampleRecord(t *testing.T) *repository.Record {
	t.Helper()
	tenant := repository.TenantID("t1")
	key, err := repository.SchoolKey(tenant, "s1")
	require.NoError(t, err)

	created := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	return &repository.Record{
		TenantID:   tenant.String(),
		EntityKey:  key,
		EntityType: repository.EntityTypeSchool,
		Version:    3,
		CreatedAt:  created,
		CreatedBy:  "admin",
		UpdatedAt:  created.Add(time.Hour),
		UpdatedBy:  "editor",
		IndexKeys: map[string]string{
			repository.AttrEntityIndexPK:     repository.EntityIndexPK(tenant, "s1"),
			repository.AttrEntityIndexSK:     repository.EntityIndexSK("SCHOOL", "s1"),
			repository.AttrSchoolCodeIndexPK: repository.SchoolCodeIndexPK(tenant),
			repository.AttrSchoolCodeIndexSK: repository.SchoolCodeIndexSK("N-01"),
		},
		Attributes: map[string]any{
			"name":      "North High",
			"capacity":  1200,
			"active":    true,
			"startDate": time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestMarshalUnmarshalRecord(t *testing.T) {
	rec := sampleRecord(t)

	item, err := marshalRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, "TENANT#t1", extractString(item[attrPK]))
	assert.Equal(t, "SCHOOL#s1", extractString(item[attrSK]))

	got, err := unmarshalRecord(item)
	require.NoError(t, err)

	assert.Equal(t, rec.EntityKey.PartitionKey(), got.EntityKey.PartitionKey())
	assert.Equal(t, rec.EntityKey.SortKey(), got.EntityKey.SortKey())
	assert.Equal(t, repository.EntityTypeSchool, got.EntityType)
	assert.Equal(t, 3, got.Version)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, "editor", got.UpdatedBy)
	assert.Equal(t, rec.IndexKeys, got.IndexKeys)

	// Typed accessors absorb the codec's representation changes: numbers
	// come back as float64, timestamps as RFC 3339 strings.
	assert.Equal(t, "North High", got.String("name"))
	assert.Equal(t, 1200, got.Int("capacity"))
	assert.True(t, got.Bool("active"))
	assert.True(t, got.Time("startDate").Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMarshalRejectsBaseAttrCollision(t *testing.T) {
	rec := sampleRecord(t)
	rec.Attributes["Version"] = 99

	_, err := marshalRecord(rec)
	assert.Error(t, err, "payload attributes must not shadow the lock token")
}

func TestUnmarshalIgnoresMalformedTimestamps(t *testing.T) {
	rec := sampleRecord(t)
	item, err := marshalRecord(rec)
	require.NoError(t, err)

	item[attrCreatedAt] = &types.AttributeValueMemberS{Value: "not a timestamp"}
	got, err := unmarshalRecord(item)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.IsZero())
}
