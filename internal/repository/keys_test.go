package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchoolKeyLayout(t *testing.T) {
	tenant := TenantID("tenant-1")

	key, err := SchoolKey(tenant, "school-1")
	require.NoError(t, err)

	assert.Equal(t, "TENANT#tenant-1", key.PartitionKey())
	assert.Equal(t, "SCHOOL#school-1", key.SortKey())
}

func TestHierarchicalKeys(t *testing.T) {
	tenant := TenantID("t1")

	dept, err := DepartmentKey(tenant, "s1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "SCHOOL#s1#DEPT#d1", dept.SortKey())

	year, err := YearKey(tenant, "s1", "y1")
	require.NoError(t, err)
	assert.Equal(t, "SCHOOL#s1#YEAR#y1", year.SortKey())

	period, err := PeriodKey(tenant, "s1", "y1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "SCHOOL#s1#YEAR#y1#PERIOD#p1", period.SortKey())

	holiday, err := HolidayKey(tenant, "s1", "y1", "h1")
	require.NoError(t, err)
	assert.Equal(t, "SCHOOL#s1#YEAR#y1#HOLIDAY#h1", holiday.SortKey())

	cfg, err := ConfigurationKey(tenant, "s1")
	require.NoError(t, err)
	assert.Equal(t, "SCHOOL#s1#CONFIG", cfg.SortKey())
}

func TestKeyBuildersRejectSeparatorInIdentifiers(t *testing.T) {
	tenant := TenantID("t1")

	_, err := SchoolKey(tenant, "bad#id")
	assert.Error(t, err, "separator inside an id would collide distinct entities")

	_, err = SchoolKey(tenant, "")
	assert.Error(t, err)

	_, err = YearKey(tenant, "s1", "y#1")
	assert.Error(t, err)
}

func TestNewTenantID(t *testing.T) {
	tenant, err := NewTenantID("acme")
	require.NoError(t, err)
	assert.Equal(t, "TENANT#acme", tenant.PartitionKey())

	_, err = NewTenantID("")
	assert.Error(t, err)

	_, err = NewTenantID("a#b")
	assert.Error(t, err)
}

func TestGeneratedIDsAreSeparatorFree(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.NoError(t, ValidateIdentifier(NewID()))
	}
}

func TestSchoolCodeIndexNormalization(t *testing.T) {
	assert.Equal(t, "north-01", SchoolCodeIndexSK("  NORTH-01 "))
	assert.Equal(t, SchoolCodeIndexSK("North-01"), SchoolCodeIndexSK("north-01"),
		"codes differing only in case must map to the same index value")

	assert.Equal(t, "TENANT#t1#SCHOOLCODE", SchoolCodeIndexPK(TenantID("t1")))
}

func TestIndexAttrNames(t *testing.T) {
	assert.Equal(t, "GSI1PK", IndexEntity.PKAttr())
	assert.Equal(t, "GSI1SK", IndexEntity.SKAttr())
	assert.Equal(t, "GSI2PK", IndexYear.PKAttr())
	assert.Equal(t, "GSI3SK", IndexSchoolCode.SKAttr())
}
