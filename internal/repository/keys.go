package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "schoolhub-backend/internal/errors"
)

// KeySeparator joins the segments of hierarchical keys. It must never appear
// inside an identifier or distinct entities would collide on one key, so all
// identifiers are either generated internally (UUIDs) or validated before a
// key is built.
const KeySeparator = "#"

// Index attribute names carried on each record (single-table design).
const (
	AttrEntityIndexPK     = "GSI1PK"
	AttrEntityIndexSK     = "GSI1SK"
	AttrYearIndexPK       = "GSI2PK"
	AttrYearIndexSK       = "GSI2SK"
	AttrSchoolCodeIndexPK = "GSI3PK"
	AttrSchoolCodeIndexSK = "GSI3SK"
)

// IndexName identifies a logical secondary index of the entity table.
type IndexName string

const (
	// IndexEntity serves entity-centric queries: all sub-entities of a school.
	IndexEntity IndexName = "GSI1"
	// IndexYear serves year-scoped queries: periods and holidays of one year.
	IndexYear IndexName = "GSI2"
	// IndexSchoolCode serves school-code uniqueness lookups per tenant.
	IndexSchoolCode IndexName = "GSI3"
)

// PKAttr and SKAttr return the record attributes holding this index's keys.
func (n IndexName) PKAttr() string { return string(n) + "PK" }
func (n IndexName) SKAttr() string { return string(n) + "SK" }

// TenantID is the exclusive isolation boundary. Every key is derived from a
// TenantID, so no request can be constructed that crosses tenants.
type TenantID string

// NewTenantID validates a raw tenant identifier.
func NewTenantID(raw string) (TenantID, error) {
	if err := ValidateIdentifier(raw); err != nil {
		return "", apperrors.NewValidationError("invalid tenant id").WithField("tenantId", err.Error())
	}
	return TenantID(raw), nil
}

func (t TenantID) String() string { return string(t) }

// PartitionKey returns the physical partition key for this tenant.
func (t TenantID) PartitionKey() string {
	return "TENANT" + KeySeparator + string(t)
}

// Key addresses exactly one record inside one tenant partition. Keys are
// only constructible through the builders below, which is what keeps every
// store request tenant-scoped.
type Key struct {
	partitionKey string
	sortKey      string
}

func (k Key) PartitionKey() string { return k.partitionKey }
func (k Key) SortKey() string      { return k.sortKey }
func (k Key) IsZero() bool         { return k.partitionKey == "" }

func (k Key) String() string {
	return k.partitionKey + "/" + k.sortKey
}

// RawKey reconstructs a Key from stored partition and sort key values. It is
// meant for store implementations rebuilding records they read back; request
// keys are always built through the tenant-scoped builders below.
func RawKey(partitionKey, sortKey string) Key {
	return Key{partitionKey: partitionKey, sortKey: sortKey}
}

// ValidateIdentifier rejects identifiers that are empty or would corrupt the
// hierarchical key scheme.
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier must not be empty")
	}
	if strings.Contains(id, KeySeparator) {
		return fmt.Errorf("identifier must not contain %q", KeySeparator)
	}
	return nil
}

// NewID generates a fresh entity identifier. UUIDs cannot contain the key
// separator, so generated ids never need re-validation.
func NewID() string {
	return uuid.NewString()
}

func buildKey(tenant TenantID, segments ...string) (Key, error) {
	for i := 1; i < len(segments); i += 2 {
		if err := ValidateIdentifier(segments[i]); err != nil {
			return Key{}, apperrors.NewValidationError("invalid identifier").WithField(segments[i-1], err.Error())
		}
	}
	return Key{
		partitionKey: tenant.PartitionKey(),
		sortKey:      strings.Join(segments, KeySeparator),
	}, nil
}

// SchoolKey addresses a school record: SCHOOL#<id>.
func SchoolKey(tenant TenantID, schoolID string) (Key, error) {
	return buildKey(tenant, "SCHOOL", schoolID)
}

// DepartmentKey addresses a department record: SCHOOL#<id>#DEPT#<id>.
func DepartmentKey(tenant TenantID, schoolID, departmentID string) (Key, error) {
	return buildKey(tenant, "SCHOOL", schoolID, "DEPT", departmentID)
}

// YearKey addresses an academic year record: SCHOOL#<id>#YEAR#<id>.
func YearKey(tenant TenantID, schoolID, yearID string) (Key, error) {
	return buildKey(tenant, "SCHOOL", schoolID, "YEAR", yearID)
}

// PeriodKey addresses a grading period record: SCHOOL#<id>#YEAR#<id>#PERIOD#<id>.
func PeriodKey(tenant TenantID, schoolID, yearID, periodID string) (Key, error) {
	return buildKey(tenant, "SCHOOL", schoolID, "YEAR", yearID, "PERIOD", periodID)
}

// HolidayKey addresses a holiday record: SCHOOL#<id>#YEAR#<id>#HOLIDAY#<id>.
func HolidayKey(tenant TenantID, schoolID, yearID, holidayID string) (Key, error) {
	return buildKey(tenant, "SCHOOL", schoolID, "YEAR", yearID, "HOLIDAY", holidayID)
}

// ConfigurationKey addresses the one-per-school configuration record.
func ConfigurationKey(tenant TenantID, schoolID string) (Key, error) {
	if err := ValidateIdentifier(schoolID); err != nil {
		return Key{}, apperrors.NewValidationError("invalid identifier").WithField("schoolId", err.Error())
	}
	return Key{
		partitionKey: tenant.PartitionKey(),
		sortKey:      strings.Join([]string{"SCHOOL", schoolID, "CONFIG"}, KeySeparator),
	}, nil
}

// EntityIndexPK builds the entity-centric index partition value for a school.
func EntityIndexPK(tenant TenantID, schoolID string) string {
	return strings.Join([]string{tenant.PartitionKey(), "SCHOOL", schoolID}, KeySeparator)
}

// EntityIndexSK builds the entity-centric index sort value: <KIND>#<id>.
func EntityIndexSK(kind, id string) string {
	return kind + KeySeparator + id
}

// YearIndexPK builds the year-scoped index partition value. It concatenates
// the school and year ids with the fixed separator, which is safe because
// both ids are separator-free by construction.
func YearIndexPK(tenant TenantID, schoolID, yearID string) string {
	return strings.Join([]string{tenant.PartitionKey(), "SCHOOL", schoolID, "YEAR", yearID}, KeySeparator)
}

// YearIndexSK builds the year-scoped index sort value: <KIND>#<ordinal or id>.
func YearIndexSK(kind, suffix string) string {
	return kind + KeySeparator + suffix
}

// SchoolCodeIndexPK builds the uniqueness-index partition value for school
// codes within one tenant.
func SchoolCodeIndexPK(tenant TenantID) string {
	return tenant.PartitionKey() + KeySeparator + "SCHOOLCODE"
}

// SchoolCodeIndexSK normalizes a school code for case-insensitive uniqueness.
func SchoolCodeIndexSK(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
