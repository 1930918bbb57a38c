package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolhub-backend/internal/domain/school"
	apperrors "schoolhub-backend/internal/errors"
	"schoolhub-backend/internal/repository"
)

func TestCreateSchool(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")

	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("NORTH-01"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, school.StatusPlanned, created.Status, "status defaults to planned")
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, "admin", created.CreatedBy)

	got, err := f.schools.GetSchool(context.Background(), tenant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "NORTH-01", got.Code)
	assert.Equal(t, "America/New_York", got.Address.Timezone)

	assert.Len(t, f.publisher.byType(EventSchoolCreated), 1)
}

func TestCreateSchoolValidation(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")

	req := validSchoolRequest("NORTH-01")
	req.Address.Timezone = ""
	_, err := f.schools.CreateSchool(context.Background(), tenant, "admin", req)
	assert.True(t, apperrors.IsValidation(err), "missing timezone must fail validation")

	req = validSchoolRequest("BAD#CODE")
	_, err = f.schools.CreateSchool(context.Background(), tenant, "admin", req)
	assert.True(t, apperrors.IsValidation(err), "separator in code must fail validation")

	req = validSchoolRequest("NORTH-02")
	req.MaxStudentCapacity = 0
	_, err = f.schools.CreateSchool(context.Background(), tenant, "admin", req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSchoolCodeUniquenessCaseInsensitive(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")

	_, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("North-01"))
	require.NoError(t, err)

	_, err = f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("NORTH-01"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUniquenessConflict),
		"same code with different case must conflict")

	// Same code in another tenant is fine.
	_, err = f.schools.CreateSchool(context.Background(), repository.TenantID("t2"), "admin", validSchoolRequest("NORTH-01"))
	assert.NoError(t, err)
}

func TestUpdateSchool(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	name := "Renamed High"
	capacity := 900
	updated, err := f.schools.UpdateSchool(context.Background(), tenant, "editor", created.ID, UpdateSchoolRequest{
		Name:               &name,
		MaxStudentCapacity: &capacity,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed High", updated.Name)
	assert.Equal(t, 900, updated.MaxStudentCapacity)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "editor", updated.UpdatedBy)
	assert.Equal(t, "N-01", updated.Code, "code is immutable")

	events := f.publisher.byType(EventSchoolUpdated)
	require.Len(t, events, 1)
	change := events[0].Payload.(ChangePayload)
	assert.Equal(t, "North High School", change.Before.(*school.School).Name)
	assert.Equal(t, "Renamed High", change.After.(*school.School).Name)
}

func TestUpdateSchoolEmptyPatchIsNoOp(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	updated, err := f.schools.UpdateSchool(context.Background(), tenant, "editor", created.ID, UpdateSchoolRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Version, "no fields set must not bump the version")
	assert.Empty(t, f.publisher.byType(EventSchoolUpdated), "no-op must not publish")
}

func TestUpdateSchoolStatusTransition(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	active := school.StatusActive
	updated, err := f.schools.UpdateSchool(context.Background(), tenant, "editor", created.ID, UpdateSchoolRequest{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, school.StatusActive, updated.Status)

	// Same status again is ignored, not rejected.
	updated, err = f.schools.UpdateSchool(context.Background(), tenant, "editor", created.ID, UpdateSchoolRequest{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
}

func TestUpdateClosedSchoolRejected(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	_, err = f.schools.SoftDeleteSchool(context.Background(), tenant, "admin", created.ID)
	require.NoError(t, err)

	name := "New Name"
	_, err = f.schools.UpdateSchool(context.Background(), tenant, "editor", created.ID, UpdateSchoolRequest{Name: &name})
	assert.True(t, apperrors.IsValidation(err), "closed school must reject updates")
}

func TestSoftDeleteSchool(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	closed, err := f.schools.SoftDeleteSchool(context.Background(), tenant, "admin", created.ID)
	require.NoError(t, err)
	assert.Equal(t, school.StatusClosed, closed.Status)
	assert.Equal(t, 2, closed.Version)

	// The record survives; closure is a status change, not a delete.
	got, err := f.schools.GetSchool(context.Background(), tenant, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsClosed())

	// Closed is terminal.
	_, err = f.schools.SoftDeleteSchool(context.Background(), tenant, "admin", created.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidStatusTransition))

	assert.Len(t, f.publisher.byType(EventSchoolClosed), 1)
}

func TestConcurrentUpdateRetriesAgainstLiveVersion(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	// A concurrent writer lands between this service's read and write: the
	// first conditional update fails on the stale version, the retry re-reads
	// and succeeds against the live one.
	intercept := &interceptStore{DocumentStore: f.store}
	intercept.beforeCond = func() {
		key, kerr := repository.SchoolKey(tenant, created.ID)
		require.NoError(t, kerr)
		patch := repository.NewPatch().Set(fieldName, "raced ahead").Audit("rival", time.Now())
		_, uerr := f.store.ConditionalUpdate(context.Background(), key, patch, 1)
		require.NoError(t, uerr)
	}

	svc := NewSchoolService(intercept, f.publisher, NewGate(), fastPolicy(), zap.NewNop())

	capacity := 800
	updated, err := svc.UpdateSchool(context.Background(), tenant, "editor", created.ID, UpdateSchoolRequest{
		MaxStudentCapacity: &capacity,
	})
	require.NoError(t, err)

	// Rival's write bumped to 2; ours retried and landed on 3 without
	// clobbering the rival's change.
	assert.Equal(t, 3, updated.Version)
	assert.Equal(t, "raced ahead", updated.Name)
	assert.Equal(t, 800, updated.MaxStudentCapacity)
}

func TestCreateDepartment(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	dept, err := f.schools.CreateDepartment(context.Background(), tenant, "admin", created.ID, CreateDepartmentRequest{
		Name: "Mathematics",
		Code: "MATH",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dept.Version)

	// Duplicate code, different case, same school: conflict.
	_, err = f.schools.CreateDepartment(context.Background(), tenant, "admin", created.ID, CreateDepartmentRequest{
		Name: "More Math",
		Code: "math",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUniquenessConflict))

	// Same code under a different school is fine.
	other, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("S-02"))
	require.NoError(t, err)
	_, err = f.schools.CreateDepartment(context.Background(), tenant, "admin", other.ID, CreateDepartmentRequest{
		Name: "Mathematics",
		Code: "MATH",
	})
	assert.NoError(t, err)

	depts, err := f.schools.ListDepartments(context.Background(), tenant, created.ID)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, "MATH", depts[0].Code)
}

func TestCreateDepartmentUnknownSchool(t *testing.T) {
	f := newFixture()
	_, err := f.schools.CreateDepartment(context.Background(), repository.TenantID("t1"), "admin", "missing", CreateDepartmentRequest{
		Name: "Mathematics",
		Code: "MATH",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpsertSchoolConfiguration(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	cfg, err := f.schools.UpsertSchoolConfiguration(context.Background(), tenant, "admin", created.ID, UpsertConfigurationRequest{
		GradeScale:          "letter",
		PassingGradePercent: 60,
		AttendanceTracking:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)

	// Second upsert replaces in place and bumps the version.
	cfg, err = f.schools.UpsertSchoolConfiguration(context.Background(), tenant, "admin", created.ID, UpsertConfigurationRequest{
		GradeScale:          "percentage",
		PassingGradePercent: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)
	assert.Equal(t, "percentage", cfg.GradeScale)

	got, err := f.schools.GetSchoolConfiguration(context.Background(), tenant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.PassingGradePercent)

	assert.Len(t, f.publisher.byType(EventConfigurationUpserted), 2)
}

func TestGetMissingConfiguration(t *testing.T) {
	f := newFixture()
	tenant := repository.TenantID("t1")
	created, err := f.schools.CreateSchool(context.Background(), tenant, "admin", validSchoolRequest("N-01"))
	require.NoError(t, err)

	_, err = f.schools.GetSchoolConfiguration(context.Background(), tenant, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
