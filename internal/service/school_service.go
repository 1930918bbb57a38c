package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"schoolhub-backend/internal/domain/school"
	apperrors "schoolhub-backend/internal/errors"
	"schoolhub-backend/internal/repository"
)

// SchoolService implements the school-scoped operations: schools,
// departments, and the per-school configuration.
type SchoolService struct {
	store     repository.DocumentStore
	publisher Publisher
	gate      *Gate
	retry     repository.Policy
	logger    *zap.Logger
	now       clock
}

// NewSchoolService wires a SchoolService.
func NewSchoolService(store repository.DocumentStore, publisher Publisher, gate *Gate, retry repository.Policy, logger *zap.Logger) *SchoolService {
	return &SchoolService{
		store:     store,
		publisher: publisher,
		gate:      gate,
		retry:     retry,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateSchool creates a school after checking that its code is unused in
// the tenant (case-insensitive).
func (s *SchoolService) CreateSchool(ctx context.Context, tenant repository.TenantID, actor string, req CreateSchoolRequest) (*school.School, error) {
	if err := s.gate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkSchoolCodeUnused(ctx, tenant, req.Code); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = school.StatusPlanned
	}

	now := s.now()
	sch := &school.School{
		ID:                 repository.NewID(),
		TenantID:           tenant.String(),
		Name:               req.Name,
		Code:               req.Code,
		Status:             status,
		MaxStudentCapacity: req.MaxStudentCapacity,
		Email:              req.Email,
		Phone:              req.Phone,
		Address: school.Address{
			Line1:       req.Address.Line1,
			Line2:       req.Address.Line2,
			City:        req.Address.City,
			State:       req.Address.State,
			PostalCode:  req.Address.PostalCode,
			CountryCode: req.Address.CountryCode,
			Timezone:    req.Address.Timezone,
		},
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
		Version:   1,
	}

	rec, err := schoolRecord(tenant, sch)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrRecordExists) {
			return nil, apperrors.NewInternalError(err)
		}
		return nil, mapWriteError(err, "school")
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventSchoolCreated,
		Timestamp: now,
		TenantID:  tenant.String(),
		SchoolID:  sch.ID,
		Payload:   sch,
	})
	return sch, nil
}

// GetSchool returns a school by id.
func (s *SchoolService) GetSchool(ctx context.Context, tenant repository.TenantID, schoolID string) (*school.School, error) {
	key, err := repository.SchoolKey(tenant, schoolID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, mapReadError(err, "school", schoolID)
	}
	return schoolFromRecord(rec), nil
}

// schoolSnapshots carries the before/after state across the retry loop so
// the event is published exactly once, after the loop.
type schoolSnapshots struct {
	before  *school.School
	after   *school.School
	changed bool
}

// UpdateSchool applies a partial update under optimistic concurrency. The
// live version is always re-read inside the loop: a stale caller-supplied
// version would reintroduce the lost-update bug this protocol prevents.
func (s *SchoolService) UpdateSchool(ctx context.Context, tenant repository.TenantID, actor string, schoolID string, req UpdateSchoolRequest) (*school.School, error) {
	if err := s.gate.Struct(req); err != nil {
		return nil, err
	}
	if req.Address != nil {
		if err := s.gate.Struct(*req.Address); err != nil {
			return nil, err
		}
	}

	key, err := repository.SchoolKey(tenant, schoolID)
	if err != nil {
		return nil, err
	}

	snaps, err := repository.Do(ctx, s.retry, func(ctx context.Context) (schoolSnapshots, error) {
		rec, err := s.store.Get(ctx, key)
		if err != nil {
			return schoolSnapshots{}, mapReadError(err, "school", schoolID)
		}
		before := schoolFromRecord(rec)

		if before.IsClosed() {
			return schoolSnapshots{}, apperrors.NewValidationError("a closed school cannot be modified")
		}

		patch := repository.NewPatch()
		repository.SetIfPresent(patch, fieldName, req.Name)
		repository.SetIfPresent(patch, fieldEmail, req.Email)
		repository.SetIfPresent(patch, fieldPhone, req.Phone)
		repository.SetIfPresent(patch, fieldCapacity, req.MaxStudentCapacity)
		if req.Status != nil && *req.Status != before.Status {
			if !before.Status.CanTransitionTo(*req.Status) {
				return schoolSnapshots{}, apperrors.NewInvalidTransitionError("school", string(before.Status), string(*req.Status))
			}
			patch.Set(fieldStatus, string(*req.Status))
		}
		if req.Address != nil {
			patch.Set(fieldAddressLine1, req.Address.Line1).
				Set(fieldAddressLine2, req.Address.Line2).
				Set(fieldCity, req.Address.City).
				Set(fieldState, req.Address.State).
				Set(fieldPostalCode, req.Address.PostalCode).
				Set(fieldCountryCode, req.Address.CountryCode).
				Set(fieldTimezone, req.Address.Timezone)
		}
		if patch.IsEmpty() {
			return schoolSnapshots{before: before, after: before}, nil
		}
		patch.Audit(actor, s.now())

		updated, err := s.store.ConditionalUpdate(ctx, key, patch, rec.Version)
		if err != nil {
			return schoolSnapshots{}, err
		}
		return schoolSnapshots{before: before, after: schoolFromRecord(updated), changed: true}, nil
	})
	if err != nil {
		return nil, mapWriteError(err, "school")
	}

	if snaps.changed {
		publish(ctx, s.publisher, s.logger, Event{
			EventType: EventSchoolUpdated,
			Timestamp: s.now(),
			TenantID:  tenant.String(),
			SchoolID:  schoolID,
			Payload:   ChangePayload{Before: snaps.before, After: snaps.after},
		})
	}
	return snaps.after, nil
}

// SoftDeleteSchool transitions a school to closed. Closed is terminal and
// the record is never physically removed; children are not cascaded (their
// lifecycle is bounded by the parent in application logic only).
func (s *SchoolService) SoftDeleteSchool(ctx context.Context, tenant repository.TenantID, actor string, schoolID string) (*school.School, error) {
	key, err := repository.SchoolKey(tenant, schoolID)
	if err != nil {
		return nil, err
	}

	closed, err := repository.Do(ctx, s.retry, func(ctx context.Context) (*school.School, error) {
		rec, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, mapReadError(err, "school", schoolID)
		}
		cur := schoolFromRecord(rec)
		if !cur.Status.CanTransitionTo(school.StatusClosed) {
			return nil, apperrors.NewInvalidTransitionError("school", string(cur.Status), string(school.StatusClosed))
		}

		patch := repository.NewPatch().
			Set(fieldStatus, string(school.StatusClosed)).
			Audit(actor, s.now())
		updated, err := s.store.ConditionalUpdate(ctx, key, patch, rec.Version)
		if err != nil {
			return nil, err
		}
		return schoolFromRecord(updated), nil
	})
	if err != nil {
		return nil, mapWriteError(err, "school")
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventSchoolClosed,
		Timestamp: s.now(),
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload:   closed,
	})
	return closed, nil
}

// CreateDepartment creates a department under a school. The department code
// is unique within the school, case-insensitively.
func (s *SchoolService) CreateDepartment(ctx context.Context, tenant repository.TenantID, actor string, schoolID string, req CreateDepartmentRequest) (*school.Department, error) {
	if err := s.gate.Struct(req); err != nil {
		return nil, err
	}

	parent, err := s.GetSchool(ctx, tenant, schoolID)
	if err != nil {
		return nil, err
	}
	if parent.IsClosed() {
		return nil, apperrors.NewValidationError("cannot add a department to a closed school")
	}

	siblings, err := s.ListDepartments(ctx, tenant, schoolID)
	if err != nil {
		return nil, err
	}
	normalized := strings.ToLower(strings.TrimSpace(req.Code))
	for _, d := range siblings {
		if strings.ToLower(d.Code) == normalized {
			return nil, apperrors.NewUniquenessConflictError("department code already exists in this school").
				WithField("code", req.Code)
		}
	}

	now := s.now()
	dept := &school.Department{
		ID:        repository.NewID(),
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Name:      req.Name,
		Code:      req.Code,
		HeadName:  req.HeadName,
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
		Version:   1,
	}

	rec, err := departmentRecord(tenant, dept)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, mapWriteError(err, "department")
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventDepartmentCreated,
		Timestamp: now,
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload:   dept,
	})
	return dept, nil
}

// ListDepartments returns all departments of a school, ordered by name.
func (s *SchoolService) ListDepartments(ctx context.Context, tenant repository.TenantID, schoolID string) ([]*school.Department, error) {
	recs, err := s.store.Query(ctx, repository.Query{
		Index:          repository.IndexEntity,
		PartitionValue: repository.EntityIndexPK(tenant, schoolID),
		SortKeyPrefix:  kindDept + repository.KeySeparator,
	})
	if err != nil {
		return nil, mapReadError(err, "departments", schoolID)
	}

	departments := make([]*school.Department, 0, len(recs))
	for _, rec := range recs {
		departments = append(departments, departmentFromRecord(rec))
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments, nil
}

// UpsertSchoolConfiguration creates or replaces the school's configuration.
// A lost creation race degrades into the conditional-update path on retry.
func (s *SchoolService) UpsertSchoolConfiguration(ctx context.Context, tenant repository.TenantID, actor string, schoolID string, req UpsertConfigurationRequest) (*school.Configuration, error) {
	if err := s.gate.Struct(req); err != nil {
		return nil, err
	}

	parent, err := s.GetSchool(ctx, tenant, schoolID)
	if err != nil {
		return nil, err
	}
	if parent.IsClosed() {
		return nil, apperrors.NewValidationError("cannot configure a closed school")
	}

	key, err := repository.ConfigurationKey(tenant, schoolID)
	if err != nil {
		return nil, err
	}

	cfg, err := repository.Do(ctx, s.retry, func(ctx context.Context) (*school.Configuration, error) {
		rec, err := s.store.Get(ctx, key)
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return s.createConfiguration(ctx, tenant, actor, schoolID, req)
		case err != nil:
			return nil, mapReadError(err, "school configuration", schoolID)
		}

		patch := repository.NewPatch().
			Set(fieldGradeScale, req.GradeScale).
			Set(fieldPassingGrade, req.PassingGradePercent).
			Set(fieldAttendance, req.AttendanceTracking).
			Set(fieldParentNotify, req.ParentNotifications).
			Set(fieldLocale, req.DefaultLocale).
			Set(fieldFirstDay, req.FirstDayOfWeek).
			Audit(actor, s.now())

		updated, err := s.store.ConditionalUpdate(ctx, key, patch, rec.Version)
		if err != nil {
			return nil, err
		}
		return configurationFromRecord(updated), nil
	})
	if err != nil {
		return nil, mapWriteError(err, "school configuration")
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventConfigurationUpserted,
		Timestamp: s.now(),
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload:   cfg,
	})
	return cfg, nil
}

func (s *SchoolService) createConfiguration(ctx context.Context, tenant repository.TenantID, actor string, schoolID string, req UpsertConfigurationRequest) (*school.Configuration, error) {
	now := s.now()
	cfg := &school.Configuration{
		TenantID:            tenant.String(),
		SchoolID:            schoolID,
		GradeScale:          req.GradeScale,
		PassingGradePercent: req.PassingGradePercent,
		AttendanceTracking:  req.AttendanceTracking,
		ParentNotifications: req.ParentNotifications,
		DefaultLocale:       req.DefaultLocale,
		FirstDayOfWeek:      req.FirstDayOfWeek,
		CreatedAt:           now,
		CreatedBy:           actor,
		UpdatedAt:           now,
		UpdatedBy:           actor,
		Version:             1,
	}
	rec, err := configurationRecord(tenant, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrRecordExists) {
			// Another writer created it first; retry as an update.
			return nil, repository.ErrVersionConflict
		}
		return nil, err
	}
	return cfg, nil
}

// GetSchoolConfiguration returns the school's configuration.
func (s *SchoolService) GetSchoolConfiguration(ctx context.Context, tenant repository.TenantID, schoolID string) (*school.Configuration, error) {
	key, err := repository.ConfigurationKey(tenant, schoolID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, mapReadError(err, "school configuration", schoolID)
	}
	return configurationFromRecord(rec), nil
}

// checkSchoolCodeUnused queries the code uniqueness index for an exact,
// case-insensitive match within the tenant.
func (s *SchoolService) checkSchoolCodeUnused(ctx context.Context, tenant repository.TenantID, code string) error {
	normalized := repository.SchoolCodeIndexSK(code)
	recs, err := s.store.Query(ctx, repository.Query{
		Index:          repository.IndexSchoolCode,
		PartitionValue: repository.SchoolCodeIndexPK(tenant),
		SortKeyPrefix:  normalized,
	})
	if err != nil {
		return mapReadError(err, "school code", code)
	}
	for _, rec := range recs {
		if rec.IndexKeys[repository.AttrSchoolCodeIndexSK] == normalized {
			return apperrors.NewUniquenessConflictError("school code already exists in this tenant").
				WithField("code", code)
		}
	}
	return nil
}
