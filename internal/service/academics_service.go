package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"schoolhub-backend/internal/domain/academics"
	"schoolhub-backend/internal/domain/school"
	apperrors "schoolhub-backend/internal/errors"
	"schoolhub-backend/internal/repository"
)

// AcademicsService implements the year-scoped operations: academic years,
// grading periods, and holidays. It owns the one place in the system that
// needs cross-record atomicity, the current-year invariant transaction.
type AcademicsService struct {
	store     repository.DocumentStore
	publisher Publisher
	gate      *Gate
	retry     repository.Policy
	logger    *zap.Logger
	now       clock

	schools *SchoolService
}

// NewAcademicsService wires an AcademicsService. It reads parent schools
// through the SchoolService so the closed-school rules live in one place.
func NewAcademicsService(store repository.DocumentStore, publisher Publisher, gate *Gate, retry repository.Policy, logger *zap.Logger, schools *SchoolService) *AcademicsService {
	return &AcademicsService{
		store:     store,
		publisher: publisher,
		gate:      gate,
		retry:     retry,
		logger:    logger,
		now:       time.Now,
		schools:   schools,
	}
}

// CreateAcademicYear creates a year under a school. When the request marks
// it current, the current-year transaction runs after creation so any
// previously current year is demoted atomically.
func (s *AcademicsService) CreateAcademicYear(ctx context.Context, tenant repository.TenantID, actor string, schoolID string, req CreateAcademicYearRequest) (*academics.Year, error) {
	if err := s.gate.Struct(req); err != nil {
		return nil, err
	}
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := validateYearDates(startDate, endDate); err != nil {
		return nil, err
	}

	parent, err := s.schools.GetSchool(ctx, tenant, schoolID)
	if err != nil {
		return nil, err
	}
	if parent.Status == school.StatusClosed {
		return nil, apperrors.NewValidationError("cannot add an academic year to a closed school")
	}

	now := s.now()
	year := &academics.Year{
		ID:        repository.NewID(),
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    academics.StatusPlanned,
		IsCurrent: false,
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
		Version:   1,
	}

	rec, err := yearRecord(tenant, year)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, mapWriteError(err, "academic year")
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventAcademicYearCreated,
		Timestamp: now,
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload:   year,
	})

	if req.IsCurrent {
		return s.SetCurrentAcademicYear(ctx, tenant, actor, schoolID, year.ID)
	}
	return year, nil
}

// GetAcademicYear returns one year by id.
func (s *AcademicsService) GetAcademicYear(ctx context.Context, tenant repository.TenantID, schoolID, yearID string) (*academics.Year, error) {
	key, err := repository.YearKey(tenant, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, mapReadError(err, "academic year", yearID)
	}
	return yearFromRecord(rec), nil
}

// ListAcademicYears returns all years of a school ordered by start date.
func (s *AcademicsService) ListAcademicYears(ctx context.Context, tenant repository.TenantID, schoolID string) ([]*academics.Year, error) {
	recs, err := s.store.Query(ctx, repository.Query{
		Index:          repository.IndexEntity,
		PartitionValue: repository.EntityIndexPK(tenant, schoolID),
		SortKeyPrefix:  kindYear + repository.KeySeparator,
	})
	if err != nil {
		return nil, mapReadError(err, "academic years", schoolID)
	}

	years := make([]*academics.Year, 0, len(recs))
	for _, rec := range recs {
		years = append(years, yearFromRecord(rec))
	}
	sort.Slice(years, func(i, j int) bool { return years[i].StartDate.Before(years[j].StartDate) })
	return years, nil
}

// GetCurrentAcademicYear returns the school's single current year.
func (s *AcademicsService) GetCurrentAcademicYear(ctx context.Context, tenant repository.TenantID, schoolID string) (*academics.Year, error) {
	years, err := s.ListAcademicYears(ctx, tenant, schoolID)
	if err != nil {
		return nil, err
	}
	for _, y := range years {
		if y.IsCurrent {
			return y, nil
		}
	}
	return nil, apperrors.NewNotFoundError("current academic year for school", schoolID)
}

// SetCurrentAcademicYear atomically marks the target year current and every
// other year of the school not current. Each write in the batch is guarded
// by that year's version, so any concurrent writer aborts the whole batch
// and the operation retries against fresh state.
func (s *AcademicsService) SetCurrentAcademicYear(ctx context.Context, tenant repository.TenantID, actor string, schoolID, yearID string) (*academics.Year, error) {
	var previousID string

	err := repository.DoVoid(ctx, s.retry, func(ctx context.Context) error {
		years, err := s.ListAcademicYears(ctx, tenant, schoolID)
		if err != nil {
			return err
		}

		var target *academics.Year
		for _, y := range years {
			if y.ID == yearID {
				target = y
			} else if y.IsCurrent {
				previousID = y.ID
			}
		}
		if target == nil {
			return apperrors.NewNotFoundError("academic year", yearID)
		}
		if target.Status == academics.StatusArchived {
			return apperrors.NewValidationError("an archived academic year cannot be made current")
		}

		writes, err := s.currentYearWrites(tenant, actor, years, yearID, nil)
		if err != nil {
			return err
		}
		if len(writes) == 0 {
			return nil
		}
		return s.store.TransactWrite(ctx, writes)
	})
	if err != nil {
		return nil, mapWriteError(err, "academic year")
	}

	current, err := s.GetAcademicYear(ctx, tenant, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventCurrentYearChanged,
		Timestamp: s.now(),
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload: map[string]any{
			"previousYearId": previousID,
			"currentYearId":  yearID,
		},
	})
	return current, nil
}

// currentYearWrites builds one version-guarded write for every year whose
// isCurrent flag differs from its desired value. extraTargetPatch, when
// non-nil, folds additional target fields (a status change) into the same
// atomic batch.
func (s *AcademicsService) currentYearWrites(tenant repository.TenantID, actor string, years []*academics.Year, targetID string, extraTargetPatch map[string]any) ([]repository.ConditionalWrite, error) {
	now := s.now()
	var writes []repository.ConditionalWrite
	for _, y := range years {
		desired := y.ID == targetID
		patch := repository.NewPatch()
		if y.IsCurrent != desired {
			patch.Set(fieldIsCurrent, desired)
		}
		if desired {
			for field, value := range extraTargetPatch {
				patch.Set(field, value)
			}
		}
		if patch.IsEmpty() {
			continue
		}
		patch.Audit(actor, now)

		key, err := repository.YearKey(tenant, y.SchoolID, y.ID)
		if err != nil {
			return nil, err
		}
		writes = append(writes, repository.ConditionalWrite{
			Key:             key,
			Patch:           patch,
			ExpectedVersion: y.Version,
		})
	}
	return writes, nil
}

// UpdateAcademicYearStatus advances a year along its linear status machine.
// Activating a year that is not current also makes it current; the status
// change and the sibling demotions commit in one atomic batch so no
// observer sees an active year that is not current.
func (s *AcademicsService) UpdateAcademicYearStatus(ctx context.Context, tenant repository.TenantID, actor string, schoolID, yearID string, newStatus academics.Status) (*academics.Year, error) {
	if !academics.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown academic year status %q", newStatus))
	}

	key, err := repository.YearKey(tenant, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	madeCurrent := false
	err = repository.DoVoid(ctx, s.retry, func(ctx context.Context) error {
		rec, err := s.store.Get(ctx, key)
		if err != nil {
			return mapReadError(err, "academic year", yearID)
		}
		year := yearFromRecord(rec)

		if !year.Status.CanTransitionTo(newStatus) {
			return apperrors.NewInvalidTransitionError("academic year", string(year.Status), string(newStatus))
		}

		if newStatus == academics.StatusActive && !year.IsCurrent {
			years, err := s.ListAcademicYears(ctx, tenant, schoolID)
			if err != nil {
				return err
			}
			writes, err := s.currentYearWrites(tenant, actor, years, yearID, map[string]any{
				fieldStatus: string(newStatus),
			})
			if err != nil {
				return err
			}
			madeCurrent = true
			return s.store.TransactWrite(ctx, writes)
		}

		patch := repository.NewPatch().
			Set(fieldStatus, string(newStatus)).
			Audit(actor, s.now())
		_, err = s.store.ConditionalUpdate(ctx, key, patch, rec.Version)
		return err
	})
	if err != nil {
		return nil, mapWriteError(err, "academic year")
	}

	updated, err := s.GetAcademicYear(ctx, tenant, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventYearStatusChanged,
		Timestamp: s.now(),
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload: map[string]any{
			"yearId": yearID,
			"status": string(newStatus),
		},
	})
	if madeCurrent {
		publish(ctx, s.publisher, s.logger, Event{
			EventType: EventCurrentYearChanged,
			Timestamp: s.now(),
			TenantID:  tenant.String(),
			SchoolID:  schoolID,
			Payload: map[string]any{
				"currentYearId": yearID,
			},
		})
	}
	return updated, nil
}

// CreateGradingPeriod creates a period inside a year. The period's range
// must lie within the year and must not overlap any sibling period.
func (s *AcademicsService) CreateGradingPeriod(ctx context.Context, tenant repository.TenantID, actor string, schoolID, yearID string, req CreateGradingPeriodRequest) (*academics.GradingPeriod, error) {
	if err := s.gate.Struct(req); err != nil {
		return nil, err
	}
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	year, err := s.GetAcademicYear(ctx, tenant, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	if !year.Contains(startDate, endDate) {
		return nil, apperrors.NewValidationError("grading period dates must lie within the academic year")
	}

	siblings, err := s.ListGradingPeriods(ctx, tenant, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	for _, p := range siblings {
		if p.PeriodNumber == req.PeriodNumber {
			return nil, apperrors.NewValidationError(fmt.Sprintf("period number %d already exists in this year", req.PeriodNumber))
		}
		if academics.Overlaps(startDate, endDate, p.StartDate, p.EndDate) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("grading period dates overlap period %q", p.Name))
		}
	}

	now := s.now()
	period := &academics.GradingPeriod{
		ID:           repository.NewID(),
		TenantID:     tenant.String(),
		SchoolID:     schoolID,
		YearID:       yearID,
		Name:         req.Name,
		PeriodNumber: req.PeriodNumber,
		StartDate:    startDate,
		EndDate:      endDate,
		CreatedAt:    now,
		CreatedBy:    actor,
		UpdatedAt:    now,
		UpdatedBy:    actor,
		Version:      1,
	}

	rec, err := periodRecord(tenant, period)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, mapWriteError(err, "grading period")
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventGradingPeriodCreated,
		Timestamp: now,
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload:   period,
	})
	return period, nil
}

// ListGradingPeriods returns the year's periods ordered by period number.
func (s *AcademicsService) ListGradingPeriods(ctx context.Context, tenant repository.TenantID, schoolID, yearID string) ([]*academics.GradingPeriod, error) {
	recs, err := s.store.Query(ctx, repository.Query{
		Index:          repository.IndexYear,
		PartitionValue: repository.YearIndexPK(tenant, schoolID, yearID),
		SortKeyPrefix:  kindPeriod + repository.KeySeparator,
	})
	if err != nil {
		return nil, mapReadError(err, "grading periods", yearID)
	}

	periods := make([]*academics.GradingPeriod, 0, len(recs))
	for _, rec := range recs {
		periods = append(periods, periodFromRecord(rec))
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].PeriodNumber < periods[j].PeriodNumber })
	return periods, nil
}

// CreateHoliday creates a holiday inside a year; its range must lie within
// the year.
func (s *AcademicsService) CreateHoliday(ctx context.Context, tenant repository.TenantID, actor string, schoolID, yearID string, req CreateHolidayRequest) (*academics.Holiday, error) {
	if err := s.gate.Struct(req); err != nil {
		return nil, err
	}
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	year, err := s.GetAcademicYear(ctx, tenant, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	if !year.Contains(startDate, endDate) {
		return nil, apperrors.NewValidationError("holiday dates must lie within the academic year")
	}

	now := s.now()
	holiday := &academics.Holiday{
		ID:        repository.NewID(),
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		YearID:    yearID,
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Recurring: req.Recurring,
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
		Version:   1,
	}

	rec, err := holidayRecord(tenant, holiday)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, mapWriteError(err, "holiday")
	}

	publish(ctx, s.publisher, s.logger, Event{
		EventType: EventHolidayCreated,
		Timestamp: now,
		TenantID:  tenant.String(),
		SchoolID:  schoolID,
		Payload:   holiday,
	})
	return holiday, nil
}

// ListHolidays returns the year's holidays ordered by start date.
func (s *AcademicsService) ListHolidays(ctx context.Context, tenant repository.TenantID, schoolID, yearID string) ([]*academics.Holiday, error) {
	recs, err := s.store.Query(ctx, repository.Query{
		Index:          repository.IndexYear,
		PartitionValue: repository.YearIndexPK(tenant, schoolID, yearID),
		SortKeyPrefix:  kindHoliday + repository.KeySeparator,
	})
	if err != nil {
		return nil, mapReadError(err, "holidays", yearID)
	}

	holidays := make([]*academics.Holiday, 0, len(recs))
	for _, rec := range recs {
		holidays = append(holidays, holidayFromRecord(rec))
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].StartDate.Before(holidays[j].StartDate) })
	return holidays, nil
}
