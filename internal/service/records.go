package service

import (
	"fmt"

	"schoolhub-backend/internal/domain/academics"
	"schoolhub-backend/internal/domain/school"
	"schoolhub-backend/internal/repository"
)

// Payload attribute names. Dates are stored as calendar-date strings so both
// store implementations round-trip them identically.
const (
	fieldName         = "Name"
	fieldCode         = "Code"
	fieldStatus       = "Status"
	fieldCapacity     = "MaxStudentCapacity"
	fieldEmail        = "Email"
	fieldPhone        = "Phone"
	fieldHeadName     = "HeadName"
	fieldSchoolID     = "SchoolID"
	fieldYearID       = "YearID"
	fieldEntityID     = "ID"
	fieldStartDate    = "StartDate"
	fieldEndDate      = "EndDate"
	fieldIsCurrent    = "IsCurrent"
	fieldPeriodNumber = "PeriodNumber"
	fieldRecurring    = "Recurring"

	fieldAddressLine1 = "AddressLine1"
	fieldAddressLine2 = "AddressLine2"
	fieldCity         = "City"
	fieldState        = "State"
	fieldPostalCode   = "PostalCode"
	fieldCountryCode  = "CountryCode"
	fieldTimezone     = "Timezone"

	fieldGradeScale   = "GradeScale"
	fieldPassingGrade = "PassingGradePercent"
	fieldAttendance   = "AttendanceTracking"
	fieldParentNotify = "ParentNotifications"
	fieldLocale       = "DefaultLocale"
	fieldFirstDay     = "FirstDayOfWeek"
)

// Index sort-key kinds on the entity-centric and year-scoped indexes.
const (
	kindSchool  = "SCHOOL"
	kindDept    = "DEPT"
	kindYear    = "YEAR"
	kindPeriod  = "PERIOD"
	kindHoliday = "HOLIDAY"
)

func schoolRecord(tenant repository.TenantID, s *school.School) (*repository.Record, error) {
	key, err := repository.SchoolKey(tenant, s.ID)
	if err != nil {
		return nil, err
	}
	return &repository.Record{
		TenantID:   s.TenantID,
		EntityKey:  key,
		EntityType: repository.EntityTypeSchool,
		Version:    s.Version,
		CreatedAt:  s.CreatedAt,
		CreatedBy:  s.CreatedBy,
		UpdatedAt:  s.UpdatedAt,
		UpdatedBy:  s.UpdatedBy,
		IndexKeys: map[string]string{
			repository.AttrEntityIndexPK:     repository.EntityIndexPK(tenant, s.ID),
			repository.AttrEntityIndexSK:     repository.EntityIndexSK(kindSchool, s.ID),
			repository.AttrSchoolCodeIndexPK: repository.SchoolCodeIndexPK(tenant),
			repository.AttrSchoolCodeIndexSK: repository.SchoolCodeIndexSK(s.Code),
		},
		Attributes: map[string]any{
			fieldEntityID:     s.ID,
			fieldName:         s.Name,
			fieldCode:         s.Code,
			fieldStatus:       string(s.Status),
			fieldCapacity:     s.MaxStudentCapacity,
			fieldEmail:        s.Email,
			fieldPhone:        s.Phone,
			fieldAddressLine1: s.Address.Line1,
			fieldAddressLine2: s.Address.Line2,
			fieldCity:         s.Address.City,
			fieldState:        s.Address.State,
			fieldPostalCode:   s.Address.PostalCode,
			fieldCountryCode:  s.Address.CountryCode,
			fieldTimezone:     s.Address.Timezone,
		},
	}, nil
}

func schoolFromRecord(rec *repository.Record) *school.School {
	return &school.School{
		ID:                 rec.String(fieldEntityID),
		TenantID:           rec.TenantID,
		Name:               rec.String(fieldName),
		Code:               rec.String(fieldCode),
		Status:             school.Status(rec.String(fieldStatus)),
		MaxStudentCapacity: rec.Int(fieldCapacity),
		Email:              rec.String(fieldEmail),
		Phone:              rec.String(fieldPhone),
		Address: school.Address{
			Line1:       rec.String(fieldAddressLine1),
			Line2:       rec.String(fieldAddressLine2),
			City:        rec.String(fieldCity),
			State:       rec.String(fieldState),
			PostalCode:  rec.String(fieldPostalCode),
			CountryCode: rec.String(fieldCountryCode),
			Timezone:    rec.String(fieldTimezone),
		},
		CreatedAt: rec.CreatedAt,
		CreatedBy: rec.CreatedBy,
		UpdatedAt: rec.UpdatedAt,
		UpdatedBy: rec.UpdatedBy,
		Version:   rec.Version,
	}
}

func departmentRecord(tenant repository.TenantID, d *school.Department) (*repository.Record, error) {
	key, err := repository.DepartmentKey(tenant, d.SchoolID, d.ID)
	if err != nil {
		return nil, err
	}
	return &repository.Record{
		TenantID:   d.TenantID,
		EntityKey:  key,
		EntityType: repository.EntityTypeDepartment,
		Version:    d.Version,
		CreatedAt:  d.CreatedAt,
		CreatedBy:  d.CreatedBy,
		UpdatedAt:  d.UpdatedAt,
		UpdatedBy:  d.UpdatedBy,
		IndexKeys: map[string]string{
			repository.AttrEntityIndexPK: repository.EntityIndexPK(tenant, d.SchoolID),
			repository.AttrEntityIndexSK: repository.EntityIndexSK(kindDept, d.ID),
		},
		Attributes: map[string]any{
			fieldEntityID: d.ID,
			fieldSchoolID: d.SchoolID,
			fieldName:     d.Name,
			fieldCode:     d.Code,
			fieldHeadName: d.HeadName,
		},
	}, nil
}

func departmentFromRecord(rec *repository.Record) *school.Department {
	return &school.Department{
		ID:        rec.String(fieldEntityID),
		TenantID:  rec.TenantID,
		SchoolID:  rec.String(fieldSchoolID),
		Name:      rec.String(fieldName),
		Code:      rec.String(fieldCode),
		HeadName:  rec.String(fieldHeadName),
		CreatedAt: rec.CreatedAt,
		CreatedBy: rec.CreatedBy,
		UpdatedAt: rec.UpdatedAt,
		UpdatedBy: rec.UpdatedBy,
		Version:   rec.Version,
	}
}

func yearRecord(tenant repository.TenantID, y *academics.Year) (*repository.Record, error) {
	key, err := repository.YearKey(tenant, y.SchoolID, y.ID)
	if err != nil {
		return nil, err
	}
	return &repository.Record{
		TenantID:   y.TenantID,
		EntityKey:  key,
		EntityType: repository.EntityTypeAcademicYear,
		Version:    y.Version,
		CreatedAt:  y.CreatedAt,
		CreatedBy:  y.CreatedBy,
		UpdatedAt:  y.UpdatedAt,
		UpdatedBy:  y.UpdatedBy,
		IndexKeys: map[string]string{
			repository.AttrEntityIndexPK: repository.EntityIndexPK(tenant, y.SchoolID),
			repository.AttrEntityIndexSK: repository.EntityIndexSK(kindYear, y.ID),
		},
		Attributes: map[string]any{
			fieldEntityID:  y.ID,
			fieldSchoolID:  y.SchoolID,
			fieldName:      y.Name,
			fieldStartDate: y.StartDate.Format(academics.DateLayout),
			fieldEndDate:   y.EndDate.Format(academics.DateLayout),
			fieldStatus:    string(y.Status),
			fieldIsCurrent: y.IsCurrent,
		},
	}, nil
}

func yearFromRecord(rec *repository.Record) *academics.Year {
	startDate, _ := parseDate(rec.String(fieldStartDate))
	endDate, _ := parseDate(rec.String(fieldEndDate))
	return &academics.Year{
		ID:        rec.String(fieldEntityID),
		TenantID:  rec.TenantID,
		SchoolID:  rec.String(fieldSchoolID),
		Name:      rec.String(fieldName),
		StartDate: startDate,
		EndDate:   endDate,
		Status:    academics.Status(rec.String(fieldStatus)),
		IsCurrent: rec.Bool(fieldIsCurrent),
		CreatedAt: rec.CreatedAt,
		CreatedBy: rec.CreatedBy,
		UpdatedAt: rec.UpdatedAt,
		UpdatedBy: rec.UpdatedBy,
		Version:   rec.Version,
	}
}

func periodRecord(tenant repository.TenantID, p *academics.GradingPeriod) (*repository.Record, error) {
	key, err := repository.PeriodKey(tenant, p.SchoolID, p.YearID, p.ID)
	if err != nil {
		return nil, err
	}
	return &repository.Record{
		TenantID:   p.TenantID,
		EntityKey:  key,
		EntityType: repository.EntityTypeGradingPeriod,
		Version:    p.Version,
		CreatedAt:  p.CreatedAt,
		CreatedBy:  p.CreatedBy,
		UpdatedAt:  p.UpdatedAt,
		UpdatedBy:  p.UpdatedBy,
		IndexKeys: map[string]string{
			repository.AttrYearIndexPK: repository.YearIndexPK(tenant, p.SchoolID, p.YearID),
			// Zero-padded so index order matches period order.
			repository.AttrYearIndexSK: repository.YearIndexSK(kindPeriod, fmt.Sprintf("%03d", p.PeriodNumber)),
		},
		Attributes: map[string]any{
			fieldEntityID:     p.ID,
			fieldSchoolID:     p.SchoolID,
			fieldYearID:       p.YearID,
			fieldName:         p.Name,
			fieldPeriodNumber: p.PeriodNumber,
			fieldStartDate:    p.StartDate.Format(academics.DateLayout),
			fieldEndDate:      p.EndDate.Format(academics.DateLayout),
		},
	}, nil
}

func periodFromRecord(rec *repository.Record) *academics.GradingPeriod {
	startDate, _ := parseDate(rec.String(fieldStartDate))
	endDate, _ := parseDate(rec.String(fieldEndDate))
	return &academics.GradingPeriod{
		ID:           rec.String(fieldEntityID),
		TenantID:     rec.TenantID,
		SchoolID:     rec.String(fieldSchoolID),
		YearID:       rec.String(fieldYearID),
		Name:         rec.String(fieldName),
		PeriodNumber: rec.Int(fieldPeriodNumber),
		StartDate:    startDate,
		EndDate:      endDate,
		CreatedAt:    rec.CreatedAt,
		CreatedBy:    rec.CreatedBy,
		UpdatedAt:    rec.UpdatedAt,
		UpdatedBy:    rec.UpdatedBy,
		Version:      rec.Version,
	}
}

func holidayRecord(tenant repository.TenantID, h *academics.Holiday) (*repository.Record, error) {
	key, err := repository.HolidayKey(tenant, h.SchoolID, h.YearID, h.ID)
	if err != nil {
		return nil, err
	}
	return &repository.Record{
		TenantID:   h.TenantID,
		EntityKey:  key,
		EntityType: repository.EntityTypeHoliday,
		Version:    h.Version,
		CreatedAt:  h.CreatedAt,
		CreatedBy:  h.CreatedBy,
		UpdatedAt:  h.UpdatedAt,
		UpdatedBy:  h.UpdatedBy,
		IndexKeys: map[string]string{
			repository.AttrYearIndexPK: repository.YearIndexPK(tenant, h.SchoolID, h.YearID),
			repository.AttrYearIndexSK: repository.YearIndexSK(kindHoliday, h.StartDate.Format(academics.DateLayout)+repository.KeySeparator+h.ID),
		},
		Attributes: map[string]any{
			fieldEntityID:  h.ID,
			fieldSchoolID:  h.SchoolID,
			fieldYearID:    h.YearID,
			fieldName:      h.Name,
			fieldStartDate: h.StartDate.Format(academics.DateLayout),
			fieldEndDate:   h.EndDate.Format(academics.DateLayout),
			fieldRecurring: h.Recurring,
		},
	}, nil
}

func holidayFromRecord(rec *repository.Record) *academics.Holiday {
	startDate, _ := parseDate(rec.String(fieldStartDate))
	endDate, _ := parseDate(rec.String(fieldEndDate))
	return &academics.Holiday{
		ID:        rec.String(fieldEntityID),
		TenantID:  rec.TenantID,
		SchoolID:  rec.String(fieldSchoolID),
		YearID:    rec.String(fieldYearID),
		Name:      rec.String(fieldName),
		StartDate: startDate,
		EndDate:   endDate,
		Recurring: rec.Bool(fieldRecurring),
		CreatedAt: rec.CreatedAt,
		CreatedBy: rec.CreatedBy,
		UpdatedAt: rec.UpdatedAt,
		UpdatedBy: rec.UpdatedBy,
		Version:   rec.Version,
	}
}

func configurationRecord(tenant repository.TenantID, c *school.Configuration) (*repository.Record, error) {
	key, err := repository.ConfigurationKey(tenant, c.SchoolID)
	if err != nil {
		return nil, err
	}
	return &repository.Record{
		TenantID:   c.TenantID,
		EntityKey:  key,
		EntityType: repository.EntityTypeConfiguration,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		CreatedBy:  c.CreatedBy,
		UpdatedAt:  c.UpdatedAt,
		UpdatedBy:  c.UpdatedBy,
		IndexKeys:  map[string]string{},
		Attributes: map[string]any{
			fieldSchoolID:     c.SchoolID,
			fieldGradeScale:   c.GradeScale,
			fieldPassingGrade: c.PassingGradePercent,
			fieldAttendance:   c.AttendanceTracking,
			fieldParentNotify: c.ParentNotifications,
			fieldLocale:       c.DefaultLocale,
			fieldFirstDay:     c.FirstDayOfWeek,
		},
	}, nil
}

func configurationFromRecord(rec *repository.Record) *school.Configuration {
	return &school.Configuration{
		TenantID:            rec.TenantID,
		SchoolID:            rec.String(fieldSchoolID),
		GradeScale:          rec.String(fieldGradeScale),
		PassingGradePercent: rec.Int(fieldPassingGrade),
		AttendanceTracking:  rec.Bool(fieldAttendance),
		ParentNotifications: rec.Bool(fieldParentNotify),
		DefaultLocale:       rec.String(fieldLocale),
		FirstDayOfWeek:      rec.String(fieldFirstDay),
		CreatedAt:           rec.CreatedAt,
		CreatedBy:           rec.CreatedBy,
		UpdatedAt:           rec.UpdatedAt,
		UpdatedBy:           rec.UpdatedBy,
		Version:             rec.Version,
	}
}
