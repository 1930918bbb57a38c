package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"schoolhub-backend/internal/domain/academics"
	apperrors "schoolhub-backend/internal/errors"
)

// Gate performs structural validation of request payloads before any store
// write. Uniqueness checks live with the services because they need
// read-only store queries.
type Gate struct {
	validate *validator.Validate
}

// NewGate creates the validation gate shared by the services.
func NewGate() *Gate {
	return &Gate{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Struct validates a request payload, translating field failures into one
// validation error with field-level detail.
func (g *Gate) Struct(req any) error {
	err := g.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}

	appErr := apperrors.NewValidationError("request validation failed")
	for _, fe := range fieldErrs {
		appErr.WithField(fe.Field(), fmt.Sprintf("failed %q constraint", fe.Tag()))
	}
	return appErr
}

// parseDate parses a calendar date in the wire format.
func parseDate(value string) (time.Time, error) {
	return time.Parse(academics.DateLayout, value)
}

// parseDateRange parses and orders a start/end date pair. Equal dates are
// allowed; validateYearDates adds the stricter year rules on top.
func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid startDate").WithField("startDate", err.Error())
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid endDate").WithField("endDate", err.Error())
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("startDate must not be after endDate")
	}
	return startDate, endDate, nil
}

// validateYearDates enforces the academic-year date rules: strictly ordered
// dates and a duration between 30 and 400 days.
func validateYearDates(start, end time.Time) error {
	if !start.Before(end) {
		return apperrors.NewValidationError("startDate must be before endDate")
	}
	days := int(end.Sub(start).Hours() / 24)
	if days < academics.MinYearDays || days > academics.MaxYearDays {
		return apperrors.NewValidationError(
			fmt.Sprintf("academic year must span between %d and %d days, got %d",
				academics.MinYearDays, academics.MaxYearDays, days))
	}
	return nil
}
