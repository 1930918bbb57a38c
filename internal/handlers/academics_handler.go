package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"schoolhub-backend/internal/domain/academics"
	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/service"
)

// AcademicsHandler handles academic year, grading period, and holiday requests.
type AcademicsHandler struct {
	academics *service.AcademicsService
	logger    *zap.Logger
}

// NewAcademicsHandler creates a new academics handler
func NewAcademicsHandler(svc *service.AcademicsService, logger *zap.Logger) *AcademicsHandler {
	return &AcademicsHandler{academics: svc, logger: logger}
}

// updateYearStatusRequest is the body for status transitions.
type updateYearStatusRequest struct {
	Status string `json:"status"`
}

// CreateAcademicYear handles POST /schools/{schoolID}/years
func (h *AcademicsHandler) CreateAcademicYear(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAcademicYearRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	year, err := h.academics.CreateAcademicYear(r.Context(), tenant, actor, chi.URLParam(r, "schoolID"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, year)
}

// ListAcademicYears handles GET /schools/{schoolID}/years
func (h *AcademicsHandler) ListAcademicYears(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	years, err := h.academics.ListAcademicYears(r.Context(), tenant, chi.URLParam(r, "schoolID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, years)
}

// GetAcademicYear handles GET /schools/{schoolID}/years/{yearID}
func (h *AcademicsHandler) GetAcademicYear(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	year, err := h.academics.GetAcademicYear(r.Context(), tenant, chi.URLParam(r, "schoolID"), chi.URLParam(r, "yearID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, year)
}

// GetCurrentAcademicYear handles GET /schools/{schoolID}/years/current
func (h *AcademicsHandler) GetCurrentAcademicYear(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	year, err := h.academics.GetCurrentAcademicYear(r.Context(), tenant, chi.URLParam(r, "schoolID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, year)
}

// SetCurrentAcademicYear handles PUT /schools/{schoolID}/years/{yearID}/current
func (h *AcademicsHandler) SetCurrentAcademicYear(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	year, err := h.academics.SetCurrentAcademicYear(r.Context(), tenant, actor, chi.URLParam(r, "schoolID"), chi.URLParam(r, "yearID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, year)
}

// UpdateAcademicYearStatus handles PUT /schools/{schoolID}/years/{yearID}/status
func (h *AcademicsHandler) UpdateAcademicYearStatus(w http.ResponseWriter, r *http.Request) {
	var req updateYearStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	year, err := h.academics.UpdateAcademicYearStatus(r.Context(), tenant, actor,
		chi.URLParam(r, "schoolID"), chi.URLParam(r, "yearID"), academics.Status(req.Status))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, year)
}

// CreateGradingPeriod handles POST /schools/{schoolID}/years/{yearID}/periods
func (h *AcademicsHandler) CreateGradingPeriod(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGradingPeriodRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	period, err := h.academics.CreateGradingPeriod(r.Context(), tenant, actor,
		chi.URLParam(r, "schoolID"), chi.URLParam(r, "yearID"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, period)
}

// ListGradingPeriods handles GET /schools/{schoolID}/years/{yearID}/periods
func (h *AcademicsHandler) ListGradingPeriods(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	periods, err := h.academics.ListGradingPeriods(r.Context(), tenant,
		chi.URLParam(r, "schoolID"), chi.URLParam(r, "yearID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, periods)
}

// CreateHoliday handles POST /schools/{schoolID}/years/{yearID}/holidays
func (h *AcademicsHandler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req service.CreateHolidayRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	holiday, err := h.academics.CreateHoliday(r.Context(), tenant, actor,
		chi.URLParam(r, "schoolID"), chi.URLParam(r, "yearID"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, holiday)
}

// ListHolidays handles GET /schools/{schoolID}/years/{yearID}/holidays
func (h *AcademicsHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	holidays, err := h.academics.ListHolidays(r.Context(), tenant,
		chi.URLParam(r, "schoolID"), chi.URLParam(r, "yearID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, holidays)
}
