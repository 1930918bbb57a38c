package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/service"
)

// SchoolHandler handles school, department, and configuration requests.
type SchoolHandler struct {
	schools *service.SchoolService
	logger  *zap.Logger
}

// NewSchoolHandler creates a new school handler
func NewSchoolHandler(schools *service.SchoolService, logger *zap.Logger) *SchoolHandler {
	return &SchoolHandler{schools: schools, logger: logger}
}

// CreateSchool handles POST /schools
func (h *SchoolHandler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSchoolRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	created, err := h.schools.CreateSchool(r.Context(), tenant, actor, req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetSchool handles GET /schools/{schoolID}
func (h *SchoolHandler) GetSchool(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	sch, err := h.schools.GetSchool(r.Context(), tenant, chi.URLParam(r, "schoolID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, sch)
}

// UpdateSchool handles PUT /schools/{schoolID}
func (h *SchoolHandler) UpdateSchool(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSchoolRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	updated, err := h.schools.UpdateSchool(r.Context(), tenant, actor, chi.URLParam(r, "schoolID"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteSchool handles DELETE /schools/{schoolID}; schools are closed, never
// removed from storage.
func (h *SchoolHandler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	closed, err := h.schools.SoftDeleteSchool(r.Context(), tenant, actor, chi.URLParam(r, "schoolID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, closed)
}

// CreateDepartment handles POST /schools/{schoolID}/departments
func (h *SchoolHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req service.CreateDepartmentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	dept, err := h.schools.CreateDepartment(r.Context(), tenant, actor, chi.URLParam(r, "schoolID"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, dept)
}

// ListDepartments handles GET /schools/{schoolID}/departments
func (h *SchoolHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	depts, err := h.schools.ListDepartments(r.Context(), tenant, chi.URLParam(r, "schoolID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, depts)
}

// UpsertConfiguration handles PUT /schools/{schoolID}/configuration
func (h *SchoolHandler) UpsertConfiguration(w http.ResponseWriter, r *http.Request) {
	var req service.UpsertConfigurationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	tenant, _ := middleware.TenantFromContext(r.Context())
	actor := middleware.ActorFromContext(r.Context())

	cfg, err := h.schools.UpsertSchoolConfiguration(r.Context(), tenant, actor, chi.URLParam(r, "schoolID"), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// GetConfiguration handles GET /schools/{schoolID}/configuration
func (h *SchoolHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.TenantFromContext(r.Context())

	cfg, err := h.schools.GetSchoolConfiguration(r.Context(), tenant, chi.URLParam(r, "schoolID"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
