package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"schoolhub-backend/internal/middleware"
	"schoolhub-backend/internal/service"
)

// Router creates and configures the HTTP router
type Router struct {
	schools   *service.SchoolService
	academics *service.AcademicsService
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(schools *service.SchoolService, academics *service.AcademicsService, logger *zap.Logger) *Router {
	return &Router{schools: schools, academics: academics, logger: logger}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.HeaderTenantID, middleware.HeaderActorID},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TenantContext())

		schoolHandler := NewSchoolHandler(rt.schools, rt.logger)
		academicsHandler := NewAcademicsHandler(rt.academics, rt.logger)

		r.Route("/schools", func(r chi.Router) {
			r.Post("/", schoolHandler.CreateSchool)
			r.Route("/{schoolID}", func(r chi.Router) {
				r.Get("/", schoolHandler.GetSchool)
				r.Put("/", schoolHandler.UpdateSchool)
				r.Delete("/", schoolHandler.DeleteSchool)

				r.Post("/departments", schoolHandler.CreateDepartment)
				r.Get("/departments", schoolHandler.ListDepartments)

				r.Put("/configuration", schoolHandler.UpsertConfiguration)
				r.Get("/configuration", schoolHandler.GetConfiguration)

				r.Route("/years", func(r chi.Router) {
					r.Post("/", academicsHandler.CreateAcademicYear)
					r.Get("/", academicsHandler.ListAcademicYears)
					r.Get("/current", academicsHandler.GetCurrentAcademicYear)

					r.Route("/{yearID}", func(r chi.Router) {
						r.Get("/", academicsHandler.GetAcademicYear)
						r.Put("/status", academicsHandler.UpdateAcademicYearStatus)
						r.Put("/current", academicsHandler.SetCurrentAcademicYear)

						r.Post("/periods", academicsHandler.CreateGradingPeriod)
						r.Get("/periods", academicsHandler.ListGradingPeriods)

						r.Post("/holidays", academicsHandler.CreateHoliday)
						r.Get("/holidays", academicsHandler.ListHolidays)
					})
				})
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
