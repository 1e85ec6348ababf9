package api

import (
	"net/http"

	"github.com/abdullah0300/fleet-management-sub001/internal/config"
	"github.com/abdullah0300/fleet-management-sub001/internal/fanout"
	"github.com/abdullah0300/fleet-management-sub001/internal/repository/sqlite"
	"github.com/abdullah0300/fleet-management-sub001/internal/service"
	"github.com/gorilla/mux"
)

// Services are the wired service-layer entry points the routes dispatch to.
// The caller owns their construction so the fanout bus, outbox queue and
// cache client are shared with the rest of the process.
type Services struct {
	Locations *service.LocationService
	Manifests *service.ManifestService
	Documents *service.DocumentService
	Hub       *fanout.Hub
}

func SetupRoutes(cfg *config.Config, version, buildTime string, repo *sqlite.SQLiteRepo, svc Services, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	locationsHandler := NewLocationsHandler(svc.Locations, repo, svc.Hub)
	jobsHandler := NewJobsHandler(repo)
	manifestsHandler := NewManifestsHandler(svc.Manifests)
	vehiclesHandler := NewVehiclesHandler(repo, repo, svc.Documents)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Location ingest and reads
	apiV1.HandleFunc("/locations", locationsHandler.Ingest).Methods("POST")
	apiV1.HandleFunc("/locations", locationsHandler.Live).Methods("GET")
	apiV1.HandleFunc("/vehicles/{id}/location", locationsHandler.GetVehicleLocation).Methods("GET")
	apiV1.HandleFunc("/vehicles/{id}/history", locationsHandler.ListHistory).Methods("GET")

	// Jobs
	apiV1.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	apiV1.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}/pod", jobsHandler.RecordPOD).Methods("POST")

	// Manifests
	apiV1.HandleFunc("/manifests", manifestsHandler.CreateManifest).Methods("POST")
	apiV1.HandleFunc("/manifests/{id}", manifestsHandler.GetManifest).Methods("GET")
	apiV1.HandleFunc("/manifests/{id}/jobs", manifestsHandler.AttachJob).Methods("POST")
	apiV1.HandleFunc("/manifests/{id}/jobs/{jobID}", manifestsHandler.DetachJob).Methods("DELETE")
	apiV1.HandleFunc("/manifests/{id}/assignment", manifestsHandler.UpdateAssignment).Methods("PATCH")

	// Vehicles and compliance documents
	apiV1.HandleFunc("/vehicles", vehiclesHandler.CreateVehicle).Methods("POST")
	apiV1.HandleFunc("/vehicles", vehiclesHandler.ListVehicles).Methods("GET")
	apiV1.HandleFunc("/vehicles/{id}", vehiclesHandler.GetVehicle).Methods("GET")
	apiV1.HandleFunc("/vehicles/{id}/documents", vehiclesHandler.CreateDocument).Methods("POST")
	apiV1.HandleFunc("/documents/expiring", vehiclesHandler.ListExpiringDocuments).Methods("GET")

	return r
}
