package router

import (
	"net/http"

	"referralhub/internal/handlers/api/v1/auth"
	"referralhub/internal/handlers/api/v1/jobs"
	"referralhub/internal/handlers/api/v1/referrals"
	"referralhub/internal/handlers/api/v1/users"
	"referralhub/internal/middleware"
	"referralhub/internal/response"
	"referralhub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AddAPIRoutes mounts the JSON API under /api
func AddAPIRoutes(
	r *mux.Router,
	serviceCollection *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) {
	authController := auth.NewAuthController(serviceCollection, logger, responseBuilder)
	userController := users.NewUserController(serviceCollection, logger, responseBuilder)
	jobController := jobs.NewJobController(serviceCollection, logger, responseBuilder)
	referralController := referrals.NewReferralController(serviceCollection, logger, responseBuilder)

	api := r.PathPrefix("/api").Subrouter()

	// ===============================
	// PUBLIC ENDPOINTS
	// ===============================

	api.HandleFunc("/users", userController.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth", authController.Login).Methods(http.MethodPost)
	api.HandleFunc("/referrals/cleanup-rejected", referralController.CleanupRejected).Methods(http.MethodGet)

	// ===============================
	// AUTHENTICATED ENDPOINTS
	// ===============================

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware.RequireAuth())

	protected.HandleFunc("/auth", authController.Me).Methods(http.MethodGet)
	protected.HandleFunc("/profile", userController.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", userController.UpdateProfile).Methods(http.MethodPut)

	// fixed paths are registered before {id} so they are not read as ids
	protected.HandleFunc("/jobs", jobController.ListJobs).Methods(http.MethodGet)
	protected.HandleFunc("/jobs", jobController.CreateJob).Methods(http.MethodPost)
	protected.HandleFunc("/jobs/user", jobController.ListMyJobs).Methods(http.MethodGet)
	protected.HandleFunc("/jobs/{id}", jobController.GetJob).Methods(http.MethodGet)
	protected.HandleFunc("/jobs/{id}", jobController.UpdateJob).Methods(http.MethodPut)
	protected.HandleFunc("/jobs/{id}", jobController.DeleteJob).Methods(http.MethodDelete)

	protected.HandleFunc("/referrals", referralController.CreateReferral).Methods(http.MethodPost)
	protected.HandleFunc("/referrals/sent", referralController.ListSent).Methods(http.MethodGet)
	protected.HandleFunc("/referrals/received", referralController.ListReceived).Methods(http.MethodGet)
	protected.HandleFunc("/referrals/clear-all", referralController.ClearAll).Methods(http.MethodDelete)
	protected.HandleFunc("/referrals/cleanup", referralController.SweepOrphaned).Methods(http.MethodDelete)
	protected.HandleFunc("/referrals/{id}", referralController.GetReferral).Methods(http.MethodGet)
	protected.HandleFunc("/referrals/{id}", referralController.UpdateStatus).Methods(http.MethodPut)
	protected.HandleFunc("/referrals/{id}", referralController.DeleteReferral).Methods(http.MethodDelete)
}
