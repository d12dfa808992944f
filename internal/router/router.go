package router

import (
	"context"
	"net/http"
	"time"

	_ "referralhub/internal/docs" // registers the swagger spec
	"referralhub/internal/middleware"
	"referralhub/internal/response"
	"referralhub/internal/services"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Options carries the cross-cutting settings of the HTTP stack
type Options struct {
	AllowedOrigins       []string
	SlowRequestThreshold time.Duration
	RateLimiter          *middleware.RateLimiter
	SwaggerUser          string
	SwaggerPassword      string
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	opts Options,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responseBuilder.WriteError(w, req, services.NewNotFoundError("Route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responseBuilder.WriteJSON(w, req, response.ErrorBody{Msg: "Method not allowed"}, http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		responseBuilder.WriteMessage(w, req, "Server is working!")
	}).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler(serviceCollection, responseBuilder)).Methods(http.MethodGet)

	docs := middleware.SwaggerAuth(opts.SwaggerUser, opts.SwaggerPassword)(middleware.SwaggerHandler(nil))
	r.PathPrefix("/swagger/").Handler(docs)

	AddAPIRoutes(r, serviceCollection, authMiddleware, responseBuilder, logger)

	// Applied outside the router so preflight and 404 responses get the same treatment
	chain := []func(http.Handler) http.Handler{
		chimw.RealIP,
		middleware.RequestID(logger),
		middleware.EnhancedLogging(opts.SlowRequestThreshold),
		middleware.RecoverPanic,
		middleware.SecureHeaders,
		middleware.CORS(opts.AllowedOrigins),
	}
	if opts.RateLimiter != nil {
		chain = append(chain, middleware.RateLimit(opts.RateLimiter))
	}
	chain = append(chain, response.Middleware(responseBuilder))

	logger.Info("Router setup completed",
		zap.String("swagger_ui", "/swagger/index.html"),
		zap.Bool("rate_limit", opts.RateLimiter != nil),
	)

	return wrap(r, chain...)
}

// wrap applies middlewares so the first one listed runs first
func wrap(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func healthHandler(sc *services.ServiceCollection, rb *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := sc.HealthCheck(ctx)
		status := http.StatusOK
		if health.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		rb.WriteJSON(w, r, health, status)
	}
}
