// file: internal/handlers/api/v1/auth/auth_controller.go
package auth

import (
	"net/http"

	"referralhub/internal/contextutils"
	v1 "referralhub/internal/handlers/api/v1"
	"referralhub/internal/middleware"
	"referralhub/internal/response"
	"referralhub/internal/services"

	"go.uber.org/zap"
)

// AuthController handles login and the current-user lookup
type AuthController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewAuthController creates a new authentication controller
func NewAuthController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AuthController {
	return &AuthController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// Login handles user authentication - POST /api/auth
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginRequest true "Credentials"
// @Success 200 {object} services.TokenResponse
// @Failure 400 {object} response.ErrorBody
// @Router /auth [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	logger := middleware.GetRequestLogger(r.Context()).With(zap.String("endpoint", "login"))

	var req services.LoginRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	token, err := c.serviceCollection.GetAuthService().Login(ctx, &req)
	if err != nil {
		logger.Info("Login rejected", zap.Error(err))
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, token)
}

// Me returns the authenticated user - GET /api/auth
// @Summary Current user
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {object} response.ErrorBody
// @Router /auth [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	user, err := c.serviceCollection.GetUserService().GetProfile(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}
