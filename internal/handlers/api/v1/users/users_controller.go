// file: internal/handlers/api/v1/users/users_controller.go
package users

import (
	"net/http"

	"referralhub/internal/contextutils"
	v1 "referralhub/internal/handlers/api/v1"
	"referralhub/internal/middleware"
	"referralhub/internal/response"
	"referralhub/internal/services"

	"go.uber.org/zap"
)

// UserController handles registration and the caller's own profile
type UserController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewUserController creates a new user controller
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ===============================
// REGISTRATION
// ===============================

// Register creates an account and returns a token - POST /api/users
// @Summary Register
// @Tags users
// @Accept json
// @Produce json
// @Param body body services.RegisterRequest true "New account"
// @Success 200 {object} services.TokenResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /users [post]
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	var req services.RegisterRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	token, err := c.serviceCollection.GetAuthService().Register(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("User registered",
		zap.String("role", req.Role),
	)
	c.responseBuilder.WriteSuccess(w, r, token)
}

// ===============================
// PROFILE
// ===============================

// GetProfile returns the caller's profile - GET /api/profile
// @Summary Read own profile
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Router /profile [get]
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	user, err := c.serviceCollection.GetUserService().GetProfile(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// UpdateProfile replaces the caller's editable profile fields - PUT /api/profile
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body services.UpdateProfileRequest true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} response.ErrorBody
// @Router /profile [put]
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	var req services.UpdateProfileRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.serviceCollection.GetUserService().UpdateProfile(ctx, contextutils.GetPrincipal(r.Context()), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}
