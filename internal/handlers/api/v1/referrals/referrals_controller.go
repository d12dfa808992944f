// file: internal/handlers/api/v1/referrals/referrals_controller.go
package referrals

import (
	"net/http"
	"time"

	"referralhub/internal/contextutils"
	v1 "referralhub/internal/handlers/api/v1"
	"referralhub/internal/middleware"
	"referralhub/internal/response"
	"referralhub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ReferralController exposes the referral ledger
type ReferralController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
	now               func() time.Time
}

// NewReferralController creates a new referral controller
func NewReferralController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ReferralController {
	return &ReferralController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
		now:               time.Now,
	}
}

// ===============================
// QUERIES
// ===============================

// ListSent returns referrals the calling employer made - GET /api/referrals/sent
// @Summary Referrals sent
// @Tags referrals
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Referral
// @Failure 403 {object} response.ErrorBody
// @Router /referrals/sent [get]
func (c *ReferralController) ListSent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	referrals, err := c.serviceCollection.GetReferralService().ListSent(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, referrals)
}

// ListReceived returns referrals offered to the calling job seeker - GET /api/referrals/received
// @Summary Referrals received
// @Tags referrals
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Referral
// @Failure 403 {object} response.ErrorBody
// @Router /referrals/received [get]
func (c *ReferralController) ListReceived(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	referrals, err := c.serviceCollection.GetReferralService().ListReceived(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, referrals)
}

// GetReferral returns one referral to either party - GET /api/referrals/{id}
// @Summary Read a referral
// @Tags referrals
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Referral ID"
// @Success 200 {object} models.Referral
// @Failure 404 {object} response.ErrorBody
// @Router /referrals/{id} [get]
func (c *ReferralController) GetReferral(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	referral, err := c.serviceCollection.GetReferralService().Get(ctx, contextutils.GetPrincipal(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, referral)
}

// ===============================
// COMMANDS
// ===============================

// CreateReferral offers a referral for a job - POST /api/referrals
// @Summary Offer a referral
// @Tags referrals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body services.CreateReferralRequest true "Target job"
// @Success 200 {object} models.Referral
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /referrals [post]
func (c *ReferralController) CreateReferral(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	var req services.CreateReferralRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	referral, err := c.serviceCollection.GetReferralService().Create(ctx, contextutils.GetPrincipal(r.Context()), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Referral created",
		zap.String("referral_id", referral.ID.String()),
		zap.String("job_id", referral.JobID.String()),
	)
	c.responseBuilder.WriteSuccess(w, r, referral)
}

// UpdateStatus accepts or rejects a referral - PUT /api/referrals/{id}
// @Summary Accept or reject a referral
// @Tags referrals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Referral ID"
// @Param body body services.UpdateReferralStatusRequest true "accepted or rejected"
// @Success 200 {object} models.Referral
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /referrals/{id} [put]
func (c *ReferralController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	var req services.UpdateReferralStatusRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	referral, err := c.serviceCollection.GetReferralService().SetStatus(ctx, contextutils.GetPrincipal(r.Context()), mux.Vars(r)["id"], &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, referral)
}

// DeleteReferral withdraws the caller's own referral - DELETE /api/referrals/{id}
// @Summary Withdraw a referral
// @Tags referrals
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Referral ID"
// @Success 200 {object} response.MessageBody
// @Failure 403 {object} response.ErrorBody
// @Router /referrals/{id} [delete]
func (c *ReferralController) DeleteReferral(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	if err := c.serviceCollection.GetReferralService().Delete(ctx, contextutils.GetPrincipal(r.Context()), mux.Vars(r)["id"]); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteMessage(w, r, "Referral removed successfully")
}

// ClearAll removes every referral the calling job seeker received - DELETE /api/referrals/clear-all
// @Summary Clear received referrals
// @Tags referrals
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.ClearResult
// @Failure 403 {object} response.ErrorBody
// @Router /referrals/clear-all [delete]
func (c *ReferralController) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	result, err := c.serviceCollection.GetReferralService().ClearAll(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}

// ===============================
// MAINTENANCE
// ===============================

// SweepOrphaned deletes referrals whose job is gone - DELETE /api/referrals/cleanup
// @Summary Remove referrals for deleted jobs
// @Tags referrals
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.SweepResult
// @Router /referrals/cleanup [delete]
func (c *ReferralController) SweepOrphaned(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	result, err := c.serviceCollection.GetReferralService().SweepOrphaned(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}

// CleanupRejected runs the age-based sweep on demand - GET /api/referrals/cleanup-rejected
// @Summary Delete old rejected referrals
// @Tags referrals
// @Produce json
// @Success 200 {object} models.CleanupResult
// @Router /referrals/cleanup-rejected [get]
func (c *ReferralController) CleanupRejected(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	result, err := c.serviceCollection.GetReferralService().CleanupRejected(ctx, c.now())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Rejected referrals cleaned up",
		zap.Int64("deleted", result.DeletedCount),
	)
	c.responseBuilder.WriteSuccess(w, r, result)
}
