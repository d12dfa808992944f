// file: internal/handlers/api/v1/jobs/jobs_controller.go
package jobs

import (
	"net/http"

	"referralhub/internal/contextutils"
	v1 "referralhub/internal/handlers/api/v1"
	"referralhub/internal/middleware"
	"referralhub/internal/response"
	"referralhub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type JobController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewJobController creates a new job controller
func NewJobController(serviceCollection *services.ServiceCollection, logger *zap.Logger, responseBuilder *response.Builder) *JobController {
	return &JobController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ListJobs handles job listing - GET /api/jobs
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Job
// @Router /jobs [get]
func (c *JobController) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	jobs, err := c.serviceCollection.GetJobService().List(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, jobs)
}

// ListMyJobs lists the caller's own postings - GET /api/jobs/user
// @Summary List own jobs
// @Tags jobs
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Job
// @Router /jobs/user [get]
func (c *JobController) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	jobs, err := c.serviceCollection.GetJobService().ListMine(ctx, contextutils.GetPrincipal(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, jobs)
}

// GetJob handles retrieving a specific job - GET /api/jobs/{id}
// @Summary Read a job
// @Tags jobs
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} response.ErrorBody
// @Router /jobs/{id} [get]
func (c *JobController) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	job, err := c.serviceCollection.GetJobService().Get(ctx, contextutils.GetPrincipal(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, job)
}

// CreateJob handles job creation - POST /api/jobs
// @Summary Post a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body services.CreateJobRequest true "Job"
// @Success 200 {object} models.Job
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /jobs [post]
func (c *JobController) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	var req services.CreateJobRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	job, err := c.serviceCollection.GetJobService().Create(ctx, contextutils.GetPrincipal(r.Context()), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Job posted", zap.String("job_id", job.ID.String()))
	c.responseBuilder.WriteSuccess(w, r, job)
}

// UpdateJob handles job updates - PUT /api/jobs/{id}
// @Summary Update a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Job ID"
// @Param body body services.UpdateJobRequest true "Changed fields"
// @Success 200 {object} models.Job
// @Failure 403 {object} response.ErrorBody
// @Router /jobs/{id} [put]
func (c *JobController) UpdateJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	var req services.UpdateJobRequest
	if err := v1.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	job, err := c.serviceCollection.GetJobService().Update(ctx, contextutils.GetPrincipal(r.Context()), mux.Vars(r)["id"], &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, job)
}

// DeleteJob handles job deletion - DELETE /api/jobs/{id}
// @Summary Delete a job
// @Tags jobs
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.MessageBody
// @Failure 403 {object} response.ErrorBody
// @Router /jobs/{id} [delete]
func (c *JobController) DeleteJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := v1.WithTimeout(r)
	defer cancel()

	jobID := mux.Vars(r)["id"]
	if err := c.serviceCollection.GetJobService().Delete(ctx, contextutils.GetPrincipal(r.Context()), jobID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Job removed", zap.String("job_id", jobID))
	c.responseBuilder.WriteMessage(w, r, "Job removed")
}
