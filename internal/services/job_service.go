// file: internal/services/job_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"referralhub/internal/models"
	"referralhub/internal/policy"
	"referralhub/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type jobService struct {
	jobs   repositories.JobRepository
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewJobService creates a new job service
func NewJobService(jobs repositories.JobRepository, users repositories.UserRepository, logger *zap.Logger) JobService {
	return &jobService{jobs: jobs, users: users, logger: logger}
}

// List returns every job, newest first
func (s *jobService) List(ctx context.Context, principal policy.Principal) ([]*models.Job, error) {
	if err := fromPolicy(policy.CanReadJob(principal)); err != nil {
		return nil, err
	}

	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, NewInternalError("Server Error", err)
	}
	return jobs, nil
}

// ListMine returns the caller's own jobs, newest first
func (s *jobService) ListMine(ctx context.Context, principal policy.Principal) ([]*models.Job, error) {
	if err := fromPolicy(policy.CanReadJob(principal)); err != nil {
		return nil, err
	}

	jobs, err := s.jobs.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, NewInternalError("Server Error", err)
	}
	return jobs, nil
}

// Get retrieves a job by ID
func (s *jobService) Get(ctx context.Context, principal policy.Principal, jobID string) (*models.Job, error) {
	if err := fromPolicy(policy.CanReadJob(principal)); err != nil {
		return nil, err
	}
	return s.load(ctx, jobID)
}

// Create posts a job for a job seeker whose profile is complete
func (s *jobService) Create(ctx context.Context, principal policy.Principal, req *CreateJobRequest) (*models.Job, error) {
	if !principal.IsAuthenticated() {
		return nil, NewAuthenticationError("No token, authorization denied")
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("User not found")
		}
		return nil, NewInternalError("Server Error", err)
	}

	if err := fromPolicy(policy.CanCreateJob(principal, user)); err != nil {
		return nil, err
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	job := &models.Job{
		UserID:      user.ID,
		Company:     strings.TrimSpace(req.Company),
		Position:    strings.TrimSpace(req.Position),
		JobID:       strings.TrimSpace(req.JobID),
		JobURL:      strings.TrimSpace(req.JobURL),
		Location:    strings.TrimSpace(req.Location),
		Skills:      []string(req.Skills),
		Description: req.Description,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, NewInternalError("Server Error", err)
	}
	job.User = user.Summary()

	return job, nil
}

// Update applies a partial update; only the owner may change a job
func (s *jobService) Update(ctx context.Context, principal policy.Principal, jobID string, req *UpdateJobRequest) (*models.Job, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := fromPolicy(policy.CanModifyJob(principal, job)); err != nil {
		return nil, err
	}

	patch := req.Patch()
	if patch.IsEmpty() {
		return job, nil
	}
	patch.Apply(job)

	if err := s.jobs.Update(ctx, job); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Job not found")
		}
		return nil, NewInternalError("Server Error", err)
	}

	s.logger.Info("Job updated", zap.String("job_id", job.ID.String()))
	return job, nil
}

// Delete removes a job; only the owner may delete it
func (s *jobService) Delete(ctx context.Context, principal policy.Principal, jobID string) error {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return err
	}

	if err := fromPolicy(policy.CanModifyJob(principal, job)); err != nil {
		return err
	}

	if err := s.jobs.Delete(ctx, job.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("Job not found")
		}
		return NewInternalError("Server Error", err)
	}
	return nil
}

func (s *jobService) load(ctx context.Context, rawID string) (*models.Job, error) {
	id, err := uuid.FromString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, NewValidationError("Invalid job ID format", err)
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Job not found")
		}
		return nil, NewInternalError("Server Error", err)
	}
	return job, nil
}
