// file: internal/services/referral_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"referralhub/internal/models"
	"referralhub/internal/policy"
	"referralhub/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// DefaultRejectedMaxAge is how long a rejected referral is kept before cleanup
const DefaultRejectedMaxAge = 24 * time.Hour

type referralService struct {
	referrals      repositories.ReferralRepository
	jobs           repositories.JobRepository
	users          repositories.UserRepository
	rejectedMaxAge time.Duration
	logger         *zap.Logger
}

// NewReferralService creates a new referral service
func NewReferralService(
	referrals repositories.ReferralRepository,
	jobs repositories.JobRepository,
	users repositories.UserRepository,
	rejectedMaxAge time.Duration,
	logger *zap.Logger,
) ReferralService {
	if rejectedMaxAge <= 0 {
		rejectedMaxAge = DefaultRejectedMaxAge
	}
	return &referralService{
		referrals:      referrals,
		jobs:           jobs,
		users:          users,
		rejectedMaxAge: rejectedMaxAge,
		logger:         logger,
	}
}

// ===============================
// MUTATIONS
// ===============================

// Create sends a pending referral for a job; one per (job, employer)
func (s *referralService) Create(ctx context.Context, principal policy.Principal, req *CreateReferralRequest) (*models.Referral, error) {
	if err := fromPolicy(policy.CanCreateReferral(principal)); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(req.JobID)
	if raw == "" {
		return nil, NewValidationError("Job ID is required", nil)
	}
	jobID, err := uuid.FromString(raw)
	if err != nil {
		return nil, NewValidationError("Invalid job ID format", err)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Job not found")
		}
		return nil, NewInternalError("Server Error", err)
	}

	exists, err := s.referrals.ExistsForJobAndEmployer(ctx, job.ID, principal.UserID)
	if err != nil {
		return nil, NewInternalError("Server Error", err)
	}
	if exists {
		return nil, duplicateReferral()
	}

	ref := &models.Referral{
		JobID:       job.ID,
		JobSeekerID: job.UserID,
		EmployerID:  principal.UserID,
		Status:      models.StatusPending,
	}
	if err := s.referrals.Create(ctx, ref); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateReferral()
		}
		return nil, NewInternalError("Server Error", err)
	}

	return ref, nil
}

func duplicateReferral() error {
	return NewConflictError("You have already sent a referral for this job", CodeDuplicateReferral)
}

// SetStatus lets the job seeker accept or reject a pending referral.
// Re-setting the current status is a no-op.
func (s *referralService) SetStatus(ctx context.Context, principal policy.Principal, referralID string, req *UpdateReferralStatusRequest) (*models.Referral, error) {
	id, err := parseReferralID(referralID)
	if err != nil {
		return nil, err
	}

	target, err := models.ParseReferralStatus(strings.TrimSpace(req.Status))
	if err != nil || !target.IsSettable() {
		return nil, NewValidationError("Invalid status", err)
	}

	ref, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fromPolicy(policy.CanSetReferralStatus(principal, ref)); err != nil {
		return nil, err
	}

	if ref.Status == target {
		return ref, nil
	}
	if !models.IsReferralTransitionAllowed(ref.Status, target) {
		return nil, invalidTransition(ref.Status)
	}

	updated, err := s.referrals.UpdateStatus(ctx, id, ref.Status, target)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, NewInternalError("Server Error", err)
		}
		// changed or deleted since it was read
		current, loadErr := s.load(ctx, id)
		if loadErr != nil {
			return nil, loadErr
		}
		if current.Status == target {
			return current, nil
		}
		return nil, invalidTransition(current.Status)
	}

	s.logger.Info("Referral status changed",
		zap.String("referral_id", id.String()),
		zap.String("from", string(ref.Status)),
		zap.String("to", string(target)),
	)
	return updated, nil
}

func invalidTransition(current models.ReferralStatus) error {
	return NewConflictError(fmt.Sprintf("Referral has already been %s", current), CodeInvalidTransition).
		WithDetails(map[string]interface{}{"status": current})
}

// Delete removes a referral; only the employer who sent it may do so
func (s *referralService) Delete(ctx context.Context, principal policy.Principal, referralID string) error {
	id, err := parseReferralID(referralID)
	if err != nil {
		return err
	}

	ref, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := fromPolicy(policy.CanDeleteReferral(principal, ref)); err != nil {
		return err
	}

	if err := s.referrals.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("Referral not found")
		}
		return NewInternalError("Server Error", err)
	}

	s.logger.Info("Referral deleted",
		zap.String("referral_id", id.String()),
		zap.String("employer_id", principal.UserID.String()),
	)
	return nil
}

// ClearAll deletes every referral the job seeker received, whatever its status
func (s *referralService) ClearAll(ctx context.Context, principal policy.Principal) (*models.ClearResult, error) {
	if err := fromPolicy(policy.CanClearReferrals(principal)); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("User not found")
		}
		return nil, NewInternalError("Server Error", err)
	}

	deleted, err := s.referrals.DeleteByJobSeeker(ctx, principal.UserID)
	if err != nil {
		return nil, NewInternalError("Server Error", err)
	}

	s.logger.Info("Referrals cleared",
		zap.String("job_seeker_id", principal.UserID.String()),
		zap.Int64("deleted_count", deleted),
	)
	return &models.ClearResult{
		Message:      fmt.Sprintf("Successfully cleared %d referrals", deleted),
		DeletedCount: deleted,
		UserName:     user.Name,
	}, nil
}

// SweepOrphaned deletes referrals whose job no longer exists.
// Referrals whose job lookup fails are skipped.
func (s *referralService) SweepOrphaned(ctx context.Context, principal policy.Principal) (*models.SweepResult, error) {
	if !principal.IsAuthenticated() {
		return nil, NewAuthenticationError("No token, authorization denied")
	}

	refs, err := s.referrals.ListAll(ctx)
	if err != nil {
		return nil, NewInternalError("Server Error", err)
	}

	var deleted int64
	for _, ref := range refs {
		exists, err := s.jobs.Exists(ctx, ref.JobID)
		if err != nil {
			s.logger.Warn("Skipping referral during orphan sweep",
				zap.String("referral_id", ref.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if exists {
			continue
		}

		if err := s.referrals.Delete(ctx, ref.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			s.logger.Warn("Failed to delete orphaned referral",
				zap.String("referral_id", ref.ID.String()),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	s.logger.Info("Orphaned referral sweep finished",
		zap.Int("scanned", len(refs)),
		zap.Int64("deleted_count", deleted),
	)
	return &models.SweepResult{
		Message:      fmt.Sprintf("Cleanup completed. Removed %d referrals with deleted jobs.", deleted),
		DeletedCount: deleted,
	}, nil
}

// ===============================
// QUERIES
// ===============================

// Get returns a referral with job details and both party summaries
func (s *referralService) Get(ctx context.Context, principal policy.Principal, referralID string) (*models.Referral, error) {
	id, err := parseReferralID(referralID)
	if err != nil {
		return nil, err
	}

	ref, err := s.referrals.GetDetailed(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Referral not found")
		}
		return nil, NewInternalError("Server Error", err)
	}

	if err := fromPolicy(policy.CanReadReferral(principal, ref)); err != nil {
		return nil, err
	}
	return ref, nil
}

// ListSent returns the referrals an employer sent, newest first
func (s *referralService) ListSent(ctx context.Context, principal policy.Principal) ([]*models.Referral, error) {
	if err := fromPolicy(policy.CanListSent(principal)); err != nil {
		return nil, err
	}

	refs, err := s.referrals.ListByEmployer(ctx, principal.UserID)
	if err != nil {
		return nil, NewInternalError("Server Error", err)
	}
	return refs, nil
}

// ListReceived returns the referrals a job seeker received, newest first
func (s *referralService) ListReceived(ctx context.Context, principal policy.Principal) ([]*models.Referral, error) {
	if err := fromPolicy(policy.CanListReceived(principal)); err != nil {
		return nil, err
	}

	refs, err := s.referrals.ListByJobSeeker(ctx, principal.UserID)
	if err != nil {
		return nil, NewInternalError("Server Error", err)
	}
	return refs, nil
}

// ===============================
// CLEANUP
// ===============================

// CleanupRejected deletes rejected referrals created before now minus the max age
func (s *referralService) CleanupRejected(ctx context.Context, now time.Time) (*models.CleanupResult, error) {
	cutoff := now.Add(-s.rejectedMaxAge)

	found, deleted, err := s.referrals.DeleteRejectedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to clean up rejected referrals", zap.Error(err), zap.Time("cutoff", cutoff))
		return nil, NewInternalError("Server Error", err)
	}

	s.logger.Info("Rejected referral cleanup finished",
		zap.Time("cutoff", cutoff),
		zap.Int("found", found),
		zap.Int64("deleted_count", deleted),
	)
	return &models.CleanupResult{
		Message:        fmt.Sprintf("Auto-deleted %d rejected referrals older than %s", deleted, describeAge(s.rejectedMaxAge)),
		DeletedCount:   deleted,
		CutoffDate:     cutoff,
		FoundReferrals: found,
	}, nil
}

func describeAge(d time.Duration) string {
	if d%(24*time.Hour) == 0 {
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return d.String()
}

// ===============================
// HELPERS
// ===============================

func parseReferralID(raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, NewValidationError("Invalid referral ID format", err)
	}
	return id, nil
}

func (s *referralService) load(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	ref, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("Referral not found")
		}
		return nil, NewInternalError("Server Error", err)
	}
	return ref, nil
}
