// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"errors"
	"time"

	"referralhub/internal/models"

	"github.com/gofrs/uuid"
)

var (
	// ErrNotFound is returned when a lookup or mutation targets a missing row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// UserRepository defines the contract for user directory operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update *models.ProfileUpdate) (*models.User, error)
}

// JobRepository defines the contract for job catalog operations.
// Reads populate the owner summary.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]*models.Job, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReferralRepository defines the contract for the referral ledger
type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Referral, error)
	// GetDetailed populates job details and both party summaries
	GetDetailed(ctx context.Context, id uuid.UUID) (*models.Referral, error)
	ExistsForJobAndEmployer(ctx context.Context, jobID, employerID uuid.UUID) (bool, error)
	// UpdateStatus moves a referral from one status to another; ErrNotFound
	// means no referral with that id is currently in the from status
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ReferralStatus) (*models.Referral, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) (int64, error)

	// ListByEmployer and ListByJobSeeker return newest first and skip
	// referrals whose job or counterpart no longer exists
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Referral, error)
	ListByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]*models.Referral, error)
	ListAll(ctx context.Context) ([]*models.Referral, error)

	// DeleteRejectedBefore removes rejected referrals created before cutoff and
	// reports how many matched and how many were deleted
	DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (found int, deleted int64, err error)
}
