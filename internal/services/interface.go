// file: internal/services/interfaces.go
package services

import (
	"context"
	"time"

	"referralhub/internal/models"
	"referralhub/internal/policy"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AuthService registers accounts, issues tokens and resolves them back to principals
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)
	// Authenticate verifies a token and confirms its user still exists
	Authenticate(ctx context.Context, token string) (policy.Principal, error)
}

// UserService manages the caller's own profile
type UserService interface {
	GetProfile(ctx context.Context, principal policy.Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, principal policy.Principal, req *UpdateProfileRequest) (*models.User, error)
}

// JobService manages the job catalog
type JobService interface {
	List(ctx context.Context, principal policy.Principal) ([]*models.Job, error)
	ListMine(ctx context.Context, principal policy.Principal) ([]*models.Job, error)
	Get(ctx context.Context, principal policy.Principal, jobID string) (*models.Job, error)
	Create(ctx context.Context, principal policy.Principal, req *CreateJobRequest) (*models.Job, error)
	Update(ctx context.Context, principal policy.Principal, jobID string, req *UpdateJobRequest) (*models.Job, error)
	Delete(ctx context.Context, principal policy.Principal, jobID string) error
}

// ReferralService manages the referral ledger and its status state machine
type ReferralService interface {
	Create(ctx context.Context, principal policy.Principal, req *CreateReferralRequest) (*models.Referral, error)
	SetStatus(ctx context.Context, principal policy.Principal, referralID string, req *UpdateReferralStatusRequest) (*models.Referral, error)
	Delete(ctx context.Context, principal policy.Principal, referralID string) error
	ClearAll(ctx context.Context, principal policy.Principal) (*models.ClearResult, error)
	SweepOrphaned(ctx context.Context, principal policy.Principal) (*models.SweepResult, error)

	Get(ctx context.Context, principal policy.Principal, referralID string) (*models.Referral, error)
	ListSent(ctx context.Context, principal policy.Principal) ([]*models.Referral, error)
	ListReceived(ctx context.Context, principal policy.Principal) ([]*models.Referral, error)

	// CleanupRejected deletes rejected referrals created before now minus the configured age
	CleanupRejected(ctx context.Context, now time.Time) (*models.CleanupResult, error)
}
