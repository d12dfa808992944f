// file: internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"referralhub/internal/models"
	"referralhub/internal/policy"
	"referralhub/internal/repositories"

	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	userRepo repositories.UserRepository
	users    *UserCache
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, users *UserCache, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		users:    users,
		logger:   logger,
	}
}

// GetProfile returns the caller's own record without the password hash
func (s *userService) GetProfile(ctx context.Context, principal policy.Principal) (*models.User, error) {
	if !principal.IsAuthenticated() {
		return nil, NewAuthenticationError("No token, authorization denied")
	}

	if user, ok := s.users.Get(ctx, principal.UserID); ok {
		return user, nil
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("User not found")
		}
		s.logger.Error("Failed to fetch profile", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return nil, NewInternalError("Server Error", err)
	}

	s.users.Set(ctx, user)
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile replaces name, experience, company and LinkedIn; role and email never change
func (s *userService) UpdateProfile(ctx context.Context, principal policy.Principal, req *UpdateProfileRequest) (*models.User, error) {
	if !principal.IsAuthenticated() {
		return nil, NewAuthenticationError("No token, authorization denied")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	update := &models.ProfileUpdate{
		Name:              strings.TrimSpace(req.Name),
		YearsOfExperience: req.YearsOfExperience.Int(),
		CurrentCompany:    strings.TrimSpace(req.CurrentCompany),
		LinkedinProfile:   req.LinkedinProfile,
	}

	user, err := s.userRepo.UpdateProfile(ctx, principal.UserID, update)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("User not found")
		}
		return nil, NewInternalError("Server Error", err)
	}

	s.users.Invalidate(ctx, principal.UserID)

	s.logger.Info("Profile updated", zap.String("user_id", principal.UserID.String()))
	user.PasswordHash = ""
	return user, nil
}
