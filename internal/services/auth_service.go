// file: internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"referralhub/internal/models"
	"referralhub/internal/policy"
	"referralhub/internal/repositories"
	"referralhub/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid Credentials"

// authService implements AuthService
type authService struct {
	userRepo   repositories.UserRepository
	users      *UserCache
	tokens     *TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepository,
	users *UserCache,
	tokens *TokenManager,
	bcryptCost int,
	logger *zap.Logger,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:   userRepo,
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// ===============================
// AUTHENTICATION
// ===============================

// Register creates a new user account and returns a token for it
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, NewInternalError("Server Error", err)
	}
	if exists {
		return nil, NewConflictError("User already exists", CodeUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, NewInternalError("Server Error", err)
	}

	years := req.YearsOfExperience.Int()
	user := &models.User{
		Username:          username,
		Name:              strings.TrimSpace(req.Name),
		Email:             email,
		PasswordHash:      string(hash),
		Role:              models.Role(req.Role),
		YearsOfExperience: &years,
		CurrentCompany:    strings.TrimSpace(req.CurrentCompany),
		LinkedinProfile:   req.LinkedinProfile,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("User already exists", CodeUserExists)
		}
		return nil, NewInternalError("Server Error", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, NewInternalError("Server Error", err)
	}

	s.logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return &TokenResponse{Token: token}, nil
}

// Login verifies credentials. Unknown email and wrong password are reported identically.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError(msgInvalidCredentials, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewValidationError(msgInvalidCredentials, nil)
		}
		s.logger.Error("Failed to get user during login", zap.Error(err))
		return nil, NewInternalError("Server Error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, NewValidationError(msgInvalidCredentials, nil)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, NewInternalError("Server Error", err)
	}

	s.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	return &TokenResponse{Token: token}, nil
}

// Authenticate resolves a token to a principal, consulting the user cache before the repository
func (s *authService) Authenticate(ctx context.Context, token string) (policy.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return policy.Principal{}, NewAuthenticationError("No token, authorization denied")
	}

	principal, err := s.tokens.Parse(token)
	if err != nil {
		return policy.Principal{}, NewAuthenticationError("Token is not valid")
	}

	if user, ok := s.users.Get(ctx, principal.UserID); ok {
		return policy.Principal{UserID: user.ID, Role: user.Role}, nil
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return policy.Principal{}, NewAuthenticationError("Token is not valid")
		}
		return policy.Principal{}, NewInternalError("Server Error", err)
	}
	s.users.Set(ctx, user)

	// role is fixed at registration, so the stored role is authoritative
	return policy.Principal{UserID: user.ID, Role: user.Role}, nil
}

// validateRequest runs struct validation and maps failures to a ServiceError
func validateRequest(req interface{}) error {
	err := validation.ValidateStruct(req)
	if err == nil {
		return nil
	}
	var verr *validation.Errors
	if errors.As(err, &verr) {
		return NewValidationError(verr.Error(), err).WithDetails(verr.Details())
	}
	return NewValidationError("Invalid request", err)
}
