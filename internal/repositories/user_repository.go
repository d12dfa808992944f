// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"fmt"
	"strings"

	"referralhub/internal/database"
	"referralhub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// userRepository implements UserRepository
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	u.id, u.username, u.name, u.email, u.password_hash, u.role,
	u.years_of_experience, u.current_company, u.linkedin_profile, u.date`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.YearsOfExperience, &user.CurrentCompany, &user.LinkedinProfile, &user.Date,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a user; duplicate email or username yields ErrDuplicate
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	query := `
		INSERT INTO users (
			id, username, name, email, password_hash, role,
			years_of_experience, current_company, linkedin_profile
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING date`

	err := r.QueryRowContext(
		ctx, query,
		user.ID, user.Username, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.Role,
		user.YearsOfExperience, user.CurrentCompany, user.LinkedinProfile,
	).Scan(&user.Date)

	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.Email = strings.ToLower(user.Email)
	r.GetLogger().Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	user, err := scanUser(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`

	user, err := scanUser(r.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ExistsByEmailOrUsername reports whether either identifier is taken
func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`

	var exists bool
	if err := r.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email)), username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile replaces the mutable profile fields and returns the updated user
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update *models.ProfileUpdate) (*models.User, error) {
	query := `
		UPDATE users u SET
			name = $2, years_of_experience = $3, current_company = $4, linkedin_profile = $5
		WHERE u.id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.QueryRowContext(
		ctx, query, id,
		update.Name, update.YearsOfExperience, update.CurrentCompany, update.LinkedinProfile,
	))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		r.GetLogger().Error("Failed to update profile",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
