// file: internal/repositories/job_repository.go
package repositories

import (
	"context"
	"fmt"

	"referralhub/internal/database"
	"referralhub/internal/models"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// jobRepository implements JobRepository
type jobRepository struct {
	*BaseRepository
}

// NewJobRepository creates a new instance of JobRepository
func NewJobRepository(db *database.Manager, logger *zap.Logger) JobRepository {
	return &jobRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const jobSelect = `
	SELECT
		j.id, j.user_id, j.company, j.position, j.job_id, j.job_url,
		j.location, j.skills, j.description, j.date,
		-- Owner summary
		u.name, u.email, u.years_of_experience, u.current_company, u.linkedin_profile
	FROM jobs j
	JOIN users u ON u.id = j.user_id`

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	owner := &models.UserSummary{}
	err := row.Scan(
		&job.ID, &job.UserID, &job.Company, &job.Position, &job.JobID, &job.JobURL,
		&job.Location, &job.Skills, &job.Description, &job.Date,
		&owner.Name, &owner.Email, &owner.YearsOfExperience, &owner.CurrentCompany, &owner.LinkedinProfile,
	)
	if err != nil {
		return nil, err
	}
	owner.ID = job.UserID
	job.User = owner
	return &job, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create creates a new job posting
func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate job id: %w", err)
		}
		job.ID = id
	}
	if job.Skills == nil {
		job.Skills = pq.StringArray{}
	}

	query := `
		INSERT INTO jobs (
			id, user_id, company, position, job_id, job_url,
			location, skills, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING date`

	err := r.QueryRowContext(
		ctx, query,
		job.ID, job.UserID, job.Company, job.Position, job.JobID, job.JobURL,
		job.Location, job.Skills, job.Description,
	).Scan(&job.Date)

	if err != nil {
		r.GetLogger().Error("Failed to create job",
			zap.Error(err),
			zap.String("user_id", job.UserID.String()),
			zap.String("position", job.Position),
		)
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.GetLogger().Info("Job created successfully",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("company", job.Company),
	)
	return nil
}

// GetByID retrieves a job with its owner summary
func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := scanJob(r.QueryRowContext(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job by ID: %w", err)
	}
	return job, nil
}

// Exists reports whether a job with the given id is stored
func (r *jobRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check job existence: %w", err)
	}
	return exists, nil
}

// List returns every job, newest first
func (r *jobRepository) List(ctx context.Context) ([]*models.Job, error) {
	return r.list(ctx, jobSelect+` ORDER BY j.date DESC`)
}

// ListByUser returns the jobs owned by userID, newest first
func (r *jobRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Job, error) {
	return r.list(ctx, jobSelect+` WHERE j.user_id = $1 ORDER BY j.date DESC`, userID)
}

func (r *jobRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Job, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// Update writes every mutable column of job
func (r *jobRepository) Update(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs SET
			company = $2, position = $3, job_id = $4, job_url = $5,
			location = $6, skills = $7, description = $8
		WHERE id = $1`

	result, err := r.ExecContext(
		ctx, query,
		job.ID, job.Company, job.Position, job.JobID, job.JobURL,
		job.Location, job.Skills, job.Description,
	)
	if err != nil {
		r.GetLogger().Error("Failed to update job",
			zap.Error(err),
			zap.String("job_id", job.ID.String()),
		)
		return fmt.Errorf("failed to update job: %w", err)
	}
	return checkAffected(result)
}

// Delete removes a job; its referrals are left for the orphan sweep
func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return err
	}

	r.GetLogger().Info("Job deleted", zap.String("job_id", id.String()))
	return nil
}
