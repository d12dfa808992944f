// file: internal/repositories/referral_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"referralhub/internal/database"
	"referralhub/internal/models"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// referralRepository implements ReferralRepository
type referralRepository struct {
	*BaseRepository
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *database.Manager, logger *zap.Logger) ReferralRepository {
	return &referralRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const referralColumns = `r.id, r.job_id, r.job_seeker_id, r.employer_id, r.status, r.date, r.updated_at`

func referralDest(ref *models.Referral) []interface{} {
	return []interface{}{
		&ref.ID, &ref.JobID, &ref.JobSeekerID, &ref.EmployerID, &ref.Status, &ref.Date, &ref.UpdatedAt,
	}
}

func scanReferral(row rowScanner) (*models.Referral, error) {
	var ref models.Referral
	if err := row.Scan(referralDest(&ref)...); err != nil {
		return nil, err
	}
	return &ref, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a pending referral; a second referral for the same
// (job, employer) pair yields ErrDuplicate
func (r *referralRepository) Create(ctx context.Context, ref *models.Referral) error {
	if ref.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate referral id: %w", err)
		}
		ref.ID = id
	}
	if ref.Status == "" {
		ref.Status = models.StatusPending
	}

	query := `
		INSERT INTO referrals (id, job_id, job_seeker_id, employer_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING date, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		ref.ID, ref.JobID, ref.JobSeekerID, ref.EmployerID, ref.Status,
	).Scan(&ref.Date, &ref.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.GetLogger().Error("Failed to create referral",
			zap.Error(err),
			zap.String("job_id", ref.JobID.String()),
			zap.String("employer_id", ref.EmployerID.String()),
		)
		return fmt.Errorf("failed to create referral: %w", err)
	}

	r.GetLogger().Info("Referral created",
		zap.String("referral_id", ref.ID.String()),
		zap.String("job_id", ref.JobID.String()),
		zap.String("employer_id", ref.EmployerID.String()),
	)
	return nil
}

// GetByID retrieves a referral without joins
func (r *referralRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals r WHERE r.id = $1`

	ref, err := scanReferral(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get referral by ID: %w", err)
	}
	return ref, nil
}

// GetDetailed retrieves a referral with job details and both party summaries.
// References to deleted rows are left unpopulated.
func (r *referralRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	query := `
		SELECT ` + referralColumns + `,
			j.id IS NOT NULL, COALESCE(j.company, ''), COALESCE(j.position, ''), COALESCE(j.location, ''),
			COALESCE(j.skills, '{}'), COALESCE(j.description, ''), COALESCE(j.job_id, ''), COALESCE(j.job_url, ''),
			s.id IS NOT NULL, COALESCE(s.name, ''), COALESCE(s.email, ''), s.years_of_experience,
			COALESCE(s.current_company, ''), COALESCE(s.linkedin_profile, ''),
			e.id IS NOT NULL, COALESCE(e.name, ''), COALESCE(e.email, ''), e.years_of_experience,
			COALESCE(e.current_company, ''), COALESCE(e.linkedin_profile, '')
		FROM referrals r
		LEFT JOIN jobs j ON j.id = r.job_id
		LEFT JOIN users s ON s.id = r.job_seeker_id
		LEFT JOIN users e ON e.id = r.employer_id
		WHERE r.id = $1`

	var (
		ref                            models.Referral
		job                            models.JobSummary
		seeker, employer               models.UserSummary
		hasJob, hasSeeker, hasEmployer bool
		skills                         pq.StringArray
	)

	dest := append(referralDest(&ref),
		&hasJob, &job.Company, &job.Position, &job.Location,
		&skills, &job.Description, &job.JobID, &job.JobURL,
		&hasSeeker, &seeker.Name, &seeker.Email, &seeker.YearsOfExperience,
		&seeker.CurrentCompany, &seeker.LinkedinProfile,
		&hasEmployer, &employer.Name, &employer.Email, &employer.YearsOfExperience,
		&employer.CurrentCompany, &employer.LinkedinProfile,
	)

	if err := r.QueryRowContext(ctx, query, id).Scan(dest...); err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get referral details: %w", err)
	}

	if hasJob {
		job.ID = ref.JobID
		job.Skills = []string(skills)
		ref.Job = &job
	}
	if hasSeeker {
		seeker.ID = ref.JobSeekerID
		ref.JobSeeker = &seeker
	}
	if hasEmployer {
		employer.ID = ref.EmployerID
		ref.Employer = &employer
	}
	return &ref, nil
}

// ExistsForJobAndEmployer reports whether the employer already referred the job
func (r *referralRepository) ExistsForJobAndEmployer(ctx context.Context, jobID, employerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM referrals WHERE job_id = $1 AND employer_id = $2)`

	var exists bool
	if err := r.QueryRowContext(ctx, query, jobID, employerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check referral existence: %w", err)
	}
	return exists, nil
}

// UpdateStatus sets the status and bumps updated_at, guarded on the current status
func (r *referralRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ReferralStatus) (*models.Referral, error) {
	query := `
		UPDATE referrals r SET status = $3, updated_at = NOW()
		WHERE r.id = $1 AND r.status = $2
		RETURNING ` + referralColumns

	ref, err := scanReferral(r.QueryRowContext(ctx, query, id, from, to))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update referral status: %w", err)
	}

	r.GetLogger().Info("Referral status updated",
		zap.String("referral_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return ref, nil
}

// Delete removes a single referral
func (r *referralRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.ExecContext(ctx, `DELETE FROM referrals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete referral: %w", err)
	}
	return checkAffected(result)
}

// DeleteByJobSeeker removes every referral received by the job seeker
func (r *referralRepository) DeleteByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) (int64, error) {
	result, err := r.ExecContext(ctx, `DELETE FROM referrals WHERE job_seeker_id = $1`, jobSeekerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear referrals: %w", err)
	}
	return result.RowsAffected()
}

// ===============================
// LISTING
// ===============================

// ListByEmployer returns sent referrals with job and job seeker summaries
func (r *referralRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Referral, error) {
	query := `
		SELECT ` + referralColumns + `,
			j.company, j.position,
			s.name, s.email
		FROM referrals r
		JOIN jobs j ON j.id = r.job_id
		JOIN users s ON s.id = r.job_seeker_id
		WHERE r.employer_id = $1
		ORDER BY r.date DESC`

	rows, err := r.QueryContext(ctx, query, employerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent referrals: %w", err)
	}
	defer rows.Close()

	refs := make([]*models.Referral, 0)
	for rows.Next() {
		var (
			ref    models.Referral
			job    models.JobSummary
			seeker models.UserSummary
		)
		dest := append(referralDest(&ref), &job.Company, &job.Position, &seeker.Name, &seeker.Email)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		job.ID = ref.JobID
		seeker.ID = ref.JobSeekerID
		ref.Job = &job
		ref.JobSeeker = &seeker
		refs = append(refs, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}
	return refs, nil
}

// ListByJobSeeker returns received referrals with job and employer summaries
func (r *referralRepository) ListByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]*models.Referral, error) {
	query := `
		SELECT ` + referralColumns + `,
			j.company, j.position,
			e.name, e.email, e.years_of_experience, e.current_company, e.linkedin_profile
		FROM referrals r
		JOIN jobs j ON j.id = r.job_id
		JOIN users e ON e.id = r.employer_id
		WHERE r.job_seeker_id = $1
		ORDER BY r.date DESC`

	rows, err := r.QueryContext(ctx, query, jobSeekerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received referrals: %w", err)
	}
	defer rows.Close()

	refs := make([]*models.Referral, 0)
	for rows.Next() {
		var (
			ref      models.Referral
			job      models.JobSummary
			employer models.UserSummary
		)
		dest := append(referralDest(&ref),
			&job.Company, &job.Position,
			&employer.Name, &employer.Email, &employer.YearsOfExperience,
			&employer.CurrentCompany, &employer.LinkedinProfile,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		job.ID = ref.JobID
		employer.ID = ref.EmployerID
		ref.Job = &job
		ref.Employer = &employer
		refs = append(refs, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}
	return refs, nil
}

// ListAll returns every referral without joins
func (r *referralRepository) ListAll(ctx context.Context) ([]*models.Referral, error) {
	rows, err := r.QueryContext(ctx, `SELECT `+referralColumns+` FROM referrals r ORDER BY r.date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	defer rows.Close()

	refs := make([]*models.Referral, 0)
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}
	return refs, nil
}

// ===============================
// CLEANUP
// ===============================

// DeleteRejectedBefore counts and deletes rejected referrals created before cutoff
// in a single transaction
func (r *referralRepository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int, int64, error) {
	var (
		found   int
		deleted int64
	)

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM referrals WHERE status = $1 AND date < $2`,
			models.StatusRejected, cutoff,
		).Scan(&found)
		if err != nil {
			return fmt.Errorf("failed to count rejected referrals: %w", err)
		}
		if found == 0 {
			return nil
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM referrals WHERE status = $1 AND date < $2`,
			models.StatusRejected, cutoff,
		)
		if err != nil {
			return fmt.Errorf("failed to delete rejected referrals: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return found, deleted, nil
}
