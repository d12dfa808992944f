package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"referralhub/internal/config"
	"referralhub/internal/database"
	"referralhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var referralColumnNames = []string{"id", "job_id", "job_seeker_id", "employer_id", "status", "date", "updated_at"}

func newMockManager(t *testing.T) (*database.Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.DatabaseConfig{SlowQueryThreshold: time.Second}
	return database.NewManagerFromDB(db, cfg, zap.NewNop()), mock
}

func newMockReferralRepo(t *testing.T) (ReferralRepository, sqlmock.Sqlmock) {
	t.Helper()
	mgr, mock := newMockManager(t)
	return NewReferralRepository(mgr, zap.NewNop()), mock
}

// sqlPattern matches the given fragments in order, across line breaks
func sqlPattern(fragments ...string) string {
	pattern := "(?s)"
	for i, f := range fragments {
		if i > 0 {
			pattern += `\s+`
		}
		pattern += regexp.QuoteMeta(f)
	}
	return pattern
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func TestReferralCreate(t *testing.T) {
	ctx := context.Background()
	jobID, seekerID, employerID := newID(), newID(), newID()
	insert := sqlPattern("INSERT INTO referrals (id, job_id, job_seeker_id, employer_id, status)")

	t.Run("fills server timestamps", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		created := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery(insert).
			WithArgs(sqlmock.AnyArg(), jobID.String(), seekerID.String(), employerID.String(), "pending").
			WillReturnRows(sqlmock.NewRows([]string{"date", "updated_at"}).AddRow(created, created))

		ref := &models.Referral{JobID: jobID, JobSeekerID: seekerID, EmployerID: employerID}
		require.NoError(t, repo.Create(ctx, ref))

		assert.NotEqual(t, uuid.Nil, ref.ID)
		assert.Equal(t, models.StatusPending, ref.Status)
		assert.Equal(t, created, ref.Date)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a duplicate", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectQuery(insert).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_referrals_job_employer"})

		err := repo.Create(ctx, &models.Referral{JobID: jobID, JobSeekerID: seekerID, EmployerID: employerID})

		assert.ErrorIs(t, err, ErrDuplicate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other constraint errors pass through", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23503"})

		err := repo.Create(ctx, &models.Referral{JobID: jobID, JobSeekerID: seekerID, EmployerID: employerID})

		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrDuplicate))
		var pqErr *pq.Error
		assert.ErrorAs(t, err, &pqErr)
	})
}

func TestReferralUpdateStatusGuardsCurrentStatus(t *testing.T) {
	ctx := context.Background()
	id, jobID, seekerID, employerID := newID(), newID(), newID(), newID()
	update := sqlPattern(
		"UPDATE referrals r SET status = $3, updated_at = NOW()",
		"WHERE r.id = $1 AND r.status = $2",
		"RETURNING",
	)

	t.Run("row still in from status", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		now := time.Now().UTC()
		mock.ExpectQuery(update).
			WithArgs(id.String(), "pending", "accepted").
			WillReturnRows(sqlmock.NewRows(referralColumnNames).
				AddRow(id.String(), jobID.String(), seekerID.String(), employerID.String(), "accepted", now, now))

		ref, err := repo.UpdateStatus(ctx, id, models.StatusPending, models.StatusAccepted)

		require.NoError(t, err)
		assert.Equal(t, id, ref.ID)
		assert.Equal(t, models.StatusAccepted, ref.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row moved on or vanished", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectQuery(update).
			WithArgs(id.String(), "pending", "rejected").
			WillReturnRows(sqlmock.NewRows(referralColumnNames))

		_, err := repo.UpdateStatus(ctx, id, models.StatusPending, models.StatusRejected)

		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReferralGetByIDNotFound(t *testing.T) {
	repo, mock := newMockReferralRepo(t)
	id := newID()
	mock.ExpectQuery(sqlPattern("FROM referrals r WHERE r.id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(referralColumnNames))

	_, err := repo.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReferralDeleteMissingRow(t *testing.T) {
	repo, mock := newMockReferralRepo(t)
	id := newID()
	mock.ExpectExec(sqlPattern("DELETE FROM referrals WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReferralListsInnerJoinLiveRows(t *testing.T) {
	ctx := context.Background()
	id, jobID, seekerID, employerID := newID(), newID(), newID(), newID()
	now := time.Now().UTC()

	t.Run("sent", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectQuery(sqlPattern(
			"FROM referrals r",
			"JOIN jobs j ON j.id = r.job_id",
			"JOIN users s ON s.id = r.job_seeker_id",
			"WHERE r.employer_id = $1",
			"ORDER BY r.date DESC",
		)).
			WithArgs(employerID.String()).
			WillReturnRows(sqlmock.NewRows(append(referralColumnNames, "company", "position", "name", "email")).
				AddRow(id.String(), jobID.String(), seekerID.String(), employerID.String(), "pending", now, now,
					"Acme", "Backend Engineer", "Alice", "alice@example.com"))

		refs, err := repo.ListByEmployer(ctx, employerID)

		require.NoError(t, err)
		require.Len(t, refs, 1)
		require.NotNil(t, refs[0].Job)
		assert.Equal(t, jobID, refs[0].Job.ID)
		assert.Equal(t, "Acme", refs[0].Job.Company)
		require.NotNil(t, refs[0].JobSeeker)
		assert.Equal(t, seekerID, refs[0].JobSeeker.ID)
		assert.Equal(t, "Alice", refs[0].JobSeeker.Name)
		assert.Nil(t, refs[0].Employer)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("received", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectQuery(sqlPattern(
			"FROM referrals r",
			"JOIN jobs j ON j.id = r.job_id",
			"JOIN users e ON e.id = r.employer_id",
			"WHERE r.job_seeker_id = $1",
			"ORDER BY r.date DESC",
		)).
			WithArgs(seekerID.String()).
			WillReturnRows(sqlmock.NewRows(append(referralColumnNames,
				"company", "position", "name", "email", "years_of_experience", "current_company", "linkedin_profile")).
				AddRow(id.String(), jobID.String(), seekerID.String(), employerID.String(), "accepted", now, now,
					"Acme", "Backend Engineer", "Bob", "bob@example.com", int64(8), "Initech", "https://linkedin.com/in/bob"))

		refs, err := repo.ListByJobSeeker(ctx, seekerID)

		require.NoError(t, err)
		require.Len(t, refs, 1)
		require.NotNil(t, refs[0].Employer)
		assert.Equal(t, employerID, refs[0].Employer.ID)
		require.NotNil(t, refs[0].Employer.YearsOfExperience)
		assert.Equal(t, 8, *refs[0].Employer.YearsOfExperience)
		assert.Equal(t, models.StatusAccepted, refs[0].Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectQuery(sqlPattern("WHERE r.employer_id = $1")).
			WillReturnRows(sqlmock.NewRows(append(referralColumnNames, "company", "position", "name", "email")))

		refs, err := repo.ListByEmployer(ctx, employerID)

		require.NoError(t, err)
		assert.NotNil(t, refs)
		assert.Empty(t, refs)
	})
}

func TestDeleteRejectedBefore(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)
	count := sqlPattern("SELECT COUNT(*) FROM referrals WHERE status = $1 AND date < $2")
	del := sqlPattern("DELETE FROM referrals WHERE status = $1 AND date < $2")

	t.Run("counts and deletes in one transaction", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(count).
			WithArgs("rejected", cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec(del).
			WithArgs("rejected", cutoff).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		found, deleted, err := repo.DeleteRejectedBefore(ctx, cutoff)

		require.NoError(t, err)
		assert.Equal(t, 2, found)
		assert.Equal(t, int64(2), deleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing matched skips the delete", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(count).
			WithArgs("rejected", cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectCommit()

		found, deleted, err := repo.DeleteRejectedBefore(ctx, cutoff)

		require.NoError(t, err)
		assert.Zero(t, found)
		assert.Zero(t, deleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed delete rolls back", func(t *testing.T) {
		repo, mock := newMockReferralRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(count).
			WithArgs("rejected", cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(del).
			WithArgs("rejected", cutoff).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, _, err := repo.DeleteRejectedBefore(ctx, cutoff)

		assert.ErrorContains(t, err, "failed to delete rejected referrals")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserCreateMapsUniqueViolation(t *testing.T) {
	mgr, mock := newMockManager(t)
	repo := NewUserRepository(mgr, zap.NewNop())
	mock.ExpectQuery(sqlPattern("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	years := 3
	err := repo.Create(context.Background(), &models.User{
		Username:          "alice",
		Name:              "Alice",
		Email:             "Alice@Example.com",
		PasswordHash:      "hash",
		Role:              models.RoleJobSeeker,
		YearsOfExperience: &years,
		CurrentCompany:    "Acme",
		LinkedinProfile:   "https://linkedin.com/in/alice",
	})

	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsUniqueViolation(nil))
}
