package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"referralhub/internal/models"
	"referralhub/internal/policy"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalOf(u *models.User) policy.Principal {
	return policy.Principal{UserID: u.ID, Role: u.Role}
}

func requireServiceError(t *testing.T, err error, status int, msg string) *ServiceError {
	t.Helper()
	require.Error(t, err)
	se := GetServiceError(err)
	assert.Equal(t, status, se.GetStatusCode())
	if msg != "" {
		assert.Equal(t, msg, se.Message)
	}
	return se
}

func TestReferralCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	refs := f.services.ReferralService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	job := f.addJob(alice)

	t.Run("pending referral owned by job owner", func(t *testing.T) {
		ref, err := refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: job.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, ref.Status)
		assert.Equal(t, alice.ID, ref.JobSeekerID)
		assert.Equal(t, bob.ID, ref.EmployerID)
		assert.Equal(t, job.ID, ref.JobID)
		assert.NotEqual(t, uuid.Nil, ref.ID)
	})

	t.Run("second referral for same job is a conflict", func(t *testing.T) {
		_, err := refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: job.ID.String()})
		se := requireServiceError(t, err, http.StatusConflict, "You have already sent a referral for this job")
		assert.Equal(t, CodeDuplicateReferral, se.Code)
	})

	t.Run("job seekers cannot refer", func(t *testing.T) {
		_, err := refs.Create(ctx, principalOf(alice), &CreateReferralRequest{JobID: job.ID.String()})
		requireServiceError(t, err, http.StatusForbidden, "Only employers can create referrals")
	})

	t.Run("job id checks", func(t *testing.T) {
		_, err := refs.Create(ctx, principalOf(bob), &CreateReferralRequest{})
		requireServiceError(t, err, http.StatusBadRequest, "Job ID is required")

		_, err = refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: "not-a-uuid"})
		requireServiceError(t, err, http.StatusBadRequest, "Invalid job ID format")

		_, err = refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: uuid.Must(uuid.NewV4()).String()})
		requireServiceError(t, err, http.StatusNotFound, "Job not found")
	})
}

func TestReferralCreateDuplicateRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	job := f.addJob(alice)

	// the existence check passes but the insert hits the unique index
	repo := &fakeReferralRepo{f.store}
	require.NoError(t, repo.Create(ctx, &models.Referral{
		JobID: job.ID, JobSeekerID: alice.ID, EmployerID: bob.ID, Status: models.StatusPending,
	}))
	svc := NewReferralService(&racingReferralRepo{repo}, &fakeJobRepo{f.store}, &fakeUserRepo{f.store}, 0, f.services.Logger)

	_, err := svc.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: job.ID.String()})
	se := requireServiceError(t, err, http.StatusConflict, "")
	assert.Equal(t, CodeDuplicateReferral, se.Code)
}

type racingReferralRepo struct{ *fakeReferralRepo }

func (r *racingReferralRepo) ExistsForJobAndEmployer(ctx context.Context, jobID, employerID uuid.UUID) (bool, error) {
	return false, nil
}

func TestReferralSetStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	refs := f.services.ReferralService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	job := f.addJob(alice)

	ref, err := refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: job.ID.String()})
	require.NoError(t, err)
	id := ref.ID.String()

	_, err = refs.SetStatus(ctx, principalOf(alice), id, &UpdateReferralStatusRequest{Status: "maybe"})
	requireServiceError(t, err, http.StatusBadRequest, "Invalid status")

	_, err = refs.SetStatus(ctx, principalOf(alice), id, &UpdateReferralStatusRequest{Status: "pending"})
	requireServiceError(t, err, http.StatusBadRequest, "Invalid status")

	_, err = refs.SetStatus(ctx, principalOf(bob), id, &UpdateReferralStatusRequest{Status: "accepted"})
	requireServiceError(t, err, http.StatusForbidden, "Not authorized to update this referral")

	_, err = refs.SetStatus(ctx, principalOf(alice), "bogus", &UpdateReferralStatusRequest{Status: "accepted"})
	requireServiceError(t, err, http.StatusBadRequest, "Invalid referral ID format")

	_, err = refs.SetStatus(ctx, principalOf(alice), uuid.Must(uuid.NewV4()).String(), &UpdateReferralStatusRequest{Status: "accepted"})
	requireServiceError(t, err, http.StatusNotFound, "Referral not found")

	accepted, err := refs.SetStatus(ctx, principalOf(alice), id, &UpdateReferralStatusRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	// same status again is a no-op
	again, err := refs.SetStatus(ctx, principalOf(alice), id, &UpdateReferralStatusRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, again.Status)

	// accepted is terminal
	_, err = refs.SetStatus(ctx, principalOf(alice), id, &UpdateReferralStatusRequest{Status: "rejected"})
	se := requireServiceError(t, err, http.StatusConflict, "")
	assert.Equal(t, CodeInvalidTransition, se.Code)
}

func TestReferralSetStatusLostRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	job := f.addJob(alice)

	ref, err := f.services.ReferralService.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: job.ID.String()})
	require.NoError(t, err)

	// another request rejects the referral between the read and the guarded update
	repo := &staleReadReferralRepo{fakeReferralRepo: &fakeReferralRepo{f.store}}
	svc := NewReferralService(repo, &fakeJobRepo{f.store}, &fakeUserRepo{f.store}, 0, f.services.Logger)
	repo.onRead = func() {
		_, _ = (&fakeReferralRepo{f.store}).UpdateStatus(ctx, ref.ID, models.StatusPending, models.StatusRejected)
	}

	_, err = svc.SetStatus(ctx, principalOf(alice), ref.ID.String(), &UpdateReferralStatusRequest{Status: "accepted"})
	se := requireServiceError(t, err, http.StatusConflict, "")
	assert.Equal(t, CodeInvalidTransition, se.Code)

	stored, err := repo.fakeReferralRepo.GetByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
}

type staleReadReferralRepo struct {
	*fakeReferralRepo
	onRead func()
}

func (r *staleReadReferralRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	ref, err := r.fakeReferralRepo.GetByID(ctx, id)
	if r.onRead != nil {
		r.onRead()
		r.onRead = nil
	}
	return ref, err
}

func TestReferralDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	refs := f.services.ReferralService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	bobA := f.addUser("BobA", models.RoleEmployer)
	bobB := f.addUser("BobB", models.RoleEmployer)
	job := f.addJob(alice)

	ref, err := refs.Create(ctx, principalOf(bobA), &CreateReferralRequest{JobID: job.ID.String()})
	require.NoError(t, err)

	err = refs.Delete(ctx, principalOf(bobB), ref.ID.String())
	requireServiceError(t, err, http.StatusForbidden, "Not authorized to delete this referral")

	err = refs.Delete(ctx, principalOf(alice), ref.ID.String())
	requireServiceError(t, err, http.StatusForbidden, "")

	require.NoError(t, refs.Delete(ctx, principalOf(bobA), ref.ID.String()))

	err = refs.Delete(ctx, principalOf(bobA), ref.ID.String())
	requireServiceError(t, err, http.StatusNotFound, "Referral not found")
}

func TestReferralQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	refs := f.services.ReferralService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	carol := f.addUser("Carol", models.RoleEmployer)
	job := f.addJob(alice)

	ref, err := refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: job.ID.String()})
	require.NoError(t, err)

	t.Run("detail visible to both parties", func(t *testing.T) {
		for _, who := range []*models.User{alice, bob} {
			got, err := refs.Get(ctx, principalOf(who), ref.ID.String())
			require.NoError(t, err)
			require.NotNil(t, got.Job)
			assert.Equal(t, "Globex", got.Job.Company)
			require.NotNil(t, got.JobSeeker)
			assert.Equal(t, "Alice", got.JobSeeker.Name)
			require.NotNil(t, got.Employer)
			assert.Equal(t, "Bob", got.Employer.Name)
		}
	})

	t.Run("detail hidden from others", func(t *testing.T) {
		_, err := refs.Get(ctx, principalOf(carol), ref.ID.String())
		requireServiceError(t, err, http.StatusForbidden, "Not authorized to view this referral")
	})

	t.Run("sent and received", func(t *testing.T) {
		sent, err := refs.ListSent(ctx, principalOf(bob))
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, ref.ID, sent[0].ID)

		received, err := refs.ListReceived(ctx, principalOf(alice))
		require.NoError(t, err)
		require.Len(t, received, 1)

		none, err := refs.ListSent(ctx, principalOf(carol))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("role checks on lists", func(t *testing.T) {
		_, err := refs.ListSent(ctx, principalOf(alice))
		requireServiceError(t, err, http.StatusForbidden, "Only employers can view sent referrals")

		_, err = refs.ListReceived(ctx, principalOf(bob))
		requireServiceError(t, err, http.StatusForbidden, "Only job seekers can view received referrals")
	})
}

func TestReferralClearAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	refs := f.services.ReferralService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	dave := f.addUser("Dave", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	carol := f.addUser("Carol", models.RoleEmployer)
	aliceJob := f.addJob(alice)
	daveJob := f.addJob(dave)

	for _, emp := range []*models.User{bob, carol} {
		_, err := refs.Create(ctx, principalOf(emp), &CreateReferralRequest{JobID: aliceJob.ID.String()})
		require.NoError(t, err)
	}
	_, err := refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: daveJob.ID.String()})
	require.NoError(t, err)

	_, err = refs.ClearAll(ctx, principalOf(bob))
	requireServiceError(t, err, http.StatusForbidden, "Only job seekers can clear their referrals")

	res, err := refs.ClearAll(ctx, principalOf(alice))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedCount)
	assert.Equal(t, "Successfully cleared 2 referrals", res.Message)
	assert.Equal(t, "Alice", res.UserName)

	remaining, err := refs.ListReceived(ctx, principalOf(dave))
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestReferralSweepOrphaned(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	refs := f.services.ReferralService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	kept := f.addJob(alice)
	gone := f.addJob(alice)

	for _, job := range []*models.Job{kept, gone} {
		_, err := refs.Create(ctx, principalOf(bob), &CreateReferralRequest{JobID: job.ID.String()})
		require.NoError(t, err)
	}

	require.NoError(t, f.services.JobService.Delete(ctx, principalOf(alice), gone.ID.String()))

	_, err := refs.SweepOrphaned(ctx, policy.Principal{})
	requireServiceError(t, err, http.StatusUnauthorized, "")

	res, err := refs.SweepOrphaned(ctx, principalOf(bob))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)
	assert.Equal(t, "Cleanup completed. Removed 1 referrals with deleted jobs.", res.Message)

	all, err := (&fakeReferralRepo{f.store}).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].JobID)
}

func TestReferralCleanupRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	refs := f.services.ReferralService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	carol := f.addUser("Carol", models.RoleEmployer)
	dan := f.addUser("Dan", models.RoleEmployer)
	erin := f.addUser("Erin", models.RoleEmployer)
	job := f.addJob(alice)

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	create := func(emp *models.User, status string, age time.Duration) uuid.UUID {
		ref, err := refs.Create(ctx, principalOf(emp), &CreateReferralRequest{JobID: job.ID.String()})
		require.NoError(t, err)
		if status != "" {
			_, err = refs.SetStatus(ctx, principalOf(alice), ref.ID.String(), &UpdateReferralStatusRequest{Status: status})
			require.NoError(t, err)
		}
		f.store.backdate(ref.ID, now.Add(-age))
		return ref.ID
	}

	old := create(bob, "rejected", 25*time.Hour)
	fresh := create(carol, "rejected", 23*time.Hour)
	pending := create(dan, "", 48*time.Hour)
	accepted := create(erin, "accepted", 48*time.Hour)

	res, err := refs.CleanupRejected(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)
	assert.Equal(t, 1, res.FoundReferrals)
	assert.Equal(t, now.Add(-24*time.Hour), res.CutoffDate)
	assert.Equal(t, "Auto-deleted 1 rejected referrals older than 1 day", res.Message)

	repo := &fakeReferralRepo{f.store}
	_, err = repo.GetByID(ctx, old)
	assert.Error(t, err)
	_, err = repo.GetByID(ctx, fresh)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, pending)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, accepted)
	assert.NoError(t, err)

	// running again at the same instant deletes nothing
	res, err = refs.CleanupRejected(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.DeletedCount)
}

func TestDescribeAge(t *testing.T) {
	assert.Equal(t, "1 day", describeAge(24*time.Hour))
	assert.Equal(t, "3 days", describeAge(72*time.Hour))
	assert.Equal(t, "12h0m0s", describeAge(12*time.Hour))
}
