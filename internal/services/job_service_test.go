package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"referralhub/internal/models"
	"referralhub/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobRequest() *CreateJobRequest {
	return &CreateJobRequest{
		Company:     "Globex",
		Position:    "Platform Engineer",
		JobID:       "GX-42",
		JobURL:      "https://globex.example/jobs/42",
		Location:    "Berlin",
		Skills:      SkillList{"go", "postgres"},
		Description: "Run the platform",
	}
}

func TestJobCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	jobs := f.services.JobService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)

	t.Run("job seeker with complete profile", func(t *testing.T) {
		job, err := jobs.Create(ctx, principalOf(alice), jobRequest())
		require.NoError(t, err)
		assert.Equal(t, alice.ID, job.UserID)
		require.NotNil(t, job.User)
		assert.Equal(t, "Alice", job.User.Name)
		assert.Equal(t, []string{"go", "postgres"}, []string(job.Skills))
	})

	t.Run("employers cannot post", func(t *testing.T) {
		_, err := jobs.Create(ctx, principalOf(bob), jobRequest())
		requireServiceError(t, err, http.StatusForbidden, "Only job seekers can post jobs")
	})

	t.Run("missing fields", func(t *testing.T) {
		req := jobRequest()
		req.Skills = nil
		_, err := jobs.Create(ctx, principalOf(alice), req)
		requireServiceError(t, err, http.StatusBadRequest, "Please provide all required fields")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := jobs.Create(ctx, policy.Principal{}, jobRequest())
		requireServiceError(t, err, http.StatusUnauthorized, "")
	})
}

func TestJobCreateIncompleteProfile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(u *models.User)
		field  string
	}{
		{"no experience", func(u *models.User) { u.YearsOfExperience = nil }, "years of experience"},
		{"no company", func(u *models.User) { u.CurrentCompany = " " }, "current company"},
		{"no linkedin", func(u *models.User) { u.LinkedinProfile = "" }, "LinkedIn profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			alice := f.addUser("Alice", models.RoleJobSeeker)
			tt.modify(alice)

			_, err := f.services.JobService.Create(ctx, principalOf(alice), jobRequest())
			se := requireServiceError(t, err, http.StatusBadRequest, "")
			assert.Contains(t, se.Message, tt.field)
			assert.Equal(t, tt.field, se.Details["field"])

			mine, err := f.services.JobService.ListMine(ctx, principalOf(alice))
			require.NoError(t, err)
			assert.Empty(t, mine)
		})
	}
}

func TestJobUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	jobs := f.services.JobService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	mallory := f.addUser("Mallory", models.RoleJobSeeker)
	job := f.addJob(alice)

	var patch UpdateJobRequest
	require.NoError(t, json.Unmarshal([]byte(`{"location":"Lisbon","skills":"go, k8s ,"}`), &patch))

	_, err := jobs.Update(ctx, principalOf(mallory), job.ID.String(), &patch)
	requireServiceError(t, err, http.StatusForbidden, "Not authorized to modify this job")

	updated, err := jobs.Update(ctx, principalOf(alice), job.ID.String(), &patch)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", updated.Location)
	assert.Equal(t, []string{"go", "k8s"}, []string(updated.Skills))
	assert.Equal(t, "Globex", updated.Company)

	unchanged, err := jobs.Update(ctx, principalOf(alice), job.ID.String(), &UpdateJobRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", unchanged.Location)

	_, err = jobs.Get(ctx, principalOf(alice), "123")
	requireServiceError(t, err, http.StatusBadRequest, "Invalid job ID format")

	err = jobs.Delete(ctx, principalOf(mallory), job.ID.String())
	requireServiceError(t, err, http.StatusForbidden, "")

	require.NoError(t, jobs.Delete(ctx, principalOf(alice), job.ID.String()))

	_, err = jobs.Get(ctx, principalOf(alice), job.ID.String())
	requireServiceError(t, err, http.StatusNotFound, "Job not found")
}

func TestJobList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	jobs := f.services.JobService

	alice := f.addUser("Alice", models.RoleJobSeeker)
	dave := f.addUser("Dave", models.RoleJobSeeker)
	bob := f.addUser("Bob", models.RoleEmployer)
	first := f.addJob(alice)
	second := f.addJob(dave)

	all, err := jobs.List(ctx, principalOf(bob))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "Dave", all[0].User.Name)

	mine, err := jobs.ListMine(ctx, principalOf(alice))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = jobs.List(ctx, policy.Principal{})
	requireServiceError(t, err, http.StatusForbidden, "Authentication required")
}
