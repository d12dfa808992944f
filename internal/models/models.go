// file: internal/models/models.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
)

// ===============================
// ROLES
// ===============================

// Role is the account type chosen at registration
type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
)

// ParseRole converts a raw string into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleJobSeeker, RoleEmployer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ===============================
// CORE ENTITIES
// ===============================

// User is an account in the user directory. Role and email are fixed after registration.
type User struct {
	ID                uuid.UUID `json:"_id" db:"id"`
	Username          string    `json:"username" db:"username"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	Role              Role      `json:"role" db:"role"`
	YearsOfExperience *int      `json:"yearsOfExperience" db:"years_of_experience"`
	CurrentCompany    string    `json:"currentCompany" db:"current_company"`
	LinkedinProfile   string    `json:"linkedinProfile" db:"linkedin_profile"`
	Date              time.Time `json:"date" db:"date"`
}

// Summary returns the public fields used when a user is embedded in another record
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		YearsOfExperience: u.YearsOfExperience,
		CurrentCompany:    u.CurrentCompany,
		LinkedinProfile:   u.LinkedinProfile,
	}
}

// UserSummary is a user embedded in a job or referral
type UserSummary struct {
	ID                uuid.UUID `json:"_id"`
	Name              string    `json:"name,omitempty"`
	Email             string    `json:"email,omitempty"`
	YearsOfExperience *int      `json:"yearsOfExperience,omitempty"`
	CurrentCompany    string    `json:"currentCompany,omitempty"`
	LinkedinProfile   string    `json:"linkedinProfile,omitempty"`
}

// Job is a posting owned by a job seeker
type Job struct {
	ID          uuid.UUID      `json:"_id" db:"id"`
	UserID      uuid.UUID      `json:"-" db:"user_id"`
	Company     string         `json:"company" db:"company"`
	Position    string         `json:"position" db:"position"`
	JobID       string         `json:"jobId" db:"job_id"`
	JobURL      string         `json:"jobUrl" db:"job_url"`
	Location    string         `json:"location" db:"location"`
	Skills      pq.StringArray `json:"skills" db:"skills"`
	Description string         `json:"description" db:"description"`
	Date        time.Time      `json:"date" db:"date"`

	// Joined owner (not a column)
	User *UserSummary `json:"-" db:"-"`
}

// MarshalJSON renders "user" as the owner summary when joined, otherwise as the owner id
func (j Job) MarshalJSON() ([]byte, error) {
	type plain Job
	var user interface{} = j.UserID
	if j.User != nil {
		user = j.User
	}
	return json.Marshal(struct {
		plain
		User interface{} `json:"user"`
	}{plain: plain(j), User: user})
}

// JobSummary is a job embedded in a referral
type JobSummary struct {
	ID          uuid.UUID `json:"_id"`
	Company     string    `json:"company,omitempty"`
	Position    string    `json:"position,omitempty"`
	Location    string    `json:"location,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	Description string    `json:"description,omitempty"`
	JobID       string    `json:"jobId,omitempty"`
	JobURL      string    `json:"jobUrl,omitempty"`
}

// Referral links a job, the seeker who owned it at creation time and the employer who sent it
type Referral struct {
	ID          uuid.UUID      `json:"_id" db:"id"`
	JobID       uuid.UUID      `json:"-" db:"job_id"`
	JobSeekerID uuid.UUID      `json:"-" db:"job_seeker_id"`
	EmployerID  uuid.UUID      `json:"-" db:"employer_id"`
	Status      ReferralStatus `json:"status" db:"status"`
	Date        time.Time      `json:"date" db:"date"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`

	// Joined references (not columns)
	Job       *JobSummary  `json:"-" db:"-"`
	JobSeeker *UserSummary `json:"-" db:"-"`
	Employer  *UserSummary `json:"-" db:"-"`
}

// MarshalJSON renders each reference as its joined summary when present, otherwise as its id
func (r Referral) MarshalJSON() ([]byte, error) {
	type plain Referral
	var job interface{} = r.JobID
	if r.Job != nil {
		job = r.Job
	}
	var seeker interface{} = r.JobSeekerID
	if r.JobSeeker != nil {
		seeker = r.JobSeeker
	}
	var employer interface{} = r.EmployerID
	if r.Employer != nil {
		employer = r.Employer
	}
	return json.Marshal(struct {
		plain
		Job       interface{} `json:"job"`
		JobSeeker interface{} `json:"jobSeeker"`
		Employer  interface{} `json:"employer"`
	}{plain: plain(r), Job: job, JobSeeker: seeker, Employer: employer})
}

// ===============================
// PARTIAL UPDATES
// ===============================

// JobPatch carries the fields of a job update; nil fields are left unchanged
type JobPatch struct {
	Company     *string
	Position    *string
	JobID       *string
	JobURL      *string
	Location    *string
	Skills      []string
	Description *string
}

// IsEmpty reports whether the patch changes nothing
func (p *JobPatch) IsEmpty() bool {
	return p.Company == nil && p.Position == nil && p.JobID == nil && p.JobURL == nil &&
		p.Location == nil && p.Skills == nil && p.Description == nil
}

// Apply copies the set fields of the patch onto job
func (p *JobPatch) Apply(job *Job) {
	if p.Company != nil {
		job.Company = *p.Company
	}
	if p.Position != nil {
		job.Position = *p.Position
	}
	if p.JobID != nil {
		job.JobID = *p.JobID
	}
	if p.JobURL != nil {
		job.JobURL = *p.JobURL
	}
	if p.Location != nil {
		job.Location = *p.Location
	}
	if p.Skills != nil {
		job.Skills = pq.StringArray(p.Skills)
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
}

// ProfileUpdate holds the mutable profile fields of a user
type ProfileUpdate struct {
	Name              string
	YearsOfExperience int
	CurrentCompany    string
	LinkedinProfile   string
}

// ===============================
// CLEANUP RESULTS
// ===============================

// CleanupResult reports an age-based sweep of rejected referrals
type CleanupResult struct {
	Message        string    `json:"msg"`
	DeletedCount   int64     `json:"deletedCount"`
	CutoffDate     time.Time `json:"cutoffDate"`
	FoundReferrals int       `json:"foundReferrals"`
}

// SweepResult reports the removal of referrals whose job no longer exists
type SweepResult struct {
	Message      string `json:"msg"`
	DeletedCount int64  `json:"deletedCount"`
}

// ClearResult reports a job seeker clearing all of their referrals
type ClearResult struct {
	Message      string `json:"msg"`
	DeletedCount int64  `json:"deletedCount"`
	UserName     string `json:"userName"`
}
