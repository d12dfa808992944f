// Package policy holds the authorization rules for jobs and referrals.
//
// Every rule is a pure function of the caller and the resource it targets.
// A nil result means the action is allowed; otherwise the returned error is a
// *Denial (role or ownership failure) or an *IncompleteProfileError.
package policy

import (
	"fmt"
	"strings"

	"referralhub/internal/models"

	"github.com/gofrs/uuid"
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

// IsAuthenticated reports whether the principal carries an identity
func (p Principal) IsAuthenticated() bool {
	return p.UserID != uuid.Nil
}

// Is reports whether the principal is the given user
func (p Principal) Is(userID uuid.UUID) bool {
	return p.IsAuthenticated() && p.UserID == userID
}

// Denial explains why a principal may not perform an action
type Denial struct {
	Action string
	Reason string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s denied: %s", d.Action, d.Reason)
}

// IncompleteProfileError reports the first profile field a job seeker must
// fill in before posting a job
type IncompleteProfileError struct {
	Field string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("Please complete your profile with %s before posting a job. Go to Profile → Update your information.", e.Field)
}

func deny(action, reason string) error {
	return &Denial{Action: action, Reason: reason}
}

func requireRole(p Principal, role models.Role, action, reason string) error {
	if !p.IsAuthenticated() || p.Role != role {
		return deny(action, reason)
	}
	return nil
}

// ===============================
// JOBS
// ===============================

// CanReadJob allows any authenticated principal
func CanReadJob(p Principal) error {
	if !p.IsAuthenticated() {
		return deny("read job", "Authentication required")
	}
	return nil
}

// CanModifyJob allows only the job's owner to update or delete it
func CanModifyJob(p Principal, job *models.Job) error {
	if job == nil || !p.Is(job.UserID) {
		return deny("modify job", "Not authorized to modify this job")
	}
	return nil
}

// CanCreateJob requires a job seeker whose profile lists experience, company and LinkedIn
func CanCreateJob(p Principal, user *models.User) error {
	if err := requireRole(p, models.RoleJobSeeker, "create job", "Only job seekers can post jobs"); err != nil {
		return err
	}
	if user == nil || !p.Is(user.ID) {
		return deny("create job", "Only job seekers can post jobs")
	}
	return ProfileComplete(user)
}

// ProfileComplete checks the profile fields required to post a job
func ProfileComplete(user *models.User) error {
	switch {
	case user.YearsOfExperience == nil:
		return &IncompleteProfileError{Field: "years of experience"}
	case strings.TrimSpace(user.CurrentCompany) == "":
		return &IncompleteProfileError{Field: "current company"}
	case strings.TrimSpace(user.LinkedinProfile) == "":
		return &IncompleteProfileError{Field: "LinkedIn profile"}
	}
	return nil
}

// ===============================
// REFERRALS
// ===============================

// CanCreateReferral allows employers only
func CanCreateReferral(p Principal) error {
	return requireRole(p, models.RoleEmployer, "create referral", "Only employers can create referrals")
}

// CanSetReferralStatus allows only the referral's job seeker
func CanSetReferralStatus(p Principal, ref *models.Referral) error {
	if ref == nil || !p.Is(ref.JobSeekerID) {
		return deny("update referral", "Not authorized to update this referral")
	}
	return nil
}

// CanDeleteReferral allows only the employer who sent the referral
func CanDeleteReferral(p Principal, ref *models.Referral) error {
	if ref == nil || !p.Is(ref.EmployerID) {
		return deny("delete referral", "Not authorized to delete this referral")
	}
	return nil
}

// CanReadReferral allows either party of the referral
func CanReadReferral(p Principal, ref *models.Referral) error {
	if ref == nil || !(p.Is(ref.JobSeekerID) || p.Is(ref.EmployerID)) {
		return deny("read referral", "Not authorized to view this referral")
	}
	return nil
}

// CanListSent allows employers to list the referrals they sent
func CanListSent(p Principal) error {
	return requireRole(p, models.RoleEmployer, "list sent referrals", "Only employers can view sent referrals")
}

// CanListReceived allows job seekers to list the referrals they received
func CanListReceived(p Principal) error {
	return requireRole(p, models.RoleJobSeeker, "list received referrals", "Only job seekers can view received referrals")
}

// CanClearReferrals allows job seekers to delete every referral they received
func CanClearReferrals(p Principal) error {
	return requireRole(p, models.RoleJobSeeker, "clear referrals", "Only job seekers can clear their referrals")
}
