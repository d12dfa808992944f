// file: internal/services/types.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"referralhub/internal/models"
)

// ===============================
// FLEXIBLE JSON INPUTS
// ===============================

// FlexInt accepts a JSON number or a numeric string
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return NewValidationError(fmt.Sprintf("%q is not a whole number", s), err)
		}
		*f = FlexInt(n)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n != math.Trunc(n) {
		return NewValidationError(fmt.Sprintf("%s is not a whole number", data), nil)
	}
	*f = FlexInt(int(n))
	return nil
}

// Int returns the value, or -1 when unset
func (f *FlexInt) Int() int {
	if f == nil {
		return -1
	}
	return int(*f)
}

// SkillList accepts a JSON array of strings or a comma-separated string.
// Entries are trimmed and empty entries dropped.
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	var raw []string
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		raw = strings.Split(joined, ",")
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("skills must be a list or a comma-separated string")
	}

	out := make([]string, 0, len(raw))
	for _, skill := range raw {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	*s = out
	return nil
}

// ===============================
// USER DIRECTORY REQUESTS
// ===============================

// RegisterRequest is the body of POST /api/users
type RegisterRequest struct {
	Username          string   `json:"username" validate:"notblank" msg:"Username is required"`
	Name              string   `json:"name" validate:"notblank" msg:"Please provide all required fields: name, email, password, role, years of experience, current company, and LinkedIn profile"`
	Email             string   `json:"email" validate:"required,email" msg:"Please provide a valid email address"`
	Password          string   `json:"password" validate:"min=6" msg:"Password must be at least 6 characters long"`
	Role              string   `json:"role" validate:"oneof=jobseeker employer" msg:"Role must be either 'jobseeker' or 'employer'"`
	YearsOfExperience *FlexInt `json:"yearsOfExperience" validate:"required,min=0,max=50" msg:"Years of experience must be a number between 0 and 50"`
	CurrentCompany    string   `json:"currentCompany" validate:"notblank" msg:"Please provide all required fields: name, email, password, role, years of experience, current company, and LinkedIn profile"`
	LinkedinProfile   string   `json:"linkedinProfile" validate:"linkedin" msg:"Please provide a valid LinkedIn profile URL (e.g., https://linkedin.com/in/yourprofile)"`
}

// LoginRequest is the body of POST /api/auth
type LoginRequest struct {
	Email    string `json:"email" validate:"required" msg:"Invalid Credentials"`
	Password string `json:"password" validate:"required" msg:"Invalid Credentials"`
}

// UpdateProfileRequest is the body of PUT /api/profile
type UpdateProfileRequest struct {
	Name              string   `json:"name" validate:"notblank" msg:"Please provide all required fields: name, years of experience, current company, and LinkedIn profile"`
	YearsOfExperience *FlexInt `json:"yearsOfExperience" validate:"required,min=0,max=50" msg:"Years of experience must be between 0 and 50"`
	CurrentCompany    string   `json:"currentCompany" validate:"notblank" msg:"Please provide all required fields: name, years of experience, current company, and LinkedIn profile"`
	LinkedinProfile   string   `json:"linkedinProfile" validate:"linkedin" msg:"Please provide a valid LinkedIn profile URL"`
}

// TokenResponse is returned by registration and login
type TokenResponse struct {
	Token string `json:"token"`
}

// ===============================
// JOB CATALOG REQUESTS
// ===============================

// CreateJobRequest is the body of POST /api/jobs
type CreateJobRequest struct {
	Company     string    `json:"company" validate:"notblank" msg:"Please provide all required fields"`
	Position    string    `json:"position" validate:"notblank" msg:"Please provide all required fields"`
	JobID       string    `json:"jobId" validate:"notblank" msg:"Please provide all required fields"`
	JobURL      string    `json:"jobUrl" validate:"notblank" msg:"Please provide all required fields"`
	Location    string    `json:"location" validate:"notblank" msg:"Please provide all required fields"`
	Skills      SkillList `json:"skills" validate:"min=1" msg:"Please provide all required fields"`
	Description string    `json:"description" validate:"notblank" msg:"Please provide all required fields"`
}

// UpdateJobRequest is the body of PUT /api/jobs/{id}; absent or empty fields are left unchanged
type UpdateJobRequest struct {
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	JobID       string    `json:"jobId"`
	JobURL      string    `json:"jobUrl"`
	Location    string    `json:"location"`
	Skills      SkillList `json:"skills"`
	Description string    `json:"description"`
}

// Patch converts the request into a JobPatch, treating empty values as absent
func (r *UpdateJobRequest) Patch() *models.JobPatch {
	patch := &models.JobPatch{
		Company:     nonEmpty(r.Company),
		Position:    nonEmpty(r.Position),
		JobID:       nonEmpty(r.JobID),
		JobURL:      nonEmpty(r.JobURL),
		Location:    nonEmpty(r.Location),
		Description: nonEmpty(r.Description),
	}
	if len(r.Skills) > 0 {
		patch.Skills = []string(r.Skills)
	}
	return patch
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// ===============================
// REFERRAL LEDGER REQUESTS
// ===============================

// CreateReferralRequest is the body of POST /api/referrals
type CreateReferralRequest struct {
	JobID string `json:"jobId"`
}

// UpdateReferralStatusRequest is the body of PUT /api/referrals/{id}
type UpdateReferralStatusRequest struct {
	Status string `json:"status"`
}
