package models

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// ReferralStatus is the lifecycle state of a referral.
//
//	pending ──► accepted
//	   │
//	   └──────► rejected
//
// accepted and rejected are terminal. Rejected referrals are removed by the
// cleanup sweep once they are older than the configured age.
type ReferralStatus string

const (
	StatusPending  ReferralStatus = "pending"
	StatusAccepted ReferralStatus = "accepted"
	StatusRejected ReferralStatus = "rejected"
)

var referralTransitions = map[ReferralStatus][]ReferralStatus{
	StatusPending: {StatusAccepted, StatusRejected},
}

// ParseReferralStatus converts a raw string to a ReferralStatus
func ParseReferralStatus(s string) (ReferralStatus, error) {
	switch st := ReferralStatus(s); st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown referral status %q", s)
}

// IsTerminal reports whether no further transition is allowed from s
func (s ReferralStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsSettable reports whether a job seeker may request s as a new status.
// pending is only ever the initial state.
func (s ReferralStatus) IsSettable() bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsReferralTransitionAllowed reports whether a referral may move from one
// status to another. Re-setting the current status is allowed and is a no-op.
func IsReferralTransitionAllowed(from, to ReferralStatus) bool {
	if from == to {
		return true
	}
	return slices.Contains(referralTransitions[from], to)
}
