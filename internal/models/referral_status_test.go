package models_test

import (
	"testing"

	"referralhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferralStatus(t *testing.T) {
	for _, s := range []string{"pending", "accepted", "rejected"} {
		got, err := models.ParseReferralStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}

	for _, s := range []string{"", "ACCEPTED", "withdrawn"} {
		_, err := models.ParseReferralStatus(s)
		assert.Error(t, err, "status %q", s)
	}
}

func TestReferralTransitions(t *testing.T) {
	cases := []struct {
		from, to models.ReferralStatus
		allowed  bool
	}{
		{models.StatusPending, models.StatusAccepted, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusPending, models.StatusPending, true},
		{models.StatusAccepted, models.StatusAccepted, true},
		{models.StatusRejected, models.StatusRejected, true},
		{models.StatusAccepted, models.StatusRejected, false},
		{models.StatusRejected, models.StatusAccepted, false},
		{models.StatusAccepted, models.StatusPending, false},
		{models.StatusRejected, models.StatusPending, false},
	}

	for _, c := range cases {
		t.Run(string(c.from)+"->"+string(c.to), func(t *testing.T) {
			assert.Equal(t, c.allowed, models.IsReferralTransitionAllowed(c.from, c.to))
		})
	}
}

func TestReferralStatusFlags(t *testing.T) {
	assert.False(t, models.StatusPending.IsTerminal())
	assert.True(t, models.StatusAccepted.IsTerminal())
	assert.True(t, models.StatusRejected.IsTerminal())

	assert.False(t, models.StatusPending.IsSettable())
	assert.True(t, models.StatusAccepted.IsSettable())
	assert.True(t, models.StatusRejected.IsSettable())
}
