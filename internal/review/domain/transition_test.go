package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimdomain "github.com/smallbiznis/claimdesk/internal/claim/domain"
)

func TestNextStatusWorkflow(t *testing.T) {
	cases := []struct {
		name       string
		current    claimdomain.ClaimStatus
		reviewType ReviewType
		decision   ReviewDecision
		want       claimdomain.ClaimStatus
	}{
		{"cs approves submitted", claimdomain.StatusSubmitted, TypeCustomerService, DecisionApproved, claimdomain.StatusUnderReviewClaims},
		{"cs approves in-progress", claimdomain.StatusUnderReviewCS, TypeCustomerService, DecisionApproved, claimdomain.StatusUnderReviewClaims},
		{"cs partial approval forwards", claimdomain.StatusSubmitted, TypeCustomerService, DecisionPartiallyApproved, claimdomain.StatusUnderReviewClaims},
		{"cs rejects", claimdomain.StatusSubmitted, TypeCustomerService, DecisionRejected, claimdomain.StatusRejected},
		{"claims approves", claimdomain.StatusUnderReviewClaims, TypeClaims, DecisionApproved, claimdomain.StatusPendingMDApproval},
		{"claims rejects", claimdomain.StatusUnderReviewClaims, TypeClaims, DecisionRejected, claimdomain.StatusRejected},
		{"md approves", claimdomain.StatusPendingMDApproval, TypeMD, DecisionApproved, claimdomain.StatusApproved},
		{"md partial approval", claimdomain.StatusPendingMDApproval, TypeMD, DecisionPartiallyApproved, claimdomain.StatusPartiallyApproved},
		{"md rejects", claimdomain.StatusPendingMDApproval, TypeMD, DecisionRejected, claimdomain.StatusRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextStatus(tc.current, tc.reviewType, tc.decision)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextStatusNeedsMoreInfoKeepsStatus(t *testing.T) {
	cases := []struct {
		current    claimdomain.ClaimStatus
		reviewType ReviewType
	}{
		{claimdomain.StatusSubmitted, TypeCustomerService},
		{claimdomain.StatusUnderReviewCS, TypeCustomerService},
		{claimdomain.StatusUnderReviewClaims, TypeClaims},
		{claimdomain.StatusPendingMDApproval, TypeMD},
	}

	for _, tc := range cases {
		got, err := NextStatus(tc.current, tc.reviewType, DecisionNeedsMoreInfo)
		require.NoError(t, err)
		assert.Equal(t, tc.current, got)
	}
}

func TestNextStatusStageMismatch(t *testing.T) {
	cases := []struct {
		name       string
		current    claimdomain.ClaimStatus
		reviewType ReviewType
	}{
		{"cs on claims stage", claimdomain.StatusUnderReviewClaims, TypeCustomerService},
		{"cs on md stage", claimdomain.StatusPendingMDApproval, TypeCustomerService},
		{"claims on submitted", claimdomain.StatusSubmitted, TypeClaims},
		{"md before claims review", claimdomain.StatusUnderReviewClaims, TypeMD},
		{"cs on terminal claim", claimdomain.StatusRejected, TypeCustomerService},
		{"md on paid claim", claimdomain.StatusPaid, TypeMD},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NextStatus(tc.current, tc.reviewType, DecisionApproved)
			assert.ErrorIs(t, err, ErrStageMismatch)
		})
	}
}

func TestNextStatusInvalidInputs(t *testing.T) {
	_, err := NextStatus(claimdomain.StatusSubmitted, TypeCustomerService, ReviewDecision("MAYBE"))
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = NextStatus(claimdomain.StatusSubmitted, ReviewType("LEGAL"), DecisionApproved)
	assert.ErrorIs(t, err, ErrInvalidType)
}
