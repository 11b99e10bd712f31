package domain

import (
	claimdomain "github.com/smallbiznis/claimdesk/internal/claim/domain"
)

// NextStatus computes the claim status that follows a review decision. It is
// pure; the review service persists the result together with the review row.
//
// Stage preconditions: customer service may act on SUBMITTED or
// UNDER_REVIEW_CS, the claims department only on UNDER_REVIEW_CLAIMS, and the
// medical director only on PENDING_MD_APPROVAL. Anything else is a stage
// mismatch. NEEDS_MORE_INFO always leaves the status unchanged.
func NextStatus(current claimdomain.ClaimStatus, reviewType ReviewType, decision ReviewDecision) (claimdomain.ClaimStatus, error) {
	switch decision {
	case DecisionApproved, DecisionPartiallyApproved, DecisionRejected, DecisionNeedsMoreInfo:
	default:
		return "", ErrInvalidDecision
	}

	switch reviewType {
	case TypeCustomerService, TypeClaims, TypeMD:
	default:
		return "", ErrInvalidType
	}

	switch reviewType {
	case TypeCustomerService:
		if current != claimdomain.StatusSubmitted && current != claimdomain.StatusUnderReviewCS {
			return "", ErrStageMismatch
		}
		switch decision {
		case DecisionApproved, DecisionPartiallyApproved:
			return claimdomain.StatusUnderReviewClaims, nil
		case DecisionRejected:
			return claimdomain.StatusRejected, nil
		case DecisionNeedsMoreInfo:
			return current, nil
		}

	case TypeClaims:
		if current != claimdomain.StatusUnderReviewClaims {
			return "", ErrStageMismatch
		}
		switch decision {
		case DecisionApproved, DecisionPartiallyApproved:
			return claimdomain.StatusPendingMDApproval, nil
		case DecisionRejected:
			return claimdomain.StatusRejected, nil
		case DecisionNeedsMoreInfo:
			return current, nil
		}

	case TypeMD:
		if current != claimdomain.StatusPendingMDApproval {
			return "", ErrStageMismatch
		}
		switch decision {
		case DecisionApproved:
			return claimdomain.StatusApproved, nil
		case DecisionPartiallyApproved:
			return claimdomain.StatusPartiallyApproved, nil
		case DecisionRejected:
			return claimdomain.StatusRejected, nil
		case DecisionNeedsMoreInfo:
			return current, nil
		}
	}

	return "", ErrInvalidDecision
}
