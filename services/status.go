package services

import (
	"abstract-review-api/models"
)

// ValidDecision reports whether d is one of the reviewer decision values.
func ValidDecision(d string) bool {
	switch d {
	case models.DecisionAccept, models.DecisionReject, models.DecisionRevise, models.DecisionUndecided:
		return true
	}
	return false
}

// DeriveStatus computes the abstract status that follows a newly written
// review decision. Any single reviewer's accept/reject/revise moves the
// abstract status immediately, regardless of what other reviewers decided
// before: two reviewers with different verdicts leave the status of whichever
// one wrote last. This last-write-wins behavior is intentional and covered by
// tests; do not replace it with a quorum rule.
//
// An administrator's final decision freezes the status against reviewer
// decisions until the abstract is resubmitted.
func DeriveStatus(current, trigger string, adminOverridden bool) (string, bool) {
	if adminOverridden {
		return current, false
	}

	switch trigger {
	case models.DecisionRevise:
		return models.StatusRevisionRequested, current != models.StatusRevisionRequested
	case models.DecisionAccept:
		return models.StatusApproved, current != models.StatusApproved
	case models.DecisionReject:
		return models.StatusRejected, current != models.StatusRejected
	}

	// undecided never changes status
	return current, false
}

// AverageScore returns the mean score over complete reviews that carry a
// numeric score, or nil when there are none.
func AverageScore(reviews []models.Review) *float64 {
	var sum float64
	var count int
	for _, r := range reviews {
		if r.IsComplete && r.Score != nil {
			sum += *r.Score
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// assignmentMovesToUnderReview reports whether adding a reviewer in the given
// status transitions the abstract into review.
func assignmentMovesToUnderReview(status string) bool {
	switch status {
	case models.StatusSubmitted, models.StatusPending, models.StatusRevisedPendingReview:
		return true
	}
	return false
}
