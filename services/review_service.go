package services

import (
	"errors"
	"fmt"
	"time"

	"abstract-review-api/models"

	"gorm.io/gorm"
)

// ReviewService implements review submission, revision resubmission,
// administrator decisions and review progress reads.
type ReviewService struct {
	store    ReviewStore
	notifier Notifier
}

func NewReviewService(store ReviewStore, notifier Notifier) *ReviewService {
	return &ReviewService{store: store, notifier: notifier}
}

// ReviewInput is one reviewer's submitted verdict.
type ReviewInput struct {
	// ReviewerID lets an administrator submit on behalf of a reviewer.
	// Non-admin callers always write their own review slot.
	ReviewerID int
	Score      *float64
	Comments   string
	Decision   string
}

// changeStatus updates the abstract status and appends a history row inside
// the current transaction. The in-memory abstract is kept in sync.
func changeStatus(tx ReviewStore, abstract *models.Abstract, newStatus string, changedBy *int, reason *string, note string) error {
	now := time.Now()
	if err := tx.UpdateAbstract(abstract.AbstractID, map[string]interface{}{
		"status":    newStatus,
		"update_at": now,
	}); err != nil {
		return fmt.Errorf("failed to update abstract status: %w", err)
	}

	oldStatus := abstract.Status
	history := models.AbstractStatusHistory{
		AbstractID: abstract.AbstractID,
		OldStatus:  &oldStatus,
		NewStatus:  newStatus,
		ChangedBy:  changedBy,
		Reason:     reason,
		CreatedAt:  now,
	}
	if note != "" {
		history.Notes = &note
	}
	if err := tx.RecordStatusChange(&history); err != nil {
		return fmt.Errorf("failed to log status history: %w", err)
	}

	abstract.Status = newStatus
	return nil
}

// SubmitReview writes one reviewer's verdict on an abstract and derives the
// resulting abstract status. A reviewer who submits twice overwrites their
// earlier review in place; other reviewers' rows are never touched.
func (s *ReviewService) SubmitReview(caller Caller, abstractID int, input ReviewInput) (*models.Abstract, error) {
	if !ValidDecision(input.Decision) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, input.Decision)
	}

	reviewerID := caller.UserID
	if caller.IsAdmin() && input.ReviewerID != 0 {
		reviewerID = input.ReviewerID
	}

	var abstract *models.Abstract
	err := s.store.InTransaction(func(tx ReviewStore) error {
		var err error
		abstract, err = tx.GetAbstractForUpdate(abstractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAbstractNotFound
			}
			return fmt.Errorf("failed to load abstract: %w", err)
		}

		// Only assigned reviewers and admins may write a review. The same
		// not-found error hides the abstract from everyone else.
		if !caller.IsAdmin() && !(caller.Kind == CallerReviewer && abstract.IsReviewerAssigned(caller.UserID)) {
			return ErrAbstractNotFound
		}

		now := time.Now()
		review := abstract.ReviewBy(reviewerID)
		if review == nil {
			abstract.Reviews = append(abstract.Reviews, models.Review{
				AbstractID: abstract.AbstractID,
				ReviewerID: reviewerID,
			})
			review = &abstract.Reviews[len(abstract.Reviews)-1]
		}
		review.Score = input.Score
		review.Comments = input.Comments
		review.Decision = input.Decision
		review.IsComplete = true
		review.SubmittedAt = now

		if err := tx.UpsertReview(review); err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}

		avg := AverageScore(abstract.Reviews)
		if err := tx.UpdateAbstract(abstract.AbstractID, map[string]interface{}{
			"average_score": avg,
			"update_at":     now,
		}); err != nil {
			return fmt.Errorf("failed to update average score: %w", err)
		}
		abstract.AverageScore = avg

		next, changed := DeriveStatus(abstract.Status, input.Decision, abstract.FinalDecision != nil)
		if changed {
			changedBy := caller.UserID
			note := fmt.Sprintf("review_decision:%s", input.Decision)
			if err := changeStatus(tx, abstract, next, &changedBy, nil, note); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := &dispatcher{store: s.store, notifier: s.notifier}
	switch abstract.Status {
	case models.StatusApproved:
		d.approved(abstract)
	case models.StatusRevisionRequested:
		d.revisionRequested(abstract)
	}

	return s.reload(abstractID, abstract)
}

// ResubmitRevision moves a revision-requested abstract back into the review
// queue. The assignment set and all prior reviews stay intact; the same
// reviewers re-review the revised abstract.
func (s *ReviewService) ResubmitRevision(caller Caller, abstractID int) (*models.Abstract, error) {
	var abstract *models.Abstract
	err := s.store.InTransaction(func(tx ReviewStore) error {
		var err error
		abstract, err = tx.GetAbstractForUpdate(abstractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAbstractNotFound
			}
			return fmt.Errorf("failed to load abstract: %w", err)
		}

		if !isSubmitter(caller, abstract) {
			return ErrAbstractNotFound
		}

		if abstract.Status != models.StatusRevisionRequested {
			return ErrNotAwaitingRevision
		}

		if deadline := revisionDeadline(abstract); deadline != nil && time.Now().After(*deadline) {
			return ErrDeadlineExpired
		}

		// Clear any earlier admin override so reviewer decisions apply to
		// the revised version again.
		now := time.Now()
		if err := tx.UpdateAbstract(abstract.AbstractID, map[string]interface{}{
			"final_decision":  nil,
			"decision_by":     nil,
			"decision_date":   nil,
			"decision_reason": nil,
			"update_at":       now,
		}); err != nil {
			return fmt.Errorf("failed to clear final decision: %w", err)
		}
		abstract.FinalDecision = nil
		abstract.DecisionBy = nil
		abstract.DecisionDate = nil
		abstract.DecisionReason = nil

		return changeStatus(tx, abstract, models.StatusRevisedPendingReview, nil, nil, "revision_resubmitted")
	})
	if err != nil {
		return nil, err
	}

	d := &dispatcher{store: s.store, notifier: s.notifier}
	d.reReviewRequested(abstract)

	return s.reload(abstractID, abstract)
}

// AdminDecide records an administrator's final decision. While it stands,
// individual reviewer decisions no longer move the abstract status.
func (s *ReviewService) AdminDecide(caller Caller, abstractID int, decision string, reason string) (*models.Abstract, error) {
	if !caller.IsAdmin() {
		return nil, ErrAbstractNotFound
	}

	var targetStatus string
	switch decision {
	case "approve":
		targetStatus = models.StatusApproved
	case "reject":
		targetStatus = models.StatusRejected
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	var abstract *models.Abstract
	err := s.store.InTransaction(func(tx ReviewStore) error {
		var err error
		abstract, err = tx.GetAbstractForUpdate(abstractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAbstractNotFound
			}
			return fmt.Errorf("failed to load abstract: %w", err)
		}

		now := time.Now()
		fields := map[string]interface{}{
			"final_decision": targetStatus,
			"decision_by":    caller.UserID,
			"decision_date":  now,
			"update_at":      now,
		}
		if reason != "" {
			fields["decision_reason"] = reason
		}
		if err := tx.UpdateAbstract(abstract.AbstractID, fields); err != nil {
			return fmt.Errorf("failed to record final decision: %w", err)
		}
		final := targetStatus
		abstract.FinalDecision = &final
		abstract.DecisionBy = &caller.UserID
		abstract.DecisionDate = &now
		if reason != "" {
			r := reason
			abstract.DecisionReason = &r
		}

		changedBy := caller.UserID
		var reasonPtr *string
		if reason != "" {
			r := reason
			reasonPtr = &r
		}
		note := fmt.Sprintf("admin_decision:%s", decision)
		return changeStatus(tx, abstract, targetStatus, &changedBy, reasonPtr, note)
	})
	if err != nil {
		return nil, err
	}

	d := &dispatcher{store: s.store, notifier: s.notifier}
	if targetStatus == models.StatusApproved {
		d.approved(abstract)
	} else {
		d.rejected(abstract)
	}

	return s.reload(abstractID, abstract)
}

// GetReviewProgress derives completion counters for an abstract. Read-only.
func (s *ReviewService) GetReviewProgress(abstractID int) (*ReviewProgress, error) {
	abstract, err := s.store.GetAbstract(abstractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbstractNotFound
		}
		return nil, fmt.Errorf("failed to load abstract: %w", err)
	}

	progress := &ReviewProgress{
		AbstractID:    abstract.AbstractID,
		TotalAssigned: len(abstract.Reviewers),
	}
	for _, review := range abstract.Reviews {
		if review.IsComplete {
			progress.CompletedReviews++
		}
	}
	progress.PendingReviews = progress.TotalAssigned - progress.CompletedReviews
	if progress.PendingReviews < 0 {
		progress.PendingReviews = 0
	}
	if progress.TotalAssigned > 0 {
		progress.CompletionPercentage = float64(progress.CompletedReviews) / float64(progress.TotalAssigned) * 100
	}
	return progress, nil
}

// GetAbstract returns the abstract with reviews for callers allowed to see
// it: its submitter, assigned reviewers, and admins. Everyone else gets the
// same not-found error an unknown id would produce.
func (s *ReviewService) GetAbstract(caller Caller, abstractID int) (*models.Abstract, error) {
	abstract, err := s.store.GetAbstract(abstractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbstractNotFound
		}
		return nil, fmt.Errorf("failed to load abstract: %w", err)
	}

	if !caller.IsAdmin() && !isSubmitter(caller, abstract) &&
		!(caller.Kind == CallerReviewer && abstract.IsReviewerAssigned(caller.UserID)) {
		return nil, ErrAbstractNotFound
	}
	return abstract, nil
}

func (s *ReviewService) reload(abstractID int, fallback *models.Abstract) (*models.Abstract, error) {
	updated, err := s.store.GetAbstract(abstractID)
	if err != nil {
		// The transaction already committed; serve the in-memory view.
		return fallback, nil
	}
	return updated, nil
}

func isSubmitter(caller Caller, abstract *models.Abstract) bool {
	if caller.Kind != CallerSubmitter {
		return false
	}
	if abstract.RegistrantID != nil && caller.UserID != 0 {
		return caller.UserID == *abstract.RegistrantID
	}
	if abstract.AuthorID != nil && caller.AuthorID != 0 {
		return caller.AuthorID == *abstract.AuthorID
	}
	return false
}

func revisionDeadline(abstract *models.Abstract) *time.Time {
	if abstract.RevisionDeadline != nil {
		return abstract.RevisionDeadline
	}
	if abstract.Event != nil {
		return abstract.Event.RevisionDeadline
	}
	return nil
}
