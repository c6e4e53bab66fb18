package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"abstract-review-api/models"

	"gorm.io/gorm"
)

// AssignmentService adds reviewers to abstracts, manually or in bulk from the
// category directory.
type AssignmentService struct {
	store      ReviewStore
	categories CategoryDirectory
	notifier   Notifier
}

func NewAssignmentService(store ReviewStore, categories CategoryDirectory, notifier Notifier) *AssignmentService {
	return &AssignmentService{store: store, categories: categories, notifier: notifier}
}

// AssignReviewers adds the requested reviewers to an abstract in a single
// transaction: assignment rows, workload counters and the status transition
// commit together or not at all. Reviewers already assigned and identities
// that do not resolve to a contactable reviewer account are reported, not
// errors. Only when every requested identity is invalid does the call fail.
//
// Notifications go out after the commit and are best-effort.
func (s *AssignmentService) AssignReviewers(caller Caller, abstractID int, reviewerIDs []int) (*AssignmentResult, error) {
	if !caller.IsAdmin() {
		return nil, ErrAbstractNotFound
	}

	result := &AssignmentResult{AbstractID: abstractID}
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
		seen := make(map[int]bool, len(reviewerIDs))
		for _, reviewerID := range reviewerIDs {
			if seen[reviewerID] {
				continue
			}
			seen[reviewerID] = true

			// A concurrent assignment that won the row lock first is
			// visible here, so overlapping identities classify as
			// already-assigned instead of double-adding.
			if abstract.IsReviewerAssigned(reviewerID) {
				result.AlreadyAssigned = append(result.AlreadyAssigned, reviewerID)
				continue
			}

			account, err := tx.GetReviewerAccount(reviewerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.InvalidReviewers = append(result.InvalidReviewers, InvalidReviewer{
						ReviewerID: reviewerID,
						Reason:     "User not found",
					})
					continue
				}
				return fmt.Errorf("failed to resolve reviewer %d: %w", reviewerID, err)
			}
			if account.RoleID != models.RoleReviewer && account.RoleID != models.RoleAdmin {
				result.InvalidReviewers = append(result.InvalidReviewers, InvalidReviewer{
					ReviewerID: reviewerID,
					Reason:     "User is not a reviewer",
				})
				continue
			}
			if !account.HasEmail() {
				result.InvalidReviewers = append(result.InvalidReviewers, InvalidReviewer{
					ReviewerID: reviewerID,
					Reason:     "User has no contact email",
				})
				continue
			}

			assignedBy := caller.UserID
			assignment := models.AbstractReviewer{
				AbstractID: abstract.AbstractID,
				ReviewerID: reviewerID,
				AssignedBy: &assignedBy,
				AssignedAt: now,
			}
			if err := tx.AddReviewer(&assignment); err != nil {
				return fmt.Errorf("failed to assign reviewer %d: %w", reviewerID, err)
			}
			if err := tx.IncrementReviewLoad(reviewerID); err != nil {
				return fmt.Errorf("failed to update reviewer %d workload: %w", reviewerID, err)
			}

			abstract.Reviewers = append(abstract.Reviewers, assignment)
			result.NewlyAssigned = append(result.NewlyAssigned, AssignedReviewer{
				ReviewerID: reviewerID,
				Name:       account.FullName(),
				Email:      *account.Email,
			})
		}

		if len(result.NewlyAssigned) > 0 && assignmentMovesToUnderReview(abstract.Status) {
			changedBy := caller.UserID
			if err := changeStatus(tx, abstract, models.StatusUnderReview, &changedBy, nil, "reviewers_assigned"); err != nil {
				return err
			}
			result.StatusChanged = true
		}
		result.Status = abstract.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.NewlyAssigned) == 0 && len(result.AlreadyAssigned) == 0 && len(result.InvalidReviewers) > 0 {
		return result, ErrNoValidReviewers
	}

	d := &dispatcher{store: s.store, notifier: s.notifier}
	for _, reviewer := range result.NewlyAssigned {
		d.reviewerAssigned(abstract, reviewer)
	}

	return result, nil
}

// AutoAssignReviewers walks every abstract in the event that has no reviewer
// yet and assigns its category's reviewer pool. Each abstract is handled in
// its own transaction; one failing abstract does not stop the sweep. The
// sweep is idempotent: running it twice assigns nothing new the second time.
func (s *AssignmentService) AutoAssignReviewers(caller Caller, eventID int) (int, error) {
	if !caller.IsAdmin() {
		return 0, ErrAbstractNotFound
	}

	abstracts, err := s.store.ListUnassignedAbstracts(eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to list unassigned abstracts: %w", err)
	}

	assigned := 0
	for i := range abstracts {
		abstract := &abstracts[i]
		if abstract.CategoryID == nil {
			continue
		}

		category, err := s.categories.GetCategory(eventID, *abstract.CategoryID)
		if err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				log.Printf("auto-assign: abstract %d references unknown category %d, skipping", abstract.AbstractID, *abstract.CategoryID)
				continue
			}
			return assigned, err
		}

		pool := category.ReviewerIDs()
		if len(pool) == 0 {
			continue
		}

		result, err := s.AssignReviewers(caller, abstract.AbstractID, pool)
		if err != nil {
			if errors.Is(err, ErrNoValidReviewers) {
				log.Printf("auto-assign: no valid reviewers in pool of category %d for abstract %d", category.CategoryID, abstract.AbstractID)
				continue
			}
			log.Printf("auto-assign: failed to assign abstract %d: %v", abstract.AbstractID, err)
			continue
		}
		if len(result.NewlyAssigned) > 0 {
			assigned++
		}
	}
	return assigned, nil
}
