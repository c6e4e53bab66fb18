package services

import (
	"abstract-review-api/models"
)

// Submitter is the resolved owner of an abstract: either a registrant account
// or a pre-registration author identity.
type Submitter struct {
	// UserID is set when the submitter is a registrant with an account.
	UserID *int   `json:"user_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ReviewStore is the persistence boundary of the review engine. Lookup
// methods report a missing row with gorm.ErrRecordNotFound.
//
// InTransaction runs fn against a transaction-scoped store. Everything fn
// writes is committed together or not at all; returning an error rolls the
// whole transaction back. GetAbstractForUpdate must only be called inside a
// transaction and locks the abstract row so that concurrent operations on the
// same abstract serialize.
type ReviewStore interface {
	InTransaction(fn func(tx ReviewStore) error) error

	GetAbstract(abstractID int) (*models.Abstract, error)
	GetAbstractForUpdate(abstractID int) (*models.Abstract, error)
	ListUnassignedAbstracts(eventID int) ([]models.Abstract, error)

	AddReviewer(assignment *models.AbstractReviewer) error
	IncrementReviewLoad(reviewerID int) error
	// UpsertReview writes a single reviewer's review row. It must never
	// touch other reviewers' rows on the same abstract.
	UpsertReview(review *models.Review) error
	UpdateAbstract(abstractID int, fields map[string]interface{}) error
	RecordStatusChange(history *models.AbstractStatusHistory) error

	GetReviewerAccount(reviewerID int) (*models.User, error)
	GetEvent(eventID int) (*models.Event, error)
	ResolveSubmitter(abstract *models.Abstract) (*Submitter, error)

	CreateNotification(n *models.Notification) error
}

// AssignedReviewer describes one reviewer added by an assignment operation.
type AssignedReviewer struct {
	ReviewerID int    `json:"reviewer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// InvalidReviewer describes a requested reviewer identity that could not be
// assigned, with the reason it was skipped.
type InvalidReviewer struct {
	ReviewerID int    `json:"reviewer_id"`
	Reason     string `json:"reason"`
}

// AssignmentResult reports the three disjoint outcomes of an assignment
// request.
type AssignmentResult struct {
	AbstractID       int                `json:"abstract_id"`
	NewlyAssigned    []AssignedReviewer `json:"newly_assigned"`
	AlreadyAssigned  []int              `json:"already_assigned"`
	InvalidReviewers []InvalidReviewer  `json:"invalid_reviewers"`
	Status           string             `json:"status"`
	StatusChanged    bool               `json:"status_changed"`
}

// ReviewProgress summarizes how far review of an abstract has progressed.
type ReviewProgress struct {
	AbstractID           int     `json:"abstract_id"`
	TotalAssigned        int     `json:"total_assigned"`
	CompletedReviews     int     `json:"completed_reviews"`
	PendingReviews       int     `json:"pending_reviews"`
	CompletionPercentage float64 `json:"completion_percentage"`
}
