package models

import "time"

// Abstract statuses. The status column is the single source of truth for the
// review lifecycle; everything else (scores, per-reviewer decisions) is input
// to its derivation.
const (
	StatusDraft                = "draft"
	StatusSubmitted            = "submitted"
	StatusPending              = "pending"
	StatusUnderReview          = "under-review"
	StatusRevisionRequested    = "revision-requested"
	StatusRevisedPendingReview = "revised-pending-review"
	StatusApproved             = "approved"
	StatusRejected             = "rejected"
)

// Reviewer decisions.
const (
	DecisionAccept    = "accept"
	DecisionReject    = "reject"
	DecisionRevise    = "revise"
	DecisionUndecided = "undecided"
)

// Abstract is the unit of review: one submitted conference abstract.
type Abstract struct {
	AbstractID     int    `gorm:"primaryKey;column:abstract_id" json:"abstract_id"`
	AbstractNumber string `gorm:"column:abstract_number;unique" json:"abstract_number"`
	EventID        int    `gorm:"column:event_id" json:"event_id"`

	// Exactly one of RegistrantID / AuthorID is set: an abstract is owned
	// either by a registered user or by a pre-registration author identity.
	RegistrantID *int `gorm:"column:registrant_id" json:"registrant_id,omitempty"`
	AuthorID     *int `gorm:"column:author_id" json:"author_id,omitempty"`

	Title      string `gorm:"column:title" json:"title"`
	Body       string `gorm:"column:body;type:text" json:"body"`
	CategoryID *int   `gorm:"column:category_id" json:"category_id,omitempty"`
	Topic      string `gorm:"column:topic" json:"topic"`
	Subtopic   string `gorm:"column:subtopic" json:"subtopic"`

	Status       string   `gorm:"column:status" json:"status"`
	AverageScore *float64 `gorm:"column:average_score" json:"average_score,omitempty"`

	// Administrator override. While FinalDecision is set, reviewer decisions
	// no longer move the status; a resubmission clears it.
	FinalDecision  *string    `gorm:"column:final_decision" json:"final_decision,omitempty"`
	DecisionBy     *int       `gorm:"column:decision_by" json:"decision_by,omitempty"`
	DecisionDate   *time.Time `gorm:"column:decision_date" json:"decision_date,omitempty"`
	DecisionReason *string    `gorm:"column:decision_reason" json:"decision_reason,omitempty"`

	// Overrides the event-level deadline when set.
	RevisionDeadline *time.Time `gorm:"column:revision_deadline" json:"revision_deadline,omitempty"`

	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Event      *Event             `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Registrant *User              `gorm:"foreignKey:RegistrantID" json:"registrant,omitempty"`
	Author     *Author            `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Reviewers  []AbstractReviewer `gorm:"foreignKey:AbstractID" json:"reviewers,omitempty"`
	Reviews    []Review           `gorm:"foreignKey:AbstractID" json:"reviews,omitempty"`
}

// IsReviewerAssigned reports whether the given user is in the assignment set.
func (a *Abstract) IsReviewerAssigned(userID int) bool {
	for _, r := range a.Reviewers {
		if r.ReviewerID == userID {
			return true
		}
	}
	return false
}

// ReviewBy returns the reviewer's existing review entry, or nil.
func (a *Abstract) ReviewBy(userID int) *Review {
	for i := range a.Reviews {
		if a.Reviews[i].ReviewerID == userID {
			return &a.Reviews[i]
		}
	}
	return nil
}

// AbstractReviewer is one entry in an abstract's assignment set. The
// (abstract_id, reviewer_id) pair is unique.
type AbstractReviewer struct {
	AssignmentID int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	AbstractID   int       `gorm:"column:abstract_id;uniqueIndex:uq_abstract_reviewer" json:"abstract_id"`
	ReviewerID   int       `gorm:"column:reviewer_id;uniqueIndex:uq_abstract_reviewer" json:"reviewer_id"`
	AssignedBy   *int      `gorm:"column:assigned_by" json:"assigned_by,omitempty"`
	AssignedAt   time.Time `gorm:"column:assigned_at" json:"assigned_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// Review is one reviewer's verdict on an abstract. At most one row per
// (abstract_id, reviewer_id); resubmission overwrites in place.
type Review struct {
	ReviewID    int       `gorm:"primaryKey;column:review_id" json:"review_id"`
	AbstractID  int       `gorm:"column:abstract_id;uniqueIndex:uq_review_reviewer" json:"abstract_id"`
	ReviewerID  int       `gorm:"column:reviewer_id;uniqueIndex:uq_review_reviewer" json:"reviewer_id"`
	Score       *float64  `gorm:"column:score" json:"score,omitempty"`
	Comments    string    `gorm:"column:comments;type:text" json:"comments"`
	Decision    string    `gorm:"column:decision" json:"decision"`
	IsComplete  bool      `gorm:"column:is_complete" json:"is_complete"`
	SubmittedAt time.Time `gorm:"column:submitted_at" json:"submitted_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName overrides
func (Abstract) TableName() string {
	return "abstracts"
}

func (AbstractReviewer) TableName() string {
	return "abstract_reviewers"
}

func (Review) TableName() string {
	return "reviews"
}
