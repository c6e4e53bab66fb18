package services

import (
	"errors"
	"fmt"
	"strings"

	"abstract-review-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReviewStore is the production ReviewStore backed by MySQL through GORM.
type GormReviewStore struct {
	db *gorm.DB
}

func NewGormReviewStore(db *gorm.DB) *GormReviewStore {
	return &GormReviewStore{db: db}
}

func (s *GormReviewStore) InTransaction(fn func(tx ReviewStore) error) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormReviewStore{db: tx})
	})
	if err != nil && isRetryableTxError(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// isRetryableTxError detects MySQL deadlock (1213) and lock wait timeout
// (1205) failures, which are safe to retry after the rollback.
func isRetryableTxError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Lock wait timeout")
}

func (s *GormReviewStore) abstractQuery() *gorm.DB {
	return s.db.Preload("Event").
		Preload("Registrant").
		Preload("Author").
		Preload("Reviewers").
		Preload("Reviewers.Reviewer").
		Preload("Reviews")
}

func (s *GormReviewStore) GetAbstract(abstractID int) (*models.Abstract, error) {
	var abstract models.Abstract
	if err := s.abstractQuery().
		Where("abstract_id = ?", abstractID).
		First(&abstract).Error; err != nil {
		return nil, err
	}
	return &abstract, nil
}

// GetAbstractForUpdate locks the abstract row for the duration of the
// surrounding transaction. The preloads run without the lock; only the
// abstract itself is the serialization point.
func (s *GormReviewStore) GetAbstractForUpdate(abstractID int) (*models.Abstract, error) {
	var abstract models.Abstract
	if err := s.abstractQuery().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("abstract_id = ?", abstractID).
		First(&abstract).Error; err != nil {
		return nil, err
	}
	return &abstract, nil
}

func (s *GormReviewStore) ListUnassignedAbstracts(eventID int) ([]models.Abstract, error) {
	var abstracts []models.Abstract
	err := s.db.
		Where("event_id = ?", eventID).
		Where("NOT EXISTS (SELECT 1 FROM abstract_reviewers ar WHERE ar.abstract_id = abstracts.abstract_id)").
		Order("abstract_id ASC").
		Find(&abstracts).Error
	return abstracts, err
}

func (s *GormReviewStore) AddReviewer(assignment *models.AbstractReviewer) error {
	return s.db.Create(assignment).Error
}

func (s *GormReviewStore) IncrementReviewLoad(reviewerID int) error {
	return s.db.Model(&models.User{}).
		Where("user_id = ?", reviewerID).
		UpdateColumn("review_load", gorm.Expr("review_load + ?", 1)).Error
}

func (s *GormReviewStore) UpsertReview(review *models.Review) error {
	if review.ReviewID != 0 {
		// Targeted update of this reviewer's row only.
		return s.db.Model(&models.Review{}).
			Where("review_id = ?", review.ReviewID).
			Updates(map[string]interface{}{
				"score":        review.Score,
				"comments":     review.Comments,
				"decision":     review.Decision,
				"is_complete":  review.IsComplete,
				"submitted_at": review.SubmittedAt,
			}).Error
	}
	return s.db.Create(review).Error
}

func (s *GormReviewStore) UpdateAbstract(abstractID int, fields map[string]interface{}) error {
	return s.db.Model(&models.Abstract{}).
		Where("abstract_id = ?", abstractID).
		Updates(fields).Error
}

func (s *GormReviewStore) RecordStatusChange(history *models.AbstractStatusHistory) error {
	return s.db.Create(history).Error
}

func (s *GormReviewStore) GetReviewerAccount(reviewerID int) (*models.User, error) {
	var user models.User
	if err := s.db.
		Where("user_id = ? AND delete_at IS NULL", reviewerID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormReviewStore) GetEvent(eventID int) (*models.Event, error) {
	var event models.Event
	if err := s.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *GormReviewStore) ResolveSubmitter(abstract *models.Abstract) (*Submitter, error) {
	switch {
	case abstract.RegistrantID != nil:
		var user models.User
		if err := s.db.
			Where("user_id = ? AND delete_at IS NULL", *abstract.RegistrantID).
			First(&user).Error; err != nil {
			return nil, err
		}
		email := ""
		if user.Email != nil {
			email = *user.Email
		}
		id := user.UserID
		return &Submitter{UserID: &id, Name: user.FullName(), Email: email}, nil
	case abstract.AuthorID != nil:
		var author models.Author
		if err := s.db.Where("author_id = ?", *abstract.AuthorID).First(&author).Error; err != nil {
			return nil, err
		}
		return &Submitter{Name: author.Name, Email: author.Email}, nil
	}
	return nil, errors.New("abstract has no submitter identity")
}

func (s *GormReviewStore) CreateNotification(n *models.Notification) error {
	return s.db.Create(n).Error
}
