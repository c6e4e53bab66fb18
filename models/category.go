package models

import "time"

// Category is event configuration consumed read-only by this engine: it maps
// a category to the reviewer pool used for auto-assignment.
type Category struct {
	CategoryID   int    `gorm:"primaryKey;column:category_id" json:"category_id"`
	EventID      int    `gorm:"column:event_id" json:"event_id"`
	CategoryName string `gorm:"column:category_name" json:"category_name"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Ordered reviewer pool.
	Reviewers []CategoryReviewer `gorm:"foreignKey:CategoryID" json:"reviewers,omitempty"`
}

// ReviewerIDs returns the pool in its configured order.
func (c *Category) ReviewerIDs() []int {
	ids := make([]int, 0, len(c.Reviewers))
	for _, r := range c.Reviewers {
		ids = append(ids, r.ReviewerID)
	}
	return ids
}

type CategoryReviewer struct {
	CategoryReviewerID int `gorm:"primaryKey;column:category_reviewer_id" json:"category_reviewer_id"`
	CategoryID         int `gorm:"column:category_id;uniqueIndex:uq_category_reviewer" json:"category_id"`
	ReviewerID         int `gorm:"column:reviewer_id;uniqueIndex:uq_category_reviewer" json:"reviewer_id"`
	Position           int `gorm:"column:position" json:"position"`
}

// TableName overrides
func (Category) TableName() string {
	return "categories"
}

func (CategoryReviewer) TableName() string {
	return "category_reviewers"
}
