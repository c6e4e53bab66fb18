package models

import "time"

// Event carries the per-conference configuration this engine consumes. Event
// CRUD itself lives in the registration service.
type Event struct {
	EventID          int        `gorm:"primaryKey;column:event_id" json:"event_id"`
	EventName        string     `gorm:"column:event_name" json:"event_name"`
	RevisionDeadline *time.Time `gorm:"column:revision_deadline" json:"revision_deadline,omitempty"`

	// When set, approval notifications are also sent to this address.
	AdminEmail           *string `gorm:"column:admin_email" json:"admin_email,omitempty"`
	NotifyAdminsApproval bool    `gorm:"column:notify_admins_approval" json:"notify_admins_approval"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (Event) TableName() string {
	return "events"
}
