package models

import (
	"strings"
	"time"
)

// Role IDs used across the API.
const (
	RoleSubmitter = 1
	RoleReviewer  = 2
	RoleAdmin     = 3
)

type User struct {
	UserID     int     `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname  string  `gorm:"column:user_fname" json:"user_fname"`
	UserLname  string  `gorm:"column:user_lname" json:"user_lname"`
	Email      *string `gorm:"column:email;unique" json:"email,omitempty"`
	Password   string  `gorm:"column:password" json:"-"`
	RoleID     int     `gorm:"column:role_id" json:"role_id"`
	ReviewLoad int     `gorm:"column:review_load" json:"review_load"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// FullName returns the display name used in notifications.
func (u *User) FullName() string {
	return strings.TrimSpace(u.UserFname + " " + u.UserLname)
}

// HasEmail reports whether the user can be contacted by email.
func (u *User) HasEmail() bool {
	return u.Email != nil && strings.TrimSpace(*u.Email) != ""
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// Author is a pre-registration submitter identity. Abstracts submitted before
// the author registers an account reference this row instead of a user.
type Author struct {
	AuthorID int    `gorm:"primaryKey;column:author_id" json:"author_id"`
	EventID  int    `gorm:"column:event_id" json:"event_id"`
	Name     string `gorm:"column:name" json:"name"`
	Email    string `gorm:"column:email" json:"email"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (Author) TableName() string {
	return "authors"
}
