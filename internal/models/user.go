// Package models provides data models for the job tracker.
package models

import (
	"time"
)

// User represents a registered job seeker
type User struct {
	ID                        string                 `json:"id" db:"id"`
	Email                     string                 `json:"email" db:"email"`
	PasswordHash              string                 `json:"-" db:"password_hash"`
	Name                      string                 `json:"name" db:"name"`
	IsActive                  bool                   `json:"isActive" db:"is_active"`
	EmailNotificationsEnabled bool                   `json:"emailNotificationsEnabled" db:"email_notifications_enabled"`
	NotificationPreferences   map[string]interface{} `json:"notificationPreferences,omitempty" db:"notification_preferences"`
	LastLogin                 *time.Time             `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt                 time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt                 time.Time              `json:"updatedAt" db:"updated_at"`
}
