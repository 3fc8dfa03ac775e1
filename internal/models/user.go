package models

import (
	"time"
)

// Roles
const (
	RoleCustomer     = "customer"
	RoleBroker       = "broker"
	RoleOwner        = "owner"
	RolePhotographer = "photographer"
	RoleAdmin        = "admin"
	RoleStaff        = "staff"
)

// User account statuses
const (
	UserPending   = "pending"
	UserActive    = "active"
	UserRejected  = "rejected"
	UserSuspended = "suspended"
)

// SelfServiceRoles are the roles a visitor may pick at registration.
var SelfServiceRoles = []string{RoleCustomer, RoleBroker, RoleOwner, RolePhotographer}

type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Role                string     `json:"role" gorm:"type:varchar(20);not null;index"`
	Status              string     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Name                string     `json:"name" gorm:"type:varchar(100)"`
	Email               string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone               string     `json:"phone" gorm:"type:varchar(30)"`
	Bio                 string     `json:"bio" gorm:"type:varchar(500)"`
	AvatarURL           string     `json:"avatar_url" gorm:"type:varchar(500)"`
	PasswordHash        string     `json:"-" gorm:"type:varchar(255);not null"`
	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time `json:"-"`
	RejectionReason     string     `json:"rejection_reason,omitempty" gorm:"type:varchar(500)"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsLocked reports whether a lockout is in effect at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// PublicProfile is the subset of a user shown to other visitors.
type PublicProfile struct {
	ID        uint   `json:"id"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

type PasswordReset struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Token     string     `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}
