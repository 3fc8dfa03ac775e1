package models

import (
	"time"
)

// Notification types
const (
	NotifyApproval     = "approval"
	NotifyInquiry      = "inquiry"
	NotifyInquiryReply = "inquiry_reply"
	NotifyViewing      = "viewing"
	NotifyPhotoJob     = "photo_job"
	NotifyAnnouncement = "announcement"
)

type Notification struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Type      string     `json:"type" gorm:"type:varchar(30);not null"`
	Title     string     `json:"title" gorm:"type:varchar(200);not null"`
	Message   string     `json:"message" gorm:"type:text"`
	RefType   string     `json:"ref_type,omitempty" gorm:"type:varchar(30)"`
	RefID     uint       `json:"ref_id,omitempty"`
	ReadAt    *time.Time `json:"read_at" gorm:"index"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

// AudienceAll targets every active account.
const AudienceAll = "all"

type Announcement struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	Title     string      `json:"title" gorm:"type:varchar(200);not null"`
	Message   string      `json:"message" gorm:"type:text;not null"`
	Audience  StringArray `json:"audience" gorm:"type:text"`
	CreatedBy uint        `json:"created_by" gorm:"not null"`
	Sent      int         `json:"sent"`
	CreatedAt time.Time   `json:"created_at"`
}
