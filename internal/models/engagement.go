package models

import (
	"time"
)

// Inquiry statuses
const (
	InquiryNew     = "new"
	InquiryReplied = "replied"
)

type Inquiry struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	PropertyID uint           `json:"property_id" gorm:"not null;index"`
	UserID     *uint          `json:"user_id" gorm:"index"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	Email      string         `json:"email" gorm:"type:varchar(255);not null"`
	Phone      string         `json:"phone" gorm:"type:varchar(30)"`
	Message    string         `json:"message" gorm:"type:text;not null"`
	Status     string         `json:"status" gorm:"type:varchar(20);not null;default:'new'"`
	Replies    []InquiryReply `json:"replies,omitempty" gorm:"foreignKey:InquiryID"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type InquiryReply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	InquiryID uint      `json:"inquiry_id" gorm:"not null;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Viewing request statuses
const (
	RequestPending   = "pending"
	RequestScheduled = "scheduled"
)

type ViewingRequest struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	PropertyID  uint       `json:"property_id" gorm:"not null;index"`
	UserID      *uint      `json:"user_id" gorm:"index"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	Email       string     `json:"email" gorm:"type:varchar(255);not null"`
	Phone       string     `json:"phone" gorm:"type:varchar(30)"`
	PreferredAt *time.Time `json:"preferred_at"`
	Message     string     `json:"message" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Viewing statuses
const (
	ViewingScheduled   = "scheduled"
	ViewingRescheduled = "rescheduled"
	ViewingCancelled   = "cancelled"
)

type Viewing struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PropertyID   uint      `json:"property_id" gorm:"not null;index"`
	RequestID    *uint     `json:"request_id" gorm:"index"`
	ScheduledAt  time.Time `json:"scheduled_at" gorm:"not null;index"`
	Status       string    `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CancelReason string    `json:"cancel_reason,omitempty" gorm:"type:varchar(500)"`
	CreatedBy    uint      `json:"created_by" gorm:"not null"`
	AssignedTo   *uint     `json:"assigned_to" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Photo job states
const (
	JobOpen      = "open"
	JobAccepted  = "accepted"
	JobRejected  = "rejected"
	JobScheduled = "scheduled"
	JobCompleted = "completed"
)

type PhotoJob struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	PropertyID      uint       `json:"property_id" gorm:"not null;index"`
	CreatedBy       uint       `json:"created_by" gorm:"not null;index"`
	PhotographerID  *uint      `json:"photographer_id" gorm:"index"`
	Status          string     `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	Notes           string     `json:"notes" gorm:"type:text"`
	Budget          float64    `json:"budget"`
	PreferredDate   *time.Time `json:"preferred_date"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:varchar(500)"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type PhotoJobMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JobID     uint      `json:"job_id" gorm:"not null;index"`
	SenderID  uint      `json:"sender_id" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Analytics event types
const (
	EventView         = "view"
	EventShare        = "share"
	EventFavorite     = "favorite"
	EventContactClick = "contact_click"
	EventInquiryClick = "inquiry_click"
)

type AnalyticsEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PropertyID uint      `json:"property_id" gorm:"not null;index"`
	UserID     *uint     `json:"user_id" gorm:"index"`
	Type       string    `json:"type" gorm:"type:varchar(30);not null;index"`
	SessionID  string    `json:"session_id" gorm:"type:varchar(64)"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
