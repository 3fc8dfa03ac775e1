package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrAuditImmutable is returned when something tries to rewrite history.
var ErrAuditImmutable = errors.New("audit log entries are append-only")

// Entity types recorded in the audit trail
const (
	EntityUser         = "user"
	EntityProperty     = "property"
	EntityMedia        = "media"
	EntityInquiry      = "inquiry"
	EntityViewing      = "viewing"
	EntityPhotoJob     = "photo_job"
	EntityAnnouncement = "announcement"
)

type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActorID    *uint     `json:"actor_id" gorm:"index"`
	Action     string    `json:"action" gorm:"type:varchar(50);not null;index"`
	EntityType string    `json:"entity_type" gorm:"type:varchar(30);not null;index"`
	EntityID   uint      `json:"entity_id" gorm:"index"`
	Meta       JSONMap   `json:"meta" gorm:"type:text"`
	IPAddress  string    `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent  string    `json:"user_agent" gorm:"type:varchar(500)"`
	RequestID  string    `json:"request_id" gorm:"type:varchar(64)"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditImmutable
}

func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditImmutable
}
