package services

import (
	"context"
	"fmt"
	"juba-homez/internal/models"

	"gorm.io/gorm"
)

// Audit actions
const (
	ActionUserRegistered         = "USER_REGISTERED"
	ActionUserLoggedIn           = "USER_LOGGED_IN"
	ActionUserApproved           = "USER_APPROVED"
	ActionUserRejected           = "USER_REJECTED"
	ActionUserSuspended          = "USER_SUSPENDED"
	ActionProfileUpdated         = "PROFILE_UPDATED"
	ActionPasswordResetRequested = "PASSWORD_RESET_REQUESTED"
	ActionPasswordResetCompleted = "PASSWORD_RESET_COMPLETED"
	ActionPropertyCreated        = "PROPERTY_CREATED"
	ActionPropertyUpdated        = "PROPERTY_UPDATED"
	ActionPropertyStatusChanged  = "PROPERTY_STATUS_CHANGED"
	ActionPropertyDeleted        = "PROPERTY_DELETED"
	ActionPropertyApproved       = "PROPERTY_APPROVED"
	ActionPropertyRejected       = "PROPERTY_REJECTED"
	ActionMediaUploaded          = "MEDIA_UPLOADED"
	ActionMediaDeleted           = "MEDIA_DELETED"
	ActionMediaApproved          = "MEDIA_APPROVED"
	ActionMediaRejected          = "MEDIA_REJECTED"
	ActionInquiryReplied         = "INQUIRY_REPLIED"
	ActionViewingScheduled       = "VIEWING_SCHEDULED"
	ActionViewingRescheduled     = "VIEWING_RESCHEDULED"
	ActionViewingCancelled       = "VIEWING_CANCELLED"
	ActionPhotoJobCreated        = "PHOTO_JOB_CREATED"
	ActionPhotoJobTransitioned   = "PHOTO_JOB_UPDATED"
	ActionAnnouncementCreated    = "ANNOUNCEMENT_CREATED"
)

// AuditEntry is one event to append.
type AuditEntry struct {
	ActorID    *uint
	Action     string
	EntityType string
	EntityID   uint
	Meta       models.JSONMap
}

// AuditFilter narrows the audit listing.
type AuditFilter struct {
	Action     string
	EntityType string
	ActorID    *uint
	EntityID   *uint
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends an entry using tx, so it commits or rolls back with the change it describes.
func (s *AuditService) Record(ctx context.Context, tx *gorm.DB, e AuditEntry) error {
	if tx == nil {
		tx = s.db
	}
	meta := RequestMetaFrom(ctx)
	entry := &models.AuditLog{
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Meta:       e.Meta,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
	}
	if entry.Meta == nil {
		entry.Meta = models.JSONMap{}
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record audit %s: %w", e.Action, err)
	}
	return nil
}

// List returns entries newest first.
func (s *AuditService) List(ctx context.Context, f AuditFilter, p Page) ([]models.AuditLog, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}
	if f.ActorID != nil {
		query = query.Where("actor_id = ?", *f.ActorID)
	}
	if f.EntityID != nil {
		query = query.Where("entity_id = ?", *f.EntityID)
	}

	logs := []models.AuditLog{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &logs)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return logs, meta, nil
}

func actor(id uint) *uint {
	return &id
}
