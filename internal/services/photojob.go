package services

import (
	"context"
	"errors"
	"fmt"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Photo job actions
const (
	JobAccept   = "accept"
	JobReject   = "reject"
	JobSchedule = "schedule"
	JobComplete = "complete"
)

type jobTransition struct {
	from []string
	to   string
}

var jobTransitions = map[string]jobTransition{
	JobAccept:   {from: []string{models.JobOpen}, to: models.JobAccepted},
	JobReject:   {from: []string{models.JobOpen, models.JobAccepted}, to: models.JobRejected},
	JobSchedule: {from: []string{models.JobAccepted, models.JobScheduled}, to: models.JobScheduled},
	JobComplete: {from: []string{models.JobScheduled}, to: models.JobCompleted},
}

// PhotoJobInput describes a shoot requested for a listing.
type PhotoJobInput struct {
	Notes         string
	Budget        float64
	PreferredDate *time.Time
}

// JobChange carries the optional arguments of a job transition.
type JobChange struct {
	PhotographerID *uint
	ScheduledAt    *time.Time
	Reason         string
}

type PhotoJobService struct {
	db            *gorm.DB
	audit         *AuditService
	notifications *NotificationService
	now           func() time.Time
}

func NewPhotoJobService(db *gorm.DB, audit *AuditService, notifications *NotificationService) *PhotoJobService {
	return &PhotoJobService{db: db, audit: audit, notifications: notifications, now: time.Now}
}

// Create opens a job on a listing and tells active photographers about it.
// Ownership of the listing is checked by the caller.
func (s *PhotoJobService) Create(ctx context.Context, by *authz.Identity, propertyID uint, in PhotoJobInput) (*models.PhotoJob, error) {
	if in.Budget < 0 {
		return nil, invalidInput("budget must not be negative")
	}
	job := &models.PhotoJob{
		PropertyID:    propertyID,
		CreatedBy:     by.UserID,
		Status:        models.JobOpen,
		Notes:         strings.TrimSpace(in.Notes),
		Budget:        in.Budget,
		PreferredDate: in.PreferredDate,
	}

	var pending []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, propertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Property")
			}
			return err
		}
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionPhotoJobCreated,
			EntityType: models.EntityPhotoJob,
			EntityID:   job.ID,
			Meta:       models.JSONMap{"property_id": propertyID},
		}); err != nil {
			return err
		}

		var photographers []uint
		if err := tx.Model(&models.User{}).
			Where("role = ? AND status = ?", models.RolePhotographer, models.UserActive).
			Pluck("id", &photographers).Error; err != nil {
			return err
		}
		notes := make([]models.Notification, 0, len(photographers))
		for _, uid := range photographers {
			notes = append(notes, models.Notification{
				UserID:  uid,
				Type:    models.NotifyPhotoJob,
				Title:   "New photo job",
				Message: fmt.Sprintf("A shoot is requested for %q.", property.Title),
				RefType: models.EntityPhotoJob,
				RefID:   job.ID,
			})
		}
		var err error
		pending, err = s.notifications.Create(ctx, tx, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return job, nil
}

// ListOpen returns jobs waiting for a photographer, oldest first.
func (s *PhotoJobService) ListOpen(ctx context.Context, p Page) ([]models.PhotoJob, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.PhotoJob{}).Where("status = ?", models.JobOpen)
	jobs := []models.PhotoJob{}
	meta, err := paginate(query.Order("created_at, id"), p, &jobs)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return jobs, meta, nil
}

// List returns the viewer's jobs: photographers see their assignments,
// owners and brokers see jobs on their listings, admins see all.
func (s *PhotoJobService) List(ctx context.Context, viewer *authz.Identity, status string, p Page) ([]models.PhotoJob, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.PhotoJob{})
	if viewer.Role == models.RolePhotographer {
		query = query.Where("photographer_id = ?", viewer.UserID)
	} else {
		query = query.Scopes(managedPropertyScope(viewer))
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	jobs := []models.PhotoJob{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &jobs)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return jobs, meta, nil
}

// Transition advances a job. Accepting assigns the calling photographer, or
// for admins the photographer named in the change. Other transitions require
// the caller to be the assigned photographer or an admin, checked by the caller.
func (s *PhotoJobService) Transition(ctx context.Context, by *authz.Identity, id uint, action string, change JobChange) (*models.PhotoJob, error) {
	rule, ok := jobTransitions[action]
	if !ok {
		return nil, invalidInput("unknown action %q", action)
	}
	reason := strings.TrimSpace(change.Reason)
	if action == JobReject && !ValidReason(reason) {
		return nil, ErrInvalidReason
	}
	if action == JobSchedule && (change.ScheduledAt == nil || !change.ScheduledAt.After(s.now())) {
		return nil, invalidInput("scheduled_at must be in the future")
	}

	var (
		job     models.PhotoJob
		pending []models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Photo job")
			}
			return err
		}
		if !oneOf(job.Status, rule.from) {
			return transitionError(job.Status, action)
		}

		from := job.Status
		updates := map[string]interface{}{"status": rule.to}
		switch action {
		case JobAccept:
			photographer := by.UserID
			if by.IsAdmin() {
				if change.PhotographerID == nil {
					return invalidInput("photographer_id is required")
				}
				photographer = *change.PhotographerID
			}
			if err := requireRole(tx, photographer, models.RolePhotographer); err != nil {
				return err
			}
			updates["photographer_id"] = photographer
		case JobReject:
			updates["rejection_reason"] = reason
		case JobSchedule:
			updates["scheduled_at"] = change.ScheduledAt.UTC()
		case JobComplete:
			updates["completed_at"] = s.now()
		}

		if err := tx.Model(&job).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&job, id).Error; err != nil {
			return err
		}

		meta := models.JSONMap{"action": action, "from": from, "to": job.Status}
		if reason != "" {
			meta["reason"] = reason
		}
		if err := s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionPhotoJobTransitioned,
			EntityType: models.EntityPhotoJob,
			EntityID:   job.ID,
			Meta:       meta,
		}); err != nil {
			return err
		}

		var err error
		pending, err = s.notifications.Create(ctx, tx, []models.Notification{{
			UserID:  job.CreatedBy,
			Type:    models.NotifyPhotoJob,
			Title:   "Photo job " + job.Status,
			Message: withReason(fmt.Sprintf("Photo job #%d is now %s.", job.ID, job.Status), reason),
			RefType: models.EntityPhotoJob,
			RefID:   job.ID,
		}})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return &job, nil
}

// Messages returns the conversation on a job, oldest first.
func (s *PhotoJobService) Messages(ctx context.Context, id uint) ([]models.PhotoJobMessage, error) {
	messages := []models.PhotoJobMessage{}
	err := s.db.WithContext(ctx).Where("job_id = ?", id).Order("created_at, id").Find(&messages).Error
	return messages, err
}

// SendMessage posts to a job's conversation and notifies the other participants.
func (s *PhotoJobService) SendMessage(ctx context.Context, by *authz.Identity, id uint, text string) (*models.PhotoJobMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidInput("message is required")
	}

	msg := &models.PhotoJobMessage{JobID: id, SenderID: by.UserID, Message: text}
	var pending []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.PhotoJob
		if err := tx.First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Photo job")
			}
			return err
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		recipients := map[uint]bool{job.CreatedBy: true}
		if job.PhotographerID != nil {
			recipients[*job.PhotographerID] = true
		}
		delete(recipients, by.UserID)

		notes := []models.Notification{}
		for uid := range recipients {
			notes = append(notes, models.Notification{
				UserID:  uid,
				Type:    models.NotifyPhotoJob,
				Title:   fmt.Sprintf("New message on photo job #%d", job.ID),
				Message: text,
				RefType: models.EntityPhotoJob,
				RefID:   job.ID,
			})
		}
		var err error
		pending, err = s.notifications.Create(ctx, tx, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return msg, nil
}
