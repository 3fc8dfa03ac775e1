package services

import (
	"context"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"strings"

	"gorm.io/gorm"
)

// AnnouncementInput is a broadcast from the admins.
type AnnouncementInput struct {
	Title    string
	Message  string
	Audience []string
}

type AnnouncementService struct {
	db            *gorm.DB
	audit         *AuditService
	notifications *NotificationService
}

func NewAnnouncementService(db *gorm.DB, audit *AuditService, notifications *NotificationService) *AnnouncementService {
	return &AnnouncementService{db: db, audit: audit, notifications: notifications}
}

// Create stores an announcement and notifies every active user in its audience.
// An empty audience, or one containing "all", reaches everybody.
func (s *AnnouncementService) Create(ctx context.Context, by *authz.Identity, in AnnouncementInput) (*models.Announcement, error) {
	if err := authz.Check(by, authz.Announce, nil).Err(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if len(title) < 3 {
		return nil, invalidInput("title must be at least 3 characters")
	}
	if message == "" {
		return nil, invalidInput("message is required")
	}

	audience, err := normalizeAudience(in.Audience)
	if err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		Title:     title,
		Message:   message,
		Audience:  audience,
		CreatedBy: by.UserID,
	}

	var pending []models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(announcement).Error; err != nil {
			return err
		}

		query := tx.Model(&models.User{}).Where("status = ?", models.UserActive)
		if !audience.Contains(models.AudienceAll) {
			query = query.Where("role IN ?", []string(audience))
		}
		var recipients []uint
		if err := query.Pluck("id", &recipients).Error; err != nil {
			return err
		}

		notes := make([]models.Notification, 0, len(recipients))
		for _, uid := range recipients {
			notes = append(notes, models.Notification{
				UserID:  uid,
				Type:    models.NotifyAnnouncement,
				Title:   title,
				Message: message,
				RefType: models.EntityAnnouncement,
				RefID:   announcement.ID,
			})
		}
		if len(notes) > 0 {
			if err := tx.CreateInBatches(&notes, 200).Error; err != nil {
				return err
			}
		}
		pending = notes

		announcement.Sent = len(notes)
		if err := tx.Model(announcement).Update("sent", announcement.Sent).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionAnnouncementCreated,
			EntityType: models.EntityAnnouncement,
			EntityID:   announcement.ID,
			Meta:       models.JSONMap{"audience": []string(audience), "sent": announcement.Sent},
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return announcement, nil
}

// List returns announcements, newest first.
func (s *AnnouncementService) List(ctx context.Context, p Page) ([]models.Announcement, PageMeta, error) {
	announcements := []models.Announcement{}
	query := s.db.WithContext(ctx).Model(&models.Announcement{}).Order("created_at DESC, id DESC")
	meta, err := paginate(query, p, &announcements)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return announcements, meta, nil
}

func normalizeAudience(in []string) (models.StringArray, error) {
	if len(in) == 0 {
		return models.StringArray{models.AudienceAll}, nil
	}
	valid := append([]string{models.AudienceAll}, models.RoleCustomer, models.RoleBroker,
		models.RoleOwner, models.RolePhotographer, models.RoleAdmin, models.RoleStaff)

	out := models.StringArray{}
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if !oneOf(a, valid) {
			return nil, invalidInput("unknown audience %q", a)
		}
		if a == models.AudienceAll {
			return models.StringArray{models.AudienceAll}, nil
		}
		if !out.Contains(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
