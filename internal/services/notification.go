package services

import (
	"context"
	"errors"
	"juba-homez/internal/models"
	"log"
	"time"

	"gorm.io/gorm"
)

// EventPublisher is an optional sink for notifications, such as a message broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// NotificationEvent is the broker payload for one notification.
type NotificationEvent struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RefType   string    `json:"ref_type,omitempty"`
	RefID     uint      `json:"ref_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationService struct {
	db        *gorm.DB
	publisher EventPublisher
	now       func() time.Time
}

func NewNotificationService(db *gorm.DB, publisher EventPublisher) *NotificationService {
	return &NotificationService{db: db, publisher: publisher, now: time.Now}
}

// Create stores notifications using tx. Call Publish once tx has committed.
func (s *NotificationService) Create(ctx context.Context, tx *gorm.DB, notes []models.Notification) ([]models.Notification, error) {
	if len(notes) == 0 {
		return nil, nil
	}
	if tx == nil {
		tx = s.db
	}
	if err := tx.WithContext(ctx).Create(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// Publish forwards stored notifications to the broker. Failures are logged and dropped.
func (s *NotificationService) Publish(ctx context.Context, notes []models.Notification) {
	if s.publisher == nil {
		return
	}
	for _, n := range notes {
		event := NotificationEvent{
			ID:        n.ID,
			UserID:    n.UserID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			RefType:   n.RefType,
			RefID:     n.RefID,
			CreatedAt: n.CreatedAt,
		}
		if err := s.publisher.PublishJSON(ctx, "notification."+n.Type, event); err != nil {
			log.Printf("notification %d publish failed: %v", n.ID, err)
		}
	}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, p Page) ([]models.Notification, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	notes := []models.Notification{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &notes)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return notes, meta, nil
}

// UnreadCount returns how many notifications the user has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	var note models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Notification")
		}
		return nil, err
	}

	if note.ReadAt == nil {
		now := s.now()
		if err := s.db.WithContext(ctx).Model(&note).Update("read_at", now).Error; err != nil {
			return nil, err
		}
		note.ReadAt = &now
	}
	return &note, nil
}

// MarkAllRead marks every unread notification of the caller and reports how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", s.now())
	return res.RowsAffected, res.Error
}
