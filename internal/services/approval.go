package services

import (
	"context"
	"errors"
	"fmt"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Kind is an entity class under moderation.
type Kind string

const (
	KindUser     Kind = "user"
	KindProperty Kind = "property"
	KindMedia    Kind = "media"
)

// Moderation actions
const (
	Approve = "approve"
	Reject  = "reject"
	Suspend = "suspend"
)

const minReasonLength = 3

// TransitionResult reports the state change of one moderation call.
type TransitionResult struct {
	Kind   Kind        `json:"kind"`
	ID     uint        `json:"id"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Entity interface{} `json:"entity"`
}

// ApprovalService moves users, properties and media between moderation states.
type ApprovalService struct {
	db            *gorm.DB
	audit         *AuditService
	notifications *NotificationService
	now           func() time.Time
}

func NewApprovalService(db *gorm.DB, audit *AuditService, notifications *NotificationService) *ApprovalService {
	return &ApprovalService{
		db:            db,
		audit:         audit,
		notifications: notifications,
		now:           time.Now,
	}
}

// ValidReason reports whether a rejection reason is long enough once trimmed.
func ValidReason(reason string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(reason)) >= minReasonLength
}

// Transition applies action to the entity. Repeating a transition rewrites the
// same state and still appends one audit entry per call. The state write, the
// audit entry and the notifications commit together.
func (s *ApprovalService) Transition(ctx context.Context, kind Kind, id uint, action string, by *authz.Identity, reason string) (*TransitionResult, error) {
	if err := authz.Check(by, authz.Moderate, nil).Err(); err != nil {
		return nil, err
	}
	if action != Approve && action != Reject && action != Suspend {
		return nil, invalidInput("unknown action %q", action)
	}
	reason = strings.TrimSpace(reason)
	if action == Reject && !ValidReason(reason) {
		return nil, ErrInvalidReason
	}

	var (
		result  *TransitionResult
		pending []models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			err   error
			notes []models.Notification
		)
		switch kind {
		case KindUser:
			result, notes, err = s.transitionUser(tx, id, action, by, reason)
		case KindProperty:
			result, notes, err = s.transitionProperty(tx, id, action, by, reason)
		case KindMedia:
			result, notes, err = s.transitionMedia(tx, id, action, by, reason)
		default:
			return invalidInput("unknown entity kind %q", kind)
		}
		if err != nil {
			return err
		}

		meta := models.JSONMap{"from": result.From, "to": result.To}
		if reason != "" {
			meta["reason"] = reason
		}
		if err := s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     auditAction(kind, action),
			EntityType: string(kind),
			EntityID:   id,
			Meta:       meta,
		}); err != nil {
			return err
		}

		pending, err = s.notifications.Create(ctx, tx, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return result, nil
}

func auditAction(kind Kind, action string) string {
	past := map[string]string{Approve: "APPROVED", Reject: "REJECTED", Suspend: "SUSPENDED"}[action]
	return strings.ToUpper(string(kind)) + "_" + past
}

func (s *ApprovalService) transitionUser(tx *gorm.DB, id uint, action string, by *authz.Identity, reason string) (*TransitionResult, []models.Notification, error) {
	var user models.User
	if err := lockForUpdate(tx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("User")
		}
		return nil, nil, err
	}

	from := user.Status
	var updates map[string]interface{}
	switch action {
	case Approve:
		updates = map[string]interface{}{
			"status":                models.UserActive,
			"rejection_reason":      "",
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}
	case Reject:
		updates = map[string]interface{}{
			"status":           models.UserRejected,
			"rejection_reason": reason,
		}
	case Suspend:
		if from != models.UserActive && from != models.UserSuspended {
			return nil, nil, transitionError(from, action)
		}
		updates = map[string]interface{}{
			"status":           models.UserSuspended,
			"rejection_reason": reason,
		}
	}

	if err := tx.Model(&user).Updates(updates).Error; err != nil {
		return nil, nil, err
	}
	if err := tx.First(&user, id).Error; err != nil {
		return nil, nil, err
	}

	note := models.Notification{
		UserID:  user.ID,
		Type:    models.NotifyApproval,
		Title:   userNoticeTitle(action),
		Message: withReason(userNoticeMessage(action), reason),
		RefType: models.EntityUser,
		RefID:   user.ID,
	}

	return &TransitionResult{Kind: KindUser, ID: id, From: from, To: user.Status, Entity: &user},
		[]models.Notification{note}, nil
}

func (s *ApprovalService) transitionProperty(tx *gorm.DB, id uint, action string, by *authz.Identity, reason string) (*TransitionResult, []models.Notification, error) {
	if action == Suspend {
		return nil, nil, transitionError("property", action)
	}

	var property models.Property
	if err := lockForUpdate(tx).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("Property")
		}
		return nil, nil, err
	}

	from := property.ApprovalStatus
	if err := tx.Model(&property).Updates(s.moderationUpdates(action, by, reason)).Error; err != nil {
		return nil, nil, err
	}
	if err := tx.First(&property, id).Error; err != nil {
		return nil, nil, err
	}

	title := "Listing approved"
	message := fmt.Sprintf("Your listing %q is now live.", property.Title)
	if action == Reject {
		title = "Listing rejected"
		message = withReason(fmt.Sprintf("Your listing %q was not approved.", property.Title), reason)
	}

	notes := []models.Notification{}
	for _, uid := range propertyManagers(&property) {
		notes = append(notes, models.Notification{
			UserID:  uid,
			Type:    models.NotifyApproval,
			Title:   title,
			Message: message,
			RefType: models.EntityProperty,
			RefID:   property.ID,
		})
	}

	return &TransitionResult{Kind: KindProperty, ID: id, From: from, To: property.ApprovalStatus, Entity: &property},
		notes, nil
}

func (s *ApprovalService) transitionMedia(tx *gorm.DB, id uint, action string, by *authz.Identity, reason string) (*TransitionResult, []models.Notification, error) {
	if action == Suspend {
		return nil, nil, transitionError("media", action)
	}

	var media models.Media
	if err := lockForUpdate(tx).First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("Media")
		}
		return nil, nil, err
	}

	from := media.ApprovalStatus
	if err := tx.Model(&media).Updates(s.moderationUpdates(action, by, reason)).Error; err != nil {
		return nil, nil, err
	}
	if err := tx.First(&media, id).Error; err != nil {
		return nil, nil, err
	}

	title := "Media approved"
	message := "Your uploaded file is now visible on the listing."
	if action == Reject {
		title = "Media rejected"
		message = withReason("Your uploaded file was not approved.", reason)
	}
	note := models.Notification{
		UserID:  media.UploadedBy,
		Type:    models.NotifyApproval,
		Title:   title,
		Message: message,
		RefType: models.EntityMedia,
		RefID:   media.ID,
	}

	return &TransitionResult{Kind: KindMedia, ID: id, From: from, To: media.ApprovalStatus, Entity: &media},
		[]models.Notification{note}, nil
}

func (s *ApprovalService) moderationUpdates(action string, by *authz.Identity, reason string) map[string]interface{} {
	if action == Approve {
		return map[string]interface{}{
			"approval_status":  models.ApprovalApproved,
			"rejection_reason": "",
			"approved_at":      s.now(),
			"approved_by":      by.UserID,
		}
	}
	return map[string]interface{}{
		"approval_status":  models.ApprovalRejected,
		"rejection_reason": reason,
		"approved_at":      nil,
		"approved_by":      nil,
	}
}

// propertyManagers returns the distinct owner and broker of a listing.
func propertyManagers(p *models.Property) []uint {
	ids := []uint{p.OwnerID}
	if p.BrokerID != nil && *p.BrokerID != p.OwnerID {
		ids = append(ids, *p.BrokerID)
	}
	return ids
}

func userNoticeTitle(action string) string {
	switch action {
	case Approve:
		return "Account approved"
	case Reject:
		return "Account rejected"
	default:
		return "Account suspended"
	}
}

func userNoticeMessage(action string) string {
	switch action {
	case Approve:
		return "Your account has been approved. You can now sign in."
	case Reject:
		return "Your account application was not approved."
	default:
		return "Your account has been suspended."
	}
}

func withReason(message, reason string) string {
	if reason == "" {
		return message
	}
	return message + " Reason: " + reason
}
