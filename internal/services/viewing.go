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

// ViewingRequestInput asks to see a listing.
type ViewingRequestInput struct {
	Name        string
	Email       string
	Phone       string
	PreferredAt *time.Time
	Message     string
}

// ScheduleInput books a viewing, either directly on a listing or from a request.
type ScheduleInput struct {
	PropertyID  uint
	RequestID   *uint
	ScheduledAt time.Time
	Notes       string
	AssignedTo  *uint
}

// ViewingWindow bounds a viewing listing by time.
type ViewingWindow struct {
	From *time.Time
	To   *time.Time
}

type ViewingService struct {
	db            *gorm.DB
	audit         *AuditService
	notifications *NotificationService
	now           func() time.Time
}

func NewViewingService(db *gorm.DB, audit *AuditService, notifications *NotificationService) *ViewingService {
	return &ViewingService{
		db:            db,
		audit:         audit,
		notifications: notifications,
		now:           time.Now,
	}
}

// CreateRequest records a viewing request on a live listing.
func (s *ViewingService) CreateRequest(ctx context.Context, viewer *authz.Identity, propertyID uint, in ViewingRequestInput) (*models.ViewingRequest, error) {
	req := &models.ViewingRequest{
		PropertyID:  propertyID,
		Name:        strings.TrimSpace(in.Name),
		Email:       normalizeEmail(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		PreferredAt: in.PreferredAt,
		Message:     strings.TrimSpace(in.Message),
		Status:      models.RequestPending,
	}

	var pending []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := findPublicProperty(tx, propertyID)
		if err != nil {
			return err
		}

		if viewer != nil {
			var user models.User
			if err := tx.First(&user, viewer.UserID).Error; err == nil {
				req.UserID = actor(user.ID)
				if req.Name == "" {
					req.Name = user.Name
				}
				if req.Email == "" {
					req.Email = user.Email
				}
				if req.Phone == "" {
					req.Phone = user.Phone
				}
			}
		}
		if req.Name == "" || req.Email == "" {
			return invalidInput("name and email are required")
		}

		if err := tx.Create(req).Error; err != nil {
			return err
		}

		notes := []models.Notification{}
		for _, uid := range propertyManagers(property) {
			notes = append(notes, models.Notification{
				UserID:  uid,
				Type:    models.NotifyViewing,
				Title:   "New viewing request",
				Message: fmt.Sprintf("%s would like to view %q.", req.Name, property.Title),
				RefType: models.EntityProperty,
				RefID:   property.ID,
			})
		}
		pending, err = s.notifications.Create(ctx, tx, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return req, nil
}

// ListRequests returns viewing requests on listings the viewer manages.
func (s *ViewingService) ListRequests(ctx context.Context, viewer *authz.Identity, status string, p Page) ([]models.ViewingRequest, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.ViewingRequest{}).Scopes(managedPropertyScope(viewer))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	requests := []models.ViewingRequest{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &requests)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return requests, meta, nil
}

// Schedule books a viewing. When built from a request the request is marked scheduled.
// The caller must manage the listing.
func (s *ViewingService) Schedule(ctx context.Context, by *authz.Identity, in ScheduleInput) (*models.Viewing, error) {
	if !in.ScheduledAt.After(s.now()) {
		return nil, invalidInput("scheduled_at must be in the future")
	}

	viewing := &models.Viewing{
		ScheduledAt: in.ScheduledAt.UTC(),
		Status:      models.ViewingScheduled,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedBy:   by.UserID,
	}

	var pending []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request *models.ViewingRequest
		propertyID := in.PropertyID
		if in.RequestID != nil {
			request = &models.ViewingRequest{}
			if err := lockForUpdate(tx).First(request, *in.RequestID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("Viewing request")
				}
				return err
			}
			if propertyID != 0 && propertyID != request.PropertyID {
				return invalidInput("request %d belongs to another property", request.ID)
			}
			propertyID = request.PropertyID
			viewing.RequestID = actor(request.ID)
		}
		if propertyID == 0 {
			return invalidInput("property_id or request_id is required")
		}

		res, err := propertyResource(tx, propertyID)
		if err != nil {
			return err
		}
		if err := authz.Check(by, authz.ViewingSchedule, res).Err(); err != nil {
			return err
		}
		viewing.PropertyID = propertyID

		if in.AssignedTo != nil {
			if err := requireRole(tx, *in.AssignedTo, models.RolePhotographer); err != nil {
				return err
			}
			viewing.AssignedTo = in.AssignedTo
		}

		if err := tx.Create(viewing).Error; err != nil {
			return err
		}
		if request != nil {
			if err := tx.Model(request).Update("status", models.RequestScheduled).Error; err != nil {
				return err
			}
		}
		if err := s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionViewingScheduled,
			EntityType: models.EntityViewing,
			EntityID:   viewing.ID,
			Meta:       models.JSONMap{"property_id": propertyID, "scheduled_at": viewing.ScheduledAt},
		}); err != nil {
			return err
		}

		message := fmt.Sprintf("A viewing is scheduled for %s.", viewing.ScheduledAt.Format(time.RFC1123))
		pending, err = s.notifications.Create(ctx, tx, viewingParticipants(request, viewing, "Viewing scheduled", message))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return viewing, nil
}

func viewingParticipants(request *models.ViewingRequest, v *models.Viewing, title, message string) []models.Notification {
	notes := []models.Notification{}
	add := func(uid uint) {
		notes = append(notes, models.Notification{
			UserID:  uid,
			Type:    models.NotifyViewing,
			Title:   title,
			Message: message,
			RefType: models.EntityViewing,
			RefID:   v.ID,
		})
	}
	if request != nil && request.UserID != nil {
		add(*request.UserID)
	}
	if v.AssignedTo != nil {
		add(*v.AssignedTo)
	}
	return notes
}

// List returns viewings visible to the viewer: photographers see their
// assignments, owners and brokers see their listings, admins see all.
func (s *ViewingService) List(ctx context.Context, viewer *authz.Identity, w ViewingWindow, p Page) ([]models.Viewing, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.Viewing{})
	if viewer.Role == models.RolePhotographer {
		query = query.Where("assigned_to = ?", viewer.UserID)
	} else {
		query = query.Scopes(managedPropertyScope(viewer))
	}
	if w.From != nil {
		query = query.Where("scheduled_at >= ?", w.From.UTC())
	}
	if w.To != nil {
		query = query.Where("scheduled_at <= ?", w.To.UTC())
	}

	viewings := []models.Viewing{}
	meta, err := paginate(query.Order("scheduled_at, id"), p, &viewings)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return viewings, meta, nil
}

// Reschedule moves a viewing that has not been cancelled to a future time.
func (s *ViewingService) Reschedule(ctx context.Context, by *authz.Identity, id uint, at time.Time, notes string) (*models.Viewing, error) {
	if !at.After(s.now()) {
		return nil, invalidInput("scheduled_at must be in the future")
	}
	return s.change(ctx, by, id, func(tx *gorm.DB, v *models.Viewing) (string, models.JSONMap, error) {
		if v.Status == models.ViewingCancelled {
			return "", nil, transitionError(v.Status, "reschedule")
		}
		from := v.ScheduledAt
		updates := map[string]interface{}{"scheduled_at": at.UTC(), "status": models.ViewingRescheduled}
		if strings.TrimSpace(notes) != "" {
			updates["notes"] = strings.TrimSpace(notes)
		}
		if err := tx.Model(v).Updates(updates).Error; err != nil {
			return "", nil, err
		}
		return ActionViewingRescheduled, models.JSONMap{"from": from, "to": at.UTC()}, nil
	}, "Viewing rescheduled", func(v *models.Viewing) string {
		return fmt.Sprintf("The viewing moved to %s.", v.ScheduledAt.Format(time.RFC1123))
	})
}

// Cancel cancels a viewing with a reason.
func (s *ViewingService) Cancel(ctx context.Context, by *authz.Identity, id uint, reason string) (*models.Viewing, error) {
	reason = strings.TrimSpace(reason)
	if !ValidReason(reason) {
		return nil, ErrInvalidReason
	}
	return s.change(ctx, by, id, func(tx *gorm.DB, v *models.Viewing) (string, models.JSONMap, error) {
		if v.Status == models.ViewingCancelled {
			return "", nil, transitionError(v.Status, "cancel")
		}
		if err := tx.Model(v).Updates(map[string]interface{}{
			"status":        models.ViewingCancelled,
			"cancel_reason": reason,
		}).Error; err != nil {
			return "", nil, err
		}
		return ActionViewingCancelled, models.JSONMap{"reason": reason}, nil
	}, "Viewing cancelled", func(v *models.Viewing) string {
		return withReason("A viewing was cancelled.", reason)
	})
}

type viewingChange func(tx *gorm.DB, v *models.Viewing) (string, models.JSONMap, error)

func (s *ViewingService) change(ctx context.Context, by *authz.Identity, id uint, apply viewingChange, title string, message func(*models.Viewing) string) (*models.Viewing, error) {
	var (
		viewing models.Viewing
		pending []models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&viewing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Viewing")
			}
			return err
		}

		action, meta, err := apply(tx, &viewing)
		if err != nil {
			return err
		}
		if err := tx.First(&viewing, id).Error; err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     action,
			EntityType: models.EntityViewing,
			EntityID:   viewing.ID,
			Meta:       meta,
		}); err != nil {
			return err
		}

		var request *models.ViewingRequest
		if viewing.RequestID != nil {
			request = &models.ViewingRequest{}
			if err := tx.First(request, *viewing.RequestID).Error; err != nil {
				request = nil
			}
		}
		pending, err = s.notifications.Create(ctx, tx, viewingParticipants(request, &viewing, title, message(&viewing)))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return &viewing, nil
}
