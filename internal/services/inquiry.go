package services

import (
	"context"
	"errors"
	"fmt"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"strings"

	"gorm.io/gorm"
)

// InquiryInput is a visitor's question about a listing.
type InquiryInput struct {
	PropertyID uint
	Name       string
	Email      string
	Phone      string
	Message    string
}

type InquiryService struct {
	db            *gorm.DB
	audit         *AuditService
	notifications *NotificationService
}

func NewInquiryService(db *gorm.DB, audit *AuditService, notifications *NotificationService) *InquiryService {
	return &InquiryService{db: db, audit: audit, notifications: notifications}
}

// Create records an inquiry on a live listing and notifies its owner and broker.
// Signed-in visitors may omit name and email; their account fills them in.
func (s *InquiryService) Create(ctx context.Context, viewer *authz.Identity, in InquiryInput) (*models.Inquiry, error) {
	inquiry := &models.Inquiry{
		PropertyID: in.PropertyID,
		Name:       strings.TrimSpace(in.Name),
		Email:      normalizeEmail(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Message:    strings.TrimSpace(in.Message),
		Status:     models.InquiryNew,
	}
	if inquiry.Message == "" {
		return nil, invalidInput("message is required")
	}

	var pending []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := findPublicProperty(tx, in.PropertyID)
		if err != nil {
			return err
		}

		if viewer != nil {
			var user models.User
			if err := tx.First(&user, viewer.UserID).Error; err == nil {
				inquiry.UserID = actor(user.ID)
				if inquiry.Name == "" {
					inquiry.Name = user.Name
				}
				if inquiry.Email == "" {
					inquiry.Email = user.Email
				}
				if inquiry.Phone == "" {
					inquiry.Phone = user.Phone
				}
			}
		}
		if inquiry.Name == "" || inquiry.Email == "" {
			return invalidInput("name and email are required")
		}

		if err := tx.Create(inquiry).Error; err != nil {
			return err
		}

		notes := []models.Notification{}
		for _, uid := range propertyManagers(property) {
			notes = append(notes, models.Notification{
				UserID:  uid,
				Type:    models.NotifyInquiry,
				Title:   "New inquiry",
				Message: fmt.Sprintf("%s asked about %q.", inquiry.Name, property.Title),
				RefType: models.EntityInquiry,
				RefID:   inquiry.ID,
			})
		}
		pending, err = s.notifications.Create(ctx, tx, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return inquiry, nil
}

func findPublicProperty(tx *gorm.DB, id uint) (*models.Property, error) {
	var property models.Property
	err := tx.Where("id = ? AND approval_status = ?", id, models.ApprovalApproved).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Property")
		}
		return nil, err
	}
	return &property, nil
}

// managedPropertyScope limits a query on a table with property_id to listings the viewer manages.
func managedPropertyScope(viewer *authz.Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewer.IsAdmin() {
			return db
		}
		sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.Property{}).
			Select("id").
			Where("owner_id = ? OR broker_id = ?", viewer.UserID, viewer.UserID)
		return db.Where("property_id IN (?)", sub)
	}
}

// List returns inquiries on listings the viewer manages, newest first.
func (s *InquiryService) List(ctx context.Context, viewer *authz.Identity, status string, p Page) ([]models.Inquiry, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.Inquiry{}).Scopes(managedPropertyScope(viewer))
	if status != "" {
		query = query.Where("status = ?", status)
	}

	inquiries := []models.Inquiry{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &inquiries)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return inquiries, meta, nil
}

// Get returns an inquiry with its replies. Ownership is checked by the caller.
func (s *InquiryService) Get(ctx context.Context, id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&inquiry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Inquiry")
		}
		return nil, err
	}
	return &inquiry, nil
}

// Reply answers an inquiry, marks it replied and notifies the inquirer if they have an account.
func (s *InquiryService) Reply(ctx context.Context, by *authz.Identity, id uint, message string) (*models.InquiryReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalidInput("message is required")
	}

	reply := &models.InquiryReply{InquiryID: id, AuthorID: by.UserID, Message: message}
	var pending []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inquiry models.Inquiry
		if err := lockForUpdate(tx).First(&inquiry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Inquiry")
			}
			return err
		}

		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		if err := tx.Model(&inquiry).Update("status", models.InquiryReplied).Error; err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionInquiryReplied,
			EntityType: models.EntityInquiry,
			EntityID:   inquiry.ID,
		}); err != nil {
			return err
		}

		if inquiry.UserID == nil {
			return nil
		}
		var err error
		pending, err = s.notifications.Create(ctx, tx, []models.Notification{{
			UserID:  *inquiry.UserID,
			Type:    models.NotifyInquiryReply,
			Title:   "Reply to your inquiry",
			Message: message,
			RefType: models.EntityInquiry,
			RefID:   inquiry.ID,
		}})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, pending)
	return reply, nil
}
