package services

import (
	"context"
	"errors"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"strings"

	"gorm.io/gorm"
)

var (
	listingTypes  = []string{models.ListingSale, models.ListingRent}
	propertyTypes = []string{"house", "apartment", "land", "commercial", "office", "other"}
	marketStatus  = []string{
		models.PropertyAvailable, models.PropertyUnderOffer, models.PropertySold,
		models.PropertyRented, models.PropertyOffMarket,
	}
)

// PropertyInput holds listing fields. On update nil pointers leave fields unchanged.
type PropertyInput struct {
	OwnerID      *uint
	BrokerID     *uint
	Title        *string
	Description  *string
	ListingType  *string
	PropertyType *string
	Price        *float64
	Currency     *string
	City         *string
	Area         *string
	Address      *string
	Bedrooms     *int
	Bathrooms    *int
	SizeSqm      *float64
}

// PropertyFilter narrows listing searches.
type PropertyFilter struct {
	Query          string
	City           string
	Area           string
	ListingType    string
	PropertyType   string
	MinPrice       *float64
	MaxPrice       *float64
	Bedrooms       *int
	Mine           bool
	ApprovalStatus string
}

// AreaCount is the number of live listings in one area of a city.
type AreaCount struct {
	City  string `json:"city"`
	Area  string `json:"area"`
	Count int64  `json:"count"`
}

type PropertyService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewPropertyService(db *gorm.DB, audit *AuditService) *PropertyService {
	return &PropertyService{db: db, audit: audit}
}

// Create stores a new listing awaiting moderation.
// Owners own what they list; brokers are recorded as broker and may name the owner.
func (s *PropertyService) Create(ctx context.Context, by *authz.Identity, in PropertyInput) (*models.Property, error) {
	if err := authz.Check(by, authz.PropertyCreate, nil).Err(); err != nil {
		return nil, err
	}
	if in.Title == nil || in.ListingType == nil || in.PropertyType == nil || in.Price == nil {
		return nil, invalidInput("title, listing_type, property_type and price are required")
	}

	property := &models.Property{
		Status:         models.PropertyAvailable,
		ApprovalStatus: models.ApprovalPending,
		Currency:       "SSP",
	}
	if err := applyPropertyInput(property, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch by.Role {
		case models.RoleOwner:
			property.OwnerID = by.UserID
		case models.RoleBroker:
			property.OwnerID = by.UserID
			property.BrokerID = actor(by.UserID)
			if in.OwnerID != nil {
				if err := requireRole(tx, *in.OwnerID, models.RoleOwner); err != nil {
					return err
				}
				property.OwnerID = *in.OwnerID
			}
		case models.RoleAdmin:
			property.OwnerID = by.UserID
			if in.OwnerID != nil {
				if err := requireRole(tx, *in.OwnerID, models.RoleOwner); err != nil {
					return err
				}
				property.OwnerID = *in.OwnerID
			}
			if in.BrokerID != nil {
				if err := requireRole(tx, *in.BrokerID, models.RoleBroker); err != nil {
					return err
				}
				property.BrokerID = in.BrokerID
			}
		}

		if err := tx.Create(property).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionPropertyCreated,
			EntityType: models.EntityProperty,
			EntityID:   property.ID,
			Meta:       models.JSONMap{"title": property.Title, "owner_id": property.OwnerID},
		})
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

func requireRole(tx *gorm.DB, userID uint, role string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ? AND role = ?", userID, role).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidInput("user %d is not a %s account", userID, role)
	}
	return nil
}

func applyPropertyInput(p *models.Property, in PropertyInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if len(title) < 3 {
			return invalidInput("title must be at least 3 characters")
		}
		p.Title = title
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.ListingType != nil {
		if !oneOf(*in.ListingType, listingTypes) {
			return invalidInput("listing_type must be one of %s", strings.Join(listingTypes, ", "))
		}
		p.ListingType = *in.ListingType
	}
	if in.PropertyType != nil {
		if !oneOf(*in.PropertyType, propertyTypes) {
			return invalidInput("property_type must be one of %s", strings.Join(propertyTypes, ", "))
		}
		p.PropertyType = *in.PropertyType
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return invalidInput("price must not be negative")
		}
		p.Price = *in.Price
	}
	if in.Currency != nil && *in.Currency != "" {
		p.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.City != nil {
		p.City = strings.TrimSpace(*in.City)
	}
	if in.Area != nil {
		p.Area = strings.TrimSpace(*in.Area)
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.SizeSqm != nil {
		p.SizeSqm = *in.SizeSqm
	}
	return nil
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// List returns approved listings, or with Mine set the caller's own listings in any state.
func (s *PropertyService) List(ctx context.Context, viewer *authz.Identity, f PropertyFilter, p Page) ([]models.Property, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.Property{})

	if f.Mine {
		if viewer == nil {
			return nil, PageMeta{}, authz.ErrUnauthenticated
		}
		if !viewer.IsAdmin() {
			query = query.Where("owner_id = ? OR broker_id = ?", viewer.UserID, viewer.UserID)
		}
		if f.ApprovalStatus != "" {
			query = query.Where("approval_status = ?", f.ApprovalStatus)
		}
	} else {
		query = query.Where("approval_status = ?", models.ApprovalApproved)
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(area) LIKE ?", like, like, like)
	}
	if f.City != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.Area != "" {
		query = query.Where("LOWER(area) = ?", strings.ToLower(f.Area))
	}
	if f.ListingType != "" {
		query = query.Where("listing_type = ?", f.ListingType)
	}
	if f.PropertyType != "" {
		query = query.Where("property_type = ?", f.PropertyType)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if f.Bedrooms != nil {
		query = query.Where("bedrooms >= ?", *f.Bedrooms)
	}

	properties := []models.Property{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &properties)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return properties, meta, nil
}

// ListForModeration returns listings of any approval state for admins.
func (s *PropertyService) ListForModeration(ctx context.Context, approvalStatus string, p Page) ([]models.Property, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.Property{})
	if approvalStatus != "" {
		query = query.Where("approval_status = ?", approvalStatus)
	}
	properties := []models.Property{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &properties)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return properties, meta, nil
}

// Get returns a listing visible to viewer. Unapproved listings are only
// visible to their owner, broker and admins; for everybody else they do not exist.
func (s *PropertyService) Get(ctx context.Context, viewer *authz.Identity, id uint) (*models.Property, error) {
	property, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if property.IsPublic() {
		return property, nil
	}
	if viewer != nil && (viewer.IsAdmin() || property.ManagedBy(viewer.UserID)) {
		return property, nil
	}
	return nil, notFound("Property")
}

func (s *PropertyService) find(ctx context.Context, tx *gorm.DB, id uint) (*models.Property, error) {
	var property models.Property
	if err := tx.WithContext(ctx).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Property")
		}
		return nil, err
	}
	return &property, nil
}

// Update edits listing fields. Ownership is checked by the caller.
func (s *PropertyService) Update(ctx context.Context, by *authz.Identity, id uint, in PropertyInput) (*models.Property, error) {
	var property *models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if property, err = s.find(ctx, lockForUpdate(tx), id); err != nil {
			return err
		}

		if by.IsAdmin() && in.BrokerID != nil {
			if err := requireRole(tx, *in.BrokerID, models.RoleBroker); err != nil {
				return err
			}
			property.BrokerID = in.BrokerID
		}
		in.OwnerID, in.BrokerID = nil, nil
		if err := applyPropertyInput(property, in); err != nil {
			return err
		}
		if err := tx.Save(property).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionPropertyUpdated,
			EntityType: models.EntityProperty,
			EntityID:   property.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

// SetStatus changes the market status of a listing.
func (s *PropertyService) SetStatus(ctx context.Context, by *authz.Identity, id uint, status string) (*models.Property, error) {
	if !oneOf(status, marketStatus) {
		return nil, invalidInput("status must be one of %s", strings.Join(marketStatus, ", "))
	}

	var property *models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if property, err = s.find(ctx, lockForUpdate(tx), id); err != nil {
			return err
		}
		from := property.Status
		if err := tx.Model(property).Update("status", status).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionPropertyStatusChanged,
			EntityType: models.EntityProperty,
			EntityID:   property.ID,
			Meta:       models.JSONMap{"from": from, "to": status},
		})
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

// Delete soft-deletes a listing.
func (s *PropertyService) Delete(ctx context.Context, by *authz.Identity, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(property).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionPropertyDeleted,
			EntityType: models.EntityProperty,
			EntityID:   property.ID,
		})
	})
}

// Areas counts live listings per city and area.
func (s *PropertyService) Areas(ctx context.Context) ([]AreaCount, error) {
	areas := []AreaCount{}
	err := s.db.WithContext(ctx).Model(&models.Property{}).
		Select("city, area, COUNT(*) AS count").
		Where("approval_status = ?", models.ApprovalApproved).
		Where("area <> ''").
		Group("city, area").
		Order("count DESC, city, area").
		Scan(&areas).Error
	return areas, err
}
