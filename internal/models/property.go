package models

import (
	"time"

	"gorm.io/gorm"
)

// Approval statuses shared by properties and media
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Listing types
const (
	ListingSale = "sale"
	ListingRent = "rent"
)

// Market statuses of a listing, set by its owner or broker.
const (
	PropertyAvailable  = "available"
	PropertyUnderOffer = "under_offer"
	PropertySold       = "sold"
	PropertyRented     = "rented"
	PropertyOffMarket  = "off_market"
)

type Property struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	OwnerID         uint           `json:"owner_id" gorm:"not null;index"`
	BrokerID        *uint          `json:"broker_id" gorm:"index"`
	Title           string         `json:"title" gorm:"type:varchar(200);not null"`
	Description     string         `json:"description" gorm:"type:text"`
	ListingType     string         `json:"listing_type" gorm:"type:varchar(10);not null;index"`
	PropertyType    string         `json:"property_type" gorm:"type:varchar(20);not null;index"`
	Price           float64        `json:"price" gorm:"not null"`
	Currency        string         `json:"currency" gorm:"type:varchar(3);default:'SSP'"`
	City            string         `json:"city" gorm:"type:varchar(100);index"`
	Area            string         `json:"area" gorm:"type:varchar(100);index"`
	Address         string         `json:"address" gorm:"type:varchar(255)"`
	Bedrooms        int            `json:"bedrooms"`
	Bathrooms       int            `json:"bathrooms"`
	SizeSqm         float64        `json:"size_sqm"`
	Status          string         `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	ApprovalStatus  string         `json:"approval_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	RejectionReason string         `json:"rejection_reason,omitempty" gorm:"type:varchar(500)"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy      *uint          `json:"approved_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsPublic reports whether anonymous visitors may see the listing.
func (p *Property) IsPublic() bool {
	return p.ApprovalStatus == ApprovalApproved && !p.DeletedAt.Valid
}

// ManagedBy reports whether userID is the owner or broker of the listing.
func (p *Property) ManagedBy(userID uint) bool {
	return p.OwnerID == userID || (p.BrokerID != nil && *p.BrokerID == userID)
}

// Media kinds
const (
	MediaImage = "image"
	MediaVideo = "video"
)

type Media struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	PropertyID      uint           `json:"property_id" gorm:"not null;index"`
	UploadedBy      uint           `json:"uploaded_by" gorm:"not null;index"`
	Kind            string         `json:"kind" gorm:"type:varchar(10);not null"`
	FileName        string         `json:"file_name" gorm:"type:varchar(255);not null"`
	OriginalName    string         `json:"original_name" gorm:"type:varchar(255)"`
	URL             string         `json:"url" gorm:"type:varchar(500);not null"`
	MimeType        string         `json:"mime_type" gorm:"type:varchar(100)"`
	SizeBytes       int64          `json:"size_bytes"`
	ApprovalStatus  string         `json:"approval_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	RejectionReason string         `json:"rejection_reason,omitempty" gorm:"type:varchar(500)"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy      *uint          `json:"approved_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName keeps the table name singular-free; gorm would pluralise to "media".
func (Media) TableName() string {
	return "media_assets"
}
