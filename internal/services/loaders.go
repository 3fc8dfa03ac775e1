package services

import (
	"context"
	"errors"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"

	"gorm.io/gorm"
)

// Loaders resolve the ownership of guarded resources for the authorization gate.
// Every call reads the current rows; nothing is cached.
type Loaders struct {
	db *gorm.DB
}

func NewLoaders(db *gorm.DB) *Loaders {
	return &Loaders{db: db}
}

func propertyResource(tx *gorm.DB, id uint) (*authz.Resource, error) {
	var p models.Property
	if err := tx.Select("id", "owner_id", "broker_id").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &authz.Resource{}, nil
		}
		return nil, err
	}
	return &authz.Resource{Found: true, OwnerID: p.OwnerID, BrokerID: p.BrokerID}, nil
}

// Property loads a listing's owner and broker.
func (l *Loaders) Property(ctx context.Context, id uint) (*authz.Resource, error) {
	return propertyResource(l.db.WithContext(ctx), id)
}

// PropertyWithCrew also lists photographers holding a live job on the listing,
// who may upload media to it.
func (l *Loaders) PropertyWithCrew(ctx context.Context, id uint) (*authz.Resource, error) {
	res, err := l.Property(ctx, id)
	if err != nil || !res.Found {
		return res, err
	}
	err = l.db.WithContext(ctx).Model(&models.PhotoJob{}).
		Where("property_id = ? AND photographer_id IS NOT NULL AND status IN ?", id,
			[]string{models.JobAccepted, models.JobScheduled, models.JobCompleted}).
		Pluck("photographer_id", &res.PhotographerIDs).Error
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Media loads the ownership of the listing a media item belongs to.
func (l *Loaders) Media(ctx context.Context, id uint) (*authz.Resource, error) {
	return l.viaProperty(ctx, &models.Media{}, id)
}

// Inquiry loads the ownership of the listing an inquiry is about.
func (l *Loaders) Inquiry(ctx context.Context, id uint) (*authz.Resource, error) {
	return l.viaProperty(ctx, &models.Inquiry{}, id)
}

// Viewing loads the ownership of the listing a viewing is on.
func (l *Loaders) Viewing(ctx context.Context, id uint) (*authz.Resource, error) {
	return l.viaProperty(ctx, &models.Viewing{}, id)
}

// PhotoJob loads the listing's owner and broker plus the assigned photographer.
func (l *Loaders) PhotoJob(ctx context.Context, id uint) (*authz.Resource, error) {
	var job models.PhotoJob
	if err := l.db.WithContext(ctx).First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &authz.Resource{}, nil
		}
		return nil, err
	}
	res, err := propertyResource(l.db.WithContext(ctx).Unscoped(), job.PropertyID)
	if err != nil {
		return nil, err
	}
	res.Found = true
	if job.PhotographerID != nil {
		res.PhotographerIDs = []uint{*job.PhotographerID}
	}
	return res, nil
}

func (l *Loaders) viaProperty(ctx context.Context, model interface{}, id uint) (*authz.Resource, error) {
	var propertyID uint
	err := l.db.WithContext(ctx).Model(model).Where("id = ?", id).Select("property_id").Scan(&propertyID).Error
	if err != nil {
		return nil, err
	}
	if propertyID == 0 {
		return &authz.Resource{}, nil
	}
	return propertyResource(l.db.WithContext(ctx), propertyID)
}
