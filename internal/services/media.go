package services

import (
	"context"
	"errors"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"log"
	"mime/multipart"

	"gorm.io/gorm"
)

type MediaService struct {
	db       *gorm.DB
	storage  *LocalStorage
	audit    *AuditService
	maxFiles int
}

func NewMediaService(db *gorm.DB, storage *LocalStorage, audit *AuditService, maxFiles int) *MediaService {
	return &MediaService{db: db, storage: storage, audit: audit, maxFiles: maxFiles}
}

// Upload stores files for a listing as pending media. Ownership is checked by the caller.
// Either every file is recorded or none is.
func (s *MediaService) Upload(ctx context.Context, by *authz.Identity, propertyID uint, files []*multipart.FileHeader) ([]models.Media, error) {
	if len(files) == 0 {
		return nil, invalidInput("at least one file is required")
	}
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		return nil, invalidInput("at most %d files per upload", s.maxFiles)
	}

	var property models.Property
	if err := s.db.WithContext(ctx).First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Property")
		}
		return nil, err
	}

	stored := make([]*StoredFile, 0, len(files))
	cleanup := func() {
		for _, f := range stored {
			if err := s.storage.Remove(f.FileName); err != nil {
				log.Printf("remove orphaned upload %s: %v", f.FileName, err)
			}
		}
	}

	for _, fh := range files {
		f, err := s.storage.Save(fh)
		if err != nil {
			cleanup()
			return nil, err
		}
		stored = append(stored, f)
	}

	media := make([]models.Media, 0, len(stored))
	for _, f := range stored {
		media = append(media, models.Media{
			PropertyID:     property.ID,
			UploadedBy:     by.UserID,
			Kind:           f.Kind,
			FileName:       f.FileName,
			OriginalName:   f.OriginalName,
			URL:            f.URL,
			MimeType:       f.MimeType,
			SizeBytes:      f.Size,
			ApprovalStatus: models.ApprovalPending,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&media).Error; err != nil {
			return err
		}
		for _, m := range media {
			if err := s.audit.Record(ctx, tx, AuditEntry{
				ActorID:    actor(by.UserID),
				Action:     ActionMediaUploaded,
				EntityType: models.EntityMedia,
				EntityID:   m.ID,
				Meta:       models.JSONMap{"property_id": property.ID, "kind": m.Kind},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cleanup()
		return nil, err
	}
	return media, nil
}

// ListPublic returns the approved media of a live listing.
func (s *MediaService) ListPublic(ctx context.Context, propertyID uint) ([]models.Media, error) {
	var property models.Property
	err := s.db.WithContext(ctx).
		Where("id = ? AND approval_status = ?", propertyID, models.ApprovalApproved).
		First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Property")
		}
		return nil, err
	}

	media := []models.Media{}
	err = s.db.WithContext(ctx).
		Where("property_id = ? AND approval_status = ?", propertyID, models.ApprovalApproved).
		Order("id").
		Find(&media).Error
	return media, err
}

// ListForProperty returns every non-deleted media item of a listing.
func (s *MediaService) ListForProperty(ctx context.Context, propertyID uint) ([]models.Media, error) {
	media := []models.Media{}
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("id").Find(&media).Error
	return media, err
}

// ListForModeration returns media in any approval state for admins.
func (s *MediaService) ListForModeration(ctx context.Context, approvalStatus string, p Page) ([]models.Media, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.Media{})
	if approvalStatus != "" {
		query = query.Where("approval_status = ?", approvalStatus)
	}
	media := []models.Media{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &media)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return media, meta, nil
}

// Delete soft-deletes a media item. The stored file is kept for the audit trail.
func (s *MediaService) Delete(ctx context.Context, by *authz.Identity, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var media models.Media
		if err := tx.First(&media, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Media")
			}
			return err
		}
		if err := tx.Delete(&media).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(by.UserID),
			Action:     ActionMediaDeleted,
			EntityType: models.EntityMedia,
			EntityID:   media.ID,
			Meta:       models.JSONMap{"property_id": media.PropertyID},
		})
	})
}
