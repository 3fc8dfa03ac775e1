package services

import (
	"context"
	"errors"
	"juba-homez/internal/models"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ProfileUpdate holds the self-editable profile fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Bio       *string
	AvatarURL *string
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Status string
	Role   string
	Query  string
}

type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{db: db, audit: audit}
}

// GetUser returns a user by id
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateMe applies a profile update for the caller and returns the fresh row.
func (s *UserService) UpdateMe(ctx context.Context, id uint, upd ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Phone != nil {
		updates["phone"] = strings.TrimSpace(*upd.Phone)
	}
	if upd.Bio != nil {
		updates["bio"] = strings.TrimSpace(*upd.Bio)
	}
	if upd.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*upd.AvatarURL)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return notFound("User")
			}
		}
		fields := make([]string, 0, len(updates))
		for k := range updates {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		return s.audit.Record(ctx, tx, AuditEntry{
			ActorID:    actor(id),
			Action:     ActionProfileUpdated,
			EntityType: models.EntityUser,
			EntityID:   id,
			Meta:       models.JSONMap{"fields": fields},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// PublicProfile returns the visitor-facing profile of an active user.
func (s *UserService) PublicProfile(ctx context.Context, id uint) (*models.PublicProfile, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ? AND status = ?", id, models.UserActive).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User")
		}
		return nil, err
	}
	return &models.PublicProfile{
		ID:        user.ID,
		Role:      user.Role,
		Name:      user.Name,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
	}, nil
}

// ListUsers returns accounts for moderation, newest first.
func (s *UserService) ListUsers(ctx context.Context, f UserFilter, p Page) ([]models.User, PageMeta, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	users := []models.User{}
	meta, err := paginate(query.Order("created_at DESC, id DESC"), p, &users)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return users, meta, nil
}
