package services

import (
	"context"
	"errors"
	"juba-homez/internal/authz"
	"juba-homez/internal/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

const dailyWindow = 30

var eventTypes = []string{
	models.EventView, models.EventShare, models.EventFavorite,
	models.EventContactClick, models.EventInquiryClick,
}

// EventInput is one tracked interaction with a listing.
type EventInput struct {
	PropertyID uint
	Type       string
	SessionID  string
}

// ListingStats summarises engagement with one listing.
type ListingStats struct {
	PropertyID      uint             `json:"property_id"`
	Title           string           `json:"title"`
	ApprovalStatus  string           `json:"approval_status"`
	Events          map[string]int64 `json:"events"`
	Inquiries       int64            `json:"inquiries"`
	ViewingRequests int64            `json:"viewing_requests"`
	Viewings        int64            `json:"viewings"`
}

// DailyCount is the number of views on one day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// PropertyReport is the detailed analytics of one listing.
type PropertyReport struct {
	ListingStats
	DailyViews []DailyCount `json:"daily_views"`
}

type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

// Track records an event on a live listing.
func (s *AnalyticsService) Track(ctx context.Context, viewer *authz.Identity, in EventInput) (*models.AnalyticsEvent, error) {
	if !oneOf(in.Type, eventTypes) {
		return nil, invalidInput("type must be one of %s", strings.Join(eventTypes, ", "))
	}
	if _, err := findPublicProperty(s.db.WithContext(ctx), in.PropertyID); err != nil {
		return nil, err
	}

	event := &models.AnalyticsEvent{
		PropertyID: in.PropertyID,
		Type:       in.Type,
		SessionID:  strings.TrimSpace(in.SessionID),
	}
	if viewer != nil {
		event.UserID = actor(viewer.UserID)
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// MyProperties returns stats for every listing the viewer manages.
func (s *AnalyticsService) MyProperties(ctx context.Context, viewer *authz.Identity) ([]ListingStats, error) {
	query := s.db.WithContext(ctx).Model(&models.Property{})
	if !viewer.IsAdmin() {
		query = query.Where("owner_id = ? OR broker_id = ?", viewer.UserID, viewer.UserID)
	}
	var properties []models.Property
	if err := query.Order("id").Find(&properties).Error; err != nil {
		return nil, err
	}

	stats := make([]ListingStats, 0, len(properties))
	for i := range properties {
		st, err := s.listingStats(ctx, &properties[i])
		if err != nil {
			return nil, err
		}
		stats = append(stats, *st)
	}
	return stats, nil
}

// Property returns the detailed report of one listing. Ownership is checked by the caller.
func (s *AnalyticsService) Property(ctx context.Context, id uint) (*PropertyReport, error) {
	var property models.Property
	if err := s.db.WithContext(ctx).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Property")
		}
		return nil, err
	}

	st, err := s.listingStats(ctx, &property)
	if err != nil {
		return nil, err
	}
	daily, err := s.dailyViews(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PropertyReport{ListingStats: *st, DailyViews: daily}, nil
}

func (s *AnalyticsService) listingStats(ctx context.Context, p *models.Property) (*ListingStats, error) {
	db := s.db.WithContext(ctx)
	st := &ListingStats{
		PropertyID:     p.ID,
		Title:          p.Title,
		ApprovalStatus: p.ApprovalStatus,
		Events:         make(map[string]int64, len(eventTypes)),
	}
	for _, t := range eventTypes {
		st.Events[t] = 0
	}

	var rows []struct {
		Type  string
		Count int64
	}
	if err := db.Model(&models.AnalyticsEvent{}).
		Select("type, COUNT(*) AS count").
		Where("property_id = ?", p.ID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		st.Events[r.Type] = r.Count
	}

	if err := db.Model(&models.Inquiry{}).Where("property_id = ?", p.ID).Count(&st.Inquiries).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ViewingRequest{}).Where("property_id = ?", p.ID).Count(&st.ViewingRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Viewing{}).Where("property_id = ?", p.ID).Count(&st.Viewings).Error; err != nil {
		return nil, err
	}
	return st, nil
}

// dailyViews buckets view events of the last 30 days by UTC day, oldest first, with zero days included.
func (s *AnalyticsService) dailyViews(ctx context.Context, propertyID uint) ([]DailyCount, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(dailyWindow - 1))

	var stamps []time.Time
	if err := s.db.WithContext(ctx).Model(&models.AnalyticsEvent{}).
		Where("property_id = ? AND type = ? AND created_at >= ?", propertyID, models.EventView, since).
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, dailyWindow)
	for _, t := range stamps {
		counts[t.UTC().Format("2006-01-02")]++
	}

	days := make([]DailyCount, 0, dailyWindow)
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		days = append(days, DailyCount{Date: key, Count: counts[key]})
	}
	return days, nil
}
