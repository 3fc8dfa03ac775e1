package services

import (
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Page selects a window of a list.
type Page struct {
	Page  int
	Limit int
}

// PageMeta describes the window that was returned.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}

// paginate counts the query, then applies limit and offset to load dest.
func paginate(query *gorm.DB, p Page, dest interface{}) (PageMeta, error) {
	p = p.normalize()
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return PageMeta{}, err
	}

	if err := query.Limit(p.Limit).Offset(p.offset()).Find(dest).Error; err != nil {
		return PageMeta{}, err
	}

	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: int((total + int64(p.Limit) - 1) / int64(p.Limit)),
	}, nil
}
