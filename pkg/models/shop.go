package models

import (
	"fmt"
	"strings"
	"time"
)

// Shop represents one tire shop listing in the directory
type Shop struct {
	BaseModel
	Name        string `gorm:"not null;index" json:"name" validate:"required"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Address     string `json:"address"`
	City        string `gorm:"index" json:"city"`
	Province    string `gorm:"index" json:"province"` // two-letter code (ON, BC, ...)
	PostalCode  string `json:"postal_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`

	Latitude  *float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude *float64 `gorm:"type:decimal(11,8)" json:"longitude"`

	PhotoURL   string `json:"photo_url"`
	PhotoS3Key string `json:"-"`

	// Weekly hours. Each field holds a time range ("9:00 AM - 6:00 PM"),
	// "Closed", "Open 24 hours", "N/A", or empty when never set.
	HoursMonday    string `json:"hours_monday"`
	HoursTuesday   string `json:"hours_tuesday"`
	HoursWednesday string `json:"hours_wednesday"`
	HoursThursday  string `json:"hours_thursday"`
	HoursFriday    string `json:"hours_friday"`
	HoursSaturday  string `json:"hours_saturday"`
	HoursSunday    string `json:"hours_sunday"`

	Is24Hours        bool       `gorm:"default:false" json:"is_24_hours"`
	IsOpenNow        *bool      `json:"is_open_now"` // nil = unknown
	HoursLastUpdated *time.Time `json:"hours_last_updated"`

	RatingAvg   float64 `gorm:"default:0" json:"rating_avg"`
	RatingCount int     `gorm:"default:0" json:"rating_count"`

	IsActive      bool   `gorm:"default:true" json:"is_active"`
	EmbeddingHash string `gorm:"type:varchar(64)" json:"-"` // content hash to skip re-embedding
}

// DayHours returns the seven day fields in Monday..Sunday order
func (s *Shop) DayHours() [7]string {
	return [7]string{
		s.HoursMonday,
		s.HoursTuesday,
		s.HoursWednesday,
		s.HoursThursday,
		s.HoursFriday,
		s.HoursSaturday,
		s.HoursSunday,
	}
}

// GetSearchText builds the combined text used for semantic search embeddings
func (s *Shop) GetSearchText() string {
	parts := []string{s.Name, s.Description, s.City, s.Province}
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(p))
		}
	}
	return strings.Join(nonEmpty, " | ")
}

// GetMetadata returns the payload stored alongside the shop embedding
func (s *Shop) GetMetadata() map[string]interface{} {
	return map[string]interface{}{
		"name":     s.Name,
		"city":     s.City,
		"province": s.Province,
		"rating":   fmt.Sprintf("%.1f", s.RatingAvg),
	}
}

// CreateShopRequest represents the admin payload to create a shop
type CreateShopRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Province    string   `json:"province" validate:"omitempty,len=2"`
	PostalCode  string   `json:"postal_code"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Website     string   `json:"website" validate:"omitempty,url"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UpdateShopRequest represents the admin payload to update a shop.
// Pointer fields are applied only when present.
type UpdateShopRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	Province    *string  `json:"province" validate:"omitempty,len=2"`
	PostalCode  *string  `json:"postal_code"`
	Phone       *string  `json:"phone"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Website     *string  `json:"website" validate:"omitempty,url"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsActive    *bool    `json:"is_active"`
}
