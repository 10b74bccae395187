package models

import "github.com/google/uuid"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Review represents a customer review for a shop
type Review struct {
	BaseModel
	ShopID      uuid.UUID    `gorm:"type:uuid;not null;index;constraint:OnDelete:CASCADE" json:"shop_id"`
	UserID      *uuid.UUID   `gorm:"type:uuid;index;constraint:OnDelete:SET NULL" json:"user_id,omitempty"`
	AuthorName  string       `gorm:"not null" json:"author_name" validate:"required"`
	AuthorEmail string       `json:"author_email" validate:"omitempty,email"`
	Rating      int          `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating" validate:"required,min=1,max=5"`
	Comment     string       `gorm:"type:text" json:"comment"`
	Status      ReviewStatus `gorm:"not null;default:'pending'" json:"status"`

	// Relationship
	Shop *Shop `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
}

// CreateReviewRequest represents the public payload to submit a review
type CreateReviewRequest struct {
	AuthorName  string `json:"author_name" validate:"required"`
	AuthorEmail string `json:"author_email" validate:"omitempty,email"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"max=4000"`
}

// ModerateReviewRequest represents the admin payload to approve or reject a review
type ModerateReviewRequest struct {
	Status ReviewStatus `json:"status" validate:"required,oneof=approved rejected"`
}
