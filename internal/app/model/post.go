package model

import "time"

// Post is a car listing written by a customer.
type Post struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	ImageURLs   StringList `gorm:"column:image_urls" json:"imageUrls"` // car photos

	CustomerID uint        `gorm:"not null;index" json:"customerId"`
	Customer   *PostAuthor `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customer,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

// PostAuthor is the public projection of a customer embedded in listings.
type PostAuthor struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

func (PostAuthor) TableName() string {
	return "customers"
}
