package models

import (
	"time"

	"gorm.io/gorm"
)

type PortfolioStatus string

const (
	PortfolioDraft     PortfolioStatus = "DRAFT"
	PortfolioPublished PortfolioStatus = "PUBLISHED"
)

type Client struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"not null"`
	Logo      string    `json:"logo"`
	AuthorID  *string   `json:"authorId" gorm:"type:varchar(36);index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

type Portfolio struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string          `json:"title" gorm:"not null"`
	MainPhoto string          `json:"mainPhoto"`
	Status    PortfolioStatus `json:"status" gorm:"size:20;not null;default:'DRAFT'"`
	AuthorID  string          `json:"authorId" gorm:"type:varchar(36);not null;index"`
	ClientID  *string         `json:"clientId" gorm:"type:varchar(36);index"`
	Client    *Client         `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (p *Portfolio) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}
