package models

import (
	"time"

	"gorm.io/gorm"
)

type ContactStatus string

const (
	ContactNew     ContactStatus = "NEW"
	ContactHandled ContactStatus = "HANDLED"
)

// Contact is an inquiry sent from the public site.
type Contact struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string        `json:"name" gorm:"not null"`
	Email     string        `json:"email" gorm:"not null"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message" gorm:"type:text;not null"`
	Status    ContactStatus `json:"status" gorm:"size:20;not null;default:'NEW'"`
	HandlerID *string       `json:"handlerId" gorm:"type:varchar(36);index"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

// GuestVisit records one visitor on one UTC day.
type GuestVisit struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VisitorID string    `json:"visitorId" gorm:"type:varchar(36);not null;uniqueIndex:idx_visitor_day"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	VisitDate time.Time `json:"visitDate" gorm:"not null;uniqueIndex:idx_visitor_day"`
	CreatedAt time.Time `json:"createdAt"`
}

func (g *GuestVisit) BeforeCreate(tx *gorm.DB) error {
	newID(&g.ID)
	return nil
}

// VisitDay truncates t to midnight UTC.
func VisitDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
