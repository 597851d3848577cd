package models

import (
	"time"

	"gorm.io/gorm"
)

type MemberStatus string

const (
	MemberPending    MemberStatus = "PENDING"
	MemberSubscribed MemberStatus = "SUBSCRIBE"
)

// NewsletterMember is a subscriber. Unsubscribing deletes the row.
type NewsletterMember struct {
	ID        string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Status    MemberStatus `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (m *NewsletterMember) BeforeCreate(tx *gorm.DB) error {
	newID(&m.ID)
	if m.Status == "" {
		m.Status = MemberPending
	}
	return nil
}

type NewsletterStatus string

const (
	NewsletterScheduled NewsletterStatus = "SCHEDULED"
	NewsletterPublished NewsletterStatus = "PUBLISHED"
	NewsletterArchived  NewsletterStatus = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s NewsletterStatus) Valid() bool {
	switch s {
	case NewsletterScheduled, NewsletterPublished, NewsletterArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether an explicit update may move a newsletter
// from s to next. Publishing a scheduled newsletter is left to the
// dispatcher and archived is terminal.
func (s NewsletterStatus) CanTransitionTo(next NewsletterStatus) bool {
	if s == next {
		return true
	}
	return next == NewsletterArchived && s != NewsletterArchived
}

type NewsletterType string

const (
	NewsletterTypeNews         NewsletterType = "NEWS"
	NewsletterTypePromotion    NewsletterType = "PROMOTION"
	NewsletterTypeEvent        NewsletterType = "EVENT"
	NewsletterTypeAnnouncement NewsletterType = "ANNOUNCEMENT"
)

// Valid reports whether t is a known type.
func (t NewsletterType) Valid() bool {
	switch t {
	case NewsletterTypeNews, NewsletterTypePromotion, NewsletterTypeEvent, NewsletterTypeAnnouncement:
		return true
	}
	return false
}

type Newsletter struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string           `json:"title" gorm:"not null"`
	Content     string           `json:"content" gorm:"type:text;not null"`
	Photo       string           `json:"photo"`
	Type        NewsletterType   `json:"type" gorm:"size:20;not null"`
	Status      NewsletterStatus `json:"status" gorm:"size:20;not null;index"`
	AuthorID    string           `json:"authorId" gorm:"type:varchar(36);not null;index"`
	Author      *User            `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	PublishedAt *time.Time       `json:"publishedAt"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (n *Newsletter) BeforeCreate(tx *gorm.DB) error {
	newID(&n.ID)
	return nil
}
