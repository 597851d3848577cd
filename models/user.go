package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// DefaultPhoto is assigned to accounts that never uploaded one.
const DefaultPhoto = "default.png"

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email       string          `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password    string          `json:"-" gorm:"not null"`
	Name        string          `json:"name" gorm:"not null"`
	Role        UserRole        `json:"userRole" gorm:"size:20;not null;default:'ADMIN'"`
	PhoneNumber string          `json:"phoneNumber"`
	DateOfBirth *time.Time      `json:"dateOfBirth"`
	Photo       string          `json:"photo" gorm:"default:'default.png'"`
	Address     *UserAddress    `json:"address,omitempty" gorm:"foreignKey:UserID"`
	Permissions *UserPermission `json:"permissions,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// Can reports whether the user has permission p. Users without a
// permission record have none.
func (u *User) Can(p Permission) bool {
	return u.Permissions.Has(p)
}

type UserAddress struct {
	ID      string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID  string  `json:"userId" gorm:"type:varchar(36);uniqueIndex;not null"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	ZipCode *string `json:"zipCode"`
}

func (a *UserAddress) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
