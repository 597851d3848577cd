package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Resource is a permission category.
type Resource string

const (
	ResourceNewsletter Resource = "newsletter"
	ResourceClient     Resource = "client"
	ResourcePortfolio  Resource = "portfolio"
	ResourceContact    Resource = "contact"
	ResourceAdmin      Resource = "admin"
)

// Action is what a permission allows on a Resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	resources = []Resource{ResourceNewsletter, ResourceClient, ResourcePortfolio, ResourceContact, ResourceAdmin}
	actions   = []Action{ActionRead, ActionWrite, ActionUpdate, ActionDelete}
)

// Permission is a single capability flag, e.g. write on newsletter.
type Permission struct {
	Resource Resource
	Action   Action
}

var (
	PermReadNewsletter   = Permission{ResourceNewsletter, ActionRead}
	PermWriteNewsletter  = Permission{ResourceNewsletter, ActionWrite}
	PermUpdateNewsletter = Permission{ResourceNewsletter, ActionUpdate}
	PermDeleteNewsletter = Permission{ResourceNewsletter, ActionDelete}

	PermReadClient   = Permission{ResourceClient, ActionRead}
	PermWriteClient  = Permission{ResourceClient, ActionWrite}
	PermUpdateClient = Permission{ResourceClient, ActionUpdate}
	PermDeleteClient = Permission{ResourceClient, ActionDelete}

	PermReadPortfolio   = Permission{ResourcePortfolio, ActionRead}
	PermWritePortfolio  = Permission{ResourcePortfolio, ActionWrite}
	PermUpdatePortfolio = Permission{ResourcePortfolio, ActionUpdate}
	PermDeletePortfolio = Permission{ResourcePortfolio, ActionDelete}

	PermReadContact   = Permission{ResourceContact, ActionRead}
	PermWriteContact  = Permission{ResourceContact, ActionWrite}
	PermUpdateContact = Permission{ResourceContact, ActionUpdate}
	PermDeleteContact = Permission{ResourceContact, ActionDelete}

	PermReadAdmin   = Permission{ResourceAdmin, ActionRead}
	PermWriteAdmin  = Permission{ResourceAdmin, ActionWrite}
	PermUpdateAdmin = Permission{ResourceAdmin, ActionUpdate}
	PermDeleteAdmin = Permission{ResourceAdmin, ActionDelete}
)

// AllPermissions returns the 20 permission flags in resource, action order.
func AllPermissions() []Permission {
	all := make([]Permission, 0, len(resources)*len(actions))
	for _, r := range resources {
		for _, a := range actions {
			all = append(all, Permission{r, a})
		}
	}
	return all
}

// String returns the flag name, e.g. "canWriteNewsletter".
func (p Permission) String() string {
	return "can" + capitalize(string(p.Action)) + capitalize(string(p.Resource))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// UserPermission is the flag set owned by exactly one user.
type UserPermission struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string `json:"userId" gorm:"type:varchar(36);uniqueIndex;not null"`

	CanReadNewsletter   bool `json:"canReadNewsletter" gorm:"not null;default:false"`
	CanWriteNewsletter  bool `json:"canWriteNewsletter" gorm:"not null;default:false"`
	CanUpdateNewsletter bool `json:"canUpdateNewsletter" gorm:"not null;default:false"`
	CanDeleteNewsletter bool `json:"canDeleteNewsletter" gorm:"not null;default:false"`

	CanReadClient   bool `json:"canReadClient" gorm:"not null;default:false"`
	CanWriteClient  bool `json:"canWriteClient" gorm:"not null;default:false"`
	CanUpdateClient bool `json:"canUpdateClient" gorm:"not null;default:false"`
	CanDeleteClient bool `json:"canDeleteClient" gorm:"not null;default:false"`

	CanReadPortfolio   bool `json:"canReadPortfolio" gorm:"not null;default:false"`
	CanWritePortfolio  bool `json:"canWritePortfolio" gorm:"not null;default:false"`
	CanUpdatePortfolio bool `json:"canUpdatePortfolio" gorm:"not null;default:false"`
	CanDeletePortfolio bool `json:"canDeletePortfolio" gorm:"not null;default:false"`

	CanReadContact   bool `json:"canReadContact" gorm:"not null;default:false"`
	CanWriteContact  bool `json:"canWriteContact" gorm:"not null;default:false"`
	CanUpdateContact bool `json:"canUpdateContact" gorm:"not null;default:false"`
	CanDeleteContact bool `json:"canDeleteContact" gorm:"not null;default:false"`

	CanReadAdmin   bool `json:"canReadAdmin" gorm:"not null;default:false"`
	CanWriteAdmin  bool `json:"canWriteAdmin" gorm:"not null;default:false"`
	CanUpdateAdmin bool `json:"canUpdateAdmin" gorm:"not null;default:false"`
	CanDeleteAdmin bool `json:"canDeleteAdmin" gorm:"not null;default:false"`
}

func (p *UserPermission) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

// flag returns the field backing perm, or nil for an unknown permission.
func (p *UserPermission) flag(perm Permission) *bool {
	switch perm {
	case PermReadNewsletter:
		return &p.CanReadNewsletter
	case PermWriteNewsletter:
		return &p.CanWriteNewsletter
	case PermUpdateNewsletter:
		return &p.CanUpdateNewsletter
	case PermDeleteNewsletter:
		return &p.CanDeleteNewsletter
	case PermReadClient:
		return &p.CanReadClient
	case PermWriteClient:
		return &p.CanWriteClient
	case PermUpdateClient:
		return &p.CanUpdateClient
	case PermDeleteClient:
		return &p.CanDeleteClient
	case PermReadPortfolio:
		return &p.CanReadPortfolio
	case PermWritePortfolio:
		return &p.CanWritePortfolio
	case PermUpdatePortfolio:
		return &p.CanUpdatePortfolio
	case PermDeletePortfolio:
		return &p.CanDeletePortfolio
	case PermReadContact:
		return &p.CanReadContact
	case PermWriteContact:
		return &p.CanWriteContact
	case PermUpdateContact:
		return &p.CanUpdateContact
	case PermDeleteContact:
		return &p.CanDeleteContact
	case PermReadAdmin:
		return &p.CanReadAdmin
	case PermWriteAdmin:
		return &p.CanWriteAdmin
	case PermUpdateAdmin:
		return &p.CanUpdateAdmin
	case PermDeleteAdmin:
		return &p.CanDeleteAdmin
	}
	return nil
}

// Has reports whether perm is granted. A nil set grants nothing.
func (p *UserPermission) Has(perm Permission) bool {
	if p == nil {
		return false
	}
	f := p.flag(perm)
	return f != nil && *f
}

// Set grants or revokes perm.
func (p *UserPermission) Set(perm Permission, granted bool) error {
	f := p.flag(perm)
	if f == nil {
		return fmt.Errorf("unknown permission %s", perm)
	}
	*f = granted
	return nil
}

// GrantAll sets every flag to true.
func (p *UserPermission) GrantAll() {
	for _, perm := range AllPermissions() {
		*p.flag(perm) = true
	}
}
