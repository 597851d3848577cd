package models

import "time"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,admin_email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
}

type JoinNewsletterRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

type MemberQuery struct {
	MemberID string `form:"memberId" binding:"required"`
}

type CreateNewsletterRequest struct {
	Title       string           `form:"title" binding:"required,max=255"`
	Content     string           `form:"content" binding:"required"`
	Type        NewsletterType   `form:"type" binding:"required,oneof=NEWS PROMOTION EVENT ANNOUNCEMENT"`
	Status      NewsletterStatus `form:"status" binding:"omitempty,oneof=SCHEDULED PUBLISHED"`
	IsScheduled bool             `form:"isScheduled"`
}

// InitialStatus resolves the stored status of a new newsletter.
func (r CreateNewsletterRequest) InitialStatus() NewsletterStatus {
	if r.IsScheduled || r.Status == NewsletterScheduled {
		return NewsletterScheduled
	}
	return NewsletterPublished
}

type UpdateNewsletterRequest struct {
	Title   *string           `form:"title" binding:"omitempty,min=1,max=255"`
	Content *string           `form:"content" binding:"omitempty,min=1"`
	Type    *NewsletterType   `form:"type" binding:"omitempty,oneof=NEWS PROMOTION EVENT ANNOUNCEMENT"`
	Status  *NewsletterStatus `form:"status" binding:"omitempty,oneof=SCHEDULED PUBLISHED ARCHIVED"`
}

type NewsletterFilter struct {
	Search string           `form:"search" binding:"omitempty,max=255"`
	Status NewsletterStatus `form:"status" binding:"omitempty,oneof=SCHEDULED PUBLISHED ARCHIVED"`
	Type   NewsletterType   `form:"type" binding:"omitempty,oneof=NEWS PROMOTION EVENT ANNOUNCEMENT"`
}

type AddressRequest struct {
	City    string  `json:"city" binding:"required,max=100"`
	Country string  `json:"country" binding:"required,max=100"`
	ZipCode *string `json:"zipCode" binding:"omitempty,max=20"`
}

type RegisterAdminRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Email       string          `json:"email" binding:"required,email,admin_email"`
	Password    string          `json:"password" binding:"required,min=8,max=72"`
	DateOfBirth string          `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	PhoneNumber string          `json:"phoneNumber" binding:"omitempty,max=20"`
	UserRole    UserRole        `json:"userRole" binding:"required,oneof=ADMIN SUPER_ADMIN"`
	Address     *AddressRequest `json:"address"`
}

type AdminFilter struct {
	Page   int      `form:"page,default=1" binding:"min=1"`
	Search string   `form:"search" binding:"omitempty,max=255"`
	Role   UserRole `form:"role" binding:"omitempty,oneof=ADMIN SUPER_ADMIN"`
}

// UpdatePermissionsRequest requires every flag to be present.
type UpdatePermissionsRequest struct {
	CanReadNewsletter   *bool `json:"canReadNewsletter" binding:"required"`
	CanWriteNewsletter  *bool `json:"canWriteNewsletter" binding:"required"`
	CanUpdateNewsletter *bool `json:"canUpdateNewsletter" binding:"required"`
	CanDeleteNewsletter *bool `json:"canDeleteNewsletter" binding:"required"`

	CanReadClient   *bool `json:"canReadClient" binding:"required"`
	CanWriteClient  *bool `json:"canWriteClient" binding:"required"`
	CanUpdateClient *bool `json:"canUpdateClient" binding:"required"`
	CanDeleteClient *bool `json:"canDeleteClient" binding:"required"`

	CanReadPortfolio   *bool `json:"canReadPortfolio" binding:"required"`
	CanWritePortfolio  *bool `json:"canWritePortfolio" binding:"required"`
	CanUpdatePortfolio *bool `json:"canUpdatePortfolio" binding:"required"`
	CanDeletePortfolio *bool `json:"canDeletePortfolio" binding:"required"`

	CanReadContact   *bool `json:"canReadContact" binding:"required"`
	CanWriteContact  *bool `json:"canWriteContact" binding:"required"`
	CanUpdateContact *bool `json:"canUpdateContact" binding:"required"`
	CanDeleteContact *bool `json:"canDeleteContact" binding:"required"`

	CanReadAdmin   *bool `json:"canReadAdmin" binding:"required"`
	CanWriteAdmin  *bool `json:"canWriteAdmin" binding:"required"`
	CanUpdateAdmin *bool `json:"canUpdateAdmin" binding:"required"`
	CanDeleteAdmin *bool `json:"canDeleteAdmin" binding:"required"`
}

// Flags maps the request onto typed permissions.
func (r UpdatePermissionsRequest) Flags() map[Permission]bool {
	v := func(b *bool) bool { return b != nil && *b }
	return map[Permission]bool{
		PermReadNewsletter:   v(r.CanReadNewsletter),
		PermWriteNewsletter:  v(r.CanWriteNewsletter),
		PermUpdateNewsletter: v(r.CanUpdateNewsletter),
		PermDeleteNewsletter: v(r.CanDeleteNewsletter),
		PermReadClient:       v(r.CanReadClient),
		PermWriteClient:      v(r.CanWriteClient),
		PermUpdateClient:     v(r.CanUpdateClient),
		PermDeleteClient:     v(r.CanDeleteClient),
		PermReadPortfolio:    v(r.CanReadPortfolio),
		PermWritePortfolio:   v(r.CanWritePortfolio),
		PermUpdatePortfolio:  v(r.CanUpdatePortfolio),
		PermDeletePortfolio:  v(r.CanDeletePortfolio),
		PermReadContact:      v(r.CanReadContact),
		PermWriteContact:     v(r.CanWriteContact),
		PermUpdateContact:    v(r.CanUpdateContact),
		PermDeleteContact:    v(r.CanDeleteContact),
		PermReadAdmin:        v(r.CanReadAdmin),
		PermWriteAdmin:       v(r.CanWriteAdmin),
		PermUpdateAdmin:      v(r.CanUpdateAdmin),
		PermDeleteAdmin:      v(r.CanDeleteAdmin),
	}
}

type UpdatePersonalInfoRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
	DateOfBirth string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}

type UpdatePasswordRequest struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"omitempty,max=255"`
	Message string `json:"message" binding:"required,max=5000"`
}

type PageQuery struct {
	Page int `form:"page,default=1" binding:"min=1"`
}

type Pagination struct {
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
	TotalData int64      `json:"totalData"`
	TotalPage int        `json:"totalPage"`
	Links     *PageLinks `json:"links,omitempty"`
}

type PageLinks struct {
	Previous string `json:"previous"`
	Next     string `json:"next"`
	First    string `json:"first"`
	Last     string `json:"last"`
}

// NewPagination computes page counts for total rows split by limit.
func NewPagination(page, limit int, total int64) Pagination {
	totalPage := 0
	if limit > 0 {
		totalPage = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, TotalData: total, TotalPage: totalPage}
}

type AdminListResponse struct {
	Admins     []User     `json:"admins"`
	Pagination Pagination `json:"pagination"`
}

type ContactListResponse struct {
	Contacts   []Contact  `json:"contacts"`
	Pagination Pagination `json:"pagination"`
}
