package services

import (
	"context"
	"fmt"
	"time"

	"agency-cms/models"
	"agency-cms/repositories"
)

// ContactPageSize is the number of inquiries per list page.
const ContactPageSize = 15

type ContactService interface {
	Create(ctx context.Context, req models.ContactRequest) (*models.Contact, error)
	List(ctx context.Context, page int) (*models.ContactListResponse, error)
}

type contactService struct {
	contactRepo repositories.ContactRepository
}

func NewContactService(contactRepo repositories.ContactRepository) ContactService {
	return &contactService{contactRepo: contactRepo}
}

func (s *contactService) Create(ctx context.Context, req models.ContactRequest) (*models.Contact, error) {
	contact := &models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Status:  models.ContactNew,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) List(ctx context.Context, page int) (*models.ContactListResponse, error) {
	if page < 1 {
		page = 1
	}
	contacts, total, err := s.contactRepo.List(ctx, page, ContactPageSize)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return &models.ContactListResponse{
		Contacts:   contacts,
		Pagination: models.NewPagination(page, ContactPageSize, total),
	}, nil
}

// VisitService counts unique daily visitors of the public site.
type VisitService interface {
	Record(ctx context.Context, visitorID, ip, userAgent string) error
}

type visitService struct {
	visitRepo repositories.GuestVisitRepository
	now       func() time.Time
}

func NewVisitService(visitRepo repositories.GuestVisitRepository) VisitService {
	return &visitService{visitRepo: visitRepo, now: time.Now}
}

func (s *visitService) Record(ctx context.Context, visitorID, ip, userAgent string) error {
	return s.visitRepo.Record(ctx, &models.GuestVisit{
		VisitorID: visitorID,
		IP:        ip,
		UserAgent: userAgent,
		VisitDate: models.VisitDay(s.now()),
	})
}
