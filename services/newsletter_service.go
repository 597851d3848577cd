package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"agency-cms/mailer"
	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileStore removes uploaded files.
type FileStore interface {
	Delete(folder, name string) error
}

type NewsletterService interface {
	Join(ctx context.Context, req models.JoinNewsletterRequest) ([]string, error)
	Activate(ctx context.Context, memberID string) (*models.NewsletterMember, error)
	Unsubscribe(ctx context.Context, memberID string) error
	Thanks(ctx context.Context, memberID string) (*models.NewsletterMember, error)

	List(ctx context.Context, author *models.User, filter models.NewsletterFilter) ([]models.Newsletter, error)
	Detail(ctx context.Context, id string) (*models.Newsletter, error)
	Create(ctx context.Context, author *models.User, req models.CreateNewsletterRequest, photo string) (*models.Newsletter, error)
	Update(ctx context.Context, id string, req models.UpdateNewsletterRequest, photo string) (*models.Newsletter, error)
	Delete(ctx context.Context, id string) error
}

// NewsletterOptions configures outgoing mail.
type NewsletterOptions struct {
	From        string
	Brand       string
	SendTimeout time.Duration
}

type newsletterService struct {
	newsletterRepo repositories.NewsletterRepository
	memberRepo     repositories.NewsletterMemberRepository
	delivery       NewsletterDelivery
	mailer         mailer.Mailer
	renderer       *mailer.Renderer
	files          FileStore
	opts           NewsletterOptions
	log            *zap.Logger
	now            func() time.Time
}

func NewNewsletterService(
	newsletterRepo repositories.NewsletterRepository,
	memberRepo repositories.NewsletterMemberRepository,
	delivery NewsletterDelivery,
	m mailer.Mailer,
	renderer *mailer.Renderer,
	files FileStore,
	opts NewsletterOptions,
	log *zap.Logger,
) NewsletterService {
	return &newsletterService{
		newsletterRepo: newsletterRepo,
		memberRepo:     memberRepo,
		delivery:       delivery,
		mailer:         m,
		renderer:       renderer,
		files:          files,
		opts:           opts,
		log:            log.Named("newsletter"),
		now:            time.Now,
	}
}

// Join registers a pending member and mails the confirmation link. Any existing
// row for the email is a duplicate, confirmed or not.
func (s *newsletterService) Join(ctx context.Context, req models.JoinNewsletterRequest) ([]string, error) {
	email := strings.TrimSpace(req.Email)

	_, err := s.memberRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, models.ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find member: %w", err)
	}

	member := &models.NewsletterMember{Email: email, Status: models.MemberPending}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create member: %w", err)
	}

	html, err := s.renderer.JoinConfirmation(member.ID)
	if err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.SendTimeout)
	defer cancel()
	accepted, err := s.mailer.Send(sendCtx, mailer.Message{
		From:    s.opts.From,
		To:      []string{member.Email},
		Subject: fmt.Sprintf("Confirm Your Subscription to %s", s.opts.Brand),
		HTML:    html,
	})
	if err != nil {
		return nil, fmt.Errorf("send confirmation: %w", err)
	}
	return accepted, nil
}

// Activate confirms a member. Confirming twice is not an error.
func (s *newsletterService) Activate(ctx context.Context, memberID string) (*models.NewsletterMember, error) {
	member, err := s.findMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.UpdateStatus(ctx, member.ID, models.MemberSubscribed); err != nil {
		return nil, fmt.Errorf("activate member: %w", err)
	}
	member.Status = models.MemberSubscribed
	return member, nil
}

func (s *newsletterService) Unsubscribe(ctx context.Context, memberID string) error {
	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrMemberNotFound
		}
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

func (s *newsletterService) Thanks(ctx context.Context, memberID string) (*models.NewsletterMember, error) {
	return s.findMember(ctx, memberID)
}

func (s *newsletterService) findMember(ctx context.Context, memberID string) (*models.NewsletterMember, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return member, nil
}

func (s *newsletterService) List(ctx context.Context, author *models.User, filter models.NewsletterFilter) ([]models.Newsletter, error) {
	return s.newsletterRepo.List(ctx, author.ID, filter)
}

func (s *newsletterService) Detail(ctx context.Context, id string) (*models.Newsletter, error) {
	newsletter, err := s.newsletterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNewsletterNotFound
		}
		return nil, fmt.Errorf("find newsletter: %w", err)
	}
	return newsletter, nil
}

// Create stores a newsletter. Scheduled ones wait for the dispatcher; anything
// else is published and sent to every subscriber right away.
func (s *newsletterService) Create(ctx context.Context, author *models.User, req models.CreateNewsletterRequest, photo string) (*models.Newsletter, error) {
	if !req.Type.Valid() {
		return nil, models.ErrInvalidNewsletterType
	}

	newsletter := &models.Newsletter{
		Title:    req.Title,
		Content:  req.Content,
		Photo:    photo,
		Type:     req.Type,
		Status:   req.InitialStatus(),
		AuthorID: author.ID,
	}
	if newsletter.Status == models.NewsletterPublished {
		now := s.now()
		newsletter.PublishedAt = &now
	}

	if err := s.newsletterRepo.Create(ctx, newsletter); err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}

	if newsletter.Status == models.NewsletterPublished {
		s.sendNow(ctx, newsletter)
	}
	return newsletter, nil
}

// sendNow runs the delivery pass for a freshly published newsletter. The
// newsletter is already stored, so failures are only logged.
func (s *newsletterService) sendNow(ctx context.Context, newsletter *models.Newsletter) {
	log := s.log.With(zap.String("newsletter_id", newsletter.ID))

	layout, err := s.renderer.Layout(mailer.LayoutNewsletter)
	if err != nil {
		log.Error("load newsletter layout", zap.Error(err))
		return
	}
	members, err := s.memberRepo.ListByStatus(ctx, models.MemberSubscribed)
	if err != nil {
		log.Error("list subscribers", zap.Error(err))
		return
	}
	if _, err := s.delivery.Deliver(ctx, layout, newsletter, members); err != nil {
		log.Error("deliver newsletter", zap.Error(err))
	}
}

// Update writes only the requested fields. A status change is applied only
// if the row still holds the status that was read, so a concurrent publish by
// the dispatcher is never reverted.
func (s *newsletterService) Update(ctx context.Context, id string, req models.UpdateNewsletterRequest, photo string) (*models.Newsletter, error) {
	newsletter, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	var from models.NewsletterStatus
	if req.Status != nil {
		if !req.Status.Valid() || !newsletter.Status.CanTransitionTo(*req.Status) {
			return nil, models.ErrInvalidStatusTransition
		}
		if *req.Status != newsletter.Status {
			changes["status"] = *req.Status
			from = newsletter.Status
		}
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, models.ErrInvalidNewsletterType
		}
		changes["type"] = *req.Type
	}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Content != nil {
		changes["content"] = *req.Content
	}
	if photo != "" {
		changes["photo"] = photo
	}

	if len(changes) > 0 {
		ok, err := s.newsletterRepo.Update(ctx, id, from, changes)
		if err != nil {
			return nil, fmt.Errorf("update newsletter: %w", err)
		}
		if !ok {
			if from != "" {
				return nil, models.ErrInvalidStatusTransition
			}
			return nil, models.ErrNewsletterNotFound
		}
	}

	if photo != "" && newsletter.Photo != photo {
		s.removePhoto(newsletter.Photo)
	}
	return s.Detail(ctx, id)
}

func (s *newsletterService) Delete(ctx context.Context, id string) error {
	newsletter, err := s.Detail(ctx, id)
	if err != nil {
		return err
	}
	if err := s.newsletterRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNewsletterNotFound
		}
		return fmt.Errorf("delete newsletter: %w", err)
	}
	s.removePhoto(newsletter.Photo)
	return nil
}

func (s *newsletterService) removePhoto(name string) {
	if name == "" {
		return
	}
	if err := s.files.Delete(storage.FolderNewsletter, name); err != nil {
		level := zap.ErrorLevel
		if errors.Is(err, fs.ErrNotExist) {
			level = zap.WarnLevel
		}
		s.log.Log(level, "remove newsletter photo", zap.String("photo", name), zap.Error(err))
	}
}
