package handlers

import (
	"net/http"

	"agency-cms/helper"
	"agency-cms/mailer"
	"agency-cms/middleware"
	"agency-cms/models"
	"agency-cms/services"
	"agency-cms/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NewsletterHandler struct {
	newsletterService services.NewsletterService
	renderer          *mailer.Renderer
	images            ImageStore
	log               *zap.Logger
	Helper            *helper.HTTPHelper
}

func NewNewsletterHandler(
	newsletterService services.NewsletterService,
	renderer *mailer.Renderer,
	images ImageStore,
	log *zap.Logger,
	h *helper.HTTPHelper,
) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterService: newsletterService,
		renderer:          renderer,
		images:            images,
		log:               log.Named("newsletter_handler"),
		Helper:            h,
	}
}

func (h *NewsletterHandler) Join(c *gin.Context) {
	var req models.JoinNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	accepted, err := h.newsletterService.Join(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Please check your email to confirm the subscription", accepted)
}

func (h *NewsletterHandler) Activate(c *gin.Context) {
	var query models.MemberQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	member, err := h.newsletterService.Activate(c.Request.Context(), query.MemberID)
	if err != nil {
		c.Error(err)
		return
	}

	c.Redirect(http.StatusFound, h.renderer.ThankYouURL(member.ID))
}

func (h *NewsletterHandler) Thanks(c *gin.Context) {
	var query models.MemberQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	member, err := h.newsletterService.Thanks(c.Request.Context(), query.MemberID)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Thank you for subscribing", member)
}

func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var query models.MemberQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	if err := h.newsletterService.Unsubscribe(c.Request.Context(), query.MemberID); err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Unsubscribed from newsletter", nil)
}

func (h *NewsletterHandler) GetNewsletters(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var filter models.NewsletterFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	newsletters, err := h.newsletterService.List(c.Request.Context(), user, filter)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Get newsletters success", newsletters)
}

func (h *NewsletterHandler) GetNewsletter(c *gin.Context) {
	newsletter, err := h.newsletterService.Detail(c.Request.Context(), c.Param("newsletterId"))
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Get newsletter success", newsletter)
}

func (h *NewsletterHandler) CreateNewsletter(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.CreateNewsletterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	fh, err := optionalPhoto(c)
	if err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}
	if fh == nil {
		c.Error(models.ErrFileRequired)
		return
	}

	photo, err := h.images.SaveImage(storage.FolderNewsletter, fh)
	if err != nil {
		c.Error(err)
		return
	}

	newsletter, err := h.newsletterService.Create(c.Request.Context(), user, req, photo)
	if err != nil {
		h.discard(photo)
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Create newsletter success", newsletter)
}

func (h *NewsletterHandler) UpdateNewsletter(c *gin.Context) {
	var req models.UpdateNewsletterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	fh, err := optionalPhoto(c)
	if err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	var photo string
	if fh != nil {
		if photo, err = h.images.SaveImage(storage.FolderNewsletter, fh); err != nil {
			c.Error(err)
			return
		}
	}

	newsletter, err := h.newsletterService.Update(c.Request.Context(), c.Param("newsletterId"), req, photo)
	if err != nil {
		h.discard(photo)
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Update newsletter success", newsletter)
}

func (h *NewsletterHandler) DeleteNewsletter(c *gin.Context) {
	if err := h.newsletterService.Delete(c.Request.Context(), c.Param("newsletterId")); err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Delete newsletter success", nil)
}

// discard removes a photo stored for a request that then failed.
func (h *NewsletterHandler) discard(photo string) {
	if photo == "" {
		return
	}
	if err := h.images.Delete(storage.FolderNewsletter, photo); err != nil {
		h.log.Warn("discard uploaded photo", zap.String("photo", photo), zap.Error(err))
	}
}
