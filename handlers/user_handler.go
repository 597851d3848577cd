package handlers

import (
	"agency-cms/helper"
	"agency-cms/middleware"
	"agency-cms/models"
	"agency-cms/services"
	"agency-cms/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the signed-in admin's own profile.
type UserHandler struct {
	userService services.UserService
	images      ImageStore
	log         *zap.Logger
	Helper      *helper.HTTPHelper
}

func NewUserHandler(userService services.UserService, images ImageStore, log *zap.Logger, h *helper.HTTPHelper) *UserHandler {
	return &UserHandler{userService: userService, images: images, log: log.Named("user_handler"), Helper: h}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	h.Helper.SendSuccess(c, "Profile loaded", user)
}

func (h *UserHandler) UpdatePersonalInfo(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.UpdatePersonalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	updated, err := h.userService.UpdatePersonalInfo(c.Request.Context(), user, req)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Update personal info success", updated)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), user, req); err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Update password success", nil)
}

func (h *UserHandler) UpdatePhoto(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	fh, err := optionalPhoto(c)
	if err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}
	if fh == nil {
		c.Error(models.ErrFileRequired)
		return
	}

	photo, err := h.images.SaveImage(storage.FolderUser, fh)
	if err != nil {
		c.Error(err)
		return
	}

	updated, err := h.userService.UpdatePhoto(c.Request.Context(), user, photo)
	if err != nil {
		if derr := h.images.Delete(storage.FolderUser, photo); derr != nil {
			h.log.Warn("discard uploaded photo", zap.String("photo", photo), zap.Error(derr))
		}
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Update photo success", updated)
}

func (h *UserHandler) UpdateAddress(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	address, err := h.userService.UpdateAddress(c.Request.Context(), user, req)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Update address success", address)
}
