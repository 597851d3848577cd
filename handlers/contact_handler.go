package handlers

import (
	"agency-cms/helper"
	"agency-cms/models"
	"agency-cms/services"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService services.ContactService
	Helper         *helper.HTTPHelper
}

func NewContactHandler(contactService services.ContactService, h *helper.HTTPHelper) *ContactHandler {
	return &ContactHandler{contactService: contactService, Helper: h}
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Thank you, we will get back to you soon", contact)
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	var query models.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	res, err := h.contactService.List(c.Request.Context(), query.Page)
	if err != nil {
		c.Error(err)
		return
	}
	res.Pagination = h.Helper.GeneratePaging(c, res.Pagination)

	h.Helper.SendSuccess(c, "Get contacts success", res)
}
