package handlers

import (
	"agency-cms/helper"
	"agency-cms/middleware"
	"agency-cms/models"
	"agency-cms/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the super-admin account management routes.
type AdminHandler struct {
	adminService services.AdminService
	Helper       *helper.HTTPHelper
}

func NewAdminHandler(adminService services.AdminService, h *helper.HTTPHelper) *AdminHandler {
	return &AdminHandler{adminService: adminService, Helper: h}
}

func (h *AdminHandler) Register(c *gin.Context) {
	var req models.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	admin, err := h.adminService.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Register admin success", admin)
}

func (h *AdminHandler) GetAdmins(c *gin.Context) {
	self, _ := middleware.CurrentUser(c)

	var filter models.AdminFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	res, err := h.adminService.List(c.Request.Context(), self, filter)
	if err != nil {
		c.Error(err)
		return
	}
	res.Pagination = h.Helper.GeneratePaging(c, res.Pagination)

	h.Helper.SendSuccess(c, "Get admins success", res)
}

func (h *AdminHandler) GetAdmin(c *gin.Context) {
	admin, err := h.adminService.Detail(c.Request.Context(), c.Param("adminId"))
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Get admin success", admin)
}

func (h *AdminHandler) UpdatePermissions(c *gin.Context) {
	var req models.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	perms, err := h.adminService.UpdatePermissions(c.Request.Context(), c.Param("adminId"), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Update permissions success", perms)
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	self, _ := middleware.CurrentUser(c)

	if err := h.adminService.Delete(c.Request.Context(), self, c.Param("adminId")); err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Delete admin success", nil)
}
