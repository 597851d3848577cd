package handlers

import (
	"agency-cms/helper"
	"agency-cms/models"
	"agency-cms/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	cookies     *helper.Cookies
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, cookies *helper.Cookies, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, Helper: h}
}

// Login sets the signed session cookie and also returns the token for
// programmatic clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(h.Helper.ValidationError(err))
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.cookies.Set(c, helper.SessionCookie, response.Token, h.authService.TokenTTL()); err != nil {
		c.Error(err)
		return
	}

	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c, helper.SessionCookie)
	h.Helper.SendSuccess(c, "Logout success", nil)
}
