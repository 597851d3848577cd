package helper

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
)

const (
	SessionCookie = "session"
	VisitorCookie = "visitorId"
)

// Cookies signs and verifies cookie values.
type Cookies struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewCookies signs with hashKey. Values are signed, not encrypted.
func NewCookies(hashKey []byte, secure bool) *Cookies {
	return &Cookies{
		codec:  securecookie.New(hashKey, nil),
		secure: secure,
	}
}

// Set writes a signed httpOnly cookie.
func (ck *Cookies) Set(c *gin.Context, name, value string, ttl time.Duration) error {
	encoded, err := ck.codec.Encode(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, ck.cookie(name, encoded, int(ttl.Seconds())))
	return nil
}

// Get returns the verified value of a cookie, or "" when it is missing or
// fails verification.
func (ck *Cookies) Get(c *gin.Context, name string) string {
	raw, err := c.Cookie(name)
	if err != nil || raw == "" {
		return ""
	}
	var value string
	if err := ck.codec.Decode(name, raw, &value); err != nil {
		return ""
	}
	return value
}

// Clear expires a cookie.
func (ck *Cookies) Clear(c *gin.Context, name string) {
	http.SetCookie(c.Writer, ck.cookie(name, "", -1))
}

func (ck *Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if ck.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ck.secure,
		SameSite: sameSite,
	}
}
