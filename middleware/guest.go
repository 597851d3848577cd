package middleware

import (
	"time"

	"agency-cms/helper"
	"agency-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const visitorTTL = 24 * time.Hour

// DailyVisit counts one guest visit per visitor per day. Visitors are
// identified by a signed cookie issued on their first request. Tracking
// failures never block the request.
func DailyVisit(visits services.VisitService, cookies *helper.Cookies, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookies.Get(c, helper.VisitorCookie) == "" {
			visitorID := uuid.NewString()
			if err := cookies.Set(c, helper.VisitorCookie, visitorID, visitorTTL); err != nil {
				log.Warn("issue visitor cookie", zap.Error(err))
			} else if err := visits.Record(c.Request.Context(), visitorID, c.ClientIP(), c.Request.UserAgent()); err != nil {
				log.Warn("record guest visit", zap.Error(err))
			}
		}
		c.Next()
	}
}
