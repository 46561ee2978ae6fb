package http

import (
	"net/http"
	"strconv"
	"time"

	"roboterms/internal/domain"

	"github.com/gin-gonic/gin"
)

// rateLimit counts requests per client address and route before the token
// gate runs, so rejected tokens still consume quota.
func (s *Server) rateLimit(routeID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			c.Next()
			return
		}
		key := "route:" + routeID + ":client:" + c.ClientIP()
		decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
		if err != nil {
			s.logger.Warn("rate limiter unavailable", "request_id", c.GetString(requestIDContextKey), "error", err)
			if s.rateLimitFailClosed {
				s.metrics.RateLimited()
				writeStatus(c, http.StatusTooManyRequests)
				return
			}
			c.Next()
			return
		}
		writeRateLimitHeaders(c, decision)
		if !decision.Allowed {
			s.metrics.RateLimited()
			writeStatus(c, http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if decision.ResetAt.IsZero() {
		return
	}
	c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	if !decision.Allowed {
		retryAfter := int64(time.Until(decision.ResetAt).Seconds())
		if retryAfter < 0 {
			retryAfter = 0
		}
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
}
