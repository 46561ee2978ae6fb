package http

import (
	"errors"
	"net/http"

	"roboterms/internal/domain"
	"roboterms/internal/infra/auth/oidc"

	"github.com/gin-gonic/gin"
)

const claimsContextKey = "claims"

type authErrorResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// requirePermission guards a route with the bearer token gate. The request
// continues only with a verified token that grants permission.
func (s *Server) requirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.authInitErr != nil || s.verifier == nil {
			s.logger.Error("auth not configured", "error", s.authInitErr)
			writeStatus(c, http.StatusInternalServerError)
			return
		}
		token, err := oidc.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			s.writeAuthError(c, err)
			return
		}
		claims, err := s.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			s.writeAuthError(c, err)
			return
		}
		if err := s.checker.Require(claims, permission); err != nil {
			s.writeAuthError(c, err)
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

func claimsFromContext(c *gin.Context) (domain.Claims, bool) {
	raw, ok := c.Get(claimsContextKey)
	if !ok {
		return domain.Claims{}, false
	}
	claims, ok := raw.(domain.Claims)
	return claims, ok
}

func (s *Server) writeAuthError(c *gin.Context, err error) {
	requestID := c.GetString(requestIDContextKey)
	authErr, ok := domain.IsAuthError(err)
	if !ok {
		if errors.Is(err, domain.ErrKeySetUnavailable) {
			s.logger.Error("key set unavailable", "request_id", requestID, "error", err)
		} else {
			s.logger.Error("auth failed", "request_id", requestID, "error", err)
		}
		s.metrics.AuthFailure("internal")
		writeStatus(c, http.StatusInternalServerError)
		return
	}
	s.logger.Warn("auth rejected",
		"request_id", requestID,
		"code", authErr.Code,
		"status", authErr.Status,
	)
	s.metrics.AuthFailure(authErr.Code)
	c.AbortWithStatusJSON(authErr.Status, authErrorResponse{
		Code:        authErr.Code,
		Description: authErr.Description,
	})
}
