package http

import (
	"errors"
	"net/http"
	"strconv"

	"roboterms/internal/domain"
	"roboterms/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "not found",
	http.StatusMethodNotAllowed:    "method not allowed",
	http.StatusUnprocessableEntity: "unprocessable",
	http.StatusTooManyRequests:     "too many requests",
	http.StatusInternalServerError: "internal server error",
}

func (s *Server) handleReadme(c *gin.Context) {
	if s.readmeErr != nil {
		s.fail(c, s.readmeErr)
		return
	}
	page, err := s.readme.Render()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.mode})
}

func (s *Server) handleListCompanies(c *gin.Context) {
	companies, err := s.companies.ListCompanies(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies, "success": true})
}

func (s *Server) handleListPolicies(c *gin.Context) {
	policies, err := s.policies.ListPolicies(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if policies == nil {
		policies = []domain.Policy{}
	}
	c.JSON(http.StatusOK, gin.H{"policies": policies, "success": true})
}

func (s *Server) handleRenderedPolicy(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		return
	}
	policyID, ok := pathID(c, "policy_id")
	if !ok {
		return
	}
	rendered, err := s.policies.RenderPolicy(c.Request.Context(), companyID, policyID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"policy": rendered, "success": true})
}

func (s *Server) handleAddCompany(c *gin.Context) {
	var in usecase.AddCompanyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeStatus(c, http.StatusBadRequest)
		return
	}
	company, err := s.companies.AddCompany(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("company added", "request_id", c.GetString(requestIDContextKey), "id", company.ID, "subject", subject(c))
	c.JSON(http.StatusOK, gin.H{"id": company.ID, "success": true})
}

func (s *Server) handleDeleteCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.companies.DeleteCompany(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("company deleted", "request_id", c.GetString(requestIDContextKey), "id", id, "subject", subject(c))
	c.JSON(http.StatusOK, gin.H{"id": id, "success": true})
}

func (s *Server) handleEditPolicy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in usecase.EditPolicyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeStatus(c, http.StatusBadRequest)
		return
	}
	if _, err := s.policies.EditPolicy(c.Request.Context(), id, in); err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("policy edited", "request_id", c.GetString(requestIDContextKey), "id", id, "subject", subject(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// pathID accepts unsigned decimal ids only; anything else is an unknown route.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	if raw == "" {
		writeStatus(c, http.StatusNotFound)
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			writeStatus(c, http.StatusNotFound)
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeStatus(c, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func subject(c *gin.Context) string {
	claims, ok := claimsFromContext(c)
	if !ok {
		return ""
	}
	return claims.Subject
}

// fail maps use case errors onto the generic envelope. Internal details are
// logged, never returned.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrRenderPolicy),
		errors.Is(err, domain.ErrPersistence):
		status = http.StatusUnprocessableEntity
	}
	level := s.logger.Info
	if status == http.StatusInternalServerError {
		level = s.logger.Error
	}
	level("request failed", "request_id", c.GetString(requestIDContextKey), "status", status, "error", err)
	writeStatus(c, status)
}

func writeStatus(c *gin.Context, status int) {
	message, ok := statusMessages[status]
	if !ok {
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Success: false,
		Error:   status,
		Message: message,
	})
}
