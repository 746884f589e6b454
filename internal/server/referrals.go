package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) HandleReferralSummary(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	summary, err := s.referralSvc.EmployeeSummary(c.Request.Context(), principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
