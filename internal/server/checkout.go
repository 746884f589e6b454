package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/lexdraftlabs/lexdraft/internal/checkout/domain"
)

func (s *Server) HandleCreateCheckoutSession(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req checkoutdomain.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.identitySvc.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	session, err := s.checkoutSvc.CreateSession(c.Request.Context(), profile, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
