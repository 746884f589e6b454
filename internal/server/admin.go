package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexdraftlabs/lexdraft/pkg/db/pagination"
)

func (s *Server) HandleListProfiles(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profiles, pageInfo, err := s.identities.List(c.Request.Context(), s.db, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "page_info": pageInfo})
}

func (s *Server) HandleListTransactions(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	transactions, pageInfo, err := s.subs.ListTransactions(c.Request.Context(), s.db, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "page_info": pageInfo})
}
