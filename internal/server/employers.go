package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	employerdomain "github.com/smallbiznis/claimdesk/internal/employer/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type createEmployerRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Address      string `json:"address"`
}

type updateEmployerRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contact_email"`
	Address      *string `json:"address"`
}

func (s *Server) CreateEmployer(c *gin.Context) {
	var req createEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employerSvc.Create(c.Request.Context(), employerdomain.CreateEmployerRequest{
		Name:         strings.TrimSpace(req.Name),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Address:      strings.TrimSpace(req.Address),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEmployers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name string `form:"name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employerSvc.List(c.Request.Context(), employerdomain.ListEmployerRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Name:      strings.TrimSpace(query.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEmployerByID(c *gin.Context) {
	resp, err := s.employerSvc.GetByID(c.Request.Context(), employerdomain.GetEmployerRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateEmployer(c *gin.Context) {
	var req updateEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employerSvc.Update(c.Request.Context(), employerdomain.UpdateEmployerRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteEmployer(c *gin.Context) {
	if err := s.employerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
