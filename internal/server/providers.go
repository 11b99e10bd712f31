package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	providerdomain "github.com/smallbiznis/claimdesk/internal/provider/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type createProviderRequest struct {
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	ContactEmail string `json:"contact_email"`
	Address      string `json:"address"`
}

type updateProviderRequest struct {
	Name         *string `json:"name"`
	Specialty    *string `json:"specialty"`
	ContactEmail *string `json:"contact_email"`
	Address      *string `json:"address"`
}

func (s *Server) CreateProvider(c *gin.Context) {
	var req createProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.providerSvc.Create(c.Request.Context(), providerdomain.CreateProviderRequest{
		Name:         strings.TrimSpace(req.Name),
		Specialty:    strings.TrimSpace(req.Specialty),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Address:      strings.TrimSpace(req.Address),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProviders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name      string `form:"name"`
		Specialty string `form:"specialty"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.providerSvc.List(c.Request.Context(), providerdomain.ListProviderRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Name:      strings.TrimSpace(query.Name),
		Specialty: strings.TrimSpace(query.Specialty),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProviderByID(c *gin.Context) {
	resp, err := s.providerSvc.GetByID(c.Request.Context(), providerdomain.GetProviderRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProvider(c *gin.Context) {
	var req updateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.providerSvc.Update(c.Request.Context(), providerdomain.UpdateProviderRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		Name:         req.Name,
		Specialty:    req.Specialty,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProvider(c *gin.Context) {
	if err := s.providerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
