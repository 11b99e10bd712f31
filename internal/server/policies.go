package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	policydomain "github.com/smallbiznis/claimdesk/internal/policy/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type createPolicyRequest struct {
	MemberNumber   string `json:"member_number"`
	PlanType       string `json:"plan_type"`
	PolicyholderID string `json:"policyholder_id"`
	EmployerID     string `json:"employer_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

type updatePolicyRequest struct {
	PlanType  *string `json:"plan_type"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	IsActive  *bool   `json:"is_active"`
}

func (s *Server) CreatePolicy(c *gin.Context) {
	var req createPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseOptionalTime(req.StartDate, false)
	if err != nil || startDate == nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseOptionalTime(req.EndDate, true)
	if err != nil || endDate == nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, err := s.policySvc.Create(c.Request.Context(), policydomain.CreatePolicyRequest{
		MemberNumber:   strings.TrimSpace(req.MemberNumber),
		PlanType:       strings.TrimSpace(req.PlanType),
		PolicyholderID: strings.TrimSpace(req.PolicyholderID),
		EmployerID:     strings.TrimSpace(req.EmployerID),
		StartDate:      *startDate,
		EndDate:        *endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPolicies(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PolicyholderID string `form:"policyholder_id"`
		EmployerID     string `form:"employer_id"`
		MemberNumber   string `form:"member_number"`
		ActiveOnly     string `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activeOnly, err := parseOptionalBool(query.ActiveOnly)
	if err != nil {
		AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
		return
	}

	req := policydomain.ListPolicyRequest{
		PageToken:      query.PageToken,
		PageSize:       int32(query.PageSize),
		PolicyholderID: strings.TrimSpace(query.PolicyholderID),
		EmployerID:     strings.TrimSpace(query.EmployerID),
		MemberNumber:   strings.TrimSpace(query.MemberNumber),
	}
	if activeOnly != nil {
		req.ActiveOnly = *activeOnly
	}

	resp, err := s.policySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPolicyByID(c *gin.Context) {
	resp, err := s.policySvc.GetByID(c.Request.Context(), policydomain.GetPolicyRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePolicy(c *gin.Context) {
	var req updatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := policydomain.UpdatePolicyRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		PlanType: req.PlanType,
		IsActive: req.IsActive,
	}
	if req.StartDate != nil {
		startDate, err := parseOptionalTime(*req.StartDate, false)
		if err != nil || startDate == nil {
			AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
			return
		}
		update.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseOptionalTime(*req.EndDate, true)
		if err != nil || endDate == nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
			return
		}
		update.EndDate = endDate
	}

	resp, err := s.policySvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePolicy(c *gin.Context) {
	if err := s.policySvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
