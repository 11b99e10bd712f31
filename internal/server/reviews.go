package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	reviewdomain "github.com/smallbiznis/claimdesk/internal/review/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type createReviewRequest struct {
	ReviewType      string `json:"review_type"`
	Decision        string `json:"decision"`
	Comments        string `json:"comments"`
	RejectionReason string `json:"rejection_reason"`
}

type updateReviewRequest struct {
	Comments        *string `json:"comments"`
	RejectionReason *string `json:"rejection_reason"`
}

type reviewItemRequest struct {
	ItemName             string `json:"item_name"`
	RequestedAmountCents int64  `json:"requested_amount_cents"`
	ApprovedAmountCents  *int64 `json:"approved_amount_cents"`
	Status               string `json:"status"`
	RejectionReason      string `json:"rejection_reason"`
}

type updateReviewItemRequest struct {
	ApprovedAmountCents *int64  `json:"approved_amount_cents"`
	Status              *string `json:"status"`
	RejectionReason     *string `json:"rejection_reason"`
}

func (s *Server) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Create(c.Request.Context(), reviewdomain.CreateReviewRequest{
		ClaimID:         strings.TrimSpace(c.Param("id")),
		ReviewType:      reviewdomain.ReviewType(strings.TrimSpace(req.ReviewType)),
		Decision:        reviewdomain.ReviewDecision(strings.TrimSpace(req.Decision)),
		Comments:        strings.TrimSpace(req.Comments),
		RejectionReason: strings.TrimSpace(req.RejectionReason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReviews(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ClaimID    string `form:"claim_id"`
		ReviewType string `form:"review_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.List(c.Request.Context(), reviewdomain.ListReviewRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		ClaimID:    strings.TrimSpace(query.ClaimID),
		ReviewType: strings.TrimSpace(query.ReviewType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetReviewByID(c *gin.Context) {
	resp, err := s.reviewSvc.GetByID(c.Request.Context(), reviewdomain.GetReviewRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateReview(c *gin.Context) {
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Update(c.Request.Context(), reviewdomain.UpdateReviewRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		Comments:        req.Comments,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReviewItems(c *gin.Context) {
	resp, err := s.reviewSvc.ListItems(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddReviewItem(c *gin.Context) {
	var req reviewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.AddItem(c.Request.Context(), reviewdomain.CreateReviewItemRequest{
		ReviewID:             strings.TrimSpace(c.Param("id")),
		ItemName:             strings.TrimSpace(req.ItemName),
		RequestedAmountCents: req.RequestedAmountCents,
		ApprovedAmountCents:  req.ApprovedAmountCents,
		Status:               reviewdomain.ReviewItemStatus(strings.TrimSpace(req.Status)),
		RejectionReason:      strings.TrimSpace(req.RejectionReason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateReviewItem(c *gin.Context) {
	var req updateReviewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := reviewdomain.UpdateReviewItemRequest{
		ReviewID:            strings.TrimSpace(c.Param("id")),
		ItemID:              strings.TrimSpace(c.Param("itemId")),
		ApprovedAmountCents: req.ApprovedAmountCents,
		RejectionReason:     req.RejectionReason,
	}
	if req.Status != nil {
		status := reviewdomain.ReviewItemStatus(strings.TrimSpace(*req.Status))
		update.Status = &status
	}

	resp, err := s.reviewSvc.UpdateItem(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
