package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/smallbiznis/claimdesk/internal/payment/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type createPaymentRequest struct {
	InvoiceNumber      string `json:"invoice_number"`
	PaymentAmountCents int64  `json:"payment_amount_cents"`
	PaymentDate        string `json:"payment_date"`
}

type updatePaymentRequest struct {
	InvoiceNumber *string `json:"invoice_number"`
	PaymentDate   *string `json:"payment_date"`
	PaymentStatus *string `json:"payment_status"`
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseOptionalTime(req.PaymentDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment_date"))
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), paymentdomain.CreatePaymentRequest{
		ClaimID:            strings.TrimSpace(c.Param("id")),
		InvoiceNumber:      strings.TrimSpace(req.InvoiceNumber),
		PaymentAmountCents: req.PaymentAmountCents,
		PaymentDate:        paymentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ClaimID string `form:"claim_id"`
		Status  string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		ClaimID:   strings.TrimSpace(query.ClaimID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), paymentdomain.GetPaymentRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := paymentdomain.UpdatePaymentRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		InvoiceNumber: req.InvoiceNumber,
	}
	if req.PaymentDate != nil {
		paymentDate, err := parseOptionalTime(*req.PaymentDate, false)
		if err != nil || paymentDate == nil {
			AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment_date"))
			return
		}
		update.PaymentDate = paymentDate
	}
	if req.PaymentStatus != nil {
		status := paymentdomain.PaymentStatus(strings.TrimSpace(*req.PaymentStatus))
		update.PaymentStatus = &status
	}

	resp, err := s.paymentSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
