package server

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	claimdomain "github.com/smallbiznis/claimdesk/internal/claim/domain"
	"github.com/smallbiznis/claimdesk/pkg/db/pagination"
)

type updateClaimRequest struct {
	Provider             *string `json:"provider"`
	Reason               *string `json:"reason"`
	RequestedAmountCents *int64  `json:"requested_amount_cents"`
}

// CreateClaim accepts a multipart form so the claim and its supporting
// documents land in one request.
func (s *Server) CreateClaim(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	requestedAmount, err := strconv.ParseInt(strings.TrimSpace(formValue(form, "requested_amount_cents")), 10, 64)
	if err != nil {
		AbortWithError(c, newValidationError("requested_amount_cents", "invalid_amount", "invalid requested_amount_cents"))
		return
	}

	uploads, closeFiles, err := openUploads(form.File["attachments"])
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer closeFiles()

	resp, err := s.claimSvc.Create(c.Request.Context(), claimdomain.CreateClaimRequest{
		PolicyID:             strings.TrimSpace(formValue(form, "policy_id")),
		Provider:             strings.TrimSpace(formValue(form, "provider")),
		Reason:               strings.TrimSpace(formValue(form, "reason")),
		RequestedAmountCents: requestedAmount,
		Attachments:          uploads,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClaims(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PolicyID string `form:"policy_id"`
		Status   string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.claimSvc.List(c.Request.Context(), claimdomain.ListClaimRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		PolicyID:  strings.TrimSpace(query.PolicyID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClaimByID(c *gin.Context) {
	resp, err := s.claimSvc.GetByID(c.Request.Context(), claimdomain.GetClaimRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateClaim(c *gin.Context) {
	var req updateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.claimSvc.Update(c.Request.Context(), claimdomain.UpdateClaimRequest{
		ID:                   strings.TrimSpace(c.Param("id")),
		Provider:             req.Provider,
		Reason:               req.Reason,
		RequestedAmountCents: req.RequestedAmountCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddClaimAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	resp, err := s.claimSvc.AddAttachment(c.Request.Context(), strings.TrimSpace(c.Param("id")), claimdomain.AttachmentUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClaimAttachments(c *gin.Context) {
	resp, err := s.claimSvc.ListAttachments(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func openUploads(headers []*multipart.FileHeader) ([]claimdomain.AttachmentUpload, func(), error) {
	uploads := make([]claimdomain.AttachmentUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, file)
		uploads = append(uploads, claimdomain.AttachmentUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			Reader:      file,
		})
	}

	return uploads, closeAll, nil
}
