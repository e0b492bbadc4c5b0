package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/instantbranding/brandkit/internal/server/services"
)

// signedURLRequest accepts both spellings the web client has used.
type signedURLRequest struct {
	Filename         string `json:"filename"`
	FileName         string `json:"fileName"`
	ContentType      string `json:"content_type"`
	ContentTypeCamel string `json:"contentType"`
	FileSize         *int64 `json:"file_size"`
	FileSizeCamel    *int64 `json:"fileSize"`
	ExpiresIn        int    `json:"expires_in"`
	ExpiresInCamel   int    `json:"expiresIn"`
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (h *handler) signedURL(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signedURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, invalidBody(err))
			return
		}

		size := req.FileSize
		if size == nil {
			size = req.FileSizeCamel
		}
		expires := req.ExpiresIn
		if expires == 0 {
			expires = req.ExpiresInCamel
		}

		cred, err := h.svc.Uploads.IssueCredential(c.Request.Context(), services.UploadRequest{
			Provider:    provider,
			UserID:      currentUser(c),
			Filename:    firstString(req.Filename, req.FileName),
			ContentType: firstString(req.ContentType, req.ContentTypeCamel),
			FileSize:    size,
			ExpiresIn:   time.Duration(expires) * time.Second,
		})
		if err != nil {
			h.fail(c, err)
			return
		}
		ok(c, http.StatusOK, cred)
	}
}
