package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/server/bgremove"
	"github.com/instantbranding/brandkit/internal/server/billing"
)

const maxWebhookBody = 1 << 20

func (h *handler) removeBackground(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bgremove.MaxImageSize+(1<<20))

	fh, err := c.FormFile("image")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.fail(c, common.ErrFileTooLarge)
			return
		}
		h.fail(c, common.ErrMissingImage)
		return
	}
	if fh.Size > bgremove.MaxImageSize {
		h.fail(c, common.ErrFileTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.svc.Background.Remove(c.Request.Context(), image, fh.Filename)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, res.ContentType, res.Image)
}

func (h *handler) billingWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.fail(c, invalidBody(err))
		return
	}

	res, err := h.svc.Billing.ProcessWebhook(c.Request.Context(), body, c.GetHeader(billing.SignatureHeader))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (h *handler) svgAsset(c *gin.Context) {
	data, err := h.svc.Assets.SVG(c.Request.Context(), c.Param("filename"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/svg+xml", data)
}
