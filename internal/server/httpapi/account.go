package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/instantbranding/brandkit/internal/server/fieldmap"
	"github.com/instantbranding/brandkit/internal/server/models"
)

func (h *handler) me(c *gin.Context) {
	u, err := h.svc.Users.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, fieldmap.Users, u)
}

func (h *handler) completeOnboarding(c *gin.Context) {
	u, err := h.svc.Users.CompleteOnboarding(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, fieldmap.Users, u)
}

func (h *handler) importDraft(c *gin.Context) {
	var draft models.DraftImport
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.fail(c, invalidBody(err))
		return
	}

	res, err := h.svc.Drafts.Import(c.Request.Context(), currentUser(c), &draft)
	if err != nil {
		h.fail(c, err)
		return
	}

	brand, err := fieldmap.Brands.Encode(res.Brand)
	if err != nil {
		h.fail(c, err)
		return
	}
	designs, err := fieldmap.EncodeList(fieldmap.Designs, res.Designs)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"brand": brand, "action": res.Action, "designs": designs})
}
