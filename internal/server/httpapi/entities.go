package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/server/fieldmap"
	"github.com/instantbranding/brandkit/internal/server/models"
)

type idRequest struct {
	ID string `json:"id"`
}

func bindPayload(c *gin.Context) (map[string]any, error) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, invalidBody(err)
	}
	if payload == nil {
		return nil, invalidBody(errNullBody)
	}
	return payload, nil
}

func bindID(c *gin.Context) (string, error) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", invalidBody(err)
	}
	if req.ID == "" {
		return "", common.NewValidationError("id", "is required")
	}
	return req.ID, nil
}

// brandFilter reads the optional brand filter in either spelling.
func brandFilter(c *gin.Context) string {
	if v := c.Query("brand_id"); v != "" {
		return v
	}
	return c.Query("brandId")
}

func upsertStatus(a models.UpsertAction) int {
	if a == models.ActionCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *handler) render(c *gin.Context, status int, t *fieldmap.Table, record any) {
	out, err := t.Encode(record)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, status, out)
}

func renderList[T any](h *handler, c *gin.Context, t *fieldmap.Table, items []T) {
	out, err := fieldmap.EncodeList(t, items)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

func (h *handler) renderUpsert(c *gin.Context, t *fieldmap.Table, record any, action models.UpsertAction) {
	out, err := t.Encode(record)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, upsertStatus(action), gin.H{t.Name(): out, "action": action})
}

func (h *handler) listBrands(c *gin.Context) {
	list, err := h.svc.Brands.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	renderList(h, c, fieldmap.Brands, list)
}

func (h *handler) getBrand(c *gin.Context) {
	b, err := h.svc.Brands.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, fieldmap.Brands, b)
}

func (h *handler) updateBrand(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.svc.Brands.Update(c.Request.Context(), currentUser(c), c.Param("id"), payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, fieldmap.Brands, b)
}

func (h *handler) upsertBrand(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	b, action, err := h.svc.Brands.Upsert(c.Request.Context(), currentUser(c), payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderUpsert(c, fieldmap.Brands, b, action)
}

func (h *handler) deleteBrand(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Brands.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *handler) listDesigns(c *gin.Context) {
	list, err := h.svc.Designs.List(c.Request.Context(), currentUser(c), brandFilter(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	renderList(h, c, fieldmap.Designs, list)
}

func (h *handler) upsertDesign(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d, action, err := h.svc.Designs.Upsert(c.Request.Context(), currentUser(c), payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderUpsert(c, fieldmap.Designs, d, action)
}

func (h *handler) deleteDesign(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Designs.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *handler) listPosts(c *gin.Context) {
	list, err := h.svc.Posts.List(c.Request.Context(), currentUser(c), brandFilter(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	renderList(h, c, fieldmap.Posts, list)
}

func (h *handler) getPost(c *gin.Context) {
	p, err := h.svc.Posts.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, fieldmap.Posts, p)
}

type generateRequest struct {
	BrandID      string `json:"brand_id"`
	BrandIDCamel string `json:"brandId"`
	Hook         string `json:"hook"`
}

func (h *handler) generatePost(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalidBody(err))
		return
	}
	brandID := req.BrandID
	if brandID == "" {
		brandID = req.BrandIDCamel
	}
	p, err := h.svc.Posts.Generate(c.Request.Context(), currentUser(c), brandID, req.Hook)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusCreated, fieldmap.Posts, p)
}
