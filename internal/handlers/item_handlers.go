package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/carlisting-golang/internal/models"
)

// listParams is the paging of GET /items.
type listParams struct {
	Skip  int `form:"skip,default=0" binding:"gte=0"`
	Limit int `form:"limit,default=100" binding:"gte=0"`
}

// ListItems handles GET /items: every item for superusers, otherwise the
// caller's own listings.
func (h *Handlers) ListItems(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}

	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.Items.List(c.Request.Context(), actor, params.Skip, params.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetItem handles GET /items/:id.
func (h *Handlers) GetItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	item, err := h.Items.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem handles POST /items. The caller becomes the seller.
func (h *Handlers) CreateItem(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}

	var input models.ItemCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Items.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem handles PUT /items/:id with partial replacement semantics.
func (h *Handlers) UpdateItem(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input models.ItemUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Items.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /items/:id.
func (h *Handlers) DeleteItem(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.Items.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "Item deleted successfully"})
}

// SellItem handles POST /items/:id/sell. The body is optional; without a
// final price the asking price is recorded.
func (h *Handlers) SellItem(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input models.ItemSale
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Items.MarkSold(c.Request.Context(), actor, id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
