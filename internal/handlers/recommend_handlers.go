package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/carlisting-golang/internal/models"
)

// recommendParams is the paging of the recommendation endpoints.
type recommendParams struct {
	Limit  int `form:"limit,default=10" binding:"gte=0"`
	Offset int `form:"offset,default=0" binding:"gte=0"`
}

func (h *Handlers) bindRecommendParams(c *gin.Context) (recommendParams, bool) {
	var params recommendParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return params, false
	}
	return params, true
}

func respondItems(c *gin.Context, items []models.Item) {
	if items == nil {
		items = []models.Item{}
	}
	c.JSON(http.StatusOK, models.ItemsPublic{Data: items, Count: int64(len(items))})
}

// SimilarItems handles GET /items/recommend/:id/similar. An unknown item
// yields an empty list, not a 404.
func (h *Handlers) SimilarItems(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	params, ok := h.bindRecommendParams(c)
	if !ok {
		return
	}
	userID, ok := optionalUUIDQuery(c, "user_id")
	if !ok {
		return
	}

	items, err := h.Recommender.FindSimilarItems(c.Request.Context(), id, params.Limit, params.Offset, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondItems(c, items)
}

// MostPopular handles GET /items/recommend/most_popular, personalised by
// the optional user_id query parameter.
func (h *Handlers) MostPopular(c *gin.Context) {
	params, ok := h.bindRecommendParams(c)
	if !ok {
		return
	}
	userID, ok := optionalUUIDQuery(c, "user_id")
	if !ok {
		return
	}

	items, err := h.Recommender.FindMostPopularItems(c.Request.Context(), params.Limit, params.Offset, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondItems(c, items)
}

// SimilarQuery handles POST /items/recommend/similar_query. An empty body
// is an empty query and matches every item.
func (h *Handlers) SimilarQuery(c *gin.Context) {
	params, ok := h.bindRecommendParams(c)
	if !ok {
		return
	}
	userID, ok := optionalUUIDQuery(c, "user_id")
	if !ok {
		return
	}

	var query models.ItemQuery
	if err := c.ShouldBindJSON(&query); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.Recommender.FindSimilarQuery(c.Request.Context(), query, params.Limit, params.Offset, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondItems(c, items)
}
