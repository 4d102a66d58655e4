package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/carlisting-golang/internal/metrics"
	"github.com/01moynul/carlisting-golang/internal/models"
)

// CreateEvent handles POST /events. Anyone may record an interaction; the
// timestamp is always assigned by the server.
func (h *Handlers) CreateEvent(c *gin.Context) {
	var input models.EventCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.Events.Record(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	metrics.EventsRecorded.Inc()
	c.JSON(http.StatusOK, event)
}

// GetPopularity handles GET /events/popularity (superuser only).
func (h *Handlers) GetPopularity(c *gin.Context) {
	userID, ok := optionalUUIDQuery(c, "user_id")
	if !ok {
		return
	}

	counts, err := h.Events.Popularity(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts, "count": len(counts)})
}
