package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats handles GET /api/stats, the dashboard fleet snapshot.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.FleetStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
