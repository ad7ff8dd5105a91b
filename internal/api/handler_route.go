package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RouteProxy handles GET /api/route, proxying to the external routing
// collaborator and reshaping its geometry.
func (h *Handler) RouteProxy(c *gin.Context) {
	if h.routes == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "routing is not configured"})
		return
	}

	coords := make([]float64, 0, 4)
	for _, key := range []string{"originLat", "originLng", "destLat", "destLng"} {
		v, err := strconv.ParseFloat(c.Query(key), 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
			return
		}
		coords = append(coords, v)
	}

	route, err := h.routes.Route(c.Request.Context(), coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, route)
}
