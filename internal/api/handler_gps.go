package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-tracker-backend/internal/store"
)

// Latitude/longitude are pointers so that 0 is distinguishable from absent.
type pushGPSRequest struct {
	VehicleID int64    `json:"vehicleId" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Speed     *float64 `json:"speed"`
}

// PushGPS handles POST /api/gps/push, the trip-scoped ingestion path. The
// vehicle must be on an active trip; orphan samples are refused.
func (h *Handler) PushGPS(c *gin.Context) {
	var req pushGPSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position, err := h.store.RecordTripPosition(c.Request.Context(), store.PushedPosition{
		VehicleID: req.VehicleID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Speed:     req.Speed,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

// LatestPositions handles GET /api/positions/latest.
func (h *Handler) LatestPositions(c *gin.Context) {
	latest, err := h.store.LatestPositions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if latest == nil {
		latest = []store.LatestPosition{}
	}
	c.JSON(http.StatusOK, latest)
}
