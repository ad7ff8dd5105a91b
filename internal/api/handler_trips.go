package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-tracker-backend/internal/store"
)

type startTripRequest struct {
	AssignmentID int64 `json:"assignmentId" binding:"required"`
}

// StartTrip handles POST /api/trips/start.
func (h *Handler) StartTrip(c *gin.Context) {
	var req startTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.store.StartTrip(c.Request.Context(), req.AssignmentID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

type endTripRequest struct {
	TripID        int64    `json:"tripId" binding:"required"`
	DestinationID *int64   `json:"destinationId"`
	AvgSpeed      *float64 `json:"avgSpeed"`
}

// EndTrip handles POST /api/trips/end. On success the completed trip is
// queued for operator notifications.
func (h *Handler) EndTrip(c *gin.Context) {
	var req endTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.store.EndTrip(c.Request.Context(), store.EndTripInput{
		TripID:        req.TripID,
		DestinationID: req.DestinationID,
		AvgSpeed:      req.AvgSpeed,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if h.pool != nil {
		h.pool.Dispatch(trip.ID)
	}

	c.JSON(http.StatusOK, trip)
}

// SearchTrips handles GET /api/trips.
func (h *Handler) SearchTrips(c *gin.Context) {
	trips, count, err := h.store.SearchTrips(c.Request.Context(), store.FilterQuery{
		DateType:        c.Query("dateType"),
		DateValue:       c.Query("dateValue"),
		DriverName:      c.Query("driverName"),
		OriginName:      c.Query("originName"),
		DestinationName: c.Query("destinationName"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips, "count": count})
}
