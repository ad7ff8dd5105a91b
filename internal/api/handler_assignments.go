package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-tracker-backend/internal/store"
)

type createAssignmentRequest struct {
	DriverID      int64 `json:"driverId" binding:"required"`
	VehicleID     int64 `json:"vehicleId" binding:"required"`
	OriginID      int64 `json:"originId" binding:"required"`
	DestinationID int64 `json:"destinationId" binding:"required"`
}

// CreateAssignment handles POST /api/assignments.
func (h *Handler) CreateAssignment(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.store.CreateAssignment(c.Request.Context(), store.AssignmentInput{
		DriverID:      req.DriverID,
		VehicleID:     req.VehicleID,
		OriginID:      req.OriginID,
		DestinationID: req.DestinationID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListAssignments handles GET /api/assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
	assignments, err := h.store.ListAssignments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}
