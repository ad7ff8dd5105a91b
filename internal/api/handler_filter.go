package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-tracker-backend/internal/store"
)

// FilterOptions handles GET /api/filter/options, the cascading dropdown
// resolver. Empty result lists are a normal outcome, never an error.
func (h *Handler) FilterOptions(c *gin.Context) {
	opts, err := h.store.ResolveFilterOptions(c.Request.Context(), store.FilterQuery{
		DateType:   c.Query("dateType"),
		DateValue:  c.Query("dateValue"),
		DriverName: c.Query("driverName"),
		OriginName: c.Query("originName"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, opts)
}
