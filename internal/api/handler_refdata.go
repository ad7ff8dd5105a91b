package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
)

// Reference-data reads are plain single-table lookups, served straight off
// the database handle.

// ListVehicles handles GET /api/vehicles.
func ListVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicles []model.Vehicle
		if err := db.Order("name").Find(&vehicles).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicles"})
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}

// ListDrivers handles GET /api/drivers.
func ListDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var drivers []model.Driver
		if err := db.Order("name").Find(&drivers).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve drivers"})
			return
		}
		c.JSON(http.StatusOK, drivers)
	}
}

// ListPlaces handles GET /api/places. A kind query narrows to origins or
// destinations.
func ListPlaces(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx := db.Order("name")
		if kind := c.Query("kind"); kind != "" {
			tx = tx.Where("kind = ? OR kind = ?", kind, model.PlaceBoth)
		}

		var places []model.Place
		if err := tx.Find(&places).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve places"})
			return
		}
		c.JSON(http.StatusOK, places)
	}
}
