package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-tracker-backend/config"
	"fleet-tracker-backend/internal/mw"
	"fleet-tracker-backend/internal/notification"
	"fleet-tracker-backend/internal/routing"
	"fleet-tracker-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(
	s store.Store,
	routes *routing.Client,
	pool *notification.WorkerPool,
	webpushOptions *webpush.Options,
	srv config.ServerConfig,
) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	db := s.DB()
	handler := NewHandler(s, routes, pool, webpushOptions)

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(srv.RateLimitPerSec), srv.RateLimitBurst)

	cacheTTL := time.Duration(srv.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Trip lifecycle
		api.POST("/assignments", handler.CreateAssignment)
		api.GET("/assignments", handler.ListAssignments)
		api.POST("/trips/start", handler.StartTrip)
		api.POST("/trips/end", handler.EndTrip)
		api.GET("/trips", handler.SearchTrips)

		// Position ingestion (push path) and live positions
		api.POST("/gps/push", handler.PushGPS)
		api.GET("/positions/latest", handler.LatestPositions)

		// Search and dashboard
		api.GET("/filter/options", caching, handler.FilterOptions)
		api.GET("/stats", caching, handler.Stats)

		// External routing collaborator
		api.GET("/route", handler.RouteProxy)

		// Reference data
		api.GET("/vehicles", caching, ListVehicles(db))
		api.GET("/drivers", caching, ListDrivers(db))
		api.GET("/places", caching, ListPlaces(db))

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
