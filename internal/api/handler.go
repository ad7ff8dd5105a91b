package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"fleet-tracker-backend/internal/notification"
	"fleet-tracker-backend/internal/routing"
	"fleet-tracker-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	routes  *routing.Client
	pool    *notification.WorkerPool
	webpush *webpush.Options
}

// NewHandler creates a new API handler. routes, pool and webpushOptions may
// be nil when the corresponding feature is not configured.
func NewHandler(s store.Store, routes *routing.Client, pool *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		routes:  routes,
		pool:    pool,
		webpush: webpushOptions,
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Business-rule
// violations are 400s with their full reason; store failures stay opaque.
func writeError(c *gin.Context, err error) {
	var (
		validation *store.ValidationError
		state      *store.InvalidStateError
		noTrip     *store.NoActiveTripError
		notFound   *routing.RouteNotFoundError
		unavail    *routing.RouteUnavailableError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &state), errors.As(err, &noTrip):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &unavail):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
