package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleet-tracker-backend/config"
	"fleet-tracker-backend/internal/db"
	"fleet-tracker-backend/internal/model"
	"fleet-tracker-backend/internal/routing"
	"fleet-tracker-backend/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB, nil)
	r := NewRouter(s, nil, nil, nil, config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	})
	return r, gormDB
}

func seedAPIRefData(t *testing.T, gormDB *gorm.DB) {
	t.Helper()
	require.NoError(t, gormDB.Create(&[]model.Driver{{ID: 7, Name: "Budi"}}).Error)
	require.NoError(t, gormDB.Create(&[]model.Vehicle{{ID: 3, Name: "B 1234 XY"}}).Error)
	require.NoError(t, gormDB.Create(&[]model.Place{
		{ID: 1, Name: "Depot Utara", City: "Jakarta", Kind: model.PlaceOrigin},
		{ID: 2, Name: "Gudang Timur", City: "Bandung", Kind: model.PlaceDestination},
	}).Error)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTripLifecycleOverHTTP(t *testing.T) {
	r, gormDB := newTestRouter(t)
	seedAPIRefData(t, gormDB)

	w := doJSON(t, r, http.MethodPost, "/api/assignments",
		`{"driverId":7,"vehicleId":3,"originId":1,"destinationId":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var assignment model.Assignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignment))
	assert.Equal(t, model.AssignmentPending, assignment.Status)

	w = doJSON(t, r, http.MethodPost, "/api/trips/start",
		`{"assignmentId":`+jsonInt(assignment.ID)+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var trip model.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trip))
	assert.Equal(t, model.TripOnTrip, trip.Status)

	// Second start is a business-rule violation, not a server error.
	w = doJSON(t, r, http.MethodPost, "/api/trips/start",
		`{"assignmentId":`+jsonInt(assignment.ID)+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Assignment already started")

	w = doJSON(t, r, http.MethodPost, "/api/gps/push",
		`{"vehicleId":3,"latitude":-6.2,"longitude":106.8,"speed":35}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var position model.Position
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &position))
	require.NotNil(t, position.TripID)
	assert.Equal(t, trip.ID, *position.TripID)

	w = doJSON(t, r, http.MethodPost, "/api/trips/end",
		`{"tripId":`+jsonInt(trip.ID)+`,"avgSpeed":38.5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var completed model.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Equal(t, model.TripCompleted, completed.Status)
	require.NotNil(t, completed.AvgSpeed)
	assert.Equal(t, 38.5, *completed.AvgSpeed)

	// The assignment is recycled and shows PENDING again.
	w = doJSON(t, r, http.MethodGet, "/api/assignments", "")
	require.Equal(t, http.StatusOK, w.Code)
	var assignments []model.Assignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignments))
	require.Len(t, assignments, 1)
	assert.Equal(t, model.AssignmentPending, assignments[0].Status)
}

func TestPushGPSValidation(t *testing.T) {
	r, gormDB := newTestRouter(t)
	seedAPIRefData(t, gormDB)

	t.Run("missing coordinates rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/gps/push", `{"vehicleId":3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no active trip rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/gps/push",
			`{"vehicleId":3,"latitude":-6.2,"longitude":106.8}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "no active trip")
	})

	t.Run("zero coordinates are valid", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/assignments",
			`{"driverId":7,"vehicleId":3,"originId":1,"destinationId":2}`)
		require.Equal(t, http.StatusOK, w.Code)
		var assignment model.Assignment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignment))
		w = doJSON(t, r, http.MethodPost, "/api/trips/start",
			`{"assignmentId":`+jsonInt(assignment.ID)+`}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodPost, "/api/gps/push",
			`{"vehicleId":3,"latitude":0,"longitude":0}`)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestLatestPositionsEmptyFleet(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/positions/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestFilterOptionsEndpoint(t *testing.T) {
	r, gormDB := newTestRouter(t)
	seedAPIRefData(t, gormDB)

	w := doJSON(t, r, http.MethodGet, "/api/filter/options?dateType=current", "")
	require.Equal(t, http.StatusOK, w.Code)

	var opts store.FilterOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	require.Len(t, opts.Drivers, 1)
	assert.Equal(t, "Budi", opts.Drivers[0].Name)
	// No trips yet, so the later cascade levels stay empty but present.
	assert.NotNil(t, opts.Origins)
	assert.NotNil(t, opts.Destinations)
}

func TestFilterOptionsServedFromCache(t *testing.T) {
	r, gormDB := newTestRouter(t)
	seedAPIRefData(t, gormDB)

	w := doJSON(t, r, http.MethodGet, "/api/filter/options?dateType=current", "")
	require.Equal(t, http.StatusOK, w.Code)
	var first store.FilterOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.Len(t, first.Drivers, 1)

	// A driver added after the first read stays invisible for the TTL.
	require.NoError(t, gormDB.Create(&model.Driver{ID: 8, Name: "Siti"}).Error)

	w = doJSON(t, r, http.MethodGet, "/api/filter/options?dateType=current", "")
	require.Equal(t, http.StatusOK, w.Code)
	var second store.FilterOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Len(t, second.Drivers, 1)
}

func TestStatsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats store.FleetStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "-", stats.AvgTripDuration)
	assert.Equal(t, "-", stats.OnTime)
}

func TestPlacesKindFilter(t *testing.T) {
	r, gormDB := newTestRouter(t)
	seedAPIRefData(t, gormDB)
	require.NoError(t, gormDB.Create(&model.Place{
		ID: 5, Name: "Hub Tengah", City: "Semarang", Kind: model.PlaceBoth,
	}).Error)

	w := doJSON(t, r, http.MethodGet, "/api/places?kind=origin", "")
	require.Equal(t, http.StatusOK, w.Code)

	var places []model.Place
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &places))
	names := make([]string, 0, len(places))
	for _, p := range places {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Depot Utara", "Hub Tengah"}, names)
}

func TestRouteProxyUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/route?originLat=-6.2&originLng=106.8&destLat=-6.3&destLng=106.9", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouteProxyBadParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, routing.NewClient("http://127.0.0.1:1", time.Second), nil, nil)
	r := gin.New()
	r.GET("/api/route", h.RouteProxy)

	// Malformed coordinates are rejected before the collaborator is called.
	w := doJSON(t, r, http.MethodGet, "/api/route?originLat=abc&originLng=106.8&destLat=-6.3&destLng=106.9", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "originLat")
}

func TestSubscriptionRoundTrip(t *testing.T) {
	r, gormDB := newTestRouter(t)
	seedAPIRefData(t, gormDB)

	endpoint := "https://push.example/sub-1"

	w := doJSON(t, r, http.MethodPut, "/api/subscriptions",
		`{"endpoint":"`+endpoint+`","p256dh":"key","auth":"secret","subscribed_vehicles":[3]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		SubscribedVehicles []int64 `json:"subscribed_vehicles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []int64{3}, got.SubscribedVehicles)

	// Replace the vehicle set.
	w = doJSON(t, r, http.MethodPut, "/api/subscriptions",
		`{"endpoint":"`+endpoint+`","p256dh":"key","auth":"secret","subscribed_vehicles":[]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.SubscribedVehicles)

	w = doJSON(t, r, http.MethodDelete, "/api/subscriptions", `{"endpoint":"`+endpoint+`"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVAPIDKeyUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
