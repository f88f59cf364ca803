package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/campuslabs/softreq/pkg/application"
)

const HealthPath = "/health"

type healthStatus string

const (
	healthStatusHealthy  healthStatus = "healthy"
	healthStatusDegraded healthStatus = "degraded"
	healthStatusDown     healthStatus = "down"
)

const dbDegradedLatency = 100 * time.Millisecond

type healthResponse struct {
	Status    healthStatus               `json:"status"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]componentHealth `json:"checks"`
}

type componentHealth struct {
	Status       healthStatus   `json:"status"`
	ResponseTime string         `json:"responseTime,omitempty"`
	Error        string         `json:"error,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db  Pinger
	now func() time.Time
}

// NewHealthController reports the database as healthy without a round trip
// when db is nil, which is the in-memory store.
func NewHealthController(db Pinger) application.Controller {
	return &HealthController{db: db, now: time.Now}
}

func (c *HealthController) Key() string {
	return HealthPath
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(HealthPath, c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	db := c.checkDatabase(r.Context())
	response := healthResponse{
		Status:    db.Status,
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Checks:    map[string]componentHealth{"database": db},
	}

	status := http.StatusOK
	if response.Status == healthStatusDown {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func (c *HealthController) checkDatabase(ctx context.Context) componentHealth {
	if c.db == nil {
		return componentHealth{
			Status:  healthStatusHealthy,
			Details: map[string]any{"store": "memory"},
		}
	}

	start := time.Now()
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.db.Ping(timeoutCtx)
	responseTime := time.Since(start)
	if err != nil {
		return componentHealth{
			Status:       healthStatusDown,
			ResponseTime: responseTime.String(),
			Error:        "database ping failed: " + err.Error(),
		}
	}

	status := healthStatusHealthy
	if responseTime > dbDegradedLatency {
		status = healthStatusDegraded
	}
	return componentHealth{
		Status:       status,
		ResponseTime: responseTime.String(),
		Details:      map[string]any{"store": "postgres"},
	}
}
