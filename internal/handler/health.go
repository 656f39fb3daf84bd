package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/lendana/loan-engine/internal/service"
	"github.com/lendana/loan-engine/pkg/response"
)

const readinessTimeout = 5 * time.Second

type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

type healthReport struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health reports process liveness only; no dependencies are touched.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, healthReport{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    map[string]string{},
	})
}

// Ready verifies what a request actually needs: a reachable, migrated
// database and a reachable redis. The sweep lease is reported so operators
// can see whether a dispatcher pass is in flight, but it never fails
// readiness on its own.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	report := healthReport{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks: map[string]string{
			"database":    h.checkDatabase(ctx),
			"redis":       h.checkRedis(ctx),
			"sweep_lease": h.checkSweepLease(ctx),
		},
	}

	if report.Checks["database"] != "ok" || report.Checks["redis"] != "ok" {
		report.Status = "error"
		response.Error(w, http.StatusServiceUnavailable, "Service not ready", nil)
		return
	}

	response.Success(w, report)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	if err := h.db.PingContext(ctx); err != nil {
		return "failed: " + err.Error()
	}

	var version int64
	var dirty bool
	if err := h.db.QueryRowContext(ctx, "SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		return "failed: schema not migrated: " + err.Error()
	}
	if dirty {
		return fmt.Sprintf("failed: migration %d is dirty", version)
	}

	return "ok"
}

func (h *HealthHandler) checkRedis(ctx context.Context) string {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return "failed: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkSweepLease(ctx context.Context) string {
	held, err := h.redis.Get(ctx, service.SweepLockKey).Result()
	if err == redis.Nil {
		return "idle"
	}
	if err != nil {
		return "unknown: " + err.Error()
	}
	return "held since " + held
}
