package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 5 * time.Second

// Checker is a named readiness check. Check returns nil when the dependency
// is usable.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResult struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health serves /health, /healthz and /readyz.
type Health struct {
	service  string
	checkers []Checker
	now      func() time.Time
}

// NewHealth returns a Health evaluating checkers on each /readyz request.
func NewHealth(service string, checkers ...Checker) *Health {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Health{service: service, checkers: c, now: time.Now}
}

// Status reports the service as healthy with its name and the current time.
func (h *Health) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   h.service,
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// Healthz is a liveness probe that always returns 200.
func (h *Health) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, healthResult{Status: "ok"})
}

// Readyz returns 200 only when every checker passes.
func (h *Health) Readyz(c *gin.Context) {
	checks := make(map[string]string, len(h.checkers))
	allOK := true
	for _, chk := range h.checkers {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		err := chk.Check(ctx)
		cancel()
		if err != nil {
			checks[chk.Name] = "fail: " + err.Error()
			allOK = false
		} else {
			checks[chk.Name] = "ok"
		}
	}
	res := healthResult{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, res)
}
