// Package handler provides the optional HTTP admin surface. It carries no
// ledger operations: deposits and withdrawals only travel over the TCP
// line protocol.
package handler

import (
	"net/http"

	"bank-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// NewRouter initialises a Gin engine exposing the health endpoint.
func NewRouter(checkers ...ports.HealthChecker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// Deep health check — verifies PostgreSQL connectivity.
	r.GET("/health", HealthCheck(checkers...))

	return r
}

// HealthCheck pings every dependency and reports per-dependency status.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
