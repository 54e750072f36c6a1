package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"vertexchat-go/internal/constants"
	mw "vertexchat-go/internal/middleware"
	"vertexchat-go/internal/storage"
)

const checkTimeout = 2 * time.Second

func registerRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/metrics", mw.MetricsHandler())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.Version})
	})
	r.GET("/readyz", readyHandler(deps.Checks))

	if deps.Usage != nil {
		tracker := deps.Usage
		r.GET("/usage", func(c *gin.Context) {
			c.JSON(http.StatusOK, tracker.GetStats())
		})
	}

	if deps.Sessions != nil {
		sessions := r.Group("/sessions")
		sessions.GET("", listSessionsHandler(deps.Sessions))
		sessions.GET("/:id", sessionHandler(deps.Sessions))
	}
}

func readyHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(gin.H, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"checks": results})
	}
}

func listSessionsHandler(backend storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := backend.ListSessions(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": ids})
	}
}

func sessionHandler(backend storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		exchanges, err := backend.ListExchanges(c.Request.Context(), id)
		if err != nil {
			var nf *storage.ErrNotFound
			if errors.As(err, &nf) {
				respondError(c, http.StatusNotFound, err)
				return
			}
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		summary, err := backend.SessionSummary(c.Request.Context(), id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": id,
			"summary":    summary,
			"exchanges":  exchanges,
		})
	}
}

func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": err.Error()}})
}
