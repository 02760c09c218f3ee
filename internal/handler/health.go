package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// healthProbeTimeout bounds both collaborator pings; a register terminal
// polling /health must get an answer before its own UI timeout.
const healthProbeTimeout = 2 * time.Second

// Health reports whether the persistence and cache collaborators answer.
// Degraded means the service is up but a collaborator is not; sales
// cannot confirm in that state, so the terminal should surface it.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		defer cancel()

		checks := gin.H{
			"postgres": probe(func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"redis": probe(func() error { return rdb.Ping(ctx).Err() }),
		}

		status := http.StatusOK
		state := "up"
		for _, v := range checks {
			if v != "up" {
				status = http.StatusServiceUnavailable
				state = "degraded"
			}
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}

func probe(ping func() error) string {
	if err := ping(); err != nil {
		return "down"
	}
	return "up"
}
