package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	debug bool
	// dbKey gates /health/db outside debug; empty means debug-only.
	dbKey string
}

func NewHealthHandler(db *gorm.DB, debug bool, dbKey string) *HealthHandler {
	return &HealthHandler{db: db, debug: debug, dbKey: dbKey}
}

// Health is the liveness probe.
func (h *HealthHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// HealthDB reports database connectivity. It is open in debug mode and
// otherwise requires the configured key.
func (h *HealthHandler) HealthDB(c *gin.Context) {
	if !h.allowed(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	started := time.Now()
	status := "up"
	code := http.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		status = "down"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"database":   status,
		"latency_ms": time.Since(started).Milliseconds(),
	})
}

func (h *HealthHandler) allowed(c *gin.Context) bool {
	if h.debug {
		return true
	}
	if h.dbKey == "" {
		return false
	}
	key := c.Query(constants.ParamKey)
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.dbKey)) == 1
}
