package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
)

type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GetHealth reports service liveness and database reachability.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		utils.Error(c, 503, "DATABASE_UNAVAILABLE", "Database ping failed")
		return
	}
	utils.Success(c, 200, "OK", gin.H{"status": "healthy"})
}
