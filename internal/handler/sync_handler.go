package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/service"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
)

// SyncHandler exposes manual sync triggers and last-run visibility for
// operators, alongside the scheduled worker.
type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// TriggerEntity runs one entity's sync and returns its count summary.
func (h *SyncHandler) TriggerEntity(c *gin.Context) {
	entity := c.Param("entity")

	summary, err := h.syncService.Sync(c.Request.Context(), entity)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrUnknownEntity):
			utils.Error(c, 404, "UNKNOWN_ENTITY", "No such sync entity")
		case errors.Is(err, utils.ErrSyncAlreadyRunning):
			utils.Error(c, 409, "SYNC_ALREADY_RUNNING", "A sync run for this entity is already in progress")
		default:
			utils.Error(c, 502, "SYNC_FAILED", err.Error())
		}
		return
	}

	utils.Success(c, 200, "Sync completed", gin.H{
		"entity":  entity,
		"summary": summary,
	})
}

// TriggerAll starts a full sync pass in the background.
func (h *SyncHandler) TriggerAll(c *gin.Context) {
	go func() {
		// Detached from the request context: the pass outlives the response.
		if err := h.syncService.SyncAll(context.Background()); err != nil {
			log.Error().Err(err).Msg("manual full sync failed")
		}
	}()

	utils.Success(c, 202, "Full sync started", nil)
}

// Status returns the last run outcome per entity.
func (h *SyncHandler) Status(c *gin.Context) {
	utils.Success(c, 200, "Sync status", h.syncService.Statuses())
}
