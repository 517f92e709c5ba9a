package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"finance-aggregation-backend/internal/repository"
	"finance-aggregation-backend/internal/services/sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SyncHandler struct {
	service     *sync.Service
	syncRunRepo *repository.SyncRunRepository
}

func NewSyncHandler(service *sync.Service, syncRunRepo *repository.SyncRunRepository) *SyncHandler {
	return &SyncHandler{service: service, syncRunRepo: syncRunRepo}
}

// SyncTransactions runs a full change-feed sync for one institution.
// The response is all-or-nothing: counts on success, a single error
// otherwise. Partial success is not a representable state.
func (h *SyncHandler) SyncTransactions(c *gin.Context) {
	institutionID, err := uuid.Parse(c.Query("institutionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid institution ID"})
		return
	}

	result, err := h.service.SyncTransactions(c.Request.Context(), institutionID)
	if err != nil {
		if errors.Is(err, sync.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applied":    result.Applied,
		"removed":    result.Removed,
		"skipped":    result.Skipped,
		"new_cursor": result.NewCursor,
	})
}

// ListSyncRuns returns recent sync history for an institution.
func (h *SyncHandler) ListSyncRuns(c *gin.Context) {
	institutionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid institution ID"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.syncRunRepo.ListByInstitution(institutionID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
