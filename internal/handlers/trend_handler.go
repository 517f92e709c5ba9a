package handlers

import (
	"net/http"
	"time"

	"finance-aggregation-backend/internal/models"
	"finance-aggregation-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TrendHandler struct {
	trendRepo *repository.TrendRepository
}

func NewTrendHandler(trendRepo *repository.TrendRepository) *TrendHandler {
	return &TrendHandler{trendRepo: trendRepo}
}

// Save creates a trend point for a (user, date, type) triple, or
// overwrites the value if the point already exists.
func (h *TrendHandler) Save(c *gin.Context) {
	var payload struct {
		UserID string          `json:"user_id"`
		Date   string          `json:"date"`
		Value  decimal.Decimal `json:"value"`
		Type   string          `json:"type"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	if !models.IsValidTrendType(payload.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trend type"})
		return
	}
	if payload.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date required"})
		return
	}

	trend, err := h.trendRepo.GetByUserDateType(userID, payload.Date, payload.Type)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trend == nil {
		trend = &models.Trend{
			ID:        uuid.New(),
			UserID:    userID,
			Date:      payload.Date,
			Type:      payload.Type,
			CreatedAt: time.Now(),
		}
	}
	trend.Value = payload.Value

	if err := h.trendRepo.Save(trend); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

func (h *TrendHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	trends, err := h.trendRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}
