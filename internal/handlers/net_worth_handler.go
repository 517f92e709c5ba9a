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

type NetWorthHandler struct {
	netWorthRepo *repository.NetWorthRepository
}

func NewNetWorthHandler(netWorthRepo *repository.NetWorthRepository) *NetWorthHandler {
	return &NetWorthHandler{netWorthRepo: netWorthRepo}
}

// Save creates the user's net-worth snapshot for a day, or overwrites
// the amount if one already exists for that date.
func (h *NetWorthHandler) Save(c *gin.Context) {
	var payload struct {
		UserID string          `json:"user_id"`
		Amount decimal.Decimal `json:"amount"`
		Month  int             `json:"month"`
		Day    int             `json:"day"`
		Year   int             `json:"year"`
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
	if payload.Month < 1 || payload.Month > 12 || payload.Day < 1 || payload.Day > 31 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	netWorth, err := h.netWorthRepo.GetByUserAndDate(userID, payload.Month, payload.Day, payload.Year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if netWorth == nil {
		netWorth = &models.NetWorth{
			ID:        uuid.New(),
			UserID:    userID,
			Month:     payload.Month,
			Day:       payload.Day,
			Year:      payload.Year,
			CreatedAt: time.Now(),
		}
	}
	netWorth.Amount = payload.Amount

	if err := h.netWorthRepo.Save(netWorth); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"net_worth": netWorth})
}

func (h *NetWorthHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	netWorths, err := h.netWorthRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"net_worths": netWorths})
}
