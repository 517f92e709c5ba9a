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

type TransactionHandler struct {
	transactionRepo *repository.TransactionRepository
}

func NewTransactionHandler(transactionRepo *repository.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{transactionRepo: transactionRepo}
}

// Create adds a manual transaction. It carries no provider transaction
// id, so sync never touches it.
func (h *TransactionHandler) Create(c *gin.Context) {
	var payload struct {
		UserID     string          `json:"user_id"`
		CustomName string          `json:"custom_name"`
		Amount     decimal.Decimal `json:"amount"`
		Date       string          `json:"date"`
		CategoryID *string         `json:"category_id"`
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

	transaction := &models.Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    payload.Amount,
		Date:      payload.Date,
		CreatedAt: time.Now(),
	}
	if payload.CustomName != "" {
		transaction.CustomName = &payload.CustomName
	}
	if payload.CategoryID != nil {
		categoryID, err := uuid.Parse(*payload.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
			return
		}
		transaction.CategoryID = &categoryID
	}

	if err := h.transactionRepo.Create(transaction); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

func (h *TransactionHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	transactions, err := h.transactionRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// Update edits the local-only field group. Provider-sourced fields are
// owned by sync and cannot be edited here.
func (h *TransactionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload struct {
		CustomName *string `json:"custom_name"`
		CategoryID *string `json:"category_id"`
		IsHidden   *bool   `json:"is_hidden"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	transaction, err := h.transactionRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}

	if payload.CustomName != nil {
		transaction.CustomName = payload.CustomName
	}
	if payload.CategoryID != nil {
		categoryID, err := uuid.Parse(*payload.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
			return
		}
		transaction.CategoryID = &categoryID
		transaction.Category = nil
	}
	if payload.IsHidden != nil {
		transaction.IsHidden = *payload.IsHidden
	}
	transaction.IsModified = true

	if err := h.transactionRepo.Save(transaction); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	if err := h.transactionRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}
