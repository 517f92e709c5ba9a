package handlers

import (
	"net/http"
	"time"

	"finance-aggregation-backend/internal/models"
	"finance-aggregation-backend/internal/provider"
	"finance-aggregation-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InstitutionHandler struct {
	institutionRepo *repository.InstitutionRepository
	providerClient  *provider.Client
}

func NewInstitutionHandler(institutionRepo *repository.InstitutionRepository, providerClient *provider.Client) *InstitutionHandler {
	return &InstitutionHandler{
		institutionRepo: institutionRepo,
		providerClient:  providerClient,
	}
}

// CreateLinkToken starts the provider link flow for a user.
func (h *InstitutionHandler) CreateLinkToken(c *gin.Context) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if _, err := uuid.Parse(payload.UserID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	resp, err := h.providerClient.CreateLinkToken(c.Request.Context(), payload.UserID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExchangePublicToken completes linking: it trades the public token for
// an access token and creates the institution that owns it. The access
// token is stored but never serialized back to clients.
func (h *InstitutionHandler) ExchangePublicToken(c *gin.Context) {
	var payload struct {
		UserID      string `json:"user_id"`
		PublicToken string `json:"public_token"`
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

	resp, err := h.providerClient.ExchangePublicToken(c.Request.Context(), payload.PublicToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	institution := &models.Institution{
		ID:             uuid.New(),
		UserID:         userID,
		ProviderItemID: resp.ItemID,
		AccessToken:    resp.AccessToken,
		CreatedAt:      time.Now(),
	}
	if err := h.institutionRepo.Create(institution); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"institution": institution})
}

func (h *InstitutionHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	institutions, err := h.institutionRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"institutions": institutions})
}

// Delete removes an institution and cascades to its accounts and
// transactions.
func (h *InstitutionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid institution ID"})
		return
	}

	if err := h.institutionRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "institution deleted"})
}
