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

type AccountHandler struct {
	accountRepo     *repository.AccountRepository
	institutionRepo *repository.InstitutionRepository
	providerClient  *provider.Client
}

func NewAccountHandler(
	accountRepo *repository.AccountRepository,
	institutionRepo *repository.InstitutionRepository,
	providerClient *provider.Client,
) *AccountHandler {
	return &AccountHandler{
		accountRepo:     accountRepo,
		institutionRepo: institutionRepo,
		providerClient:  providerClient,
	}
}

func (h *AccountHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	accounts, err := h.accountRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// RefreshBalances fetches current account data from the provider for
// one institution and creates or updates the matching local accounts,
// keyed by provider account id.
func (h *AccountHandler) RefreshBalances(c *gin.Context) {
	institutionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid institution ID"})
		return
	}

	institution, err := h.institutionRepo.GetByID(institutionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "institution not found"})
		return
	}

	resp, err := h.providerClient.GetAccounts(c.Request.Context(), institution.AccessToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	updated := make([]*models.Account, 0, len(resp.Accounts))
	for _, record := range resp.Accounts {
		account, err := h.accountRepo.GetByProviderID(record.AccountID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if account == nil {
			account = &models.Account{
				ID:                uuid.New(),
				UserID:            institution.UserID,
				InstitutionID:     institution.ID,
				ProviderAccountID: record.AccountID,
				CreatedAt:         now,
			}
		}

		account.Name = record.Name
		account.OfficialName = record.OfficialName
		account.PersistentAccountID = record.PersistentAccountID
		account.Type = record.Type
		account.Subtype = record.Subtype
		account.AvailableBalance = record.Balances.Available
		account.CurrentBalance = record.Balances.Current
		account.CreditLimit = record.Balances.Limit
		account.IsoCurrencyCode = record.Balances.IsoCurrencyCode
		account.LastUpdatedDatetime = record.Balances.LastUpdatedDatetime
		account.LastSync = &now

		if err := h.accountRepo.Save(account); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		updated = append(updated, account)
	}

	c.JSON(http.StatusOK, gin.H{"accounts": updated})
}
