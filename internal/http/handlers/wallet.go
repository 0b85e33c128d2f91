package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Wallet returns the caller's balance and card number, lazily allocating
// the card on first access.
func (h *Handler) Wallet(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ctx := c.Request.Context()

	balance, err := h.Ledger.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	cardNumber, err := h.Cards.EnsureCard(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate card"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"card_number": cardNumber,
		"balance":     balance,
	})
}

type transferRequest struct {
	RecipientCardNumber string `json:"recipient_card_number"`
	RecipientEmail      string `json:"recipient_email"`
	Amount              int64  `json:"amount"`
}

// Transfer moves funds from the caller to the recipient resolved by card
// number or email.
func (h *Handler) Transfer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	var recipient service.RecipientRef
	switch {
	case req.RecipientCardNumber != "":
		recipient = service.ByCard(req.RecipientCardNumber)
	case req.RecipientEmail != "":
		recipient = service.ByEmail(req.RecipientEmail)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient required"})
		return
	}

	err := h.Transfers.Transfer(c.Request.Context(), userID, recipient, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		case errors.Is(err, domain.ErrSelfTransfer):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot transfer to own account"})
		case errors.Is(err, domain.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, domain.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "sender not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "transfer failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer successful"})
}

// Transactions returns the caller's ledger history, newest first.
func (h *Handler) Transactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	txs, err := h.Ledger.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}

	c.JSON(http.StatusOK, txs)
}
