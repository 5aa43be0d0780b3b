package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"wallet-core.backend/internal/domain/entities"
	domainerrors "wallet-core.backend/internal/domain/errors"
	"wallet-core.backend/internal/interfaces/http/middleware"
	"wallet-core.backend/internal/interfaces/http/response"
	"wallet-core.backend/internal/usecases"
)

// SignatureHeader carries the provider's HMAC over the raw webhook body.
const SignatureHeader = "x-paystack-signature"

// DepositHandler handles deposit and webhook endpoints
type DepositHandler struct {
	depositUsecase *usecases.DepositUsecase
	authUsecase    *usecases.AuthUsecase
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(depositUsecase *usecases.DepositUsecase, authUsecase *usecases.AuthUsecase) *DepositHandler {
	return &DepositHandler{
		depositUsecase: depositUsecase,
		authUsecase:    authUsecase,
	}
}

// Initialize starts a hosted deposit for the authenticated user
// POST /api/v1/deposits/initialize
func (h *DepositHandler) Initialize(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.InitializeDepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	// API key identities have no email in the request context.
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		user, err := h.authUsecase.GetMe(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		email = user.Email
	}

	result, err := h.depositUsecase.InitializeDeposit(c.Request.Context(), userID, email, input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Verify queries the provider for the status of a deposit reference
// GET /api/v1/deposits/verify/:reference
func (h *DepositHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		response.Error(c, domainerrors.BadRequest("reference is required"))
		return
	}

	result, err := h.depositUsecase.VerifyDeposit(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Webhook receives payment-provider events. The signature is checked
// against the raw body before anything is parsed; crediting happens on
// a background worker so the provider gets an immediate acknowledgment.
// POST /api/v1/deposits/webhook
func (h *DepositHandler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("failed to read request body"))
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if err := h.depositUsecase.HandleWebhook(c.Request.Context(), rawBody, signature); err != nil {
		response.Error(c, err)
		return
	}

	var event entities.PaymentEvent
	if json.Unmarshal(rawBody, &event) == nil && event.Event != "" {
		middleware.CountPaymentEvent(event.Event)
	}

	response.Success(c, http.StatusOK, gin.H{"status": true})
}
