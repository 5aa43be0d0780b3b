package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wallet-core.backend/internal/domain/entities"
	domainerrors "wallet-core.backend/internal/domain/errors"
	"wallet-core.backend/internal/interfaces/http/middleware"
	"wallet-core.backend/internal/interfaces/http/response"
	"wallet-core.backend/internal/usecases"
)

// ApiKeyHandler handles API key lifecycle endpoints
type ApiKeyHandler struct {
	apiKeyUsecase *usecases.ApiKeyUsecase
}

// NewApiKeyHandler creates a new API key handler
func NewApiKeyHandler(apiKeyUsecase *usecases.ApiKeyUsecase) *ApiKeyHandler {
	return &ApiKeyHandler{
		apiKeyUsecase: apiKeyUsecase,
	}
}

// Create issues a new API key. The plaintext secret appears in this
// response and nowhere else.
// POST /api/v1/api-keys
func (h *ApiKeyHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	key, err := h.apiKeyUsecase.Issue(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, key)
}

// List returns the authenticated user's key records without secrets
// GET /api/v1/api-keys
func (h *ApiKeyHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	keys, err := h.apiKeyUsecase.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, keys)
}

// Rollover replaces an expired key with a fresh one carrying the same
// name and permissions
// POST /api/v1/api-keys/:id/rollover
func (h *ApiKeyHandler) Rollover(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid api key id"))
		return
	}

	var input entities.RolloverApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	key, err := h.apiKeyUsecase.Rollover(c.Request.Context(), keyID, input.Expiry)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, key)
}

// Revoke permanently revokes one of the user's keys
// DELETE /api/v1/api-keys/:id
func (h *ApiKeyHandler) Revoke(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid api key id"))
		return
	}

	if err := h.apiKeyUsecase.Revoke(c.Request.Context(), userID, keyID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "api key revoked"})
}
