package handlers

import (
	"net/http"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/adapters/http/middleware"
	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/usecases/apikey"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ApiKeyHandler exposes the partner-facing API key management endpoints.
// Creating a key is itself authenticated by an existing key
// with the right permission — there is no separate credential for minting
// keys.
type ApiKeyHandler struct {
	createUseCase *apikey.CreateUseCase
	revokeUseCase *apikey.RevokeUseCase
	listUseCase   *apikey.ListUseCase
}

func NewApiKeyHandler(createUseCase *apikey.CreateUseCase, revokeUseCase *apikey.RevokeUseCase, listUseCase *apikey.ListUseCase) *ApiKeyHandler {
	return &ApiKeyHandler{createUseCase: createUseCase, revokeUseCase: revokeUseCase, listUseCase: listUseCase}
}

// Create handles POST /api/v1/api-keys. The response's "secret" field is the
// only time the plaintext secret is ever returned.
func (h *ApiKeyHandler) Create(c *gin.Context) {
	var cmd dtos.CreateApiKeyCommand
	if !BindJSON(c, &cmd) {
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusCreated, result)
}

// List handles GET /api/v1/api-keys.
func (h *ApiKeyHandler) List(c *gin.Context) {
	result, err := h.listUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c))
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// Revoke handles DELETE /api/v1/api-keys/:id.
func (h *ApiKeyHandler) Revoke(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid api key id")
		return
	}

	if err := h.revokeUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), keyID); err != nil {
		common.HandleDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
