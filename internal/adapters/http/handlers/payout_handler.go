package handlers

import (
	"net/http"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/adapters/http/middleware"
	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/usecases/payout"
	"github.com/gin-gonic/gin"
)

// PayoutHandler exposes the external payout endpoint.
type PayoutHandler struct {
	createUseCase *payout.CreateUseCase
}

func NewPayoutHandler(createUseCase *payout.CreateUseCase) *PayoutHandler {
	return &PayoutHandler{createUseCase: createUseCase}
}

// Create handles POST /api/v1/payouts.
func (h *PayoutHandler) Create(c *gin.Context) {
	var cmd dtos.CreatePayoutCommand
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
