package handlers

import (
	"net/http"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/adapters/http/middleware"
	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/usecases/wallet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler exposes the wallet endpoints of the partner-facing API.
type WalletHandler struct {
	createUseCase        *wallet.CreateUseCase
	getUseCase           *wallet.GetUseCase
	getByExternalUseCase *wallet.GetByExternalIDUseCase
	listUseCase          *wallet.ListUseCase
	updateStatusUseCase  *wallet.UpdateStatusUseCase
}

func NewWalletHandler(
	createUseCase *wallet.CreateUseCase,
	getUseCase *wallet.GetUseCase,
	getByExternalUseCase *wallet.GetByExternalIDUseCase,
	listUseCase *wallet.ListUseCase,
	updateStatusUseCase *wallet.UpdateStatusUseCase,
) *WalletHandler {
	return &WalletHandler{
		createUseCase:        createUseCase,
		getUseCase:           getUseCase,
		getByExternalUseCase: getByExternalUseCase,
		listUseCase:          listUseCase,
		updateStatusUseCase:  updateStatusUseCase,
	}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	var cmd dtos.CreateWalletCommand
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

// Get handles GET /api/v1/wallets/:id.
func (h *WalletHandler) Get(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), walletID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	page := ParsePagination(c)
	q := dtos.ListWalletsQuery{Offset: page.Offset, Limit: page.Limit}
	if currency := c.Query("currency"); currency != "" {
		q.CurrencyCode = &currency
	}
	if status := c.Query("status"); status != "" {
		q.Status = &status
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), q)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.SuccessWithMeta(c, http.StatusOK, result, BuildMeta(page, len(result.Wallets)))
}

// GetByExternal handles GET /api/v1/wallets/external/:externalId.
func (h *WalletHandler) GetByExternal(c *gin.Context) {
	result, err := h.getByExternalUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), c.Param("externalId"))
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// Balance handles GET /api/v1/wallets/:id/balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), walletID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, dtos.WalletBalanceDTO{Balance: result.Balance, CurrencyCode: result.CurrencyCode})
}

type walletStatusActionRequest struct {
	Reason string `json:"reason"`
}

// Suspend handles POST /api/v1/wallets/:id/suspend.
func (h *WalletHandler) Suspend(c *gin.Context) {
	h.applyAction(c, wallet.ActionSuspend)
}

// Activate handles POST /api/v1/wallets/:id/activate.
func (h *WalletHandler) Activate(c *gin.Context) {
	h.applyAction(c, wallet.ActionActivate)
}

// Close handles POST /api/v1/wallets/:id/close.
func (h *WalletHandler) Close(c *gin.Context) {
	h.applyAction(c, wallet.ActionClose)
}

func (h *WalletHandler) applyAction(c *gin.Context, action wallet.Action) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	var req walletStatusActionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.updateStatusUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), walletID, action, req.Reason)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}
