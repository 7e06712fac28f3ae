package handlers

import (
	"net/http"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/adapters/http/middleware"
	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/usecases/funding"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FundingHandler exposes the hosted funding session endpoints, including the
// unauthenticated payment page's data endpoint.
type FundingHandler struct {
	createUseCase    *funding.CreateUseCase
	getUseCase       *funding.GetUseCase
	listUseCase      *funding.ListByWalletUseCase
	publicGetUseCase *funding.PublicGetUseCase
}

func NewFundingHandler(createUseCase *funding.CreateUseCase, getUseCase *funding.GetUseCase, listUseCase *funding.ListByWalletUseCase, publicGetUseCase *funding.PublicGetUseCase) *FundingHandler {
	return &FundingHandler{createUseCase: createUseCase, getUseCase: getUseCase, listUseCase: listUseCase, publicGetUseCase: publicGetUseCase}
}

// Fund handles POST /api/v1/wallets/:id/fund: it opens a funding session for
// the wallet named by the path.
func (h *FundingHandler) Fund(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	var body dtos.FundWalletCommand
	if !BindJSON(c, &body) {
		return
	}

	cmd := dtos.CreateFundingSessionCommand{
		WalletID:   walletID.String(),
		Amount:     body.Amount,
		SuccessURL: body.SuccessURL,
		CancelURL:  body.CancelURL,
		Metadata:   body.Metadata,
	}
	result, err := h.createUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusCreated, result)
}

// PublicGet handles GET /api/public/funding/sessions/:id. No authentication:
// the session id itself is the capability the payment page holds.
func (h *FundingHandler) PublicGet(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid funding session id")
		return
	}

	result, err := h.publicGetUseCase.Execute(c.Request.Context(), sessionID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// Get handles GET /api/v1/funding/sessions/:id.
func (h *FundingHandler) Get(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid funding session id")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), sessionID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// ListByWallet handles GET /api/v1/wallets/:id/funding-sessions.
func (h *FundingHandler) ListByWallet(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	page := ParsePagination(c)
	result, err := h.listUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), walletID, page.Offset, page.Limit)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.SuccessWithMeta(c, http.StatusOK, result, BuildMeta(page, len(result)))
}
