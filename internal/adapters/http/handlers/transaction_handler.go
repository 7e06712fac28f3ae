package handlers

import (
	"net/http"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/adapters/http/middleware"
	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/usecases/transaction"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler exposes the transaction-posting and ledger-reading
// endpoints. The per-wallet credit/debit routes and /transfers are sugar
// over the same single posting entry point: each builds a
// PostTransactionCommand and runs it through the orchestrator.
type TransactionHandler struct {
	postUseCase         *transaction.PostUseCase
	getUseCase          *transaction.GetUseCase
	listByWalletUseCase *transaction.ListByWalletUseCase
	listLedgerUseCase   *transaction.ListLedgerEntriesUseCase
}

func NewTransactionHandler(
	postUseCase *transaction.PostUseCase,
	getUseCase *transaction.GetUseCase,
	listByWalletUseCase *transaction.ListByWalletUseCase,
	listLedgerUseCase *transaction.ListLedgerEntriesUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		postUseCase:         postUseCase,
		getUseCase:          getUseCase,
		listByWalletUseCase: listByWalletUseCase,
		listLedgerUseCase:   listLedgerUseCase,
	}
}

// Post handles POST /api/v1/transactions.
func (h *TransactionHandler) Post(c *gin.Context) {
	var cmd dtos.PostTransactionCommand
	if !BindJSON(c, &cmd) {
		return
	}

	result, err := h.postUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusCreated, result)
}

// Credit handles POST /api/v1/wallets/:id/credit.
func (h *TransactionHandler) Credit(c *gin.Context) {
	h.postForWallet(c, "credit")
}

// Debit handles POST /api/v1/wallets/:id/debit.
func (h *TransactionHandler) Debit(c *gin.Context) {
	h.postForWallet(c, "debit")
}

func (h *TransactionHandler) postForWallet(c *gin.Context, txType string) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	var body dtos.WalletMovementCommand
	if !BindJSON(c, &body) {
		return
	}

	cmd := dtos.PostTransactionCommand{
		Type:           txType,
		Amount:         body.Amount,
		CurrencyCode:   body.CurrencyCode,
		Description:    body.Description,
		IdempotencyKey: body.IdempotencyKey,
	}
	if txType == "credit" {
		cmd.ToWalletID = walletID.String()
	} else {
		cmd.FromWalletID = walletID.String()
	}

	result, err := h.postUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusCreated, result)
}

// Transfer handles POST /api/v1/transfers.
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var body dtos.TransferCommand
	if !BindJSON(c, &body) {
		return
	}

	cmd := dtos.PostTransactionCommand{
		Type:           "transfer",
		Amount:         body.Amount,
		CurrencyCode:   body.CurrencyCode,
		FromWalletID:   body.FromWalletID,
		ToWalletID:     body.ToWalletID,
		Description:    body.Description,
		IdempotencyKey: body.IdempotencyKey,
	}

	result, err := h.postUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusCreated, result)
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid transaction id")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), txID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// ListByWallet handles GET /api/v1/wallets/:id/transactions.
func (h *TransactionHandler) ListByWallet(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	page := ParsePagination(c)
	q := dtos.ListTransactionsQuery{Offset: page.Offset, Limit: page.Limit}
	if txType := c.Query("type"); txType != "" {
		q.Type = &txType
	}
	if status := c.Query("status"); status != "" {
		q.Status = &status
	}

	result, err := h.listByWalletUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), walletID, q)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.SuccessWithMeta(c, http.StatusOK, result, BuildMeta(page, len(result.Transactions)))
}

// ListLedgerEntries handles GET /api/v1/wallets/:id/ledger-entries.
func (h *TransactionHandler) ListLedgerEntries(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid wallet id")
		return
	}

	page := ParsePagination(c)
	result, err := h.listLedgerUseCase.Execute(c.Request.Context(), middleware.GetAuthPartnerID(c), walletID, page.Offset, page.Limit)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.SuccessWithMeta(c, http.StatusOK, result, BuildMeta(page, len(result.Entries)))
}
