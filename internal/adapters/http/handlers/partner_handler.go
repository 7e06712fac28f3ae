// Package handlers - partner admin endpoints. These sit behind AdminAuth,
// never behind ApiKeyAuth (supplement: partner onboarding and
// review is an internal operation, not something a partner does to itself).
package handlers

import (
	"net/http"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/usecases/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartnerHandler exposes the admin-only partner lifecycle endpoints.
type PartnerHandler struct {
	registerUseCase       *partner.RegisterUseCase
	getUseCase            *partner.GetUseCase
	listUseCase           *partner.ListUseCase
	reviewUseCase         *partner.ReviewUseCase
	rotateWebhookSecretUC *partner.RotateWebhookSecretUseCase
}

func NewPartnerHandler(
	registerUseCase *partner.RegisterUseCase,
	getUseCase *partner.GetUseCase,
	listUseCase *partner.ListUseCase,
	reviewUseCase *partner.ReviewUseCase,
	rotateWebhookSecretUC *partner.RotateWebhookSecretUseCase,
) *PartnerHandler {
	return &PartnerHandler{
		registerUseCase:       registerUseCase,
		getUseCase:            getUseCase,
		listUseCase:           listUseCase,
		reviewUseCase:         reviewUseCase,
		rotateWebhookSecretUC: rotateWebhookSecretUC,
	}
}

// Register handles POST /api/admin/partners.
func (h *PartnerHandler) Register(c *gin.Context) {
	var cmd dtos.RegisterPartnerCommand
	if !BindJSON(c, &cmd) {
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusCreated, result)
}

// Get handles GET /api/admin/partners/:id.
func (h *PartnerHandler) Get(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid partner id")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), partnerID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// List handles GET /api/admin/partners.
func (h *PartnerHandler) List(c *gin.Context) {
	page := ParsePagination(c)

	result, err := h.listUseCase.Execute(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.SuccessWithMeta(c, http.StatusOK, result, BuildMeta(page, len(result)))
}

type reviewPartnerRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject suspend reinstate"`
	Reason   string `json:"reason"`
}

// Review handles POST /api/admin/partners/:id/review.
func (h *PartnerHandler) Review(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid partner id")
		return
	}

	var req reviewPartnerRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.reviewUseCase.Execute(c.Request.Context(), partnerID, partner.Decision(req.Decision), req.Reason)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// RotateWebhookSecret handles POST /api/admin/partners/:id/webhook-secret/rotate.
func (h *PartnerHandler) RotateWebhookSecret(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.BadRequestResponse(c, "invalid partner id")
		return
	}

	result, err := h.rotateWebhookSecretUC.Execute(c.Request.Context(), partnerID)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}
