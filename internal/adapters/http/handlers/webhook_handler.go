package handlers

import (
	"io"
	"net/http"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/application/usecases/funding"
	infragateway "github.com/Haleralex/payflow/internal/infrastructure/gateway"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives inbound signed events from the card processors.
// The gateway is named by the path; its signature is checked against the raw
// body before any JSON is parsed, so a tampered payload never reaches the
// use case layer.
type WebhookHandler struct {
	registry       *infragateway.Registry
	processUseCase *funding.ProcessGatewayEventUseCase
}

func NewWebhookHandler(registry *infragateway.Registry, processUseCase *funding.ProcessGatewayEventUseCase) *WebhookHandler {
	return &WebhookHandler{registry: registry, processUseCase: processUseCase}
}

// HandleGatewayEvent handles POST /api/v1/webhooks/:gateway.
func (h *WebhookHandler) HandleGatewayEvent(c *gin.Context) {
	gatewayName := c.Param("gateway")
	gw, signatureHdr, ok := h.registry.Resolve(gatewayName)
	if !ok {
		common.Error(c, http.StatusNotFound, &common.APIError{Kind: "not_found", Message: "unknown gateway"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.BadRequestResponse(c, "failed to read request body")
		return
	}

	event, err := gw.VerifyWebhook(c.Request.Context(), body, c.GetHeader(signatureHdr))
	if err != nil {
		common.BadRequestResponse(c, "webhook signature verification failed")
		return
	}

	if err := h.processUseCase.Execute(c.Request.Context(), event, gatewayName); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
