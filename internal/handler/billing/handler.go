package billing

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medagenda/clinic-api/internal/handler"
	billingService "github.com/medagenda/clinic-api/internal/service/billing"
	apperrors "github.com/medagenda/clinic-api/pkg/errors"
	"github.com/medagenda/clinic-api/pkg/metrics"
)

const signatureHeader = "Stripe-Signature"

// maxPayloadBytes bounds webhook bodies; provider events are a few KB.
const maxPayloadBytes = 1 << 20

// Handler terminates billing provider webhooks. Unlike the rest of the
// API it replies with the raw acknowledgment body the provider expects,
// not the standard response envelope.
type Handler struct {
	service billingService.BillingServicer
	metrics *metrics.Metrics
}

func NewHandler(service billingService.BillingServicer, metrics *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: metrics}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/billing", h.HandleWebhook)
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read request body"))
		return
	}

	result, err := h.service.ProcessEvent(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrBadRequest {
			h.metrics.WebhookVerifyFailed.Inc()
		}
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
