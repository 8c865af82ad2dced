package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/agriconnect/internal/service"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
)

type WebhookHTTP struct {
	Svc *service.PaymentService
}

func (h *WebhookHTTP) MercadoPago(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.mercadopago")

	dataID := c.QueryParam("data.id")
	req := c.Request()
	if err := h.Svc.Verify(req.Header.Get("x-signature"), req.Header.Get("x-request-id"), dataID); err != nil {
		return respond(l, "webhook_error", err)
	}

	var n transport.WebhookNotification
	if err := c.Bind(&n); err != nil {
		return badRequest(l, "webhook_error", "Corpo da requisição inválido", err)
	}
	if n.Type == "" {
		n.Type = c.QueryParam("type")
	}

	if err := h.Svc.Handle(ctx, dataID, n); err != nil {
		return respond(l, "webhook_error", err)
	}
	return c.JSON(http.StatusOK, transport.WebhookAck{Received: true})
}
