package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/agriconnect/internal/service"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
	authmw "github.com/Skotchmaster/agriconnect/pkg/middleware/auth"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func claims(c echo.Context) (*tokens.Claims, error) {
	cl, ok := authmw.ClaimsFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Token não fornecido")
	}
	return cl, nil
}

func uintParam(c echo.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "Corpo da requisição inválido", err)
	}

	order, err := h.Svc.CreateOrder(ctx, cl, req)
	if err != nil {
		return respond(l, "create_order_error", err)
	}
	order.Itens = transport.CleanItems(order.Itens)
	l.Info("create_order_success", "pedido_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	orders, err := h.Svc.ListOrders(ctx, cl)
	if err != nil {
		return respond(l, "list_orders_error", err)
	}
	for i := range orders {
		orders[i].Itens = transport.CleanItems(orders[i].Itens)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) ListAttendances(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_attendances")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	links, err := h.Svc.ListAttendances(ctx, cl)
	if err != nil {
		return respond(l, "list_attendances_error", err)
	}
	return c.JSON(http.StatusOK, links)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "get_order_error", "ID do pedido inválido", nil)
	}

	order, err := h.Svc.GetOrder(ctx, cl, id)
	if err != nil {
		return respond(l, "get_order_error", err)
	}
	order.Itens = transport.CleanItems(order.Itens)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "update_order_error", "ID do pedido inválido", nil)
	}
	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_error", "Corpo da requisição inválido", err)
	}

	order, err := h.Svc.UpdateOrder(ctx, cl, id, req)
	if err != nil {
		return respond(l, "update_order_error", err)
	}
	order.Itens = transport.CleanItems(order.Itens)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "delete_order_error", "ID do pedido inválido", nil)
	}

	order, err := h.Svc.DeleteOrder(ctx, cl, id)
	if err != nil {
		return respond(l, "delete_order_error", err)
	}
	l.Info("delete_order_success", "pedido_id", id)
	return c.JSON(http.StatusOK, transport.DeletedOrderResponse{Message: "Pedido deletado com sucesso", Pedido: order})
}
