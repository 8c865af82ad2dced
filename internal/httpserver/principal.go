package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/agriconnect/internal/service"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
)

type PrincipalHTTP struct {
	Svc *service.PrincipalService
}

func (h *PrincipalHTTP) RegisterClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.register_client")

	var req transport.RegisterClientRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_client_error", "Corpo da requisição inválido", err)
	}
	cl, err := h.Svc.RegisterClient(ctx, req)
	if err != nil {
		return respond(l, "register_client_error", err)
	}
	return c.JSON(http.StatusCreated, transport.NewClientView(cl))
}

func (h *PrincipalHTTP) ValidateCPF(c echo.Context) error {
	cpf, ok := service.ValidateCPF(c.Param("cpf"))
	return c.JSON(http.StatusOK, transport.CPFCheckResponse{CPF: cpf, Valido: ok})
}

func (h *PrincipalHTTP) GetClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.get_client")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	client, err := h.Svc.GetClient(ctx, cl, c.Param("cpf"))
	if err != nil {
		return respond(l, "get_client_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewClientView(client))
}

func (h *PrincipalHTTP) UpdateClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.update_client")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	var req transport.UpdateClientRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_client_error", "Corpo da requisição inválido", err)
	}
	client, err := h.Svc.UpdateClient(ctx, cl, c.Param("cpf"), req)
	if err != nil {
		return respond(l, "update_client_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewClientView(client))
}

func (h *PrincipalHTTP) DeleteClient(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.delete_client")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	if _, err := h.Svc.DeleteClient(ctx, cl, c.Param("cpf")); err != nil {
		return respond(l, "delete_client_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Cliente deletado com sucesso"})
}

func (h *PrincipalHTTP) AddFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.add_favorite")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	var req transport.FavoriteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_favorite_error", "Corpo da requisição inválido", err)
	}
	fav, err := h.Svc.AddFavorite(ctx, cl, c.Param("cpf"), req)
	if err != nil {
		return respond(l, "add_favorite_error", err)
	}
	return c.JSON(http.StatusOK, fav)
}

func (h *PrincipalHTTP) ListFavorites(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.list_favorites")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.ListFavorites(ctx, cl, c.Param("cpf"))
	if err != nil {
		return respond(l, "list_favorites_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

// RemoveFavorite takes produto_id from the query string or the body.
func (h *PrincipalHTTP) RemoveFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.remove_favorite")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	productID := strings.TrimSpace(c.QueryParam("produto_id"))
	if productID == "" {
		var req transport.FavoriteRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "remove_favorite_error", "Corpo da requisição inválido", err)
		}
		productID = req.ProdutoID
	}
	if err := h.Svc.RemoveFavorite(ctx, cl, c.Param("cpf"), productID); err != nil {
		return respond(l, "remove_favorite_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Favorito removido com sucesso"})
}

func (h *PrincipalHTTP) RegisterSeller(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.register_seller")

	var req transport.RegisterSellerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_seller_error", "Corpo da requisição inválido", err)
	}
	v, err := h.Svc.RegisterSeller(ctx, req)
	if err != nil {
		return respond(l, "register_seller_error", err)
	}
	return c.JSON(http.StatusCreated, transport.NewSellerView(v))
}

func (h *PrincipalHTTP) ListSellers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.list_sellers")

	sellers, err := h.Svc.ListSellers(ctx)
	if err != nil {
		return respond(l, "list_sellers_error", err)
	}
	out := make([]*transport.SellerView, len(sellers))
	for i := range sellers {
		out[i] = transport.NewSellerView(&sellers[i])
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PrincipalHTTP) GetSeller(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.get_seller")

	v, err := h.Svc.GetSeller(ctx, c.Param("id"))
	if err != nil {
		return respond(l, "get_seller_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSellerView(v))
}

func (h *PrincipalHTTP) UpdateSeller(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.update_seller")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	var req transport.UpdateSellerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_seller_error", "Corpo da requisição inválido", err)
	}
	v, err := h.Svc.UpdateSeller(ctx, cl, c.Param("id"), req)
	if err != nil {
		return respond(l, "update_seller_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSellerView(v))
}

func (h *PrincipalHTTP) DeleteSeller(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "principal.delete_seller")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	if _, err := h.Svc.DeleteSeller(ctx, cl, c.Param("id")); err != nil {
		return respond(l, "delete_seller_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Vendedor deletado com sucesso"})
}
