package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/internal/service"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "Corpo da requisição inválido", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Senha)
	if err != nil {
		return respond(l, "login_error", err)
	}

	out := transport.LoginResponse{
		Token:        res.AccessToken,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
	}
	switch res.Principal.Kind {
	case repo.KindClient:
		out.Cliente = transport.NewClientView(res.Principal.Client)
	case repo.KindSeller:
		out.Vendedor = transport.NewSellerView(res.Principal.Seller)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "refresh_error", "Corpo da requisição inválido", err)
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respond(l, "refresh_error", err)
	}
	return c.JSON(http.StatusOK, transport.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "logout_error", "Corpo da requisição inválido", err)
	}
	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return respond(l, "logout_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logout realizado com sucesso"})
}
