package authmw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/agriconnect/pkg/logging"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

const (
	keySub    = "sub"
	keyRole   = "role"
	keyClaims = "claims"
)

// Verifier checks an access token. *tokens.Issuer satisfies it.
type Verifier interface {
	VerifyAccess(token string) (*tokens.Claims, error)
}

type Guard struct {
	Verifier Verifier
}

func NewGuard(v Verifier) *Guard {
	return &Guard{Verifier: v}
}

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid access token and exposes the
// claims to handlers and to the request logger.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearer(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token não fornecido")
		}
		claims, err := g.Verifier.VerifyAccess(raw)
		if err != nil {
			logging.FromContext(c.Request().Context()).Debug("access token rejected", "error", err)
			return echo.NewHTTPError(http.StatusForbidden, "Token inválido ou expirado")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...tokens.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token não fornecido")
			}
			switch claims.Role {
			case tokens.RoleClient, tokens.RoleSeller, tokens.RoleAdmin:
				for _, r := range roles {
					if r == claims.Role {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Acesso negado")
		}
	}
}

func ClaimsFrom(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(keyClaims).(*tokens.Claims)
	return claims, ok && claims != nil
}

func setUserContext(c echo.Context, claims *tokens.Claims) {
	c.Set(keySub, claims.Subject)
	c.Set(keyRole, claims.Role)
	c.Set(keyClaims, claims)

	req := c.Request()
	l := logging.FromContext(req.Context()).With("sub", claims.Subject, "role", string(claims.Role))
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
}
