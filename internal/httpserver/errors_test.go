package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name    string
		dev     bool
		err     error
		code    int
		message string
		detail  string
	}{
		{name: "http error", err: echo.NewHTTPError(http.StatusForbidden, "Acesso negado"), code: 403, message: "Acesso negado"},
		{name: "http error without message", err: &echo.HTTPError{Code: http.StatusNotFound}, code: 404, message: "Not Found"},
		{name: "duplicate key", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), code: 409, message: "Registro duplicado ou referenciado por outros dados"},
		{name: "missing record", err: gorm.ErrRecordNotFound, code: 404, message: "Registro não encontrado"},
		{name: "unexpected in production", err: errors.New("db exploded"), code: 500, message: internalMessage},
		{name: "unexpected in development", dev: true, err: errors.New("db exploded"), code: 500, message: internalMessage, detail: "db exploded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			HTTPErrorHandler(tc.dev)(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			body := decode[map[string]string](t, rec)
			assert.Equal(t, tc.message, body["error"])
			assert.Equal(t, tc.detail, body["message"])
		})
	}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	expect(t, env.do(http.MethodGet, "/health/live", nil, ""), http.StatusOK)

	rec := env.do(http.MethodGet, "/health/ready", nil, "")
	expect(t, rec, http.StatusOK)
	assert.Equal(t, "up", decode[map[string]string](t, rec)["db"])

	h := &HealthHTTP{Checks: map[string]Pinger{"db": pinger{}, "redis": pinger{err: errors.New("refused")}}}
	e := echo.New()
	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	assert.NoError(t, h.Ready(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, map[string]string{"db": "up", "redis": "down"}, decode[map[string]string](t, rec))

	rec = env.do(http.MethodGet, "/metrics", nil, "")
	expect(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "agriconnect_orders_created_total")
}
