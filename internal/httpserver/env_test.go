package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/mercadopago"
	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/internal/service"
	"github.com/Skotchmaster/agriconnect/internal/testutil"
	"github.com/Skotchmaster/agriconnect/pkg/hash"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
	authmw "github.com/Skotchmaster/agriconnect/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/agriconnect/pkg/middleware/logging"
	"github.com/Skotchmaster/agriconnect/pkg/registry"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

var testWebhookSecret = []byte("whsec-http")

// stubPayments answers provider lookups from a fixed table.
type stubPayments map[string]*mercadopago.Payment

func (s stubPayments) Payment(_ context.Context, id string) (*mercadopago.Payment, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, mercadopago.ErrInvalidID
}

type testEnv struct {
	E        *echo.Echo
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Issuer   *tokens.Issuer
	Store    *registry.MemoryStore
	Payments stubPayments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.InitTestDB(t)
	r := repo.New(db)
	iss := tokens.NewIssuer([]byte("access-secret"), []byte("refresh-secret"), time.Hour, 14*24*time.Hour, "1h")
	store := registry.NewMemoryStore()
	hasher := hash.NewHasher(bcrypt.MinCost)
	payments := stubPayments{}

	orders := &service.OrderService{Repo: r}
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = HTTPErrorHandler(false)
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))

	Register(e, &Deps{
		Auth:       &AuthHTTP{Svc: &service.AuthService{Principals: r, Issuer: iss, Hasher: hasher, Registry: store}},
		Orders:     &OrderHTTP{Svc: orders},
		Principals: &PrincipalHTTP{Svc: &service.PrincipalService{Repo: r, Hasher: hasher}},
		Catalog:    &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		Webhook:    &WebhookHTTP{Svc: &service.PaymentService{Secret: testWebhookSecret, Orders: orders, Lookup: payments}},
		Health:     &HealthHTTP{Checks: map[string]Pinger{"db": r}},
		Guard:      authmw.NewGuard(iss),
	})
	return &testEnv{E: e, DB: db, Repo: r, Issuer: iss, Store: store, Payments: payments}
}

// do sends a JSON request through the full router.
func (env *testEnv) do(method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, _ := json.Marshal(b)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) token(t *testing.T, sub, email string, role tokens.Role) string {
	t.Helper()
	tok, err := env.Issuer.IssueAccess(sub, email, role)
	require.NoError(t, err)
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rec.Code, rec.Body.String())
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
