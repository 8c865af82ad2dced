package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/internal/testutil"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

func TestClientEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/clientes", map[string]string{
		"cpf": testutil.CPFAna, "nome": "Ana", "email": "ana@example.com", "telefone": "11999990000", "senha": "segredo1",
	}, "")
	expect(t, rec, http.StatusCreated)
	view := decode[transport.ClientView](t, rec)
	assert.Equal(t, tokens.RoleClient, view.Tipo)
	assert.NotContains(t, rec.Body.String(), "segredo1")

	rec = env.do(http.MethodPost, "/clientes", map[string]string{
		"cpf": testutil.CPFBruno, "nome": "Bruno", "email": "ana@example.com", "telefone": "11999990000", "senha": "segredo1",
	}, "")
	expect(t, rec, http.StatusConflict)

	rec = env.do(http.MethodGet, "/clientes/validar-cpf/529.982.247-25", nil, "")
	expect(t, rec, http.StatusOK)
	check := decode[transport.CPFCheckResponse](t, rec)
	assert.True(t, check.Valido)
	assert.Equal(t, testutil.CPFAna, check.CPF)

	ana := env.token(t, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	other := env.token(t, testutil.CPFBruno, "bruno@example.com", tokens.RoleClient)
	admin := env.token(t, testutil.CPFAdmin, "admin@example.com", tokens.RoleAdmin)

	expect(t, env.do(http.MethodGet, "/clientes/"+testutil.CPFAna, nil, ""), http.StatusUnauthorized)
	expect(t, env.do(http.MethodGet, "/clientes/"+testutil.CPFAna, nil, other), http.StatusForbidden)
	expect(t, env.do(http.MethodGet, "/clientes/"+testutil.CPFAna, nil, admin), http.StatusOK)

	rec = env.do(http.MethodPut, "/clientes/"+testutil.CPFAna, map[string]string{"telefone": "11900001111"}, ana)
	expect(t, rec, http.StatusOK)
	assert.Equal(t, "11900001111", decode[transport.ClientView](t, rec).Telefone)

	expect(t, env.do(http.MethodDelete, "/clientes/"+testutil.CPFAna, nil, ana), http.StatusOK)
	expect(t, env.do(http.MethodGet, "/clientes/"+testutil.CPFAna, nil, admin), http.StatusNotFound)
}

func TestFavoriteEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	testutil.SeedClient(t, env.DB, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	s := testutil.SeedSeller(t, env.DB, "sitio@example.com")
	p := testutil.SeedProduct(t, env.DB, s.ID, "Mel", nil)
	ana := env.token(t, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	path := "/clientes/" + testutil.CPFAna + "/favoritos"

	expect(t, env.do(http.MethodPut, path, map[string]string{"produto_id": p.ID}, ana), http.StatusOK)
	rec := env.do(http.MethodPut, path, map[string]string{"produto_id": p.ID}, ana)
	expect(t, rec, http.StatusConflict)
	assert.Equal(t, "Produto já está nos favoritos", errorOf(t, rec))

	rec = env.do(http.MethodGet, path, nil, ana)
	expect(t, rec, http.StatusOK)
	require.Len(t, decode[[]models.Product](t, rec), 1)

	expect(t, env.do(http.MethodDelete, path+"?produto_id="+p.ID, nil, ana), http.StatusOK)
	rec = env.do(http.MethodDelete, path, map[string]string{"produto_id": p.ID}, ana)
	expect(t, rec, http.StatusNotFound)
	assert.Equal(t, "Favorito não encontrado", errorOf(t, rec))
}

func TestSellerEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/vendedor/cadastro", map[string]any{
		"nome": "Sitio Boa Vista", "email": "sitio@example.com", "senha": "segredo1", "telefone": "11988887777",
		"endereco_venda": "Estrada Velha, km 3", "tipo_documento": "CPF", "numero_documento": testutil.CPFCarla,
	}, "")
	expect(t, rec, http.StatusCreated)
	v := decode[transport.SellerView](t, rec)
	assert.Equal(t, tokens.RoleSeller, v.Tipo)

	rec = env.do(http.MethodGet, "/vendedor", nil, "")
	expect(t, rec, http.StatusOK)
	assert.Len(t, decode[[]transport.SellerView](t, rec), 1)
	expect(t, env.do(http.MethodGet, "/vendedor/"+v.ID, nil, ""), http.StatusOK)
	expect(t, env.do(http.MethodGet, "/vendedor/unknown", nil, ""), http.StatusNotFound)

	self := env.token(t, v.ID, "sitio@example.com", tokens.RoleSeller)
	stranger := env.token(t, "someone-else", "x@example.com", tokens.RoleSeller)

	expect(t, env.do(http.MethodPut, "/vendedor/"+v.ID, map[string]string{"nome": "Outro"}, stranger), http.StatusForbidden)
	rec = env.do(http.MethodPut, "/vendedor/"+v.ID, map[string]string{"nome": "Sitio Novo"}, self)
	expect(t, rec, http.StatusOK)
	assert.Equal(t, "Sitio Novo", decode[transport.SellerView](t, rec).Nome)

	expect(t, env.do(http.MethodDelete, "/vendedor/"+v.ID, nil, self), http.StatusOK)
}
