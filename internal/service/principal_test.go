package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/internal/testutil"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

func (f *fixture) principals() *PrincipalService {
	return &PrincipalService{Repo: f.Repo, Hasher: f.Hasher, Events: f.Events}
}

func ptr[T any](v T) *T { return &v }

func TestRegisterClientThenLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.principals()
	ctx := context.Background()

	c, err := svc.RegisterClient(ctx, transport.RegisterClientRequest{
		CPF: "529.982.247-25", Nome: " Ana ", Email: "Ana@Example.com", Telefone: "11999990000", Senha: "segredo1",
	})
	require.NoError(t, err)
	assert.Equal(t, testutil.CPFAna, c.CPF)
	assert.Equal(t, "Ana", c.Nome)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.Equal(t, tokens.RoleClient, c.Tipo)
	assert.NotEqual(t, "segredo1", c.Senha)

	res, err := f.auth().Login(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, testutil.CPFAna, res.Principal.ID())

	_, err = svc.RegisterClient(ctx, transport.RegisterClientRequest{
		CPF: testutil.CPFBruno, Nome: "Bruno", Email: "ana@example.com", Telefone: "11999990000", Senha: "segredo1",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.RegisterClient(ctx, transport.RegisterClientRequest{
		CPF: "12345678900", Nome: "Bad", Email: "bad@example.com", Telefone: "11999990000", Senha: "segredo1",
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"client_registered", "user_logged_in"}, f.Events.types())
}

func TestRegisterSeller(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.principals()
	ctx := context.Background()
	testutil.SeedClient(t, f.DB, testutil.CPFAna, "ana@example.com", tokens.RoleClient)

	req := transport.RegisterSellerRequest{
		Nome: "Sitio Boa Vista", Email: "sitio@example.com", Senha: "segredo1",
		Telefone: "11988887777", TipoDocumento: "CNPJ", NumeroDocumento: "11222333000181",
	}
	v, err := svc.RegisterSeller(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, tokens.RoleSeller, v.Tipo)

	req.Email = "ana@example.com"
	_, err = svc.RegisterSeller(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)

	req.Email = "outro@example.com"
	req.FkAssociacao = ptr(uint(42))
	_, err = svc.RegisterSeller(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClientSelfOrAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.principals()
	ctx := context.Background()
	testutil.SeedClient(t, f.DB, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	testutil.SeedClient(t, f.DB, testutil.CPFBruno, "bruno@example.com", tokens.RoleClient)
	seller := testutil.SeedSeller(t, f.DB, "sitio@example.com")

	ana := claimsFor(testutil.CPFAna, tokens.RoleClient)
	admin := claimsFor(testutil.CPFAdmin, tokens.RoleAdmin)

	c, err := svc.GetClient(ctx, ana, testutil.CPFAna)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", c.Email)

	_, err = svc.GetClient(ctx, ana, testutil.CPFBruno)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.GetClient(ctx, claimsFor(seller.ID, tokens.RoleSeller), testutil.CPFAna)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetClient(ctx, admin, testutil.CPFBruno)
	require.NoError(t, err)
	_, err = svc.GetClient(ctx, admin, testutil.CPFUnused)
	assert.ErrorIs(t, err, ErrNotFound)

	up, err := svc.UpdateClient(ctx, ana, testutil.CPFAna, transport.UpdateClientRequest{Nome: ptr("Ana Maria"), Senha: ptr("nova-senha")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", up.Nome)
	_, err = f.auth().Login(ctx, "ana@example.com", "nova-senha")
	require.NoError(t, err)

	_, err = svc.UpdateClient(ctx, ana, testutil.CPFAna, transport.UpdateClientRequest{Email: ptr("bruno@example.com")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.DeleteClient(ctx, admin, testutil.CPFBruno)
	require.NoError(t, err)
	_, err = svc.GetClient(ctx, admin, testutil.CPFBruno)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSellerSelfOrAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.principals()
	ctx := context.Background()
	a := testutil.SeedSeller(t, f.DB, "a@example.com")
	b := testutil.SeedSeller(t, f.DB, "b@example.com")

	list, err := svc.ListSellers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.UpdateSeller(ctx, claimsFor(a.ID, tokens.RoleSeller), b.ID, transport.UpdateSellerRequest{Nome: ptr("X")})
	assert.ErrorIs(t, err, ErrForbidden)

	up, err := svc.UpdateSeller(ctx, claimsFor(a.ID, tokens.RoleSeller), a.ID, transport.UpdateSellerRequest{EnderecoVenda: ptr("Feira Central, banca 3")})
	require.NoError(t, err)
	assert.Equal(t, "Feira Central, banca 3", up.EnderecoVenda)

	_, err = svc.DeleteSeller(ctx, claimsFor(testutil.CPFAdmin, tokens.RoleAdmin), b.ID)
	require.NoError(t, err)
	_, err = svc.GetSeller(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavorites(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.principals()
	ctx := context.Background()
	testutil.SeedClient(t, f.DB, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	s := testutil.SeedSeller(t, f.DB, "sitio@example.com")
	p := testutil.SeedProduct(t, f.DB, s.ID, "Mel", nil)
	ana := claimsFor(testutil.CPFAna, tokens.RoleClient)

	fav, err := svc.AddFavorite(ctx, ana, testutil.CPFAna, transport.FavoriteRequest{ProdutoID: p.ID})
	require.NoError(t, err)
	require.NotNil(t, fav.Produto)
	assert.Equal(t, "Mel", fav.Produto.Nome)

	_, err = svc.AddFavorite(ctx, ana, testutil.CPFAna, transport.FavoriteRequest{ProdutoID: p.ID})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Produto já está nos favoritos", message(err))

	_, err = svc.AddFavorite(ctx, ana, testutil.CPFAna, transport.FavoriteRequest{ProdutoID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListFavorites(ctx, claimsFor(testutil.CPFAdmin, tokens.RoleAdmin), testutil.CPFAna)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := svc.ListFavorites(ctx, ana, testutil.CPFAna)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	require.NoError(t, svc.RemoveFavorite(ctx, ana, testutil.CPFAna, p.ID))
	err = svc.RemoveFavorite(ctx, ana, testutil.CPFAna, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Favorito não encontrado", message(err))

	var n int64
	require.NoError(t, f.DB.Model(&models.Favorite{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestValidateCPF(t *testing.T) {
	t.Parallel()
	clean, ok := ValidateCPF("529.982.247-25")
	assert.Equal(t, testutil.CPFAna, clean)
	assert.True(t, ok)

	_, ok = ValidateCPF("111.111.111-11")
	assert.False(t, ok)
}
