package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/internal/testutil"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

func TestFindPrincipalByEmail(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	testutil.SeedClient(t, db, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	seller := testutil.SeedSeller(t, db, "sitio@example.com")

	p, err := r.FindPrincipalByEmail(ctx, " ANA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, KindClient, p.Kind)
	assert.Equal(t, testutil.CPFAna, p.ID())
	assert.Equal(t, tokens.RoleClient, p.Role())
	assert.NotEmpty(t, p.PasswordHash())

	p, err = r.FindPrincipalByEmail(ctx, "sitio@example.com")
	require.NoError(t, err)
	assert.Equal(t, KindSeller, p.Kind)
	assert.Equal(t, seller.ID, p.ID())
	assert.Equal(t, tokens.RoleSeller, p.Role())
	assert.Equal(t, "vendedor", p.Kind.String())

	_, err = r.FindPrincipalByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEmailUniqueAcrossPrincipals(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	testutil.SeedSeller(t, db, "dup@example.com")

	err := r.CreateClient(ctx, &models.Client{CPF: testutil.CPFAna, Nome: "Ana", Email: "Dup@Example.com", Senha: "x", Tipo: tokens.RoleClient})
	assert.ErrorIs(t, err, ErrEmailTaken)

	require.NoError(t, r.CreateClient(ctx, &models.Client{CPF: testutil.CPFAna, Nome: "Ana", Email: "ana@example.com", Senha: "x", Tipo: tokens.RoleClient}))

	err = r.CreateClient(ctx, &models.Client{CPF: testutil.CPFAna, Nome: "Ana 2", Email: "ana2@example.com", Senha: "x", Tipo: tokens.RoleClient})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = r.CreateSeller(ctx, &models.Seller{Nome: "S", Email: "ana@example.com", Senha: "x", Tipo: tokens.RoleSeller})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = r.UpdateClient(ctx, testutil.CPFAna, map[string]any{"email": "dup@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	c, err := r.UpdateClient(ctx, testutil.CPFAna, map[string]any{"email": "ana@example.com", "nome": "Ana Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", c.Nome)
}

func TestCreateSellerUnknownAssociation(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)

	assoc := uint(77)
	err := r.CreateSeller(context.Background(), &models.Seller{Nome: "S", Email: "s@example.com", Senha: "x", Tipo: tokens.RoleSeller, AssociacaoID: &assoc})
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestCreateOrderWithItems(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	seller := testutil.SeedSeller(t, db, "sitio@example.com")
	market := testutil.SeedMarket(t, db, "Feira do Bairro")
	alface := testutil.SeedProduct(t, db, seller.ID, "Alface", nil)
	tomate := testutil.SeedProduct(t, db, seller.ID, "Tomate", nil)

	order := &models.Order{DataPedido: time.Now().UTC(), FeiraID: market.ID, ClienteCPF: client.CPF, Status: models.OrderPending}
	got, err := r.CreateOrderWithItems(ctx, order, []models.OrderItem{
		{ProdutoID: alface.ID, Quantidade: 2},
		{ProdutoID: tomate.ID, Quantidade: 5},
	})
	require.NoError(t, err)
	require.Len(t, got.Itens, 2)
	assert.Equal(t, "Alface", got.Itens[0].Produto.Nome)
	assert.Equal(t, 5, got.Itens[1].Quantidade)
	require.NotNil(t, got.Cliente)
	assert.Equal(t, client.CPF, got.Cliente.CPF)
	require.NotNil(t, got.Feira)
	assert.Equal(t, "Feira do Bairro", got.Feira.Nome)

	list, err := r.ListOrdersByClient(ctx, client.CPF)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateOrderRollsBackOnMissingProduct(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	seller := testutil.SeedSeller(t, db, "sitio@example.com")
	market := testutil.SeedMarket(t, db, "Feira")
	alface := testutil.SeedProduct(t, db, seller.ID, "Alface", nil)

	order := &models.Order{DataPedido: time.Now().UTC(), FeiraID: market.ID, ClienteCPF: client.CPF, Status: models.OrderPending}
	_, err := r.CreateOrderWithItems(ctx, order, []models.OrderItem{
		{ProdutoID: alface.ID, Quantidade: 1},
		{ProdutoID: "00000000-0000-0000-0000-000000000000", Quantidade: 1},
	})
	require.ErrorIs(t, err, ErrUnknownReference)

	var headers, lines int64
	require.NoError(t, db.Model(&models.Order{}).Count(&headers).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&lines).Error)
	assert.Zero(t, headers)
	assert.Zero(t, lines)

	_, err = r.CreateOrderWithItems(ctx, &models.Order{DataPedido: time.Now().UTC(), FeiraID: 999, ClienteCPF: client.CPF}, []models.OrderItem{{ProdutoID: alface.ID, Quantidade: 1}})
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestAttendancesFollowOrderSellers(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	sitio := testutil.SeedSeller(t, db, "sitio@example.com")
	horta := testutil.SeedSeller(t, db, "horta@example.com")
	market := testutil.SeedMarket(t, db, "Feira")
	alface := testutil.SeedProduct(t, db, sitio.ID, "Alface", nil)
	rucula := testutil.SeedProduct(t, db, sitio.ID, "Rucula", nil)
	mel := testutil.SeedProduct(t, db, horta.ID, "Mel", nil)

	o, err := r.CreateOrderWithItems(ctx, &models.Order{DataPedido: time.Now().UTC(), FeiraID: market.ID, ClienteCPF: client.CPF}, []models.OrderItem{
		{ProdutoID: alface.ID, Quantidade: 1},
		{ProdutoID: rucula.ID, Quantidade: 1},
		{ProdutoID: mel.ID, Quantidade: 2},
	})
	require.NoError(t, err)

	all, err := r.ListAttendances(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, a := range all {
		assert.Equal(t, o.ID, a.PedidoID)
		require.NotNil(t, a.Pedido)
		require.NotNil(t, a.Vendedor)
		assert.Equal(t, a.VendedorID, a.Vendedor.ID)
	}

	own, err := r.ListAttendances(ctx, horta.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "horta@example.com", own[0].Vendedor.Email)

	_, err = r.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	all, err = r.ListAttendances(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateOrderWhitelist(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	testutil.SeedClient(t, db, testutil.CPFBruno, "bruno@example.com", tokens.RoleClient)
	seller := testutil.SeedSeller(t, db, "sitio@example.com")
	m1 := testutil.SeedMarket(t, db, "Feira 1")
	m2 := testutil.SeedMarket(t, db, "Feira 2")
	p := testutil.SeedProduct(t, db, seller.ID, "Alface", nil)

	o, err := r.CreateOrderWithItems(ctx, &models.Order{DataPedido: time.Now().UTC(), FeiraID: m1.ID, ClienteCPF: client.CPF, Status: models.OrderPending},
		[]models.OrderItem{{ProdutoID: p.ID, Quantidade: 1}})
	require.NoError(t, err)

	upd, err := r.UpdateOrder(ctx, o.ID, map[string]any{"fk_feira": m2.ID, "fk_cliente": testutil.CPFBruno, "status": "PAGO"})
	require.NoError(t, err)
	assert.Equal(t, m2.ID, upd.FeiraID)
	assert.Equal(t, client.CPF, upd.ClienteCPF)
	assert.Equal(t, models.OrderPending, upd.Status)

	_, err = r.UpdateOrder(ctx, o.ID, map[string]any{"fk_feira": uint(404)})
	assert.ErrorIs(t, err, ErrUnknownReference)

	_, err = r.UpdateOrder(ctx, 9999, map[string]any{"fk_feira": m2.ID})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, r.MarkOrderPaid(ctx, o.ID, "mp-123"))
	paid, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, paid.Status)
	require.NotNil(t, paid.PagamentoID)
	assert.Equal(t, "mp-123", *paid.PagamentoID)

	deleted, err := r.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, deleted.ID)
	var lines int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&lines).Error)
	assert.Zero(t, lines)

	_, err = r.GetOrder(ctx, o.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductsOwnedBy(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	s1 := testutil.SeedSeller(t, db, "s1@example.com")
	s2 := testutil.SeedSeller(t, db, "s2@example.com")
	own := testutil.SeedProduct(t, db, s1.ID, "Mel", nil)
	other := testutil.SeedProduct(t, db, s2.ID, "Queijo", nil)

	got, err := r.ProductsOwnedBy(ctx, s1.ID, []string{own.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mel", got[0].Nome)

	got, err = r.ProductsOwnedBy(ctx, s1.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogQueries(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	s := testutil.SeedSeller(t, db, "s@example.com")
	frutas := testutil.SeedCategory(t, db, "Frutas")
	testutil.SeedProduct(t, db, s.ID, "Banana", &frutas.ID)
	testutil.SeedProduct(t, db, s.ID, "Abacate", &frutas.ID)
	testutil.SeedProduct(t, db, s.ID, "Couve", nil)

	n, err := r.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	page, err := r.ListProducts(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Banana", page[0].Nome)

	byCat, err := r.ListProductsByCategory(ctx, "frutas", 0, 10)
	require.NoError(t, err)
	require.Len(t, byCat, 2)
	assert.Equal(t, "Abacate", byCat[0].Nome)

	n, err = r.CountProductsByCategory(ctx, "FRUTAS")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	err = r.CreateCategory(ctx, &models.Category{Nome: "frutas"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	missingCat := uint(123)
	_, err = r.CreateProduct(ctx, &models.Product{Nome: "X", Preco: 1, VendedorID: s.ID, CategoriaID: &missingCat})
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestFavorites(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	c := testutil.SeedClient(t, db, testutil.CPFAna, "ana@example.com", tokens.RoleClient)
	s := testutil.SeedSeller(t, db, "s@example.com")
	p := testutil.SeedProduct(t, db, s.ID, "Mel", nil)

	fav, err := r.AddFavorite(ctx, c.CPF, p.ID)
	require.NoError(t, err)
	require.NotNil(t, fav.Produto)
	assert.Equal(t, "Mel", fav.Produto.Nome)

	_, err = r.AddFavorite(ctx, c.CPF, p.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = r.AddFavorite(ctx, c.CPF, "nope")
	assert.ErrorIs(t, err, ErrUnknownReference)

	list, err := r.ListFavoriteProducts(ctx, c.CPF)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, r.RemoveFavorite(ctx, c.CPF, p.ID))
	assert.ErrorIs(t, r.RemoveFavorite(ctx, c.CPF, p.ID), gorm.ErrRecordNotFound)
}

func TestSearchFallbackAndProductsByIDs(t *testing.T) {
	t.Parallel()
	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()

	s := testutil.SeedSeller(t, db, "sitio@example.com")
	tomato := testutil.SeedProduct(t, db, s.ID, "Tomate Cereja", nil)
	testutil.SeedProduct(t, db, s.ID, "Alface", nil)
	honey := testutil.SeedProduct(t, db, s.ID, "Mel", nil)

	total, items, err := r.SearchProducts(ctx, "TOMATE", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, tomato.ID, items[0].ID)

	total, items, err = r.SearchProducts(ctx, "fresco", 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 1)

	got, err := r.ProductsByIDs(ctx, []string{honey.ID, "missing", tomato.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, honey.ID, got[0].ID)
	assert.Equal(t, tomato.ID, got[1].ID)
}
