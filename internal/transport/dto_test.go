package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/agriconnect/internal/models"
)

func TestValidCPF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"52998224725", true},
		{"529.982.247-25", true},
		{"12345678909", true},
		{"12345678900", false},
		{"11111111111", false},
		{"1234567890", false},
		{"", false},
		{"abc", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ValidCPF(tt.in))
		})
	}
}

func TestRegisterClientRequestValidate(t *testing.T) {
	t.Parallel()

	ok := RegisterClientRequest{CPF: "52998224725", Nome: "Ana", Email: "ana@example.com", Telefone: "11999990000", Senha: "segredo"}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.CPF = "12345678900"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CPF inválido")

	bad = ok
	bad.Email = "not-an-email"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Senha = ""
	assert.Error(t, bad.Validate())
}

func TestCreateOrderRequestValidate(t *testing.T) {
	t.Parallel()

	req := CreateOrderRequest{FkFeira: 1, DataPedido: "2025-03-01", Produtos: []OrderLine{{IDProduto: "p1", Quantidade: 2}}}
	require.NoError(t, req.Validate())
	assert.Equal(t, "p1", req.Produtos[0].ProductRef())

	req.Produtos[0].Quantidade = 0
	assert.Error(t, req.Validate())

	req.Produtos[0] = OrderLine{Quantidade: 1}
	assert.Error(t, req.Validate())

	req = CreateOrderRequest{Produtos: []OrderLine{{ProdutoID: "p", Quantidade: 1}}}
	assert.Error(t, req.Validate(), "fk_feira required")

	req = CreateOrderRequest{FkFeira: 1, DataPedido: "yesterday", Produtos: []OrderLine{{ProdutoID: "p", Quantidade: 1}}}
	assert.Error(t, req.Validate())
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-03-01T10:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, 13, d.Hour())

	_, err = ParseDate("01/03/2025")
	assert.Error(t, err)
}

func TestCleanImage(t *testing.T) {
	t.Parallel()

	s := func(v string) *string { return &v }
	assert.Nil(t, CleanImage(nil))
	assert.NotNil(t, CleanImage(s("data:image/png;base64,AAA")))
	assert.NotNil(t, CleanImage(s("https://cdn.example.com/a.png")))
	assert.Nil(t, CleanImage(s("https://www.google.com/url?q=x")))
	assert.Nil(t, CleanImage(s("https://via.placeholder.com/150")))
	assert.Nil(t, CleanImage(s("ftp://x")))

	ps := CleanProducts([]models.Product{{Image: s("junk")}})
	assert.Nil(t, ps[0].Image)
}
