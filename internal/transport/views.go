package transport

import (
	"strings"

	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type ClientView struct {
	CPF      string      `json:"cpf"`
	Nome     string      `json:"nome"`
	Email    string      `json:"email"`
	Telefone string      `json:"telefone"`
	Tipo     tokens.Role `json:"tipo"`
}

func NewClientView(c *models.Client) *ClientView {
	return &ClientView{CPF: c.CPF, Nome: c.Nome, Email: c.Email, Telefone: c.Telefone, Tipo: c.Tipo}
}

type SellerView struct {
	ID              string      `json:"id_vendedor"`
	Nome            string      `json:"nome"`
	Email           string      `json:"email"`
	Telefone        string      `json:"telefone"`
	EnderecoVenda   string      `json:"endereco_venda"`
	TipoVendedor    string      `json:"tipo_vendedor"`
	TipoDocumento   string      `json:"tipo_documento"`
	NumeroDocumento string      `json:"numero_documento"`
	Associacao      *uint       `json:"associacao"`
	Tipo            tokens.Role `json:"tipo"`
}

func NewSellerView(s *models.Seller) *SellerView {
	return &SellerView{
		ID:              s.ID,
		Nome:            s.Nome,
		Email:           s.Email,
		Telefone:        s.Telefone,
		EnderecoVenda:   s.EnderecoVenda,
		TipoVendedor:    s.TipoVendedor,
		TipoDocumento:   s.TipoDocumento,
		NumeroDocumento: s.NumeroDocumento,
		Associacao:      s.AssociacaoID,
		Tipo:            s.Tipo,
	}
}

type LoginResponse struct {
	Token        string      `json:"token"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    string      `json:"expiresIn"`
	Cliente      *ClientView `json:"cliente,omitempty"`
	Vendedor     *SellerView `json:"vendedor,omitempty"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type DeletedOrderResponse struct {
	Message string        `json:"message"`
	Pedido  *models.Order `json:"pedido"`
}

type CountResponse struct {
	Total int64 `json:"total"`
}

type SearchResponse struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

type CPFCheckResponse struct {
	CPF    string `json:"cpf"`
	Valido bool   `json:"valido"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

// CleanImage drops image values that are neither inline data nor a direct
// http(s) link (redirectors and placeholder services).
func CleanImage(img *string) *string {
	if img == nil {
		return nil
	}
	s := *img
	if strings.HasPrefix(s, "data:image") {
		return img
	}
	if strings.HasPrefix(s, "http") && !strings.Contains(s, "google.com/url") && !strings.Contains(s, "placeholder.com") {
		return img
	}
	return nil
}

func CleanProducts(ps []models.Product) []models.Product {
	for i := range ps {
		ps[i].Image = CleanImage(ps[i].Image)
	}
	return ps
}

func CleanItems(items []models.OrderItem) []models.OrderItem {
	for i := range items {
		if items[i].Produto != nil {
			items[i].Produto.Image = CleanImage(items[i].Produto.Image)
		}
	}
	return items
}
