package transport

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type OrderLine struct {
	ProdutoID  string `json:"produto_id"`
	IDProduto  string `json:"id_produto"`
	Quantidade int    `json:"quantidade"`
}

// ProductRef accepts either produto_id or id_produto.
func (l OrderLine) ProductRef() string {
	if l.ProdutoID != "" {
		return strings.TrimSpace(l.ProdutoID)
	}
	return strings.TrimSpace(l.IDProduto)
}

func (l OrderLine) Validate() error {
	if l.ProductRef() == "" {
		return fmt.Errorf("produto_id: cannot be blank")
	}
	return validation.ValidateStruct(&l,
		validation.Field(&l.Quantidade, validation.Required, validation.Min(1)),
	)
}

type CreateOrderRequest struct {
	DataPedido string      `json:"data_pedido"`
	FkFeira    uint        `json:"fk_feira"`
	Produtos   []OrderLine `json:"produtos"`
	CPFCliente string      `json:"cpf_cliente"`
}

func (r CreateOrderRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.FkFeira, validation.Required),
		validation.Field(&r.DataPedido, validation.By(dateRule)),
	); err != nil {
		return err
	}
	for i, line := range r.Produtos {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("produtos[%d]: %w", i, err)
		}
	}
	return nil
}

type UpdateOrderRequest struct {
	DataPedido *string `json:"data_pedido"`
	FkFeira    *uint   `json:"fk_feira"`
}

func (r UpdateOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DataPedido, validation.By(dateRule)),
		validation.Field(&r.FkFeira, validation.Min(uint(1))),
	)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and plain dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func dateRule(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s == "" {
		return nil
	}
	if _, err := ParseDate(s); err != nil {
		return fmt.Errorf("must be a date (YYYY-MM-DD or RFC 3339)")
	}
	return nil
}

type RegisterClientRequest struct {
	CPF      string `json:"cpf"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Senha    string `json:"senha"`
}

func (r RegisterClientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CPF, validation.Required, validation.By(cpfRule)),
		validation.Field(&r.Nome, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Telefone, validation.Required, validation.Length(8, 20)),
		validation.Field(&r.Senha, validation.Required, validation.Length(6, 72)),
	)
}

type UpdateClientRequest struct {
	Nome     *string `json:"nome"`
	Email    *string `json:"email"`
	Telefone *string `json:"telefone"`
	Senha    *string `json:"senha"`
}

func (r UpdateClientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.NilOrNotEmpty, validation.Length(2, 120)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.Telefone, validation.Length(8, 20)),
		validation.Field(&r.Senha, validation.Length(6, 72)),
	)
}

type RegisterSellerRequest struct {
	Nome            string `json:"nome"`
	Email           string `json:"email"`
	Senha           string `json:"senha"`
	Telefone        string `json:"telefone"`
	EnderecoVenda   string `json:"endereco_venda"`
	TipoVendedor    string `json:"tipo_vendedor"`
	TipoDocumento   string `json:"tipo_documento"`
	NumeroDocumento string `json:"numero_documento"`
	FkAssociacao    *uint  `json:"fk_associacao"`
}

func (r RegisterSellerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Senha, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.Telefone, validation.Length(8, 20)),
		validation.Field(&r.TipoDocumento, validation.In("CPF", "CNPJ")),
		validation.Field(&r.FkAssociacao, validation.Min(uint(1))),
	)
}

type UpdateSellerRequest struct {
	Nome            *string `json:"nome"`
	Email           *string `json:"email"`
	Senha           *string `json:"senha"`
	Telefone        *string `json:"telefone"`
	EnderecoVenda   *string `json:"endereco_venda"`
	TipoVendedor    *string `json:"tipo_vendedor"`
	TipoDocumento   *string `json:"tipo_documento"`
	NumeroDocumento *string `json:"numero_documento"`
	FkAssociacao    *uint   `json:"fk_associacao"`
}

func (r UpdateSellerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.NilOrNotEmpty, validation.Length(2, 120)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.Senha, validation.Length(6, 72)),
		validation.Field(&r.Telefone, validation.Length(8, 20)),
		validation.Field(&r.TipoDocumento, validation.In("CPF", "CNPJ")),
		validation.Field(&r.FkAssociacao, validation.Min(uint(1))),
	)
}

type FavoriteRequest struct {
	ProdutoID string `json:"produto_id"`
}

func (r FavoriteRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.ProdutoID, validation.Required))
}

type CreateProductRequest struct {
	Nome          string   `json:"nome"`
	Descricao     string   `json:"descricao"`
	Preco         float64  `json:"preco"`
	PrecoPromocao *float64 `json:"preco_promocao"`
	IsPromocao    bool     `json:"is_promocao"`
	Disponivel    *bool    `json:"disponivel"`
	Image         *string  `json:"image"`
	IDCategoria   *uint    `json:"id_categoria"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.Preco, validation.Required, validation.Min(0.01)),
		validation.Field(&r.PrecoPromocao, validation.Min(0.01)),
		validation.Field(&r.IDCategoria, validation.Min(uint(1))),
	)
}

type UpdateProductRequest struct {
	Nome          *string  `json:"nome"`
	Descricao     *string  `json:"descricao"`
	Preco         *float64 `json:"preco"`
	PrecoPromocao *float64 `json:"preco_promocao"`
	IsPromocao    *bool    `json:"is_promocao"`
	Disponivel    *bool    `json:"disponivel"`
	Image         *string  `json:"image"`
	IDCategoria   *uint    `json:"id_categoria"`
}

func (r UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.NilOrNotEmpty, validation.Length(1, 120)),
		validation.Field(&r.Preco, validation.Min(0.01)),
		validation.Field(&r.PrecoPromocao, validation.Min(0.01)),
		validation.Field(&r.IDCategoria, validation.Min(uint(1))),
	)
}

type CategoryRequest struct {
	Nome string `json:"nome"`
}

func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Nome, validation.Required, validation.Length(2, 60)))
}

type MarketRequest struct {
	Nome     *string `json:"nome"`
	Endereco *string `json:"endereco"`
}

func (r MarketRequest) ValidateCreate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Endereco, validation.Required),
	)
}

func (r MarketRequest) ValidateUpdate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.NilOrNotEmpty, validation.Length(2, 120)),
		validation.Field(&r.Endereco, validation.NilOrNotEmpty),
	)
}

type AssociationRequest struct {
	Nome      *string `json:"nome"`
	Descricao *string `json:"descricao"`
}

func (r AssociationRequest) ValidateCreate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.Required, validation.Length(2, 120)),
	)
}

func (r AssociationRequest) ValidateUpdate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.NilOrNotEmpty, validation.Length(2, 120)),
	)
}

// FlexID accepts an identifier sent either as a JSON string or number.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	*f = FlexID(strings.Trim(s, `"`))
	return nil
}

type WebhookData struct {
	ID FlexID `json:"id"`
}

// WebhookNotification carries only the event kind and the resource id.
// Payment state is never read from it.
type WebhookNotification struct {
	ID     FlexID      `json:"id"`
	Type   string      `json:"type"`
	Action string      `json:"action"`
	Data   WebhookData `json:"data"`
}
