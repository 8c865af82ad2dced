package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type Client struct {
	CPF       string      `gorm:"column:cpf;primaryKey;size:11"             json:"cpf"`
	Nome      string      `gorm:"not null"                                  json:"nome"`
	Email     string      `gorm:"uniqueIndex;not null"                      json:"email"`
	Senha     string      `gorm:"column:senha;not null"                     json:"-"`
	Telefone  string      `                                                 json:"telefone"`
	Tipo      tokens.Role `gorm:"type:varchar(16);not null;default:CLIENTE" json:"tipo"`
	CreatedAt time.Time   `                                                 json:"created_at"`
	UpdatedAt time.Time   `                                                 json:"updated_at"`
}

func (Client) TableName() string { return "clientes" }

type Seller struct {
	ID              string       `gorm:"column:id_vendedor;primaryKey;size:36"      json:"id_vendedor"`
	Nome            string       `gorm:"not null"                                   json:"nome"`
	Email           string       `gorm:"uniqueIndex;not null"                       json:"email"`
	Senha           string       `gorm:"column:senha;not null"                      json:"-"`
	Telefone        string       `                                                  json:"telefone"`
	EnderecoVenda   string       `gorm:"column:endereco_venda"                      json:"endereco_venda"`
	TipoVendedor    string       `gorm:"column:tipo_vendedor"                       json:"tipo_vendedor"`
	TipoDocumento   string       `gorm:"column:tipo_documento"                      json:"tipo_documento"`
	NumeroDocumento string       `gorm:"column:numero_documento"                    json:"numero_documento"`
	AssociacaoID    *uint        `gorm:"column:fk_associacao;index"                 json:"fk_associacao"`
	Associacao      *Association `gorm:"foreignKey:AssociacaoID;references:ID"      json:"associacao,omitempty"`
	Tipo            tokens.Role  `gorm:"type:varchar(16);not null;default:VENDEDOR" json:"tipo"`
	CreatedAt       time.Time    `                                                  json:"created_at"`
	UpdatedAt       time.Time    `                                                  json:"updated_at"`
}

func (Seller) TableName() string { return "vendedores" }

func (s *Seller) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Favorite struct {
	ClienteCPF string    `gorm:"column:cliente_cpf;primaryKey;size:11"         json:"cliente_cpf"`
	ProdutoID  string    `gorm:"column:produto_id;primaryKey;size:36"          json:"produto_id"`
	Produto    *Product  `gorm:"foreignKey:ProdutoID;references:ID"            json:"produto,omitempty"`
	Cliente    *Client   `gorm:"foreignKey:ClienteCPF;references:CPF"          json:"-"`
	CreatedAt  time.Time `                                                     json:"created_at"`
}

func (Favorite) TableName() string { return "favorita_um" }
