package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Association struct {
	ID        uint   `gorm:"column:id_associacao;primaryKey;autoIncrement" json:"id_associacao"`
	Nome      string `gorm:"not null"                                      json:"nome"`
	Descricao string `                                                     json:"descricao"`
}

func (Association) TableName() string { return "associacoes" }

type Market struct {
	ID       uint   `gorm:"column:id_feira;primaryKey;autoIncrement" json:"id_feira"`
	Nome     string `gorm:"not null"                                 json:"nome"`
	Endereco string `                                                json:"endereco"`
}

func (Market) TableName() string { return "feiras" }

type Category struct {
	ID   uint   `gorm:"column:id_categoria;primaryKey;autoIncrement" json:"id_categoria"`
	Nome string `gorm:"uniqueIndex;not null"                         json:"nome"`
}

func (Category) TableName() string { return "categorias" }

type Product struct {
	ID            string    `gorm:"column:id_produto;primaryKey;size:36"   json:"id_produto"`
	Nome          string    `gorm:"not null"                               json:"nome"`
	Descricao     string    `                                              json:"descricao"`
	Preco         float64   `gorm:"not null"                               json:"preco"`
	PrecoPromocao *float64  `gorm:"column:preco_promocao"                  json:"preco_promocao"`
	IsPromocao    bool      `gorm:"column:is_promocao;not null;default:false" json:"is_promocao"`
	Disponivel    bool      `gorm:"not null;default:true"                  json:"disponivel"`
	Image         *string   `                                              json:"image"`
	VendedorID    string    `gorm:"column:fk_vendedor;index;not null;size:36" json:"fk_vendedor"`
	Vendedor      *Seller   `gorm:"foreignKey:VendedorID;references:ID"    json:"vendedor,omitempty"`
	CategoriaID   *uint     `gorm:"column:fk_categoria;index"              json:"id_categoria"`
	Categoria     *Category `gorm:"foreignKey:CategoriaID;references:ID"   json:"categoria,omitempty"`
	CreatedAt     time.Time `                                              json:"created_at"`
	UpdatedAt     time.Time `                                              json:"updated_at"`
}

func (Product) TableName() string { return "produtos" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
