package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDENTE"
	OrderPaid      OrderStatus = "PAGO"
	OrderCancelled OrderStatus = "CANCELADO"
)

type Order struct {
	ID          uint        `gorm:"column:pedido_id;primaryKey;autoIncrement"      json:"pedido_id"`
	DataPedido  time.Time   `gorm:"column:data_pedido;not null"                    json:"data_pedido"`
	FeiraID     uint        `gorm:"column:fk_feira;index;not null"                 json:"fk_feira"`
	ClienteCPF  string      `gorm:"column:fk_cliente;index;not null;size:11"       json:"fk_cliente"`
	Status      OrderStatus `gorm:"type:varchar(16);not null;default:PENDENTE"     json:"status"`
	PagamentoID *string     `gorm:"column:pagamento_id"                            json:"pagamento_id"`
	Itens       []OrderItem `gorm:"foreignKey:PedidoID;references:ID"              json:"produtos_no_pedido,omitempty"`
	Cliente     *Client     `gorm:"foreignKey:ClienteCPF;references:CPF"           json:"cliente,omitempty"`
	Feira       *Market     `gorm:"foreignKey:FeiraID;references:ID"               json:"feira,omitempty"`
	CreatedAt   time.Time   `                                                      json:"created_at"`
	UpdatedAt   time.Time   `                                                      json:"updated_at"`
}

func (Order) TableName() string { return "pedidos" }

type OrderItem struct {
	ID         uint     `gorm:"column:id_item;primaryKey;autoIncrement"     json:"id_item"`
	PedidoID   uint     `gorm:"column:pedido_id;index;not null"             json:"pedido_id"`
	ProdutoID  string   `gorm:"column:produto_id;index;not null;size:36"    json:"produto_id"`
	Quantidade int      `gorm:"not null;check:quantidade > 0"               json:"quantidade"`
	Produto    *Product `gorm:"foreignKey:ProdutoID;references:ID"          json:"produto,omitempty"`
}

func (OrderItem) TableName() string { return "item_pedido" }

// Attendance records that a seller serves an order: one row per seller whose
// products appear in it.
type Attendance struct {
	PedidoID   uint    `gorm:"column:fk_pedido;primaryKey"                json:"fk_pedido"`
	VendedorID string  `gorm:"column:fk_vendedor;primaryKey;size:36"      json:"fk_vendedor"`
	Pedido     *Order  `gorm:"foreignKey:PedidoID;references:ID"          json:"pedido,omitempty"`
	Vendedor   *Seller `gorm:"foreignKey:VendedorID;references:ID"        json:"vendedor,omitempty"`
}

func (Attendance) TableName() string { return "atende_um" }
