package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/metrics"
	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/internal/mykafka"
	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type OrderStore interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrdersByClient(ctx context.Context, cpf string) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uint, updates map[string]any) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, id uint, paymentRef string) error
	ProductsOwnedBy(ctx context.Context, sellerID string, ids []string) ([]models.Product, error)
	ClientExists(ctx context.Context, cpf string) (bool, error)
	ListAttendances(ctx context.Context, sellerID string) ([]models.Attendance, error)
}

type OrderService struct {
	Repo   OrderStore
	Events EventPublisher
	Now    func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// resolveOwner decides whose order this is from the caller's role.
func (s *OrderService) resolveOwner(ctx context.Context, claims *tokens.Claims, req transport.CreateOrderRequest) (string, error) {
	switch claims.Role {
	case tokens.RoleClient, tokens.RoleAdmin:
		return claims.Subject, nil
	case tokens.RoleSeller:
		cpf := transport.CleanCPF(req.CPFCliente)
		if cpf == "" {
			return "", fail(ErrValidation, "Vendedores devem informar o cpf_cliente no body da requisição.")
		}
		ok, err := s.Repo.ClientExists(ctx, cpf)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fail(ErrValidation, "cpf_cliente não corresponde a um cliente cadastrado")
		}
		return cpf, nil
	default:
		return "", fail(ErrForbidden, "Usuário sem permissão para criar pedidos")
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, claims *tokens.Claims, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_order", "sub", claims.Subject)

	owner, err := s.resolveOwner(ctx, claims, req)
	if err != nil {
		return nil, err
	}
	if len(req.Produtos) == 0 {
		return nil, fail(ErrValidation, "A lista de produtos não pode estar vazia")
	}
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}

	items := make([]models.OrderItem, 0, len(req.Produtos))
	ids := make([]string, 0, len(req.Produtos))
	for _, line := range req.Produtos {
		items = append(items, models.OrderItem{ProdutoID: line.ProductRef(), Quantidade: line.Quantidade})
		ids = append(ids, line.ProductRef())
	}

	if claims.Role == tokens.RoleSeller {
		own, err := s.Repo.ProductsOwnedBy(ctx, claims.Subject, ids)
		if err != nil {
			return nil, err
		}
		if len(own) > 0 {
			names := make([]string, len(own))
			for i, p := range own {
				names[i] = p.Nome
			}
			return nil, fail(ErrValidation, "Vendedores não podem comprar seus próprios produtos: %s", strings.Join(names, ", "))
		}
	}

	date := s.now()
	if req.DataPedido != "" {
		date, _ = transport.ParseDate(req.DataPedido)
	}

	order := &models.Order{
		DataPedido: date,
		FeiraID:    req.FkFeira,
		ClienteCPF: owner,
		Status:     models.OrderPending,
	}
	created, err := s.Repo.CreateOrderWithItems(ctx, order, items)
	if errors.Is(err, repo.ErrUnknownReference) {
		l.Warn("create_order_error", "status", 400, "reason", "unknown reference", "error", err)
		return nil, fail(ErrValidation, "Referência inválida no pedido: %s", strings.TrimPrefix(err.Error(), repo.ErrUnknownReference.Error()+": "))
	}
	if err != nil {
		l.Error("create_order_error", "status", 500, "error", err)
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	l.Info("order created", "pedido_id", created.ID, "owner", owner, "items", len(items))
	publish(ctx, s.Events, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(created.ID), 10), "order_created", map[string]any{
		"pedido_id":  created.ID,
		"fk_cliente": owner,
		"fk_feira":   created.FeiraID,
		"itens":      len(items),
		"criado_por": claims.Subject,
	})
	return created, nil
}

// owned loads the order and checks the caller owns it.
func (s *OrderService) owned(ctx context.Context, claims *tokens.Claims, id uint, denied string) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "Pedido não encontrado")
	}
	if err != nil {
		return nil, err
	}
	if o.ClienteCPF != claims.Subject {
		logging.FromContext(ctx).Warn("order access denied", "pedido_id", id, "sub", claims.Subject)
		return nil, fail(ErrForbidden, "Acesso negado - %s", denied)
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, claims *tokens.Claims) ([]models.Order, error) {
	orders, err := s.Repo.ListOrdersByClient(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListAttendances lists seller/order links. Admins see all of them, sellers
// only their own.
func (s *OrderService) ListAttendances(ctx context.Context, claims *tokens.Claims) ([]models.Attendance, error) {
	var sellerID string
	switch claims.Role {
	case tokens.RoleAdmin:
	case tokens.RoleSeller:
		sellerID = claims.Subject
	case tokens.RoleClient:
		return nil, fail(ErrForbidden, "Acesso negado")
	default:
		return nil, fail(ErrForbidden, "Acesso negado")
	}
	out, err := s.Repo.ListAttendances(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Attendance{}
	}
	return out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, claims *tokens.Claims, id uint) (*models.Order, error) {
	return s.owned(ctx, claims, id, "este pedido não pertence a você")
}

func (s *OrderService) UpdateOrder(ctx context.Context, claims *tokens.Claims, id uint, req transport.UpdateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	if _, err := s.owned(ctx, claims, id, "você não pode atualizar este pedido"); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.DataPedido != nil && *req.DataPedido != "" {
		d, _ := transport.ParseDate(*req.DataPedido)
		updates["data_pedido"] = d
	}
	if req.FkFeira != nil {
		updates["fk_feira"] = *req.FkFeira
	}

	o, err := s.Repo.UpdateOrder(ctx, id, updates)
	if errors.Is(err, repo.ErrUnknownReference) {
		return nil, fail(ErrValidation, "Feira não encontrada")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "Pedido não encontrado")
	}
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(id), 10), "order_updated", map[string]any{
		"pedido_id": id,
		"fk_feira":  o.FeiraID,
	})
	return o, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, claims *tokens.Claims, id uint) (*models.Order, error) {
	if _, err := s.owned(ctx, claims, id, "você não pode deletar este pedido"); err != nil {
		return nil, err
	}
	o, err := s.Repo.DeleteOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "Pedido não encontrado")
	}
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(id), 10), "order_deleted", map[string]any{
		"pedido_id": id,
	})
	return o, nil
}

// MarkPaid records an approved payment against the order.
func (s *OrderService) MarkPaid(ctx context.Context, id uint, paymentRef string) error {
	err := s.Repo.MarkOrderPaid(ctx, id, paymentRef)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(ErrNotFound, "Pedido não encontrado")
	}
	if err != nil {
		return err
	}
	publish(ctx, s.Events, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(id), 10), "order_paid", map[string]any{
		"pedido_id":    id,
		"pagamento_id": paymentRef,
	})
	return nil
}
