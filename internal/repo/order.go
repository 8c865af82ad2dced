package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/agriconnect/internal/models"
)

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("id_item ASC") }).
		Preload("Itens.Produto").
		Preload("Itens.Produto.Categoria").
		Preload("Cliente").
		Preload("Feira")
}

// CreateOrderWithItems inserts the header and all lines in one transaction.
// A missing market or product aborts the whole order.
func (r *GormRepo) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error) {
	var out models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Market{}, "id_feira = ?", order.FeiraID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: feira %d", ErrUnknownReference, order.FeiraID)
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}

		ids := uniqueProductIDs(items)
		var found []string
		if err := tx.Model(&models.Product{}).Where("id_produto IN ?", ids).Pluck("id_produto", &found).Error; err != nil {
			return err
		}
		if len(found) != len(ids) {
			return fmt.Errorf("%w: produto %s", ErrUnknownReference, strings.Join(missing(ids, found), ", "))
		}

		for i := range items {
			items[i].ID = 0
			items[i].PedidoID = order.ID
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(items, 100).Error; err != nil {
			return err
		}

		var sellers []string
		if err := tx.Model(&models.Product{}).Where("id_produto IN ?", ids).Distinct().Pluck("fk_vendedor", &sellers).Error; err != nil {
			return err
		}
		links := make([]models.Attendance, 0, len(sellers))
		for _, s := range sellers {
			links = append(links, models.Attendance{PedidoID: order.ID, VendedorID: s})
		}
		if len(links) > 0 {
			if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
				return err
			}
		}

		return preloadOrder(tx).Where("pedido_id = ?", order.ID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func uniqueProductIDs(items []models.OrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProdutoID]; ok {
			continue
		}
		seen[it.ProdutoID] = struct{}{}
		out = append(out, it.ProdutoID)
	}
	return out
}

func missing(want, have []string) []string {
	got := make(map[string]struct{}, len(have))
	for _, h := range have {
		got[h] = struct{}{}
	}
	var out []string
	for _, w := range want {
		if _, ok := got[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := preloadOrder(r.DB.WithContext(ctx)).Where("pedido_id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrdersByClient(ctx context.Context, cpf string) ([]models.Order, error) {
	var out []models.Order
	err := preloadOrder(r.DB.WithContext(ctx)).
		Where("fk_cliente = ?", cpf).
		Order("data_pedido DESC, pedido_id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrder changes only the date and market columns.
func (r *GormRepo) UpdateOrder(ctx context.Context, id uint, updates map[string]any) (*models.Order, error) {
	allowed := map[string]any{}
	for _, col := range []string{"data_pedido", "fk_feira"} {
		if v, ok := updates[col]; ok {
			allowed[col] = v
		}
	}

	var out models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if feira, ok := allowed["fk_feira"]; ok {
			found, err := exists(tx, &models.Market{}, "id_feira = ?", feira)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: feira %v", ErrUnknownReference, feira)
			}
		}
		if len(allowed) > 0 {
			res := tx.Model(&models.Order{}).Where("pedido_id = ?", id).Updates(allowed)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return preloadOrder(tx).Where("pedido_id = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id uint) (*models.Order, error) {
	var out models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pedido_id = ?", id).First(&out).Error; err != nil {
			return err
		}
		if err := tx.Where("pedido_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("fk_pedido = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) MarkOrderPaid(ctx context.Context, id uint, paymentRef string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("pedido_id = ?", id).
		Updates(map[string]any{"status": models.OrderPaid, "pagamento_id": paymentRef})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ProductsOwnedBy returns the subset of ids listed by the given seller.
func (r *GormRepo) ProductsOwnedBy(ctx context.Context, sellerID string, ids []string) ([]models.Product, error) {
	var out []models.Product
	if len(ids) == 0 {
		return out, nil
	}
	err := r.DB.WithContext(ctx).
		Select("id_produto", "nome").
		Where("fk_vendedor = ? AND id_produto IN ?", sellerID, ids).
		Order("nome ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAttendances returns seller/order links with both sides loaded. An empty
// sellerID lists every link.
func (r *GormRepo) ListAttendances(ctx context.Context, sellerID string) ([]models.Attendance, error) {
	var out []models.Attendance
	q := r.DB.WithContext(ctx).Preload("Pedido").Preload("Vendedor")
	if sellerID != "" {
		q = q.Where("fk_vendedor = ?", sellerID)
	}
	if err := q.Order("fk_pedido ASC, fk_vendedor ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
