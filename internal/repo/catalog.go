package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/agriconnect/internal/models"
)

func (r *GormRepo) checkProductRefs(tx *gorm.DB, sellerID string, categoryID *uint) error {
	if sellerID != "" {
		ok, err := exists(tx, &models.Seller{}, "id_vendedor = ?", sellerID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: vendedor %s", ErrUnknownReference, sellerID)
		}
	}
	if categoryID != nil {
		ok, err := exists(tx, &models.Category{}, "id_categoria = ?", *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: categoria %d", ErrUnknownReference, *categoryID)
		}
	}
	return nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.checkProductRefs(tx, p.VendedorID, p.CategoriaID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return tx.Preload("Categoria").Where("id_produto = ?", p.ID).First(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).
		Preload("Vendedor").
		Preload("Categoria").
		Where("id_produto = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error) {
	var out []models.Product
	err := r.DB.WithContext(ctx).
		Order("nome ASC, id_produto ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func byCategoryName(db *gorm.DB, name string) *gorm.DB {
	return db.Model(&models.Product{}).
		Joins("JOIN categorias ON categorias.id_categoria = produtos.fk_categoria").
		Where("LOWER(categorias.nome) = LOWER(?)", name)
}

func (r *GormRepo) ListProductsByCategory(ctx context.Context, name string, offset, limit int) ([]models.Product, error) {
	var out []models.Product
	err := byCategoryName(r.DB.WithContext(ctx), name).
		Order("produtos.nome ASC, produtos.id_produto ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) CountProductsByCategory(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := byCategoryName(r.DB.WithContext(ctx), name).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id string, updates map[string]any) (*models.Product, error) {
	var out models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_produto = ?", id).First(&out).Error; err != nil {
			return err
		}
		if cat, ok := updates["fk_categoria"].(uint); ok {
			if err := r.checkProductRefs(tx, "", &cat); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&out).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Categoria").Where("id_produto = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("produto_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Where("id_produto = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.DB.WithContext(ctx).Order("nome ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("id_categoria = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.Category{}, "LOWER(nome) = LOWER(?)", c.Nome)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: categoria %s", ErrAlreadyExists, c.Nome)
		}
		return tx.Create(c).Error
	})
}

func (r *GormRepo) ListMarkets(ctx context.Context) ([]models.Market, error) {
	var out []models.Market
	if err := r.DB.WithContext(ctx).Order("nome ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetMarket(ctx context.Context, id uint) (*models.Market, error) {
	var m models.Market
	if err := r.DB.WithContext(ctx).Where("id_feira = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormRepo) CreateMarket(ctx context.Context, m *models.Market) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) UpdateMarket(ctx context.Context, id uint, updates map[string]any) (*models.Market, error) {
	var out models.Market
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_feira = ?", id).First(&out).Error; err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&out).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Where("id_feira = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) DeleteMarket(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Where("id_feira = ?", id).Delete(&models.Market{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListAssociations(ctx context.Context) ([]models.Association, error) {
	var out []models.Association
	if err := r.DB.WithContext(ctx).Order("nome ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetAssociation(ctx context.Context, id uint) (*models.Association, error) {
	var a models.Association
	if err := r.DB.WithContext(ctx).Where("id_associacao = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) CreateAssociation(ctx context.Context, a *models.Association) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) UpdateAssociation(ctx context.Context, id uint, updates map[string]any) (*models.Association, error) {
	var out models.Association
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_associacao = ?", id).First(&out).Error; err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&out).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Where("id_associacao = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ProductsByIDs loads the given products and keeps the order of ids.
// Unknown ids are skipped.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	out := []models.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id_produto IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchProducts is the database fallback when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	like := "%" + strings.ToLower(q) + "%"
	base := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(nome) LIKE ? OR LOWER(descricao) LIKE ?", like, like)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var out []models.Product
	err := base.Session(&gorm.Session{}).
		Order("nome ASC, id_produto ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return 0, nil, err
	}
	return total, out, nil
}
