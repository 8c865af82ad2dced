package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/models"
)

func (r *GormRepo) AddFavorite(ctx context.Context, cpf, productID string) (*models.Favorite, error) {
	fav := models.Favorite{ClienteCPF: cpf, ProdutoID: productID}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Product{}, "id_produto = ?", productID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: produto %s", ErrUnknownReference, productID)
		}
		dup, err := exists(tx, &models.Favorite{}, "cliente_cpf = ? AND produto_id = ?", cpf, productID)
		if err != nil {
			return err
		}
		if dup {
			return ErrAlreadyExists
		}
		if err := tx.Omit("Produto", "Cliente").Create(&fav).Error; err != nil {
			return err
		}
		return tx.Preload("Produto").
			Where("cliente_cpf = ? AND produto_id = ?", cpf, productID).
			First(&fav).Error
	})
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

func (r *GormRepo) ListFavoriteProducts(ctx context.Context, cpf string) ([]models.Product, error) {
	var out []models.Product
	err := r.DB.WithContext(ctx).
		Joins("JOIN favorita_um ON favorita_um.produto_id = produtos.id_produto").
		Where("favorita_um.cliente_cpf = ?", cpf).
		Order("favorita_um.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) RemoveFavorite(ctx context.Context, cpf, productID string) error {
	res := r.DB.WithContext(ctx).
		Where("cliente_cpf = ? AND produto_id = ?", cpf, productID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
