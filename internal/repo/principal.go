package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type PrincipalKind int

const (
	KindClient PrincipalKind = iota + 1
	KindSeller
)

func (k PrincipalKind) String() string {
	switch k {
	case KindClient:
		return "cliente"
	case KindSeller:
		return "vendedor"
	default:
		return "unknown"
	}
}

// Principal is exactly one of Client or Seller, selected by Kind.
type Principal struct {
	Kind   PrincipalKind
	Client *models.Client
	Seller *models.Seller
}

func (p *Principal) ID() string {
	switch p.Kind {
	case KindClient:
		return p.Client.CPF
	case KindSeller:
		return p.Seller.ID
	default:
		return ""
	}
}

func (p *Principal) Email() string {
	switch p.Kind {
	case KindClient:
		return p.Client.Email
	case KindSeller:
		return p.Seller.Email
	default:
		return ""
	}
}

func (p *Principal) Role() tokens.Role {
	switch p.Kind {
	case KindClient:
		return p.Client.Tipo
	case KindSeller:
		return p.Seller.Tipo
	default:
		return ""
	}
}

func (p *Principal) PasswordHash() string {
	switch p.Kind {
	case KindClient:
		return p.Client.Senha
	case KindSeller:
		return p.Seller.Senha
	default:
		return ""
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindPrincipalByEmail looks in clients first, then sellers.
// Returns gorm.ErrRecordNotFound when neither table has the email.
func (r *GormRepo) FindPrincipalByEmail(ctx context.Context, email string) (*Principal, error) {
	email = normalizeEmail(email)
	db := r.DB.WithContext(ctx)

	var c models.Client
	err := db.Where("email = ?", email).First(&c).Error
	if err == nil {
		return &Principal{Kind: KindClient, Client: &c}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var s models.Seller
	if err := db.Where("email = ?", email).First(&s).Error; err != nil {
		return nil, err
	}
	return &Principal{Kind: KindSeller, Seller: &s}, nil
}

// emailInUse checks both principal tables, ignoring the row identified by
// exceptCPF or exceptSellerID.
func emailInUse(tx *gorm.DB, email, exceptCPF, exceptSellerID string) (bool, error) {
	q := tx.Model(&models.Client{}).Where("email = ?", email)
	if exceptCPF != "" {
		q = q.Where("cpf <> ?", exceptCPF)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	q = tx.Model(&models.Seller{}).Where("email = ?", email)
	if exceptSellerID != "" {
		q = q.Where("id_vendedor <> ?", exceptSellerID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateClient(ctx context.Context, c *models.Client) error {
	c.Email = normalizeEmail(c.Email)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailInUse(tx, c.Email, "", "")
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		dup, err := exists(tx, &models.Client{}, "cpf = ?", c.CPF)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: cpf %s", ErrAlreadyExists, c.CPF)
		}
		return tx.Omit(clause.Associations).Create(c).Error
	})
}

func (r *GormRepo) CreateSeller(ctx context.Context, s *models.Seller) error {
	s.Email = normalizeEmail(s.Email)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailInUse(tx, s.Email, "", "")
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		if s.AssociacaoID != nil {
			ok, err := exists(tx, &models.Association{}, "id_associacao = ?", *s.AssociacaoID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: associacao %d", ErrUnknownReference, *s.AssociacaoID)
			}
		}
		return tx.Omit(clause.Associations).Create(s).Error
	})
}

func (r *GormRepo) GetClient(ctx context.Context, cpf string) (*models.Client, error) {
	var c models.Client
	if err := r.DB.WithContext(ctx).Where("cpf = ?", cpf).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	if err := r.DB.WithContext(ctx).Order("nome ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) ClientExists(ctx context.Context, cpf string) (bool, error) {
	return exists(r.DB.WithContext(ctx), &models.Client{}, "cpf = ?", cpf)
}

// UpdateClient applies the column updates and returns the fresh row.
func (r *GormRepo) UpdateClient(ctx context.Context, cpf string, updates map[string]any) (*models.Client, error) {
	var out models.Client
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cpf = ?", cpf).First(&out).Error; err != nil {
			return err
		}
		if email, ok := updates["email"].(string); ok {
			email = normalizeEmail(email)
			updates["email"] = email
			taken, err := emailInUse(tx, email, cpf, "")
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&out).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Where("cpf = ?", cpf).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) DeleteClient(ctx context.Context, cpf string) (*models.Client, error) {
	var out models.Client
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cpf = ?", cpf).First(&out).Error; err != nil {
			return err
		}
		if err := tx.Where("cliente_cpf = ?", cpf).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	var s models.Seller
	if err := r.DB.WithContext(ctx).Preload("Associacao").Where("id_vendedor = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) ListSellers(ctx context.Context) ([]models.Seller, error) {
	var out []models.Seller
	if err := r.DB.WithContext(ctx).Preload("Associacao").Order("nome ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) UpdateSeller(ctx context.Context, id string, updates map[string]any) (*models.Seller, error) {
	var out models.Seller
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_vendedor = ?", id).First(&out).Error; err != nil {
			return err
		}
		if email, ok := updates["email"].(string); ok {
			email = normalizeEmail(email)
			updates["email"] = email
			taken, err := emailInUse(tx, email, "", id)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}
		}
		if assoc, ok := updates["fk_associacao"].(uint); ok {
			found, err := exists(tx, &models.Association{}, "id_associacao = ?", assoc)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: associacao %d", ErrUnknownReference, assoc)
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&out).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Associacao").Where("id_vendedor = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) DeleteSeller(ctx context.Context, id string) (*models.Seller, error) {
	var out models.Seller
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_vendedor = ?", id).First(&out).Error; err != nil {
			return err
		}
		return tx.Delete(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
