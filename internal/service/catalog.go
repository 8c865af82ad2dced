package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/internal/mykafka"
	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/internal/search"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/internal/util"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type CatalogStore interface {
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	ListProductsByCategory(ctx context.Context, name string, offset, limit int) ([]models.Product, error)
	CountProductsByCategory(ctx context.Context, name string) (int64, error)
	UpdateProduct(ctx context.Context, id string, updates map[string]any) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error

	ListMarkets(ctx context.Context) ([]models.Market, error)
	GetMarket(ctx context.Context, id uint) (*models.Market, error)
	CreateMarket(ctx context.Context, m *models.Market) error
	UpdateMarket(ctx context.Context, id uint, updates map[string]any) (*models.Market, error)
	DeleteMarket(ctx context.Context, id uint) error

	ListAssociations(ctx context.Context) ([]models.Association, error)
	GetAssociation(ctx context.Context, id uint) (*models.Association, error)
	CreateAssociation(ctx context.Context, a *models.Association) error
	UpdateAssociation(ctx context.Context, id uint, updates map[string]any) (*models.Association, error)
}

// ProductIndex is the full-text side of the catalog. Optional.
type ProductIndex interface {
	Upsert(ctx context.Context, doc search.ProductDoc) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, from, size int) (int64, []string, error)
}

type CatalogService struct {
	Repo   CatalogStore
	Index  ProductIndex
	Events EventPublisher
}

func toDoc(p *models.Product) search.ProductDoc {
	return search.ProductDoc{
		ID:          p.ID,
		Nome:        p.Nome,
		Descricao:   p.Descricao,
		Preco:       p.Preco,
		Disponivel:  p.Disponivel,
		VendedorID:  p.VendedorID,
		CategoriaID: p.CategoriaID,
	}
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Upsert(ctx, toDoc(p)); err != nil {
		logging.FromContext(ctx).Warn("index product failed", "id_produto", p.ID, "error", err)
	}
}

func (s *CatalogService) unindex(ctx context.Context, id string) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("unindex product failed", "id_produto", id, "error", err)
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, claims *tokens.Claims, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product", "sub", claims.Subject)

	switch claims.Role {
	case tokens.RoleSeller:
	case tokens.RoleClient, tokens.RoleAdmin:
		return nil, fail(ErrForbidden, "Apenas vendedores podem cadastrar produtos")
	default:
		return nil, fail(ErrForbidden, "Apenas vendedores podem cadastrar produtos")
	}
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}

	p := &models.Product{
		Nome:          strings.TrimSpace(req.Nome),
		Descricao:     req.Descricao,
		Preco:         req.Preco,
		PrecoPromocao: req.PrecoPromocao,
		IsPromocao:    req.IsPromocao,
		Disponivel:    true,
		Image:         req.Image,
		VendedorID:    claims.Subject,
		CategoriaID:   req.IDCategoria,
	}
	if req.Disponivel != nil {
		p.Disponivel = *req.Disponivel
	}

	created, err := s.Repo.CreateProduct(ctx, p)
	if err != nil {
		l.Warn("create_product_error", "error", err)
		return nil, mapWriteErr(err, "Produto não encontrado")
	}
	created.Image = transport.CleanImage(created.Image)
	s.index(ctx, created)
	l.Info("product created", "id_produto", created.ID)
	publish(ctx, s.Events, mykafka.TopicProductEvents, created.ID, "product_created", toDoc(created))
	return created, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "Produto não encontrado")
	}
	if err != nil {
		return nil, err
	}
	p.Image = transport.CleanImage(p.Image)
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error) {
	limit, offset = util.Window(limit, offset)
	out, err := s.Repo.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return transport.CleanProducts(out), nil
}

func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	return s.Repo.CountProducts(ctx)
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, name string, limit, offset int) ([]models.Product, error) {
	limit, offset = util.Window(limit, offset)
	out, err := s.Repo.ListProductsByCategory(ctx, strings.TrimSpace(name), offset, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return transport.CleanProducts(out), nil
}

func (s *CatalogService) CountProductsByCategory(ctx context.Context, name string) (int64, error) {
	return s.Repo.CountProductsByCategory(ctx, strings.TrimSpace(name))
}

// ownedProduct loads the product and checks the caller listed it.
func (s *CatalogService) ownedProduct(ctx context.Context, claims *tokens.Claims, id string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(ErrNotFound, "Produto não encontrado")
	}
	if err != nil {
		return nil, err
	}
	if claims.Role != tokens.RoleSeller || p.VendedorID != claims.Subject {
		return nil, fail(ErrForbidden, "Acesso negado - este produto não pertence a você")
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, claims *tokens.Claims, id string, req transport.UpdateProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	if _, err := s.ownedProduct(ctx, claims, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Nome != nil {
		updates["nome"] = strings.TrimSpace(*req.Nome)
	}
	if req.Descricao != nil {
		updates["descricao"] = *req.Descricao
	}
	if req.Preco != nil {
		updates["preco"] = *req.Preco
	}
	if req.PrecoPromocao != nil {
		updates["preco_promocao"] = *req.PrecoPromocao
	}
	if req.IsPromocao != nil {
		updates["is_promocao"] = *req.IsPromocao
	}
	if req.Disponivel != nil {
		updates["disponivel"] = *req.Disponivel
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.IDCategoria != nil {
		updates["fk_categoria"] = *req.IDCategoria
	}

	p, err := s.Repo.UpdateProduct(ctx, id, updates)
	if err != nil {
		return nil, mapWriteErr(err, "Produto não encontrado")
	}
	p.Image = transport.CleanImage(p.Image)
	s.index(ctx, p)
	publish(ctx, s.Events, mykafka.TopicProductEvents, id, "product_updated", toDoc(p))
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, claims *tokens.Claims, id string) error {
	if _, err := s.ownedProduct(ctx, claims, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return mapWriteErr(err, "Produto não encontrado")
	}
	s.unindex(ctx, id)
	publish(ctx, s.Events, mykafka.TopicProductEvents, id, "product_deleted", map[string]any{"id_produto": id})
	return nil
}

// Search queries the index when there is one and falls back to the database
// otherwise or when the index is unavailable. Results always come from the
// database.
func (s *CatalogService) Search(ctx context.Context, q string, page, size int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fail(ErrValidation, "Parâmetro q é obrigatório")
	}
	from, size := util.Calculate(page, size)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, from, size)
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, transport.CleanProducts(items), nil
		}
		logging.FromContext(ctx).Warn("search index unavailable, using database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, from, size)
	if err != nil {
		return 0, nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return total, transport.CleanProducts(items), nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := s.Repo.ListCategories(ctx)
	if out == nil && err == nil {
		out = []models.Category{}
	}
	return out, err
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, mapWriteErr(err, "Categoria não encontrada")
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	c := &models.Category{Nome: strings.TrimSpace(req.Nome)}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fail(ErrConflict, "Categoria já existe")
		}
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) ListMarkets(ctx context.Context) ([]models.Market, error) {
	out, err := s.Repo.ListMarkets(ctx)
	if out == nil && err == nil {
		out = []models.Market{}
	}
	return out, err
}

func (s *CatalogService) GetMarket(ctx context.Context, id uint) (*models.Market, error) {
	m, err := s.Repo.GetMarket(ctx, id)
	if err != nil {
		return nil, mapWriteErr(err, "Feira não encontrada")
	}
	return m, nil
}

func (s *CatalogService) CreateMarket(ctx context.Context, req transport.MarketRequest) (*models.Market, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	m := &models.Market{Nome: strings.TrimSpace(*req.Nome), Endereco: *req.Endereco}
	if err := s.Repo.CreateMarket(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService) UpdateMarket(ctx context.Context, id uint, req transport.MarketRequest) (*models.Market, error) {
	if err := req.ValidateUpdate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	updates := map[string]any{}
	if req.Nome != nil {
		updates["nome"] = strings.TrimSpace(*req.Nome)
	}
	if req.Endereco != nil {
		updates["endereco"] = *req.Endereco
	}
	m, err := s.Repo.UpdateMarket(ctx, id, updates)
	if err != nil {
		return nil, mapWriteErr(err, "Feira não encontrada")
	}
	return m, nil
}

func (s *CatalogService) DeleteMarket(ctx context.Context, id uint) error {
	return mapWriteErr(s.Repo.DeleteMarket(ctx, id), "Feira não encontrada")
}

func (s *CatalogService) ListAssociations(ctx context.Context) ([]models.Association, error) {
	out, err := s.Repo.ListAssociations(ctx)
	if out == nil && err == nil {
		out = []models.Association{}
	}
	return out, err
}

func (s *CatalogService) GetAssociation(ctx context.Context, id uint) (*models.Association, error) {
	a, err := s.Repo.GetAssociation(ctx, id)
	if err != nil {
		return nil, mapWriteErr(err, "Associação não encontrada")
	}
	return a, nil
}

func (s *CatalogService) CreateAssociation(ctx context.Context, req transport.AssociationRequest) (*models.Association, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	a := &models.Association{Nome: strings.TrimSpace(*req.Nome)}
	if req.Descricao != nil {
		a.Descricao = *req.Descricao
	}
	if err := s.Repo.CreateAssociation(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) UpdateAssociation(ctx context.Context, id uint, req transport.AssociationRequest) (*models.Association, error) {
	if err := req.ValidateUpdate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	updates := map[string]any{}
	if req.Nome != nil {
		updates["nome"] = strings.TrimSpace(*req.Nome)
	}
	if req.Descricao != nil {
		updates["descricao"] = *req.Descricao
	}
	a, err := s.Repo.UpdateAssociation(ctx, id, updates)
	if err != nil {
		return nil, mapWriteErr(err, "Associação não encontrada")
	}
	return a, nil
}
