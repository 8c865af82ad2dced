package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/models"
	"github.com/Skotchmaster/agriconnect/internal/mykafka"
	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/pkg/hash"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type PrincipalStore interface {
	CreateClient(ctx context.Context, c *models.Client) error
	GetClient(ctx context.Context, cpf string) (*models.Client, error)
	UpdateClient(ctx context.Context, cpf string, updates map[string]any) (*models.Client, error)
	DeleteClient(ctx context.Context, cpf string) (*models.Client, error)

	CreateSeller(ctx context.Context, s *models.Seller) error
	GetSeller(ctx context.Context, id string) (*models.Seller, error)
	ListSellers(ctx context.Context) ([]models.Seller, error)
	UpdateSeller(ctx context.Context, id string, updates map[string]any) (*models.Seller, error)
	DeleteSeller(ctx context.Context, id string) (*models.Seller, error)

	AddFavorite(ctx context.Context, cpf, productID string) (*models.Favorite, error)
	ListFavoriteProducts(ctx context.Context, cpf string) ([]models.Product, error)
	RemoveFavorite(ctx context.Context, cpf, productID string) error
}

type PrincipalService struct {
	Repo   PrincipalStore
	Hasher *hash.Hasher
	Events EventPublisher
}

// selfOrAdmin lets a principal act on its own record, or an admin on any.
func selfOrAdmin(claims *tokens.Claims, owner tokens.Role, id string) error {
	switch claims.Role {
	case tokens.RoleAdmin:
		return nil
	case tokens.RoleClient, tokens.RoleSeller:
		if claims.Role == owner && claims.Subject == id {
			return nil
		}
		return fail(ErrForbidden, "Acesso negado")
	default:
		return fail(ErrForbidden, "Acesso negado")
	}
}

// mapWriteErr turns repository write errors into service errors.
func mapWriteErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrEmailTaken):
		return fail(ErrConflict, "Email já cadastrado")
	case errors.Is(err, repo.ErrAlreadyExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return fail(ErrConflict, "Registro já existe")
	case errors.Is(err, repo.ErrUnknownReference):
		return fail(ErrValidation, "Referência inválida: %s", strings.TrimPrefix(err.Error(), repo.ErrUnknownReference.Error()+": "))
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(ErrNotFound, "%s", notFound)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fail(ErrConflict, "Registro em uso por outros dados")
	default:
		return err
	}
}

func (s *PrincipalService) RegisterClient(ctx context.Context, req transport.RegisterClientRequest) (*models.Client, error) {
	l := logging.FromContext(ctx).With("svc", "principal.register_client")

	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	digest, err := s.Hasher.Hash(req.Senha)
	if err != nil {
		return nil, err
	}
	c := &models.Client{
		CPF:      transport.CleanCPF(req.CPF),
		Nome:     strings.TrimSpace(req.Nome),
		Email:    req.Email,
		Senha:    digest,
		Telefone: req.Telefone,
		Tipo:     tokens.RoleClient,
	}
	if err := s.Repo.CreateClient(ctx, c); err != nil {
		l.Warn("register failed", "error", err)
		return nil, mapWriteErr(err, "Cliente não encontrado")
	}
	l.Info("client registered", "cpf", c.CPF)
	publish(ctx, s.Events, mykafka.TopicUserEvents, c.CPF, "client_registered", map[string]any{"cpf": c.CPF, "email": c.Email})
	return c, nil
}

func (s *PrincipalService) RegisterSeller(ctx context.Context, req transport.RegisterSellerRequest) (*models.Seller, error) {
	l := logging.FromContext(ctx).With("svc", "principal.register_seller")

	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	digest, err := s.Hasher.Hash(req.Senha)
	if err != nil {
		return nil, err
	}
	v := &models.Seller{
		Nome:            strings.TrimSpace(req.Nome),
		Email:           req.Email,
		Senha:           digest,
		Telefone:        req.Telefone,
		EnderecoVenda:   req.EnderecoVenda,
		TipoVendedor:    req.TipoVendedor,
		TipoDocumento:   req.TipoDocumento,
		NumeroDocumento: req.NumeroDocumento,
		AssociacaoID:    req.FkAssociacao,
		Tipo:            tokens.RoleSeller,
	}
	if err := s.Repo.CreateSeller(ctx, v); err != nil {
		l.Warn("register failed", "error", err)
		return nil, mapWriteErr(err, "Vendedor não encontrado")
	}
	l.Info("seller registered", "id_vendedor", v.ID)
	publish(ctx, s.Events, mykafka.TopicUserEvents, v.ID, "seller_registered", map[string]any{"id_vendedor": v.ID, "email": v.Email})
	return v, nil
}

func (s *PrincipalService) GetClient(ctx context.Context, claims *tokens.Claims, cpf string) (*models.Client, error) {
	cpf = transport.CleanCPF(cpf)
	if err := selfOrAdmin(claims, tokens.RoleClient, cpf); err != nil {
		return nil, err
	}
	c, err := s.Repo.GetClient(ctx, cpf)
	if err != nil {
		return nil, mapWriteErr(err, "Cliente não encontrado")
	}
	return c, nil
}

func (s *PrincipalService) UpdateClient(ctx context.Context, claims *tokens.Claims, cpf string, req transport.UpdateClientRequest) (*models.Client, error) {
	cpf = transport.CleanCPF(cpf)
	if err := selfOrAdmin(claims, tokens.RoleClient, cpf); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}

	updates := map[string]any{}
	if req.Nome != nil {
		updates["nome"] = strings.TrimSpace(*req.Nome)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Telefone != nil {
		updates["telefone"] = *req.Telefone
	}
	if req.Senha != nil && *req.Senha != "" {
		digest, err := s.Hasher.Hash(*req.Senha)
		if err != nil {
			return nil, err
		}
		updates["senha"] = digest
	}

	c, err := s.Repo.UpdateClient(ctx, cpf, updates)
	if err != nil {
		return nil, mapWriteErr(err, "Cliente não encontrado")
	}
	publish(ctx, s.Events, mykafka.TopicUserEvents, cpf, "client_updated", map[string]any{"cpf": cpf})
	return c, nil
}

func (s *PrincipalService) DeleteClient(ctx context.Context, claims *tokens.Claims, cpf string) (*models.Client, error) {
	cpf = transport.CleanCPF(cpf)
	if err := selfOrAdmin(claims, tokens.RoleClient, cpf); err != nil {
		return nil, err
	}
	c, err := s.Repo.DeleteClient(ctx, cpf)
	if err != nil {
		return nil, mapWriteErr(err, "Cliente não encontrado")
	}
	logging.FromContext(ctx).Info("client deleted", "cpf", cpf, "by", claims.Subject)
	publish(ctx, s.Events, mykafka.TopicUserEvents, cpf, "client_deleted", map[string]any{"cpf": cpf})
	return c, nil
}

func (s *PrincipalService) ListSellers(ctx context.Context) ([]models.Seller, error) {
	out, err := s.Repo.ListSellers(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Seller{}
	}
	return out, nil
}

func (s *PrincipalService) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	v, err := s.Repo.GetSeller(ctx, id)
	if err != nil {
		return nil, mapWriteErr(err, "Vendedor não encontrado")
	}
	return v, nil
}

func (s *PrincipalService) UpdateSeller(ctx context.Context, claims *tokens.Claims, id string, req transport.UpdateSellerRequest) (*models.Seller, error) {
	if err := selfOrAdmin(claims, tokens.RoleSeller, id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}

	updates := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	set("nome", req.Nome)
	set("email", req.Email)
	set("telefone", req.Telefone)
	set("endereco_venda", req.EnderecoVenda)
	set("tipo_vendedor", req.TipoVendedor)
	set("tipo_documento", req.TipoDocumento)
	set("numero_documento", req.NumeroDocumento)
	if req.FkAssociacao != nil {
		updates["fk_associacao"] = *req.FkAssociacao
	}
	if req.Senha != nil && *req.Senha != "" {
		digest, err := s.Hasher.Hash(*req.Senha)
		if err != nil {
			return nil, err
		}
		updates["senha"] = digest
	}

	v, err := s.Repo.UpdateSeller(ctx, id, updates)
	if err != nil {
		return nil, mapWriteErr(err, "Vendedor não encontrado")
	}
	publish(ctx, s.Events, mykafka.TopicUserEvents, id, "seller_updated", map[string]any{"id_vendedor": id})
	return v, nil
}

func (s *PrincipalService) DeleteSeller(ctx context.Context, claims *tokens.Claims, id string) (*models.Seller, error) {
	if err := selfOrAdmin(claims, tokens.RoleSeller, id); err != nil {
		return nil, err
	}
	v, err := s.Repo.DeleteSeller(ctx, id)
	if err != nil {
		return nil, mapWriteErr(err, "Vendedor não encontrado")
	}
	logging.FromContext(ctx).Info("seller deleted", "id_vendedor", id, "by", claims.Subject)
	publish(ctx, s.Events, mykafka.TopicUserEvents, id, "seller_deleted", map[string]any{"id_vendedor": id})
	return v, nil
}

// ownFavorites allows a client (admins included) to manage only its own list.
func ownFavorites(claims *tokens.Claims, cpf string) error {
	switch claims.Role {
	case tokens.RoleClient, tokens.RoleAdmin:
		if claims.Subject == cpf {
			return nil
		}
	case tokens.RoleSeller:
	}
	return fail(ErrForbidden, "Acesso negado")
}

func (s *PrincipalService) AddFavorite(ctx context.Context, claims *tokens.Claims, cpf string, req transport.FavoriteRequest) (*models.Favorite, error) {
	cpf = transport.CleanCPF(cpf)
	if err := ownFavorites(claims, cpf); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}
	fav, err := s.Repo.AddFavorite(ctx, cpf, strings.TrimSpace(req.ProdutoID))
	switch {
	case errors.Is(err, repo.ErrAlreadyExists):
		return nil, fail(ErrConflict, "Produto já está nos favoritos")
	case errors.Is(err, repo.ErrUnknownReference):
		return nil, fail(ErrNotFound, "Produto não encontrado")
	case err != nil:
		return nil, err
	}
	if fav.Produto != nil {
		fav.Produto.Image = transport.CleanImage(fav.Produto.Image)
	}
	return fav, nil
}

func (s *PrincipalService) ListFavorites(ctx context.Context, claims *tokens.Claims, cpf string) ([]models.Product, error) {
	cpf = transport.CleanCPF(cpf)
	if err := ownFavorites(claims, cpf); err != nil {
		return nil, err
	}
	out, err := s.Repo.ListFavoriteProducts(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return transport.CleanProducts(out), nil
}

func (s *PrincipalService) RemoveFavorite(ctx context.Context, claims *tokens.Claims, cpf, productID string) error {
	cpf = transport.CleanCPF(cpf)
	if err := ownFavorites(claims, cpf); err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return fail(ErrValidation, "produto_id: cannot be blank")
	}
	err := s.Repo.RemoveFavorite(ctx, cpf, strings.TrimSpace(productID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(ErrNotFound, "Favorito não encontrado")
	}
	return err
}

// ValidateCPF reports whether the digits form a valid CPF.
func ValidateCPF(cpf string) (string, bool) {
	clean := transport.CleanCPF(cpf)
	return clean, transport.ValidCPF(clean)
}
