package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/agriconnect/internal/service"
	"github.com/Skotchmaster/agriconnect/internal/transport"
	"github.com/Skotchmaster/agriconnect/internal/util"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func window(c echo.Context) (limit, offset int) {
	return util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
		util.ParseIntDefault(c.QueryParam("offset"), 0)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	limit, offset := window(c)
	items, err := h.Svc.ListProducts(ctx, limit, offset)
	if err != nil {
		return respond(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CountProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.count_products")

	n, err := h.Svc.CountProducts(ctx)
	if err != nil {
		return respond(l, "count_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.CountResponse{Total: n})
}

func (h *CatalogHTTP) ListByCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_by_category")

	limit, offset := window(c)
	items, err := h.Svc.ListProductsByCategory(ctx, c.Param("nome"), limit, offset)
	if err != nil {
		return respond(l, "list_by_category_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CountByCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.count_by_category")

	n, err := h.Svc.CountProductsByCategory(ctx, c.Param("nome"))
	if err != nil {
		return respond(l, "count_by_category_error", err)
	}
	return c.JSON(http.StatusOK, transport.CountResponse{Total: n})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	p, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return respond(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return respond(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Items: items})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product_error", "Corpo da requisição inválido", err)
	}
	p, err := h.Svc.CreateProduct(ctx, cl, req)
	if err != nil {
		return respond(l, "create_product_error", err)
	}
	l.Info("create_product_success", "id_produto", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_product_error", "Corpo da requisição inválido", err)
	}
	p, err := h.Svc.UpdateProduct(ctx, cl, c.Param("id"), req)
	if err != nil {
		return respond(l, "update_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	cl, err := claims(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, cl, c.Param("id")); err != nil {
		return respond(l, "delete_product_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Produto deletado com sucesso"})
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return respond(logging.FromContext(ctx).With("handler", "catalog.list_categories"), "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_category")

	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "get_category_error", "ID inválido", nil)
	}
	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return respond(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category_error", "Corpo da requisição inválido", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return respond(l, "create_category_error", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) ListMarkets(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.Svc.ListMarkets(ctx)
	if err != nil {
		return respond(logging.FromContext(ctx).With("handler", "catalog.list_markets"), "list_markets_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) GetMarket(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_market")

	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "get_market_error", "ID inválido", nil)
	}
	m, err := h.Svc.GetMarket(ctx, id)
	if err != nil {
		return respond(l, "get_market_error", err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CatalogHTTP) CreateMarket(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_market")

	var req transport.MarketRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_market_error", "Corpo da requisição inválido", err)
	}
	m, err := h.Svc.CreateMarket(ctx, req)
	if err != nil {
		return respond(l, "create_market_error", err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *CatalogHTTP) UpdateMarket(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_market")

	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "update_market_error", "ID inválido", nil)
	}
	var req transport.MarketRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_market_error", "Corpo da requisição inválido", err)
	}
	m, err := h.Svc.UpdateMarket(ctx, id, req)
	if err != nil {
		return respond(l, "update_market_error", err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CatalogHTTP) DeleteMarket(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_market")

	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "delete_market_error", "ID inválido", nil)
	}
	if err := h.Svc.DeleteMarket(ctx, id); err != nil {
		return respond(l, "delete_market_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Feira deletada com sucesso"})
}

func (h *CatalogHTTP) ListAssociations(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.Svc.ListAssociations(ctx)
	if err != nil {
		return respond(logging.FromContext(ctx).With("handler", "catalog.list_associations"), "list_associations_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) GetAssociation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_association")

	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "get_association_error", "ID inválido", nil)
	}
	a, err := h.Svc.GetAssociation(ctx, id)
	if err != nil {
		return respond(l, "get_association_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *CatalogHTTP) CreateAssociation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_association")

	var req transport.AssociationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_association_error", "Corpo da requisição inválido", err)
	}
	a, err := h.Svc.CreateAssociation(ctx, req)
	if err != nil {
		return respond(l, "create_association_error", err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *CatalogHTTP) UpdateAssociation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_association")

	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(l, "update_association_error", "ID inválido", nil)
	}
	var req transport.AssociationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_association_error", "Corpo da requisição inválido", err)
	}
	a, err := h.Svc.UpdateAssociation(ctx, id, req)
	if err != nil {
		return respond(l, "update_association_error", err)
	}
	return c.JSON(http.StatusOK, a)
}
