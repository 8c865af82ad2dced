package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/agriconnect/internal/metrics"
	authmw "github.com/Skotchmaster/agriconnect/pkg/middleware/auth"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type Deps struct {
	Auth       *AuthHTTP
	Orders     *OrderHTTP
	Principals *PrincipalHTTP
	Catalog    *CatalogHTTP
	Webhook    *WebhookHTTP
	Health     *HealthHTTP
	Guard      *authmw.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	requireAuth := d.Guard.RequireAuth
	adminOnly := authmw.RequireRole(tokens.RoleAdmin)

	e.POST("/auth/login", d.Auth.Login)

	refresh := e.Group("/refresh")
	refresh.POST("/token", d.Auth.Refresh)
	refresh.POST("/logout", d.Auth.Logout)

	orders := e.Group("/pedido", requireAuth)
	orders.POST("/cadastro", d.Orders.CreateOrder)
	orders.GET("", d.Orders.ListOrders)
	orders.GET("/:id", d.Orders.GetOrder)
	orders.PUT("/:id", d.Orders.UpdateOrder)
	orders.DELETE("/:id", d.Orders.DeleteOrder)

	e.GET("/atendeum", d.Orders.ListAttendances, requireAuth)

	clients := e.Group("/clientes")
	clients.POST("", d.Principals.RegisterClient)
	clients.GET("/validar-cpf/:cpf", d.Principals.ValidateCPF)
	clients.GET("/:cpf", d.Principals.GetClient, requireAuth)
	clients.PUT("/:cpf", d.Principals.UpdateClient, requireAuth)
	clients.DELETE("/:cpf", d.Principals.DeleteClient, requireAuth)
	clients.PUT("/:cpf/favoritos", d.Principals.AddFavorite, requireAuth)
	clients.GET("/:cpf/favoritos", d.Principals.ListFavorites, requireAuth)
	clients.DELETE("/:cpf/favoritos", d.Principals.RemoveFavorite, requireAuth)

	sellers := e.Group("/vendedor")
	sellers.POST("/cadastro", d.Principals.RegisterSeller)
	sellers.GET("", d.Principals.ListSellers)
	sellers.GET("/:id", d.Principals.GetSeller)
	sellers.PUT("/:id", d.Principals.UpdateSeller, requireAuth)
	sellers.DELETE("/:id", d.Principals.DeleteSeller, requireAuth)

	products := e.Group("/produto")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/count", d.Catalog.CountProducts)
	products.GET("/busca", d.Catalog.SearchProducts)
	products.GET("/categoria/:nome", d.Catalog.ListByCategory)
	products.GET("/categoria/:nome/count", d.Catalog.CountByCategory)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("/cadastro", d.Catalog.CreateProduct, requireAuth, authmw.RequireRole(tokens.RoleSeller))
	products.PUT("/:id", d.Catalog.UpdateProduct, requireAuth)
	products.DELETE("/:id", d.Catalog.DeleteProduct, requireAuth)

	categories := e.Group("/categoria")
	categories.GET("", d.Catalog.ListCategories)
	categories.GET("/:id", d.Catalog.GetCategory)
	categories.POST("", d.Catalog.CreateCategory, requireAuth, adminOnly)

	markets := e.Group("/feira")
	markets.GET("", d.Catalog.ListMarkets)
	markets.GET("/:id", d.Catalog.GetMarket)
	markets.POST("", d.Catalog.CreateMarket, requireAuth, adminOnly)
	markets.PUT("/:id", d.Catalog.UpdateMarket, requireAuth, adminOnly)
	markets.DELETE("/:id", d.Catalog.DeleteMarket, requireAuth, adminOnly)

	associations := e.Group("/associacao")
	associations.GET("", d.Catalog.ListAssociations)
	associations.GET("/:id", d.Catalog.GetAssociation)
	associations.POST("", d.Catalog.CreateAssociation, requireAuth, adminOnly)
	associations.PUT("/:id", d.Catalog.UpdateAssociation, requireAuth, adminOnly)

	e.POST("/webhook/mercadopago", d.Webhook.MercadoPago)
}
