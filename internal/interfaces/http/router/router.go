// Package router groups the HTTP handlers by domain under a versioned API prefix.
package router

import (
	"net/http"
	"path"

	"github.com/bizledger/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers a set of routes on a group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/{version}
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one domain under a shared prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// RouteInfo describes a registered route
type RouteInfo struct {
	Method string
	Path   string
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, relativePath, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, relativePath, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, relativePath, handlers)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPatch, relativePath, handlers)
}

func (dg *DomainGroup) handle(method, relativePath string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: relativePath, handlers: handlers})
	return dg
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Routes lists the group's routes relative to the API prefix
func (dg *DomainGroup) Routes() []RouteInfo {
	infos := make([]RouteInfo, 0, len(dg.routes))
	for _, route := range dg.routes {
		infos = append(infos, RouteInfo{Method: route.method, Path: path.Join(dg.prefix, route.path)})
	}
	return infos
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Handlers holds every API handler. Nil handlers leave their routes out.
type Handlers struct {
	Invoice   *handler.InvoiceHandler
	Quote     *handler.QuoteHandler
	Payment   *handler.PaymentHandler
	Statement *handler.StatementHandler
	Grv       *handler.GrvHandler
	Catalog   *handler.CatalogHandler
}

// LedgerGroups builds the domain groups of the ledger API
func LedgerGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Invoice != nil {
		groups = append(groups, NewDomainGroup("invoices", "/invoices").
			POST("", h.Invoice.Create).
			GET("/:id", h.Invoice.Get).
			PUT("/:id/lines", h.Invoice.ReplaceLines).
			POST("/:id/status", h.Invoice.ChangeStatus).
			PATCH("/:id/vat", h.Invoice.SetVATMode))
	}
	if h.Quote != nil {
		groups = append(groups, NewDomainGroup("quotes", "/quotes").
			POST("", h.Quote.Create).
			GET("/:id", h.Quote.Get).
			PUT("/:id/lines", h.Quote.ReplaceLines).
			POST("/:id/status", h.Quote.ChangeStatus).
			POST("/:id/convert", h.Quote.Convert))
	}
	if h.Payment != nil {
		groups = append(groups, NewDomainGroup("payments", "/payments").
			POST("", h.Payment.Record).
			GET("/:id", h.Payment.Get))
	}
	if h.Statement != nil {
		groups = append(groups, NewDomainGroup("statements", "/clients").
			GET("/:id/statement", h.Statement.Get))
	}
	if h.Grv != nil {
		groups = append(groups, NewDomainGroup("grvs", "/grvs").
			POST("", h.Grv.Receive).
			POST("/import", h.Grv.Import).
			POST("/parsed", h.Grv.ImportParsed).
			GET("/:id", h.Grv.Get))
	}
	if h.Catalog != nil {
		groups = append(groups,
			NewDomainGroup("stock", "/stock").
				GET("/:code", h.Catalog.GetStockItem).
				PUT("/:code", h.Catalog.UpdateStockDetails).
				PUT("/:code/pricing", h.Catalog.UpdateStockPricing),
			NewDomainGroup("suppliers", "/suppliers").
				GET("/:id", h.Catalog.GetSupplier).
				PUT("/:id", h.Catalog.UpdateSupplier),
		)
	}
	return groups
}

// RegisterLedgerRoutes mounts the ledger API on engine under /api/v1
func RegisterLedgerRoutes(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	r := NewRouter(engine, opts...)
	for _, g := range LedgerGroups(h) {
		r.Register(g)
	}
	r.Setup()
	return r
}
