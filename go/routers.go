package trackerserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Public routes skip bearer authentication.
	Public bool
}

// ApiHandleFunctions groups the handlers of every bounded context.
type ApiHandleFunctions struct {
	AuthAPI        AuthAPI
	ProductAPI     ProductAPI
	ShipmentAPI    ShipmentAPI
	TransactionAPI TransactionAPI
	MetricsAPI     MetricsAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, authenticator Authenticator) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, authenticator)
}

// NewRouterWithGinEngine adds the routes to an existing engine. Every route
// not marked Public runs behind RequireAuth.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, authenticator Authenticator) *gin.Engine {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	protected := router.Group("", RequireAuth(authenticator))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		if route.Public {
			router.Handle(route.Method, route.Pattern, route.HandlerFunc)
			continue
		}
		protected.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler yet.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"Register", http.MethodPost, "/api/auth/register", h.AuthAPI.Register, true},
		{"CreateFirstAdmin", http.MethodPost, "/api/auth/create-first-admin", h.AuthAPI.CreateFirstAdmin, true},
		{"Login", http.MethodPost, "/api/auth/login", h.AuthAPI.Login, true},
		{"CreateAdmin", http.MethodPost, "/api/auth/create-admin", h.AuthAPI.CreateAdmin, false},
		{"ListUsers", http.MethodGet, "/api/auth/users", h.AuthAPI.ListUsers, false},
		{"ReviewUser", http.MethodPatch, "/api/auth/verify/:id", h.AuthAPI.ReviewUser, false},
		{"Logout", http.MethodPost, "/api/auth/logout", h.AuthAPI.Logout, false},
		{"Me", http.MethodGet, "/api/users/me", h.AuthAPI.Me, false},

		{"CreateProduct", http.MethodPost, "/api/products", h.ProductAPI.CreateProduct, false},
		{"ListProducts", http.MethodGet, "/api/products", h.ProductAPI.ListProducts, false},
		{"GetProductByTrackingNumber", http.MethodGet, "/api/products/tracking/:trackingNumber", h.ProductAPI.GetProductByTrackingNumber, false},
		{"GetProduct", http.MethodGet, "/api/products/:id", h.ProductAPI.GetProduct, false},
		{"GetProductTimeline", http.MethodGet, "/api/products/:id/timeline", h.ProductAPI.GetProductTimeline, false},
		{"UpdateProductStatus", http.MethodPatch, "/api/products/:id/status", h.ProductAPI.UpdateProductStatus, false},
		{"PerformQualityCheck", http.MethodPost, "/api/products/:id/quality-check", h.ProductAPI.PerformQualityCheck, false},
		{"AutoQualityCheck", http.MethodPost, "/api/products/:id/quality-check/auto", h.ProductAPI.AutoQualityCheck, false},

		{"CreateShipment", http.MethodPost, "/api/shipments", h.ShipmentAPI.CreateShipment, false},
		{"ListShipments", http.MethodGet, "/api/shipments", h.ShipmentAPI.ListShipments, false},
		{"GetShipment", http.MethodGet, "/api/shipments/:id", h.ShipmentAPI.GetShipment, false},
		{"UpdateShipmentStatus", http.MethodPatch, "/api/shipments/:id/status", h.ShipmentAPI.UpdateShipmentStatus, false},
		{"ReportDelay", http.MethodPost, "/api/shipments/:id/delays", h.ShipmentAPI.ReportDelay, false},
		{"ResolveDelay", http.MethodPost, "/api/shipments/:id/delays/:index/resolve", h.ShipmentAPI.ResolveDelay, false},

		{"CreateTransaction", http.MethodPost, "/api/transactions", h.TransactionAPI.CreateTransaction, false},
		{"ListTransactions", http.MethodGet, "/api/transactions", h.TransactionAPI.ListTransactions, false},
		{"GetTransaction", http.MethodGet, "/api/transactions/:id", h.TransactionAPI.GetTransaction, false},
		{"UpdateTransactionStatus", http.MethodPut, "/api/transactions/:id/status", h.TransactionAPI.UpdateTransactionStatus, false},

		{"GetDashboardMetrics", http.MethodGet, "/api/metrics/dashboard", h.MetricsAPI.GetDashboardMetrics, false},
		{"GetSupplyChainMetrics", http.MethodGet, "/api/metrics/supply-chain", h.MetricsAPI.GetSupplyChainMetrics, false},
		{"GetProductAnalytics", http.MethodGet, "/api/metrics/products", h.MetricsAPI.GetProductAnalytics, false},
		{"GetTransactionAnalytics", http.MethodGet, "/api/metrics/transactions", h.MetricsAPI.GetTransactionAnalytics, false},
		{"GetUserAnalytics", http.MethodGet, "/api/metrics/users", h.MetricsAPI.GetUserAnalytics, false},
	}
}
