package trackerserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	metricsmapper "github.com/Apurer/supplychain-tracker/internal/domains/metrics/adapters/http/mapper"
	metricstypes "github.com/Apurer/supplychain-tracker/internal/domains/metrics/application/types"
	metricsports "github.com/Apurer/supplychain-tracker/internal/domains/metrics/ports"
)

// MetricsAPI serves the read-only dashboard figures.
type MetricsAPI struct {
	service metricsports.Service
}

func NewMetricsAPI(service metricsports.Service) MetricsAPI {
	return MetricsAPI{service: service}
}

// Get /api/metrics/dashboard
func (api *MetricsAPI) GetDashboardMetrics(c *gin.Context) {
	dashboard, err := api.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metricsmapper.FromDashboard(dashboard))
}

// Get /api/metrics/supply-chain
func (api *MetricsAPI) GetSupplyChainMetrics(c *gin.Context) {
	start, end, ok := bindDateRange(c)
	if !ok {
		return
	}
	metrics, err := api.service.SupplyChain(c.Request.Context(), metricstypes.SupplyChainInput{Start: start, End: end})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metricsmapper.FromSupplyChain(metrics))
}

// Get /api/metrics/products
func (api *MetricsAPI) GetProductAnalytics(c *gin.Context) {
	start, end, ok := bindDateRange(c)
	if !ok {
		return
	}
	result, err := api.service.ProductAnalytics(c.Request.Context(), metricstypes.ProductAnalyticsInput{
		Start:       start,
		End:         end,
		Category:    c.Query("category"),
		SubCategory: c.Query("subCategory"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metricsmapper.FromProductAnalytics(result))
}

// Get /api/metrics/transactions
func (api *MetricsAPI) GetTransactionAnalytics(c *gin.Context) {
	start, end, ok := bindDateRange(c)
	if !ok {
		return
	}
	result, err := api.service.TransactionAnalytics(c.Request.Context(), metricstypes.TransactionAnalyticsInput{
		Start:  start,
		End:    end,
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metricsmapper.FromTransactionAnalytics(result))
}

// Get /api/metrics/users
func (api *MetricsAPI) GetUserAnalytics(c *gin.Context) {
	start, end, ok := bindDateRange(c)
	if !ok {
		return
	}
	result, err := api.service.UserAnalytics(c.Request.Context(), metricstypes.UserAnalyticsInput{
		Actor: actorFrom(c),
		Start: start,
		End:   end,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metricsmapper.FromUserAnalytics(result))
}

// bindDateRange reads the startDate and endDate query dates. The end date
// covers its whole day.
func bindDateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var start, end *openapi_types.Date
	query := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "startDate", query, &start); err != nil {
		respondBadRequest(c, fmt.Errorf("invalid format for parameter startDate: %w", err))
		return nil, nil, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "endDate", query, &end); err != nil {
		respondBadRequest(c, fmt.Errorf("invalid format for parameter endDate: %w", err))
		return nil, nil, false
	}
	return startOfDay(start), endOfDay(end), true
}
