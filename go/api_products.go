package trackerserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	productmapper "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/http/mapper"
	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	productports "github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
)

// IdempotencyHeader lets clients retry product registration safely.
const IdempotencyHeader = "Idempotency-Key"

// ProductAPI wires HTTP transport with the products service and workflows.
type ProductAPI struct {
	service   productports.Service
	workflows productports.WorkflowOrchestrator
}

// NewProductAPI creates a ProductAPI. Registration goes through workflows
// when they are configured.
func NewProductAPI(service productports.Service, workflows productports.WorkflowOrchestrator) ProductAPI {
	return ProductAPI{service: service, workflows: workflows}
}

// Post /api/products
// Registers a product at the manufactured state
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload productmapper.CreateProduct
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := productmapper.ToCreateInput(actorFrom(c), payload, c.GetHeader(IdempotencyHeader))
	saved, err := api.registerProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, productmapper.FromProjection(saved))
}

func (api *ProductAPI) registerProduct(ctx context.Context, input producttypes.CreateProductInput) (*producttypes.ProductProjection, error) {
	if api.workflows != nil {
		return api.workflows.RegisterProduct(ctx, input)
	}
	return api.service.CreateProduct(ctx, input)
}

// Get /api/products
func (api *ProductAPI) ListProducts(c *gin.Context) {
	input := producttypes.ListProductsInput{
		Statuses: c.QueryArray("status"),
		Category: c.Query("category"),
		OwnerID:  c.Query("owner"),
	}
	result, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromProjectionList(result))
}

// Get /api/products/:id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	product, err := api.service.GetByID(c.Request.Context(), producttypes.ProductIdentifier{ID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromProjection(product))
}

// Get /api/products/tracking/:trackingNumber
func (api *ProductAPI) GetProductByTrackingNumber(c *gin.Context) {
	product, err := api.service.GetByTrackingNumber(c.Request.Context(), producttypes.TrackingLookup{TrackingNumber: c.Param("trackingNumber")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromProjection(product))
}

// Get /api/products/:id/timeline
func (api *ProductAPI) GetProductTimeline(c *gin.Context) {
	entries, err := api.service.Timeline(c.Request.Context(), producttypes.ProductIdentifier{ID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromTimeline(entries))
}

// Patch /api/products/:id/status
// Moves the product along the lifecycle
func (api *ProductAPI) UpdateProductStatus(c *gin.Context) {
	var payload productmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.RequestStatusTransition(c.Request.Context(), producttypes.TransitionInput{
		ProductID:    c.Param("id"),
		Actor:        actorFrom(c),
		TargetStatus: payload.Status,
		Location:     payload.Location,
		Notes:        payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromProjection(updated))
}

// Post /api/products/:id/quality-check
func (api *ProductAPI) PerformQualityCheck(c *gin.Context) {
	var payload productmapper.QualityCheckRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.PerformQualityCheck(c.Request.Context(), productmapper.ToQualityCheckInput(c.Param("id"), actorFrom(c), payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromProjection(updated))
}

// Post /api/products/:id/quality-check/auto
func (api *ProductAPI) AutoQualityCheck(c *gin.Context) {
	updated, err := api.service.AutoQualityCheck(c.Request.Context(), producttypes.AutoQualityCheckInput{
		ProductID: c.Param("id"),
		Actor:     actorFrom(c),
		Location:  c.Query("location"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productmapper.FromProjection(updated))
}
