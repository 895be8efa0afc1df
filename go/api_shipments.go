package trackerserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	shipmentmapper "github.com/Apurer/supplychain-tracker/internal/domains/shipments/adapters/http/mapper"
	shipmenttypes "github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	shipmentports "github.com/Apurer/supplychain-tracker/internal/domains/shipments/ports"
)

// ShipmentAPI wires HTTP transport with the shipments service.
type ShipmentAPI struct {
	service shipmentports.Service
}

func NewShipmentAPI(service shipmentports.Service) ShipmentAPI {
	return ShipmentAPI{service: service}
}

// Post /api/shipments
func (api *ShipmentAPI) CreateShipment(c *gin.Context) {
	var payload shipmentmapper.CreateShipment
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	saved, err := api.service.CreateShipment(c.Request.Context(), shipmentmapper.ToCreateInput(actorFrom(c), payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipmentmapper.FromProjection(saved))
}

// Get /api/shipments
func (api *ShipmentAPI) ListShipments(c *gin.Context) {
	result, err := api.service.List(c.Request.Context(), shipmenttypes.ListShipmentsInput{
		Status:    c.Query("status"),
		PartyID:   c.Query("userId"),
		ProductID: c.Query("productId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentmapper.FromProjectionList(result))
}

// Get /api/shipments/:id
func (api *ShipmentAPI) GetShipment(c *gin.Context) {
	shipment, err := api.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentmapper.FromProjection(shipment))
}

// Patch /api/shipments/:id/status
func (api *ShipmentAPI) UpdateShipmentStatus(c *gin.Context) {
	var payload shipmentmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.UpdateShipmentStatus(c.Request.Context(), shipmenttypes.UpdateStatusInput{
		ShipmentID: c.Param("id"),
		Actor:      actorFrom(c),
		Status:     payload.Status,
		Location:   payload.Location,
		Notes:      payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentmapper.FromProjection(updated))
}

// Post /api/shipments/:id/delays
func (api *ShipmentAPI) ReportDelay(c *gin.Context) {
	var payload shipmentmapper.DelayReport
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.ReportDelay(c.Request.Context(), shipmenttypes.ReportDelayInput{
		ShipmentID: c.Param("id"),
		Actor:      actorFrom(c),
		Reason:     payload.Reason,
		Notes:      payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentmapper.FromProjection(updated))
}

// Post /api/shipments/:id/delays/:index/resolve
func (api *ShipmentAPI) ResolveDelay(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondBadRequest(c, fmt.Errorf("delay index %q is not a number", c.Param("index")))
		return
	}
	updated, err := api.service.ResolveDelay(c.Request.Context(), shipmenttypes.ResolveDelayInput{
		ShipmentID: c.Param("id"),
		Actor:      actorFrom(c),
		Index:      index,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentmapper.FromProjection(updated))
}
