package trackerserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	txmapper "github.com/Apurer/supplychain-tracker/internal/domains/transactions/adapters/http/mapper"
	txtypes "github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	txports "github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
)

// TransactionAPI wires HTTP transport with the transactions service.
type TransactionAPI struct {
	service txports.Service
}

func NewTransactionAPI(service txports.Service) TransactionAPI {
	return TransactionAPI{service: service}
}

// ListTransactionsParams defines parameters for ListTransactions.
type ListTransactionsParams struct {
	Status    *string             `form:"status,omitempty" json:"status,omitempty"`
	FromDate  *openapi_types.Date `form:"fromDate,omitempty" json:"fromDate,omitempty"`
	ToDate    *openapi_types.Date `form:"toDate,omitempty" json:"toDate,omitempty"`
	ProductID *string             `form:"productId,omitempty" json:"productId,omitempty"`
	UserID    *string             `form:"userId,omitempty" json:"userId,omitempty"`
	Search    *string             `form:"search,omitempty" json:"search,omitempty"`
	Page      *int                `form:"page,omitempty" json:"page,omitempty"`
	Limit     *int                `form:"limit,omitempty" json:"limit,omitempty"`
	SortBy    *string             `form:"sortBy,omitempty" json:"sortBy,omitempty"`
	SortOrder *string             `form:"sortOrder,omitempty" json:"sortOrder,omitempty"`
}

// Post /api/transactions
func (api *TransactionAPI) CreateTransaction(c *gin.Context) {
	var payload txmapper.CreateTransaction
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	saved, err := api.service.CreateTransaction(c.Request.Context(), txmapper.ToCreateInput(actorFrom(c), payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txmapper.FromProjection(saved))
}

// Get /api/transactions
// Lists transactions with filters, search, sorting and pagination
func (api *TransactionAPI) ListTransactions(c *gin.Context) {
	var params ListTransactionsParams
	query := c.Request.URL.Query()
	for name, dest := range map[string]any{
		"status":    &params.Status,
		"fromDate":  &params.FromDate,
		"toDate":    &params.ToDate,
		"productId": &params.ProductID,
		"userId":    &params.UserID,
		"search":    &params.Search,
		"page":      &params.Page,
		"limit":     &params.Limit,
		"sortBy":    &params.SortBy,
		"sortOrder": &params.SortOrder,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			respondBadRequest(c, fmt.Errorf("invalid format for parameter %s: %w", name, err))
			return
		}
	}
	page, err := api.service.List(c.Request.Context(), params.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txmapper.FromPage(page))
}

func (p ListTransactionsParams) toInput() txtypes.ListTransactionsInput {
	input := txtypes.ListTransactionsInput{
		Status:    deref(p.Status),
		ProductID: deref(p.ProductID),
		UserID:    deref(p.UserID),
		Search:    deref(p.Search),
		SortBy:    deref(p.SortBy),
		SortOrder: deref(p.SortOrder),
		FromDate:  startOfDay(p.FromDate),
		ToDate:    endOfDay(p.ToDate),
	}
	if p.Page != nil {
		input.Page = *p.Page
	}
	if p.Limit != nil {
		input.Limit = *p.Limit
	}
	return input
}

// Get /api/transactions/:id
func (api *TransactionAPI) GetTransaction(c *gin.Context) {
	tx, err := api.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txmapper.FromProjection(tx))
}

// Put /api/transactions/:id/status
func (api *TransactionAPI) UpdateTransactionStatus(c *gin.Context) {
	var payload txmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.UpdateTransactionStatus(c.Request.Context(), txtypes.UpdateStatusInput{
		TransactionID: c.Param("id"),
		Actor:         actorFrom(c),
		Status:        payload.Status,
		Note:          payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txmapper.FromProjection(updated))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func startOfDay(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}

// endOfDay makes a date bound inclusive of the whole day.
func endOfDay(d *openapi_types.Date) *time.Time {
	start := startOfDay(d)
	if start == nil {
		return nil
	}
	t := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &t
}
