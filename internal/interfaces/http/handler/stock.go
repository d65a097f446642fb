package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appstock "github.com/wms/inventory/internal/application/stock"
	"github.com/wms/inventory/internal/domain/stock"
)

// ProductDirectory resolves product display names for responses. Lookups
// are best effort: a failure degrades to an empty name, never an error
// response.
type ProductDirectory interface {
	DisplayName(ctx context.Context, productColorID string) (string, error)
}

// StockHandler exposes the stock ledger: upsert/increase/decrease/transfer
// mutations, availability queries and the transaction audit trail.
type StockHandler struct {
	BaseHandler
	stockService *appstock.StockService
	products     ProductDirectory
}

// NewStockHandler creates a new StockHandler. products may be nil, in
// which case responses carry no display names.
func NewStockHandler(stockService *appstock.StockService, products ProductDirectory) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		products:     products,
	}
}

// RegisterRoutes registers stock routes on the API group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stocks := rg.Group("/stock")
	{
		stocks.POST("", h.Upsert)
		stocks.POST("/increase", h.Increase)
		stocks.POST("/decrease", h.Decrease)
		stocks.POST("/transfer", h.Transfer)
		stocks.GET("/total", h.Total)
		stocks.GET("/check", h.Check)
		stocks.GET("/global-check", h.GlobalCheck)
	}
	rg.GET("/transactions", h.ListTransactions)
}

// StockRecordResponse is the API projection of a stock record
type StockRecordResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductColorID string    `json:"product_color_id"`
	ProductName    string    `json:"product_name,omitempty"`
	LocationID     uuid.UUID `json:"location_id"`
	ZoneID         uuid.UUID `json:"zone_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	OnHand         int64     `json:"on_hand"`
	Reserved       int64     `json:"reserved"`
	Available      int64     `json:"available"`
	MinQuantity    int64     `json:"min_quantity"`
	MaxQuantity    int64     `json:"max_quantity"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (h *StockHandler) toStockRecordResponse(ctx context.Context, record *stock.StockRecord) StockRecordResponse {
	resp := StockRecordResponse{
		ID:             record.ID,
		ProductColorID: record.ProductColorID,
		LocationID:     record.LocationID,
		ZoneID:         record.ZoneID,
		WarehouseID:    record.WarehouseID,
		OnHand:         record.OnHand,
		Reserved:       record.Reserved,
		Available:      record.Available(),
		MinQuantity:    record.MinQuantity,
		MaxQuantity:    record.MaxQuantity,
		Status:         string(record.Status),
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
	if h.products != nil {
		if name, err := h.products.DisplayName(ctx, record.ProductColorID); err == nil {
			resp.ProductName = name
		}
	}
	return resp
}

// UpsertStockRequest creates or overwrites the record for a
// (location, product color) pair
type UpsertStockRequest struct {
	ProductColorID string `json:"product_color_id" binding:"required"`
	LocationID     string `json:"location_id" binding:"required,uuid"`
	Quantity       int64  `json:"quantity"`
	MinQuantity    int64  `json:"min_quantity"`
	MaxQuantity    int64  `json:"max_quantity"`
}

// Upsert creates or overwrites a stock record
func (h *StockHandler) Upsert(c *gin.Context) {
	var req UpsertStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	record, err := h.stockService.UpsertStock(c.Request.Context(), appstock.UpsertStockInput{
		ProductColorID: req.ProductColorID,
		LocationID:     locationID,
		Quantity:       req.Quantity,
		MinQuantity:    req.MinQuantity,
		MaxQuantity:    req.MaxQuantity,
		ActorID:        getActorID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, h.toStockRecordResponse(c.Request.Context(), record))
}

// AdjustStockRequest carries an increase or decrease amount
type AdjustStockRequest struct {
	ProductColorID string `json:"product_color_id" binding:"required"`
	LocationID     string `json:"location_id" binding:"required,uuid"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
}

// Increase adds inbound stock to a location
func (h *StockHandler) Increase(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	record, err := h.stockService.IncreaseStock(c.Request.Context(), req.ProductColorID, locationID, req.Amount, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, h.toStockRecordResponse(c.Request.Context(), record))
}

// Decrease removes outbound stock from a location
func (h *StockHandler) Decrease(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	record, err := h.stockService.DecreaseStock(c.Request.Context(), req.ProductColorID, locationID, req.Amount, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, h.toStockRecordResponse(c.Request.Context(), record))
}

// TransferStockRequest moves stock between two locations
type TransferStockRequest struct {
	ProductColorID string `json:"product_color_id" binding:"required"`
	FromLocationID string `json:"from_location_id" binding:"required,uuid"`
	ToLocationID   string `json:"to_location_id" binding:"required,uuid"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
}

// Transfer moves stock between locations in one atomic unit
func (h *StockHandler) Transfer(c *gin.Context) {
	var req TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	fromID, err := uuid.Parse(req.FromLocationID)
	if err != nil {
		h.BadRequest(c, "Invalid from_location_id format")
		return
	}
	toID, err := uuid.Parse(req.ToLocationID)
	if err != nil {
		h.BadRequest(c, "Invalid to_location_id format")
		return
	}

	if err := h.stockService.TransferStock(c.Request.Context(), req.ProductColorID, fromID, toID, req.Amount, getActorID(c)); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// TotalStockResponse reports the summed on-hand for a product
type TotalStockResponse struct {
	ProductColorID string `json:"product_color_id"`
	ProductName    string `json:"product_name,omitempty"`
	Total          int64  `json:"total"`
}

// Total reports the product's summed on-hand across all warehouses
func (h *StockHandler) Total(c *gin.Context) {
	productColorID := c.Query("product_color_id")
	if productColorID == "" {
		h.BadRequest(c, "product_color_id is required")
		return
	}

	total, err := h.stockService.TotalStock(c.Request.Context(), productColorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := TotalStockResponse{ProductColorID: productColorID, Total: total}
	if h.products != nil {
		if name, err := h.products.DisplayName(c.Request.Context(), productColorID); err == nil {
			resp.ProductName = name
		}
	}
	h.Success(c, resp)
}

// StockCheckRequest queries whether required units are available
type StockCheckRequest struct {
	ProductColorID string `form:"product_color_id" binding:"required"`
	LocationID     string `form:"location_id"`
	Required       int64  `form:"required" binding:"required,gt=0"`
}

// StockCheckResponse reports an availability check result
type StockCheckResponse struct {
	ProductColorID string `json:"product_color_id"`
	Required       int64  `json:"required"`
	Sufficient     bool   `json:"sufficient"`
}

// Check reports whether one location can cover the required quantity
func (h *StockHandler) Check(c *gin.Context) {
	var req StockCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		h.BadRequest(c, "Invalid location_id format")
		return
	}

	ok, err := h.stockService.HasSufficientStock(c.Request.Context(), req.ProductColorID, locationID, req.Required)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, StockCheckResponse{
		ProductColorID: req.ProductColorID,
		Required:       req.Required,
		Sufficient:     ok,
	})
}

// GlobalCheck reports whether the whole network can cover the required quantity
func (h *StockHandler) GlobalCheck(c *gin.Context) {
	var req StockCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ok, err := h.stockService.HasSufficientGlobalStock(c.Request.Context(), req.ProductColorID, req.Required)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, StockCheckResponse{
		ProductColorID: req.ProductColorID,
		Required:       req.Required,
		Sufficient:     ok,
	})
}

// ListTransactionsRequest filters the transaction history
type ListTransactionsRequest struct {
	ProductColorID string `form:"product_color_id"`
	WarehouseID    string `form:"warehouse_id" binding:"omitempty,uuid"`
	ZoneID         string `form:"zone_id" binding:"omitempty,uuid"`
	Type           string `form:"type"`
	From           string `form:"from" binding:"omitempty"`
	To             string `form:"to" binding:"omitempty"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// StockTransactionResponse is the API projection of an audit row
type StockTransactionResponse struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	Quantity       int64     `json:"quantity"`
	SignedQuantity int64     `json:"signed_quantity"`
	ProductColorID string    `json:"product_color_id"`
	StockRecordID  uuid.UUID `json:"stock_record_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	ZoneID         uuid.UUID `json:"zone_id"`
	ActorID        string    `json:"actor_id,omitempty"`
	OrderID        *int64    `json:"order_id,omitempty"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ListTransactions returns a page of the audit trail
func (h *StockHandler) ListTransactions(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := stock.TransactionFilter{
		ProductColorID: req.ProductColorID,
		Type:           stock.TransactionType(req.Type),
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
	if req.WarehouseID != "" {
		id, err := uuid.Parse(req.WarehouseID)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse_id format")
			return
		}
		filter.WarehouseID = &id
	}
	if req.ZoneID != "" {
		id, err := uuid.Parse(req.ZoneID)
		if err != nil {
			h.BadRequest(c, "Invalid zone_id format")
			return
		}
		filter.ZoneID = &id
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			h.BadRequest(c, "Invalid from timestamp, expected RFC3339")
			return
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			h.BadRequest(c, "Invalid to timestamp, expected RFC3339")
			return
		}
		filter.To = &to
	}

	page, err := h.stockService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]StockTransactionResponse, 0, len(page.Items))
	for i := range page.Items {
		tx := &page.Items[i]
		items = append(items, StockTransactionResponse{
			ID:             tx.ID,
			Type:           string(tx.Type),
			Quantity:       tx.Quantity,
			SignedQuantity: tx.SignedQuantity(),
			ProductColorID: tx.ProductColorID,
			StockRecordID:  tx.StockRecordID,
			WarehouseID:    tx.WarehouseID,
			ZoneID:         tx.ZoneID,
			ActorID:        tx.ActorID,
			OrderID:        tx.OrderID,
			Note:           tx.Note,
			OccurredAt:     tx.OccurredAt,
		})
	}

	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}
