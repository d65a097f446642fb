package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appstock "github.com/wms/inventory/internal/application/stock"
)

// ReservationHandler exposes the reservation engine over HTTP. This is
// the synchronous path; bulk order flow arrives through the Kafka
// consumers instead.
type ReservationHandler struct {
	BaseHandler
	reservations *appstock.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservations *appstock.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// RegisterRoutes registers reservation routes on the API group
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/reservations")
	{
		group.POST("", h.Reserve)
		group.DELETE("/:orderId", h.Release)
	}
}

// ReserveStockRequest asks to hold stock for one product of an order
type ReserveStockRequest struct {
	OrderID              int64    `json:"order_id" binding:"required,gt=0"`
	ProductColorID       string   `json:"product_color_id" binding:"required"`
	Quantity             int64    `json:"quantity" binding:"required,gt=0"`
	PreferredWarehouseID string   `json:"preferred_warehouse_id" binding:"omitempty,uuid"`
	WarehousePriority    []string `json:"warehouse_priority" binding:"omitempty,dive,uuid"`
}

// Reserve holds stock for an order. Partial and zero fulfillment are
// reported in the result, not as errors; the caller decides whether a
// shortfall is acceptable.
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := appstock.ReserveStockInput{
		OrderID:        req.OrderID,
		ProductColorID: req.ProductColorID,
		Quantity:       req.Quantity,
	}
	if req.PreferredWarehouseID != "" {
		id, err := uuid.Parse(req.PreferredWarehouseID)
		if err != nil {
			h.BadRequest(c, "Invalid preferred_warehouse_id format")
			return
		}
		input.PreferredWarehouseID = id
	}
	for _, raw := range req.WarehousePriority {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse_priority entry")
			return
		}
		input.WarehousePriority = append(input.WarehousePriority, id)
	}

	result, err := h.reservations.ReserveStock(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Release returns everything an order still holds to the available pool.
// Releasing an order with no reservations succeeds as a no-op.
func (h *ReservationHandler) Release(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.reservations.ReleaseReservedStock(c.Request.Context(), orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
