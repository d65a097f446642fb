package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appwarehouse "github.com/wms/inventory/internal/application/warehouse"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/warehouse"
	"github.com/wms/inventory/internal/interfaces/http/dto"
)

// WarehouseHandler exposes the storage hierarchy: warehouses, their
// zones and the storage locations inside the zones.
type WarehouseHandler struct {
	BaseHandler
	warehouseService *appwarehouse.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *appwarehouse.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

// RegisterRoutes registers storage hierarchy routes on the API group
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", h.Create)
		warehouses.GET("", h.List)
		warehouses.GET("/:id", h.GetByID)
		warehouses.PUT("/:id", h.Update)
		warehouses.POST("/:id/disable", h.Disable)
		warehouses.DELETE("/:id", h.Delete)
		warehouses.POST("/:id/zones", h.CreateZone)
		warehouses.GET("/:id/zones", h.ListZones)
	}
	zones := rg.Group("/zones")
	{
		zones.PUT("/:id/capacity", h.SetZoneCapacity)
		zones.GET("/:id/capacity-check", h.CheckZoneCapacity)
		zones.POST("/:id/locations", h.CreateLocation)
		zones.GET("/:id/locations", h.ListLocations)
	}
}

// WarehouseResponse is the API projection of a warehouse
type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	StoreID   string    `json:"store_id,omitempty"`
	Capacity  int64     `json:"capacity"`
	Status    string    `json:"status"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toWarehouseResponse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		StoreID:   w.StoreID,
		Capacity:  w.Capacity,
		Status:    string(w.Status),
		Address:   w.Address,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// ZoneResponse is the API projection of a zone
type ZoneResponse struct {
	ID          uuid.UUID `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Capacity    int64     `json:"capacity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toZoneResponse(z *warehouse.Zone) ZoneResponse {
	return ZoneResponse{
		ID:          z.ID,
		WarehouseID: z.WarehouseID,
		Name:        z.Name,
		Code:        string(z.Code),
		Capacity:    z.Capacity,
		Status:      string(z.Status),
		CreatedAt:   z.CreatedAt,
		UpdatedAt:   z.UpdatedAt,
	}
}

// LocationResponse is the API projection of a storage location
type LocationResponse struct {
	ID           uuid.UUID `json:"id"`
	ZoneID       uuid.UUID `json:"zone_id"`
	WarehouseID  uuid.UUID `json:"warehouse_id"`
	Code         string    `json:"code"`
	RowLabel     string    `json:"row_label"`
	ColumnNumber int       `json:"column_number"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toLocationResponse(l *warehouse.StorageLocation) LocationResponse {
	return LocationResponse{
		ID:           l.ID,
		ZoneID:       l.ZoneID,
		WarehouseID:  l.WarehouseID,
		Code:         l.Code,
		RowLabel:     l.RowLabel,
		ColumnNumber: l.ColumnNumber,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
	}
}

// CreateWarehouseRequest registers a new warehouse
type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required,min=1,max=50"`
	Name    string `json:"name" binding:"required,min=1,max=200"`
	StoreID string `json:"store_id" binding:"max=64"`
}

// Create registers a new warehouse
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	w, err := h.warehouseService.CreateWarehouse(c.Request.Context(), req.Code, req.Name, req.StoreID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toWarehouseResponse(w))
}

// GetByID loads one warehouse
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	w, err := h.warehouseService.GetWarehouse(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toWarehouseResponse(w))
}

// List returns a paginated warehouse listing
func (h *WarehouseHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if code := c.Query("code"); code != "" {
		filter.Filters["code"] = code
	}
	if name := c.Query("name"); name != "" {
		filter.Filters["name"] = name
	}

	page, err := h.warehouseService.ListWarehouses(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]WarehouseResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toWarehouseResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// UpdateWarehouseRequest updates a warehouse's descriptive fields
type UpdateWarehouseRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Address string `json:"address" binding:"max=500"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// Update updates a warehouse's descriptive fields
func (h *WarehouseHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	var req UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	w, err := h.warehouseService.UpdateWarehouse(c.Request.Context(), id, req.Name, req.Address, req.Notes)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toWarehouseResponse(w))
}

// Disable takes a warehouse out of service
func (h *WarehouseHandler) Disable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	if err := h.warehouseService.DisableWarehouse(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete soft-deletes a warehouse
func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	if err := h.warehouseService.DeleteWarehouse(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateZoneRequest adds a zone to a warehouse
type CreateZoneRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Code     string `json:"code" binding:"required"`
	Capacity int64  `json:"capacity" binding:"gte=0"`
}

// CreateZone adds a zone to a warehouse
func (h *WarehouseHandler) CreateZone(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	var req CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	z, err := h.warehouseService.CreateZone(c.Request.Context(), warehouseID, req.Name, warehouse.ZoneCode(req.Code), req.Capacity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toZoneResponse(z))
}

// ListZones returns the zones of a warehouse
func (h *WarehouseHandler) ListZones(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	zones, err := h.warehouseService.ListZones(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]ZoneResponse, 0, len(zones))
	for i := range zones {
		items = append(items, toZoneResponse(&zones[i]))
	}
	h.Success(c, items)
}

// SetZoneCapacityRequest adjusts a zone's capacity bound
type SetZoneCapacityRequest struct {
	Capacity int64 `json:"capacity" binding:"gte=0"`
}

// SetZoneCapacity adjusts a zone's capacity bound
func (h *WarehouseHandler) SetZoneCapacity(c *gin.Context) {
	zoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid zone ID format")
		return
	}

	var req SetZoneCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	z, err := h.warehouseService.SetZoneCapacity(c.Request.Context(), zoneID, req.Capacity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toZoneResponse(z))
}

// ZoneCapacityCheckResponse reports whether additional units fit
type ZoneCapacityCheckResponse struct {
	ZoneID     uuid.UUID `json:"zone_id"`
	Additional int64     `json:"additional"`
	Fits       bool      `json:"fits"`
}

// CheckZoneCapacity reports whether additional units fit under the
// zone's capacity bound
func (h *WarehouseHandler) CheckZoneCapacity(c *gin.Context) {
	zoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid zone ID format")
		return
	}

	var query struct {
		Additional int64 `form:"additional" binding:"required,gt=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fits, err := h.warehouseService.ZoneHasCapacityFor(c.Request.Context(), zoneID, query.Additional)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ZoneCapacityCheckResponse{
		ZoneID:     zoneID,
		Additional: query.Additional,
		Fits:       fits,
	})
}

// CreateLocationRequest adds a storage location to a zone
type CreateLocationRequest struct {
	RowLabel     string `json:"row_label" binding:"required,min=1,max=10"`
	ColumnNumber int    `json:"column_number" binding:"required,gt=0"`
}

// CreateLocation adds a storage location to a zone
func (h *WarehouseHandler) CreateLocation(c *gin.Context) {
	zoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid zone ID format")
		return
	}

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	location, err := h.warehouseService.CreateLocation(c.Request.Context(), zoneID, req.RowLabel, req.ColumnNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toLocationResponse(location))
}

// ListLocations returns the storage locations of a zone
func (h *WarehouseHandler) ListLocations(c *gin.Context) {
	zoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid zone ID format")
		return
	}

	locations, err := h.warehouseService.ListLocations(c.Request.Context(), zoneID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]LocationResponse, 0, len(locations))
	for i := range locations {
		items = append(items, toLocationResponse(&locations[i]))
	}
	h.Success(c, items)
}
