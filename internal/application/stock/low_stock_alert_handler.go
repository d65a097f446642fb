package stock

import (
	"context"
	"fmt"

	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"go.uber.org/zap"
)

// LowStockNotifier sends low stock alerts. Implementations can back
// different channels (in-app, email, webhook).
type LowStockNotifier interface {
	Notify(ctx context.Context, alert LowStockAlert) error
}

// LowStockAlert describes one record that dropped to or under its
// minimum threshold
type LowStockAlert struct {
	ProductColorID string `json:"product_color_id"`
	WarehouseID    string `json:"warehouse_id"`
	OnHand         int64  `json:"on_hand"`
	MinQuantity    int64  `json:"min_quantity"`
	AlertType      string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// LowStockAlertHandler reacts to low stock events from the periodic
// scan. Notification failures are logged, never propagated: an alert
// channel outage must not fail event dispatch.
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier LowStockNotifier
}

// NewLowStockAlertHandler creates a new handler for low stock events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier LowStockNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{stock.EventTypeLowStockDetected}
}

// Handle processes a LowStockDetectedEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*stock.LowStockDetectedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeLowStockDetected, event.EventType())
	}

	alertType := "low_stock"
	if lowStock.OnHand == 0 {
		alertType = "out_of_stock"
	}

	h.logger.Warn("low stock detected",
		zap.String("product_color_id", lowStock.ProductColorID),
		zap.String("warehouse_id", lowStock.WarehouseID.String()),
		zap.Int64("on_hand", lowStock.OnHand),
		zap.Int64("min_quantity", lowStock.MinQuantity),
		zap.String("alert_type", alertType),
	)

	if h.notifier == nil {
		return nil
	}

	alert := LowStockAlert{
		ProductColorID: lowStock.ProductColorID,
		WarehouseID:    lowStock.WarehouseID.String(),
		OnHand:         lowStock.OnHand,
		MinQuantity:    lowStock.MinQuantity,
		AlertType:      alertType,
	}
	if err := h.notifier.Notify(ctx, alert); err != nil {
		h.logger.Error("failed to send low stock alert",
			zap.String("product_color_id", alert.ProductColorID),
			zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingLowStockNotifier logs alerts instead of delivering them. Used
// until a real alert channel is wired.
type LoggingLowStockNotifier struct {
	logger *zap.Logger
}

// NewLoggingLowStockNotifier creates a new logging notifier
func NewLoggingLowStockNotifier(logger *zap.Logger) *LoggingLowStockNotifier {
	return &LoggingLowStockNotifier{logger: logger}
}

// Notify logs the alert
func (n *LoggingLowStockNotifier) Notify(_ context.Context, alert LowStockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_color_id", alert.ProductColorID),
		zap.String("warehouse_id", alert.WarehouseID),
		zap.Int64("on_hand", alert.OnHand),
		zap.Int64("min_quantity", alert.MinQuantity),
	)
	return nil
}

var _ LowStockNotifier = (*LoggingLowStockNotifier)(nil)
