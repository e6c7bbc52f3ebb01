package purchasing

import (
	"context"

	"go.uber.org/zap"

	"github.com/procurio/backend/internal/domain/purchasing"
	"github.com/procurio/backend/internal/domain/shared"
)

// OrderLifecycleLogHandler writes a structured log entry for every
// purchase order lifecycle event. It gives operators a queryable trail
// of who moved which order where, independent of the action log rows.
type OrderLifecycleLogHandler struct {
	logger *zap.Logger
}

// NewOrderLifecycleLogHandler creates a new handler for purchase order lifecycle events
func NewOrderLifecycleLogHandler(logger *zap.Logger) *OrderLifecycleLogHandler {
	return &OrderLifecycleLogHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderLifecycleLogHandler) EventTypes() []string {
	return []string{
		purchasing.EventTypePurchaseOrderCreated,
		purchasing.EventTypePurchaseOrderApproved,
		purchasing.EventTypePurchaseOrderRejected,
		purchasing.EventTypePurchaseOrderVoided,
	}
}

// Handle logs the lifecycle event with its identifying fields
func (h *OrderLifecycleLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("order_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
	}

	switch evt := event.(type) {
	case *purchasing.PurchaseOrderCreatedEvent:
		fields = append(fields,
			zap.String("order_number", evt.OrderNumber),
			zap.String("supplier_id", evt.SupplierID.String()),
		)
	case *purchasing.PurchaseOrderApprovedEvent:
		fields = append(fields,
			zap.String("order_number", evt.OrderNumber),
			zap.String("approved_by", evt.ApprovedBy.String()),
			zap.String("total_amount_due", evt.TotalAmountDue.String()),
		)
	case *purchasing.PurchaseOrderRejectedEvent:
		fields = append(fields,
			zap.String("order_number", evt.OrderNumber),
			zap.String("rejected_by", evt.RejectedBy.String()),
		)
	case *purchasing.PurchaseOrderVoidedEvent:
		fields = append(fields,
			zap.String("order_number", evt.OrderNumber),
			zap.String("voided_by", evt.VoidedBy.String()),
			zap.Bool("was_approved", evt.WasApproved),
		)
	}

	h.logger.Info("purchase order lifecycle event", fields...)
	return nil
}

// Ensure OrderLifecycleLogHandler implements shared.EventHandler
var _ shared.EventHandler = (*OrderLifecycleLogHandler)(nil)
