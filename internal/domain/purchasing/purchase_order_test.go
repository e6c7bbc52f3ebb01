package purchasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/domain/shared/valueobject"
)

func createTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder(uuid.New(), "PO-2405-0001", uuid.New(), "Siam Paper Co.",
		VatOptionIncluded, valueobject.RatePtr(0.07), DiscountPolicyPerLine, uuid.New())
	require.NoError(t, err)
	return order
}

func createTestOrderWithItems(t *testing.T, n int) *PurchaseOrder {
	t.Helper()
	order := createTestOrder(t)
	for i := 0; i < n; i++ {
		_, err := order.AddItem(testItemInput())
		require.NoError(t, err)
	}
	return order
}

// ============================================
// PurchaseOrderStatus Tests
// ============================================

func TestPurchaseOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  PurchaseOrderStatus
		isValid bool
	}{
		{PurchaseOrderStatusPending, true},
		{PurchaseOrderStatusApproved, true},
		{PurchaseOrderStatusRejected, true},
		{PurchaseOrderStatusVoided, true},
		{PurchaseOrderStatus("DRAFT"), false},
		{PurchaseOrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestPurchaseOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     PurchaseOrderStatus
		to       PurchaseOrderStatus
		canTrans bool
	}{
		// From PENDING
		{PurchaseOrderStatusPending, PurchaseOrderStatusApproved, true},
		{PurchaseOrderStatusPending, PurchaseOrderStatusRejected, true},
		{PurchaseOrderStatusPending, PurchaseOrderStatusVoided, true},
		{PurchaseOrderStatusPending, PurchaseOrderStatusPending, false},
		// From APPROVED
		{PurchaseOrderStatusApproved, PurchaseOrderStatusVoided, true},
		{PurchaseOrderStatusApproved, PurchaseOrderStatusPending, false},
		{PurchaseOrderStatusApproved, PurchaseOrderStatusRejected, false},
		{PurchaseOrderStatusApproved, PurchaseOrderStatusApproved, false},
		// From REJECTED (terminal)
		{PurchaseOrderStatusRejected, PurchaseOrderStatusPending, false},
		{PurchaseOrderStatusRejected, PurchaseOrderStatusApproved, false},
		{PurchaseOrderStatusRejected, PurchaseOrderStatusVoided, false},
		// From VOIDED (terminal)
		{PurchaseOrderStatusVoided, PurchaseOrderStatusPending, false},
		{PurchaseOrderStatusVoided, PurchaseOrderStatusApproved, false},
		{PurchaseOrderStatusVoided, PurchaseOrderStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// NewPurchaseOrder Tests
// ============================================

func TestNewPurchaseOrder_Success(t *testing.T) {
	tenantID := uuid.New()
	createdBy := uuid.New()
	order, err := NewPurchaseOrder(tenantID, "PO-2405-0001", uuid.New(), "Siam Paper Co.",
		VatOptionIncluded, valueobject.RatePtr(0.07), DiscountPolicyPerLine, createdBy)

	require.NoError(t, err)
	assert.Equal(t, tenantID, order.TenantID)
	assert.Equal(t, PurchaseOrderStatusPending, order.Status)
	assert.Equal(t, valueobject.THB, order.Currency)
	assert.Empty(t, order.Items)
	assert.Len(t, order.GetDomainEvents(), 1)

	require.Len(t, order.Actions, 1)
	assert.Equal(t, OrderActionCreate, order.Actions[0].Action)
	assert.Equal(t, createdBy, order.Actions[0].UserID)
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	tests := []struct {
		name     string
		run      func() error
		wantCode string
	}{
		{"empty number", func() error {
			_, err := NewPurchaseOrder(uuid.New(), "", uuid.New(), "S", VatOptionNone, nil, DiscountPolicyPerLine, uuid.New())
			return err
		}, "INVALID_ORDER_NUMBER"},
		{"nil supplier", func() error {
			_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.Nil, "S", VatOptionNone, nil, DiscountPolicyPerLine, uuid.New())
			return err
		}, "INVALID_SUPPLIER"},
		{"empty supplier name", func() error {
			_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "", VatOptionNone, nil, DiscountPolicyPerLine, uuid.New())
			return err
		}, "INVALID_SUPPLIER_NAME"},
		{"bad vat option", func() error {
			_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "S", VatOption("SOMETIMES"), nil, DiscountPolicyPerLine, uuid.New())
			return err
		}, "INVALID_VAT_OPTION"},
		{"bad policy", func() error {
			_, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "S", VatOptionNone, nil, DiscountPolicy("SPLIT"), uuid.New())
			return err
		}, "INVALID_POLICY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			domainErr, ok := err.(*shared.DomainError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

// ============================================
// Item mutation Tests
// ============================================

func TestPurchaseOrder_AddItem(t *testing.T) {
	order := createTestOrder(t)

	item, err := order.AddItem(testItemInput())
	require.NoError(t, err)
	assert.Equal(t, 0, item.Position)
	assert.Equal(t, order.ID, item.OrderID)

	assertNear(t, 90.00, order.TotalAmountAfterVat)
	assertNear(t, 87.48, order.TotalAmountDue)
	require.NotNil(t, order.TotalVatAmount)
	require.NotNil(t, order.TotalWithholdingTaxAmount)
}

func TestPurchaseOrder_AddItem_RejectedWhenApproved(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	require.NoError(t, order.Approve(uuid.New()))

	_, err := order.AddItem(testItemInput())
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestPurchaseOrder_ReplaceItems(t *testing.T) {
	order := createTestOrderWithItems(t, 2)
	oldIDs := order.ItemIDs()

	second := testItemInput()
	second.Name = "Ledger binder"
	require.NoError(t, order.ReplaceItems([]PurchaseOrderItemInput{testItemInput(), second, testItemInput()}))

	assert.Len(t, order.Items, 3)
	assert.Equal(t, "Ledger binder", order.Items[1].Name)
	for idx, item := range order.Items {
		assert.Equal(t, idx, item.Position)
		assert.NotContains(t, oldIDs, item.ID)
	}
}

func TestPurchaseOrder_ReplaceItems_EmptyRejected(t *testing.T) {
	order := createTestOrderWithItems(t, 1)

	err := order.ReplaceItems(nil)
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "NO_ITEMS", domainErr.Code)
	assert.Len(t, order.Items, 1)
}

func TestPurchaseOrder_ReplaceItems_AllOrNothing(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	keptDue := order.TotalAmountDue

	bad := testItemInput()
	bad.UnitPrice = decimal.NewFromInt(-5)
	err := order.ReplaceItems([]PurchaseOrderItemInput{testItemInput(), bad})

	require.Error(t, err)
	assert.Len(t, order.Items, 1)
	assert.True(t, keptDue.Equal(order.TotalAmountDue))
}

func TestPurchaseOrder_SetAdditionalDiscount(t *testing.T) {
	order := createTestOrderWithItems(t, 2)

	require.NoError(t, order.SetAdditionalDiscount(decimal.NewFromInt(10)))

	assertNear(t, 170.00, order.TotalAmountAfterVat)
	assertNear(t, 165.23, order.TotalAmountDue)
}

func TestPurchaseOrder_SetAdditionalDiscount_RollbackOnOverflow(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	dueBefore := order.TotalAmountDue

	err := order.SetAdditionalDiscount(decimal.NewFromInt(10000))
	require.Error(t, err)
	assert.True(t, order.AdditionalDiscountAmount.IsZero())
	assert.True(t, dueBefore.Equal(order.TotalAmountDue))
}

func TestPurchaseOrder_RecalculateIdempotent(t *testing.T) {
	order := createTestOrderWithItems(t, 2)
	require.NoError(t, order.SetAdditionalDiscount(decimal.NewFromInt(10)))

	due := order.TotalAmountDue
	beforeVat := order.TotalAmountBeforeVat
	require.NoError(t, order.Recalculate())
	require.NoError(t, order.Recalculate())

	assert.True(t, due.Equal(order.TotalAmountDue))
	assert.True(t, beforeVat.Equal(order.TotalAmountBeforeVat))
}

// ============================================
// Lifecycle Tests
// ============================================

func TestPurchaseOrder_Approve(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	userID := uuid.New()

	require.NoError(t, order.Approve(userID))

	assert.Equal(t, PurchaseOrderStatusApproved, order.Status)
	require.NotNil(t, order.ApprovedAt)
	assert.WithinDuration(t, time.Now(), *order.ApprovedAt, time.Second)

	last := order.Actions[len(order.Actions)-1]
	assert.Equal(t, OrderActionApprove, last.Action)
	assert.Equal(t, userID, last.UserID)
}

func TestPurchaseOrder_Approve_WithoutItems(t *testing.T) {
	order := createTestOrder(t)

	err := order.Approve(uuid.New())
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "NO_ITEMS", domainErr.Code)
	assert.Equal(t, PurchaseOrderStatusPending, order.Status)
}

func TestPurchaseOrder_Reject(t *testing.T) {
	order := createTestOrderWithItems(t, 1)

	require.NoError(t, order.Reject(uuid.New()))
	assert.Equal(t, PurchaseOrderStatusRejected, order.Status)
	require.NotNil(t, order.RejectedAt)
	assert.True(t, order.IsTerminal())
}

func TestPurchaseOrder_VoidAfterApprove(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	require.NoError(t, order.Approve(uuid.New()))

	require.NoError(t, order.Void(uuid.New()))
	assert.Equal(t, PurchaseOrderStatusVoided, order.Status)
	require.NotNil(t, order.VoidedAt)
	require.NotNil(t, order.ApprovedAt) // Approval history survives the void
}

func TestPurchaseOrder_IllegalTransitionsLeaveStateUntouched(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	require.NoError(t, order.Reject(uuid.New()))
	rejectedAt := *order.RejectedAt

	for _, target := range []PurchaseOrderStatus{PurchaseOrderStatusApproved, PurchaseOrderStatusVoided, PurchaseOrderStatusPending} {
		err := order.TransitionTo(target, uuid.New())
		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	}

	assert.Equal(t, PurchaseOrderStatusRejected, order.Status)
	assert.Equal(t, rejectedAt, *order.RejectedAt)
	assert.Nil(t, order.ApprovedAt)
	assert.Nil(t, order.VoidedAt)
}

func TestPurchaseOrder_ActionLogAppendOnly(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	require.NoError(t, order.Approve(uuid.New()))
	require.NoError(t, order.Void(uuid.New()))

	require.Len(t, order.Actions, 3)
	assert.Equal(t, OrderActionCreate, order.Actions[0].Action)
	assert.Equal(t, OrderActionApprove, order.Actions[1].Action)
	assert.Equal(t, OrderActionVoid, order.Actions[2].Action)
	for _, action := range order.Actions {
		assert.NotEqual(t, uuid.Nil, action.ID)
		assert.Equal(t, order.ID, action.OrderID)
	}
}

func TestPurchaseOrder_LifecycleEvents(t *testing.T) {
	order := createTestOrderWithItems(t, 1)
	order.ClearDomainEvents()

	require.NoError(t, order.Approve(uuid.New()))
	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypePurchaseOrderApproved, events[0].EventType())
}

// ============================================
// Reorder Tests
// ============================================

func TestPurchaseOrder_Reorder(t *testing.T) {
	order := createTestOrderWithItems(t, 3)
	ids := order.ItemIDs()
	dueBefore := order.TotalAmountDue

	permuted := []uuid.UUID{ids[2], ids[0], ids[1]}
	require.NoError(t, order.Reorder(permuted, uuid.New()))

	assert.Equal(t, permuted, order.ItemIDs())
	for idx, item := range order.Items {
		assert.Equal(t, idx, item.Position)
	}
	// Ordering carries no monetary effect
	assert.True(t, dueBefore.Equal(order.TotalAmountDue))

	last := order.Actions[len(order.Actions)-1]
	assert.Equal(t, OrderActionReorder, last.Action)
}

func TestPurchaseOrder_Reorder_Rejections(t *testing.T) {
	order := createTestOrderWithItems(t, 3)
	ids := order.ItemIDs()

	tests := []struct {
		name  string
		input []uuid.UUID
	}{
		{"missing id", []uuid.UUID{ids[2], ids[0]}},
		{"unknown id", []uuid.UUID{ids[0], ids[1], uuid.New()}},
		{"duplicate id", []uuid.UUID{ids[0], ids[1], ids[1]}},
		{"too many", []uuid.UUID{ids[0], ids[1], ids[2], ids[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := order.Reorder(tt.input, uuid.New())
			require.Error(t, err)
			domainErr, ok := err.(*shared.DomainError)
			require.True(t, ok)
			assert.Equal(t, "INVALID_ITEM_SEQUENCE", domainErr.Code)
			assert.Equal(t, ids, order.ItemIDs())
		})
	}
}

func TestPurchaseOrder_Helpers(t *testing.T) {
	order := createTestOrderWithItems(t, 2)

	assert.Equal(t, 2, order.ItemCount())
	assert.True(t, order.IsPending())
	assert.True(t, order.CanModify())
	assert.False(t, order.IsApproved())

	item := order.GetItem(order.Items[1].ID)
	require.NotNil(t, item)
	assert.Equal(t, order.Items[1].ID, item.ID)
	assert.Nil(t, order.GetItem(uuid.New()))

	money := order.GetTotalAmountDueMoney()
	assert.Equal(t, valueobject.THB, money.Currency())
}
