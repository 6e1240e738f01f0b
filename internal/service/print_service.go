// internal/service/print_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-service/internal/dispatch"
	"print-service/internal/model"
	"print-service/internal/profile"
	"print-service/internal/repository"
	"print-service/internal/utils"
)

// PrintService is the single entry point order-flow code calls to put paper
// in a customer's hand. It validates the receipt, hands it to the dispatcher
// and relays the outcome without interpretation.
type PrintService struct {
	dispatcher  *dispatch.Dispatcher
	resolver    *profile.Resolver
	profileRepo repository.ProfileRepository
	logger      *utils.ServiceLogger
}

// NewPrintService creates a new print service instance
func NewPrintService(
	dispatcher *dispatch.Dispatcher,
	resolver *profile.Resolver,
	profileRepo repository.ProfileRepository,
	logger *zap.Logger,
) *PrintService {
	return &PrintService{
		dispatcher:  dispatcher,
		resolver:    resolver,
		profileRepo: profileRepo,
		logger:      utils.NewServiceLogger(logger, "print-service"),
	}
}

// PrintKOT prints the kitchen order ticket for an order. A validation error
// is returned before any transport is attempted; dispatch outcomes are always
// expressed in the PrintResult.
func (ps *PrintService) PrintKOT(ctx context.Context, cafeID uuid.UUID, receipt *model.ReceiptData) (model.PrintResult, error) {
	if err := receipt.Validate(); err != nil {
		return model.PrintResult{}, fmt.Errorf("invalid receipt data: %w", err)
	}
	return ps.dispatcher.Dispatch(ctx, receipt, cafeID, model.DocTypeKOT), nil
}

// PrintReceipt prints the customer receipt for an order
func (ps *PrintService) PrintReceipt(ctx context.Context, cafeID uuid.UUID, receipt *model.ReceiptData) (model.PrintResult, error) {
	if err := receipt.Validate(); err != nil {
		return model.PrintResult{}, fmt.Errorf("invalid receipt data: %w", err)
	}
	return ps.dispatcher.Dispatch(ctx, receipt, cafeID, model.DocTypeReceipt), nil
}

// PrintBoth prints the KOT and the receipt as two independent dispatches and
// reports partial success distinctly.
func (ps *PrintService) PrintBoth(ctx context.Context, cafeID uuid.UUID, receipt *model.ReceiptData) (model.BothResult, error) {
	if err := receipt.Validate(); err != nil {
		return model.BothResult{}, fmt.Errorf("invalid receipt data: %w", err)
	}
	return ps.dispatcher.DispatchBoth(ctx, receipt, cafeID), nil
}

// TestPrint sends a clearly labeled synthetic receipt through the full
// pipeline so cafe staff can verify their printer setup end to end.
func (ps *PrintService) TestPrint(ctx context.Context, cafeID uuid.UUID) model.PrintResult {
	receipt := testReceiptData()

	ps.logger.Info("Test print requested",
		zap.String("cafe_id", cafeID.String()),
		zap.String("order_number", receipt.OrderNumber),
	)

	return ps.dispatcher.Dispatch(ctx, receipt, cafeID, model.DocTypeReceipt)
}

// ListProfiles returns every printer profile registered for a cafe
func (ps *PrintService) ListProfiles(ctx context.Context, cafeID uuid.UUID) ([]*model.PrinterProfile, error) {
	return ps.profileRepo.ListByCafe(ctx, cafeID)
}

// InvalidateProfiles drops the cached printer profiles for a cafe so the
// next print picks up changed settings.
func (ps *PrintService) InvalidateProfiles(cafeID uuid.UUID) {
	ps.resolver.Invalidate(cafeID)
	ps.logger.Info("Printer profile cache invalidated", zap.String("cafe_id", cafeID.String()))
}

// InvalidateAllProfiles empties the whole profile cache
func (ps *PrintService) InvalidateAllProfiles() {
	ps.resolver.InvalidateAll()
	ps.logger.Info("Printer profile cache fully invalidated")
}

// testReceiptData builds the synthetic order used by TestPrint. The TEST
// prefix keeps it unmistakable on paper.
func testReceiptData() *model.ReceiptData {
	unitPrice := decimal.NewFromInt(100)
	return &model.ReceiptData{
		OrderID:      uuid.New(),
		OrderNumber:  fmt.Sprintf("TEST-%s", time.Now().Format("150405")),
		CafeName:     "PRINTER TEST",
		CustomerName: "Test Customer",
		DeliveryMode: model.DeliveryModePickup,
		Items: []model.ReceiptItem{
			{
				ItemID:       uuid.New(),
				Name:         "Test Item",
				Quantity:     1,
				UnitPrice:    unitPrice,
				LineTotal:    unitPrice,
				Instructions: "This is a test print",
			},
		},
		Subtotal:      unitPrice,
		TaxAmount:     decimal.NewFromInt(5),
		TaxRate:       decimal.NewFromInt(5),
		FinalAmount:   decimal.NewFromInt(105),
		PaymentMethod: model.PaymentMethodPending,
		OrderedAt:     time.Now(),
	}
}
