// internal/service/print_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/dispatch"
	"print-service/internal/model"
	"print-service/internal/profile"
	"print-service/internal/repository"
	"print-service/internal/transport"
)

type stubRepo struct {
	profile *model.PrinterProfile
}

func (s *stubRepo) GetActiveProfile(ctx context.Context, cafeID uuid.UUID, class model.PrinterClass) (*model.PrinterProfile, error) {
	if s.profile == nil {
		return nil, repository.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *stubRepo) ListByCafe(ctx context.Context, cafeID uuid.UUID) ([]*model.PrinterProfile, error) {
	if s.profile == nil {
		return nil, nil
	}
	return []*model.PrinterProfile{s.profile}, nil
}

type captureTransport struct {
	jobs []*model.PrintJob
}

func (c *captureTransport) Name() string { return model.TransportAgent }

func (c *captureTransport) Send(ctx context.Context, job *model.PrintJob) error {
	c.jobs = append(c.jobs, job)
	return nil
}

func combinedProfile() *model.PrinterProfile {
	host := "10.0.0.5"
	return &model.PrinterProfile{
		ID:           uuid.New(),
		PrinterClass: model.PrinterClassCombined,
		Transport:    model.TransportKindNetwork,
		TaxDisplay:   model.TaxDisplaySingle,
		DecimalStyle: model.DecimalStyleTwoDecimal,
		Host:         &host,
		PaperWidth:   32,
		IsDefault:    true,
		IsActive:     true,
	}
}

func newTestService(repo repository.ProfileRepository, sink transport.Transport) *PrintService {
	resolver := profile.NewResolver(repo, zap.NewNop())
	cfg := &config.DispatchConfig{AttemptTimeout: time.Second}
	dispatcher := dispatch.NewDispatcher(resolver, []transport.Transport{sink}, cfg, zap.NewNop())
	return NewPrintService(dispatcher, resolver, repo, zap.NewNop())
}

func validReceipt() *model.ReceiptData {
	return &model.ReceiptData{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-7731",
		CafeName:    "Brew Lab",
		Items: []model.ReceiptItem{
			{
				ItemID:    uuid.New(),
				Name:      "Filter Coffee",
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(150),
				LineTotal: decimal.NewFromInt(150),
			},
		},
		Subtotal:      decimal.NewFromInt(150),
		TaxAmount:     decimal.RequireFromString("7.50"),
		TaxRate:       decimal.NewFromInt(5),
		FinalAmount:   decimal.RequireFromString("157.50"),
		PaymentMethod: model.PaymentMethodCash,
		OrderedAt:     time.Now(),
	}
}

func TestPrintKOTValidatesBeforeDispatch(t *testing.T) {
	sink := &captureTransport{}
	svc := newTestService(&stubRepo{profile: combinedProfile()}, sink)

	bad := validReceipt()
	bad.Items = nil

	_, err := svc.PrintKOT(context.Background(), uuid.New(), bad)
	require.Error(t, err)
	assert.Empty(t, sink.jobs, "invalid receipt must not reach any transport")
}

func TestPrintReceiptDispatches(t *testing.T) {
	sink := &captureTransport{}
	svc := newTestService(&stubRepo{profile: combinedProfile()}, sink)

	result, err := svc.PrintReceipt(context.Background(), uuid.New(), validReceipt())
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, sink.jobs, 1)
	assert.Equal(t, model.DocTypeReceipt, sink.jobs[0].DocType)
}

func TestPrintBothDispatchesTwoDocuments(t *testing.T) {
	sink := &captureTransport{}
	svc := newTestService(&stubRepo{profile: combinedProfile()}, sink)

	result, err := svc.PrintBoth(context.Background(), uuid.New(), validReceipt())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Partial)
	require.Len(t, sink.jobs, 2)
	assert.Equal(t, model.DocTypeKOT, sink.jobs[0].DocType)
	assert.Equal(t, model.DocTypeReceipt, sink.jobs[1].DocType)
}

func TestTestPrintProducesLabeledOrder(t *testing.T) {
	sink := &captureTransport{}
	svc := newTestService(&stubRepo{profile: combinedProfile()}, sink)

	result := svc.TestPrint(context.Background(), uuid.New())
	assert.True(t, result.Success)
	require.Len(t, sink.jobs, 1)

	receipt := sink.jobs[0].Receipt
	assert.Contains(t, receipt.OrderNumber, "TEST")
	require.NoError(t, receipt.Validate(), "the synthetic receipt must satisfy its own invariants")
}

func TestTestPrintNoProfile(t *testing.T) {
	sink := &captureTransport{}
	svc := newTestService(&stubRepo{}, sink)

	result := svc.TestPrint(context.Background(), uuid.New())
	assert.False(t, result.Success)
	assert.Equal(t, model.TransportNone, result.Transport)
	assert.Empty(t, sink.jobs)
}
