// internal/dispatch/dispatcher_test.go
package dispatch

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
	"print-service/internal/model"
	"print-service/internal/profile"
	"print-service/internal/repository"
	"print-service/internal/transport"
)

// fakeTransport records every Send call and returns a scripted error
type fakeTransport struct {
	name  string
	err   error
	calls int
	last  *model.PrintJob
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) Send(ctx context.Context, job *model.PrintJob) error {
	f.calls++
	f.last = job
	return f.err
}

// fakeRepo serves one fixed profile for every cafe, or nothing at all
type fakeRepo struct {
	profile *model.PrinterProfile
}

func (f *fakeRepo) GetActiveProfile(ctx context.Context, cafeID uuid.UUID, class model.PrinterClass) (*model.PrinterProfile, error) {
	if f.profile == nil {
		return nil, repository.ErrProfileNotFound
	}
	return f.profile, nil
}

func (f *fakeRepo) ListByCafe(ctx context.Context, cafeID uuid.UUID) ([]*model.PrinterProfile, error) {
	if f.profile == nil {
		return nil, nil
	}
	return []*model.PrinterProfile{f.profile}, nil
}

func testProfile() *model.PrinterProfile {
	host := "192.168.1.50"
	return &model.PrinterProfile{
		ID:           uuid.New(),
		CafeID:       uuid.New(),
		DisplayName:  "Counter",
		PrinterClass: model.PrinterClassCombined,
		Transport:    model.TransportKindNetwork,
		TaxDisplay:   model.TaxDisplaySingle,
		DecimalStyle: model.DecimalStyleTwoDecimal,
		Host:         &host,
		PaperWidth:   32,
		AutoCut:      true,
		IsDefault:    true,
		IsActive:     true,
	}
}

func testReceipt() *model.ReceiptData {
	return &model.ReceiptData{
		OrderID:      uuid.New(),
		OrderNumber:  "ORD-2041",
		CafeName:     "Chai Point",
		CustomerName: "Asha",
		DeliveryMode: model.DeliveryModePickup,
		Items: []model.ReceiptItem{
			{
				ItemID:    uuid.New(),
				Name:      "Masala Chai",
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(200),
				LineTotal: decimal.NewFromInt(400),
			},
		},
		Subtotal:      decimal.NewFromInt(400),
		TaxAmount:     decimal.NewFromInt(20),
		TaxRate:       decimal.NewFromInt(5),
		FinalAmount:   decimal.NewFromInt(420),
		PaymentMethod: model.PaymentMethodUPI,
		OrderedAt:     time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC),
	}
}

func newTestDispatcher(repo repository.ProfileRepository, transports ...transport.Transport) *Dispatcher {
	resolver := profile.NewResolver(repo, zap.NewNop())
	cfg := &config.DispatchConfig{AttemptTimeout: time.Second, ExportDir: "./exports"}
	return NewDispatcher(resolver, transports, cfg, zap.NewNop())
}

func TestDispatchFirstTransportWins(t *testing.T) {
	agent := &fakeTransport{name: model.TransportAgent}
	usb := &fakeTransport{name: model.TransportUSB}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, agent, usb)

	result := d.Dispatch(context.Background(), testReceipt(), uuid.New(), model.DocTypeReceipt)

	require.True(t, result.Success)
	assert.Equal(t, model.TransportAgent, result.Transport)
	assert.Empty(t, result.Warning)
	assert.Equal(t, 1, agent.calls)
	assert.Equal(t, 0, usb.calls, "cascade must stop at the first success")
}

func TestDispatchFallsThroughInOrder(t *testing.T) {
	agent := &fakeTransport{name: model.TransportAgent, err: transport.ErrUnavailable}
	usb := &fakeTransport{name: model.TransportUSB}
	file := &fakeTransport{name: model.TransportFile}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, agent, usb, file)

	result := d.Dispatch(context.Background(), testReceipt(), uuid.New(), model.DocTypeReceipt)

	require.True(t, result.Success)
	assert.Equal(t, model.TransportUSB, result.Transport)
	assert.Equal(t, 1, agent.calls)
	assert.Equal(t, 1, usb.calls)
	assert.Equal(t, 0, file.calls, "later transports must not run after a success")
}

func TestDispatchPassesEncodedPayload(t *testing.T) {
	agent := &fakeTransport{name: model.TransportAgent}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, agent)

	result := d.Dispatch(context.Background(), testReceipt(), uuid.New(), model.DocTypeKOT)

	require.True(t, result.Success)
	require.NotNil(t, agent.last)
	assert.Equal(t, model.DocTypeKOT, agent.last.DocType)
	// Every encoded document starts with printer initialization (ESC @)
	require.GreaterOrEqual(t, len(agent.last.Payload), 2)
	assert.Equal(t, []byte{0x1B, 0x40}, agent.last.Payload[:2])
}

func TestDispatchAllTransportsFail(t *testing.T) {
	agent := &fakeTransport{name: model.TransportAgent, err: transport.ErrUnavailable}
	usb := &fakeTransport{name: model.TransportUSB, err: transport.ErrUnavailable}
	network := &fakeTransport{name: model.TransportNetwork, err: context.DeadlineExceeded}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, agent, usb, network)

	result := d.Dispatch(context.Background(), testReceipt(), uuid.New(), model.DocTypeReceipt)

	require.False(t, result.Success)
	assert.Equal(t, model.TransportNone, result.Transport)
	// The aggregate error names every transport and its reason
	assert.Contains(t, result.Error, "all transports failed")
	assert.Contains(t, result.Error, "agent:")
	assert.Contains(t, result.Error, "usb:")
	assert.Contains(t, result.Error, "network:")
}

func TestDispatchNoProfileSkipsAllTransports(t *testing.T) {
	agent := &fakeTransport{name: model.TransportAgent}
	file := &fakeTransport{name: model.TransportFile}
	d := newTestDispatcher(&fakeRepo{}, agent, file)

	result := d.Dispatch(context.Background(), testReceipt(), uuid.New(), model.DocTypeReceipt)

	require.False(t, result.Success)
	assert.Equal(t, model.TransportNone, result.Transport)
	assert.Equal(t, "no printer configured", result.Error)
	assert.Equal(t, 0, agent.calls)
	assert.Equal(t, 0, file.calls)
}

func TestDispatchNetworkSuccessCarriesWarning(t *testing.T) {
	agent := &fakeTransport{name: model.TransportAgent, err: transport.ErrUnavailable}
	network := &fakeTransport{name: model.TransportNetwork}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, agent, network)

	result := d.Dispatch(context.Background(), testReceipt(), uuid.New(), model.DocTypeReceipt)

	require.True(t, result.Success)
	assert.Equal(t, model.TransportNetwork, result.Transport)
	assert.NotEmpty(t, result.Warning, "raw socket success has no acknowledgment and must warn")
}

func TestDispatchFileExportWarnsManualHandoff(t *testing.T) {
	file := &fakeTransport{name: model.TransportFile}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, file)

	result := d.Dispatch(context.Background(), testReceipt(), uuid.New(), model.DocTypeReceipt)

	require.True(t, result.Success)
	assert.Equal(t, model.TransportFile, result.Transport)
	assert.Contains(t, result.Warning, "manual")
}

func TestDispatchBothPartial(t *testing.T) {
	// Fails on the first document's dispatch run but succeeds afterwards
	flaky := &scriptedTransport{name: model.TransportAgent, errs: []error{transport.ErrUnavailable}}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, flaky)

	result := d.DispatchBoth(context.Background(), testReceipt(), uuid.New())

	assert.False(t, result.Success)
	assert.True(t, result.Partial)
	assert.False(t, result.KOT.Success)
	assert.True(t, result.Receipt.Success)
}

func TestDispatchBothSuccess(t *testing.T) {
	agent := &fakeTransport{name: model.TransportAgent}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, agent)

	result := d.DispatchBoth(context.Background(), testReceipt(), uuid.New())

	assert.True(t, result.Success)
	assert.False(t, result.Partial)
	assert.Equal(t, 2, agent.calls)
}

func TestDispatchStopsCascadeWhenCallerGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	agent := &fakeTransport{name: model.TransportAgent, err: transport.ErrUnavailable}
	cancelAfterFirst := &cancellingTransport{cancel: cancel}
	file := &fakeTransport{name: model.TransportFile}
	d := newTestDispatcher(&fakeRepo{profile: testProfile()}, agent, cancelAfterFirst, file)

	result := d.Dispatch(ctx, testReceipt(), uuid.New(), model.DocTypeReceipt)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "cancelled")
	assert.Equal(t, 0, file.calls, "no new attempt once the caller is gone")
}

// cancellingTransport simulates the caller abandoning the request while an
// attempt is in flight; the attempt itself must still see a live context
type cancellingTransport struct {
	cancel context.CancelFunc
}

func (c *cancellingTransport) Name() string { return model.TransportUSB }

func (c *cancellingTransport) Send(ctx context.Context, job *model.PrintJob) error {
	c.cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	return transport.ErrUnavailable
}

// scriptedTransport pops one error per Send call, then succeeds
type scriptedTransport struct {
	name string
	errs []error
}

func (s *scriptedTransport) Name() string { return s.name }

func (s *scriptedTransport) Send(ctx context.Context, job *model.PrintJob) error {
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}
