// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/escpos"
	"print-service/internal/format"
	"print-service/internal/model"
	"print-service/internal/profile"
	"print-service/internal/repository"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// Dispatcher runs the transport cascade for one document: resolve the cafe's
// printer profile, format and encode the document, then try each transport in
// order until one delivers. The cascade order is fixed; a transport that
// reports transport.ErrUnavailable simply lacked its prerequisites and is
// skipped quietly, while a real delivery failure is logged loudly.
type Dispatcher struct {
	resolver   *profile.Resolver
	transports []transport.Transport
	config     *config.DispatchConfig
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher over the given transport cascade. The
// slice order is the attempt order.
func NewDispatcher(resolver *profile.Resolver, transports []transport.Transport, cfg *config.DispatchConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		resolver:   resolver,
		transports: transports,
		config:     cfg,
		logger:     logger,
	}
}

// warningFor returns the caveat attached to a success on the given transport.
// A raw network write carries no acknowledgment, and a file export still
// needs an operator.
func warningFor(name string) string {
	switch name {
	case model.TransportNetwork:
		return "sent over raw socket; printer did not acknowledge"
	case model.TransportFile:
		return "exported to file; manual print required"
	}
	return ""
}

// Dispatch prints one document for a cafe. It never returns a Go error for
// delivery problems; every outcome is expressed in the PrintResult so the
// caller can relay it verbatim.
func (d *Dispatcher) Dispatch(ctx context.Context, receipt *model.ReceiptData, cafeID uuid.UUID, doc model.DocType) model.PrintResult {
	job := &model.PrintJob{
		JobID:     uuid.New(),
		CafeID:    cafeID,
		DocType:   doc,
		Receipt:   receipt,
		CreatedAt: time.Now(),
	}
	dl := utils.NewDispatchLogger(d.logger, job.JobID.String(), cafeID.String(), string(doc))

	prof, err := d.resolver.Resolve(ctx, cafeID, doc)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			// No profile means no transport is attempted at all.
			dl.LogOutcome(model.TransportNone, false, "no printer configured")
			return model.PrintResult{
				Success:   false,
				Transport: model.TransportNone,
				Error:     "no printer configured",
			}
		}
		dl.LogOutcome(model.TransportNone, false, err.Error())
		return model.PrintResult{
			Success:   false,
			Transport: model.TransportNone,
			Error:     fmt.Sprintf("failed to resolve printer profile: %v", err),
		}
	}
	job.Profile = prof

	payload, err := d.render(receipt, prof, doc)
	if err != nil {
		dl.LogOutcome(model.TransportNone, false, err.Error())
		return model.PrintResult{
			Success:   false,
			Transport: model.TransportNone,
			Error:     fmt.Sprintf("failed to render document: %v", err),
		}
	}
	job.Payload = payload

	var reasons []string
	for _, tr := range d.transports {
		// Do not start another attempt for an abandoned request.
		if err := ctx.Err(); err != nil {
			dl.LogOutcome(model.TransportNone, false, "request cancelled")
			return model.PrintResult{
				Success:   false,
				Transport: model.TransportNone,
				Error:     fmt.Sprintf("print request cancelled: %v", err),
			}
		}

		// An attempt in flight runs to completion even if the caller goes
		// away: most transports have no safe mid-write abort. The timeout
		// still bounds it.
		attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.config.AttemptTimeout)
		err := tr.Send(attemptCtx, job)
		cancel()

		dl.LogAttempt(tr.Name(), err)
		if err == nil {
			warning := warningFor(tr.Name())
			dl.LogOutcome(tr.Name(), true, warning)
			return model.PrintResult{
				Success:   true,
				Transport: tr.Name(),
				Warning:   warning,
			}
		}

		reasons = append(reasons, fmt.Sprintf("%s: %v", tr.Name(), err))
	}

	reason := "all transports failed: " + strings.Join(reasons, "; ")
	dl.LogOutcome(model.TransportNone, false, reason)
	return model.PrintResult{
		Success:   false,
		Transport: model.TransportNone,
		Error:     reason,
	}
}

// DispatchBoth prints the KOT and the receipt as two independent dispatches.
// Each document resolves its own profile, so a cafe with separate kitchen and
// counter printers routes each to its own device.
func (d *Dispatcher) DispatchBoth(ctx context.Context, receipt *model.ReceiptData, cafeID uuid.UUID) model.BothResult {
	kot := d.Dispatch(ctx, receipt, cafeID, model.DocTypeKOT)
	rec := d.Dispatch(ctx, receipt, cafeID, model.DocTypeReceipt)
	return model.Combine(kot, rec)
}

// render formats and encodes the document for the profile's paper width
func (d *Dispatcher) render(receipt *model.ReceiptData, prof *model.PrinterProfile, doc model.DocType) ([]byte, error) {
	opts := format.OptionsFromProfile(prof)

	var ops []format.Instruction
	if doc == model.DocTypeKOT {
		ops = format.FormatKOT(receipt, opts)
	} else {
		ops = format.FormatReceipt(receipt, opts)
	}

	return escpos.NewEncoder(opts.Width).Encode(ops)
}
