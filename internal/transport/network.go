// internal/transport/network.go
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
)

// NetworkTransport writes the document to a network-attached printer's raw
// socket listener (JetDirect-style, usually port 9100).
//
// This path is fire-and-forget: many printers never answer on the raw
// socket, so the driver reports success as soon as the write completes.
// Callers must treat this transport's success as weaker evidence than the
// other transports'.
type NetworkTransport struct {
	config config.NetworkTransportConfig
	logger *zap.Logger
}

// NewNetworkTransport creates the raw-socket transport
func NewNetworkTransport(cfg config.NetworkTransportConfig, logger *zap.Logger) *NetworkTransport {
	return &NetworkTransport{
		config: cfg,
		logger: logger.With(zap.String("transport", model.TransportNetwork)),
	}
}

// Name returns the transport identifier
func (t *NetworkTransport) Name() string {
	return model.TransportNetwork
}

// Send dials the profile's host:port and writes the payload
func (t *NetworkTransport) Send(ctx context.Context, job *model.PrintJob) error {
	profile := job.Profile
	if profile.Host == nil || *profile.Host == "" {
		return unavailable("profile has no network addressing")
	}

	dialer := &net.Dialer{Timeout: t.config.ConnectTimeout}
	addr := profile.NetworkAddr()

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return unavailable("printer %s unreachable: %v", addr, err)
	}
	defer conn.Close()

	if t.config.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout)); err != nil {
			return fmt.Errorf("failed to set write deadline for %s: %w", addr, err)
		}
	}

	n, err := conn.Write(job.Payload)
	if err != nil {
		return fmt.Errorf("network write to %s failed: %w", addr, err)
	}
	if n != len(job.Payload) {
		return fmt.Errorf("incomplete network write: wrote %d of %d bytes", n, len(job.Payload))
	}

	// No acknowledgment channel exists on this path; the write returning
	// is all the confirmation there is.
	t.logger.Debug("Network write completed",
		zap.String("job_id", job.JobID.String()),
		zap.String("addr", addr),
		zap.Int("bytes", n),
	)
	return nil
}
