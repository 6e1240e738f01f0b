// internal/transport/serial.go
package transport

import (
	"context"
	"fmt"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
)

// SerialTransport writes the document to a serial-attached printer. The port
// is opened and released within one Send call.
type SerialTransport struct {
	config config.SerialTransportConfig
	logger *zap.Logger
}

// NewSerialTransport creates the serial transport
func NewSerialTransport(cfg config.SerialTransportConfig, logger *zap.Logger) *SerialTransport {
	return &SerialTransport{
		config: cfg,
		logger: logger.With(zap.String("transport", model.TransportSerial)),
	}
}

// Name returns the transport identifier
func (t *SerialTransport) Name() string {
	return model.TransportSerial
}

// Send opens the profile's serial port and writes the payload
func (t *SerialTransport) Send(ctx context.Context, job *model.PrintJob) error {
	profile := job.Profile
	if profile.SerialPort == nil || *profile.SerialPort == "" {
		return unavailable("profile has no serial addressing")
	}

	baudRate := t.config.BaudRate
	if profile.BaudRate != nil && *profile.BaudRate > 0 {
		baudRate = *profile.BaudRate
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: t.config.DataBits,
		StopBits: serial.StopBits(t.config.StopBits),
	}

	switch t.config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(*profile.SerialPort, mode)
	if err != nil {
		return unavailable("failed to open serial port %s: %v", *profile.SerialPort, err)
	}
	defer port.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := port.Write(job.Payload)
	if err != nil {
		return fmt.Errorf("serial write failed: %w", err)
	}
	if n != len(job.Payload) {
		return fmt.Errorf("incomplete serial write: wrote %d of %d bytes", n, len(job.Payload))
	}

	// Drain before releasing the port so the printer receives the full job
	if err := port.Drain(); err != nil {
		return fmt.Errorf("serial drain failed: %w", err)
	}

	t.logger.Debug("Serial write completed",
		zap.String("job_id", job.JobID.String()),
		zap.String("port", *profile.SerialPort),
		zap.Int("bytes", n),
	)
	return nil
}
