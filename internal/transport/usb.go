// internal/transport/usb.go
package transport

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/model"
)

// USBTransport opens the printer as a raw peripheral by vendor/product ID
// and writes the document to its bulk-out endpoint. The device is claimed
// for the duration of one Send call only.
type USBTransport struct {
	config config.USBTransportConfig
	logger *zap.Logger
}

// NewUSBTransport creates the direct USB transport
func NewUSBTransport(cfg config.USBTransportConfig, logger *zap.Logger) *USBTransport {
	return &USBTransport{
		config: cfg,
		logger: logger.With(zap.String("transport", model.TransportUSB)),
	}
}

// Name returns the transport identifier
func (t *USBTransport) Name() string {
	return model.TransportUSB
}

// Send writes the job to the printer's bulk-out endpoint
func (t *USBTransport) Send(ctx context.Context, job *model.PrintJob) error {
	profile := job.Profile
	if profile.VendorID == nil || profile.ProductID == nil {
		return unavailable("profile has no usb addressing")
	}

	vendorID, err := parseHexID(*profile.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID %q: %w", *profile.VendorID, err)
	}
	productID, err := parseHexID(*profile.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID %q: %w", *profile.ProductID, err)
	}

	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	device, err := t.findAndOpenDevice(usbCtx, vendorID, productID)
	if err != nil {
		return err
	}
	defer device.Close()

	intf, done, err := device.DefaultInterface()
	if err != nil {
		// Claimed by another process or refused by the permission model
		return fmt.Errorf("failed to claim usb interface: %w", err)
	}
	defer done()

	outEndpt, err := intf.OutEndpoint(t.config.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to get bulk-out endpoint: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := outEndpt.Write(job.Payload)
	if err != nil {
		return fmt.Errorf("usb write failed: %w", err)
	}
	if n != len(job.Payload) {
		return fmt.Errorf("incomplete usb write: wrote %d of %d bytes", n, len(job.Payload))
	}

	t.logger.Debug("USB write completed",
		zap.String("job_id", job.JobID.String()),
		zap.Int("bytes", n),
	)
	return nil
}

// findAndOpenDevice finds and opens the USB device
func (t *USBTransport) findAndOpenDevice(usbCtx *gousb.Context, vendorID, productID gousb.ID) (*gousb.Device, error) {
	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate usb devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, unavailable("usb device not found (VID: %04X, PID: %04X)", uint16(vendorID), uint16(productID))
	}

	if len(devices) > 1 {
		for i := 1; i < len(devices); i++ {
			devices[i].Close()
		}
		t.logger.Warn("Multiple matching USB devices found, using first one")
	}

	return devices[0], nil
}

// parseHexID parses hex ID string (0x1234 or 1234)
func parseHexID(hexStr string) (gousb.ID, error) {
	if len(hexStr) > 2 && hexStr[:2] == "0x" {
		hexStr = hexStr[2:]
	}

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}

	return gousb.ID(id), nil
}
