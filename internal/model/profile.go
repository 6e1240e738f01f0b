// internal/model/profile.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PrinterClass distinguishes which document a printer is registered for
type PrinterClass string

const (
	PrinterClassKOT      PrinterClass = "KOT"
	PrinterClassReceipt  PrinterClass = "RECEIPT"
	PrinterClassCombined PrinterClass = "COMBINED"
)

// TransportKind represents how the printer is reached
type TransportKind string

const (
	TransportKindAgent   TransportKind = "AGENT"
	TransportKindUSB     TransportKind = "USB"
	TransportKindNetwork TransportKind = "NETWORK"
	TransportKindSerial  TransportKind = "SERIAL"
)

// TaxDisplayMode controls how the tax line renders on the customer receipt
type TaxDisplayMode string

const (
	// TaxDisplaySingle renders one tax line at the configured rate.
	TaxDisplaySingle TaxDisplayMode = "SINGLE"
	// TaxDisplaySplit renders the tax as two equal named components
	// (CGST/SGST). The split must stay bit-for-bit identical to receipts
	// already in the field.
	TaxDisplaySplit TaxDisplayMode = "SPLIT"
)

// DecimalStyle is the cafe's currency rendering convention
type DecimalStyle string

const (
	DecimalStyleInteger    DecimalStyle = "INTEGER"
	DecimalStyleTwoDecimal DecimalStyle = "TWO_DECIMAL"
)

// PrinterProfile is the per-cafe printer configuration. It is written by the
// cafe administration tooling and read-only to this service.
type PrinterProfile struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	CafeID       uuid.UUID      `json:"cafe_id" db:"cafe_id"`
	DisplayName  string         `json:"display_name" db:"display_name"`
	PrinterClass PrinterClass   `json:"printer_class" db:"printer_class"`
	Transport    TransportKind  `json:"transport" db:"transport"`
	TaxDisplay   TaxDisplayMode `json:"tax_display" db:"tax_display"`
	DecimalStyle DecimalStyle   `json:"decimal_style" db:"decimal_style"`

	// Network addressing
	Host *string `json:"host,omitempty" db:"host"`
	Port *int    `json:"port,omitempty" db:"port"`

	// USB addressing
	VendorID  *string `json:"vendor_id,omitempty" db:"vendor_id"`
	ProductID *string `json:"product_id,omitempty" db:"product_id"`

	// Serial addressing
	SerialPort *string `json:"serial_port,omitempty" db:"serial_port"`
	BaudRate   *int    `json:"baud_rate,omitempty" db:"baud_rate"`

	PaperWidth int  `json:"paper_width" db:"paper_width"`
	Density    int  `json:"density" db:"density"`
	AutoCut    bool `json:"auto_cut" db:"auto_cut"`
	IsDefault  bool `json:"is_default" db:"is_default"`
	IsActive   bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks that the addressing fields required by the profile's
// transport kind are present and the paper width is a supported column count.
func (p *PrinterProfile) Validate() error {
	switch p.Transport {
	case TransportKindNetwork:
		if p.Host == nil || *p.Host == "" {
			return fmt.Errorf("printer profile %s: network transport requires a host", p.ID)
		}
	case TransportKindUSB:
		if p.VendorID == nil || p.ProductID == nil {
			return fmt.Errorf("printer profile %s: usb transport requires vendor_id and product_id", p.ID)
		}
	case TransportKindSerial:
		if p.SerialPort == nil || *p.SerialPort == "" {
			return fmt.Errorf("printer profile %s: serial transport requires a serial_port", p.ID)
		}
	case TransportKindAgent:
		// The local agent owns printer addressing; nothing required here.
	default:
		return fmt.Errorf("printer profile %s: unknown transport kind %q", p.ID, p.Transport)
	}

	if p.PaperWidth != 32 && p.PaperWidth != 48 {
		return fmt.Errorf("printer profile %s: unsupported paper width %d columns", p.ID, p.PaperWidth)
	}

	return nil
}

// NetworkAddr returns the host:port target for the network transport.
func (p *PrinterProfile) NetworkAddr() string {
	port := 9100
	if p.Port != nil {
		port = *p.Port
	}
	host := ""
	if p.Host != nil {
		host = *p.Host
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// HandlesDoc reports whether this profile's printer class covers the given
// document kind.
func (p *PrinterProfile) HandlesDoc(doc DocType) bool {
	switch p.PrinterClass {
	case PrinterClassCombined:
		return true
	case PrinterClassKOT:
		return doc == DocTypeKOT
	case PrinterClassReceipt:
		return doc == DocTypeReceipt
	}
	return false
}
