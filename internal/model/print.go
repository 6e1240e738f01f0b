// internal/model/print.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DocType selects which document a dispatch produces
type DocType string

const (
	DocTypeKOT     DocType = "KOT"
	DocTypeReceipt DocType = "RECEIPT"
)

// PrintJob is the ephemeral value a dispatch operates on. It is never
// persisted and exists only for the duration of one transport cascade.
type PrintJob struct {
	JobID     uuid.UUID
	CafeID    uuid.UUID
	DocType   DocType
	Receipt   *ReceiptData
	Profile   *PrinterProfile
	Payload   []byte
	CreatedAt time.Time
}

// PrintResult is the outcome of one dispatch attempt
type PrintResult struct {
	Success   bool   `json:"success"`
	Transport string `json:"transport"`
	Error     string `json:"error,omitempty"`
	// Warning is set when the job technically succeeded but needs human
	// intervention (file export) or carries weaker evidence (raw network
	// write with no acknowledgment channel).
	Warning string `json:"warning,omitempty"`
}

// Transport names reported in PrintResult
const (
	TransportNone    = "none"
	TransportAgent   = "agent"
	TransportUSB     = "usb"
	TransportSerial  = "serial"
	TransportNetwork = "network"
	TransportFile    = "file"
)

// BothResult is the combined outcome of a KOT + Receipt dispatch pair.
// Partial success is reported distinctly so operators know exactly what
// physically printed.
type BothResult struct {
	KOT     PrintResult `json:"kot"`
	Receipt PrintResult `json:"receipt"`
	Success bool        `json:"success"`
	Partial bool        `json:"partial"`
}

// Combine derives the overall flags from the two component results.
func Combine(kot, receipt PrintResult) BothResult {
	return BothResult{
		KOT:     kot,
		Receipt: receipt,
		Success: kot.Success && receipt.Success,
		Partial: kot.Success != receipt.Success,
	}
}
