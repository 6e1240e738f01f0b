// internal/transport/file.go
package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"print-service/internal/model"
)

// FileTransport is the last-resort fallback: it serializes the encoded byte
// stream to a .prn file for the operator to push to the printer manually
// through an OS print utility. Producing the file nearly always works, but
// the result still needs a human, so the dispatcher flags it as a manual
// handoff.
type FileTransport struct {
	exportDir string
	logger    *zap.Logger
}

// NewFileTransport creates the file-export transport
func NewFileTransport(exportDir string, logger *zap.Logger) *FileTransport {
	return &FileTransport{
		exportDir: exportDir,
		logger:    logger.With(zap.String("transport", model.TransportFile)),
	}
}

// Name returns the transport identifier
func (t *FileTransport) Name() string {
	return model.TransportFile
}

// Send writes the payload to <doctype>_<order-number>.prn in the export
// directory
func (t *FileTransport) Send(ctx context.Context, job *model.PrintJob) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := os.MkdirAll(t.exportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(t.exportDir, ExportFilename(job.DocType, job.Receipt.OrderNumber))

	if err := os.WriteFile(path, job.Payload, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	t.logger.Info("Print job exported to file",
		zap.String("job_id", job.JobID.String()),
		zap.String("path", path),
	)
	return nil
}

// ExportFilename builds the export artifact name for a document
func ExportFilename(doc model.DocType, orderNumber string) string {
	return fmt.Sprintf("%s_%s.prn", strings.ToLower(string(doc)), sanitize(orderNumber))
}

// sanitize strips path-hostile characters from the order number
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
