// internal/transport/file_test.go
package transport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"print-service/internal/model"
)

func TestExportFilename(t *testing.T) {
	tests := []struct {
		doc         model.DocType
		orderNumber string
		want        string
	}{
		{model.DocTypeKOT, "ORD-2041", "kot_ORD-2041.prn"},
		{model.DocTypeReceipt, "ORD-2041", "receipt_ORD-2041.prn"},
		{model.DocTypeReceipt, "../../etc/passwd", "receipt_______etc_passwd.prn"},
		{model.DocTypeKOT, "A B/C", "kot_A_B_C.prn"},
	}

	for _, tt := range tests {
		if got := ExportFilename(tt.doc, tt.orderNumber); got != tt.want {
			t.Errorf("ExportFilename(%s, %q) = %q, want %q", tt.doc, tt.orderNumber, got, tt.want)
		}
	}
}

func TestFileTransportSend(t *testing.T) {
	dir := t.TempDir()
	tr := NewFileTransport(dir, zap.NewNop())

	payload := []byte{0x1B, 0x40, 'h', 'i', 0x0A}
	job := &model.PrintJob{
		JobID:   uuid.New(),
		DocType: model.DocTypeReceipt,
		Receipt: &model.ReceiptData{OrderNumber: "ORD-77"},
		Payload: payload,
	}

	require.NoError(t, tr.Send(context.Background(), job))

	written, err := os.ReadFile(filepath.Join(dir, "receipt_ORD-77.prn"))
	require.NoError(t, err)
	assert.Equal(t, payload, written, "export must be the raw encoded stream, byte for byte")
}

func TestFileTransportCreatesExportDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	tr := NewFileTransport(dir, zap.NewNop())

	job := &model.PrintJob{
		JobID:   uuid.New(),
		DocType: model.DocTypeKOT,
		Receipt: &model.ReceiptData{OrderNumber: "ORD-1"},
		Payload: []byte{0x1B, 0x40},
	}

	require.NoError(t, tr.Send(context.Background(), job))
	_, err := os.Stat(filepath.Join(dir, "kot_ORD-1.prn"))
	assert.NoError(t, err)
}

func TestFileTransportHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewFileTransport(t.TempDir(), zap.NewNop())
	job := &model.PrintJob{
		JobID:   uuid.New(),
		DocType: model.DocTypeKOT,
		Receipt: &model.ReceiptData{OrderNumber: "ORD-2"},
		Payload: []byte{0x1B, 0x40},
	}

	assert.Error(t, tr.Send(ctx, job))
}

func TestUnavailableErrorsMatchSentinel(t *testing.T) {
	err := unavailable("profile has no %s addressing", "usb")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "usb")
}
