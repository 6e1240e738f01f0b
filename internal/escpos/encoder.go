// internal/escpos/encoder.go
package escpos

import (
	"bytes"
	"fmt"
	"strings"

	"print-service/internal/format"
)

// Commands contains the ESC/POS opcodes the print service emits. Printers in
// the field expect these exact sequences; changing them is a wire-format
// break.
var Commands = struct {
	Initialize []byte

	BoldOn  []byte
	BoldOff []byte

	SizeNormal       []byte
	SizeDoubleHeight []byte

	AlignLeft   []byte
	AlignCenter []byte

	LineFeed  []byte
	FeedLines []byte // + line count byte

	CutFull []byte
}{
	Initialize: []byte{0x1B, 0x40}, // ESC @

	BoldOn:  []byte{0x1B, 0x45, 0x01}, // ESC E 1
	BoldOff: []byte{0x1B, 0x45, 0x00}, // ESC E 0

	SizeNormal:       []byte{0x1D, 0x21, 0x00}, // GS ! 0
	SizeDoubleHeight: []byte{0x1D, 0x21, 0x10}, // GS ! 16

	AlignLeft:   []byte{0x1B, 0x61, 0x00}, // ESC a 0
	AlignCenter: []byte{0x1B, 0x61, 0x01}, // ESC a 1

	LineFeed:  []byte{0x0A},       // LF
	FeedLines: []byte{0x1B, 0x64}, // ESC d + n

	CutFull: []byte{0x1D, 0x56, 0x00}, // GS V 0
}

// Encoder translates layout instructions into an ESC/POS byte stream. It is
// total over the instruction set and knows nothing about transports.
type Encoder struct {
	// Width is the paper width in columns, used only to render rules. The
	// formatter owns all width-aware truncation; the encoder never
	// truncates text.
	Width int
}

// NewEncoder creates an encoder for the given paper width
func NewEncoder(width int) *Encoder {
	return &Encoder{Width: width}
}

// Encode produces the device byte stream for one document. Every job starts
// with the initialize sequence regardless of the instruction list.
func (e *Encoder) Encode(ops []format.Instruction) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(Commands.Initialize)

	for _, op := range ops {
		switch op.Kind {
		case format.OpText:
			buf.WriteString(op.Text)
			buf.Write(Commands.LineFeed)

		case format.OpAlign:
			if op.Align == format.AlignCenter {
				buf.Write(Commands.AlignCenter)
			} else {
				buf.Write(Commands.AlignLeft)
			}

		case format.OpBold:
			if op.On {
				buf.Write(Commands.BoldOn)
			} else {
				buf.Write(Commands.BoldOff)
			}

		case format.OpDoubleHeight:
			if op.On {
				buf.Write(Commands.SizeDoubleHeight)
			} else {
				buf.Write(Commands.SizeNormal)
			}

		case format.OpRule:
			buf.WriteString(strings.Repeat("-", e.Width))
			buf.Write(Commands.LineFeed)

		case format.OpFeed:
			lines := op.Lines
			if lines < 0 {
				lines = 0
			}
			if lines > 255 {
				lines = 255
			}
			buf.Write(Commands.FeedLines)
			buf.WriteByte(byte(lines))

		case format.OpCut:
			buf.Write(Commands.CutFull)

		default:
			return nil, fmt.Errorf("escpos: unknown layout instruction %d", op.Kind)
		}
	}

	return buf.Bytes(), nil
}
