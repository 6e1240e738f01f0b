// internal/escpos/encoder_test.go
package escpos

import (
	"bytes"
	"testing"

	"print-service/internal/format"
)

func TestEncodeStartsWithInitialize(t *testing.T) {
	got, err := NewEncoder(32).Encode(nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0x1B, 0x40}) {
		t.Errorf("empty document = %#v, want initialize sequence only", got)
	}
}

func TestEncodeTextLine(t *testing.T) {
	ops := []format.Instruction{{Kind: format.OpText, Text: "Masala Chai"}}

	got, err := NewEncoder(32).Encode(ops)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := append([]byte{0x1B, 0x40}, []byte("Masala Chai")...)
	want = append(want, 0x0A)
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %#v, want %#v", got, want)
	}
}

func TestEncodeStyleToggles(t *testing.T) {
	tests := []struct {
		name string
		op   format.Instruction
		want []byte
	}{
		{"bold on", format.Instruction{Kind: format.OpBold, On: true}, []byte{0x1B, 0x45, 0x01}},
		{"bold off", format.Instruction{Kind: format.OpBold, On: false}, []byte{0x1B, 0x45, 0x00}},
		{"double height on", format.Instruction{Kind: format.OpDoubleHeight, On: true}, []byte{0x1D, 0x21, 0x10}},
		{"double height off", format.Instruction{Kind: format.OpDoubleHeight, On: false}, []byte{0x1D, 0x21, 0x00}},
		{"align center", format.Instruction{Kind: format.OpAlign, Align: format.AlignCenter}, []byte{0x1B, 0x61, 0x01}},
		{"align left", format.Instruction{Kind: format.OpAlign, Align: format.AlignLeft}, []byte{0x1B, 0x61, 0x00}},
		{"cut", format.Instruction{Kind: format.OpCut}, []byte{0x1D, 0x56, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEncoder(32).Encode([]format.Instruction{tt.op})
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			want := append([]byte{0x1B, 0x40}, tt.want...)
			if !bytes.Equal(got, want) {
				t.Errorf("Encode() = %#v, want %#v", got, want)
			}
		})
	}
}

func TestEncodeRuleMatchesWidth(t *testing.T) {
	for _, width := range []int{32, 48} {
		got, err := NewEncoder(width).Encode([]format.Instruction{{Kind: format.OpRule}})
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}

		// init + dashes + LF
		wantLen := 2 + width + 1
		if len(got) != wantLen {
			t.Errorf("width %d: rule output length = %d, want %d", width, len(got), wantLen)
		}
		for _, b := range got[2 : 2+width] {
			if b != '-' {
				t.Fatalf("width %d: rule contains byte %#v, want '-'", width, b)
			}
		}
	}
}

func TestEncodeFeedClamping(t *testing.T) {
	tests := []struct {
		lines int
		want  byte
	}{
		{4, 4},
		{0, 0},
		{-3, 0},
		{300, 255},
	}

	for _, tt := range tests {
		got, err := NewEncoder(32).Encode([]format.Instruction{{Kind: format.OpFeed, Lines: tt.lines}})
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		want := []byte{0x1B, 0x40, 0x1B, 0x64, tt.want}
		if !bytes.Equal(got, want) {
			t.Errorf("feed %d = %#v, want %#v", tt.lines, got, want)
		}
	}
}

func TestEncodeUnknownInstruction(t *testing.T) {
	_, err := NewEncoder(32).Encode([]format.Instruction{{Kind: format.OpKind(99)}})
	if err == nil {
		t.Fatal("Encode() with unknown instruction did not fail")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	ops := []format.Instruction{
		{Kind: format.OpAlign, Align: format.AlignCenter},
		{Kind: format.OpBold, On: true},
		{Kind: format.OpText, Text: "KOT #41"},
		{Kind: format.OpBold, On: false},
		{Kind: format.OpRule},
		{Kind: format.OpFeed, Lines: 4},
		{Kind: format.OpCut},
	}

	first, err := NewEncoder(32).Encode(ops)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	second, err := NewEncoder(32).Encode(ops)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical instructions produced different byte streams")
	}
}
