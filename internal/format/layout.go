// internal/format/layout.go
package format

// Alignment selects the printer's line alignment
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
)

// OpKind identifies a layout instruction
type OpKind int

const (
	// OpText prints a literal text line followed by a line feed.
	OpText OpKind = iota
	// OpAlign switches line alignment for subsequent text.
	OpAlign
	// OpBold toggles emphasis.
	OpBold
	// OpDoubleHeight toggles double-height character size.
	OpDoubleHeight
	// OpRule prints a full-width horizontal rule.
	OpRule
	// OpFeed advances the paper by Lines blank lines.
	OpFeed
	// OpCut performs a full paper cut.
	OpCut
)

// Instruction is one abstract layout operation. The formatter emits these
// and the protocol encoder turns them into device bytes; neither side knows
// about the other's representation.
type Instruction struct {
	Kind  OpKind
	Text  string
	Align Alignment
	On    bool
	Lines int
}

// builder accumulates instructions for one document
type builder struct {
	width int
	ops   []Instruction
}

func newBuilder(width int) *builder {
	return &builder{width: width}
}

func (b *builder) text(s string) {
	b.ops = append(b.ops, Instruction{Kind: OpText, Text: s})
}

func (b *builder) align(a Alignment) {
	b.ops = append(b.ops, Instruction{Kind: OpAlign, Align: a})
}

func (b *builder) bold(on bool) {
	b.ops = append(b.ops, Instruction{Kind: OpBold, On: on})
}

func (b *builder) doubleHeight(on bool) {
	b.ops = append(b.ops, Instruction{Kind: OpDoubleHeight, On: on})
}

func (b *builder) rule() {
	b.ops = append(b.ops, Instruction{Kind: OpRule})
}

func (b *builder) feed(lines int) {
	b.ops = append(b.ops, Instruction{Kind: OpFeed, Lines: lines})
}

func (b *builder) cut() {
	b.ops = append(b.ops, Instruction{Kind: OpCut})
}

func (b *builder) build() []Instruction {
	return b.ops
}
