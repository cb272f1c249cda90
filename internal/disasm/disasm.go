// Package disasm defines the decoded instruction representation shared by the
// decoder and the listing, plus the word cursor the decoder reads from.
package disasm

// Inst is a single decoded instruction.
type Inst struct {
	Addr      uint32    // byte address of the first word
	Op        string    // mnemonic in lowercase
	Args      []string  // rendered operands
	Len       int       // length in words, 1 or 2
	Raw       [2]uint16 // opcode word and extension word
	Target    uint32    // resolved branch, call or jump target
	HasTarget bool
}

func (i Inst) String() string {
	return Format(i)
}

// Stream is a linear sequence of instructions.
type Stream []Inst
