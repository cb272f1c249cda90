// Package avr decodes AVR 8-bit instruction words with an ordered table of
// 16-bit bit patterns.
package avr

import (
	"errors"
	"fmt"
	"io"

	"avrdis/internal/disasm"
)

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrTruncated     = errors.New("truncated instruction")
)

// UnknownOpcodeError means no table entry matches the word at Addr.
type UnknownOpcodeError struct {
	Addr uint32
	Word uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04x at %#x", e.Word, e.Addr)
}

func (e *UnknownOpcodeError) Is(target error) bool { return target == ErrUnknownOpcode }

// TruncatedInstructionError means a two-word instruction starts on the last
// word of its run.
type TruncatedInstructionError struct {
	Addr uint32
	Word uint16
	Op   string
}

func (e *TruncatedInstructionError) Error() string {
	return fmt.Sprintf("truncated instruction %s (0x%04x) at %#x: missing extension word", e.Op, e.Word, e.Addr)
}

func (e *TruncatedInstructionError) Is(target error) bool { return target == ErrTruncated }

// Decoder turns instruction words into disasm.Inst values.
type Decoder struct {
	overloads bool
	table     []pattern
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithOverloads toggles pseudo-instruction naming (lsl, clr, ser, sec, breq...).
func WithOverloads(on bool) Option {
	return func(d *Decoder) {
		d.overloads = on
	}
}

// NewDecoder returns a decoder with overloads enabled unless an option says
// otherwise.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		overloads: true,
		table:     instructionTable,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Overloads reports whether pseudo-instruction naming is on.
func (d *Decoder) Overloads() bool {
	return d.overloads
}

// Decode reads one instruction from c. It returns io.EOF when c has no words
// left. After an error the cursor position is unspecified and the run should
// not be decoded further.
func (d *Decoder) Decode(c *disasm.Cursor) (disasm.Inst, error) {
	addr := c.Address()
	w, ok := c.Advance()
	if !ok {
		return disasm.Inst{}, io.EOF
	}

	p, f := d.match(w)
	if p == nil {
		return disasm.Inst{}, &UnknownOpcodeError{Addr: addr, Word: w}
	}

	inst := disasm.Inst{
		Addr: addr,
		Op:   p.op,
		Len:  1,
		Raw:  [2]uint16{w, 0},
	}
	var ext uint16
	if p.ext > 0 {
		if _, ok := c.PeekNext(); !ok {
			return disasm.Inst{}, &TruncatedInstructionError{Addr: addr, Word: w, Op: p.op}
		}
		ext, _ = c.Advance()
		inst.Len = 2
		inst.Raw[1] = ext
	}

	if len(p.args) > 0 {
		ctx := operandContext{addr: addr, ext: ext, fields: f, inst: &inst}
		inst.Args = make([]string, 0, len(p.args))
		for _, arg := range p.args {
			inst.Args = append(inst.Args, arg(&ctx))
		}
	}
	return inst, nil
}

// DecodeAll decodes c until it is exhausted or a word fails to decode. The
// instructions decoded before a failure are returned with the error.
func (d *Decoder) DecodeAll(c *disasm.Cursor) (disasm.Stream, error) {
	out := make(disasm.Stream, 0, c.Remaining())
	for {
		inst, err := d.Decode(c)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, inst)
	}
}

func (d *Decoder) match(w uint16) (*pattern, fields) {
	for i := range d.table {
		p := &d.table[i]
		if p.overload && !d.overloads {
			continue
		}
		if !p.matches(w) {
			continue
		}
		f := p.extract(w)
		if p.when != nil && !p.when(f) {
			continue
		}
		return p, f
	}
	return nil, nil
}
