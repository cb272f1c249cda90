package avr

import (
	"fmt"
	"strings"
)

// fields holds the value of every variable letter of a matched template.
type fields map[byte]uint32

// pattern describes one table entry. The template is written MSB first with
// '_' separators; '0' and '1' are literal bits and lowercase letters are
// variable fields. All occurrences of a letter are concatenated MSB to LSB.
type pattern struct {
	op       string
	template string
	ext      int  // extension words that follow the opcode word
	overload bool // pseudo-instruction, only tried when overloads are enabled
	when     func(f fields) bool
	args     []operand

	mask   uint16
	value  uint16
	layout map[byte][]uint8
}

func compile(p pattern) pattern {
	bits := strings.ReplaceAll(p.template, "_", "")
	if len(bits) != 16 {
		panic(fmt.Sprintf("avr: template %q for %s is not 16 bits", p.template, p.op))
	}
	p.layout = make(map[byte][]uint8)
	for i := 0; i < 16; i++ {
		pos := uint8(15 - i)
		switch c := bits[i]; {
		case c == '0':
			p.mask |= 1 << pos
		case c == '1':
			p.mask |= 1 << pos
			p.value |= 1 << pos
		case c >= 'a' && c <= 'z':
			p.layout[c] = append(p.layout[c], pos)
		default:
			panic(fmt.Sprintf("avr: template %q for %s has invalid bit %q", p.template, p.op, c))
		}
	}
	return p
}

func (p *pattern) matches(w uint16) bool {
	return w&p.mask == p.value
}

func (p *pattern) extract(w uint16) fields {
	f := make(fields, len(p.layout))
	for letter, positions := range p.layout {
		var v uint32
		for _, pos := range positions {
			v = v<<1 | uint32(w>>pos&1)
		}
		f[letter] = v
	}
	return f
}

// width returns the number of bits the template assigns to letter.
func (p *pattern) width(letter byte) int {
	return len(p.layout[letter])
}

func dEqualsR(f fields) bool {
	return f['d'] == f['r']
}

func kAllOnes(f fields) bool {
	return f['k'] == 0xFF
}
