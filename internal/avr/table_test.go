package avr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrdis/internal/disasm"
)

func TestTableTemplatesCoverEveryBit(t *testing.T) {
	for _, p := range instructionTable {
		covered := p.mask
		for _, positions := range p.layout {
			for _, pos := range positions {
				require.Zero(t, covered&(1<<pos), "%s %s: bit %d used twice", p.op, p.template, pos)
				covered |= 1 << pos
			}
		}
		assert.Equal(t, uint16(0xFFFF), covered, "%s %s", p.op, p.template)
		assert.True(t, p.matches(p.value), "%s %s", p.op, p.template)
	}
}

// Every pseudo-instruction must shadow a later canonical entry, so turning
// overloads off can only change the mnemonic, never make a word undecodable.
func TestOverloadsShadowCanonicalEntries(t *testing.T) {
	for i, p := range instructionTable {
		if !p.overload {
			continue
		}
		found := false
		for _, q := range instructionTable[i+1:] {
			if !q.overload && q.matches(p.value) {
				found = true
				break
			}
		}
		assert.True(t, found, "overload %s %s has no canonical form", p.op, p.template)
	}
}

func TestFieldWidths(t *testing.T) {
	widths := map[string]struct {
		letter byte
		bits   int
	}{
		"rjmp": {'k', jumpWidth},
		"brbs": {'k', branchWidth},
		"breq": {'k', branchWidth},
		"jmp":  {'k', 6},
		"ldd":  {'q', 6},
		"in":   {'a', 6},
		"sbi":  {'a', 5},
		"ldi":  {'k', 8},
		"adiw": {'k', 6},
	}
	for _, p := range instructionTable {
		want, ok := widths[p.op]
		if !ok {
			continue
		}
		assert.Equal(t, want.bits, p.width(want.letter), "%s %s", p.op, p.template)
	}
}

func TestFieldExtractionOrder(t *testing.T) {
	p := compile(pattern{op: "test", template: "0000_11rd_dddd_rrrr"})

	f := p.extract(0x0F1F) // 0000_1111_0001_1111
	assert.Equal(t, uint32(0x1F), f['r'])
	assert.Equal(t, uint32(0x11), f['d'])
}

func TestCompileRejectsBadTemplates(t *testing.T) {
	assert.Panics(t, func() { compile(pattern{op: "short", template: "0000_0000"}) })
	assert.Panics(t, func() { compile(pattern{op: "upper", template: "0000_0000_0000_000K"}) })
}

func TestEveryWordDecodes(t *testing.T) {
	overloaded := make(map[string]bool)
	for _, p := range instructionTable {
		if p.overload {
			overloaded[p.op] = true
		}
	}

	on := NewDecoder()
	off := NewDecoder(WithOverloads(false))

	for w := 0; w <= 0xFFFF; w++ {
		words := []uint16{uint16(w), 0x0000}

		a, errOn := on.Decode(disasm.NewCursor(0x100, words))
		b, errOff := off.Decode(disasm.NewCursor(0x100, words))

		if errOn != nil {
			require.True(t, errors.Is(errOn, ErrUnknownOpcode), "word 0x%04x: %v", w, errOn)
			require.True(t, errors.Is(errOff, ErrUnknownOpcode), "word 0x%04x: %v", w, errOff)
			continue
		}
		require.NoError(t, errOff, "word 0x%04x", w)

		require.Contains(t, []int{1, 2}, a.Len)
		require.Equal(t, a.Len, b.Len, "word 0x%04x", w)
		require.Equal(t, a.Target, b.Target, "word 0x%04x", w)
		require.Equal(t, a.HasTarget, b.HasTarget, "word 0x%04x", w)
		require.False(t, overloaded[b.Op], "word 0x%04x decoded to %s without overloads", w, b.Op)
	}
}
