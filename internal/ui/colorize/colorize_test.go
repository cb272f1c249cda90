package colorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineDisabled(t *testing.T) {
	t.Setenv(EnvNoColor, "1")

	line := "0x1a: rjmp .+0x4 ; 0x1e"
	assert.False(t, Enabled())
	assert.Equal(t, line, Line(line))
}

func TestLinePreservesText(t *testing.T) {
	t.Setenv(EnvNoColor, "")

	lines := []string{
		"0x0: jmp 0x68 ; 0x68",
		"0x4: ldi r24, 0xf",
		"0x6: st X+, r1",
		"0x8: ret",
	}
	for _, line := range lines {
		colored := Line(line)
		assert.Contains(t, colored, "\x1b[")
		assert.Equal(t, line, StripANSI(colored))
	}
}

func TestStyleRegistered(t *testing.T) {
	assert.Equal(t, DisasmDark, getDisasmStyle())
}
