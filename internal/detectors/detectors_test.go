package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrdis/internal/analysis"
	"avrdis/internal/disasm"
	"avrdis/internal/ihex"
)

func listing(t *testing.T, words ...uint16) disasm.Stream {
	t.Helper()
	runs := []ihex.Run{{Base: 0, Type: ihex.Data, Words: words}}
	stream, err := analysis.Collect(runs, analysis.DefaultOptions())
	require.NoError(t, err)
	return stream
}

func comments(findings []analysis.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Comment)
	}
	return out
}

func TestVectorTableDetector(t *testing.T) {
	tests := []struct {
		name  string
		words []uint16
		want  []string
	}{
		{
			name:  "jmp slots",
			words: []uint16{0x940C, 0x0034, 0x940C, 0x0040, 0x0000},
			want:  []string{"reset -> 0x68", "1 -> 0x80"},
		},
		{
			name:  "rjmp slots",
			words: []uint16{0xC001, 0xC001, 0x9508},
			want:  []string{"reset -> 0x4", "1 -> 0x6"},
		},
		{
			name:  "mixed slot sizes end the table",
			words: []uint16{0x940C, 0x0034, 0xC001, 0x0000},
			want:  []string{"reset -> 0x68"},
		},
		{
			name:  "no jump at reset",
			words: []uint16{0x0000, 0x940C, 0x0034},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := NewVectorTableDetector().Detect(listing(t, tt.words...), nil)
			assert.Equal(t, tt.want, comments(findings))
			for _, f := range findings {
				assert.Equal(t, "vector", f.Kind)
			}
		})
	}
}

func TestVectorTableDetectorLimit(t *testing.T) {
	d := &VectorTableDetector{MaxVectors: 1}
	findings := d.Detect(listing(t, 0xC001, 0xC001, 0x9508), nil)
	assert.Equal(t, []string{"reset -> 0x4"}, comments(findings))
}

func TestSubroutineDetector(t *testing.T) {
	// 0x0: rcall -> 0x8, 0x2: rcall -> 0x8, 0x4: call 0x200, 0x8: ret
	stream := listing(t, 0xD003, 0xD002, 0x940E, 0x0100, 0x9508)

	chain := analysis.NewDetectorChain(NewVectorTableDetector(), NewSubroutineDetector())
	findings := chain.Detect(stream)

	assert.Equal(t, []string{
		"sub_8 called from 2 sites",
		"sub_200 called from 1 site (outside the listing)",
	}, comments(findings))

	require.Len(t, findings, 2)
	assert.Equal(t, "subroutine", findings[0].Kind)
	assert.Equal(t, []uint32{0x0, 0x2}, findings[0].Metadata["callers"])
	assert.Equal(t, true, findings[0].Metadata["decoded"])
	assert.Equal(t, "0x8: subroutine sub_8 called from 2 sites", findings[0].String())
}
