// Package detectors finds structure in AVR listings: the interrupt vector
// table and the subroutines reached by calls.
package detectors

import (
	"fmt"

	"avrdis/internal/analysis"
	"avrdis/internal/disasm"
)

// VectorTableDetector recognizes the reset and interrupt vector table at
// address 0. Each slot holds a single jmp or rjmp; the slot size follows the
// first entry.
type VectorTableDetector struct {
	// MaxVectors bounds the table; 0 means no bound.
	MaxVectors int
}

// NewVectorTableDetector creates a new vector table detector instance.
func NewVectorTableDetector() *VectorTableDetector {
	return &VectorTableDetector{}
}

func (d *VectorTableDetector) Detect(listing disasm.Stream, findings []analysis.Finding) []analysis.Finding {
	start := -1
	for i, inst := range listing {
		if inst.Addr == 0 {
			start = i
			break
		}
	}
	if start < 0 || !isVectorJump(listing[start]) {
		return findings
	}

	slot := uint32(listing[start].Len * 2)
	for n, inst := range listing[start:] {
		if d.MaxVectors > 0 && n >= d.MaxVectors {
			break
		}
		if inst.Addr != uint32(n)*slot || !isVectorJump(inst) || uint32(inst.Len*2) != slot {
			break
		}
		findings = append(findings, analysis.Finding{
			Addr:     inst.Addr,
			Kind:     "vector",
			Target:   inst.Target,
			Comment:  d.comment(n, inst.Target),
			Metadata: map[string]interface{}{"index": n, "slot_size": slot},
		})
	}
	return findings
}

func (d *VectorTableDetector) comment(n int, target uint32) string {
	if n == 0 {
		return fmt.Sprintf("reset -> %#x", target)
	}
	return fmt.Sprintf("%d -> %#x", n, target)
}

func isVectorJump(inst disasm.Inst) bool {
	return (inst.Op == "jmp" || inst.Op == "rjmp") && inst.HasTarget
}
