package detectors

import (
	"fmt"
	"sort"

	"avrdis/internal/analysis"
	"avrdis/internal/disasm"
)

// SubroutineDetector reports every call and rcall destination once, with the
// addresses of its call sites.
type SubroutineDetector struct{}

// NewSubroutineDetector creates a new subroutine detector instance.
func NewSubroutineDetector() *SubroutineDetector {
	return &SubroutineDetector{}
}

func (d *SubroutineDetector) Detect(listing disasm.Stream, findings []analysis.Finding) []analysis.Finding {
	callers := make(map[uint32][]uint32)
	for _, inst := range listing {
		if !d.isCall(inst) {
			continue
		}
		callers[inst.Target] = append(callers[inst.Target], inst.Addr)
	}

	targets := make([]uint32, 0, len(callers))
	for target := range callers {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	decoded := make(map[uint32]bool, len(listing))
	for _, inst := range listing {
		decoded[inst.Addr] = true
	}

	for _, target := range targets {
		sites := callers[target]
		comment := fmt.Sprintf("sub_%x called from %d site", target, len(sites))
		if len(sites) != 1 {
			comment += "s"
		}
		if !decoded[target] {
			comment += " (outside the listing)"
		}
		findings = append(findings, analysis.Finding{
			Addr:     target,
			Kind:     "subroutine",
			Target:   target,
			Comment:  comment,
			Metadata: map[string]interface{}{"callers": sites, "decoded": decoded[target]},
		})
	}
	return findings
}

func (d *SubroutineDetector) isCall(inst disasm.Inst) bool {
	return (inst.Op == "call" || inst.Op == "rcall") && inst.HasTarget
}
