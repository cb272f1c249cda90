package analysis

import (
	"fmt"

	"avrdis/internal/disasm"
)

// Finding is a fact a detector derived from the listing.
type Finding struct {
	Addr     uint32                 // instruction the finding is anchored on
	Kind     string                 // "vector", "subroutine", ...
	Target   uint32                 // address the finding points at
	Comment  string                 // human-readable summary
	Metadata map[string]interface{} // detector-specific data
}

func (f Finding) String() string {
	return fmt.Sprintf("%#x: %s %s", f.Addr, f.Kind, f.Comment)
}

// Detector interface for pattern detection on a decoded listing
type Detector interface {
	// Detect looks at the listing and returns findings with its own appended.
	// It may also enrich findings from earlier detectors.
	Detect(listing disasm.Stream, findings []Finding) []Finding
}

// DetectorChain runs multiple detectors in sequence
type DetectorChain struct {
	detectors []Detector
}

// NewDetectorChain creates a new detector chain
func NewDetectorChain(detectors ...Detector) *DetectorChain {
	return &DetectorChain{
		detectors: detectors,
	}
}

// Detect runs all detectors in sequence
func (dc *DetectorChain) Detect(listing disasm.Stream) []Finding {
	var result []Finding
	for _, detector := range dc.detectors {
		result = detector.Detect(listing, result)
	}
	return result
}
