package ihex

import "log/slog"

// Run is a maximal contiguous sequence of same-type records, reassembled into
// instruction words.
type Run struct {
	Base   uint16 // address of the first record
	Offset uint32 // upper address from the last extended address record
	Type   RecordType
	Words  []uint16
}

// Address returns the absolute byte address of the first word.
func (r Run) Address() uint32 {
	return r.Offset + uint32(r.Base)
}

// End returns the record address that would continue this run.
func (r Run) End() uint32 {
	return uint32(r.Base) + 2*uint32(len(r.Words))
}

// Assembler merges records into runs in the order they are added.
type Assembler struct {
	runs   []Run
	offset uint32
}

// Add appends rec to the open run when the type, offset and address line up,
// and starts a new run otherwise.
func (a *Assembler) Add(rec Record) {
	words := rec.Words()
	if n := len(a.runs); n > 0 {
		last := &a.runs[n-1]
		if last.Type == rec.Type && last.Offset == a.offset && last.End() == uint32(rec.Address) {
			last.Words = append(last.Words, words...)
			a.updateOffset(rec)
			return
		}
		slog.Debug("Starting new run", "address", rec.Address, "type", rec.Type, "previous_end", last.End())
	}
	a.runs = append(a.runs, Run{
		Base:   rec.Address,
		Offset: a.offset,
		Type:   rec.Type,
		Words:  words,
	})
	a.updateOffset(rec)
}

func (a *Assembler) updateOffset(rec Record) {
	b := rec.Bytes()
	if len(b) < 2 {
		return
	}
	upper := uint32(b[0])<<8 | uint32(b[1])
	switch rec.Type {
	case ExtendedSegmentAddress:
		a.offset = upper << 4
	case ExtendedLinearAddress:
		a.offset = upper << 16
	}
}

// Offset returns the upper address that applies to the next record added.
func (a *Assembler) Offset() uint32 {
	return a.offset
}

// Runs returns the runs assembled so far.
func (a *Assembler) Runs() []Run {
	return a.runs
}

// Assemble merges records into the minimum number of contiguous runs.
func Assemble(records []Record) []Run {
	var a Assembler
	for _, rec := range records {
		a.Add(rec)
	}
	return a.Runs()
}
