// Package ihex parses Intel HEX records and reassembles them into contiguous
// runs of little-endian instruction words.
package ihex

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// RecordType is the two-digit record type field.
type RecordType uint8

const (
	Data RecordType = iota
	EndOfFile
	ExtendedSegmentAddress
	StartAddress80x86
	ExtendedLinearAddress
	LinearAddress
)

func (t RecordType) String() string {
	switch t {
	case Data:
		return "Data"
	case EndOfFile:
		return "EndOfFile"
	case ExtendedSegmentAddress:
		return "ExtendedSegmentAddress"
	case StartAddress80x86:
		return "StartAddress80x86"
	case ExtendedLinearAddress:
		return "ExtendedLinearAddress"
	case LinearAddress:
		return "LinearAddress"
	default:
		return fmt.Sprintf("RecordType(%d)", uint8(t))
	}
}

// Pair is one instruction word as two bytes. For the data bytes "b0 b1" the
// pair is {High: b1, Low: b0}.
type Pair struct {
	High byte
	Low  byte
}

// Word returns the little-endian instruction word.
func (p Pair) Word() uint16 {
	return uint16(p.High)<<8 | uint16(p.Low)
}

// Record is one parsed Intel HEX line. Records are never mutated after parsing.
type Record struct {
	Address  uint16
	Type     RecordType
	Data     []Pair
	Checksum uint8
}

// Size returns the declared byte count.
func (r Record) Size() int {
	return len(r.Data) * 2
}

// Bytes returns the data bytes in file order.
func (r Record) Bytes() []byte {
	out := make([]byte, 0, len(r.Data)*2)
	for _, p := range r.Data {
		out = append(out, p.Low, p.High)
	}
	return out
}

// Words returns the data as instruction words.
func (r Record) Words() []uint16 {
	out := make([]uint16, len(r.Data))
	for i, p := range r.Data {
		out[i] = p.Word()
	}
	return out
}

// ComputedChecksum returns the two's complement of the sum of every byte that
// precedes the checksum field.
func (r Record) ComputedChecksum() uint8 {
	sum := uint8(r.Size()) + uint8(r.Address>>8) + uint8(r.Address) + uint8(r.Type)
	for _, b := range r.Bytes() {
		sum += b
	}
	return -sum
}

// Valid reports whether the checksum field matches the record contents.
func (r Record) Valid() bool {
	return r.ComputedChecksum() == r.Checksum
}

// Dump writes the diagnostic rendering of the record.
func (r Record) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "size: %d, address: %#x, index: %s,\n", len(r.Data), r.Address, r.Type); err != nil {
		return err
	}
	if len(r.Data) > 0 {
		if _, err := fmt.Fprintln(w, "data: "); err != nil {
			return err
		}
		for _, p := range r.Data {
			if _, err := fmt.Fprintf(w, "    (0b%08b, 0b%08b), \n", p.High, p.Low); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "checksum: %d", r.Checksum)
	return err
}

func (r Record) String() string {
	var sb strings.Builder
	_ = r.Dump(&sb)
	return sb.String()
}

// Parser parses single records. The zero value accepts any checksum.
type Parser struct {
	VerifyChecksum bool
}

// ParseRecord parses one line without checksum verification.
func ParseRecord(line string) (Record, error) {
	return Parser{}.Parse(line)
}

// Parse parses one ":LLAAAATT[DD...]CC" line.
func (p Parser) Parse(line string) (Record, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return Record{}, formatError(BeginningOfRecord, fmt.Errorf("expected ':' at start of %q", line))
	}

	size, err := hexField(line, 1, 2, CalculatingTheSize)
	if err != nil {
		return Record{}, err
	}
	address, err := hexField(line, 3, 4, CalculatingTheAddress)
	if err != nil {
		return Record{}, err
	}
	index, err := hexField(line, 7, 2, CalculatingIndex)
	if err != nil {
		return Record{}, err
	}
	if index > uint64(LinearAddress) {
		return Record{}, formatError(CalculatingIndex, fmt.Errorf("unexpected record type %#02x", index))
	}
	if size%2 != 0 {
		return Record{}, formatError(CalculatingData, fmt.Errorf("odd byte count %d cannot form words", size))
	}

	rec := Record{
		Address: uint16(address),
		Type:    RecordType(index),
		Data:    make([]Pair, 0, size/2),
	}
	end := 9 + int(size)*2
	for i := 9; i < end; i += 4 {
		high, err := hexField(line, i+2, 2, CalculatingData)
		if err != nil {
			return Record{}, err
		}
		low, err := hexField(line, i, 2, CalculatingData)
		if err != nil {
			return Record{}, err
		}
		rec.Data = append(rec.Data, Pair{High: byte(high), Low: byte(low)})
	}

	checksum, err := hexField(line, end, 2, CalculatingChecksum)
	if err != nil {
		return Record{}, err
	}
	rec.Checksum = uint8(checksum)

	if !rec.Valid() {
		if p.VerifyChecksum {
			return Record{}, formatError(CalculatingChecksum,
				fmt.Errorf("%w: have %#02x, want %#02x", ErrChecksumMismatch, rec.Checksum, rec.ComputedChecksum()))
		}
		slog.Debug("Record checksum does not match", "address", rec.Address, "have", rec.Checksum, "want", rec.ComputedChecksum())
	}
	return rec, nil
}

// ParseRecords parses lines in order and stops at the first malformed one.
func (p Parser) ParseRecords(lines []string) ([]Record, error) {
	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		rec, err := p.Parse(line)
		if err != nil {
			return records, fmt.Errorf("record %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseRecords parses lines without checksum verification.
func ParseRecords(lines []string) ([]Record, error) {
	return Parser{}.ParseRecords(lines)
}

func hexField(line string, off, n int, field Field) (uint64, error) {
	if off+n > len(line) {
		return 0, formatError(field, ErrShortRecord)
	}
	v, err := strconv.ParseUint(line[off:off+n], 16, n*4)
	if err != nil {
		return 0, formatError(field, err)
	}
	return v, nil
}
