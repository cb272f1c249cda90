package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrdis/internal/avr"
	"avrdis/internal/disasm"
	"avrdis/internal/ihex"
)

func dataRun(base uint16, words ...uint16) ihex.Run {
	return ihex.Run{Base: base, Type: ihex.Data, Words: words}
}

func TestDisassembleEmitsInOrder(t *testing.T) {
	runs := []ihex.Run{
		dataRun(0, 0x0000, 0xC001),
		{Base: 0, Type: ihex.EndOfFile},
		dataRun(0x10, 0x9508),
	}

	var lines []string
	err := Disassemble(runs, DefaultOptions(), func(inst disasm.Inst) {
		lines = append(lines, inst.String())
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0x0: nop",
		"0x2: rjmp .+0x4 ; 0x6",
		"0x10: ret",
	}, lines)
}

func TestDisassembleStopsOnFirstError(t *testing.T) {
	runs := []ihex.Run{
		dataRun(0, 0x0000, 0x0001, 0x0000),
		dataRun(0x20, 0x0000),
	}

	stream, err := Collect(runs, DefaultOptions())
	require.Error(t, err)
	require.Len(t, stream, 1)
	assert.Equal(t, uint32(0), stream[0].Addr)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, 0, runErr.Index)
	assert.Equal(t, uint32(0), runErr.Address)
	assert.True(t, errors.Is(err, avr.ErrUnknownOpcode))
	assert.Equal(t, "run 0 at 0x0: unknown opcode 0x0001 at 0x2", err.Error())
}

func TestDisassembleKeepGoing(t *testing.T) {
	runs := []ihex.Run{
		dataRun(0, 0xFFFF),
		dataRun(0x20, 0x0000),
		dataRun(0x40, 0x940C),
	}

	opts := DefaultOptions()
	opts.KeepGoing = true
	stream, err := Collect(runs, opts)
	require.Error(t, err)

	require.Len(t, stream, 1)
	assert.Equal(t, "0x20: nop", stream[0].String())

	assert.True(t, errors.Is(err, avr.ErrUnknownOpcode))
	assert.True(t, errors.Is(err, avr.ErrTruncated))

	var truncated *avr.TruncatedInstructionError
	require.True(t, errors.As(err, &truncated))
	assert.Equal(t, uint32(0x40), truncated.Addr)
	assert.Equal(t, "jmp", truncated.Op)
}

func TestDisassembleOverloads(t *testing.T) {
	runs := []ihex.Run{dataRun(0, 0x2411)}

	stream, err := Collect(runs, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"0x0: clr r1"}, stream.Lines())

	stream, err = Collect(runs, Options{Overloads: false})
	require.NoError(t, err)
	assert.Equal(t, []string{"0x0: eor r1, r1"}, stream.Lines())
}

func TestDisassembleUsesRunOffset(t *testing.T) {
	runs := []ihex.Run{{Base: 0x10, Offset: 0x10000, Type: ihex.Data, Words: []uint16{0x0000, 0xCFFF}}}

	stream, err := Collect(runs, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0x10010: nop",
		"0x10012: rjmp .+0x0 ; 0x10012",
	}, stream.Lines())
}

func TestDisassembleFromRecords(t *testing.T) {
	records, err := ihex.ParseRecords([]string{
		":040000000C94340028",
		":0200040008955D",
		":00000001FF",
	})
	require.NoError(t, err)

	stream, err := Collect(ihex.Assemble(records), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0x0: jmp 0x68 ; 0x68",
		"0x4: ret",
	}, stream.Lines())
}

func TestCollectEmpty(t *testing.T) {
	stream, err := Collect(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, stream)
}
