// Package analysis runs the decoder over an assembled program image and
// post-processes the resulting listing.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"avrdis/internal/avr"
	"avrdis/internal/disasm"
	"avrdis/internal/ihex"
)

// Options controls a decode pass.
type Options struct {
	Overloads bool // name pseudo-instructions (lsl, clr, breq...)
	KeepGoing bool // continue with the next run after a decode error
}

// DefaultOptions returns overloads on and keep-going off.
func DefaultOptions() Options {
	return Options{Overloads: true}
}

// RunError identifies the run in which decoding failed.
type RunError struct {
	Index   int
	Address uint32
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d at %#x: %v", e.Index, e.Address, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Disassemble decodes every Data run in order and hands each instruction to
// emit as soon as it is decoded. A decode error ends the current run. Without
// KeepGoing it also ends the pass.
func Disassemble(runs []ihex.Run, opts Options, emit func(disasm.Inst)) error {
	dec := avr.NewDecoder(avr.WithOverloads(opts.Overloads))
	slog.Debug("decoding", "runs", len(runs), "overloads", dec.Overloads(), "keep_going", opts.KeepGoing)

	var errs []error
	for i, run := range runs {
		if run.Type != ihex.Data {
			slog.Debug("skipping run", "index", i, "type", run.Type, "address", fmt.Sprintf("%#x", run.Address()))
			continue
		}

		if err := decodeRun(dec, run, emit); err != nil {
			runErr := &RunError{Index: i, Address: run.Address(), Err: err}
			if !opts.KeepGoing {
				return runErr
			}
			slog.Warn("decode failed, continuing", "index", i, "err", err)
			errs = append(errs, runErr)
		}
	}
	return errors.Join(errs...)
}

func decodeRun(dec *avr.Decoder, run ihex.Run, emit func(disasm.Inst)) error {
	c := disasm.NewCursor(run.Address(), run.Words)
	for {
		inst, err := dec.Decode(c)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		emit(inst)
	}
}

// Collect runs Disassemble and gathers the instructions. The returned stream
// holds everything decoded before an error.
func Collect(runs []ihex.Run, opts Options) (disasm.Stream, error) {
	var out disasm.Stream
	err := Disassemble(runs, opts, func(inst disasm.Inst) {
		out = append(out, inst)
	})
	return out, err
}
