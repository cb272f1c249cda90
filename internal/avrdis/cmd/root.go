package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"avrdis/internal/analysis"
	"avrdis/internal/avrdis/log"
	"avrdis/internal/detectors"
	"avrdis/internal/disasm"
	"avrdis/internal/ihex"
	"avrdis/internal/ui/colorize"
)

var errNoInput = errors.New("no records: pass them as arguments, with --file, or on stdin")

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avrdis [records...]",
		Short: "Disassemble AVR machine code from Intel HEX records",
		Long: `avrdis turns AVR 8-bit machine code in Intel HEX form into an
address-annotated instruction listing.

Records are read from the arguments, from --file, or from stdin. Adjacent
records of the same type are merged into runs and every Data run is decoded
from its first word.`,
		Example: `
# Disassemble a HEX file
avrdis -f firmware.hex

# Records as arguments, canonical mnemonics only
avrdis --overloads=false :020000000C94..

# Pipe from objcopy and show the record dump
avr-objcopy -O ihex firmware.elf /dev/stdout | avrdis -a
  `,
		SilenceUsage: true,
		RunE:         runRoot,
	}

	cmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	cmd.Flags().BoolP("advanced", "a", false, "Print the configuration and every parsed record before the listing")
	cmd.Flags().BoolP("overloads", "o", true, "Name pseudo-instructions (lsl, clr, ser, sec, breq...)")
	cmd.Flags().BoolP("keep-going", "k", false, "Continue with the next run after a decode error")
	cmd.Flags().Bool("verify-checksum", false, "Reject records whose checksum does not match")
	cmd.Flags().StringP("file", "f", "", "Read records from a file, - for stdin")
	cmd.Flags().BoolP("interactive", "i", false, "Browse the listing and records in a terminal viewer")
	cmd.Flags().Bool("no-color", false, "Never colorize the listing")
	cmd.Flags().StringP("config", "c", "", "JSON config file")
	cmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().String("memprofile", "", "Write memory profile to file")

	cmd.AddCommand(newSchemaCmd())
	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	var cfg Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	settings := resolveSettings(cmd, cfg)
	log.Setup(settings.Debug)

	stop, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer stop()

	lines, err := readRecords(cmd, args)
	if err != nil {
		return err
	}

	parser := ihex.Parser{VerifyChecksum: settings.VerifyChecksum}
	records, err := parser.ParseRecords(lines)
	if err != nil {
		return fmt.Errorf("failed to parse records: %w", err)
	}
	slog.Debug("Parsed records", "count", len(records))

	opts := analysis.Options{Overloads: settings.Overloads, KeepGoing: settings.KeepGoing}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if settings.NoColor {
			os.Setenv(colorize.EnvNoColor, "1")
		}
		return runTUI(cmd.Context(), records, opts)
	}

	out := cmd.OutOrStdout()
	if settings.Advanced {
		if err := writeDump(out, settings, records); err != nil {
			return err
		}
	}
	return writeListing(out, ihex.Assemble(records), opts, useColor(out, settings), settings.Advanced)
}

// readRecords collects record lines from the arguments, then --file, then
// piped stdin. Each argument may hold several whitespace separated records.
func readRecords(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		var lines []string
		for _, arg := range args {
			lines = append(lines, strings.Fields(arg)...)
		}
		return lines, nil
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "-" {
		return scanLines(cmd.InOrStdin())
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open records: %w", err)
		}
		defer f.Close()
		return scanLines(f)
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		return nil, errNoInput
	}
	return scanLines(in)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return lines, nil
}

func writeDump(w io.Writer, settings Settings, records []ihex.Record) error {
	if _, err := fmt.Fprintf(w, "config: %+v\n\n", settings); err != nil {
		return err
	}
	for _, rec := range records {
		if err := rec.Dump(w); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, "\n\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeListing prints each instruction as soon as it is decoded, so the lines
// before a decode error are kept. With findings, the detector results follow
// the listing as comment lines.
func writeListing(w io.Writer, runs []ihex.Run, opts analysis.Options, color, findings bool) error {
	var (
		listing  disasm.Stream
		writeErr error
	)
	err := analysis.Disassemble(runs, opts, func(inst disasm.Inst) {
		listing = append(listing, inst)
		if writeErr != nil {
			return
		}
		line := inst.String()
		if color {
			line = colorize.Line(line)
		}
		_, writeErr = fmt.Fprintln(w, line)
	})
	if writeErr != nil {
		return fmt.Errorf("failed to write listing: %w", writeErr)
	}

	if findings {
		if err := writeFindings(w, listing); err != nil {
			return err
		}
	}

	if err != nil {
		return fmt.Errorf("failed to disassemble: %w", err)
	}
	return nil
}

func detectFindings(listing disasm.Stream) []analysis.Finding {
	chain := analysis.NewDetectorChain(
		detectors.NewVectorTableDetector(),
		detectors.NewSubroutineDetector(),
	)
	return chain.Detect(listing)
}

func writeFindings(w io.Writer, listing disasm.Stream) error {
	found := detectFindings(listing)
	if len(found) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, f := range found {
		if _, err := fmt.Fprintf(w, "; %s\n", f); err != nil {
			return err
		}
	}
	return nil
}

func useColor(w io.Writer, settings Settings) bool {
	if settings.NoColor || !colorize.Enabled() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// startProfiling starts the CPU profile and arranges the heap profile. The
// returned func finishes both.
func startProfiling(cmd *cobra.Command) (func(), error) {
	var stops []func()
	stop := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	if cpuprofile, _ := cmd.Flags().GetString("cpuprofile"); cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return stop, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return stop, fmt.Errorf("could not start CPU profile: %w", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	if memprofile, _ := cmd.Flags().GetString("memprofile"); memprofile != "" {
		stops = append(stops, func() {
			f, err := os.Create(memprofile)
			if err != nil {
				slog.Error("could not create memory profile", "error", err)
				return
			}
			defer f.Close()
			if err := pprof.WriteHeapProfile(f); err != nil {
				slog.Error("could not write memory profile", "error", err)
			}
		})
	}
	return stop, nil
}

func Execute() {
	// fang renders help and errors for people; piped output gets plain cobra
	var err error
	if term.IsTerminal(os.Stdout.Fd()) {
		err = fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		)
	} else {
		err = rootCmd.Execute()
	}
	_ = log.Close()
	if err != nil {
		os.Exit(1)
	}
}
