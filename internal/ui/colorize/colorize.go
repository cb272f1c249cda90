// Package colorize highlights AVR listing lines for the terminal with chroma.
package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// EnvNoColor disables all highlighting when set to any value.
const EnvNoColor = "AVRDIS_NO_COLOR"

// Enabled reports whether highlighting is allowed by the environment.
func Enabled() bool {
	return os.Getenv(EnvNoColor) == ""
}

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	// nasm first: it treats ';' as a comment, which is how targets are annotated
	candidates := []string{"nasm", "gas", "GAS"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return chroma.Coalesce(lexer)
		}
	}
	return nil
}

// getDisasmStyle returns the disassembly style with fallbacks
func getDisasmStyle() *chroma.Style {
	candidates := []string{DisasmDark.Name, "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Line colorizes one listing line of the form "0x1a: op args ; target".
// The address is dimmed and the rest goes through chroma. The line is
// returned unchanged when colors are disabled or highlighting fails.
func Line(line string) string {
	if !Enabled() {
		return line
	}

	addr, rest, ok := strings.Cut(line, ": ")
	if !ok || !strings.HasPrefix(addr, "0x") {
		return highlight(line)
	}
	return fmt.Sprintf("\033[38;2;79;79;79m%s:\033[0m %s", addr, highlight(rest))
}

func highlight(code string) string {
	lexer := getAssemblyLexer()
	if lexer == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code
	}
	// lexers append a newline to their input; a listing line has none
	return strings.ReplaceAll(buf.String(), "\n", "")
}

// StripANSI removes ANSI escape sequences and returns the plain string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
