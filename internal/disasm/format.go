package disasm

import (
	"fmt"
	"strings"
)

// Format renders an instruction as "0x10: op a, b", followed by " ; 0x..."
// when the instruction has a resolved target.
func Format(i Inst) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%#x: %s", i.Addr, i.Op)
	if len(i.Args) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(i.Args, ", "))
	}
	if i.HasTarget {
		fmt.Fprintf(&sb, " ; %#x", i.Target)
	}
	return sb.String()
}

// Lines renders every instruction of the stream.
func (s Stream) Lines() []string {
	out := make([]string, len(s))
	for i, inst := range s {
		out[i] = Format(inst)
	}
	return out
}
