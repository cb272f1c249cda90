package avr

import "fmt"

// Branch displacement widths, excluding the separate sign bit.
const (
	jumpWidth   = 11 // rjmp, rcall
	branchWidth = 6  // brbs, brbc and their named forms
)

var (
	setFlags   = [8]string{"sec", "sez", "sen", "sev", "ses", "seh", "set", "sei"}
	clearFlags = [8]string{"clc", "clz", "cln", "clv", "cls", "clh", "clt", "cli"}

	branchIfSet   = [8]string{"brcs", "breq", "brmi", "brvs", "brlt", "brhs", "brts", "brie"}
	branchIfClear = [8]string{"brcc", "brne", "brpl", "brvc", "brge", "brhc", "brtc", "brid"}
)

// instructionTable is evaluated first match wins. Entries that are special
// cases of a later entry must come first: the pointer forms before the
// displacement forms (q == 0), and every overload before its canonical form.
var instructionTable = buildTable()

func buildTable() []pattern {
	var t []pattern
	add := func(p pattern) {
		t = append(t, compile(p))
	}
	rd, rr := reg('d', 0), reg('r', 0)
	rdHigh, rrHigh := reg('d', 16), reg('r', 16)

	add(pattern{op: "nop", template: "0000_0000_0000_0000"})
	add(pattern{op: "movw", template: "0000_0001_dddd_rrrr", args: []operand{regPair('d', 0), regPair('r', 0)}})
	add(pattern{op: "muls", template: "0000_0010_dddd_rrrr", args: []operand{rdHigh, rrHigh}})
	add(pattern{op: "mulsu", template: "0000_0011_0ddd_0rrr", args: []operand{rdHigh, rrHigh}})
	add(pattern{op: "fmul", template: "0000_0011_0ddd_1rrr", args: []operand{rdHigh, rrHigh}})
	add(pattern{op: "fmuls", template: "0000_0011_1ddd_0rrr", args: []operand{rdHigh, rrHigh}})
	add(pattern{op: "fmulsu", template: "0000_0011_1ddd_1rrr", args: []operand{rdHigh, rrHigh}})

	// Two-register ALU operations.
	add(pattern{op: "cpc", template: "0000_01rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "sbc", template: "0000_10rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "lsl", template: "0000_11rd_dddd_rrrr", overload: true, when: dEqualsR, args: []operand{rd}})
	add(pattern{op: "add", template: "0000_11rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "cpse", template: "0001_00rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "cp", template: "0001_01rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "sub", template: "0001_10rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "rol", template: "0001_11rd_dddd_rrrr", overload: true, when: dEqualsR, args: []operand{rd}})
	add(pattern{op: "adc", template: "0001_11rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "tst", template: "0010_00rd_dddd_rrrr", overload: true, when: dEqualsR, args: []operand{rd}})
	add(pattern{op: "and", template: "0010_00rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "clr", template: "0010_01rd_dddd_rrrr", overload: true, when: dEqualsR, args: []operand{rd}})
	add(pattern{op: "eor", template: "0010_01rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "or", template: "0010_10rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "mov", template: "0010_11rd_dddd_rrrr", args: []operand{rd, rr}})

	// Register and immediate.
	add(pattern{op: "cpi", template: "0011_kkkk_dddd_kkkk", args: []operand{rdHigh, imm('k')}})
	add(pattern{op: "sbci", template: "0100_kkkk_dddd_kkkk", args: []operand{rdHigh, imm('k')}})
	add(pattern{op: "subi", template: "0101_kkkk_dddd_kkkk", args: []operand{rdHigh, imm('k')}})
	add(pattern{op: "ori", template: "0110_kkkk_dddd_kkkk", args: []operand{rdHigh, imm('k')}})
	add(pattern{op: "andi", template: "0111_kkkk_dddd_kkkk", args: []operand{rdHigh, imm('k')}})

	// Indirect load and store. Plain Y and Z are the q == 0 displacement forms.
	add(pattern{op: "ld", template: "1000_000d_dddd_0000", args: []operand{rd, lit("Z")}})
	add(pattern{op: "ld", template: "1000_000d_dddd_1000", args: []operand{rd, lit("Y")}})
	add(pattern{op: "st", template: "1000_001r_rrrr_0000", args: []operand{lit("Z"), rr}})
	add(pattern{op: "st", template: "1000_001r_rrrr_1000", args: []operand{lit("Y"), rr}})
	add(pattern{op: "ldd", template: "10q0_qq0d_dddd_0qqq", args: []operand{rd, displaced("Z")}})
	add(pattern{op: "ldd", template: "10q0_qq0d_dddd_1qqq", args: []operand{rd, displaced("Y")}})
	add(pattern{op: "std", template: "10q0_qq1r_rrrr_0qqq", args: []operand{displaced("Z"), rr}})
	add(pattern{op: "std", template: "10q0_qq1r_rrrr_1qqq", args: []operand{displaced("Y"), rr}})

	add(pattern{op: "lds", template: "1001_000d_dddd_0000", ext: 1, args: []operand{rd, dataAddress()}})
	add(pattern{op: "ld", template: "1001_000d_dddd_0001", args: []operand{rd, lit("Z+")}})
	add(pattern{op: "ld", template: "1001_000d_dddd_0010", args: []operand{rd, lit("-Z")}})
	add(pattern{op: "lpm", template: "1001_000d_dddd_0100", args: []operand{rd, lit("Z")}})
	add(pattern{op: "lpm", template: "1001_000d_dddd_0101", args: []operand{rd, lit("Z+")}})
	add(pattern{op: "elpm", template: "1001_000d_dddd_0110", args: []operand{rd, lit("Z")}})
	add(pattern{op: "elpm", template: "1001_000d_dddd_0111", args: []operand{rd, lit("Z+")}})
	add(pattern{op: "ld", template: "1001_000d_dddd_1001", args: []operand{rd, lit("Y+")}})
	add(pattern{op: "ld", template: "1001_000d_dddd_1010", args: []operand{rd, lit("-Y")}})
	add(pattern{op: "ld", template: "1001_000d_dddd_1100", args: []operand{rd, lit("X")}})
	add(pattern{op: "ld", template: "1001_000d_dddd_1101", args: []operand{rd, lit("X+")}})
	add(pattern{op: "ld", template: "1001_000d_dddd_1110", args: []operand{rd, lit("-X")}})
	add(pattern{op: "pop", template: "1001_000d_dddd_1111", args: []operand{rd}})

	add(pattern{op: "sts", template: "1001_001d_dddd_0000", ext: 1, args: []operand{dataAddress(), rd}})
	add(pattern{op: "st", template: "1001_001r_rrrr_0001", args: []operand{lit("Z+"), rr}})
	add(pattern{op: "st", template: "1001_001r_rrrr_0010", args: []operand{lit("-Z"), rr}})
	add(pattern{op: "xch", template: "1001_001d_dddd_0100", args: []operand{lit("Z"), rd}})
	add(pattern{op: "las", template: "1001_001d_dddd_0101", args: []operand{lit("Z"), rd}})
	add(pattern{op: "lac", template: "1001_001d_dddd_0110", args: []operand{lit("Z"), rd}})
	add(pattern{op: "lat", template: "1001_001d_dddd_0111", args: []operand{lit("Z"), rd}})
	add(pattern{op: "st", template: "1001_001r_rrrr_1001", args: []operand{lit("Y+"), rr}})
	add(pattern{op: "st", template: "1001_001r_rrrr_1010", args: []operand{lit("-Y"), rr}})
	add(pattern{op: "st", template: "1001_001r_rrrr_1100", args: []operand{lit("X"), rr}})
	add(pattern{op: "st", template: "1001_001r_rrrr_1101", args: []operand{lit("X+"), rr}})
	add(pattern{op: "st", template: "1001_001r_rrrr_1110", args: []operand{lit("-X"), rr}})
	add(pattern{op: "push", template: "1001_001d_dddd_1111", args: []operand{rd}})

	// One-operand ALU operations.
	add(pattern{op: "com", template: "1001_010d_dddd_0000", args: []operand{rd}})
	add(pattern{op: "neg", template: "1001_010d_dddd_0001", args: []operand{rd}})
	add(pattern{op: "swap", template: "1001_010d_dddd_0010", args: []operand{rd}})
	add(pattern{op: "inc", template: "1001_010d_dddd_0011", args: []operand{rd}})
	add(pattern{op: "asr", template: "1001_010d_dddd_0101", args: []operand{rd}})
	add(pattern{op: "lsr", template: "1001_010d_dddd_0110", args: []operand{rd}})
	add(pattern{op: "ror", template: "1001_010d_dddd_0111", args: []operand{rd}})
	add(pattern{op: "dec", template: "1001_010d_dddd_1010", args: []operand{rd}})

	// Status register bits.
	for s, name := range setFlags {
		add(pattern{op: name, template: fmt.Sprintf("1001_0100_0%03b_1000", s), overload: true})
	}
	add(pattern{op: "bset", template: "1001_0100_0sss_1000", args: []operand{num('s')}})
	for s, name := range clearFlags {
		add(pattern{op: name, template: fmt.Sprintf("1001_0100_1%03b_1000", s), overload: true})
	}
	add(pattern{op: "bclr", template: "1001_0100_1sss_1000", args: []operand{num('s')}})

	// Control transfer and system instructions without operands.
	add(pattern{op: "ijmp", template: "1001_0100_0000_1001"})
	add(pattern{op: "eijmp", template: "1001_0100_0001_1001"})
	add(pattern{op: "ret", template: "1001_0101_0000_1000"})
	add(pattern{op: "reti", template: "1001_0101_0001_1000"})
	add(pattern{op: "icall", template: "1001_0101_0000_1001"})
	add(pattern{op: "eicall", template: "1001_0101_0001_1001"})
	add(pattern{op: "sleep", template: "1001_0101_1000_1000"})
	add(pattern{op: "break", template: "1001_0101_1001_1000"})
	add(pattern{op: "wdr", template: "1001_0101_1010_1000"})
	add(pattern{op: "lpm", template: "1001_0101_1100_1000"})
	add(pattern{op: "elpm", template: "1001_0101_1101_1000"})
	add(pattern{op: "spm", template: "1001_0101_1110_1000"})
	add(pattern{op: "spm", template: "1001_0101_1111_1000", args: []operand{lit("Z+")}})
	add(pattern{op: "des", template: "1001_0100_kkkk_1011", args: []operand{num('k')}})

	add(pattern{op: "jmp", template: "1001_010k_kkkk_110k", ext: 1, args: []operand{absolute()}})
	add(pattern{op: "call", template: "1001_010k_kkkk_111k", ext: 1, args: []operand{absolute()}})

	add(pattern{op: "adiw", template: "1001_0110_kkdd_kkkk", args: []operand{regPair('d', 24), imm('k')}})
	add(pattern{op: "sbiw", template: "1001_0111_kkdd_kkkk", args: []operand{regPair('d', 24), imm('k')}})
	add(pattern{op: "cbi", template: "1001_1000_aaaa_abbb", args: []operand{imm('a'), num('b')}})
	add(pattern{op: "sbic", template: "1001_1001_aaaa_abbb", args: []operand{imm('a'), num('b')}})
	add(pattern{op: "sbi", template: "1001_1010_aaaa_abbb", args: []operand{imm('a'), num('b')}})
	add(pattern{op: "sbis", template: "1001_1011_aaaa_abbb", args: []operand{imm('a'), num('b')}})
	add(pattern{op: "mul", template: "1001_11rd_dddd_rrrr", args: []operand{rd, rr}})
	add(pattern{op: "in", template: "1011_0aad_dddd_aaaa", args: []operand{rd, imm('a')}})
	add(pattern{op: "out", template: "1011_1aar_rrrr_aaaa", args: []operand{imm('a'), rr}})

	add(pattern{op: "rjmp", template: "1100_ekkk_kkkk_kkkk", args: []operand{relative(jumpWidth)}})
	add(pattern{op: "rcall", template: "1101_ekkk_kkkk_kkkk", args: []operand{relative(jumpWidth)}})

	add(pattern{op: "ser", template: "1110_kkkk_dddd_kkkk", overload: true, when: kAllOnes, args: []operand{rdHigh}})
	add(pattern{op: "ldi", template: "1110_kkkk_dddd_kkkk", args: []operand{rdHigh, imm('k')}})

	// Conditional branches on a status bit.
	for s, name := range branchIfSet {
		add(pattern{op: name, template: fmt.Sprintf("1111_00ek_kkkk_k%03b", s), overload: true, args: []operand{relative(branchWidth)}})
	}
	add(pattern{op: "brbs", template: "1111_00ek_kkkk_ksss", args: []operand{num('s'), relative(branchWidth)}})
	for s, name := range branchIfClear {
		add(pattern{op: name, template: fmt.Sprintf("1111_01ek_kkkk_k%03b", s), overload: true, args: []operand{relative(branchWidth)}})
	}
	add(pattern{op: "brbc", template: "1111_01ek_kkkk_ksss", args: []operand{num('s'), relative(branchWidth)}})

	// Register bit operations and skips.
	add(pattern{op: "bld", template: "1111_100d_dddd_0bbb", args: []operand{rd, num('b')}})
	add(pattern{op: "bst", template: "1111_101d_dddd_0bbb", args: []operand{rd, num('b')}})
	add(pattern{op: "sbrc", template: "1111_110r_rrrr_0bbb", args: []operand{rr, num('b')}})
	add(pattern{op: "sbrs", template: "1111_111r_rrrr_0bbb", args: []operand{rr, num('b')}})

	return t
}
