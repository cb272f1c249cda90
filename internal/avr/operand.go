package avr

import (
	"fmt"

	"avrdis/internal/disasm"
)

// operandContext is what an operand renderer may look at. Renderers for
// branches, calls and jumps also record the resolved target on inst.
type operandContext struct {
	addr   uint32
	ext    uint16
	fields fields
	inst   *disasm.Inst
}

type operand func(c *operandContext) string

// reg renders register rN where N is the field value plus base.
func reg(letter byte, base uint32) operand {
	return func(c *operandContext) string {
		return fmt.Sprintf("r%d", c.fields[letter]+base)
	}
}

// regPair renders both halves of a register pair, high first.
func regPair(letter byte, base uint32) operand {
	return func(c *operandContext) string {
		lo := c.fields[letter]*2 + base
		return fmt.Sprintf("r%d:r%d", lo+1, lo)
	}
}

func imm(letter byte) operand {
	return func(c *operandContext) string {
		return fmt.Sprintf("%#x", c.fields[letter])
	}
}

func num(letter byte) operand {
	return func(c *operandContext) string {
		return fmt.Sprintf("%d", c.fields[letter])
	}
}

func lit(s string) operand {
	return func(*operandContext) string {
		return s
	}
}

// displaced renders a pointer register plus the q displacement, e.g. "Y+5".
func displaced(ptr string) operand {
	return func(c *operandContext) string {
		return fmt.Sprintf("%s+%d", ptr, c.fields['q'])
	}
}

// relative renders a PC-relative branch as the byte distance from the branch
// and records the absolute target. The sign lives in e, the magnitude in k; a
// backward displacement that lands on the branch itself prints as .-0x0.
func relative(width uint) operand {
	return func(c *operandContext) string {
		disp := Displacement(c.fields['e'], c.fields['k'], width)
		c.inst.Target = RelativeTarget(c.addr, disp)
		c.inst.HasTarget = true
		off := relativeOffset(disp)
		if off < 0 || (off == 0 && c.fields['e'] != 0) {
			return fmt.Sprintf(".-%#x", -off)
		}
		return fmt.Sprintf(".+%#x", off)
	}
}

// absolute renders the 22-bit jmp/call destination.
func absolute() operand {
	return func(c *operandContext) string {
		target := AbsoluteTarget(c.fields['k'], c.ext)
		c.inst.Target = target
		c.inst.HasTarget = true
		return fmt.Sprintf("%#x", target)
	}
}

// dataAddress renders the 16-bit data space address of lds/sts.
func dataAddress() operand {
	return func(c *operandContext) string {
		return fmt.Sprintf("%#x", c.ext)
	}
}
