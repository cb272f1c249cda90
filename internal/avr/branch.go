package avr

// ProgramSpaceMask bounds byte addresses to the 22-bit word program counter.
const ProgramSpaceMask = 1<<23 - 1

// Displacement decodes a two's-complement word displacement whose sign bit is
// carried separately from the width-bit magnitude field raw.
func Displacement(sign, raw uint32, width uint) int32 {
	if sign == 0 {
		return int32(raw)
	}
	mask := uint32(1)<<width - 1
	return -int32((^raw)&mask + 1)
}

// RelativeTarget returns the byte address reached by a relative branch at addr.
func RelativeTarget(addr uint32, disp int32) uint32 {
	return uint32(int64(addr)+relativeOffset(disp)) & ProgramSpaceMask
}

// relativeOffset is the byte distance from the branch itself.
func relativeOffset(disp int32) int64 {
	return (int64(disp) + 1) * 2
}

// AbsoluteTarget assembles the 22-bit jmp/call word address from the opcode's
// k bits and the extension word and returns it as a byte address.
func AbsoluteTarget(k uint32, ext uint16) uint32 {
	return k<<17 | uint32(ext)<<1
}
