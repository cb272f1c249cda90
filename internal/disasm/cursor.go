package disasm

// Cursor reads the words of one run in order. It never modifies the words.
type Cursor struct {
	base  uint32
	words []uint16
	pos   int
}

// NewCursor returns a cursor positioned on the first word, which lives at the
// byte address base.
func NewCursor(base uint32, words []uint16) *Cursor {
	return &Cursor{base: base, words: words}
}

// PeekNext returns the next word without consuming it.
func (c *Cursor) PeekNext() (uint16, bool) {
	if c.pos >= len(c.words) {
		return 0, false
	}
	return c.words[c.pos], true
}

// Advance consumes and returns the next word. It reports false once the run
// is exhausted.
func (c *Cursor) Advance() (uint16, bool) {
	w, ok := c.PeekNext()
	if ok {
		c.pos++
	}
	return w, ok
}

// Address returns the byte address of the next word.
func (c *Cursor) Address() uint32 {
	return c.base + 2*uint32(c.pos)
}

// Done reports whether every word has been consumed.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.words)
}

// Remaining returns the number of unread words.
func (c *Cursor) Remaining() int {
	return len(c.words) - c.pos
}
