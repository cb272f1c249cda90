package cmd

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrdis/internal/analysis"
	"avrdis/internal/ihex"
	"avrdis/internal/ui/colorize"
)

func newDecodedModel(t *testing.T, lines ...string) model {
	t.Helper()
	t.Setenv(colorize.EnvNoColor, "1")

	records, err := ihex.ParseRecords(lines)
	require.NoError(t, err)

	m := NewModel(records, analysis.DefaultOptions())
	require.True(t, m.decoding)

	updated, _ := m.Update(decodeCmd(m.runs, m.opts)())
	m = updated.(model)
	require.False(t, m.decoding)
	return m
}

func TestModelShowsListing(t *testing.T) {
	m := newDecodedModel(t, vectors, ":02000800089559")

	require.Len(t, m.listing, 3)
	view := colorize.StripANSI(m.View())
	assert.Contains(t, view, "0x0: jmp 0x68 ; 0x68")
	assert.Contains(t, view, "0x8: ret")
	assert.Contains(t, view, "2 records, 1 runs")
	assert.Len(t, m.findings, 2)
}

func TestModelShowsDecodeError(t *testing.T) {
	m := newDecodedModel(t, nopThenBad)

	require.Error(t, m.decodeErr)
	view := colorize.StripANSI(m.View())
	assert.Contains(t, view, "0x0: nop")
	assert.Contains(t, view, "unknown opcode 0x0001")
}

func TestModelKeys(t *testing.T) {
	m := newDecodedModel(t, vectors)

	steps := []struct {
		key  string
		want viewMode
	}{
		{"tab", viewRecords},
		{"tab", viewFindings},
		{"tab", viewListing},
		{"shift+tab", viewFindings},
		{"l", viewListing},
		{"r", viewRecords},
		{"f", viewFindings},
	}
	for _, step := range steps {
		handled, _ := m.handleKey(step.key)
		assert.True(t, handled, step.key)
		assert.Equal(t, step.want, m.mode, step.key)
	}

	handled, cmd := m.handleKey("q")
	assert.True(t, handled)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	handled, _ = m.handleKey("x")
	assert.False(t, handled)
}

func TestModelEnterJumpsToRecord(t *testing.T) {
	m := newDecodedModel(t, vectors, ":02000800089559")

	m.handleKey("r")
	m.recordsList.Select(1)
	handled, _ := m.handleKey("enter")

	assert.True(t, handled)
	assert.Equal(t, viewListing, m.mode)
	assert.Equal(t, 2, m.selected)
	assert.Contains(t, colorize.StripANSI(m.View()), "> 0x8: ret")
}

func TestModelEnterOutsideRecords(t *testing.T) {
	m := newDecodedModel(t, vectors)

	handled, _ := m.handleKey("enter")
	assert.False(t, handled)
	assert.Equal(t, -1, m.selected)
}

func TestRecordItemsUseExtendedAddress(t *testing.T) {
	m := newDecodedModel(t, ":020000040001F9", ":020000000000FE")

	items := m.recordsList.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint32(0x0), items[0].(recordItem).address)
	assert.Equal(t, uint32(0x10000), items[1].(recordItem).address)
	assert.Equal(t, "0x10000: nop", m.listing[0].String())
}

func TestModelFindingsView(t *testing.T) {
	m := newDecodedModel(t, vectors)

	m.handleKey("f")
	view := colorize.StripANSI(m.View())
	assert.Contains(t, view, "Findings")
	assert.Contains(t, view, "reset -> 0x68")
}

func TestModelResize(t *testing.T) {
	m := newDecodedModel(t, vectors)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(model)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}
