package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"avrdis/internal/analysis"
	"avrdis/internal/avrdis/styles"
	"avrdis/internal/disasm"
	"avrdis/internal/ihex"
	"avrdis/internal/ui/colorize"
)

type viewMode int

const (
	viewListing viewMode = iota
	viewRecords
	viewFindings
)

type recordItem struct {
	index   int
	record  ihex.Record
	address uint32 // absolute address, extended address records applied
}

func (i recordItem) FilterValue() string {
	return fmt.Sprintf("%x %s", i.address, i.record.Type)
}

// Custom item delegate for the records list
type recordDelegate struct{}

func (d recordDelegate) Height() int                               { return 1 }
func (d recordDelegate) Spacing() int                              { return 0 }
func (d recordDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d recordDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(recordItem)
	if !ok {
		return
	}

	var addrStyle lipgloss.Style
	var indicator string
	if index == m.Index() {
		indicator = ">"
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	} else {
		indicator = " "
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	}

	checksum := lipgloss.NewStyle().Foreground(lipgloss.Color("71")).Render("ok")
	if !i.record.Valid() {
		checksum = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).
			Render(fmt.Sprintf("checksum %#02x, want %#02x", i.record.Checksum, i.record.ComputedChecksum()))
	}

	fmt.Fprintf(w, " %s %4d  %s  %-22s %3d bytes  %s",
		indicator,
		i.index+1,
		addrStyle.Render(fmt.Sprintf("%06x", i.address)),
		i.record.Type,
		i.record.Size(),
		checksum)
}

// listingMsg carries the finished decode pass into the model.
type listingMsg struct {
	listing  disasm.Stream
	findings []analysis.Finding
	err      error
}

func decodeCmd(runs []ihex.Run, opts analysis.Options) tea.Cmd {
	return func() tea.Msg {
		listing, err := analysis.Collect(runs, opts)
		return listingMsg{
			listing:  listing,
			findings: detectFindings(listing),
			err:      err,
		}
	}
}

type model struct {
	viewport     viewport.Model
	recordsList  list.Model
	findingsView viewport.Model
	spinner      spinner.Model
	mode         viewMode
	records      []ihex.Record
	runs         []ihex.Run
	opts         analysis.Options
	listing      disasm.Stream
	findings     []analysis.Finding
	decodeErr    error
	decoding     bool
	headerLines  int
	selected     int // listing index of the last jump, -1 for none
	width        int
	height       int
}

func NewModel(records []ihex.Record, opts analysis.Options) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(22)

	// Replay the assembler so every record knows the upper address in effect.
	var asm ihex.Assembler
	items := make([]list.Item, 0, len(records))
	for i, rec := range records {
		items = append(items, recordItem{
			index:   i,
			record:  rec,
			address: asm.Offset() + uint32(rec.Address),
		})
		asm.Add(rec)
	}

	recordsList := list.New(items, recordDelegate{}, 80, 22)
	recordsList.SetShowStatusBar(false)
	recordsList.SetFilteringEnabled(true)
	recordsList.Title = fmt.Sprintf("Records (%d total)", len(records))
	recordsList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	recordsList.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	fvp := viewport.New()
	fvp.SetWidth(80)
	fvp.SetHeight(22)

	m := model{
		viewport:     vp,
		recordsList:  recordsList,
		findingsView: fvp,
		spinner:      s,
		mode:         viewListing,
		records:      records,
		runs:         asm.Runs(),
		opts:         opts,
		decoding:     true,
		selected:     -1,
		width:        80,
		height:       24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		decodeCmd(m.runs, m.opts),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case listingMsg:
		m.listing = msg.listing
		m.findings = msg.findings
		m.decodeErr = msg.err
		m.decoding = false
		if msg.err != nil {
			slog.Warn("Decode failed", "error", msg.err)
		}
		m.updateContent()
		m.updateFindings()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.decoding {
			m.updateContent()
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.recordsList.SetWidth(msg.Width)
			m.recordsList.SetHeight(msg.Height - 2)
			m.findingsView.SetWidth(msg.Width)
			m.findingsView.SetHeight(msg.Height - 2)

			m.updateContent()
			m.updateFindings()
		}

	case tea.KeyMsg:
		key := msg.String()
		if m.mode == viewRecords && m.recordsList.FilterState() == list.Filtering {
			// the list owns every key but quit while filtering
			if key == "ctrl+c" {
				return m, tea.Quit
			}
		} else if handled, cmd := m.handleKey(key); handled {
			return m, cmd
		}
	}

	switch m.mode {
	case viewRecords:
		m.recordsList, cmd = m.recordsList.Update(msg)
	case viewFindings:
		m.findingsView, cmd = m.findingsView.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// handleKey applies the navigation keys and reports whether key was one.
func (m *model) handleKey(key string) (bool, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return true, tea.Quit
	case "l":
		m.mode = viewListing
	case "r":
		m.mode = viewRecords
	case "f":
		m.mode = viewFindings
	case "tab":
		m.mode = (m.mode + 1) % 3
	case "shift+tab":
		m.mode = (m.mode + 2) % 3
	case "enter":
		if m.mode != viewRecords {
			return false, nil
		}
		if item, ok := m.recordsList.SelectedItem().(recordItem); ok {
			m.jumpTo(item)
		}
	default:
		return false, nil
	}
	return true, nil
}

// jumpTo shows the listing scrolled to the first instruction at or after the
// record's address.
func (m *model) jumpTo(item recordItem) {
	m.mode = viewListing
	for i, inst := range m.listing {
		if inst.Addr >= item.address {
			m.selected = i
			m.updateContent()
			m.viewport.SetYOffset(m.headerLines + i)
			return
		}
	}
	slog.Debug("No instruction for record", "record", item.index+1, "address", item.address)
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewRecords:
		content = m.recordsList.View()
	case viewFindings:
		content = m.findingsView.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewRecords:
		menu = " Enter: jump to listing • L: listing • F: findings • Tab: cycle • Q: quit "
	case viewFindings:
		menu = " L: listing • R: records • Tab: cycle • Q: quit "
	default:
		menu = " R: records • F: findings • Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m *model) renderWidth() int {
	if m.width == 0 {
		return 78
	}
	return m.width - 2
}

func (m *model) updateContent() {
	overloads := "on"
	if !m.opts.Overloads {
		overloads = "off"
	}

	lines := []string{
		fmt.Sprintf("; %d records, %d runs", len(m.records), len(m.runs)),
		fmt.Sprintf("; overloads %s", overloads),
	}
	if !m.decoding {
		lines = append(lines, fmt.Sprintf("; %d instructions", len(m.listing)))
	}
	md := fmt.Sprintf("# avrdis\n\n```\n%s\n```", strings.Join(lines, "\n"))
	if m.decoding {
		md += fmt.Sprintf("\n\n%s Decoding...", m.spinner.View())
	}

	header := strings.TrimSuffix(styles.Render(md, m.renderWidth()), "\n")
	m.headerLines = strings.Count(header, "\n") + 1

	body := make([]string, len(m.listing))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	for i, inst := range m.listing {
		if i == m.selected {
			body[i] = selStyle.Render("> ") + colorize.Line(inst.String())
			continue
		}
		body[i] = "  " + colorize.Line(inst.String())
	}

	content := header + "\n" + strings.Join(body, "\n")
	if m.decodeErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
		content += "\n\n" + errStyle.Render("error: "+m.decodeErr.Error())
	}
	m.viewport.SetContent(content)
}

func (m *model) updateFindings() {
	var sb strings.Builder
	sb.WriteString("## Findings\n\n")
	if len(m.findings) == 0 {
		sb.WriteString("No vectors or subroutines found.\n")
	}
	for _, f := range m.findings {
		fmt.Fprintf(&sb, "- `%#x` %s: %s\n", f.Addr, f.Kind, f.Comment)
	}
	m.findingsView.SetContent(strings.TrimSuffix(styles.Render(sb.String(), m.renderWidth()), "\n"))
}

func runTUI(ctx context.Context, records []ihex.Record, opts analysis.Options) error {
	program := tea.NewProgram(
		NewModel(records, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
