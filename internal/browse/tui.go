package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/ghboard/internal/heuristics"
	"github.com/amishk599/ghboard/internal/model"
	"github.com/amishk599/ghboard/internal/processor"
)

// Lines per record in the list pane (title + subtitle + blank separator).
const recordItemHeight = 3

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailValueStyle = lipgloss.NewStyle()

	descDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	descHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type browseModel struct {
	board   string
	records []model.Record
	report  processor.Report

	listViewport   viewport.Model
	detailViewport viewport.Model
	activePane     int // 0=list, 1=detail
	cursor         int
	width          int
	height         int
	ready          bool

	showDescription bool
	wantQuit        bool
}

func newBrowseModel(board string, records []model.Record, report processor.Report) browseModel {
	return browseModel{board: board, records: records, report: report}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.wantQuit = true
			return m, tea.Quit
		case "esc", "b":
			m.wantQuit = false
			return m, tea.Quit
		case "tab", "left", "right":
			m.activePane = 1 - m.activePane
			m.recalcContent()
			return m, nil
		case "o":
			if rec, ok := m.current(); ok {
				openURL(firstNonEmpty(rec.ApplyURL, rec.PostingURL))
			}
			return m, nil
		case "r":
			m.showDescription = !m.showDescription
			m.recalcContent()
			m.detailViewport.SetYOffset(0)
			return m, nil
		}

		if m.activePane == 0 {
			switch msg.String() {
			case "up", "k":
				m.moveCursor(-1)
				return m, nil
			case "down", "j":
				m.moveCursor(1)
				return m, nil
			}
		}

		// Forward other keys (pgup/pgdn/home/end, arrows in the detail pane) to the active viewport.
		var cmd tea.Cmd
		if m.activePane == 0 {
			m.listViewport, cmd = m.listViewport.Update(msg)
		} else {
			m.detailViewport, cmd = m.detailViewport.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.records)-1, 0))
	m.recalcContent()
	m.detailViewport.SetYOffset(0)
	m.ensureCursorVisible()
}

func (m *browseModel) ensureCursorVisible() {
	vp := &m.listViewport
	cursorTop := m.cursor * recordItemHeight
	cursorBottom := cursorTop + recordItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m browseModel) current() (model.Record, bool) {
	if len(m.records) == 0 {
		return model.Record{}, false
	}
	return m.records[m.cursor], true
}

func (m *browseModel) recalcLayout() {
	// List takes two fifths; 2 border chars per pane + 1 gap between panes.
	listWidth := max((m.width-5)*2/5, 20)
	detailWidth := max(m.width-5-listWidth, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(listWidth, paneHeight)
		m.detailViewport = viewport.New(detailWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = listWidth
		m.listViewport.Height = paneHeight
		m.detailViewport.Width = detailWidth
		m.detailViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderRecords(m.records, m.cursor, m.activePane == 0))
	rec, ok := m.current()
	if !ok {
		m.detailViewport.SetContent("  (no records)")
		return
	}
	m.detailViewport.SetContent(renderDetail(rec, m.showDescription, m.detailViewport.Width))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	listHeader := fmt.Sprintf(" %s: %d records", m.board, len(m.records))
	detailHeader := " Detail"

	listHeaderStyle, detailHeaderStyle := activeHeaderStyle, inactiveHeaderStyle
	listBorder, detailBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == 1 {
		listHeaderStyle, detailHeaderStyle = inactiveHeaderStyle, activeHeaderStyle
		listBorder, detailBorder = inactiveBorderStyle, activeBorderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.listViewport.Width+2).Render(listHeaderStyle.Render(listHeader)),
		" ",
		lipgloss.NewStyle().Width(m.detailViewport.Width+2).Render(detailHeaderStyle.Render(detailHeader)),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Width(m.listViewport.Width).Render(m.listViewport.View()),
		" ",
		detailBorder.Width(m.detailViewport.Width).Render(m.detailViewport.View()),
	)

	r := m.report
	statusText := fmt.Sprintf(" %d accepted | %d too old | %d other depts | %d detail failures    Tab switch  ↑/↓ move  r desc  o open  Esc back  q quit",
		r.Accepted, r.FilteredByDate, r.FilteredByDepartment, r.DetailFailures)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func renderRecords(records []model.Record, cursor int, isActive bool) string {
	if len(records) == 0 {
		return "  (no records)"
	}

	var b strings.Builder
	for i, r := range records {
		isSelected := i == cursor

		titleSt := titleStyle
		subtitleSt := subtitleStyle
		prefix := "  "
		if isSelected {
			prefix = "> "
			if isActive {
				titleSt = selectedTitleStyle
				subtitleSt = selectedSubtitleStyle
			}
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(r.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s", firstNonEmpty(r.Location, "n/a"), firstNonEmpty(r.Department, "No department"))))
		b.WriteByte('\n')

		if i < len(records)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderDetail(r model.Record, showDescription bool, width int) string {
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", r.Title)
	addField("Company", r.Company)
	addField("Job ID", fmt.Sprint(r.ID))
	addField("Department", r.Department)
	if r.Type != nil {
		addField("Type", *r.Type)
	}

	b.WriteByte('\n')
	addField("Location", r.Location)
	if len(r.Locations) > 1 {
		addField("Locations", strings.Join(r.Locations, " | "))
	}
	addField("Workplace", workplace(r))
	if r.Salary != nil {
		addField("Salary", r.Salary.Display()+" "+string(r.Salary.Currency))
		addField("Salary text", r.Salary.Raw)
	}
	addField("Updated", formatDate(r.PublishedAt))

	if len(r.Metadata) > 0 {
		b.WriteByte('\n')
		keys := make([]string, 0, len(r.Metadata))
		for k := range r.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			addField(truncate(k, 13), r.Metadata[k])
		}
	}

	b.WriteByte('\n')
	addField("Posting URL", r.PostingURL)
	if r.ApplyURL != r.PostingURL {
		addField("Apply URL", r.ApplyURL)
	}

	if r.Description == "" {
		return b.String()
	}

	wrapWidth := max(width-2, 20)
	b.WriteByte('\n')
	if showDescription {
		label := "── Description "
		fill := strings.Repeat("─", max(wrapWidth-len([]rune(label)), 3))
		b.WriteString(descDividerStyle.Render(label+fill) + "\n\n")
		b.WriteString(descBodyStyle.Render(wordWrap(heuristics.PlainText(r.Description), wrapWidth)) + "\n")
	} else {
		b.WriteString(descHintStyle.Render("  press r to read the description") + "\n")
	}
	return b.String()
}

func workplace(r model.Record) string {
	switch {
	case r.IsRemote && r.IsHybrid:
		return "Remote / Hybrid"
	case r.IsRemote:
		return "Remote"
	case r.IsHybrid:
		return "Hybrid"
	default:
		return "On-site"
	}
}

// formatDate shortens an RFC 3339 timestamp to its date; anything else is
// shown as-is.
func formatDate(s string) string {
	if s == "" {
		return "n/a"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunBrowseTUI launches the split list/detail view over records.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed esc to return to the picker.
func RunBrowseTUI(board string, records []model.Record, report processor.Report) (bool, error) {
	p := tea.NewProgram(newBrowseModel(board, records, report), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(browseModel)
	return final.wantQuit, nil
}
