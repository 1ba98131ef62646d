// Package resultsui provides the Bubble Tea run browser.
package resultsui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vintr-dev/tapscore/internal/report"
	"github.com/vintr-dev/tapscore/internal/scorer"
	"github.com/vintr-dev/tapscore/internal/store"
)

const (
	tabRuns = iota
	tabDetails
	tabHistory
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea run browser.
type Model struct {
	store *store.Store
	lang  string

	runs   []store.Run
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	runTable  table.Model

	selectedRunID int64

	width  int
	height int
}

// NewModel constructs a run browser model.
func NewModel(st *store.Store, lang string) *Model {
	m := &Model{
		store: st,
		lang:  lang,
		tabs:  []string{"Runs", "Details", "History"},
	}
	m.initRunTable()
	m.initViewports()
	m.refreshRuns()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabRuns {
			m.runTable.Focus()
		} else {
			m.runTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshRuns()
			m.updateLayout()
			return m, nil
		case "enter":
			if m.activeTab == tabRuns {
				m.selectCursorRun()
				m.moveTab(1)
				return m, tea.ClearScreen
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabRuns {
				m.runTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRuns {
				m.runTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabRuns {
				var cmd tea.Cmd
				m.runTable, cmd = m.runTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initRunTable() {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 16},
		{Title: "Lang", Width: 6},
		{Title: "Seed", Width: 10},
		{Title: "Sentences", Width: 9},
		{Title: "Score", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(runTableStyles())
	m.runTable = t
}

func runTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.runTable.SetWidth(m.width)
	m.runTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabRuns {
		m.runTable.Focus()
	} else {
		m.runTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	lang := m.lang
	if lang == "" {
		lang = "any"
	}
	summary := fmt.Sprintf("Runs: %d  lang=%s", len(m.runs), lang)
	summary = truncateLine(summary, m.width)
	return tabs + "\n" + padLines(headerStyle.Render(summary), m.width)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Select: enter  Refresh: r  Quit: q"
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabRuns {
		if len(m.runs) == 0 {
			return fitLines("No runs found.", m.width, height)
		}
		view := tableMutedStyle.Render(m.runTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshRuns() {
	runs, err := m.store.ListRuns(context.Background(), m.lang, 0)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.runs = runs
	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, table.Row{
			strconv.FormatInt(run.ID, 10),
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Lang,
			strconv.FormatInt(run.Seed, 10),
			strconv.Itoa(run.Sentences),
			strconv.FormatFloat(run.OverallScore, 'f', 2, 64),
		})
	}
	m.runTable.SetRows(rows)
	if m.selectedRunID == 0 && len(runs) > 0 {
		m.selectedRunID = runs[0].ID
	}
	m.renderTabContents()
}

func (m *Model) selectCursorRun() {
	idx := m.runTable.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return
	}
	m.selectedRunID = m.runs[idx].ID
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabDetails].SetContent(m.renderDetails())
	m.viewports[tabHistory].SetContent(m.renderHistory(width))
}

func (m *Model) renderDetails() string {
	if m.selectedRunID == 0 {
		return "No run selected. Press Enter on a run."
	}
	run, err := m.store.GetRun(context.Background(), m.selectedRunID)
	if err != nil {
		return fmt.Sprintf("Failed to load run %d: %v", m.selectedRunID, err)
	}
	var results scorer.Results
	if err := json.Unmarshal([]byte(run.ResultsJSON), &results); err != nil {
		return fmt.Sprintf("Failed to decode run %d results: %v", run.ID, err)
	}
	var buf bytes.Buffer
	header := fmt.Sprintf("Run %d  %s  lang=%s  seed=%d  beta=%s\n\n",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.Lang, run.Seed,
		strconv.FormatFloat(run.Beta, 'f', -1, 64))
	buf.WriteString(header)
	if err := report.RenderResults(&buf, results); err != nil {
		return fmt.Sprintf("Failed to render run %d: %v", run.ID, err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderHistory(width int) string {
	if len(m.runs) == 0 {
		return "No runs found."
	}
	// Runs come newest first; the plot reads oldest to newest.
	scores := make([]float64, len(m.runs))
	for i, run := range m.runs {
		scores[len(m.runs)-1-i] = run.OverallScore
	}
	var buf bytes.Buffer
	if err := report.RenderScoreHistory(&buf, scores, width, plotHeight); err != nil {
		return fmt.Sprintf("Failed to render history: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
