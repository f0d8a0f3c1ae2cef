package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yt-clipper/internal/clip"
)

var (
	extractTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	extractMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	extractErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	extractOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	extractCachedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
)

type extractEventMsg clip.Event

type extractResultMsg struct {
	report clip.Report
	err    error
}

type clipRow struct {
	index   int
	title   string
	phase   string
	percent float64
	message string
}

type extractModel struct {
	total      int
	rows       map[int]*clipRow
	order      []int
	bar        progress.Model
	width      int
	cancel     context.CancelFunc
	cancelling bool
	finished   bool
	report     clip.Report
	err        error
}

func newExtractModel(total int, cancel context.CancelFunc) extractModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return extractModel{
		total:  total,
		rows:   make(map[int]*clipRow),
		bar:    bar,
		cancel: cancel,
	}
}

func (m extractModel) Init() tea.Cmd {
	return nil
}

func (m extractModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 40; w > 10 && w < 60 {
			m.bar.Width = w
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Let the pipeline unwind; the result message quits the program.
			m.cancelling = true
			m.cancel()
			return m, nil
		}
		return m, nil
	case extractEventMsg:
		m.applyEvent(clip.Event(msg))
		return m, nil
	case extractResultMsg:
		m.finished = true
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *extractModel) applyEvent(ev clip.Event) {
	row, ok := m.rows[ev.JobIndex]
	if !ok {
		row = &clipRow{index: ev.JobIndex, title: ev.Title}
		m.rows[ev.JobIndex] = row
		m.order = append(m.order, ev.JobIndex)
	}
	row.phase = ev.Phase
	row.message = ev.Message
	switch ev.Phase {
	case "transcoding":
		row.percent = ev.Sample.Percent
	case "done", "cached":
		row.percent = 100
	}
}

func (m extractModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	b.WriteString(extractTitleStyle.Render(fmt.Sprintf("extracting %d clips", m.total)))
	b.WriteString("\n\n")

	for _, idx := range m.order {
		row := m.rows[idx]
		label := fmt.Sprintf("[%d/%d] %s", row.index, m.total, row.title)
		switch row.phase {
		case "cached":
			b.WriteString(extractCachedStyle.Render(label + "  cached"))
		case "done":
			b.WriteString(extractOKStyle.Render(label + "  done"))
		case "failed":
			b.WriteString(extractErrorStyle.Render(label + "  failed"))
			if row.message != "" {
				b.WriteString("\n" + extractMutedStyle.Render("    "+firstLine(row.message)))
			}
		default:
			b.WriteString(label + "  " + m.bar.ViewAs(row.percent/100))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.cancelling {
		b.WriteString(extractMutedStyle.Render("cancelling, waiting for the current transcode to stop"))
	} else {
		b.WriteString(extractMutedStyle.Render("q or ctrl+c to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func runExtractWithTUI(ctx context.Context, opts clip.Options) (clip.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newExtractModel(len(opts.Requests), cancel))
	opts.OnEvent = func(ev clip.Event) {
		p.Send(extractEventMsg(ev))
	}

	go func() {
		report, err := clip.Run(ctx, opts)
		p.Send(extractResultMsg{report: report, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		return clip.Report{}, err
	}
	m, ok := final.(extractModel)
	if !ok {
		return clip.Report{}, fmt.Errorf("unexpected final model state")
	}
	if m.err != nil {
		return clip.Report{}, m.err
	}
	return m.report, nil
}
