package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"musevoice/audio"
	"musevoice/session"
	"musevoice/waveform"
)

// TUI message types
type StatusMsg struct{ Status session.Status }
type SampleCountMsg struct{ Count int }
type WaveformMsg struct{ Frame waveform.Frame }
type TranscriptMsg struct {
	Text   string
	Copied bool
}
type ErrorMsg struct{ Message string }
type RetryMsg struct{ Available bool }
type tickMsg time.Time

const (
	ribbonCharsW = 44
	ribbonCharsH = 10
	// Terminal cells are roughly 8x16 px; layout thresholds are in px.
	cellW = 8
	cellH = 16
)

type tuiModel struct {
	status        session.Status
	frame         waveform.Frame
	anim          waveform.Anim
	sampleCount   int
	transcript    string
	copied        bool
	errMsg        string
	retryOK       bool
	width, height int
	cfg           waveform.Config
	machine       *session.Machine
	shortcut      string
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

func NewTUIProgram(m *session.Machine, cfg waveform.Config, shortcut string) *tea.Program {
	model := tuiModel{
		status:   session.StatusLoading,
		cfg:      cfg,
		machine:  m,
		shortcut: shortcut,
	}
	return tea.NewProgram(model, tea.WithAltScreen())
}

// tuiSend delivers a message to the running program, if any.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func setTUIProgram(p *tea.Program) {
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()
}

// tuiDisplay forwards decoded events into the Bubble Tea loop.
type tuiDisplay struct{}

func (tuiDisplay) Status(st session.Status)  { tuiSend(StatusMsg{Status: st}) }
func (tuiDisplay) SampleCount(n int)         { tuiSend(SampleCountMsg{Count: n}) }
func (tuiDisplay) Waveform(f waveform.Frame) { tuiSend(WaveformMsg{Frame: f}) }
func (tuiDisplay) Transcript(text string, copied bool) {
	tuiSend(TranscriptMsg{Text: text, Copied: copied})
}
func (tuiDisplay) Error(message string)   { tuiSend(ErrorMsg{Message: message}) }
func (tuiDisplay) RetryAvailable(ok bool) { tuiSend(RetryMsg{Available: ok}) }

func tuiTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.anim.Advance(time.Time(msg), m.cfg.DotStepHz)
		return m, tuiTick()

	case StatusMsg:
		m.status = msg.Status
		if m.status == session.StatusRecording {
			m.sampleCount = 0
			m.errMsg = ""
		}

	case SampleCountMsg:
		m.sampleCount = msg.Count

	case WaveformMsg:
		m.frame = msg.Frame

	case TranscriptMsg:
		m.transcript = msg.Text
		m.copied = msg.Copied

	case ErrorMsg:
		m.errMsg = msg.Message
		m.sampleCount = 0

	case RetryMsg:
		m.retryOK = msg.Available
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ":
		if m.status == session.StatusRecording {
			m.machine.RequestStop(ctx)
		} else {
			m.machine.RequestStart(ctx)
		}
	case "esc":
		m.machine.RequestCancel(ctx)
	case "r":
		if m.retryOK {
			m.machine.RequestRetry(ctx)
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch waveform.LayoutFor(float64(m.width*cellW), float64(m.height*cellH)) {
	case waveform.LayoutHorizontallyCollapsed:
		return m.statusLine()
	case waveform.LayoutCollapsed:
		return m.leftPanel()
	}

	left := m.leftPanel()
	leftLines := strings.Split(left, "\n")

	logWidth := m.width - ribbonCharsW - 1
	if logWidth < 20 {
		logWidth = 20
	}
	right := m.transcriptPanel(logWidth)

	leftPadded := make([]string, m.height)
	for i := range leftPadded {
		if i < len(leftLines) {
			leftPadded[i] = leftLines[i]
		}
	}
	leftPanel := lipgloss.NewStyle().
		Width(ribbonCharsW).
		Height(m.height).
		Render(strings.Join(leftPadded, "\n"))
	rightPanel := lipgloss.NewStyle().
		Width(logWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(right)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func (m tuiModel) leftPanel() string {
	var b strings.Builder
	b.WriteString(m.renderRibbon())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.errMsg != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString(errStyle.Render("✗ "+m.errMsg) + "\n")
	}
	if m.retryOK {
		hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
		b.WriteString(hintStyle.Render("press r to retry") + "\n")
	}
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	b.WriteString(boldStyle.Render(m.shortcut) + helpStyle.Render(" or space to record") + "\n")
	b.WriteString(helpStyle.Render("musevoice "+version) + "\n")
	return b.String()
}

func (m tuiModel) statusLine() string {
	switch m.status {
	case session.StatusLoading:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("◌ LOADING")
	case session.StatusRecording:
		seconds := float64(m.sampleCount) / float64(audio.SampleRate)
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Render(fmt.Sprintf("● REC %.1fs", seconds))
	case session.StatusProcessing:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Render("◌ PROCESSING " + m.spinner())
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("○ READY")
	}
}

// spinner maps the shared dot animation onto braille-ish dot frames.
func (m tuiModel) spinner() string {
	frames := []string{"∙∙∙", "●∙∙", "∙●∙", "∙∙●"}
	idx := int(waveform.Eased(m.anim.Phase)) % len(frames)
	if idx < 0 {
		idx = 0
	}
	return frames[idx]
}

// renderRibbon rasterizes the waveform polygon into half-block cells.
func (m tuiModel) renderRibbon() string {
	const pixH = ribbonCharsH * 2
	level := m.frame.Level(m.cfg.FloorDB)
	points := waveform.Ribbon(m.frame.Bins, ribbonCharsW, pixH, 1, m.cfg.FloorDB)

	// Per column, the polygon contributes a top and a bottom edge.
	top := make([]int, ribbonCharsW)
	bottom := make([]int, ribbonCharsW)
	for x := range top {
		top[x] = pixH
		bottom[x] = -1
	}
	for _, p := range points {
		x := int(math.Round(p.X))
		if x < 0 || x >= ribbonCharsW {
			continue
		}
		y := int(math.Round(p.Y))
		if y < 0 {
			y = 0
		}
		if y >= pixH {
			y = pixH - 1
		}
		if y < top[x] {
			top[x] = y
		}
		if y > bottom[x] {
			bottom[x] = y
		}
	}

	tint := waveform.Grade(m.cfg.LineCold, m.cfg.LineHot, level)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(tint)))

	var b strings.Builder
	for cy := 0; cy < ribbonCharsH; cy++ {
		for cx := 0; cx < ribbonCharsW; cx++ {
			topY, botY := cy*2, cy*2+1
			topIn := topY >= top[cx] && topY <= bottom[cx]
			botIn := botY >= top[cx] && botY <= bottom[cx]
			switch {
			case topIn && botIn:
				b.WriteString(style.Render("█"))
			case topIn:
				b.WriteString(style.Render("▀"))
			case botIn:
				b.WriteString(style.Render("▄"))
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m tuiModel) transcriptPanel(width int) string {
	wrapWidth := width - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	var b strings.Builder
	if m.transcript == "" {
		placeholder := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("No transcriptions yet")
		b.WriteString(placeholder)
		return b.String()
	}

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("246")).
		Render("Transcript")
	b.WriteString(title + "\n\n")

	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	lines := wrapText(m.transcript, wrapWidth)
	for i, line := range lines {
		b.WriteString(textStyle.Render(line))
		if i == len(lines)-1 && m.copied {
			copiedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
			b.WriteString(" " + copiedStyle.Render("[✓ copied]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
