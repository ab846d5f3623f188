package viz

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coastsim/internal/coasting"
	"github.com/san-kum/coastsim/internal/decay"
	"github.com/san-kum/coastsim/internal/frame"
	"github.com/san-kum/coastsim/internal/scrub"
)

const (
	trackWidth = 60
	minSpeed   = 0.1
)

type Config struct {
	Env           decay.Environment
	Bounds        scrub.Bounds
	Position      float64
	Speed         float64
	FrameRate     int
	FrameInterval int
	FrameBudget   time.Duration
	Logger        *slog.Logger
}

type TickMsg time.Time

// Model wires a scrub controller to a manual frame driver stepped by Bubble
// Tea ticks. Its pointers are shared between copies of the value.
type Model struct {
	driver *frame.Manual
	ctrl   *scrub.Controller
	rec    *coasting.Recorder
	period time.Duration
	speed  float64
	title  string
}

func NewModel(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	driver := frame.NewManual(cfg.FrameRate)
	rec := coasting.NewRecorder()
	ctrl := scrub.New(cfg.Env, cfg.Bounds, driver, driver,
		scrub.WithObserver(rec),
		scrub.WithLogger(cfg.Logger),
		scrub.WithSessionOptions(
			coasting.WithFrameInterval(cfg.FrameInterval),
			coasting.WithFrameBudget(cfg.FrameBudget),
		),
	)
	ctrl.SetPosition(cfg.Position)

	speed := cfg.Speed
	if speed < minSpeed {
		speed = minSpeed
	}
	return Model{
		driver: driver,
		ctrl:   ctrl,
		rec:    rec,
		period: driver.Period(),
		speed:  speed,
		title:  cfg.Env.String(),
	}
}

func (m Model) Controller() *scrub.Controller { return m.ctrl }
func (m Model) Speed() float64                { return m.speed }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.period, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances one display frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctrl.Cancel()
			return m, tea.Quit
		case "left", "h":
			m.release(-m.speed)
		case "right", "l":
			m.release(m.speed)
		case "up", "k":
			m.speed *= 1.25
		case "down", "j":
			m.speed = math.Max(minSpeed, m.speed/1.25)
		case " ":
			m.ctrl.Cancel()
		case "t":
			if m.ctrl.IsTouching() {
				m.ctrl.Release(0)
			} else {
				m.ctrl.Touch()
			}
		case "r":
			b := m.ctrl.Bounds()
			m.ctrl.SetPosition(b.Min + b.Span()/2)
		}
	case TickMsg:
		m.driver.Step()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) release(velocity float64) {
	if !m.ctrl.IsTouching() {
		m.ctrl.Touch()
	}
	m.ctrl.Release(velocity)
}

func (m Model) status() string {
	switch {
	case m.ctrl.IsCoasting():
		return statusCoasting.Render("COASTING")
	case m.ctrl.IsTouching():
		return statusTouching.Render("TOUCHING")
	case m.rec.Outcome != coasting.None:
		return statusIdle.Render("IDLE (" + m.rec.Outcome.String() + ")")
	default:
		return statusIdle.Render("IDLE")
	}
}

// cell maps a position to a track column.
func cell(b scrub.Bounds, x float64, width int) int {
	if b.Span() <= 0 {
		return 0
	}
	c := int(math.Round((x - b.Min) / b.Span() * float64(width-1)))
	return max(0, min(width-1, c))
}

func (m Model) track() string {
	b := m.ctrl.Bounds()
	pos := cell(b, m.ctrl.Position(), trackWidth)
	dest := cell(b, m.ctrl.Destination(), trackWidth)

	var s strings.Builder
	s.WriteString("|")
	for i := 0; i < trackWidth; i++ {
		switch {
		case i == pos:
			s.WriteString(markerStyle.Render("O"))
		case i == dest && m.ctrl.IsCoasting():
			s.WriteString(targetStyle.Render("x"))
		default:
			s.WriteString("-")
		}
	}
	s.WriteString("|\n")
	s.WriteString(fmt.Sprintf("%-*.1f%*.1f", trackWidth/2+1, b.Min, trackWidth/2+1, b.Max))
	return s.String()
}

// View renders the track and the stats panel.
func (m Model) View() string {
	trackView := trackStyle.Render(m.track())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.rec.Samples) > 1 {
		vs := make([]float64, len(m.rec.Samples))
		for i, sm := range m.rec.Samples {
			vs[i] = sm.Velocity
		}
		chart := asciigraph.Plot(vs, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Velocity"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	last, _ := m.rec.Last()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Position", fmt.Sprintf("%.2f", m.ctrl.Position()))
	row("Velocity", fmt.Sprintf("%.2f", last.Velocity))
	row("Elapsed", fmt.Sprintf("%.2fs", last.Elapsed))
	row("Travel", fmt.Sprintf("%.2f", last.Distance))
	if sess := m.ctrl.Session(); sess != nil {
		row("Stop time", fmt.Sprintf("%.2fs", sess.StopTime()))
		row("Distance", fmt.Sprintf("%.2f", sess.StopDistance()))
	}
	row("Fling", fmt.Sprintf("%.2f/s", m.speed))
	row("Overruns", fmt.Sprintf("%d", m.rec.Overruns))

	s.WriteString(helpStyle.Render("─────────────────────\n←→:Fling ↑↓:Speed SP:Stop\nT:Touch R:Center Q:Quit"))
	statsView := statsStyle.Render(s.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, trackView, statsView)
}

// Run starts the viewer and blocks until it quits.
func Run(cfg Config) error {
	_, err := tea.NewProgram(NewModel(cfg)).Run()
	return err
}
