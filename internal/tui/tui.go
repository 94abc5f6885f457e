// Package tui provides a Bubble Tea terminal user interface for PlayDeck.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/playdeck/internal/audio"
	ioutils "github.com/handiism/playdeck/internal/io"
	"github.com/handiism/playdeck/internal/model"
	"github.com/handiism/playdeck/internal/playback"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	trackStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFE66D")).
			Padding(1, 2).
			Width(50)
)

const (
	seekStep   = 5.0
	volumeStep = 0.05
)

// Player is what the TUI drives. Both playback players implement it.
type Player interface {
	State() playback.State
	Subscribe(fn func(playback.Change)) (unsubscribe func())
	TogglePlay(ctx context.Context)
	Dispose()
}

// Transport is implemented by players with a playlist.
type Transport interface {
	Player
	PlayNext(ctx context.Context)
	PlayPrevious(ctx context.Context)
	Seek(seconds float64)
	SetVolume(v float64)
	Playlist() *model.Playlist
}

// Message types
type (
	// ChangeMsg carries a player change into the program.
	ChangeMsg playback.Change

	// NoticeMsg opens the modal notice.
	NoticeMsg struct {
		Text string
	}

	// CoverMsg delivers rendered cover art for the track at Index.
	CoverMsg struct {
		Index int
		Art   string
	}
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	player    Player
	transport Transport // nil in single-track mode
	covers    *coverLoader
	root      string

	ctx    context.Context
	cancel context.CancelFunc

	state  playback.State
	notice string
	art    string

	// artIndex is the track whose art is shown or being loaded.
	artIndex int

	keys     keyMap
	help     help.Model
	progress progress.Model
	spinner  spinner.Model
	width    int
}

// Options configures NewModel.
type Options struct {
	// Tags enables cover art when set.
	Tags *audio.TagReader

	// AudioRoot resolves track resources for cover art.
	AudioRoot string
}

// NewModel creates a model driving player. Players that implement
// Transport get the full key map; others only toggle.
func NewModel(player Player, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 50

	st := player.State()
	m := Model{
		player:   player,
		root:     opts.AudioRoot,
		ctx:      ctx,
		cancel:   cancel,
		state:    st,
		artIndex: st.Index,
		keys:     singleKeys(),
		help:     help.New(),
		progress: prog,
		spinner:  sp,
	}
	if t, ok := player.(Transport); ok {
		m.transport = t
		m.keys = playlistKeys()
		if opts.Tags != nil {
			m.covers = &coverLoader{tags: opts.Tags, images: ioutils.NewImageService()}
		}
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCover())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChangeMsg:
		m.state = msg.State
		if m.state.Index != m.artIndex {
			m.art = ""
			m.artIndex = m.state.Index
			return m, m.loadCover()
		}
		return m, nil

	case NoticeMsg:
		m.notice = msg.Text
		return m, nil

	case CoverMsg:
		if msg.Index == m.artIndex {
			m.art = msg.Art
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && (m.notice == "" || msg.String() == "ctrl+c") {
		m.cancel()
		return m, tea.Quit
	}
	// The notice is modal: the first key only dismisses it.
	if m.notice != "" {
		m.notice = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m, m.run(func(ctx context.Context) { m.player.TogglePlay(ctx) })
	case key.Matches(msg, m.keys.Next):
		return m, m.run(func(ctx context.Context) { m.transport.PlayNext(ctx) })
	case key.Matches(msg, m.keys.Previous):
		return m, m.run(func(ctx context.Context) { m.transport.PlayPrevious(ctx) })
	case key.Matches(msg, m.keys.SeekFwd):
		pos := m.state.CurrentTime + seekStep
		return m, m.run(func(context.Context) { m.transport.Seek(pos) })
	case key.Matches(msg, m.keys.SeekBack):
		pos := max(m.state.CurrentTime-seekStep, 0)
		return m, m.run(func(context.Context) { m.transport.Seek(pos) })
	case key.Matches(msg, m.keys.VolumeUp):
		v := m.state.Volume + volumeStep
		return m, m.run(func(context.Context) { m.transport.SetVolume(v) })
	case key.Matches(msg, m.keys.VolumeDown):
		v := m.state.Volume - volumeStep
		return m, m.run(func(context.Context) { m.transport.SetVolume(v) })
	}
	return m, nil
}

// run executes op off the event loop. Player notifications are sent back
// into the program, so player calls must never run inside Update.
func (m Model) run(op func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		op(ctx)
		return nil
	}
}

func (m Model) loadCover() tea.Cmd {
	if m.transport == nil {
		return nil
	}
	resource := model.ResourcePath(m.root, m.state.Track)
	return m.covers.load(m.ctx, m.state.Index, resource)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ PlayDeck"))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice + "\n\n" + dimStyle.Render("press any key")))
		b.WriteString("\n")
		return b.String()
	}

	if m.transport != nil {
		b.WriteString(m.viewPlaylist())
	} else {
		b.WriteString(m.viewSingle())
	}

	if m.state.Error != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + m.state.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewPlaylist() string {
	var b strings.Builder

	header := m.statusLine() + "\n" +
		trackStyle.Render(m.state.Track.DisplayTitle()) + "\n" +
		dimStyle.Render(fmt.Sprintf("Track %d of %d", m.state.Index+1, m.transport.Playlist().Len()))
	if m.art != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, m.art, "  ", header)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	var percent float64
	if m.state.DurationKnown && m.state.Duration > 0 {
		percent = min(m.state.CurrentTime/m.state.Duration, 1)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	total := "--:--"
	if m.state.DurationKnown {
		total = formatTime(m.state.Duration)
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("%s / %s | Volume: %d%%",
		formatTime(m.state.CurrentTime), total, int(m.state.Volume*100+0.5))))
	b.WriteString("\n\n")

	for i, t := range m.transport.Playlist().Tracks() {
		line := fmt.Sprintf("  %d. %s", i+1, t.DisplayTitle())
		if i == m.state.Index {
			b.WriteString(subtitleStyle.Render("▸" + line[1:]))
		} else {
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewSingle() string {
	var b strings.Builder
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(trackStyle.Render(m.state.Track.DisplayTitle()))
	b.WriteString(dimStyle.Render(" (loop)"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusLine() string {
	switch m.state.Phase {
	case playback.PhasePlaying:
		return subtitleStyle.Render("▶ Playing")
	case playback.PhaseLoading:
		return m.spinner.View() + " " + infoStyle.Render("Loading")
	case playback.PhasePaused:
		return infoStyle.Render("⏸ Paused")
	case playback.PhaseErrored:
		return errorStyle.Render("! Error")
	default:
		return dimStyle.Render("■ Stopped")
	}
}

func formatTime(seconds float64) string {
	d := time.Duration(max(seconds, 0) * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// Notifier forwards player notices to a running program. Notices sent
// before Run starts are delivered once it does.
type Notifier struct {
	mu      sync.Mutex
	program *tea.Program
	pending []string
}

// NewNotifier creates a Notifier. Pass it to the player with
// playback.WithNotifier and to Run.
func NewNotifier() *Notifier { return &Notifier{} }

// Notify implements playback.Notifier.
func (n *Notifier) Notify(message string) {
	n.mu.Lock()
	p := n.program
	if p == nil {
		n.pending = append(n.pending, message)
	}
	n.mu.Unlock()

	if p != nil {
		p.Send(NoticeMsg{Text: message})
	}
}

func (n *Notifier) attach(p *tea.Program) {
	n.mu.Lock()
	n.program = p
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()

	for _, msg := range pending {
		p.Send(NoticeMsg{Text: msg})
	}
}

// Run starts the TUI application and blocks until the user quits. The
// player is disposed before Run returns. notifier may be nil.
func Run(player Player, notifier *Notifier, opts Options) error {
	p := tea.NewProgram(NewModel(player, opts), tea.WithAltScreen())

	unsubscribe := player.Subscribe(func(c playback.Change) {
		p.Send(ChangeMsg(c))
	})
	if notifier != nil {
		go notifier.attach(p)
	}

	_, err := p.Run()
	unsubscribe()
	player.Dispose()
	return err
}
