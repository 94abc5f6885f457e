package tui

import (
	"context"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/playdeck/internal/model"
	"github.com/handiism/playdeck/internal/playback"
)

type fakePlayer struct {
	state    playback.State
	toggles  int
	disposed bool
}

func (f *fakePlayer) State() playback.State                  { return f.state }
func (f *fakePlayer) Subscribe(func(playback.Change)) func() { return func() {} }
func (f *fakePlayer) TogglePlay(context.Context)             { f.toggles++ }
func (f *fakePlayer) Dispose()                               { f.disposed = true }

type fakeTransport struct {
	fakePlayer
	playlist *model.Playlist
	next     int
	previous int
	seeks    []float64
	volumes  []float64
}

func (f *fakeTransport) PlayNext(context.Context)     { f.next++ }
func (f *fakeTransport) PlayPrevious(context.Context) { f.previous++ }
func (f *fakeTransport) Seek(s float64)               { f.seeks = append(f.seeks, s) }
func (f *fakeTransport) SetVolume(v float64)          { f.volumes = append(f.volumes, v) }
func (f *fakeTransport) Playlist() *model.Playlist    { return f.playlist }

func newFakeTransport(t *testing.T) *fakeTransport {
	t.Helper()
	pl, err := model.NewPlaylist(
		model.Track{Resource: "1. christmas-nice.mp3", Title: "Christmas Nice"},
		model.Track{Resource: "2. christmas-magic.mp3", Title: "Christmas Magic"},
	)
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTransport{playlist: pl}
	f.state = playback.State{Track: pl.At(0), Volume: 0.3, CurrentTime: 10}
	return f
}

var (
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	leftKey  = tea.KeyMsg{Type: tea.KeyLeft}
	rightKey = tea.KeyMsg{Type: tea.KeyRight}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press sends msg and runs the resulting command, if any.
func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd == nil {
		return next.(Model), nil
	}
	return next.(Model), cmd()
}

func TestModel_PlaylistKeys(t *testing.T) {
	f := newFakeTransport(t)
	m := NewModel(f, Options{})

	m, _ = press(t, m, spaceKey)
	m, _ = press(t, m, runeKey('n'))
	m, _ = press(t, m, runeKey('p'))
	m, _ = press(t, m, rightKey)
	m, _ = press(t, m, runeKey('+'))
	press(t, m, runeKey('-'))

	if f.toggles != 1 {
		t.Errorf("toggles = %d, want 1", f.toggles)
	}
	if f.next != 1 || f.previous != 1 {
		t.Errorf("next = %d, previous = %d, want 1 and 1", f.next, f.previous)
	}
	if len(f.seeks) != 1 || f.seeks[0] != 15 {
		t.Errorf("seeks = %v, want [15]", f.seeks)
	}
	if len(f.volumes) != 2 || math.Abs(f.volumes[0]-0.35) > 1e-9 || math.Abs(f.volumes[1]-0.25) > 1e-9 {
		t.Errorf("volumes = %v, want [0.35 0.25]", f.volumes)
	}
}

func TestModel_SeekBackStopsAtZero(t *testing.T) {
	f := newFakeTransport(t)
	f.state.CurrentTime = 3
	m := NewModel(f, Options{})

	press(t, m, leftKey)

	if len(f.seeks) != 1 || f.seeks[0] != 0 {
		t.Errorf("seeks = %v, want [0]", f.seeks)
	}
}

func TestModel_SingleTrackKeys(t *testing.T) {
	f := &fakePlayer{state: playback.State{Track: model.Track{Resource: "/audio/background.mp3"}}}
	m := NewModel(f, Options{})

	for _, k := range []tea.KeyMsg{runeKey('n'), runeKey('p'), leftKey, rightKey, runeKey('+')} {
		if _, cmd := m.Update(k); cmd != nil {
			t.Errorf("key %q should be disabled in single-track mode", k.String())
		}
	}

	press(t, m, spaceKey)
	if f.toggles != 1 {
		t.Errorf("toggles = %d, want 1", f.toggles)
	}
	if !strings.Contains(m.View(), "background") {
		t.Error("View() should show the track title")
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(newFakeTransport(t), Options{})

	_, msg := press(t, m, runeKey('q'))
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("q produced %T, want tea.QuitMsg", msg)
	}
}

func TestModel_NoticeIsModal(t *testing.T) {
	f := newFakeTransport(t)
	m := NewModel(f, Options{})

	next, _ := m.Update(NoticeMsg{Text: "blocked"})
	m = next.(Model)
	if !strings.Contains(m.View(), "blocked") {
		t.Fatal("View() should show the notice")
	}

	// q only dismisses while the notice is open.
	m, msg := press(t, m, runeKey('q'))
	if msg != nil {
		t.Errorf("dismissing key produced %T, want nil", msg)
	}
	if m.notice != "" {
		t.Error("notice should be dismissed")
	}

	press(t, m, spaceKey)
	if f.toggles != 1 {
		t.Errorf("toggles = %d, want 1 after dismissal", f.toggles)
	}
}

func TestModel_ChangeMsg(t *testing.T) {
	f := newFakeTransport(t)
	m := NewModel(f, Options{})

	st := playback.State{
		Phase:         playback.PhasePlaying,
		Index:         1,
		Track:         f.playlist.At(1),
		Playing:       true,
		CurrentTime:   65,
		Duration:      180,
		DurationKnown: true,
		Volume:        0.5,
		Error:         "Failed to play Christmas Magic: boom",
	}
	next, _ := m.Update(ChangeMsg{Reason: playback.ReasonTrackChanged, State: st})
	m = next.(Model)

	if m.state != st {
		t.Errorf("state = %+v, want %+v", m.state, st)
	}
	view := m.View()
	for _, want := range []string{"Christmas Magic", "Track 2 of 2", "01:05 / 03:00", "Volume: 50%", "boom"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_StaleCoverIgnored(t *testing.T) {
	m := NewModel(newFakeTransport(t), Options{})

	next, _ := m.Update(CoverMsg{Index: 1, Art: "stale"})
	m = next.(Model)
	if m.art != "" {
		t.Error("art for another track should be ignored")
	}

	next, _ = m.Update(CoverMsg{Index: 0, Art: "art"})
	m = next.(Model)
	if m.art != "art" || m.artIndex != 0 {
		t.Errorf("art = %q, artIndex = %d", m.art, m.artIndex)
	}
}

func TestRenderArt(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	lines := strings.Split(renderArt(img), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, "▀"); n != 4 {
			t.Errorf("line %d has %d blocks, want 4", i, n)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{-3, "00:00"},
		{65.4, "01:05"},
		{599.6, "10:00"},
	}

	for _, tt := range tests {
		if got := formatTime(tt.seconds); got != tt.want {
			t.Errorf("formatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestNotifier_QueuesUntilAttached(t *testing.T) {
	n := NewNotifier()
	n.Notify("first")
	n.Notify("second")

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pending) != 2 || n.pending[0] != "first" {
		t.Errorf("pending = %v, want [first second]", n.pending)
	}
}
