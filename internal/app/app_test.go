package app

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "playdeck.log")
	path := writeConfig(t, `{"log_file": "`+filepath.ToSlash(logFile)+`", "volume": 0.5}`)

	rt, err := New(Options{ConfigPath: path, EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer rt.Close()

	if rt.Settings.Volume != 0.5 {
		t.Errorf("Volume = %v, want 0.5", rt.Settings.Volume)
	}
	if rt.Log == nil || rt.HTTP == nil || rt.Tags == nil || rt.Metrics == nil {
		t.Fatal("runtime services should be set")
	}

	rt.Log.Info("hello")
	_ = rt.Log.Sync()
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("log file not written: %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `{not json`)

	if _, err := New(Options{ConfigPath: path}); err == nil {
		t.Error("New() should fail on invalid settings")
	}
}

func TestRuntime_Playlist(t *testing.T) {
	tests := []struct {
		name    string
		resolve bool
		want    []string
	}{
		{"as configured", false, []string{"", "Titled"}},
		{"resolved", true, []string{"first", "Titled"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{
				"audio_root": "` + filepath.ToSlash(t.TempDir()) + `",
				"log_file": "",
				"resolve_titles": ` + strconv.FormatBool(tt.resolve) + `,
				"playlist_name": "Mix",
				"playlist": [
					{"resource": "01 - first.mp3"},
					{"resource": "02.mp3", "title": "Titled"}
				]
			}`
			rt, err := New(Options{ConfigPath: writeConfig(t, body), EnvFile: filepath.Join(t.TempDir(), ".env")})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer rt.Close()

			pl, err := rt.Playlist(context.Background())
			if err != nil {
				t.Fatalf("Playlist() error = %v", err)
			}
			if pl.Name != "Mix" {
				t.Errorf("Name = %q, want Mix", pl.Name)
			}
			for i, want := range tt.want {
				if got := pl.At(i).Title; got != want {
					t.Errorf("track %d title = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestRuntime_PlayersAreLazy(t *testing.T) {
	path := writeConfig(t, `{"log_file": ""}`)
	rt, err := New(Options{ConfigPath: path, EnvFile: filepath.Join(t.TempDir(), ".env")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer rt.Close()

	pl, err := rt.Playlist(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	player := rt.NewPlaylistPlayer(pl, nil)
	defer player.Dispose()
	if got := player.State().Volume; got != rt.Settings.Volume {
		t.Errorf("Volume = %v, want %v", got, rt.Settings.Volume)
	}

	single := rt.NewSingleTrackPlayer(nil)
	defer single.Dispose()
	if single.State().Playing {
		t.Error("single-track player should start paused")
	}
}

func TestRuntime_PlayerVolumes(t *testing.T) {
	path := writeConfig(t, `{"log_file": "", "volume": 0.8, "single_track_volume": 0.2}`)
	rt, err := New(Options{ConfigPath: path, EnvFile: filepath.Join(t.TempDir(), ".env")})
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()

	pl, err := rt.Playlist(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	player := rt.NewPlaylistPlayer(pl, nil)
	defer player.Dispose()
	single := rt.NewSingleTrackPlayer(nil)
	defer single.Dispose()

	if got := player.State().Volume; got != 0.8 {
		t.Errorf("playlist Volume = %v, want 0.8", got)
	}
	if got := single.State().Volume; got != 0.2 {
		t.Errorf("single-track Volume = %v, want 0.2", got)
	}
}

func TestRuntime_ServeMetricsDisabled(t *testing.T) {
	path := writeConfig(t, `{"log_file": "", "metrics_addr": ""}`)
	rt, err := New(Options{ConfigPath: path, EnvFile: filepath.Join(t.TempDir(), ".env")})
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()

	// No address configured: nothing starts and nothing blocks.
	rt.ServeMetrics(context.Background())
}
