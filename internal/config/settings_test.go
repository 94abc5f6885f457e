package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/playdeck/internal/model"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.AudioRoot != "/audio" {
		t.Errorf("AudioRoot = %q, want /audio", s.AudioRoot)
	}
	if s.Volume != 0.3 {
		t.Errorf("Volume = %v, want 0.3", s.Volume)
	}
	if s.SingleTrackVolume != 0.3 {
		t.Errorf("SingleTrackVolume = %v, want 0.3", s.SingleTrackVolume)
	}
	want := []model.Track{
		{Resource: "1. christmas-nice.mp3", Title: "Christmas Nice"},
		{Resource: "2. christmas-is-coming.mp3", Title: "Christmas Is Coming"},
	}
	if len(s.Playlist) != len(want) {
		t.Fatalf("Playlist has %d entries, want %d", len(s.Playlist), len(want))
	}
	for i := range want {
		if s.Playlist[i] != want[i] {
			t.Errorf("Playlist[%d] = %+v, want %+v", i, s.Playlist[i], want[i])
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.AudioRoot != DefaultSettings().AudioRoot {
		t.Error("Load() of a missing file should return defaults")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")

	s := DefaultSettings()
	s.Volume = 0.75
	s.AudioRoot = "https://cdn.example.com/audio"
	s.Playlist = []model.Track{{Resource: "x.mp3", Title: "X"}}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Volume != 0.75 || got.AudioRoot != s.AudioRoot {
		t.Errorf("Load() = volume %v root %q", got.Volume, got.AudioRoot)
	}
	if len(got.Playlist) != 1 || got.Playlist[0].Title != "X" {
		t.Errorf("Playlist = %+v", got.Playlist)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"volume": 0.9}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Volume != 0.9 {
		t.Errorf("Volume = %v, want 0.9", s.Volume)
	}
	if s.AudioRoot != "/audio" {
		t.Errorf("AudioRoot = %q, want default", s.AudioRoot)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid JSON")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PLAYDECK_AUDIO_ROOT", "/srv/music")
	t.Setenv("PLAYDECK_VOLUME", "0.6")
	t.Setenv("PLAYDECK_SINGLE_TRACK_VOLUME", "0.1")
	t.Setenv("PLAYDECK_RESOLVE_TITLES", "true")

	s := DefaultSettings()
	if err := s.ApplyEnv(""); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if s.AudioRoot != "/srv/music" {
		t.Errorf("AudioRoot = %q", s.AudioRoot)
	}
	if s.Volume != 0.6 {
		t.Errorf("Volume = %v", s.Volume)
	}
	if s.SingleTrackVolume != 0.1 {
		t.Errorf("SingleTrackVolume = %v, want 0.1", s.SingleTrackVolume)
	}
	if !s.ResolveTitles {
		t.Error("ResolveTitles should be true")
	}
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	// Register cleanup for variables the .env file will set.
	for _, key := range []string{"PLAYDECK_SAMPLE_RATE", "PLAYDECK_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("PLAYDECK_LOG_LEVEL", "warn")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "PLAYDECK_SAMPLE_RATE=48000\nPLAYDECK_LOG_LEVEL=debug\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := DefaultSettings()
	if err := s.ApplyEnv(envFile); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if s.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", s.SampleRate)
	}
	if s.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want the environment to win over .env", s.LogLevel)
	}
}

func TestApplyEnv_MissingDotEnv(t *testing.T) {
	s := DefaultSettings()
	if err := s.ApplyEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("ApplyEnv() with a missing .env error = %v", err)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PLAYDECK_VOLUME", "loud"},
		{"PLAYDECK_SINGLE_TRACK_VOLUME", "quiet"},
		{"PLAYDECK_SAMPLE_RATE", "fast"},
		{"PLAYDECK_RESOLVE_TITLES", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := DefaultSettings().ApplyEnv(""); err == nil {
				t.Errorf("ApplyEnv() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestBuildPlaylist(t *testing.T) {
	t.Run("inline entries", func(t *testing.T) {
		pl, err := DefaultSettings().BuildPlaylist(context.Background(), nil)
		if err != nil {
			t.Fatalf("BuildPlaylist() error = %v", err)
		}
		if pl.Len() != 2 || pl.At(1).Title != "Christmas Is Coming" {
			t.Errorf("BuildPlaylist() = %+v", pl.Tracks())
		}
		if pl.Name != "Christmas" {
			t.Errorf("Name = %q", pl.Name)
		}
	})

	t.Run("playlist file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "winter.m3u")
		if err := os.WriteFile(path, []byte("#EXTM3U\n#EXTINF:-1,Snow\nsnow.mp3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		s := DefaultSettings()
		s.PlaylistFile = path

		pl, err := s.BuildPlaylist(context.Background(), nil)
		if err != nil {
			t.Fatalf("BuildPlaylist() error = %v", err)
		}
		if pl.Len() != 1 || pl.At(0) != (model.Track{Resource: "snow.mp3", Title: "Snow"}) {
			t.Errorf("BuildPlaylist() = %+v", pl.Tracks())
		}
		if pl.Name != "winter" {
			t.Errorf("Name = %q, want winter", pl.Name)
		}
	})

	t.Run("empty", func(t *testing.T) {
		s := DefaultSettings()
		s.Playlist = nil
		if _, err := s.BuildPlaylist(context.Background(), nil); err != model.ErrEmptyPlaylist {
			t.Errorf("BuildPlaylist() error = %v, want ErrEmptyPlaylist", err)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		s := DefaultSettings()
		s.PlaylistFile = "list.txt"
		if _, err := s.BuildPlaylist(context.Background(), nil); err == nil {
			t.Error("BuildPlaylist() should reject unknown playlist formats")
		}
	})

	t.Run("remote without fetcher", func(t *testing.T) {
		s := DefaultSettings()
		s.PlaylistFile = "https://cdn.example.com/list.m3u"
		if _, err := s.BuildPlaylist(context.Background(), nil); err == nil {
			t.Error("BuildPlaylist() should fail without a fetcher")
		}
	})
}
