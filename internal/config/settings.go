package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/handiism/playdeck/internal/audio"
	ioutils "github.com/handiism/playdeck/internal/io"
	"github.com/handiism/playdeck/internal/model"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLAYDECK_"

// Settings holds all configuration options.
type Settings struct {
	// Library
	AudioRoot    string        `json:"audio_root"`
	Playlist     []model.Track `json:"playlist"`
	PlaylistFile string        `json:"playlist_file"` // m3u or pls, overrides Playlist
	PlaylistName string        `json:"playlist_name"`

	// Playback
	Volume            float64 `json:"volume"`
	SingleTrack       string  `json:"single_track"`
	SingleTrackVolume float64 `json:"single_track_volume"`
	ResolveTitles     bool    `json:"resolve_titles"`
	SampleRate        int     `json:"sample_rate"`

	// Logging
	LogLevel      string `json:"log_level"` // debug, info, warn, error
	LogFile       string `json:"log_file"`
	LogMaxSizeMB  int    `json:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age_days"`
	LogCompress   bool   `json:"log_compress"`

	// Metrics
	MetricsAddr string `json:"metrics_addr"` // empty disables the endpoint

	// Export
	ExportFormat string `json:"export_format"` // m3u, pls, wpl, zpl
	M3UExtended  bool   `json:"m3u_extended"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		AudioRoot: "/audio",
		Playlist: []model.Track{
			{Resource: "1. christmas-nice.mp3", Title: "Christmas Nice"},
			{Resource: "2. christmas-is-coming.mp3", Title: "Christmas Is Coming"},
		},
		PlaylistName: "Christmas",

		Volume:            0.3,
		SingleTrack:       "/audio/background.mp3",
		SingleTrackVolume: 0.3,
		SampleRate:        44100,

		LogLevel:      "info",
		LogFile:       filepath.Join(homeDir, ".playdeck", "playdeck.log"),
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
		LogMaxAgeDays: 28,

		ExportFormat: "m3u",
		M3UExtended:  true,
	}
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".playdeck", "settings.json")
}

// Load reads settings from a JSON file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return ioutils.WriteFile(context.Background(), path, data)
}

// ApplyEnv loads envFile (if it exists) into the environment and applies
// PLAYDECK_* overrides. Variables already set in the environment win over
// the file. Malformed numbers and booleans are reported as errors.
//
// Recognised variables: PLAYDECK_AUDIO_ROOT, PLAYDECK_PLAYLIST_FILE,
// PLAYDECK_VOLUME, PLAYDECK_SINGLE_TRACK, PLAYDECK_SINGLE_TRACK_VOLUME,
// PLAYDECK_RESOLVE_TITLES, PLAYDECK_SAMPLE_RATE, PLAYDECK_LOG_LEVEL, PLAYDECK_LOG_FILE,
// PLAYDECK_METRICS_ADDR.
func (s *Settings) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	setString(&s.AudioRoot, "AUDIO_ROOT")
	setString(&s.PlaylistFile, "PLAYLIST_FILE")
	setString(&s.SingleTrack, "SINGLE_TRACK")
	setString(&s.LogLevel, "LOG_LEVEL")
	setString(&s.LogFile, "LOG_FILE")
	setString(&s.MetricsAddr, "METRICS_ADDR")

	if v, ok := lookupEnv("VOLUME"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sVOLUME: %w", EnvPrefix, err)
		}
		s.Volume = f
	}
	if v, ok := lookupEnv("SINGLE_TRACK_VOLUME"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sSINGLE_TRACK_VOLUME: %w", EnvPrefix, err)
		}
		s.SingleTrackVolume = f
	}
	if v, ok := lookupEnv("SAMPLE_RATE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSAMPLE_RATE: %w", EnvPrefix, err)
		}
		s.SampleRate = n
	}
	if v, ok := lookupEnv("RESOLVE_TITLES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sRESOLVE_TITLES: %w", EnvPrefix, err)
		}
		s.ResolveTitles = b
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	return strings.TrimSpace(v), ok
}

func setString(dst *string, key string) {
	if v, ok := lookupEnv(key); ok {
		*dst = v
	}
}

// BuildPlaylist returns the configured playlist. When PlaylistFile is set
// it is parsed (fetching it first if it is a URL); otherwise the Playlist
// entries are used. fetcher may be nil for local files.
func (s *Settings) BuildPlaylist(ctx context.Context, fetcher audio.Fetcher) (*model.Playlist, error) {
	tracks := s.Playlist
	name := s.PlaylistName

	if s.PlaylistFile != "" {
		format, err := audio.FormatFromExtension(s.PlaylistFile)
		if err != nil {
			return nil, err
		}
		r, err := openPlaylistFile(ctx, s.PlaylistFile, fetcher)
		if err != nil {
			return nil, err
		}
		defer r.Close()

		tracks, err = audio.ParsePlaylist(r, format)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.PlaylistFile, err)
		}
		name = model.TitleFromResource(s.PlaylistFile)
	}

	pl, err := model.NewPlaylist(tracks...)
	if err != nil {
		return nil, err
	}
	pl.Name = name
	return pl, nil
}

func openPlaylistFile(ctx context.Context, location string, fetcher audio.Fetcher) (io.ReadCloser, error) {
	if !model.IsRemote(location) {
		return os.Open(location)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured for %s", location)
	}
	data, err := fetcher.Fetch(ctx, location, nil)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
