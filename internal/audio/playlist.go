package audio

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/handiism/playdeck/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// M3U and PLS can be read and written. WPL and ZPL are export-only.
type PlaylistFormat int

const (
	// FormatM3U is the plain or extended (#EXTM3U) M3U text format.
	FormatM3U PlaylistFormat = iota

	// FormatPLS is the INI-style Winamp/SHOUTcast format.
	FormatPLS

	// FormatWPL is the Windows Media Player SMIL format.
	FormatWPL

	// FormatZPL is the Zune SMIL format.
	FormatZPL
)

func (f PlaylistFormat) String() string {
	switch f {
	case FormatM3U:
		return "m3u"
	case FormatPLS:
		return "pls"
	case FormatWPL:
		return "wpl"
	case FormatZPL:
		return "zpl"
	default:
		return fmt.Sprintf("PlaylistFormat(%d)", int(f))
	}
}

// ParseFormat maps a format name ("m3u", "M3U8", "pls", ...) to a
// PlaylistFormat.
func ParseFormat(name string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "m3u", "m3u8":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	}
	return 0, fmt.Errorf("unknown playlist format %q", name)
}

// FormatFromExtension picks the format from a file name extension.
func FormatFromExtension(path string) (PlaylistFormat, error) {
	return ParseFormat(filepath.Ext(path))
}

// ParsePlaylist reads M3U or PLS content into tracks.
//
// Entries keep their path exactly as written so relative entries resolve
// against the audio root. Titles come from #EXTINF (M3U) or TitleN (PLS)
// and are left empty when absent.
//
// Example:
//
//	f, _ := os.Open("/audio/christmas.m3u")
//	tracks, err := ParsePlaylist(f, FormatM3U)
//	pl, err := model.NewPlaylist(tracks...)
func ParsePlaylist(r io.Reader, format PlaylistFormat) ([]model.Track, error) {
	switch format {
	case FormatM3U:
		return parseM3U(r)
	case FormatPLS:
		return parsePLS(r)
	default:
		return nil, fmt.Errorf("parsing %s playlists is not supported", format)
	}
}

func parseM3U(r io.Reader) ([]model.Track, error) {
	var (
		tracks  []model.Track
		pending string
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXTINF:"):
			// #EXTINF:<seconds>,<title>
			if _, title, ok := strings.Cut(line, ","); ok {
				pending = strings.TrimSpace(title)
			}
		case strings.HasPrefix(line, "#"):
		default:
			tracks = append(tracks, model.Track{Resource: line, Title: pending})
			pending = ""
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading m3u: %w", err)
	}
	return tracks, nil
}

func parsePLS(r io.Reader) ([]model.Track, error) {
	entries := make(map[int]*model.Track)
	entry := func(n int) *model.Track {
		if e, ok := entries[n]; ok {
			return e
		}
		e := &model.Track{}
		entries[n] = e
		return e
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch {
		case strings.HasPrefix(key, "file"):
			if n, err := strconv.Atoi(key[len("file"):]); err == nil {
				entry(n).Resource = value
			}
		case strings.HasPrefix(key, "title"):
			if n, err := strconv.Atoi(key[len("title"):]); err == nil {
				entry(n).Title = value
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading pls: %w", err)
	}

	keys := make([]int, 0, len(entries))
	for n := range entries {
		keys = append(keys, n)
	}
	slices.Sort(keys)

	tracks := make([]model.Track, 0, len(keys))
	for _, n := range keys {
		if entries[n].Resource == "" {
			continue
		}
		tracks = append(tracks, *entries[n])
	}
	return tracks, nil
}

// PlaylistCreator renders a model.Playlist in one of the export formats.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(pl)
//	// #EXTM3U
//	// #EXTINF:-1,Christmas Nice
//	// 1. christmas-nice.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // M3U only: write #EXTM3U and #EXTINF lines
}

// NewPlaylistCreator creates a PlaylistCreator. extended is ignored for
// formats other than M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist renders pl. Entries are written as stored in the playlist.
func (p *PlaylistCreator) CreatePlaylist(pl *model.Playlist) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(pl)
	case FormatWPL:
		return p.createWPL(pl)
	case FormatZPL:
		return p.createZPL(pl)
	default:
		return p.createM3U(pl)
	}
}

func (p *PlaylistCreator) createM3U(pl *model.Playlist) string {
	var sb strings.Builder
	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, track := range pl.Tracks() {
		if p.extended {
			// Duration is unknown until a track is loaded.
			fmt.Fprintf(&sb, "#EXTINF:-1,%s\n", track.DisplayTitle())
		}
		sb.WriteString(track.Resource + "\n")
	}
	return sb.String()
}

func (p *PlaylistCreator) createPLS(pl *model.Playlist) string {
	var sb strings.Builder
	sb.WriteString("[playlist]\n")
	for i, track := range pl.Tracks() {
		n := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", n, track.Resource)
		fmt.Fprintf(&sb, "Title%d=%s\n", n, track.DisplayTitle())
		fmt.Fprintf(&sb, "Length%d=-1\n", n)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", pl.Len())
	sb.WriteString("Version=2\n")
	return sb.String()
}

func (p *PlaylistCreator) createWPL(pl *model.Playlist) string {
	var sb strings.Builder
	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(playlistName(pl)))
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, track := range pl.Tracks() {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(track.Resource))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
	return sb.String()
}

func (p *PlaylistCreator) createZPL(pl *model.Playlist) string {
	var sb strings.Builder
	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(playlistName(pl)))
	sb.WriteString("    <meta name=\"Generator\" content=\"PlayDeck\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", pl.Len())
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, track := range pl.Tracks() {
		fmt.Fprintf(&sb, "      <media src=\"%s\" trackTitle=\"%s\"/>\n",
			escapeXML(track.Resource), escapeXML(track.DisplayTitle()))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
	return sb.String()
}

func playlistName(pl *model.Playlist) string {
	if pl.Name != "" {
		return pl.Name
	}
	return "Playlist"
}

// escapeXML escapes & < > " and ' for attribute and text content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
