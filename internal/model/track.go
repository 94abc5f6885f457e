package model

import (
	"path"
	"path/filepath"
	"strings"
)

// Track represents a single playlist entry.
//
// Track is immutable once constructed and has no identity of its own:
// a track is addressed by its position in the Playlist that holds it.
//
// Example:
//
//	track := Track{Resource: "1. christmas-nice.mp3", Title: "Christmas Nice"}
//	path := ResourcePath("/audio", track) // "/audio/1. christmas-nice.mp3"
type Track struct {
	// Resource is the file name (or root-relative path) of the audio file.
	// Absolute paths and http(s) URLs are used as-is by ResourcePath.
	Resource string `json:"resource"`

	// Title is the display title.
	Title string `json:"title"`
}

// DisplayTitle returns the track title, falling back to the file name stem
// when the title is empty.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return TitleFromResource(t.Resource)
}

// ResourcePath derives the media resource path for a track.
//
// The convention is <root>/<resource>. Roots may be local directories or
// http(s) URLs; for URL roots the file name is joined with "/" and kept
// unescaped so the HTTP client can escape it once.
//
// Example:
//
//	ResourcePath("/audio", Track{Resource: "a.mp3"})                // "/audio/a.mp3"
//	ResourcePath("https://cdn.example.com/audio/", Track{Resource: "a.mp3"}) // "https://cdn.example.com/audio/a.mp3"
func ResourcePath(root string, t Track) string {
	if IsRemote(t.Resource) || filepath.IsAbs(t.Resource) || root == "" {
		return t.Resource
	}
	if IsRemote(root) {
		return strings.TrimRight(root, "/") + "/" + strings.TrimLeft(path.Clean("/"+t.Resource), "/")
	}
	return filepath.Join(root, t.Resource)
}

// IsRemote reports whether a resource is an http(s) URL.
func IsRemote(resource string) bool {
	return strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://")
}

// TitleFromResource derives a readable title from a file name.
//
// The extension is dropped and a leading track number ("01 ", "1. ",
// "02 - ") is stripped:
//
//	TitleFromResource("/music/1. christmas-nice.mp3") // "christmas-nice"
func TitleFromResource(resource string) string {
	name := resource
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))

	trimmed := strings.TrimLeft(name, "0123456789")
	if trimmed != name {
		trimmed = strings.TrimLeft(trimmed, ".-_ ")
		if trimmed != "" {
			name = trimmed
		}
	}
	return strings.TrimSpace(name)
}
