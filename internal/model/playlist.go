package model

import "errors"

// ErrEmptyPlaylist is returned when a playlist is built without tracks.
var ErrEmptyPlaylist = errors.New("playlist must contain at least one track")

// Playlist is an ordered, non-empty and fixed sequence of tracks.
//
// A Playlist cannot be edited after construction. Index arithmetic used by
// the players wraps around in both directions:
//
//	pl, _ := NewPlaylist(a, b)
//	pl.Next(1)     // 0
//	pl.Previous(0) // 1
type Playlist struct {
	// Name is an optional display name (the playlist file name, for example).
	Name string

	tracks []Track
}

// NewPlaylist creates a playlist from the given tracks.
//
// Returns ErrEmptyPlaylist when no tracks are given. The slice is copied.
func NewPlaylist(tracks ...Track) (*Playlist, error) {
	if len(tracks) == 0 {
		return nil, ErrEmptyPlaylist
	}
	return &Playlist{tracks: append([]Track(nil), tracks...)}, nil
}

// Len returns the number of tracks. Always at least 1.
func (p *Playlist) Len() int { return len(p.tracks) }

// At returns the track at position i. Out-of-range positions are wrapped
// into range.
func (p *Playlist) At(i int) Track { return p.tracks[p.wrap(i)] }

// Tracks returns a copy of the tracks.
func (p *Playlist) Tracks() []Track { return append([]Track(nil), p.tracks...) }

// Next returns the index following i, wrapping to 0 after the last track.
func (p *Playlist) Next(i int) int { return p.wrap(i + 1) }

// Previous returns the index preceding i, wrapping to the last track
// before the first one.
func (p *Playlist) Previous(i int) int { return p.wrap(i - 1) }

func (p *Playlist) wrap(i int) int {
	n := len(p.tracks)
	return ((i % n) + n) % n
}
