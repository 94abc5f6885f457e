// Package model defines the core data structures used throughout playdeck.
//
// # Track
//
// Track is a playlist entry: a resource identifier plus a display title.
//
//	track := model.Track{Resource: "1. christmas-nice.mp3", Title: "Christmas Nice"}
//	fmt.Println(model.ResourcePath("/audio", track)) // "/audio/1. christmas-nice.mp3"
//
// # Playlist
//
// Playlist is an ordered, non-empty, immutable list of tracks with
// wrap-around cursor arithmetic:
//
//	pl, err := model.NewPlaylist(trackA, trackB)
//	if errors.Is(err, model.ErrEmptyPlaylist) {
//	    // no tracks configured
//	}
//	next := pl.Next(pl.Len() - 1) // 0
package model
