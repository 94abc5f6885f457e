// Package audio reads and writes playlist files and reads embedded tags.
//
// # Playlist Files
//
// M3U (plain and extended) and PLS files parse into tracks:
//
//	tracks, err := audio.ParsePlaylist(f, audio.FormatM3U)
//	pl, err := model.NewPlaylist(tracks...)
//
// Any playlist can be exported as M3U, PLS, WPL or ZPL:
//
//	content := audio.NewPlaylistCreator(audio.FormatPLS, false).CreatePlaylist(pl)
//
// # Tags
//
// TagReader returns the title, artist and front cover of an audio file.
// ResolveTitles uses it to name untitled tracks, reading several files
// concurrently:
//
//	reader := audio.NewTagReader(client)
//	tracks, err := audio.ResolveTitles(ctx, reader, "/audio", pl.Tracks(), 0)
package audio
