// Package playback implements the playback state machines.
//
// # SingleTrackPlayer
//
// Loops one resource with a single toggle:
//
//	player := playback.NewSingleTrackPlayer(backend, "/audio/theme.mp3",
//	    playback.WithNotifier(notifier))
//	player.TogglePlay(ctx)
//
// # PlaylistPlayer
//
// Keeps a cursor into a fixed playlist, owns exactly one media handle for
// the current track and advances automatically at the end of each track:
//
//	player := playback.NewPlaylistPlayer(backend, playlist,
//	    playback.WithAudioRoot("/audio"),
//	    playback.WithLogger(logger))
//	defer player.Dispose()
//
//	player.Play(ctx)
//	player.Seek(30)
//	player.SetVolume(0.5)
//	player.PlayNext(ctx)
//
// # State and Notifications
//
// Both players expose State() snapshots and a Subscribe method. Subscribers
// receive a Change after every mutation, outside the player lock, so they
// may call back into the player:
//
//	unsubscribe := player.Subscribe(func(c playback.Change) {
//	    fmt.Println(c.Reason, c.State.Track.Title, c.State.CurrentTime)
//	})
//	defer unsubscribe()
//
// # Errors
//
// Operations never return errors. Load failures and rejected playback are
// recorded in State.Error. A confirmed play clears it, and PlaylistPlayer
// also clears it once a newly opened handle finishes loading.
// SingleTrackPlayer additionally calls its Notifier when playback is
// rejected.
package playback
