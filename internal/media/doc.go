// Package media defines the platform media capability used by the players.
//
// A Backend constructs a Handle for one resource. The handle is commanded
// synchronously (Play, Pause, SetCurrentTime, SetVolume, SetLoop) and
// reports progress asynchronously through events:
//
//	h := backend.Open("/audio/a.mp3")
//	unsubscribe := h.Subscribe(func(e media.Event) {
//	    switch e.Type {
//	    case media.EventLoadedMetadata:
//	        d, _ := h.Duration()
//	        fmt.Println("duration", d)
//	    case media.EventEnded:
//	        fmt.Println("done")
//	    }
//	})
//	h.Load()
//	if err := h.Play(ctx); err != nil {
//	    // rejected or failed to load
//	}
//	...
//	unsubscribe()
//	h.Close()
//
// Implementations:
//   - decoder: real playback through beep and the system speaker
//   - mediatest: scriptable in-memory fake for tests
package media
