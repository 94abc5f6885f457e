// Package http provides the HTTP client used for remote resources.
//
// Audio files, playlist files and cover art can live behind an http(s) URL.
// The Client fetches them with a fixed User-Agent and a request timeout:
//
//	client := http.NewClient(http.WithTimeout(30 * time.Second))
//	data, err := client.Fetch(ctx, url, func(read, total int64) {
//	    log.Printf("%d/%d", read, total)
//	})
//
// # Progress Tracking
//
// ProgressWriter wraps any io.Writer and reports the running byte count:
//
//	pw := &http.ProgressWriter{Writer: file, Total: size, OnUpdate: update}
//	io.Copy(pw, body)
package http
