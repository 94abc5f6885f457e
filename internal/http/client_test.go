package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Fetch(t *testing.T) {
	payload := strings.Repeat("x", 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			http.Error(w, "bad agent", http.StatusBadRequest)
			return
		}
		if r.URL.Path == "/missing.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := NewClient(WithUserAgent("test-agent"))
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		var last int64
		data, err := client.Fetch(ctx, srv.URL+"/song.mp3", func(read, total int64) { last = read })
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(data) != payload {
			t.Errorf("Fetch() returned %d bytes, want %d", len(data), len(payload))
		}
		if last != int64(len(payload)) {
			t.Errorf("last progress = %d, want %d", last, len(payload))
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := client.Get(ctx, srv.URL+"/missing.mp3"); err == nil {
			t.Error("Get() should fail on 404")
		}
	})
}

func TestProgressWriter(t *testing.T) {
	var buf bytes.Buffer
	var calls int
	pw := &ProgressWriter{Writer: &buf, Total: 10, OnUpdate: func(written, total int64) { calls++ }}

	pw.Write([]byte("hello"))
	pw.Write([]byte("world"))

	if pw.Written != 10 {
		t.Errorf("Written = %d, want 10", pw.Written)
	}
	if calls != 2 {
		t.Errorf("OnUpdate calls = %d, want 2", calls)
	}
	if buf.String() != "helloworld" {
		t.Errorf("buffer = %q", buf.String())
	}
}
