package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"

	"github.com/handiism/playdeck/internal/model"
)

type fakeFetcher map[string][]byte

func (f fakeFetcher) Fetch(_ context.Context, url string, _ func(read, total int64)) ([]byte, error) {
	data, ok := f[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func taggedMP3(t *testing.T, title string, cover []byte) []byte {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	tag.SetVersion(4)
	tag.SetTitle(title)
	tag.SetArtist("Test Artist")
	if cover != nil {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/png",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     cover,
		})
	}
	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("writing tag: %v", err)
	}
	buf.Write(make([]byte, 64))
	return buf.Bytes()
}

func TestTagReader_ReadMP3(t *testing.T) {
	dir := t.TempDir()
	cover := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	path := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(path, taggedMP3(t, "Tagged Title", cover), 0o644); err != nil {
		t.Fatal(err)
	}

	tags, err := NewTagReader(nil).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tags.Title != "Tagged Title" {
		t.Errorf("Title = %q, want %q", tags.Title, "Tagged Title")
	}
	if tags.Artist != "Test Artist" {
		t.Errorf("Artist = %q, want %q", tags.Artist, "Test Artist")
	}
	if !bytes.Equal(tags.Picture, cover) || tags.PictureMIME != "image/png" {
		t.Errorf("Picture = %v (%s), want %v", tags.Picture, tags.PictureMIME, cover)
	}
}

func TestTagReader_Remote(t *testing.T) {
	const url = "https://cdn.example.com/audio/song.mp3?sig=1"
	reader := NewTagReader(fakeFetcher{url: taggedMP3(t, "Remote Title", nil)})

	tags, err := reader.Read(context.Background(), url)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tags.Title != "Remote Title" {
		t.Errorf("Title = %q, want %q", tags.Title, "Remote Title")
	}

	if _, err := NewTagReader(nil).Read(context.Background(), url); err == nil {
		t.Error("Read() without fetcher should fail for remote resources")
	}
}

func TestResolveTitles(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("01 tagged.mp3", taggedMP3(t, "From Tag", nil))
	write("02 untagged.mp3", make([]byte, 128))
	write("03 other.flac", []byte("not really a flac file"))

	tracks := []model.Track{
		{Resource: "01 tagged.mp3"},
		{Resource: "02 untagged.mp3"},
		{Resource: "03 other.flac"},
		{Resource: "04 missing.mp3"},
		{Resource: "01 tagged.mp3", Title: "Explicit"},
	}

	got, err := ResolveTitles(context.Background(), NewTagReader(nil), dir, tracks, 2)
	if err != nil {
		t.Fatalf("ResolveTitles() error = %v", err)
	}

	want := []string{"From Tag", "untagged", "other", "missing", "Explicit"}
	for i, w := range want {
		if got[i].Title != w {
			t.Errorf("track %d title = %q, want %q", i, got[i].Title, w)
		}
		if got[i].Resource != tracks[i].Resource {
			t.Errorf("track %d resource changed to %q", i, got[i].Resource)
		}
	}
	if tracks[0].Title != "" {
		t.Error("ResolveTitles() should not modify its input")
	}
}

func TestResolveTitles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ResolveTitles(ctx, NewTagReader(nil), t.TempDir(), []model.Track{{Resource: "a.mp3"}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ResolveTitles() error = %v, want context.Canceled", err)
	}
}
