package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	mtag "github.com/dhowden/tag"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/playdeck/internal/model"
)

// DefaultResolveConcurrency bounds concurrent tag reads in ResolveTitles.
const DefaultResolveConcurrency = 4

// Fetcher downloads remote resources. *http.Client from internal/http
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, onProgress func(read, total int64)) ([]byte, error)
}

// Tags holds the metadata PlayDeck reads from an audio file.
type Tags struct {
	Title  string
	Artist string

	// Picture is the embedded front cover, if any.
	Picture     []byte
	PictureMIME string
}

// TagReader reads embedded metadata from local or remote audio files.
//
// MP3 files are read with id3v2. Other containers (FLAC, OGG, M4A) go
// through dhowden/tag.
//
// Example:
//
//	reader := NewTagReader(httpclient.NewClient())
//	tags, err := reader.Read(ctx, "/audio/1. christmas-nice.mp3")
//	fmt.Println(tags.Title, len(tags.Picture))
type TagReader struct {
	fetcher Fetcher
}

// NewTagReader creates a TagReader. fetcher may be nil, in which case
// remote resources fail with an error.
func NewTagReader(fetcher Fetcher) *TagReader {
	return &TagReader{fetcher: fetcher}
}

// Read returns the tags of resource. A file without tags yields empty Tags
// and no error.
func (r *TagReader) Read(ctx context.Context, resource string) (Tags, error) {
	rs, closer, err := r.open(ctx, resource)
	if err != nil {
		return Tags{}, err
	}
	defer closer.Close()

	if strings.EqualFold(extension(resource), ".mp3") {
		return readID3(rs)
	}
	return readGeneric(rs)
}

func (r *TagReader) open(ctx context.Context, resource string) (io.ReadSeeker, io.Closer, error) {
	if model.IsRemote(resource) {
		if r.fetcher == nil {
			return nil, nil, fmt.Errorf("no fetcher configured for %s", resource)
		}
		data, err := r.fetcher.Fetch(ctx, resource, nil)
		if err != nil {
			return nil, nil, err
		}
		return bytes.NewReader(data), io.NopCloser(nil), nil
	}
	f, err := os.Open(resource)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func readID3(rs io.Reader) (Tags, error) {
	tag, err := id3v2.ParseReader(rs, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, fmt.Errorf("parsing id3: %w", err)
	}
	defer tag.Close()

	tags := Tags{Title: tag.Title(), Artist: tag.Artist()}
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if tags.Picture == nil || pic.PictureType == id3v2.PTFrontCover {
			tags.Picture = pic.Picture
			tags.PictureMIME = pic.MimeType
		}
	}
	return tags, nil
}

func readGeneric(rs io.ReadSeeker) (Tags, error) {
	m, err := mtag.ReadFrom(rs)
	if err == mtag.ErrNoTagsFound {
		return Tags{}, nil
	}
	if err != nil {
		return Tags{}, fmt.Errorf("reading tags: %w", err)
	}

	tags := Tags{Title: m.Title(), Artist: m.Artist()}
	if pic := m.Picture(); pic != nil {
		tags.Picture = pic.Data
		tags.PictureMIME = pic.MIMEType
	}
	return tags, nil
}

// ResolveTitles fills in empty track titles from embedded tags, falling
// back to the file name stem when a file has no usable title or cannot be
// read. Tracks that already have a title are left untouched.
//
// Up to limit files are read concurrently (DefaultResolveConcurrency when
// limit < 1). The only error returned is the context error.
//
// Example:
//
//	tracks, err := ResolveTitles(ctx, reader, "/audio", pl.Tracks(), 0)
func ResolveTitles(ctx context.Context, reader *TagReader, root string, tracks []model.Track, limit int) ([]model.Track, error) {
	if limit < 1 {
		limit = DefaultResolveConcurrency
	}
	out := append([]model.Track(nil), tracks...)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range out {
		if out[i].Title != "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			title := model.TitleFromResource(out[i].Resource)
			if tags, err := reader.Read(ctx, model.ResourcePath(root, out[i])); err == nil && strings.TrimSpace(tags.Title) != "" {
				title = strings.TrimSpace(tags.Title)
			}
			out[i].Title = title
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// extension returns the lowercase extension of a path or URL, ignoring any
// query string.
func extension(resource string) string {
	if i := strings.IndexAny(resource, "?#"); i >= 0 && model.IsRemote(resource) {
		resource = resource[:i]
	}
	return strings.ToLower(filepath.Ext(resource))
}
