package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "list.m3u")

	if err := WriteFile(context.Background(), path, []byte("a.mp3\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := WriteFile(context.Background(), path, []byte("b.mp3\n")); err != nil {
		t.Fatalf("WriteFile() overwrite error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "b.mp3\n" {
		t.Errorf("content = %q, want %q", got, "b.mp3\n")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestWriteFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WriteFile(ctx, filepath.Join(t.TempDir(), "x"), nil); err == nil {
		t.Error("WriteFile() should fail on a cancelled context")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Rock: Part 1/2", "Rock_ Part 1_2"},
		{"Mix...", "Mix"},
		{"Name   with  spaces ", "Name with spaces"},
		{"Christmas", "Christmas"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{"landscape", 1500, 1000, 30, 30, 30, 20},
		{"portrait", 1000, 1500, 30, 30, 20, 30},
		{"square upscale", 4, 4, 16, 16, 16, 16},
		{"wide box", 100, 100, 40, 20, 20, 20},
		{"degenerate", 0, 10, 16, 16, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitSize(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImageService_Thumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	svc := NewImageService()
	thumb, err := svc.Thumbnail(context.Background(), buf.Bytes(), 16, 16)
	if err != nil {
		t.Fatalf("Thumbnail() error = %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("Thumbnail() size = %dx%d, want 16x8", b.Dx(), b.Dy())
	}

	if _, err := svc.Thumbnail(context.Background(), []byte("not an image"), 16, 16); err == nil {
		t.Error("Thumbnail() should fail on invalid data")
	}
}
