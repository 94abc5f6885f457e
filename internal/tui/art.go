package tui

import (
	"context"
	"fmt"
	"image"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/playdeck/internal/audio"
	ioutils "github.com/handiism/playdeck/internal/io"
)

const artSize = 16

// coverLoader turns embedded cover art into terminal blocks.
type coverLoader struct {
	tags   *audio.TagReader
	images *ioutils.ImageService
}

// load returns a command producing a CoverMsg for the track at index.
func (c *coverLoader) load(ctx context.Context, index int, resource string) tea.Cmd {
	if c == nil || c.tags == nil {
		return nil
	}
	return func() tea.Msg {
		tags, err := c.tags.Read(ctx, resource)
		if err != nil || len(tags.Picture) == 0 {
			return CoverMsg{Index: index}
		}
		thumb, err := c.images.Thumbnail(ctx, tags.Picture, artSize, artSize)
		if err != nil {
			return CoverMsg{Index: index}
		}
		return CoverMsg{Index: index, Art: renderArt(thumb)}
	}
}

// renderArt draws img with upper half blocks, two pixel rows per line.
func renderArt(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img, x, y))
			if y+1 < b.Max.Y {
				style = style.Background(hexColor(img, x, y+1))
			}
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(img image.Image, x, y int) lipgloss.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
