package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	"golang.org/x/image/draw"
)

// ImageService scales cover art for display.
//
// Example:
//
//	svc := NewImageService()
//	thumb, err := svc.Thumbnail(ctx, tags.Picture, 16, 16)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Thumbnail decodes data and scales it to fit within maxWidth x maxHeight,
// preserving the aspect ratio. Images are scaled up as well as down so the
// result always touches one of the bounds.
//
// The Catmull-Rom kernel is used for scaling.
func (s *ImageService) Thumbnail(ctx context.Context, data []byte, maxWidth, maxHeight int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := FitSize(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, nil
}

// FitSize returns the largest width and height with the aspect ratio of
// w x h that fit in maxWidth x maxHeight. Both results are at least 1.
//
//	FitSize(1500, 1000, 30, 30) // 30, 20
func FitSize(w, h, maxWidth, maxHeight int) (int, int) {
	if w <= 0 || h <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return 1, 1
	}
	ratio := float64(w) / float64(h)
	var width, height int
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		height = maxHeight
		width = int(float64(maxHeight) * ratio)
	} else {
		width = maxWidth
		height = int(float64(maxWidth) / ratio)
	}
	return max(width, 1), max(height, 1)
}
