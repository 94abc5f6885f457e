// Package ioutils provides file and image helpers.
//
// # File Operations
//
//	// Write a file without exposing partial content
//	err := ioutils.WriteFile(ctx, "/music/christmas.m3u", data)
//
//	// Make a playlist name safe to use as a file name
//	name := ioutils.SanitizeFileName("Rock: Part 1/2") // "Rock_ Part 1_2"
//
// # Image Processing
//
// ImageService scales embedded cover art down to terminal-sized
// thumbnails:
//
//	svc := ioutils.NewImageService()
//	thumb, err := svc.Thumbnail(ctx, picture, 16, 16)
package ioutils
