package raster

import (
	"image"
	"image/draw"
)

// ToRGBA converts any decoded image into the 4-channel layout the canvas
// upload expects: 8-bit RGBA, rows top to bottom. Devices that want a
// different channel order reorder during upload.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Rect, img, bounds.Min, draw.Src)
	return out
}
