package render

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// blurSigma converts a canvas-style shadow blur length to a Gaussian sigma.
func blurSigma(blurPx float64) float64 {
	if blurPx <= 0 {
		return 0
	}
	return blurPx / 2
}

// blurRadius is the bild/blur.Gaussian radius giving the requested sigma.
// bild weights taps by exp(-x²/(4r)), so its sigma is sqrt(2r).
func blurRadius(sigma float64) float64 {
	return sigma * sigma / 2
}

// castShadow builds the shadow of the pixels in src: their alpha coverage
// tinted with the shadow color, then blurred. It returns the shadow image
// and where its origin sits in src coordinates, or nil when src is empty.
func castShadow(src *image.RGBA, sh Shadow) (*image.RGBA, image.Point) {
	box := opaqueBounds(src)
	if box.Empty() {
		return nil, image.Point{}
	}
	sigma := blurSigma(sh.Blur)
	pad := int(math.Ceil(3 * sigma))
	box = box.Inset(-pad).Intersect(src.Bounds())

	tint := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	c := sh.Color
	for y := box.Min.Y; y < box.Max.Y; y++ {
		row := src.Pix[src.PixOffset(box.Min.X, y):]
		out := tint.Pix[tint.PixOffset(0, y-box.Min.Y):]
		for x := 0; x < box.Dx(); x++ {
			a := uint32(row[x*4+3]) * uint32(c.A) / 255
			if a == 0 {
				continue
			}
			// premultiplied
			out[x*4+0] = uint8(uint32(c.R) * a / 255)
			out[x*4+1] = uint8(uint32(c.G) * a / 255)
			out[x*4+2] = uint8(uint32(c.B) * a / 255)
			out[x*4+3] = uint8(a)
		}
	}

	if sigma > 0 {
		tint = blur.Gaussian(tint, blurRadius(sigma))
	}
	return tint, box.Min
}

// opaqueBounds returns the smallest rectangle holding every pixel of img
// with non-zero alpha.
func opaqueBounds(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			px := b.Min.X + x
			minX = min(minX, px)
			maxX = max(maxX, px)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
