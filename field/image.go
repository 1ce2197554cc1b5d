package field

import (
	"image"
	"image/color"
)

// DyeImage resamples the colour channels of a dye grid into an opaque w×h
// image. Image row 0 is the top of the field. Values are clamped to [0, 1].
func DyeImage(g *Grid, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for py := 0; py < h; py++ {
		v := 1 - (float32(py)+0.5)/float32(h)
		for px := 0; px < w; px++ {
			u := (float32(px) + 0.5) / float32(w)
			s := g.Sample(u, v)
			img.SetRGBA(px, py, color.RGBA{
				R: toByte(s[0]),
				G: toByte(s[1]),
				B: toByte(s[2]),
				A: 255,
			})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
