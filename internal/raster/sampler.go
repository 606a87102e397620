package raster

import (
	"image"

	"flowpaint/internal/mathutil"
)

// SampleWrap bilinearly samples an NRGBA texture at normalized (u,v) with
// toroidal wrapping. Accesses Pix directly for performance; returns 8-bit
// RGBA.
func SampleWrap(tex *image.NRGBA, u, v float32) (r, g, b, a uint8) {
	return sample(tex, mathutil.Fract(u), mathutil.Fract(v), true)
}

// SampleClamp bilinearly samples at normalized (u,v) with coordinates pinned
// to the edge texels.
func SampleClamp(tex *image.NRGBA, u, v float32) (r, g, b, a uint8) {
	return sample(tex, mathutil.Clamp01(u), mathutil.Clamp01(v), false)
}

func sample(tex *image.NRGBA, u, v float32, wrap bool) (uint8, uint8, uint8, uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w < 1 || h < 1 {
		return 0, 0, 0, 0
	}

	fx := u * float32(w-1)
	fy := v * float32(h-1)
	x0 := int(fx)
	y0 := int(fy)
	var x1, y1 int
	if wrap {
		x1 = (x0 + 1) % w
		y1 = (y0 + 1) % h
	} else {
		x1 = x0 + 1
		if x1 >= w {
			x1 = w - 1
		}
		y1 = y0 + 1
		if y1 >= h {
			y1 = h - 1
		}
	}
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	stride := tex.Stride
	pix := tex.Pix

	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	fr := float32(pix[i00])*w00 + float32(pix[i10])*w10 + float32(pix[i01])*w01 + float32(pix[i11])*w11
	fg := float32(pix[i00+1])*w00 + float32(pix[i10+1])*w10 + float32(pix[i01+1])*w01 + float32(pix[i11+1])*w11
	fb := float32(pix[i00+2])*w00 + float32(pix[i10+2])*w10 + float32(pix[i01+2])*w01 + float32(pix[i11+2])*w11
	fa := float32(pix[i00+3])*w00 + float32(pix[i10+3])*w10 + float32(pix[i01+3])*w01 + float32(pix[i11+3])*w11

	return uint8(fr + 0.5), uint8(fg + 0.5), uint8(fb + 0.5), uint8(fa + 0.5)
}
