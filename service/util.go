package service

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// prepare image for model input: 320x320, scaled by the brightest channel
// value, ImageNet-normalized, CHW
func Preprocess(img image.Image) []float32 {
	resized := imaging.Resize(img, U2NetSize, U2NetSize, imaging.Lanczos)

	var maxV uint8
	for i := 0; i < len(resized.Pix); i += 4 {
		maxV = max(maxV, resized.Pix[i], resized.Pix[i+1], resized.Pix[i+2])
	}
	scale := math.Max(float64(maxV)/255.0, 1e-6)

	plane := U2NetSize * U2NetSize
	out := make([]float32, 3*plane)
	for y := range U2NetSize {
		row := y * resized.Stride
		for x := range U2NetSize {
			p := row + x*4
			idx := y*U2NetSize + x
			for c := range 3 {
				v := float32(float64(resized.Pix[p+c]) / 255.0 / scale)
				out[c*plane+idx] = (v - ImageNetMean[c]) / ImageNetStd[c]
			}
		}
	}
	return out
}

// MaskFromPrediction min-max normalizes a size*size saliency map into an
// 8-bit mask. A flat prediction is taken as-is, clamped to [0, 1].
func MaskFromPrediction(pred []float32, size int) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, size, size))
	n := min(len(pred), size*size)
	if n == 0 {
		return mask
	}

	lo, hi := pred[0], pred[0]
	for _, v := range pred[:n] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	span := hi - lo
	for i, v := range pred[:n] {
		var f float32
		if span > 1e-6 {
			f = (v - lo) / span
		} else {
			f = min(max(v, 0), 1)
		}
		mask.Pix[(i/size)*mask.Stride+i%size] = uint8(f*255 + 0.5)
	}
	return mask
}

// ApplyMask returns img with mask as its alpha channel. Colour is kept; the
// original alpha is scaled by the mask. The mask is resized to img when their
// sizes differ.
func ApplyMask(img image.Image, mask *image.Gray) *image.NRGBA {
	src := ToNRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	alpha := mask
	if mask.Bounds().Dx() != w || mask.Bounds().Dy() != h {
		alpha = toGray(imaging.Resize(mask, w, h, imaging.Lanczos))
	}
	ab := alpha.Bounds()

	out := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		srow := y * src.Stride
		orow := y * out.Stride
		for x := 0; x < w; x++ {
			s := srow + x*4
			o := orow + x*4
			m := uint16(alpha.GrayAt(ab.Min.X+x, ab.Min.Y+y).Y)
			out.Pix[o] = src.Pix[s]
			out.Pix[o+1] = src.Pix[s+1]
			out.Pix[o+2] = src.Pix[s+2]
			out.Pix[o+3] = uint8((uint16(src.Pix[s+3])*m + 127) / 255)
		}
	}
	return out
}

func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
