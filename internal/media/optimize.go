package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Optimizer fits images into a bounding box and re-encodes them as JPEG.
type Optimizer struct {
	MaxWidth  int `mapstructure:"max_width"`
	MaxHeight int `mapstructure:"max_height"`
	Quality   int `mapstructure:"quality"`
}

// DefaultOptimizer returns the 1200x800, quality 85 optimizer.
func DefaultOptimizer() Optimizer {
	return Optimizer{MaxWidth: 1200, MaxHeight: 800, Quality: 85}
}

// Optimize decodes data, shrinks it to fit, flattens transparency onto white
// and encodes a JPEG. It never enlarges.
func (o Optimizer) Optimize(data []byte) ([]byte, image.Point, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("decode image: %w", err)
	}
	size := fit(src.Bounds().Size(), o.MaxWidth, o.MaxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	quality := o.Quality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, image.Point{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), size, nil
}

// fit scales size down, keeping the aspect ratio, until it is within maxW x maxH.
func fit(size image.Point, maxW, maxH int) image.Point {
	if size.X <= 0 || size.Y <= 0 {
		return image.Point{X: 1, Y: 1}
	}
	w, h := size.X, size.Y
	if maxW > 0 && w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if maxH > 0 && h > maxH {
		w = w * maxH / h
		h = maxH
	}
	return image.Point{X: max(w, 1), Y: max(h, 1)}
}
