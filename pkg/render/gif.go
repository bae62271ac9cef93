package render

import (
	"bytes"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// DefaultFPS is the animation frame rate.
const DefaultFPS = 5

// MaxFPS is the fastest frame rate a GIF can show. Frame delays are in
// hundredths of a second and viewers slow down delays below two.
const MaxFPS = 50

// GIF assembles frames into a looping animated GIF shown at fps frames per
// second, capped at [MaxFPS]. Frames are dithered onto the Plan 9 palette.
func GIF(frames []image.Image, fps int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no frames to animate")
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	delay := 100 / min(fps, MaxFPS)

	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		b := f.Bounds()
		p := image.NewPaletted(b, palette.Plan9)
		draw.FloydSteinberg.Draw(p, b, f, b.Min)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode gif")
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes PNG data.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode png")
	}
	return img, nil
}

// ReadPNG reads and decodes a PNG file.
func ReadPNG(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutputWrite, err, "read frame %s", path)
	}
	return DecodePNG(data)
}
