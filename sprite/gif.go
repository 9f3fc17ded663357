package sprite

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/bodgit/smsprite/framemap"
	"golang.org/x/image/draw"
)

const ticksPerSecond = 60

var errNoFrames = errors.New("sprite: no frames")

// delay converts a duration in ticks to hundredths of a second
func delay(ticks uint16) int {
	d := int(ticks) * 100 / ticksPerSecond
	if d < 1 {
		d = 1
	}
	return d
}

// EncodeGIF writes frames to w as a looping animated GIF. Every frame is
// placed on a shared canvas with the origins aligned and enlarged scale
// times.
func EncodeGIF(w io.Writer, frames []*framemap.Frame, p color.Palette, scale int) error {
	if len(frames) == 0 {
		return errNoFrames
	}
	if scale < 1 {
		scale = 1
	}

	r := Union(frames)
	dst := image.Rect(0, 0, r.Dx()*scale, r.Dy()*scale)

	g := &gif.GIF{
		Config: image.Config{
			ColorModel: p,
			Width:      dst.Dx(),
			Height:     dst.Dy(),
		},
	}

	for _, f := range frames {
		canvas := image.NewPaletted(r, p)
		draw.Draw(canvas, r, Image(f, p), r.Min, draw.Src)

		m := image.NewPaletted(dst, p)
		draw.NearestNeighbor.Scale(m, dst, canvas, r, draw.Src, nil)

		g.Image = append(g.Image, m)
		g.Delay = append(g.Delay, delay(f.Duration))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}

	return gif.EncodeAll(w, g)
}
