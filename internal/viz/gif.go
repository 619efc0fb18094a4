package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Recorder collects canvas frames for an animated GIF. Every braille dot
// becomes a Scale x Scale block coloured like its body.
type Recorder struct {
	Scale  int
	Delay  int // hundredths of a second per frame
	frames []*image.Paletted
	theme  Theme
}

func NewRecorder(theme Theme) *Recorder {
	return &Recorder{Scale: 2, Delay: 4, theme: theme}
}

func (r *Recorder) Frames() int { return len(r.frames) }

func (r *Recorder) palette() color.Palette {
	p := color.Palette{color.Black, hexToRGBA(r.theme.Text)}
	for _, c := range r.theme.Palette {
		p = append(p, hexToRGBA(c))
	}
	return p
}

// Capture appends the current canvas contents as a frame.
func (r *Recorder) Capture(c *Canvas) {
	s := max(r.Scale, 1)
	pw, ph := c.PixelWidth(), c.PixelHeight()
	img := image.NewPaletted(image.Rect(0, 0, pw*s, ph*s), r.palette())
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			idx := uint8(1)
			if tag := c.Tag(x, y); tag != NoTag && len(r.theme.Palette) > 0 {
				idx = uint8(2 + tag%len(r.theme.Palette))
			}
			for dy := 0; dy < s; dy++ {
				for dx := 0; dx < s; dx++ {
					img.SetColorIndex(x*s+dx, y*s+dy, idx)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Encode writes the recorded frames as a looping animation.
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func hexToRGBA(c lipgloss.Color) color.RGBA {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}
