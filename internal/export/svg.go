package export

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/viz"
)

// Palette colours orbit i with Palette[i%len(Palette)].
var Palette = []string{"#ffd700", "#00ccff", "#ff00ff", "#00ff88", "#ff8800", "#8888ff", "#ff4444", "#ffffff"}

// CanvasToSVG converts a braille canvas to SVG, one circle per dot,
// coloured by the body that drew it.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelWidth(), canvas.PixelHeight()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fill := "#00ff00"
			if tag := canvas.Tag(x, y); tag != viz.NoTag {
				fill = Palette[tag%len(Palette)]
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius, fill)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// bounds is a square x-y window shared by every orbit of a plot so that
// distances keep their aspect ratio.
type bounds struct {
	minX, minY, size float64
}

func fitBounds(tracks []*analysis.Portrait) (bounds, bool) {
	first := true
	var minX, maxX, minY, maxY float64
	for _, tr := range tracks {
		if tr == nil {
			continue
		}
		for _, p := range tr.Points {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	if first {
		return bounds{}, false
	}

	size := max(maxX-minX, maxY-minY)
	if size == 0 {
		size = 1
	}
	size *= 1.2
	return bounds{
		minX: (minX+maxX)/2 - size/2,
		minY: (minY+maxY)/2 - size/2,
		size: size,
	}, true
}

func (b bounds) project(p analysis.Point, width, height int) (float64, float64) {
	side := float64(min(width, height))
	ox := (float64(width) - side) / 2
	oy := (float64(height) - side) / 2
	x := ox + (p.X-b.minX)/b.size*side
	y := oy + side - (p.Y-b.minY)/b.size*side
	return x, y
}

func writePath(sb *strings.Builder, tr *analysis.Portrait, b bounds, width, height int, stroke string) {
	sb.WriteString(`<path fill="none" stroke="` + stroke + `" stroke-width="1.5" d="M`)
	for i, p := range tr.Points {
		x, y := b.project(p, width, height)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TrajectoryToSVG draws a single orbit.
func TrajectoryToSVG(track *analysis.Portrait, width, height int, strokeColor string) string {
	if track == nil || len(track.Points) < 2 {
		return ""
	}
	b, _ := fitBounds([]*analysis.Portrait{track})

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
	writePath(&sb, track, b, width, height, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

// OrbitsToSVG draws the x-y track of every body of a run on shared,
// equal-aspect axes with a legend. A filled circle marks each body's
// final sampled position.
func OrbitsToSVG(result *dynamo.Result, names []string, width, height int) (string, error) {
	if result == nil || len(result.Snapshots) < 2 {
		return "", fmt.Errorf("need at least two samples to draw orbits")
	}
	n := result.Snapshots[0].NumBodies()
	tracks := make([]*analysis.Portrait, n)
	for i := range tracks {
		tracks[i] = analysis.OrbitPortrait(result, i)
	}
	b, _ := fitBounds(tracks)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, tr := range tracks {
		color := Palette[i%len(Palette)]
		writePath(&sb, tr, b, width, height, color)
		x, y := b.project(tr.Points[len(tr.Points)-1], width, height)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, x, y, color)
	}

	sb.WriteString(`<g font-family="monospace" font-size="11">` + "\n")
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("body%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		y := 16 + 14*i
		fmt.Fprintf(&sb, `<rect x="8" y="%d" width="8" height="8" fill="%s"/><text x="20" y="%d" fill="#cccccc">%s</text>
`, y-8, Palette[i%len(Palette)], y, html.EscapeString(name))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

// WriteOrbitsSVG renders OrbitsToSVG into w.
func WriteOrbitsSVG(w io.Writer, result *dynamo.Result, names []string, width, height int) error {
	svg, err := OrbitsToSVG(result, names, width, height)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, svg)
	return err
}
