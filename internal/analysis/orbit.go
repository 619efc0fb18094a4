package analysis

import (
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// Portrait is the projected track of one body.
type Portrait struct {
	Body   int
	Points []Point
}

// OrbitPortrait projects body's sampled positions onto the x-y plane.
func OrbitPortrait(result *dynamo.Result, body int) *Portrait {
	if len(result.Snapshots) == 0 || body < 0 || body >= result.Snapshots[0].NumBodies() {
		return nil
	}

	xs := result.Column(1 + 3*body)
	ys := result.Column(2 + 3*body)
	portrait := &Portrait{
		Body:   body,
		Points: make([]Point, len(xs)),
	}
	for i := range xs {
		portrait.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return portrait
}

// RelativePortrait is the track of body relative to origin, e.g. a planet
// seen from the sun.
func RelativePortrait(result *dynamo.Result, body, origin int) *Portrait {
	track := OrbitPortrait(result, body)
	ref := OrbitPortrait(result, origin)
	if track == nil || ref == nil {
		return nil
	}
	for i := range track.Points {
		track.Points[i].X -= ref.Points[i].X
		track.Points[i].Y -= ref.Points[i].Y
	}
	return track
}

// PortraitToASCII draws the track on a width × height character grid
// with 10% padding and the axes where they are visible.
func PortraitToASCII(portrait *Portrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	cell := func(p Point) (int, int) {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		return row, col
	}
	last := len(portrait.Points) - 1
	for i, p := range portrait.Points {
		row, col := cell(p)
		if row < 0 || row >= height || col < 0 || col >= width {
			continue
		}
		switch i {
		case 0:
			canvas[row][col] = 'o'
		case last:
			canvas[row][col] = '@'
		default:
			if canvas[row][col] == ' ' {
				canvas[row][col] = '•'
			}
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
