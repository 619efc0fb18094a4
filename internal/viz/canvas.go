package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cell bits, 2 columns by 4 rows:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// NoTag marks a cell that no body has drawn into.
const NoTag = -1

// Canvas is a character grid addressed in sub-pixels: each cell holds a
// 2x4 braille dot pattern, so the drawable area is (Width*2) x (Height*4).
// Tags records which body last drew into each cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Tags          [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Tags:   make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Tags[i] = make([]int, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) PixelWidth() int  { return c.Width * 2 }
func (c *Canvas) PixelHeight() int { return c.Height * 4 }

// Set turns on the dot at sub-pixel (x, y). Points outside are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Mark sets the dot at (x, y) and tags its cell with tag.
func (c *Canvas) Mark(x, y, tag int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.Set(x, y)
	c.Tags[y/4][x/2] = tag
}

// Tag returns the tag of the cell holding sub-pixel (x, y).
func (c *Canvas) Tag(x, y int) int {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return NoTag
	}
	return c.Tags[y/4][x/2]
}

// IsSet reports whether the dot at sub-pixel (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.Tags[i][j] = NoTag
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// MarkLine is DrawLine with every dot tagged.
func (c *Canvas) MarkLine(x0, y0, x1, y1, tag int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Mark(x0, y0, tag)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillDisc marks every dot within r sub-pixels of (cx, cy).
func (c *Canvas) FillDisc(cx, cy, r, tag int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Mark(cx+dx, cy+dy, tag)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render is String with each run of equally tagged cells coloured by style.
func (c *Canvas) Render(style func(tag int) lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Tags[i][j] == c.Tags[i][start] {
				continue
			}
			run := string(row[start:j])
			if tag := c.Tags[i][start]; tag != NoTag {
				run = style(tag).Render(run)
			}
			b.WriteString(run)
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
