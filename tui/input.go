package tui

import "time"

// DoubleClickWindow is the longest gap between two clicks on the same cell
// that still counts as a double click
const DoubleClickWindow = 400 * time.Millisecond

// clickTracker synthesizes double clicks, which the terminal does not
// report. A double click fires on the second release, after both presses
// have been delivered, the same order a browser uses.
type clickTracker struct {
	window time.Duration
	last   time.Time
	x, y   int
	armed  bool
}

func newClickTracker(window time.Duration) *clickTracker {
	return &clickTracker{window: window}
}

// Release records a button release at cell x,y and reports whether it
// completes a double click
func (c *clickTracker) Release(now time.Time, x, y int) bool {
	if c.armed && x == c.x && y == c.y && now.Sub(c.last) <= c.window {
		c.armed = false
		return true
	}
	c.armed = true
	c.last = now
	c.x, c.y = x, y
	return false
}

// Reset forgets the pending click
func (c *clickTracker) Reset() {
	c.armed = false
}

// layout places the note grid on screen. A terminal cell covers CellWidth x
// CellHeight grid pixels; pointer positions map to the cell center.
type layout struct {
	top, left  int // screen origin of the grid
	rows, cols int // visible cells
	scrollX    int // first visible column
	scrollY    int // first visible row
	cellW      float64
	cellH      float64
}

// contains reports whether screen cell x,y is inside the grid
func (l layout) contains(x, y int) bool {
	return x >= l.left && x < l.left+l.cols && y >= l.top && y < l.top+l.rows
}

// pixel returns the grid pixel under screen cell x,y. Positions outside the
// grid still map, so a drag can leave it.
func (l layout) pixel(x, y int) (float64, float64) {
	px := (float64(x-l.left+l.scrollX) + 0.5) * l.cellW
	py := (float64(y-l.top+l.scrollY) + 0.5) * l.cellH
	return px, py
}

// cellSpan returns the pixel range [x0, x1) of visible column c
func (l layout) cellSpan(c int) (float64, float64) {
	x0 := float64(l.scrollX+c) * l.cellW
	return x0, x0 + l.cellW
}

// rowCenter returns the pixel y of visible row r's center
func (l layout) rowCenter(r int) float64 {
	return (float64(l.scrollY+r) + 0.5) * l.cellH
}
