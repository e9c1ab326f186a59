package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/native"
)

func summarizeDisplay(d ipc.DisplayInfo) string {
	modes := "no modes"
	switch len(d.Modes) {
	case 0:
	case 1:
		modes = "1 mode"
	default:
		modes = fmt.Sprintf("%d modes", len(d.Modes))
	}
	return fmt.Sprintf("%d×%d at %d,%d • %s", d.Width, d.Height, d.X, d.Y, modes)
}

func displayRect(d ipc.DisplayInfo) native.Rect {
	return native.Rect{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height}
}

// desktopBounds returns the smallest rect containing every display.
func desktopBounds(displays []ipc.DisplayInfo) native.Rect {
	if len(displays) == 0 {
		return native.Rect{}
	}
	minX, minY := displays[0].X, displays[0].Y
	maxX, maxY := displays[0].X+displays[0].Width, displays[0].Y+displays[0].Height
	for _, d := range displays[1:] {
		minX = min(minX, d.X)
		minY = min(minY, d.Y)
		maxX = max(maxX, d.X+d.Width)
		maxY = max(maxY, d.Y+d.Height)
	}
	return native.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// renderDisplayMap draws the display arrangement scaled into a width×height
// character canvas. The window rect, when given, is shaded.
func renderDisplayMap(displays []ipc.DisplayInfo, win *native.Rect, width, height int) []string {
	bounds := desktopBounds(displays)
	if width < 5 || height < 3 || bounds.Width <= 0 || bounds.Height <= 0 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	if win != nil {
		shadeRect(canvas, project(*win, bounds, width, height))
	}
	for _, d := range displays {
		label := fmt.Sprintf("%d", d.Index)
		if d.Current {
			label = "*" + label
		}
		drawTile(canvas, project(displayRect(d), bounds, width, height), label)
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// cell is a rect in canvas coordinates, inclusive on both ends.
type cell struct{ x1, y1, x2, y2 int }

// project maps r from desktop coordinates into the canvas interior.
func project(r native.Rect, bounds native.Rect, canvasW, canvasH int) cell {
	innerW, innerH := canvasW-2, canvasH-2
	c := cell{
		x1: 1 + (r.X-bounds.X)*innerW/bounds.Width,
		y1: 1 + (r.Y-bounds.Y)*innerH/bounds.Height,
		x2: (r.X + r.Width - bounds.X) * innerW / bounds.Width,
		y2: (r.Y + r.Height - bounds.Y) * innerH / bounds.Height,
	}
	c.x1 = max(c.x1, 1)
	c.y1 = max(c.y1, 1)
	c.x2 = min(c.x2, canvasW-2)
	c.y2 = min(c.y2, canvasH-2)
	return c
}

func shadeRect(canvas [][]rune, c cell) {
	for y := c.y1; y <= c.y2; y++ {
		for x := c.x1; x <= c.x2; x++ {
			canvas[y][x] = '░'
		}
	}
}

func drawTile(canvas [][]rune, c cell, label string) {
	// Need at least 2x2 for a tile
	if c.x2 <= c.x1 || c.y2 <= c.y1 {
		return
	}

	for x := c.x1; x <= c.x2; x++ {
		canvas[c.y1][x] = '─'
		canvas[c.y2][x] = '─'
	}
	for y := c.y1; y <= c.y2; y++ {
		canvas[y][c.x1] = '│'
		canvas[y][c.x2] = '│'
	}
	canvas[c.y1][c.x1] = '┌'
	canvas[c.y1][c.x2] = '┐'
	canvas[c.y2][c.x1] = '└'
	canvas[c.y2][c.x2] = '┘'

	// Label in the centre
	centerY := (c.y1 + c.y2) / 2
	centerX := (c.x1 + c.x2) / 2
	if centerY > c.y1 && centerY < c.y2 {
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > c.x1 && startX+i < c.x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
