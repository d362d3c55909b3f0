package tui

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/game"
)

const hudHeight = 3

// cellLayout is the size of one grid cell including its top and left border.
type cellLayout struct {
	w, h int
}

// Layouts from roomiest to most compact; the first that fits is used.
var cellLayouts = []cellLayout{
	{w: 8, h: 4},
	{w: 7, h: 2},
}

// BoardView is everything DrawBoard needs to paint one frame.
type BoardView struct {
	Snapshot game.Snapshot
	GameOver bool
	Moves    int
	Player   string
	Status   string // shown under the board, e.g. a save error
}

// NewBoardView captures the board state. It must be called while the
// board cannot change.
func NewBoardView(b *game.Board) BoardView {
	return BoardView{
		Snapshot: b.Snapshot(),
		GameOver: b.IsTerminal(),
	}
}

// DrawBoard draws the HUD, the grid and any overlay, centred on dst.
func DrawBoard(dst *core.Screen, v BoardView) {
	dst.Clear()

	lay, board, ok := boardRect(v.Snapshot.Size, dst.Width(), dst.Height())
	if !ok {
		drawTooSmall(dst)
		return
	}
	boardX, boardY, boardW := board.X, board.Y, board.W

	drawHUD(dst, v, boardX, boardW)
	drawGrid(dst, v.Snapshot.Size, lay, boardX, boardY)
	for _, c := range v.Snapshot.Cells {
		drawTile(dst, lay, boardX+c.X*lay.w, boardY+c.Y*lay.h, c.Value)
	}

	if v.Status != "" {
		dst.DrawTextColored(boardX, board.Bottom(), v.Status, core.ColorRed, core.ColorDefault)
	}

	if v.GameOver {
		best := v.Snapshot.BestScore
		lines := []string{
			"GAME OVER",
			fmt.Sprintf("Score: %d", v.Snapshot.Score),
			fmt.Sprintf("Max tile: %d", maxCell(v.Snapshot)),
		}
		if v.Snapshot.Score > 0 && v.Snapshot.Score == best {
			lines = append(lines, "New best!")
		}
		lines = append(lines, "Press N for a new game")
		drawOverlay(dst, board, lines...)
	}
}

// boardRect returns the layout and screen area of an n x n grid drawn on a
// width x height screen. The rect includes the outer border.
func boardRect(n, width, height int) (cellLayout, core.Rect, bool) {
	lay, ok := fitLayout(n, width, height)
	if !ok {
		return cellLayout{}, core.Rect{}, false
	}
	w, h := n*lay.w+1, n*lay.h+1
	return lay, core.NewRect((width-w)/2, hudHeight, w, h), true
}

func fitLayout(n, width, height int) (cellLayout, bool) {
	for _, lay := range cellLayouts {
		if n*lay.w+1 <= width && hudHeight+n*lay.h+2 <= height {
			return lay, true
		}
	}
	return cellLayout{}, false
}

// drawTooSmall shows a "window too small" message.
func drawTooSmall(dst *core.Screen) {
	y := dst.Height() / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// drawHUD draws the title, score, best score, move count and max tile.
func drawHUD(dst *core.Screen, v BoardView, boardX, boardW int) {
	title := "2048"
	if v.Player != "" {
		title = "2048 - " + v.Player
	}
	titleX := boardX + (boardW-utf8.RuneCountInString(title))/2
	dst.DrawTextColored(titleX, 0, title, core.ColorYellow, core.ColorDefault)

	drawSplit(dst, boardX, boardW, 1,
		fmt.Sprintf("Score: %d", v.Snapshot.Score),
		fmt.Sprintf("Best: %d", v.Snapshot.BestScore))
	drawSplit(dst, boardX, boardW, 2,
		fmt.Sprintf("Moves: %d", v.Moves),
		fmt.Sprintf("Max: %d", maxCell(v.Snapshot)))
}

// drawSplit puts left at the board's left edge and right at its right edge.
func drawSplit(dst *core.Screen, boardX, boardW, y int, left, right string) {
	dst.DrawText(boardX, y, left)
	rightX := max(boardX+boardW-len(right), boardX+len(left)+1)
	dst.DrawTextColored(rightX, y, right, core.ColorGray, core.ColorDefault)
}

// drawGrid draws the cell borders and empty cell backgrounds.
func drawGrid(dst *core.Screen, n int, lay cellLayout, boardX, boardY int) {
	for y := range n + 1 {
		for x := range n + 1 {
			px := boardX + x*lay.w
			py := boardY + y*lay.h

			var corner rune
			switch {
			case y == 0 && x == 0:
				corner = '┌'
			case y == 0 && x == n:
				corner = '┐'
			case y == n && x == 0:
				corner = '└'
			case y == n && x == n:
				corner = '┘'
			case y == 0:
				corner = '┬'
			case y == n:
				corner = '┴'
			case x == 0:
				corner = '├'
			case x == n:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.SetColored(px, py, corner, core.ColorBoard, core.ColorDefault)

			if x < n {
				for i := 1; i < lay.w; i++ {
					dst.SetColored(px+i, py, '─', core.ColorBoard, core.ColorDefault)
				}
			}
			if y < n {
				for i := 1; i < lay.h; i++ {
					dst.SetColored(px, py+i, '│', core.ColorBoard, core.ColorDefault)
				}
			}
			if x < n && y < n {
				dst.FillRect(interior(lay, px, py), ' ', core.ColorDefault, core.ColorEmptyCell)
			}
		}
	}
}

// drawTile paints a tile inside the cell whose top-left border is (px, py).
func drawTile(dst *core.Screen, lay cellLayout, px, py, value int) {
	bg := TileColor(value)
	dst.FillRect(interior(lay, px, py), ' ', core.ColorDefault, bg)

	label := strconv.Itoa(value)
	padLeft := max((lay.w-1-len(label))/2, 0)
	textY := py + 1 + (lay.h-1)/2
	dst.DrawTextColored(px+1+padLeft, textY, label, tileTextColor(value), bg)
}

func interior(lay cellLayout, px, py int) core.Rect {
	return core.NewRect(px+1, py+1, lay.w-1, lay.h-1)
}

// drawOverlay draws a text box centred on area, kept inside dst.
func drawOverlay(dst *core.Screen, area core.Rect, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, utf8.RuneCountInString(line))
	}

	cx, cy := area.Center()
	box := core.NewRect(cx-(maxLen+4)/2, cy-(len(lines)+2)/2, maxLen+4, len(lines)+2)
	box.X = core.Clamp(box.X, 0, max(dst.Width()-box.W, 0))
	box.Y = core.Clamp(box.Y, 0, max(dst.Height()-box.H, 0))

	// Clear area behind overlay
	dst.FillRect(box, ' ', core.ColorDefault, core.ColorDefault)
	dst.DrawBox(box, core.ColorYellow)

	for i, line := range lines {
		x := box.X + 2 + (maxLen-utf8.RuneCountInString(line))/2
		dst.DrawText(x, box.Y+1+i, line)
	}
}

func maxCell(s game.Snapshot) int {
	m := 0
	for _, c := range s.Cells {
		m = max(m, c.Value)
	}
	return m
}
