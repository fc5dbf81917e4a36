package terminal

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/slide2048/game/engine"
)

// Layout of the board on screen
const (
	originX      = 2
	originY      = 2
	cellGap      = 1
	rowGap       = 1
	minCellWidth = 4
	cellPadding  = 2
)

// Canvas is the part of tcell.Screen the renderer draws on
type Canvas interface {
	Clear()
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Size() (int, int)
}

// Renderer draws a game state onto a Canvas
type Renderer struct {
	canvas Canvas
}

// NewRenderer creates a renderer for canvas
func NewRenderer(canvas Canvas) *Renderer {
	return &Renderer{canvas: canvas}
}

var (
	styleText    = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleEmpty   = tcell.StyleDefault.Background(tcell.NewRGBColor(60, 58, 50))
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// tilePalette is indexed by log2(value); larger values reuse the last entry
var tilePalette = []tcell.Color{
	tcell.NewRGBColor(60, 58, 50),
	tcell.NewRGBColor(238, 228, 218), // 2
	tcell.NewRGBColor(237, 224, 200), // 4
	tcell.NewRGBColor(242, 177, 121), // 8
	tcell.NewRGBColor(245, 149, 99),  // 16
	tcell.NewRGBColor(246, 124, 95),  // 32
	tcell.NewRGBColor(246, 94, 59),   // 64
	tcell.NewRGBColor(237, 207, 114), // 128
	tcell.NewRGBColor(237, 204, 97),  // 256
	tcell.NewRGBColor(237, 200, 80),  // 512
	tcell.NewRGBColor(237, 197, 63),  // 1024
	tcell.NewRGBColor(237, 194, 46),  // 2048
	tcell.NewRGBColor(60, 58, 50),    // beyond
}

func tileStyle(value int) tcell.Style {
	idx := 0
	if value > 0 {
		idx = bits.Len(uint(value)) - 1
	}
	if idx >= len(tilePalette) {
		idx = len(tilePalette) - 1
	}

	fg := tcell.NewRGBColor(119, 110, 101)
	if value > 4 {
		fg = tcell.ColorWhite
	}
	return tcell.StyleDefault.Background(tilePalette[idx]).Foreground(fg).Bold(true)
}

// cellWidth fits the widest value on the board
func cellWidth(state *engine.GameState) int {
	w := len(strconv.Itoa(state.MaxTile))
	if w < minCellWidth {
		w = minCellWidth
	}
	return w + cellPadding
}

// CellOrigin returns the screen column and row of the board cell at pos
func CellOrigin(state *engine.GameState, pos engine.Position) (int, int) {
	w := cellWidth(state)
	return originX + pos.X*(w+cellGap), originY + pos.Y*(1+rowGap)
}

// Draw renders the header, the board and the status lines
func (r *Renderer) Draw(state *engine.GameState, status string) {
	r.canvas.Clear()
	if state == nil {
		return
	}

	header := fmt.Sprintf("2048 · %s   sum %d   max %d   moves %d",
		state.ConfigName, state.TileSum, state.MaxTile, state.CurrentMovesCount)
	r.drawText(originX, 0, header, styleTitle)

	r.drawBoard(state)

	_, bottom := CellOrigin(state, engine.Position{Y: state.BoardSize})
	y := bottom
	if state.Message != "" {
		r.drawText(originX, y, state.Message, styleText)
		y++
	}
	if status != "" {
		r.drawText(originX, y, status, styleError)
		y++
	}
	if len(state.PossibleMoves) == 0 && !state.MoveInProgress {
		r.drawText(originX, y, "No moves left. Press r to start over.", styleWarning)
		y++
	}
	r.drawText(originX, y+1, "arrows/hjkl/wasd move · r reset · q quit", styleDim)
}

func (r *Renderer) drawBoard(state *engine.GameState) {
	w := cellWidth(state)

	for y := 0; y < state.BoardSize; y++ {
		for x := 0; x < state.BoardSize; x++ {
			cx, cy := CellOrigin(state, engine.Position{X: x, Y: y})
			r.fill(cx, cy, w, styleEmpty)
		}
	}

	// Tiles still sliding into a merge share a cell with their destination;
	// the destination is drawn highlighted until the merge completes.
	merging := make(map[engine.Position]bool)
	for _, t := range state.Tiles {
		if t.MergeWith != 0 {
			merging[t.Position] = true
		}
	}

	for _, t := range state.Tiles {
		if t.MergeWith != 0 {
			continue
		}
		style := tileStyle(t.Value)
		if merging[t.Position] {
			style = style.Reverse(true)
		}
		cx, cy := CellOrigin(state, t.Position)
		r.fill(cx, cy, w, style)
		label := strconv.Itoa(t.Value)
		r.drawText(cx+(w-len(label))/2, cy, label, style)
	}
}

func (r *Renderer) fill(x, y, width int, style tcell.Style) {
	r.drawText(x, y, strings.Repeat(" ", width), style)
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	maxX, maxY := r.canvas.Size()
	if y < 0 || y >= maxY {
		return
	}
	for _, ch := range text {
		if x >= maxX {
			return
		}
		if x >= 0 {
			r.canvas.SetContent(x, y, ch, nil, style)
		}
		x++
	}
}
