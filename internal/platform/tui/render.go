package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-2048/internal/core"
)

// palette maps core.Color to terminal colours. ColorDefault is absent and
// leaves the terminal's own colour in place.
var palette = map[core.Color]lipgloss.Color{
	core.ColorRed:       lipgloss.Color("1"),
	core.ColorGreen:     lipgloss.Color("2"),
	core.ColorYellow:    lipgloss.Color("3"),
	core.ColorWhite:     lipgloss.Color("#F9F6F2"),
	core.ColorGray:      lipgloss.Color("245"),
	core.ColorDark:      lipgloss.Color("#776E65"),
	core.ColorBoard:     lipgloss.Color("#BBADA0"),
	core.ColorEmptyCell: lipgloss.Color("#CDC1B4"),

	core.ColorTile2:     lipgloss.Color("#EDE3D9"),
	core.ColorTile4:     lipgloss.Color("#EDE0C7"),
	core.ColorTile8:     lipgloss.Color("#F5C275"),
	core.ColorTile16:    lipgloss.Color("#F5AD61"),
	core.ColorTile32:    lipgloss.Color("#F59461"),
	core.ColorTile64:    lipgloss.Color("#F57A61"),
	core.ColorTile128:   lipgloss.Color("#F56152"),
	core.ColorTile256:   lipgloss.Color("#F55252"),
	core.ColorTile512:   lipgloss.Color("#DB4252"),
	core.ColorTile1024:  lipgloss.Color("#CC2952"),
	core.ColorTile2048:  lipgloss.Color("#C20F52"),
	core.ColorTileOther: lipgloss.Color("#8C1A33"),
}

func cellStyle(fg, bg core.Color) lipgloss.Style {
	style := lipgloss.NewStyle()
	if c, ok := palette[fg]; ok {
		style = style.Foreground(c)
	}
	if c, ok := palette[bg]; ok {
		style = style.Background(c)
	}
	return style
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != start.Color || cell.Bg != start.Bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			if start.Color == core.ColorDefault && start.Bg == core.ColorDefault {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(cellStyle(start.Color, start.Bg).Render(run.String()))
		}
	}
	return sb.String()
}
