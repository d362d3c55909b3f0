package tui

import "github.com/vovakirdan/tui-2048/internal/core"

var tileColors = map[int]core.Color{
	2:    core.ColorTile2,
	4:    core.ColorTile4,
	8:    core.ColorTile8,
	16:   core.ColorTile16,
	32:   core.ColorTile32,
	64:   core.ColorTile64,
	128:  core.ColorTile128,
	256:  core.ColorTile256,
	512:  core.ColorTile512,
	1024: core.ColorTile1024,
	2048: core.ColorTile2048,
}

// TileColor returns the background colour for a tile value.
// Values above 2048 share one colour.
func TileColor(value int) core.Color {
	if c, ok := tileColors[value]; ok {
		return c
	}
	return core.ColorTileOther
}

// tileTextColor keeps the two lightest tiles readable.
func tileTextColor(value int) core.Color {
	if value <= 4 {
		return core.ColorDark
	}
	return core.ColorWhite
}
