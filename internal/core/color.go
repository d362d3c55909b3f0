package core

// Color is a palette entry for a screen cell.
// The platform layer maps each entry to a terminal colour.
type Color uint8

// Palette entries.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorWhite
	ColorGray
	ColorDark // text on light tiles

	ColorBoard     // frame around the cells
	ColorEmptyCell // background of an empty cell

	ColorTile2
	ColorTile4
	ColorTile8
	ColorTile16
	ColorTile32
	ColorTile64
	ColorTile128
	ColorTile256
	ColorTile512
	ColorTile1024
	ColorTile2048
	ColorTileOther // anything above 2048
)
