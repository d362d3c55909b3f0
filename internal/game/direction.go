package game

import (
	"fmt"
	"strings"
)

// Direction is one of the four move directions.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every valid direction.
var Directions = [...]Direction{Left, Right, Up, Down}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= Left && d <= Down
}

// horizontal reports whether tiles move along rows.
func (d Direction) horizontal() bool {
	return d == Left || d == Right
}

// reversed reports whether lines are read from the high-index end.
func (d Direction) reversed() bool {
	return d == Right || d == Down
}

// ParseDirection converts a direction name (case-insensitive) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// DirectionFromVector maps an exact unit vector in screen coordinates
// (y grows downward) to a Direction. Anything else is rejected.
func DirectionFromVector(dx, dy int) (Direction, error) {
	switch {
	case dx == -1 && dy == 0:
		return Left, nil
	case dx == 1 && dy == 0:
		return Right, nil
	case dx == 0 && dy == -1:
		return Up, nil
	case dx == 0 && dy == 1:
		return Down, nil
	}
	return 0, fmt.Errorf("%w: vector (%d, %d)", ErrInvalidDirection, dx, dy)
}
