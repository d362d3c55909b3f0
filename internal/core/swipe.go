package core

import "github.com/vovakirdan/tui-2048/internal/game"

// DefaultSwipeDistance is the shortest drag, in cells, read as a swipe.
const DefaultSwipeDistance = 3

// Swipe tracks one mouse drag from press to release.
type Swipe struct {
	startX, startY int
	active         bool
}

// Begin records the press position.
func (s *Swipe) Begin(x, y int) {
	s.startX, s.startY = x, y
	s.active = true
}

// Active reports whether a drag is in progress.
func (s *Swipe) Active() bool {
	return s.active
}

// End finishes the drag at (x, y) and returns the swipe action, or
// ActionNone when the drag was too short or no drag was in progress.
func (s *Swipe) End(x, y, minDistance int) Action {
	if !s.active {
		return ActionNone
	}
	s.active = false
	return SwipeAction(x-s.startX, y-s.startY, minDistance)
}

// SwipeAction maps a drag vector in screen coordinates (y grows downward)
// to a move. The longer axis decides; drags shorter than minDistance on
// that axis, or exactly diagonal, are ignored.
func SwipeAction(dx, dy, minDistance int) Action {
	ax, ay := Abs(dx), Abs(dy)
	if max(ax, ay) < max(minDistance, 1) || ax == ay {
		return ActionNone
	}

	var d game.Direction
	var err error
	if ax > ay {
		d, err = game.DirectionFromVector(sign(dx), 0)
	} else {
		d, err = game.DirectionFromVector(0, sign(dy))
	}
	if err != nil {
		return ActionNone
	}
	return ActionFor(d)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
