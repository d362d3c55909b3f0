package core

import "github.com/vovakirdan/tui-2048/internal/game"

// Action is a semantic input, abstracted from physical keys and mouse gestures.
type Action int

const (
	ActionNone Action = iota
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionNewGame
	ActionHelp
	ActionQuit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionNewGame:
		return "NewGame"
	case ActionHelp:
		return "Help"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Direction returns the move an action stands for.
func (a Action) Direction() (game.Direction, bool) {
	switch a {
	case ActionLeft:
		return game.Left, true
	case ActionRight:
		return game.Right, true
	case ActionUp:
		return game.Up, true
	case ActionDown:
		return game.Down, true
	}
	return 0, false
}

// ActionFor returns the move action for a direction.
func ActionFor(d game.Direction) Action {
	switch d {
	case game.Left:
		return ActionLeft
	case game.Right:
		return ActionRight
	case game.Up:
		return ActionUp
	case game.Down:
		return ActionDown
	}
	return ActionNone
}
