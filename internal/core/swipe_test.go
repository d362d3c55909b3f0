package core

import (
	"testing"

	"github.com/vovakirdan/tui-2048/internal/game"
)

func TestSwipeAction(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy int
		min    int
		want   Action
	}{
		{"right", 6, 1, 3, ActionRight},
		{"left", -4, 2, 3, ActionLeft},
		{"up (screen y decreases)", 1, -5, 3, ActionUp},
		{"down", 0, 3, 3, ActionDown},
		{"too short", 2, 1, 3, ActionNone},
		{"diagonal", 4, 4, 3, ActionNone},
		{"no movement", 0, 0, 0, ActionNone},
		{"zero minimum still needs movement", 1, 0, 0, ActionRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SwipeAction(tt.dx, tt.dy, tt.min); got != tt.want {
				t.Errorf("SwipeAction(%d, %d, %d) = %v, want %v", tt.dx, tt.dy, tt.min, got, tt.want)
			}
		})
	}
}

func TestSwipeTracking(t *testing.T) {
	var s Swipe
	if s.End(10, 10, 3) != ActionNone {
		t.Error("End() without Begin() should be ActionNone")
	}

	s.Begin(10, 10)
	if !s.Active() {
		t.Fatal("Begin() should start a drag")
	}
	if got := s.End(2, 11, 3); got != ActionLeft {
		t.Errorf("End() = %v, want Left", got)
	}
	if s.Active() {
		t.Error("End() should finish the drag")
	}
}

func TestActionDirection(t *testing.T) {
	for _, d := range game.Directions {
		got, ok := ActionFor(d).Direction()
		if !ok || got != d {
			t.Errorf("ActionFor(%v).Direction() = %v, %v", d, got, ok)
		}
	}
	if _, ok := ActionQuit.Direction(); ok {
		t.Error("ActionQuit should not map to a direction")
	}
}
