// Package game implements the 2048 board engine: tiles, the directional
// collapse-and-merge move, tile spawning, scoring, game-over detection and
// the snapshot used for persistence.
//
// The engine is synchronous and single-threaded. Callers serialize Move and
// NewGame calls; presentation layers observe changes through the
// subscription methods on Tile and Board and never mutate state directly.
package game
