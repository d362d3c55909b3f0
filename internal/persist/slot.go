package persist

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// SlotBackend is the subset of *storage.Store a SlotStore needs.
type SlotBackend interface {
	PutSave(slot, format string, payload []byte) error
	GetSave(slot string) (storage.SaveEntry, error)
	DeleteSave(slot string) error
}

// SlotStore keeps one save in a named row of the database save table.
type SlotStore struct {
	db    SlotBackend
	slot  string
	codec Codec
}

// NewSlotStore stores snapshots for slot using codec, JSON when nil.
func NewSlotStore(db SlotBackend, slot string, codec Codec) *SlotStore {
	if codec == nil {
		codec, _ = Lookup(jsonName)
	}
	return &SlotStore{db: db, slot: slot, codec: codec}
}

// Slot returns the slot name.
func (s *SlotStore) Slot() string {
	return s.slot
}

// Save encodes and upserts the snapshot.
func (s *SlotStore) Save(snap game.Snapshot) error {
	data, err := s.codec.Encode(snap)
	if err != nil {
		return err
	}
	return s.db.PutSave(s.slot, s.codec.Name(), data)
}

// Load decodes the slot with the codec it was written with.
// A missing slot returns game.ErrNoSnapshot.
func (s *SlotStore) Load() (game.Snapshot, error) {
	entry, err := s.db.GetSave(s.slot)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return game.Snapshot{}, game.ErrNoSnapshot
	}
	if err != nil {
		return game.Snapshot{}, err
	}

	codec, err := Lookup(entry.Format)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("%w: slot %s: %v", game.ErrCorruptSnapshot, s.slot, err)
	}
	snap, err := codec.Decode(entry.Payload)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("persist: slot %s: %w", s.slot, err)
	}
	return snap, nil
}

// Quarantine moves the slot's payload to a timestamped slot and empties
// this one.
func (s *SlotStore) Quarantine() (string, error) {
	entry, err := s.db.GetSave(s.slot)
	if err != nil {
		return "", fmt.Errorf("persist: cannot quarantine slot %s: %w", s.slot, err)
	}

	dest := fmt.Sprintf("%s.corrupt-%s", s.slot, time.Now().Format("20060102-150405"))
	if err := s.db.PutSave(dest, entry.Format, entry.Payload); err != nil {
		return "", fmt.Errorf("persist: cannot quarantine slot %s: %w", s.slot, err)
	}
	if err := s.db.DeleteSave(s.slot); err != nil {
		return "", fmt.Errorf("persist: cannot quarantine slot %s: %w", s.slot, err)
	}
	return dest, nil
}

// Delete removes the slot. A missing slot is not an error.
func (s *SlotStore) Delete() error {
	return s.db.DeleteSave(s.slot)
}
