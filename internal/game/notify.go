package game

import "slices"

type listener[T any] struct {
	id int
	fn func(T)
}

// signal is a synchronous list of listeners for one kind of change.
type signal[T any] struct {
	nextID    int
	listeners []listener[T]
}

// subscribe registers fn and returns a func that removes it again.
func (s *signal[T]) subscribe(fn func(T)) func() {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	return func() { s.remove(id) }
}

func (s *signal[T]) remove(id int) {
	s.listeners = slices.DeleteFunc(s.listeners, func(l listener[T]) bool {
		return l.id == id
	})
}

// emit calls every listener in subscription order. Listeners may cancel
// themselves while being called.
func (s *signal[T]) emit(v T) {
	for _, l := range slices.Clone(s.listeners) {
		l.fn(v)
	}
}

func (s *signal[T]) reset() {
	s.listeners = nil
}
