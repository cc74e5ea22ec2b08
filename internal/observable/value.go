// Package observable holds a value and tells subscribers every time it is replaced.
package observable

import (
	"sync"
)

type Value[T any] struct {
	mu        sync.Mutex
	value     T
	nextID    int
	observers map[int]func(T)
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{
		value:     initial,
		observers: make(map[int]func(T)),
	}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set installs next and notifies every current observer exactly once.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.value = next
	observers := v.snapshotObservers()
	v.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}

// Update applies fn to the current value under the lock, so concurrent
// read-modify-write calls do not lose increments.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	next := fn(v.value)
	v.value = next
	observers := v.snapshotObservers()
	v.mu.Unlock()

	for _, o := range observers {
		o(next)
	}
	return next
}

// Subscribe registers fn and returns a function that removes it.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.observers[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.observers, id)
			v.mu.Unlock()
		})
	}
}

func (v *Value[T]) snapshotObservers() []func(T) {
	out := make([]func(T), 0, len(v.observers))
	for i := 0; i < v.nextID; i++ {
		if fn, ok := v.observers[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
