package app

import (
	"errors"
	"sync"
)

// State is the phase of a page view.
type State int

const (
	StateLoading State = iota
	StateError
	StateNotFound
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateNotFound:
		return "not_found"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

const errorMessage = "Error al cargar datos"

// ViewState is the single authoritative state of a page view. Data is only
// meaningful in StateReady, Message only in StateError and StateNotFound.
type ViewState[T any] struct {
	State   State
	Key     string
	Data    T
	Message string
	Missing Kind // failing segment, StateNotFound only
	Err     error
}

// Ticket binds an outcome to the request that produced it.
type Ticket struct {
	key string
	gen uint64
}

// Machine drives one view through loading -> error | not_found | ready.
// Beginning a new request resets it to loading; outcomes carrying an older
// ticket are discarded so a slow earlier response cannot overwrite a later one.
type Machine[T any] struct {
	mu  sync.Mutex
	gen uint64
	cur ViewState[T]
}

func NewMachine[T any]() *Machine[T] { return &Machine[T]{} }

func (m *Machine[T]) Current() ViewState[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Begin starts resolution for key.
func (m *Machine[T]) Begin(key string) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.cur = ViewState[T]{State: StateLoading, Key: key}
	return Ticket{key: key, gen: m.gen}
}

// Settle applies the outcome of the request identified by t and reports
// whether it was applied. ErrNotReady leaves the view in loading.
func (m *Machine[T]) Settle(t Ticket, data T, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.gen != m.gen || t.key != m.cur.Key || m.cur.State != StateLoading {
		return false
	}
	next := ViewState[T]{Key: t.key, Err: err}
	var nf *NotFoundError
	switch {
	case err == nil:
		next.State = StateReady
		next.Data = data
	case errors.Is(err, ErrNotReady):
		return false
	case errors.As(err, &nf):
		next.State = StateNotFound
		next.Message = nf.Message()
		next.Missing = nf.Kind
	default:
		next.State = StateError
		next.Message = errorMessage
	}
	m.cur = next
	return true
}
