package page

import (
	"fmt"
	"sync"
)

type ModalName string

const (
	ModalSignIn     ModalName = "signin"
	ModalRegister   ModalName = "register"
	ModalDownload   ModalName = "download"
	ModalAdminLogin ModalName = "admin-login"
)

func (n ModalName) Valid() bool {
	switch n {
	case ModalSignIn, ModalRegister, ModalDownload, ModalAdminLogin:
		return true
	}
	return false
}

type ModalState int

const (
	Closed ModalState = iota
	Open
)

func (s ModalState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

func (s ModalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Modals tracks every dialog of the page as Closed|Open.
type Modals struct {
	mu     sync.RWMutex
	states map[ModalName]ModalState
}

func NewModals() *Modals {
	return &Modals{
		states: map[ModalName]ModalState{
			ModalSignIn:     Closed,
			ModalRegister:   Closed,
			ModalDownload:   Closed,
			ModalAdminLogin: Closed,
		},
	}
}

// Open reports whether the modal changed state.
func (m *Modals) Open(name ModalName) (bool, error) {
	return m.set(name, Open)
}

func (m *Modals) Close(name ModalName) (bool, error) {
	return m.set(name, Closed)
}

// Switch closes from and opens to, as the sign-in/register links do.
func (m *Modals) Switch(from, to ModalName) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("unknown modal %q or %q", from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[from] = Closed
	m.states[to] = Open
	return nil
}

func (m *Modals) State(name ModalName) ModalState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[name]
}

func (m *Modals) IsOpen(name ModalName) bool {
	return m.State(name) == Open
}

func (m *Modals) Snapshot() map[ModalName]ModalState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[ModalName]ModalState, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out
}

func (m *Modals) set(name ModalName, state ModalState) (bool, error) {
	if !name.Valid() {
		return false, fmt.Errorf("unknown modal %q", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := m.states[name] != state
	m.states[name] = state
	return changed, nil
}
