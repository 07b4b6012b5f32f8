// Package slot implements the borrowing lifecycle around a Peripheral:
// insertion, removal, and exclusive command forwarding. A Slot never
// owns what it holds; it just gates access to it while inserted.
package slot

import (
	"errors"
	"sync"

	"github.com/saxbophone/wondercard/protocol"
)

// Peripheral is anything a Slot can hold and forward commands to. Both
// *card.Card and *hwcard.Bridge satisfy it.
type Peripheral interface {
	PowerOn() bool
	PowerOff() bool
	Powered() bool
	Send(command protocol.TriState) (ack bool, data protocol.TriState)
}

// ErrOccupied is returned by Insert when the slot already holds a
// Peripheral.
var ErrOccupied = errors.New("slot: already occupied")

// ErrPowerOnFailed is returned by Insert when the Peripheral's PowerOn
// reports failure, e.g. because it is already powered on elsewhere.
var ErrPowerOnFailed = errors.New("slot: peripheral power-on failed")

// ErrEmpty is returned by Remove and Send when the slot holds nothing.
var ErrEmpty = errors.New("slot: empty")

// Slot borrows at most one Peripheral at a time. All operations are
// safe for concurrent use.
type Slot struct {
	mu       sync.Mutex
	inserted Peripheral
}

// New returns an empty Slot.
func New() *Slot {
	return &Slot{}
}

// Insert borrows p into the slot and powers it on. It fails if the
// slot is already occupied, or if p refuses to power on (for instance
// because it is already inserted into another slot).
func (s *Slot) Insert(p Peripheral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inserted != nil {
		return ErrOccupied
	}
	if !p.PowerOn() {
		return ErrPowerOnFailed
	}
	s.inserted = p
	return nil
}

// Remove powers off and releases whatever the slot holds. It fails if
// the slot is empty.
func (s *Slot) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inserted == nil {
		return ErrEmpty
	}
	s.inserted.PowerOff()
	s.inserted = nil
	return nil
}

// Occupied reports whether the slot currently holds a Peripheral.
func (s *Slot) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserted != nil
}

// Send forwards command to the inserted Peripheral. It fails with
// ErrEmpty if the slot holds nothing.
func (s *Slot) Send(command protocol.TriState) (ack bool, data protocol.TriState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inserted == nil {
		return false, protocol.HighZ, ErrEmpty
	}
	ack, data = s.inserted.Send(command)
	return ack, data, nil
}
