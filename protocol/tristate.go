// Package protocol defines the wire-level constants and the TriState
// byte type shared by the card, slot, and driver packages.
package protocol

import "fmt"

// TriState models a single byte on the card's serial bus. A card input
// may be high-impedance ("don't care", no command byte supplied); a
// card output may be high-impedance ("not driving the line"). Both
// directions use the same type per the spec's data model.
type TriState struct {
	value byte
	set   bool
}

// HighZ is the high-impedance TriState: no defined byte.
var HighZ = TriState{}

// Byte returns a defined TriState carrying v.
func Byte(v byte) TriState {
	return TriState{value: v, set: true}
}

// Defined reports whether t carries a byte value.
func (t TriState) Defined() bool {
	return t.set
}

// Value returns the carried byte and true, or (0, false) if t is high-Z.
func (t TriState) Value() (byte, bool) {
	return t.value, t.set
}

// Or returns the carried byte, or def if t is high-Z. This is the
// `cmd.unwrap_or(...)` substitution the spec calls out at each of the
// documented high-Z-tolerant points (address bytes, write-data bytes,
// the sent checksum).
func (t TriState) Or(def byte) byte {
	if !t.set {
		return def
	}
	return t.value
}

// String renders a defined byte as two hex digits, or "Z" for high-Z.
func (t TriState) String() string {
	if !t.set {
		return "Z"
	}
	return fmt.Sprintf("%02X", t.value)
}
