package card

import "github.com/saxbophone/wondercard/protocol"

// getIDState is the sub-state of the Get-Memory-Card-ID command: just
// a cursor into the fixed reply sequence in protocol.GetIDReply.
type getIDState struct {
	step int
}

// stepGetID advances the Get-Memory-Card-ID sub-machine by one command
// byte. The command byte is never inspected (spec Open Question 2):
// this sub-machine only ever emits its fixed reply sequence.
func (c *Card) stepGetID(_ protocol.TriState) (ack bool, data protocol.TriState) {
	s := &c.getID

	data = protocol.Byte(protocol.GetIDReply[s.step])
	ack = s.step < len(protocol.GetIDReply)-1

	if ack {
		s.step++
	} else {
		c.state = stateIdle
	}

	return ack, data
}
