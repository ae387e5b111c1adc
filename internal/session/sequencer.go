package session

// Sequencer holds the speaking order for one day round and the position
// within it. A round never wraps around: once the cursor passes the last
// seat the round is complete and a new Start is required.
type Sequencer struct {
	rotation []int
	cursor   int
	inserted int // diverted seat for an after-challenge turn, 0 when none
	started  bool
}

// NewSequencer creates an idle sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Start begins a new round over the given seats. If leadSeat is non-zero
// and present, the rotation is cyclically rotated so it begins there while
// preserving the relative order of the remaining seats.
func (s *Sequencer) Start(rotation []int, leadSeat int) {
	s.rotation = make([]int, len(rotation))
	copy(s.rotation, rotation)
	if leadSeat != 0 {
		for i, seat := range s.rotation {
			if seat == leadSeat {
				s.rotation = append(s.rotation[i:], s.rotation[:i]...)
				break
			}
		}
	}
	s.cursor = 0
	s.inserted = 0
	s.started = true
}

// Current returns the seat whose turn is running: the inserted seat while a
// diverted turn is active, otherwise the seat at the cursor.
func (s *Sequencer) Current() (int, error) {
	if !s.started || s.cursor >= len(s.rotation) {
		return 0, ErrNotActive
	}
	if s.inserted != 0 {
		return s.inserted, nil
	}
	return s.rotation[s.cursor], nil
}

// Advance moves to the next seat and returns it, or reports round
// completion. Ending a diverted turn clears the divert and consumes the
// rotation slot of the seat that spawned it, so an insertion never costs an
// extra slot.
func (s *Sequencer) Advance() (int, bool) {
	if !s.started || s.cursor >= len(s.rotation) {
		return 0, true
	}
	s.inserted = 0
	s.cursor++
	if s.cursor >= len(s.rotation) {
		return 0, true
	}
	return s.rotation[s.cursor], false
}

// InsertNext diverts the rotation to the given seat without consuming a
// slot. The interrupted cursor position is kept and restored by Advance.
func (s *Sequencer) InsertNext(seat int) {
	s.inserted = seat
}

// PeekNext returns the seat that will speak after the current rotation slot
// is consumed, if any.
func (s *Sequencer) PeekNext() (int, bool) {
	if !s.started || s.cursor+1 >= len(s.rotation) {
		return 0, false
	}
	return s.rotation[s.cursor+1], true
}

// Done reports whether the round has completed.
func (s *Sequencer) Done() bool {
	return s.started && s.cursor >= len(s.rotation)
}

// Rotation returns a copy of the current speaking order.
func (s *Sequencer) Rotation() []int {
	out := make([]int, len(s.rotation))
	copy(out, s.rotation)
	return out
}
