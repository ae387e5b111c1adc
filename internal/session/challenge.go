package session

// Decision is the target player's (or moderator's) ruling on a challenge
// request.
type Decision int

const (
	// DecisionReject declines the request with no further effect.
	DecisionReject Decision = iota
	// DecisionBefore pre-empts the target's turn immediately.
	DecisionBefore
	// DecisionAfter queues the challenger to speak right after the target's
	// normal turn ends.
	DecisionAfter
)

func (d Decision) String() string {
	switch d {
	case DecisionBefore:
		return "before"
	case DecisionAfter:
		return "after"
	default:
		return "reject"
	}
}

// ChallengeRequest is a pending out-of-turn speaking request against the
// seat that is currently (or about to be) speaking.
type ChallengeRequest struct {
	Challenger     Player
	ChallengerSeat int
	TargetSeat     int
}

// Arbiter tracks challenge requests for one session. At most one pending
// request may exist per (challenger, target) pair, and accepting any request
// against a target invalidates all other pending requests against it.
type Arbiter struct {
	enabled bool
	pending map[int]map[int64]ChallengeRequest // target seat -> challenger ID
	after   map[int]Player                     // target seat -> queued after-challenger
}

// NewArbiter creates an arbiter with challenges enabled.
func NewArbiter() *Arbiter {
	return &Arbiter{
		enabled: true,
		pending: make(map[int]map[int64]ChallengeRequest),
		after:   make(map[int]Player),
	}
}

// Enabled reports whether challenge requests are currently accepted.
func (a *Arbiter) Enabled() bool {
	return a.enabled
}

// SetEnabled flips the session-wide challenge toggle.
func (a *Arbiter) SetEnabled(enabled bool) {
	a.enabled = enabled
}

// Request files a challenge by the given seated challenger against the
// target seat.
func (a *Arbiter) Request(challenger Player, challengerSeat, targetSeat int) error {
	if !a.enabled {
		return ErrChallengesDisabled
	}
	if challengerSeat == 0 {
		return ErrNotAPlayer
	}
	if challengerSeat == targetSeat {
		return ErrSelfChallenge
	}
	if _, ok := a.pending[targetSeat][challenger.ID]; ok {
		return ErrDuplicateRequest
	}
	if a.pending[targetSeat] == nil {
		a.pending[targetSeat] = make(map[int64]ChallengeRequest)
	}
	a.pending[targetSeat][challenger.ID] = ChallengeRequest{
		Challenger:     challenger,
		ChallengerSeat: challengerSeat,
		TargetSeat:     targetSeat,
	}
	return nil
}

// Resolve rules on the pending request from challengerID against targetSeat.
// Accepting (before or after) invalidates every other pending request
// against the same target; an after-decision additionally queues the
// challenger, overwriting any previous after-challenge for that seat.
func (a *Arbiter) Resolve(targetSeat int, challengerID int64, decision Decision) (ChallengeRequest, error) {
	req, ok := a.pending[targetSeat][challengerID]
	if !ok {
		return ChallengeRequest{}, ErrNoSuchRequest
	}

	switch decision {
	case DecisionReject:
		delete(a.pending[targetSeat], challengerID)
		if len(a.pending[targetSeat]) == 0 {
			delete(a.pending, targetSeat)
		}
	case DecisionBefore:
		delete(a.pending, targetSeat)
	case DecisionAfter:
		delete(a.pending, targetSeat)
		a.after[targetSeat] = req.Challenger
	}
	return req, nil
}

// TakeAfter consumes the queued after-challenger for the given seat, if any.
func (a *Arbiter) TakeAfter(seat int) (Player, bool) {
	p, ok := a.after[seat]
	if ok {
		delete(a.after, seat)
	}
	return p, ok
}

// ClearSeat drops all pending requests against the given seat. Called when
// the seat's turn ends, since unresolved requests are moot afterwards.
func (a *Arbiter) ClearSeat(seat int) {
	delete(a.pending, seat)
}

// PendingFor returns the pending requests against the given seat.
func (a *Arbiter) PendingFor(seat int) []ChallengeRequest {
	reqs := make([]ChallengeRequest, 0, len(a.pending[seat]))
	for _, req := range a.pending[seat] {
		reqs = append(reqs, req)
	}
	return reqs
}
