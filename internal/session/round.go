package session

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StartRound seeds the speaking rotation from the occupied seats and starts
// the first turn. Moderator only; allowed after role distribution or after
// a night phase. A non-zero leadSeat must be occupied and becomes the first
// speaker, with the rest of the rotation following in seat order.
func (s *Session) StartRound(requestedBy Player, leadSeat int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModeratorLocked(requestedBy); err != nil {
		return err
	}
	if s.phase != PhaseRolesDistributed && s.phase != PhaseNight {
		return ErrWrongPhase
	}
	rotation := s.seats.OccupiedSeats()
	if len(rotation) == 0 {
		return ErrTooFewPlayers
	}
	if leadSeat != 0 {
		if _, ok := s.seats.PlayerAt(leadSeat); !ok {
			return ErrSeatVacant
		}
	}

	s.seq.Start(rotation, leadSeat)
	s.paused = nil
	s.challenge = nil
	s.phase = PhaseRoundActive

	first, _ := s.seq.Current()
	log.Info().
		Int64("chat_id", s.chatID).
		Ints("rotation", s.seq.Rotation()).
		Msg("Day round started")
	s.notifyGroup("☀️ The day round begins!")
	s.startTurnLocked(first, s.cfg.TurnDuration)
	return nil
}

// EndTurn ends the running turn for the given seat. Only the active speaker
// or the moderator may end a turn; clock expiry funnels into the same path.
func (s *Session) EndTurn(seat int, requestedBy Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRoundActive {
		return ErrNotActive
	}
	active, ok := s.activeSeatLocked()
	if !ok || seat != active {
		return ErrNotYourTurn
	}
	authorized := s.moderator != nil && s.moderator.ID == requestedBy.ID
	if !authorized {
		if held, seated := s.seats.SeatOf(requestedBy.ID); seated && held == active {
			authorized = true
		}
	}
	if !authorized {
		return ErrNotAuthorized
	}

	s.endActiveTurnLocked()
	return nil
}

// RequestChallenge files an out-of-turn speaking request by a seated player
// against the seat that is currently speaking (or, during a challenge turn,
// the seat whose normal turn runs next).
func (s *Session) RequestChallenge(challenger Player, targetSeat int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRoundActive {
		return ErrNotActive
	}
	challengerSeat, seated := s.seats.SeatOf(challenger.ID)
	if !seated {
		return ErrNotAPlayer
	}
	challengeable, ok := s.challengeableSeatLocked()
	if !ok || targetSeat != challengeable {
		return ErrNotActiveSeat
	}
	if err := s.arbiter.Request(challenger, challengerSeat, targetSeat); err != nil {
		return err
	}

	target, _ := s.seats.PlayerAt(targetSeat)
	s.notifyGroup(fmt.Sprintf("⚔ %s (seat %d) requests a challenge against %s (seat %d).",
		challenger.Name, challengerSeat, target.Name, targetSeat))
	return nil
}

// ResolveChallenge rules on a pending request. Only the target player or
// the moderator may resolve. A before-decision pauses the running turn and
// immediately starts the challenger's turn; an after-decision queues the
// challenger to speak right after the target's normal turn.
func (s *Session) ResolveChallenge(targetSeat int, challengerID int64, decision Decision, requestedBy Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRoundActive {
		return ErrNotActive
	}
	authorized := s.moderator != nil && s.moderator.ID == requestedBy.ID
	if !authorized {
		if held, seated := s.seats.SeatOf(requestedBy.ID); seated && held == targetSeat {
			authorized = true
		}
	}
	if !authorized {
		return ErrNotAuthorized
	}
	if decision == DecisionBefore && s.challenge != nil {
		return ErrChallengeTurnActive
	}

	req, err := s.arbiter.Resolve(targetSeat, challengerID, decision)
	if err != nil {
		return err
	}

	switch decision {
	case DecisionReject:
		s.notifyGroup(fmt.Sprintf("❌ Challenge by %s against seat %d was rejected.",
			req.Challenger.Name, targetSeat))
	case DecisionAfter:
		s.notifyGroup(fmt.Sprintf("⏳ %s will speak right after seat %d finishes.",
			req.Challenger.Name, targetSeat))
	case DecisionBefore:
		s.paused = &pausedTurn{Seat: targetSeat}
		s.challenge = &activeChallenge{
			Challenger: req.Challenger,
			Seat:       req.ChallengerSeat,
			Before:     true,
		}
		s.notifyGroup(fmt.Sprintf("⚔ Challenge accepted! %s speaks now; seat %d resumes afterwards.",
			req.Challenger.Name, targetSeat))
		s.startTurnLocked(req.ChallengerSeat, s.cfg.ChallengeDuration)
	}
	return nil
}

// endActiveTurnLocked is the single funnel for "this turn is over", whether
// by explicit command or clock expiry.
func (s *Session) endActiveTurnLocked() {
	s.stopClockLocked()

	if s.challenge != nil {
		ch := *s.challenge
		s.challenge = nil
		if ch.Before {
			// Resume the interrupted speaker with a fresh countdown.
			seat := s.paused.Seat
			s.paused = nil
			p, _ := s.seats.PlayerAt(seat)
			s.notifyGroup(fmt.Sprintf("▶ Back to %s (seat %d).", p.Name, seat))
			s.startTurnLocked(seat, s.cfg.TurnDuration)
			return
		}
		// An after-challenge turn consumed its spawner's deferred slot.
		s.advanceLocked()
		return
	}

	current, err := s.seq.Current()
	if err != nil {
		return
	}
	s.arbiter.ClearSeat(current)

	if challenger, ok := s.arbiter.TakeAfter(current); ok {
		seat, seated := s.seats.SeatOf(challenger.ID)
		if seated {
			s.seq.InsertNext(seat)
			s.challenge = &activeChallenge{Challenger: challenger, Seat: seat}
			s.notifyGroup(fmt.Sprintf("⚔ Challenge turn: %s (seat %d) speaks now.", challenger.Name, seat))
			s.startTurnLocked(seat, s.cfg.ChallengeDuration)
			return
		}
	}
	s.advanceLocked()
}

func (s *Session) advanceLocked() {
	next, done := s.seq.Advance()
	if done {
		s.phase = PhaseRoundComplete
		s.paused = nil
		s.notifyGroup("✅ The day round is over!")
		s.notifyModeratorLocked("✅ Round finished. Start the night phase when ready.")
		return
	}
	s.startTurnLocked(next, s.cfg.TurnDuration)
}

// startTurnLocked begins the countdown for a seat. Starting a turn cancels
// the previous clock and bumps the generation counter so callbacks from the
// old clock are discarded even if they were already in flight.
func (s *Session) startTurnLocked(seat int, duration time.Duration) {
	s.stopClockLocked()
	gen := s.clockGen

	p, _ := s.seats.PlayerAt(seat)
	s.updateTurnMessageLocked(seat, p, duration)

	s.clock = StartClock(duration, s.cfg.TickInterval,
		func(remaining time.Duration) { s.onTick(gen, seat, remaining) },
		func() { s.onExpire(gen) },
	)
	log.Debug().
		Int64("chat_id", s.chatID).
		Int("seat", seat).
		Dur("duration", duration).
		Msg("Turn started")
}

// stopClockLocked cancels the running clock and invalidates its callbacks.
func (s *Session) stopClockLocked() {
	if s.clock != nil {
		s.clock.Cancel()
		s.clock = nil
	}
	s.clockGen++
}

// onTick runs on the clock goroutine. Stale generations are dropped so a
// tick never races a turn change.
func (s *Session) onTick(gen uint64, seat int, remaining time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.clockGen || s.phase != PhaseRoundActive {
		return
	}
	p, _ := s.seats.PlayerAt(seat)
	s.updateTurnMessageLocked(seat, p, remaining)
}

// onExpire runs on the clock goroutine; expiry behaves exactly like the
// moderator ending the turn.
func (s *Session) onExpire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.clockGen || s.phase != PhaseRoundActive {
		return
	}
	s.notifyGroup("⏰ Time is up!")
	s.endActiveTurnLocked()
}

func (s *Session) updateTurnMessageLocked(seat int, p Player, remaining time.Duration) {
	secs := int(remaining.Round(time.Second).Seconds())
	if secs < 0 {
		secs = 0
	}
	text := fmt.Sprintf("⏱ Turn: %s (seat %d)\nTime: %02d:%02d", p.Name, seat, secs/60, secs%60)
	if err := s.notifier.UpdateTurnMessage(text); err != nil {
		log.Warn().Err(err).Int64("chat_id", s.chatID).Msg("Failed to update turn message")
	}
}

// ChallengeableSeat returns the seat a new challenge request may target.
func (s *Session) ChallengeableSeat() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challengeableSeatLocked()
}

// challengeableSeatLocked is the seat new challenge requests may target:
// the normal current speaker, the paused seat while a before-challenge
// turn runs, or the upcoming seat while an after-challenge turn runs.
func (s *Session) challengeableSeatLocked() (int, bool) {
	if s.challenge != nil {
		if s.challenge.Before {
			return s.paused.Seat, true
		}
		return s.seq.PeekNext()
	}
	seat, err := s.seq.Current()
	if err != nil {
		return 0, false
	}
	return seat, true
}
