package session

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Join adds a player to the game. While seats remain the player is given
// the lowest free seat; once the scenario's capacity is reached, joiners
// queue on the waiting list and are promoted in FIFO order when a seat
// frees up. Returns the assigned seat, or 0 with queued=true.
func (s *Session) Join(p Player) (seat int, queued bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return 0, false, ErrGameInProgress
	}
	if s.scenario == nil {
		return 0, false, ErrNoScenario
	}
	if s.isJoinedLocked(p.ID) {
		return 0, false, ErrAlreadyJoined
	}

	free := s.seats.FreeSeat()
	if free == 0 {
		s.waiting = append(s.waiting, p)
		log.Debug().Int64("chat_id", s.chatID).Int64("user_id", p.ID).Msg("Player queued on waiting list")
		return 0, true, nil
	}
	if _, err := s.seats.Reserve(p, free); err != nil {
		return 0, false, err
	}
	return free, false, nil
}

// Leave removes a player from the game. Leaving a seat promotes the head
// of the waiting list into it.
func (s *Session) Leave(p Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return ErrGameInProgress
	}
	for i, w := range s.waiting {
		if w.ID == p.ID {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return nil
		}
	}
	seat, err := s.seats.Release(p)
	if err != nil {
		return ErrNotJoined
	}
	s.promoteLocked(seat)
	return nil
}

// TakeSeat lets a joined player claim a specific seat, with the registry's
// toggle and reseat semantics. A player who toggles their own seat off goes
// to the back of the waiting list; whoever was already waiting is promoted
// into any seat this call vacates.
func (s *Session) TakeSeat(p Player, seat int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return ErrGameInProgress
	}
	if s.scenario == nil {
		return ErrNoScenario
	}
	if !s.isJoinedLocked(p.ID) {
		return ErrNotJoined
	}

	freed, err := s.seats.Reserve(p, seat)
	if err != nil {
		return err
	}
	// A waiting player who claimed a free seat is no longer waiting.
	for i, w := range s.waiting {
		if w.ID == p.ID {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			break
		}
	}
	if _, seated := s.seats.SeatOf(p.ID); !seated {
		// Toggle release: promote first so p does not reclaim the seat
		// they just gave up, then queue p at the tail.
		if freed != 0 {
			s.promoteLocked(freed)
		}
		s.waiting = append(s.waiting, p)
		return nil
	}
	if freed != 0 {
		s.promoteLocked(freed)
	}
	return nil
}

// DistributeRoles shuffles the scenario's roles over the seated players and
// privately delivers each. Allowed exactly once per game, by the moderator,
// from the lobby. Undeliverable role messages are reported to the moderator
// and do not block distribution.
func (s *Session) DistributeRoles(requestedBy Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModeratorLocked(requestedBy); err != nil {
		return err
	}
	// The single-shot guard outranks the phase guard: a repeat call after
	// the first distribution must name the actual reason.
	if s.rolesDealt {
		return ErrRolesAlreadyDealt
	}
	if s.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if s.scenario == nil {
		return ErrNoScenario
	}
	if s.seats.Len() < s.scenario.MinPlayers {
		return ErrTooFewPlayers
	}

	assignment, err := DealRoles(s.seats.SeatedPlayers(), s.scenario.Roles, s.cfg.FillerRole)
	if err != nil {
		return err
	}
	s.roles = assignment
	s.rolesDealt = true
	s.phase = PhaseRolesDistributed

	for _, card := range assignment {
		if err := s.notifier.NotifyPlayer(card.Player, fmt.Sprintf("🎭 Your role: %s", card.Role)); err != nil {
			log.Warn().
				Err(err).
				Int64("chat_id", s.chatID).
				Int64("user_id", card.Player.ID).
				Msg("Role message undeliverable")
			s.notifyModeratorLocked(fmt.Sprintf("⚠ Cannot reach %s with their role.", card.Player.Name))
		}
	}
	s.notifyModeratorLocked(s.roleSummaryLocked())

	log.Info().
		Int64("chat_id", s.chatID).
		Int("players", len(assignment)).
		Msg("Roles distributed")
	return nil
}

// Roles returns the role assignment once distribution has happened.
func (s *Session) Roles() (RoleAssignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rolesDealt {
		return nil, false
	}
	out := make(RoleAssignment, len(s.roles))
	copy(out, s.roles)
	return out, true
}

// promoteLocked assigns the freed seat to the head of the waiting list.
func (s *Session) promoteLocked(seat int) {
	if len(s.waiting) == 0 {
		return
	}
	head := s.waiting[0]
	s.waiting = s.waiting[1:]
	if _, err := s.seats.Reserve(head, seat); err != nil {
		log.Error().
			Err(err).
			Int64("chat_id", s.chatID).
			Int("seat", seat).
			Msg("Failed to promote waiting player")
		return
	}
	s.notifyGroup(fmt.Sprintf("🪑 %s takes seat %d from the waiting list.", head.Name, seat))
}

func (s *Session) isJoinedLocked(id int64) bool {
	if _, ok := s.seats.SeatOf(id); ok {
		return true
	}
	for _, w := range s.waiting {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) roleSummaryLocked() string {
	var b strings.Builder
	b.WriteString("📜 Roles this game:\n")
	for _, card := range s.roles {
		seat, _ := s.seats.SeatOf(card.Player.ID)
		fmt.Fprintf(&b, "%d. %s → %s\n", seat, card.Player.Name, card.Role)
	}
	return b.String()
}

func (s *Session) notifyModeratorLocked(text string) {
	if s.moderator == nil {
		return
	}
	if err := s.notifier.NotifyPlayer(*s.moderator, text); err != nil {
		log.Warn().Err(err).Int64("chat_id", s.chatID).Msg("Failed to notify moderator")
	}
}
