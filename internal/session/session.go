package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"mafia-host-bot/internal/scenario"
)

// Phase is the lifecycle state of one game session.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseRolesDistributed
	PhaseRoundActive
	PhaseRoundComplete
	PhaseNight
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseRolesDistributed:
		return "roles-distributed"
	case PhaseRoundActive:
		return "round-active"
	case PhaseRoundComplete:
		return "round-complete"
	case PhaseNight:
		return "night"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// pausedTurn snapshots a normal turn interrupted by a before-challenge so
// it can resume once the challenge turn ends.
type pausedTurn struct {
	Seat int
}

// activeChallenge is the challenge turn currently running, if any. Before
// marks a turn that pre-empted the paused speaker; otherwise the turn was
// queued to run after its spawning speaker.
type activeChallenge struct {
	Challenger Player
	Seat       int
	Before     bool
}

// Session is the game engine for one group chat. All operations, including
// clock callbacks, are serialized by a single mutex; sessions of different
// chats share no state.
type Session struct {
	mu sync.Mutex

	chatID   int64
	cfg      Config
	notifier Notifier
	admins   AdminDirectory
	store    ScenarioStore

	phase      Phase
	scenario   *scenario.Scenario
	moderator  *Player
	seats      *SeatRegistry
	waiting    []Player
	roles      RoleAssignment
	rolesDealt bool
	seq        *Sequencer
	arbiter    *Arbiter

	clock     *Clock
	clockGen  uint64
	paused    *pausedTurn
	challenge *activeChallenge
}

// New creates a session for the given chat. The scenario store is consulted
// at selection time; admins at moderator-selection and cancellation time.
func New(chatID int64, cfg Config, notifier Notifier, admins AdminDirectory, store ScenarioStore) *Session {
	return &Session{
		chatID:   chatID,
		cfg:      cfg.withDefaults(),
		notifier: notifier,
		admins:   admins,
		store:    store,
		phase:    PhaseLobby,
		seats:    NewSeatRegistry(0),
		seq:      NewSequencer(),
		arbiter:  NewArbiter(),
	}
}

// ChatID returns the chat this session belongs to.
func (s *Session) ChatID() int64 {
	return s.chatID
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SelectScenario picks the named scenario from the store. Allowed only in
// the lobby. Players seated beyond the new capacity are moved to the
// waiting list, preserving seat order.
func (s *Session) SelectScenario(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return ErrGameInProgress
	}
	scenarios, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load scenarios: %w", err)
	}
	sc, ok := scenarios[name]
	if !ok {
		return ErrUnknownScenario
	}

	prev := s.seats.SeatedPlayers()
	prevSeats := make(map[int64]int, len(prev))
	for _, p := range prev {
		prevSeats[p.ID], _ = s.seats.SeatOf(p.ID)
	}

	s.scenario = &sc
	s.seats = NewSeatRegistry(sc.Capacity())
	for _, p := range prev {
		if seat := prevSeats[p.ID]; seat <= sc.Capacity() {
			s.seats.Reserve(p, seat)
		} else {
			s.waiting = append(s.waiting, p)
		}
	}

	log.Info().
		Int64("chat_id", s.chatID).
		Str("scenario", sc.Name).
		Int("capacity", sc.Capacity()).
		Msg("Scenario selected")
	return nil
}

// SelectModerator designates the session moderator. Both the candidate and
// the requester must be group admins; allowed only in the lobby.
func (s *Session) SelectModerator(candidate, requestedBy Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return ErrGameInProgress
	}
	admins, err := s.admins.ListAdmins()
	if err != nil {
		return fmt.Errorf("failed to list group admins: %w", err)
	}
	if !containsPlayer(admins, requestedBy.ID) {
		return ErrNotAuthorized
	}
	if !containsPlayer(admins, candidate.ID) {
		return ErrNotAdmin
	}

	s.moderator = &candidate
	log.Info().
		Int64("chat_id", s.chatID).
		Int64("moderator_id", candidate.ID).
		Msg("Moderator selected")
	return nil
}

// ToggleChallenges flips the session-wide challenge toggle and returns the
// new state. Moderator only.
func (s *Session) ToggleChallenges(requestedBy Player) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModeratorLocked(requestedBy); err != nil {
		return false, err
	}
	s.arbiter.SetEnabled(!s.arbiter.Enabled())
	return s.arbiter.Enabled(), nil
}

// BeginNight moves a completed day round into the night phase. Moderator
// only.
func (s *Session) BeginNight(requestedBy Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireModeratorLocked(requestedBy); err != nil {
		return err
	}
	if s.phase != PhaseRoundComplete {
		return ErrWrongPhase
	}
	s.phase = PhaseNight
	s.notifyGroup("🌙 Night falls. The moderator will run the night actions.")
	return nil
}

// Cancel tears the session down. Only the moderator or a group admin may
// cancel; the cancelled state is terminal.
func (s *Session) Cancel(requestedBy Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseCancelled {
		return ErrSessionCancelled
	}
	if s.moderator == nil || s.moderator.ID != requestedBy.ID {
		admins, err := s.admins.ListAdmins()
		if err != nil {
			return fmt.Errorf("failed to list group admins: %w", err)
		}
		if !containsPlayer(admins, requestedBy.ID) {
			return ErrNotAuthorized
		}
	}

	s.stopClockLocked()
	s.phase = PhaseCancelled
	s.scenario = nil
	s.moderator = nil
	s.seats = NewSeatRegistry(0)
	s.waiting = nil
	s.roles = nil
	s.seq = NewSequencer()
	s.arbiter = NewArbiter()
	s.paused = nil
	s.challenge = nil

	log.Info().Int64("chat_id", s.chatID).Msg("Game cancelled")
	s.notifyGroup("🛑 The game has been cancelled.")
	return nil
}

// Moderator returns the designated moderator, if one has been selected.
func (s *Session) Moderator() (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moderator == nil {
		return Player{}, false
	}
	return *s.moderator, true
}

// CurrentSpeaker returns the player and seat whose turn is running,
// including challenge turns.
func (s *Session) CurrentSpeaker() (Player, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.activeSeatLocked()
	if !ok {
		return Player{}, 0, false
	}
	p, ok := s.seats.PlayerAt(seat)
	return p, seat, ok
}

// RosterEntry is one seated player in a lobby snapshot.
type RosterEntry struct {
	Seat int
	Name string
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	Phase        Phase
	ScenarioName string
	MinPlayers   int
	Capacity     int
	Moderator    string
	Seated       []RosterEntry
	Waiting      []string
	ChallengesOn bool
}

// Snapshot captures the state needed to render the lobby message.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:        s.phase,
		ChallengesOn: s.arbiter.Enabled(),
	}
	if s.scenario != nil {
		snap.ScenarioName = s.scenario.Name
		snap.MinPlayers = s.scenario.MinPlayers
		snap.Capacity = s.scenario.Capacity()
	}
	if s.moderator != nil {
		snap.Moderator = s.moderator.Name
	}
	for _, seat := range s.seats.OccupiedSeats() {
		p, _ := s.seats.PlayerAt(seat)
		snap.Seated = append(snap.Seated, RosterEntry{Seat: seat, Name: p.Name})
	}
	for _, p := range s.waiting {
		snap.Waiting = append(snap.Waiting, p.Name)
	}
	return snap
}

// activeSeatLocked is the seat currently speaking: the challenge seat while
// a challenge turn runs, otherwise the sequencer's current seat.
func (s *Session) activeSeatLocked() (int, bool) {
	if s.phase != PhaseRoundActive {
		return 0, false
	}
	if s.challenge != nil {
		return s.challenge.Seat, true
	}
	seat, err := s.seq.Current()
	if err != nil {
		return 0, false
	}
	return seat, true
}

func (s *Session) requireModeratorLocked(requestedBy Player) error {
	if s.phase == PhaseCancelled {
		return ErrSessionCancelled
	}
	if s.moderator == nil {
		return ErrNoModerator
	}
	if s.moderator.ID != requestedBy.ID {
		return ErrNotModerator
	}
	return nil
}

// notifyGroup posts to the group, logging delivery failures instead of
// propagating them; transient chat failures never fail an operation.
func (s *Session) notifyGroup(text string) {
	if err := s.notifier.NotifyGroup(text); err != nil {
		log.Warn().Err(err).Int64("chat_id", s.chatID).Msg("Failed to notify group")
	}
}

func containsPlayer(players []Player, id int64) bool {
	for _, p := range players {
		if p.ID == id {
			return true
		}
	}
	return false
}
