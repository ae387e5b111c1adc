package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mafia-host-bot/internal/scenario"
)

// fakeNotifier records everything the session sends.
type fakeNotifier struct {
	mu          sync.Mutex
	group       []string
	turns       []string
	private     map[int64][]string
	unreachable map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		private:     make(map[int64][]string),
		unreachable: make(map[int64]bool),
	}
}

func (f *fakeNotifier) NotifyGroup(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.group = append(f.group, text)
	return nil
}

func (f *fakeNotifier) NotifyPlayer(p Player, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unreachable[p.ID] {
		return errors.New("blocked by user")
	}
	f.private[p.ID] = append(f.private[p.ID], text)
	return nil
}

func (f *fakeNotifier) UpdateTurnMessage(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, text)
	return nil
}

func (f *fakeNotifier) privateTo(id int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.private[id]...)
}

func (f *fakeNotifier) groupMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.group...)
}

// fakeAdmins is a static admin directory.
type fakeAdmins struct {
	admins []Player
}

func (f *fakeAdmins) ListAdmins() ([]Player, error) {
	return f.admins, nil
}

// fakeStore serves scenarios from memory.
type fakeStore struct {
	scenarios map[string]scenario.Scenario
}

func (f *fakeStore) Load() (map[string]scenario.Scenario, error) {
	out := make(map[string]scenario.Scenario, len(f.scenarios))
	for name, sc := range f.scenarios {
		sc.Name = name
		out[name] = sc
	}
	return out, nil
}

func (f *fakeStore) Save(scenarios map[string]scenario.Scenario) error {
	f.scenarios = scenarios
	return nil
}

var (
	testModerator = Player{ID: 99, Name: "Mod"}
	testAdmin     = Player{ID: 98, Name: "Admin"}
)

func testPlayer(i int) Player {
	return Player{ID: int64(i), Name: fmt.Sprintf("Player %d", i)}
}

// longConfig keeps the clock out of the way so tests drive turns manually.
func longConfig() Config {
	return Config{
		TurnDuration:      time.Hour,
		ChallengeDuration: time.Hour,
		TickInterval:      time.Hour,
		FillerRole:        "Citizen",
	}
}

func newTestSession(t *testing.T, cfg Config) (*Session, *fakeNotifier) {
	t.Helper()
	notifier := newFakeNotifier()
	store := &fakeStore{scenarios: map[string]scenario.Scenario{
		"classic": {
			MinPlayers: 5,
			Roles:      []string{"Mafia", "Mafia", "Citizen", "Citizen", "Citizen"},
		},
	}}
	admins := &fakeAdmins{admins: []Player{testModerator, testAdmin}}
	sess := New(1, cfg, notifier, admins, store)
	t.Cleanup(func() { _ = sess.Cancel(testAdmin) })
	return sess, notifier
}

// seatedSession returns a session with the classic scenario selected, the
// moderator picked, and five players on seats 1..5.
func seatedSession(t *testing.T, cfg Config) (*Session, *fakeNotifier) {
	t.Helper()
	sess, notifier := newTestSession(t, cfg)
	require.NoError(t, sess.SelectScenario("classic"))
	require.NoError(t, sess.SelectModerator(testModerator, testAdmin))
	for i := 1; i <= 5; i++ {
		seat, queued, err := sess.Join(testPlayer(i))
		require.NoError(t, err)
		require.False(t, queued)
		require.Equal(t, i, seat)
	}
	return sess, notifier
}

func speakerSeat(t *testing.T, sess *Session) int {
	t.Helper()
	_, seat, ok := sess.CurrentSpeaker()
	require.True(t, ok, "no active speaker")
	return seat
}

func TestLobbyGuards(t *testing.T) {
	sess, _ := newTestSession(t, longConfig())

	// No scenario yet.
	_, _, err := sess.Join(testPlayer(1))
	assert.ErrorIs(t, err, ErrNoScenario)

	assert.ErrorIs(t, sess.SelectScenario("missing"), ErrUnknownScenario)
	require.NoError(t, sess.SelectScenario("classic"))

	_, _, err = sess.Join(testPlayer(1))
	require.NoError(t, err)
	_, _, err = sess.Join(testPlayer(1))
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	assert.ErrorIs(t, sess.Leave(testPlayer(2)), ErrNotJoined)

	// A non-admin may not pick the moderator, and the moderator must be
	// an admin.
	assert.ErrorIs(t, sess.SelectModerator(testModerator, testPlayer(1)), ErrNotAuthorized)
	assert.ErrorIs(t, sess.SelectModerator(testPlayer(1), testAdmin), ErrNotAdmin)
	require.NoError(t, sess.SelectModerator(testModerator, testAdmin))
}

func TestTakeSeatSemantics(t *testing.T) {
	sess, _ := newTestSession(t, longConfig())
	require.NoError(t, sess.SelectScenario("classic"))

	alice := testPlayer(1)
	_, _, err := sess.Join(alice)
	require.NoError(t, err)

	// Move to seat 4, then toggle it off.
	require.NoError(t, sess.TakeSeat(alice, 4))
	snap := sess.Snapshot()
	require.Len(t, snap.Seated, 1)
	assert.Equal(t, 4, snap.Seated[0].Seat)

	require.NoError(t, sess.TakeSeat(alice, 4))
	snap = sess.Snapshot()
	assert.Empty(t, snap.Seated)
	assert.Equal(t, []string{alice.Name}, snap.Waiting)

	// Claiming a free seat from the waiting list reseats the player.
	require.NoError(t, sess.TakeSeat(alice, 2))
	snap = sess.Snapshot()
	require.Len(t, snap.Seated, 1)
	assert.Equal(t, 2, snap.Seated[0].Seat)
	assert.Empty(t, snap.Waiting)
}

func TestWaitingListPromotion(t *testing.T) {
	sess, notifier := seatedSession(t, longConfig())

	sixth := testPlayer(6)
	seat, queued, err := sess.Join(sixth)
	require.NoError(t, err)
	assert.True(t, queued)
	assert.Zero(t, seat)

	seventh := testPlayer(7)
	_, queued, err = sess.Join(seventh)
	require.NoError(t, err)
	assert.True(t, queued)

	// Seat 2 frees up; the head of the queue takes it, FIFO.
	require.NoError(t, sess.Leave(testPlayer(2)))
	snap := sess.Snapshot()
	names := map[int]string{}
	for _, e := range snap.Seated {
		names[e.Seat] = e.Name
	}
	assert.Equal(t, sixth.Name, names[2])
	assert.Equal(t, []string{seventh.Name}, snap.Waiting)

	found := false
	for _, msg := range notifier.groupMessages() {
		if strings.Contains(msg, sixth.Name) && strings.Contains(msg, "seat 2") {
			found = true
		}
	}
	assert.True(t, found, "promotion was not announced")
}

func TestDistributeRoles(t *testing.T) {
	sess, notifier := seatedSession(t, longConfig())

	assert.ErrorIs(t, sess.DistributeRoles(testPlayer(1)), ErrNotModerator)
	require.NoError(t, sess.DistributeRoles(testModerator))
	assert.Equal(t, PhaseRolesDistributed, sess.Phase())

	// Exactly two mafia, three citizens.
	assignment, ok := sess.Roles()
	require.True(t, ok)
	counts := map[string]int{}
	for _, card := range assignment {
		counts[card.Role]++
	}
	assert.Equal(t, map[string]int{"Mafia": 2, "Citizen": 3}, counts)

	// Every player got exactly one private role message.
	for i := 1; i <= 5; i++ {
		msgs := notifier.privateTo(int64(i))
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0], "Your role")
	}

	// The moderator got the summary.
	modMsgs := notifier.privateTo(testModerator.ID)
	require.NotEmpty(t, modMsgs)
	assert.Contains(t, modMsgs[len(modMsgs)-1], "Roles this game")

	// Single-shot: a second distribution is refused.
	assert.ErrorIs(t, sess.DistributeRoles(testModerator), ErrRolesAlreadyDealt)

	// The lobby is closed now.
	_, _, err := sess.Join(testPlayer(8))
	assert.ErrorIs(t, err, ErrGameInProgress)
	assert.ErrorIs(t, sess.Leave(testPlayer(1)), ErrGameInProgress)
}

func TestDistributeRolesUndeliverable(t *testing.T) {
	sess, notifier := seatedSession(t, longConfig())
	notifier.unreachable[3] = true

	require.NoError(t, sess.DistributeRoles(testModerator))

	// Distribution went through; the moderator was told about player 3.
	assert.Equal(t, PhaseRolesDistributed, sess.Phase())
	found := false
	for _, msg := range notifier.privateTo(testModerator.ID) {
		if strings.Contains(msg, "Cannot reach") && strings.Contains(msg, "Player 3") {
			found = true
		}
	}
	assert.True(t, found, "moderator was not told about the undeliverable role")
}

func TestFullRound(t *testing.T) {
	sess, _ := seatedSession(t, longConfig())
	require.NoError(t, sess.DistributeRoles(testModerator))

	assert.ErrorIs(t, sess.StartRound(testPlayer(1), 0), ErrNotModerator)
	require.NoError(t, sess.StartRound(testModerator, 3))
	assert.Equal(t, PhaseRoundActive, sess.Phase())

	// A repeat deal mid-round still names the real reason.
	assert.ErrorIs(t, sess.DistributeRoles(testModerator), ErrRolesAlreadyDealt)

	// Lead seat 3 yields rotation 3,4,5,1,2.
	for _, want := range []int{3, 4, 5, 1, 2} {
		require.Equal(t, want, speakerSeat(t, sess))
		require.NoError(t, sess.EndTurn(want, testModerator))
	}
	assert.Equal(t, PhaseRoundComplete, sess.Phase())

	// No wraparound; a new round needs the night phase first.
	assert.ErrorIs(t, sess.StartRound(testModerator, 0), ErrWrongPhase)
	require.NoError(t, sess.BeginNight(testModerator))
	assert.Equal(t, PhaseNight, sess.Phase())
	require.NoError(t, sess.StartRound(testModerator, 0))
	assert.Equal(t, 1, speakerSeat(t, sess))
}

func TestEndTurnGuards(t *testing.T) {
	sess, _ := seatedSession(t, longConfig())
	require.NoError(t, sess.DistributeRoles(testModerator))
	require.NoError(t, sess.StartRound(testModerator, 0))

	// Seat 1 speaks. The wrong seat and the wrong requester are refused.
	assert.ErrorIs(t, sess.EndTurn(2, testModerator), ErrNotYourTurn)
	assert.ErrorIs(t, sess.EndTurn(1, testPlayer(4)), ErrNotAuthorized)

	// The active speaker may end their own turn.
	require.NoError(t, sess.EndTurn(1, testPlayer(1)))
	assert.Equal(t, 2, speakerSeat(t, sess))
}

func TestBeforeChallenge(t *testing.T) {
	sess, _ := seatedSession(t, longConfig())
	require.NoError(t, sess.DistributeRoles(testModerator))
	require.NoError(t, sess.StartRound(testModerator, 3))

	// Seat 5's player challenges the speaker on seat 3.
	assert.ErrorIs(t, sess.RequestChallenge(testPlayer(3), 3), ErrSelfChallenge)
	require.NoError(t, sess.RequestChallenge(testPlayer(5), 3))

	// Seat 3's player accepts "before": seat 5 speaks immediately.
	require.NoError(t, sess.ResolveChallenge(3, 5, DecisionBefore, testPlayer(3)))
	assert.Equal(t, 5, speakerSeat(t, sess))

	// Requests during the challenge turn still target the paused seat,
	// and no second before-challenge may start.
	target, ok := sess.ChallengeableSeat()
	require.True(t, ok)
	assert.Equal(t, 3, target)
	require.NoError(t, sess.RequestChallenge(testPlayer(2), 3))
	assert.ErrorIs(t, sess.ResolveChallenge(3, 2, DecisionBefore, testModerator), ErrChallengeTurnActive)

	// Ending the challenge turn resumes seat 3, then the rotation
	// continues to seat 4.
	require.NoError(t, sess.EndTurn(5, testModerator))
	assert.Equal(t, 3, speakerSeat(t, sess))
	require.NoError(t, sess.EndTurn(3, testModerator))
	assert.Equal(t, 4, speakerSeat(t, sess))
}

func TestAfterChallenge(t *testing.T) {
	sess, _ := seatedSession(t, longConfig())
	require.NoError(t, sess.DistributeRoles(testModerator))
	require.NoError(t, sess.StartRound(testModerator, 3))
	require.NoError(t, sess.EndTurn(3, testModerator))
	require.Equal(t, 4, speakerSeat(t, sess))

	// Seat 1's player is granted an after-challenge against seat 4.
	require.NoError(t, sess.RequestChallenge(testPlayer(1), 4))
	require.NoError(t, sess.ResolveChallenge(4, 1, DecisionAfter, testPlayer(4)))

	// Ending seat 4's turn starts the challenge turn instead of
	// advancing.
	require.NoError(t, sess.EndTurn(4, testModerator))
	assert.Equal(t, 1, speakerSeat(t, sess))

	// Ending the challenge turn advances to seat 5, not back to seat 1.
	require.NoError(t, sess.EndTurn(1, testModerator))
	assert.Equal(t, 5, speakerSeat(t, sess))

	// The after-challenge fired exactly once and consumed no rotation
	// slot: the remaining seats are still 1 and 2.
	require.NoError(t, sess.EndTurn(5, testModerator))
	assert.Equal(t, 1, speakerSeat(t, sess))
	require.NoError(t, sess.EndTurn(1, testModerator))
	assert.Equal(t, 2, speakerSeat(t, sess))
	require.NoError(t, sess.EndTurn(2, testModerator))
	assert.Equal(t, PhaseRoundComplete, sess.Phase())
}

func TestChallengeToggle(t *testing.T) {
	sess, _ := seatedSession(t, longConfig())
	require.NoError(t, sess.DistributeRoles(testModerator))
	require.NoError(t, sess.StartRound(testModerator, 0))

	_, err := sess.ToggleChallenges(testPlayer(1))
	assert.ErrorIs(t, err, ErrNotModerator)

	enabled, err := sess.ToggleChallenges(testModerator)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.ErrorIs(t, sess.RequestChallenge(testPlayer(2), 1), ErrChallengesDisabled)

	enabled, err = sess.ToggleChallenges(testModerator)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.NoError(t, sess.RequestChallenge(testPlayer(2), 1))
}

func TestChallengeTargetValidation(t *testing.T) {
	sess, _ := seatedSession(t, longConfig())
	require.NoError(t, sess.DistributeRoles(testModerator))
	require.NoError(t, sess.StartRound(testModerator, 0))

	// Only the active seat can be challenged, and only by seated players.
	assert.ErrorIs(t, sess.RequestChallenge(testPlayer(2), 3), ErrNotActiveSeat)
	assert.ErrorIs(t, sess.RequestChallenge(Player{ID: 42, Name: "Ghost"}, 1), ErrNotAPlayer)

	// Resolution requires the target player or the moderator.
	require.NoError(t, sess.RequestChallenge(testPlayer(2), 1))
	assert.ErrorIs(t, sess.ResolveChallenge(1, 2, DecisionBefore, testPlayer(3)), ErrNotAuthorized)
	require.NoError(t, sess.ResolveChallenge(1, 2, DecisionReject, testModerator))

	// A rejected request leaves the turn untouched.
	assert.Equal(t, 1, speakerSeat(t, sess))
}

func TestTurnExpiryAdvancesRound(t *testing.T) {
	cfg := Config{
		TurnDuration:      40 * time.Millisecond,
		ChallengeDuration: 40 * time.Millisecond,
		TickInterval:      10 * time.Millisecond,
		FillerRole:        "Citizen",
	}
	sess, _ := seatedSession(t, cfg)
	require.NoError(t, sess.DistributeRoles(testModerator))
	require.NoError(t, sess.StartRound(testModerator, 0))

	// Expiry funnels into the same end-of-turn path as /next, so the
	// round finishes on its own.
	require.Eventually(t, func() bool {
		return sess.Phase() == PhaseRoundComplete
	}, 3*time.Second, 10*time.Millisecond)
}

func TestCancel(t *testing.T) {
	sess, _ := seatedSession(t, longConfig())

	assert.ErrorIs(t, sess.Cancel(testPlayer(1)), ErrNotAuthorized)

	// A group admin who is not the moderator may cancel.
	require.NoError(t, sess.Cancel(testAdmin))
	assert.Equal(t, PhaseCancelled, sess.Phase())

	_, _, err := sess.Join(testPlayer(1))
	assert.ErrorIs(t, err, ErrGameInProgress)
	assert.ErrorIs(t, sess.DistributeRoles(testModerator), ErrSessionCancelled)
	assert.ErrorIs(t, sess.Cancel(testAdmin), ErrSessionCancelled)
}

func TestCancelDuringRoundStopsClock(t *testing.T) {
	cfg := Config{
		TurnDuration:      30 * time.Millisecond,
		ChallengeDuration: 30 * time.Millisecond,
		TickInterval:      10 * time.Millisecond,
		FillerRole:        "Citizen",
	}
	sess, _ := seatedSession(t, cfg)
	require.NoError(t, sess.DistributeRoles(testModerator))
	require.NoError(t, sess.StartRound(testModerator, 0))
	require.NoError(t, sess.Cancel(testModerator))

	// A stale expiry must not resurrect the round.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, PhaseCancelled, sess.Phase())
}
