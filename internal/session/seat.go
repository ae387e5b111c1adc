package session

import "sort"

// SeatRegistry maps players to numbered seats 1..capacity. Both directions
// of the mapping are kept in step so lookups never scan.
type SeatRegistry struct {
	capacity int
	bySeat   map[int]Player
	byPlayer map[int64]int
}

// NewSeatRegistry creates a registry with the given seat capacity.
func NewSeatRegistry(capacity int) *SeatRegistry {
	return &SeatRegistry{
		capacity: capacity,
		bySeat:   make(map[int]Player),
		byPlayer: make(map[int64]int),
	}
}

// Capacity returns the number of seats.
func (r *SeatRegistry) Capacity() int {
	return r.capacity
}

// Reserve claims seat for p. Reserving the seat p already holds releases it
// instead (toggle). If p holds a different seat, that seat is freed as part
// of the claim. The returned seat number is the one vacated by this call,
// or 0 if none was.
func (r *SeatRegistry) Reserve(p Player, seat int) (int, error) {
	if seat < 1 || seat > r.capacity {
		return 0, ErrSeatOutOfRange
	}
	if holder, ok := r.bySeat[seat]; ok {
		if holder.ID != p.ID {
			return 0, ErrSeatTaken
		}
		// Toggle: re-requesting one's own seat releases it.
		delete(r.bySeat, seat)
		delete(r.byPlayer, p.ID)
		return seat, nil
	}
	freed := 0
	if old, ok := r.byPlayer[p.ID]; ok {
		delete(r.bySeat, old)
		freed = old
	}
	r.bySeat[seat] = p
	r.byPlayer[p.ID] = seat
	return freed, nil
}

// Release frees whatever seat p holds and returns its number.
func (r *SeatRegistry) Release(p Player) (int, error) {
	seat, ok := r.byPlayer[p.ID]
	if !ok {
		return 0, ErrNotSeated
	}
	delete(r.bySeat, seat)
	delete(r.byPlayer, p.ID)
	return seat, nil
}

// SeatOf returns the seat held by the given player, if any.
func (r *SeatRegistry) SeatOf(playerID int64) (int, bool) {
	seat, ok := r.byPlayer[playerID]
	return seat, ok
}

// PlayerAt returns the player occupying the given seat, if any.
func (r *SeatRegistry) PlayerAt(seat int) (Player, bool) {
	p, ok := r.bySeat[seat]
	return p, ok
}

// OccupiedSeats returns all occupied seat numbers in ascending order.
func (r *SeatRegistry) OccupiedSeats() []int {
	seats := make([]int, 0, len(r.bySeat))
	for seat := range r.bySeat {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	return seats
}

// SeatedPlayers returns the seated players ordered by seat number.
func (r *SeatRegistry) SeatedPlayers() []Player {
	players := make([]Player, 0, len(r.bySeat))
	for _, seat := range r.OccupiedSeats() {
		players = append(players, r.bySeat[seat])
	}
	return players
}

// FreeSeat returns the lowest vacant seat number, or 0 if the registry is
// at capacity.
func (r *SeatRegistry) FreeSeat() int {
	for seat := 1; seat <= r.capacity; seat++ {
		if _, ok := r.bySeat[seat]; !ok {
			return seat
		}
	}
	return 0
}

// Len returns the number of seated players.
func (r *SeatRegistry) Len() int {
	return len(r.bySeat)
}
