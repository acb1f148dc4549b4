package game

import (
	"fmt"
	"sync"
	"time"
)

// Ownership records who holds a card and since when.
type Ownership struct {
	PlayerID   int64     `json:"playerId"`
	SelectedAt time.Time `json:"selectedAt"`
}

// GridEntry is one row of the ownership snapshot sent to clients. Owner is
// nil for an unowned card.
type GridEntry struct {
	CardID int    `json:"cardId"`
	Owner  *int64 `json:"owner"`
}

// Registry is the ownership table for the 1..TotalCards id space. All
// mutation goes through one mutex, which is what makes Select at-most-once:
// two players racing for the same card within the same tick see exactly one
// winner.
type Registry struct {
	mu           sync.Mutex
	totalCards   int
	maxPerPlayer int
	open         bool
	owners       map[int]Ownership
	byPlayer     map[int64][]int
}

// NewRegistry builds an empty registry over [1, totalCards] with the given
// per-player card cap.
func NewRegistry(totalCards, maxPerPlayer int) *Registry {
	return &Registry{
		totalCards:   totalCards,
		maxPerPlayer: maxPerPlayer,
		owners:       make(map[int]Ownership),
		byPlayer:     make(map[int64][]int),
	}
}

// Open enables selection; called by the lifecycle on entering card selection.
func (r *Registry) Open() {
	r.mu.Lock()
	r.open = true
	r.mu.Unlock()
}

// Close disables selection; called on leaving card selection.
func (r *Registry) Close() {
	r.mu.Lock()
	r.open = false
	r.mu.Unlock()
}

// Select marks cardID owned by playerID. It fails without mutating state
// when the selection window is closed, the card id is invalid, the card is
// already owned, or the player is at the per-player maximum.
func (r *Registry) Select(playerID int64, cardID int, now time.Time) error {
	if cardID < 1 || cardID > r.totalCards {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidIdentifier, cardID, r.totalCards)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return ErrNotInSelectionPhase
	}
	if owner, taken := r.owners[cardID]; taken {
		if owner.PlayerID == playerID {
			// Duplicate delivery of the player's own selection is harmless.
			return nil
		}
		return ErrAlreadyTaken
	}
	if len(r.byPlayer[playerID]) >= r.maxPerPlayer {
		return ErrPlayerAtMaxCards
	}

	r.owners[cardID] = Ownership{PlayerID: playerID, SelectedAt: now}
	r.byPlayer[playerID] = append(r.byPlayer[playerID], cardID)
	return nil
}

// Release clears ownership of a single card.
func (r *Registry) Release(cardID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	own, ok := r.owners[cardID]
	if !ok {
		return
	}
	delete(r.owners, cardID)
	ids := r.byPlayer[own.PlayerID]
	for i, id := range ids {
		if id == cardID {
			r.byPlayer[own.PlayerID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.byPlayer[own.PlayerID]) == 0 {
		delete(r.byPlayer, own.PlayerID)
	}
}

// ReleaseAll clears the whole table; used at round reset so card numbers are
// reusable across rounds.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = make(map[int]Ownership)
	r.byPlayer = make(map[int64][]int)
}

// Owner reports the current holder of cardID.
func (r *Registry) Owner(cardID int) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	own, ok := r.owners[cardID]
	return own.PlayerID, ok
}

// OwnedBy returns the card ids held by playerID.
func (r *Registry) OwnedBy(playerID int64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.byPlayer[playerID]...)
}

// Owners returns the full ownership table as a copy.
func (r *Registry) Owners() map[int]Ownership {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]Ownership, len(r.owners))
	for id, own := range r.owners {
		out[id] = own
	}
	return out
}

// TakenCount reports how many cards are currently owned.
func (r *Registry) TakenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

// AvailableCount reports how many cards are currently unowned.
func (r *Registry) AvailableCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalCards - len(r.owners)
}

// Available returns the unowned card ids in ascending order.
func (r *Registry) Available() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, r.totalCards-len(r.owners))
	for id := 1; id <= r.totalCards; id++ {
		if _, taken := r.owners[id]; !taken {
			out = append(out, id)
		}
	}
	return out
}

// PlayersWithCards reports how many distinct players hold at least one card.
func (r *Registry) PlayersWithCards() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPlayer)
}

// Snapshot renders the table as grid entries for broadcast and persistence.
func (r *Registry) Snapshot() []GridEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GridEntry, r.totalCards)
	for id := 1; id <= r.totalCards; id++ {
		entry := GridEntry{CardID: id}
		if own, taken := r.owners[id]; taken {
			pid := own.PlayerID
			entry.Owner = &pid
		}
		out[id-1] = entry
	}
	return out
}

// restore loads an ownership table from a persisted snapshot. Selection
// window state is not part of the snapshot; the lifecycle reopens it when
// appropriate.
func (r *Registry) restore(owners map[int]Ownership) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = make(map[int]Ownership, len(owners))
	r.byPlayer = make(map[int64][]int)
	for id, own := range owners {
		if id < 1 || id > r.totalCards {
			continue
		}
		r.owners[id] = own
		r.byPlayer[own.PlayerID] = append(r.byPlayer[own.PlayerID], id)
	}
}
