package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPrizePercent is the share of the pot paid out when a pattern has no
// configured percentage.
const DefaultPrizePercent = 0.8

// Config carries every tunable the lifecycle consumes. Values come from the
// environment; the core never reads env vars itself.
type Config struct {
	Stake               int
	TotalCards          int
	MaxCardsPerPlayer   int
	SelectionSeconds    int
	DrawIntervalSeconds int
	DrawBound           int
	RestartDelaySeconds int
	Patterns            []Pattern
	PrizePercents       map[Pattern]float64
}

func (c Config) prizePercent(p Pattern) float64 {
	if v, ok := c.PrizePercents[p]; ok {
		return v
	}
	return DefaultPrizePercent
}

func (c Config) patternEnabled(p Pattern) bool {
	for _, q := range c.Patterns {
		if q == p {
			return true
		}
	}
	return false
}

// Draw is one drawn number with its draw timestamp.
type Draw struct {
	Number int       `json:"number"`
	At     time.Time `json:"at"`
}

// Winner records the first accepted claim of a round.
type Winner struct {
	PlayerID int64   `json:"playerId"`
	CardID   int     `json:"cardId"`
	Pattern  Pattern `json:"pattern"`
	Prize    float64 `json:"prize"`
}

// Player is a joined participant.
type Player struct {
	ID    int64
	Name  string
	Ready bool
}

// Status is a read-only view of the round for REST and status_request.
type Status struct {
	RoundID        string  `json:"roundId"`
	RoundNumber    int     `json:"roundNumber"`
	Phase          Phase   `json:"phase"`
	Countdown      int     `json:"countdown"`
	Elapsed        int     `json:"elapsed"`
	Drawn          []int   `json:"drawn"`
	TakenCount     int     `json:"takenCount"`
	AvailableCount int     `json:"availableCount"`
	Players        int     `json:"players"`
	Pot            float64 `json:"pot"`
	Winner         *Winner `json:"winner,omitempty"`
}

// RoundSnapshot is the persistable derived state of a round, enough to
// resume an interrupted active round from redis.
type RoundSnapshot struct {
	RoundID     string            `json:"roundId"`
	RoundNumber int               `json:"roundNumber"`
	Phase       Phase             `json:"phase"`
	SavedAt     time.Time         `json:"savedAt"`
	Pot         float64           `json:"pot"`
	Draws       []Draw            `json:"draws"`
	Owners      map[int]Ownership `json:"owners"`
}

// Lifecycle is the authoritative state machine of one lobby's rounds:
// idle -> card_selection -> active -> ended -> (restart delay) ->
// card_selection. It is driven by 1 Hz calls to Tick; every mutation is
// serialized behind one mutex, and events are published outside it in
// mutation order.
type Lifecycle struct {
	cfg    Config
	reg    *Registry
	drawer *Drawer
	sink   Sink
	log    *zap.SugaredLogger
	rng    *rand.Rand

	pubMu sync.Mutex

	mu          sync.Mutex
	phase       Phase
	roundID     string
	roundNumber int
	countdown   int
	elapsed     int
	sinceDraw   int
	restartLeft int
	pot         float64
	draws       []Draw
	drawnSet    map[int]bool
	players     map[int64]*Player
	winner      *Winner
}

// New builds an idle lifecycle. A nil sink or logger is replaced with a
// no-op so tests can omit them.
func New(cfg Config, reg *Registry, drawer *Drawer, sink Sink, log *zap.SugaredLogger) *Lifecycle {
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultPatterns()
	}
	if sink == nil {
		sink = nopSink{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Lifecycle{
		cfg:      cfg,
		reg:      reg,
		drawer:   drawer,
		sink:     sink,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:    PhaseIdle,
		drawnSet: make(map[int]bool),
		players:  make(map[int64]*Player),
	}
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

// flush releases the state mutex and delivers evs to the sink. The publish
// mutex is taken before the state mutex is dropped, so batches from
// concurrent callers (the tick loop, a claiming reader) reach the sink in
// mutation order.
func (l *Lifecycle) flush(evs []Event) {
	l.pubMu.Lock()
	l.mu.Unlock()
	for _, ev := range evs {
		l.sink.Publish(ev)
	}
	l.pubMu.Unlock()
}

// Join registers a player. The first join of an idle lobby starts a round.
func (l *Lifecycle) Join(playerID int64, name string) {
	l.mu.Lock()
	if p, ok := l.players[playerID]; ok {
		p.Name = name
	} else {
		l.players[playerID] = &Player{ID: playerID, Name: name}
	}
	var evs []Event
	if l.phase == PhaseIdle {
		evs = l.startSelectionLocked()
	}
	l.flush(evs)
	l.log.Infow("player joined", "player", playerID, "name", name)
}

// Leave removes a player. Cards they hold are released only while selection
// is still open; once a round is active their cards stay in play so a
// reconnect resumes where they left off.
func (l *Lifecycle) Leave(playerID int64) {
	l.mu.Lock()
	delete(l.players, playerID)
	if l.phase == PhaseCardSelection {
		for _, id := range l.reg.OwnedBy(playerID) {
			l.reg.Release(id)
		}
	}
	l.mu.Unlock()
}

// Forfeit drops a player's cards from an active round and takes their stake
// back out of the pot, so a failed debit cannot inflate the eventual prize.
// When the last staked cards are forfeited the round ends with nobody left
// to win it.
func (l *Lifecycle) Forfeit(playerID int64) {
	l.mu.Lock()
	var evs []Event
	if l.phase == PhaseActive {
		if owned := l.reg.OwnedBy(playerID); len(owned) > 0 {
			for _, id := range owned {
				l.reg.Release(id)
			}
			l.pot -= float64(l.cfg.Stake)
			if l.pot < 0 {
				l.pot = 0
			}
			l.log.Infow("player forfeited", "round", l.roundID, "player", playerID, "cards", len(owned), "pot", l.pot)
			evs = append(evs, CardGridSnapshot{Entries: l.reg.Snapshot()})
			if l.reg.TakenCount() == 0 {
				evs = append(evs, l.endRoundLocked(nil, "no_players")...)
			}
		}
	}
	l.flush(evs)
}

// StartRound explicitly begins a round from idle. A no-op in any other
// phase.
func (l *Lifecycle) StartRound() {
	l.mu.Lock()
	var evs []Event
	if l.phase == PhaseIdle {
		evs = l.startSelectionLocked()
	}
	l.flush(evs)
}

// startSelectionLocked resets round state and opens card selection.
func (l *Lifecycle) startSelectionLocked() []Event {
	l.roundNumber++
	l.roundID = uuid.NewString()
	l.phase = PhaseCardSelection
	l.countdown = l.cfg.SelectionSeconds
	l.elapsed = 0
	l.sinceDraw = 0
	l.pot = 0
	l.draws = nil
	l.drawnSet = make(map[int]bool)
	l.winner = nil
	for _, p := range l.players {
		p.Ready = false
	}
	l.reg.ReleaseAll()
	l.reg.Open()
	l.log.Infow("round started", "round", l.roundID, "number", l.roundNumber)
	return []Event{
		PhaseChanged{Phase: PhaseCardSelection, RoundID: l.roundID},
		CardGridSnapshot{Entries: l.reg.Snapshot()},
		CountdownTick{Phase: PhaseCardSelection, SecondsLeft: l.countdown},
	}
}

// SelectCard attempts to take a card for a player. Phase and ownership
// guards live in the registry; the lifecycle validates the id range via the
// generator contract and broadcasts on success.
func (l *Lifecycle) SelectCard(playerID int64, cardID int, now time.Time) error {
	if _, err := GenerateCard(cardID, l.cfg.TotalCards); err != nil {
		return err
	}
	if err := l.reg.Select(playerID, cardID, now); err != nil {
		return err
	}
	l.pubMu.Lock()
	l.sink.Publish(CardSelected{CardID: cardID, PlayerID: playerID})
	l.pubMu.Unlock()
	l.log.Infow("card selected", "player", playerID, "card", cardID)
	return nil
}

// Confirm marks a player ready. When every joined player is ready and at
// least one card is taken, selection ends early.
func (l *Lifecycle) Confirm(playerID int64) {
	l.mu.Lock()
	p, ok := l.players[playerID]
	if !ok || l.phase != PhaseCardSelection {
		l.mu.Unlock()
		return
	}
	p.Ready = true
	all := len(l.players) > 0
	for _, q := range l.players {
		if !q.Ready {
			all = false
			break
		}
	}
	var evs []Event
	if all && l.reg.TakenCount() > 0 {
		evs = l.beginActiveLocked()
	}
	l.flush(evs)
}

// Tick advances the machine by one second. A missed tick needs no
// compensation: countdowns are decremented per delivered tick, so the next
// tick simply continues from where the last one left off.
func (l *Lifecycle) Tick(now time.Time) {
	l.mu.Lock()
	var evs []Event
	switch l.phase {
	case PhaseCardSelection:
		evs = l.tickSelectionLocked(now)
	case PhaseActive:
		evs = l.tickActiveLocked(now)
	case PhaseEnded:
		evs = l.tickEndedLocked()
	}
	l.flush(evs)
}

func (l *Lifecycle) tickSelectionLocked(now time.Time) []Event {
	l.countdown--
	if l.countdown > 0 {
		return []Event{CountdownTick{Phase: PhaseCardSelection, SecondsLeft: l.countdown}}
	}

	// Timeout: players who never picked get one random available card each.
	for id, p := range l.players {
		if len(l.reg.OwnedBy(id)) > 0 {
			continue
		}
		avail := l.reg.Available()
		if len(avail) == 0 {
			break
		}
		cardID := avail[l.rng.Intn(len(avail))]
		if err := l.reg.Select(id, cardID, now); err == nil {
			l.log.Infow("card auto-assigned", "player", p.ID, "card", cardID)
		}
	}

	if l.reg.TakenCount() == 0 {
		// Nobody to play against; fold back to idle like an empty lobby.
		l.phase = PhaseIdle
		l.reg.Close()
		l.log.Infow("round cancelled", "round", l.roundID, "reason", "no_players")
		return []Event{
			RoundCancelled{Reason: "no_players"},
			PhaseChanged{Phase: PhaseIdle, RoundID: l.roundID},
		}
	}
	return l.beginActiveLocked()
}

func (l *Lifecycle) beginActiveLocked() []Event {
	l.reg.Close()
	l.phase = PhaseActive
	l.countdown = 0
	l.elapsed = 0
	l.sinceDraw = 0
	l.pot = float64(l.cfg.Stake * l.reg.PlayersWithCards())
	l.log.Infow("round active", "round", l.roundID, "players", l.reg.PlayersWithCards(), "pot", l.pot)
	return []Event{
		PhaseChanged{Phase: PhaseActive, RoundID: l.roundID},
		CardGridSnapshot{Entries: l.reg.Snapshot()},
	}
}

func (l *Lifecycle) tickActiveLocked(now time.Time) []Event {
	l.elapsed++
	l.sinceDraw++
	if l.sinceDraw < l.cfg.DrawIntervalSeconds {
		return nil
	}
	l.sinceDraw = 0

	n, err := l.drawer.Draw(l.drawnSet, l.cfg.DrawBound)
	if err != nil {
		if errors.Is(err, ErrDrawExhausted) {
			// Drawn-out round: terminal for the round, not the process.
			return l.endRoundLocked(nil, "draw_exhausted")
		}
		l.log.Errorw("draw failed", "round", l.roundID, "err", err)
		return nil
	}

	l.draws = append(l.draws, Draw{Number: n, At: now})
	l.drawnSet[n] = true
	l.log.Infow("number drawn", "round", l.roundID, "number", n, "total", len(l.draws))
	return []Event{NumberDrawn{Number: n, Letter: Letter(n, l.cfg.DrawBound), AllDrawn: l.drawnNumbersLocked()}}
}

func (l *Lifecycle) tickEndedLocked() []Event {
	l.restartLeft--
	if l.restartLeft > 0 {
		return []Event{CountdownTick{Phase: PhaseEnded, SecondsLeft: l.restartLeft}}
	}
	if len(l.players) == 0 {
		l.phase = PhaseIdle
		l.reg.ReleaseAll()
		l.draws = nil
		l.drawnSet = make(map[int]bool)
		l.winner = nil
		return []Event{PhaseChanged{Phase: PhaseIdle, RoundID: l.roundID}}
	}
	return l.startSelectionLocked()
}

// Claim arbitrates a bingo claim. The server recomputes the pattern against
// its own draw history and ownership table; the client's word is never
// trusted. Only the first valid claim of a round succeeds, and the
// check-then-set happens under the lifecycle mutex, so concurrent claims
// cannot both win. Duplicate or stale deliveries fall into the same error
// paths, which is what makes them idempotent.
func (l *Lifecycle) Claim(playerID int64, cardID int, p Pattern, now time.Time) error {
	l.mu.Lock()
	var evs []Event
	err := func() error {
		if l.winner != nil || l.phase == PhaseEnded {
			return ErrRoundAlreadyDecided
		}
		if owner, ok := l.reg.Owner(cardID); !ok || owner != playerID {
			return ErrNotCardOwner
		}
		if !l.cfg.patternEnabled(p) {
			return ErrPatternNotSatisfied
		}
		card, err := GenerateCard(cardID, l.cfg.TotalCards)
		if err != nil {
			return err
		}
		if !Matches(card, l.drawnSet, p) {
			return ErrPatternNotSatisfied
		}
		l.winner = &Winner{
			PlayerID: playerID,
			CardID:   cardID,
			Pattern:  p,
			Prize:    l.pot * l.cfg.prizePercent(p),
		}
		evs = l.endRoundLocked(l.winner, "")
		return nil
	}()
	l.flush(evs)
	if err != nil {
		l.log.Infow("claim rejected", "player", playerID, "card", cardID, "pattern", p, "err", err)
	}
	return err
}

// endRoundLocked stops the draw cadence and freezes the round for the
// restart window.
func (l *Lifecycle) endRoundLocked(w *Winner, reason string) []Event {
	l.phase = PhaseEnded
	l.restartLeft = l.cfg.RestartDelaySeconds
	l.reg.Close()

	evs := make([]Event, 0, 2)
	if w != nil {
		l.log.Infow("round won", "round", l.roundID, "player", w.PlayerID, "card", w.CardID, "pattern", w.Pattern, "prize", w.Prize)
		evs = append(evs, WinnerDeclared{PlayerID: w.PlayerID, CardID: w.CardID, Pattern: w.Pattern, Prize: w.Prize})
	} else {
		l.log.Infow("round ended without winner", "round", l.roundID, "reason", reason)
		evs = append(evs, RoundCancelled{Reason: reason})
	}
	return append(evs, PhaseChanged{Phase: PhaseEnded, RoundID: l.roundID})
}

func (l *Lifecycle) drawnNumbersLocked() []int {
	out := make([]int, len(l.draws))
	for i, d := range l.draws {
		out[i] = d.Number
	}
	return out
}

// Status returns a consistent read-only view of the round.
func (l *Lifecycle) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	var countdown int
	switch l.phase {
	case PhaseCardSelection:
		countdown = l.countdown
	case PhaseEnded:
		countdown = l.restartLeft
	}
	return Status{
		RoundID:        l.roundID,
		RoundNumber:    l.roundNumber,
		Phase:          l.phase,
		Countdown:      countdown,
		Elapsed:        l.elapsed,
		Drawn:          l.drawnNumbersLocked(),
		TakenCount:     l.reg.TakenCount(),
		AvailableCount: l.reg.AvailableCount(),
		Players:        len(l.players),
		Pot:            l.pot,
		Winner:         l.winner,
	}
}

// Snapshot captures persistable round state for crash recovery.
func (l *Lifecycle) Snapshot(now time.Time) RoundSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return RoundSnapshot{
		RoundID:     l.roundID,
		RoundNumber: l.roundNumber,
		Phase:       l.phase,
		SavedAt:     now,
		Pot:         l.pot,
		Draws:       append([]Draw(nil), l.draws...),
		Owners:      l.reg.Owners(),
	}
}

// Restore resumes an interrupted active round from a snapshot. Snapshots of
// any other phase are ignored: selection countdowns are cheap to restart and
// ended rounds reset on their own. Staleness is the caller's check.
func (l *Lifecycle) Restore(snap RoundSnapshot) bool {
	if snap.Phase != PhaseActive || snap.RoundID == "" {
		return false
	}
	l.mu.Lock()
	l.roundID = snap.RoundID
	l.roundNumber = snap.RoundNumber
	l.phase = PhaseActive
	l.pot = snap.Pot
	l.draws = append([]Draw(nil), snap.Draws...)
	l.drawnSet = make(map[int]bool, len(snap.Draws))
	for _, d := range snap.Draws {
		l.drawnSet[d.Number] = true
	}
	l.winner = nil
	l.sinceDraw = 0
	l.reg.restore(snap.Owners)
	l.reg.Close()
	l.mu.Unlock()
	l.log.Infow("round restored", "round", snap.RoundID, "draws", len(snap.Draws))
	return true
}
