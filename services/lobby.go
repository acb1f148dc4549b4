package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/selamgames/bingo-server/config"
	"github.com/selamgames/bingo-server/game"
	"github.com/selamgames/bingo-server/models"
	"github.com/selamgames/bingo-server/utils/logger"
)

var (
	Lobbies   = make(map[int]*Lobby)
	LobbiesMu sync.Mutex
)

// Lobby binds one stake level's lifecycle to its websocket clients. It is
// the game.Sink: lifecycle events fan out to every connected client as JSON
// messages, and the money/archive side effects hang off the same events.
type Lobby struct {
	Stake     int
	lifecycle *game.Lifecycle
	registry  *game.Registry
	snapshots *SnapshotStore
	clock     game.Clock
	log       *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[int64]*Client

	roundMu      sync.Mutex
	currentRound *models.Round
}

// NewLobby wires a lifecycle for one stake. The lobby registers itself as
// the lifecycle's sink.
func NewLobby(stake int, cfg game.Config, snapshots *SnapshotStore) *Lobby {
	l := &Lobby{
		Stake:     stake,
		registry:  game.NewRegistry(cfg.TotalCards, cfg.MaxCardsPerPlayer),
		snapshots: snapshots,
		clients:   make(map[int64]*Client),
		log:       logger.With("lobby", stake),
	}
	l.lifecycle = game.New(cfg, l.registry, game.NewDrawerNow(), l, l.log)
	return l
}

// InitLobbyService builds one lobby per configured stake, resumes any
// fresh-enough snapshot, and starts the tick loops.
func InitLobbyService(cfg *config.Config, snapshots *SnapshotStore) {
	LobbiesMu.Lock()
	defer LobbiesMu.Unlock()

	ctx := context.Background()
	for _, stake := range cfg.Stakes {
		l := NewLobby(stake, cfg.GameConfig(stake), snapshots)
		if snapshots != nil {
			snap, err := snapshots.Load(ctx, stake)
			if err != nil {
				l.log.Errorw("snapshot load failed", "err", err)
			} else if snap != nil && l.lifecycle.Restore(*snap) {
				l.log.Infow("resumed round from snapshot", "round", snap.RoundID, "draws", len(snap.Draws))
			}
		}
		Lobbies[stake] = l
		go l.Run(game.NewTickerClock(time.Second))
	}
	logger.Infof("started %d lobbies", len(Lobbies))
}

// Run drives the lifecycle from the clock. One goroutine per lobby is the
// single writer of lifecycle state, timers included.
func (l *Lobby) Run(clock game.Clock) {
	l.clock = clock
	for now := range clock.Tick() {
		l.lifecycle.Tick(now)
	}
}

// Lifecycle exposes the state machine for REST status handlers.
func (l *Lobby) Lifecycle() *game.Lifecycle { return l.lifecycle }

// Registry exposes the ownership table for REST handlers.
func (l *Lobby) Registry() *game.Registry { return l.registry }

// -------------------- client management --------------------

func (l *Lobby) addClient(c *Client) {
	l.mu.Lock()
	if old, ok := l.clients[c.playerID]; ok {
		old.Close()
	}
	l.clients[c.playerID] = c
	l.mu.Unlock()

	go c.writePump()
	go c.readPump()

	l.lifecycle.Join(c.playerID, c.name)
	l.sendStatus(c)
	l.log.Infow("client connected", "player", c.playerID, "total", l.clientCount())
}

// removeClient tears down exactly the connection that is exiting. After a
// reconnect the map holds the replacement client, and the stale pump's
// deferred teardown must not kick it or release the player's cards.
func (l *Lobby) removeClient(c *Client) {
	l.mu.Lock()
	current := l.clients[c.playerID] == c
	if current {
		delete(l.clients, c.playerID)
	}
	l.mu.Unlock()

	c.Close()
	if current {
		l.lifecycle.Leave(c.playerID)
		l.log.Infow("client disconnected", "player", c.playerID, "total", l.clientCount())
	}
}

func (l *Lobby) clientCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}

// -------------------- inbound --------------------

func (l *Lobby) handleMessage(c *Client, msg inboundMessage) {
	switch msg.Type {
	case "player_join":
		if msg.DisplayName != "" {
			c.name = msg.DisplayName
		}
		l.lifecycle.Join(c.playerID, c.name)
		l.sendStatus(c)
	case "card_select":
		l.handleSelect(c, msg.CardID)
	case "bingo_claim":
		l.handleClaim(c, msg.CardID, msg.Pattern)
	case "player_ready":
		l.lifecycle.Confirm(c.playerID)
	case "status_request":
		l.sendStatus(c)
	default:
		l.log.Debugw("unknown message type", "player", c.playerID, "type", msg.Type)
	}
}

// handleSelect checks the player's balance covers the stake before the card
// is taken; the lifecycle owns every other guard.
func (l *Lobby) handleSelect(c *Client, cardID int) {
	var user models.User
	if err := config.DB.Where("telegram_id = ?", c.playerID).First(&user).Error; err != nil {
		l.sendError(c, "unknown_player", "register before selecting a card")
		return
	}
	if user.Balance < float64(l.Stake) {
		l.sendError(c, "insufficient_balance", "balance does not cover the stake")
		return
	}
	if err := l.lifecycle.SelectCard(c.playerID, cardID, time.Now()); err != nil {
		l.sendError(c, errorCode(err), err.Error())
	}
}

func (l *Lobby) handleClaim(c *Client, cardID int, pattern string) {
	p, err := game.ParsePattern(pattern)
	if err != nil {
		l.sendError(c, "pattern_not_satisfied", err.Error())
		return
	}
	if err := l.lifecycle.Claim(c.playerID, cardID, p, time.Now()); err != nil {
		l.sendError(c, errorCode(err), err.Error())
	}
}

// errorCode maps rule violations to wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, game.ErrAlreadyTaken):
		return "already_taken"
	case errors.Is(err, game.ErrNotInSelectionPhase):
		return "not_in_selection_phase"
	case errors.Is(err, game.ErrPlayerAtMaxCards):
		return "player_at_max_cards"
	case errors.Is(err, game.ErrNotCardOwner):
		return "not_card_owner"
	case errors.Is(err, game.ErrPatternNotSatisfied):
		return "pattern_not_satisfied"
	case errors.Is(err, game.ErrRoundAlreadyDecided):
		return "round_already_decided"
	}
	return "internal"
}

// -------------------- outbound --------------------

// encodeEvent flattens an event into {"type": kind, ...fields}.
func encodeEvent(ev game.Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, err
	}
	m["type"] = ev.Kind()
	return json.Marshal(m)
}

// Publish implements game.Sink. Events are broadcast to every client; the
// draw, win, and end events additionally drive persistence and payouts off
// the hot path.
func (l *Lobby) Publish(ev game.Event) {
	if msg, err := encodeEvent(ev); err == nil {
		l.broadcast(msg)
	} else {
		l.log.Errorw("event encode failed", "kind", ev.Kind(), "err", err)
	}

	switch e := ev.(type) {
	case game.PhaseChanged:
		if e.Phase == game.PhaseActive {
			go l.onRoundActive()
		}
	case game.NumberDrawn:
		go l.persistRound()
	case game.WinnerDeclared:
		go l.onWinner(e)
	case game.RoundCancelled:
		go l.onCancelled(e)
	}
}

func (l *Lobby) broadcast(msg []byte) {
	l.mu.RLock()
	clients := make([]*Client, 0, len(l.clients))
	for _, c := range l.clients {
		clients = append(clients, c)
	}
	l.mu.RUnlock()

	for _, c := range clients {
		c.trySend(msg)
	}
}

func (l *Lobby) sendStatus(c *Client) {
	st := l.lifecycle.Status()
	payload, err := json.Marshal(struct {
		Type string `json:"type"`
		game.Status
	}{Type: "status", Status: st})
	if err != nil {
		return
	}
	c.trySend(payload)
	if snap, err := encodeEvent(game.CardGridSnapshot{Entries: l.registry.Snapshot()}); err == nil {
		c.trySend(snap)
	}
}

func (l *Lobby) sendError(c *Client, code, message string) {
	payload, _ := json.Marshal(map[string]string{
		"type":    "error",
		"code":    code,
		"message": message,
	})
	c.trySend(payload)
}

// -------------------- side effects --------------------

// onRoundActive opens the archive record and debits every staked player. A
// player whose balance no longer covers the stake loses their cards for the
// round instead of playing for free.
func (l *Lobby) onRoundActive() {
	st := l.lifecycle.Status()

	round := models.Round{
		RoundID:     st.RoundID,
		Stake:       l.Stake,
		RoundNumber: st.RoundNumber,
		Status:      "in_progress",
		NumbersJSON: datatypes.JSON([]byte("[]")),
		StartTime:   time.Now(),
	}
	if err := config.DB.Create(&round).Error; err != nil {
		l.log.Errorw("round archive create failed", "round", st.RoundID, "err", err)
	} else {
		l.roundMu.Lock()
		l.currentRound = &round
		l.roundMu.Unlock()
	}

	staked := make(map[int64]bool)
	for _, own := range l.registry.Owners() {
		staked[own.PlayerID] = true
	}
	for playerID := range staked {
		if err := l.debitStake(playerID, st.RoundID); err != nil {
			l.log.Warnw("stake debit failed, forfeiting cards", "player", playerID, "err", err)
			l.lifecycle.Forfeit(playerID)
		}
	}
	l.persistRound()
}

func (l *Lobby) debitStake(playerID int64, roundID string) error {
	var user models.User
	if err := config.DB.Where("telegram_id = ?", playerID).First(&user).Error; err != nil {
		return err
	}
	if user.Balance < float64(l.Stake) {
		return errors.New("insufficient balance")
	}
	user.Balance -= float64(l.Stake)
	if err := config.DB.Save(&user).Error; err != nil {
		return err
	}
	tx := models.Transaction{
		UserID:       user.ID,
		Type:         models.StakeTransaction,
		Amount:       float64(l.Stake),
		BalanceAfter: user.Balance,
		RoundID:      roundID,
	}
	return config.DB.Create(&tx).Error
}

// persistRound snapshots the live round to redis and mirrors the draw
// history into the archive row.
func (l *Lobby) persistRound() {
	snap := l.lifecycle.Snapshot(time.Now())
	if l.snapshots != nil {
		if err := l.snapshots.Save(context.Background(), l.Stake, snap); err != nil {
			l.log.Errorw("snapshot save failed", "round", snap.RoundID, "err", err)
		}
	}

	l.roundMu.Lock()
	round := l.currentRound
	l.roundMu.Unlock()
	if round == nil {
		return
	}
	nums := make([]int, len(snap.Draws))
	for i, d := range snap.Draws {
		nums[i] = d.Number
	}
	if data, err := json.Marshal(nums); err == nil {
		round.NumbersJSON = datatypes.JSON(data)
		if err := config.DB.Save(round).Error; err != nil {
			l.log.Errorw("round archive save failed", "round", snap.RoundID, "err", err)
		}
	}
}

// onWinner credits the prize and closes the archive record.
func (l *Lobby) onWinner(ev game.WinnerDeclared) {
	var user models.User
	if err := config.DB.Where("telegram_id = ?", ev.PlayerID).First(&user).Error; err != nil {
		l.log.Errorw("winner lookup failed", "player", ev.PlayerID, "err", err)
	} else {
		user.Balance += ev.Prize
		user.GamesWon++
		if err := config.DB.Save(&user).Error; err != nil {
			l.log.Errorw("prize credit failed", "player", ev.PlayerID, "err", err)
		} else {
			st := l.lifecycle.Status()
			tx := models.Transaction{
				UserID:       user.ID,
				Type:         models.PrizeTransaction,
				Amount:       ev.Prize,
				BalanceAfter: user.Balance,
				RoundID:      st.RoundID,
			}
			if err := config.DB.Create(&tx).Error; err != nil {
				l.log.Errorw("prize transaction failed", "player", ev.PlayerID, "err", err)
			}
		}
	}

	cardID := ev.CardID
	playerID := ev.PlayerID
	l.closeRound("won", &playerID, &cardID, string(ev.Pattern), ev.Prize)
}

func (l *Lobby) onCancelled(ev game.RoundCancelled) {
	status := "cancelled"
	if ev.Reason == "draw_exhausted" {
		status = "drawn_out"
	}
	l.closeRound(status, nil, nil, "", 0)
}

func (l *Lobby) closeRound(status string, winnerID *int64, winnerCardID *int, pattern string, prize float64) {
	if l.snapshots != nil {
		if err := l.snapshots.Clear(context.Background(), l.Stake); err != nil {
			l.log.Errorw("snapshot clear failed", "err", err)
		}
	}

	l.roundMu.Lock()
	round := l.currentRound
	l.currentRound = nil
	l.roundMu.Unlock()
	if round == nil {
		return
	}

	round.Status = status
	round.WinnerID = winnerID
	round.WinnerCardID = winnerCardID
	round.Pattern = pattern
	round.Prize = prize
	round.EndTime = time.Now()
	if err := config.DB.Save(round).Error; err != nil {
		l.log.Errorw("round archive close failed", "round", round.RoundID, "err", err)
	}
}
