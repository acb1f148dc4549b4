package game

// Phase is the lifecycle state of a round.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseCardSelection Phase = "card_selection"
	PhaseActive        Phase = "active"
	PhaseEnded         Phase = "ended"
)

// Event is a structured lifecycle notification. Each concrete event carries
// its wire type so the transport layer can marshal it without a name table.
type Event interface {
	Kind() string
}

// Sink receives lifecycle events. The websocket lobby implements it; tests
// use a recording stub.
type Sink interface {
	Publish(ev Event)
}

// PhaseChanged announces a transition.
type PhaseChanged struct {
	Phase   Phase  `json:"phase"`
	RoundID string `json:"roundId"`
}

func (PhaseChanged) Kind() string { return "phase_changed" }

// CountdownTick carries the remaining seconds of the current phase timer.
type CountdownTick struct {
	Phase       Phase `json:"phase"`
	SecondsLeft int   `json:"secondsLeft"`
}

func (CountdownTick) Kind() string { return "countdown" }

// NumberDrawn announces one draw along with the full history, so a client
// that missed earlier broadcasts can catch up from any single message.
type NumberDrawn struct {
	Number   int    `json:"number"`
	Letter   string `json:"letter"`
	AllDrawn []int  `json:"allDrawn"`
}

func (NumberDrawn) Kind() string { return "number_drawn" }

// CardGridSnapshot carries the whole ownership table.
type CardGridSnapshot struct {
	Entries []GridEntry `json:"entries"`
}

func (CardGridSnapshot) Kind() string { return "card_grid_snapshot" }

// CardSelected announces one successful selection.
type CardSelected struct {
	CardID   int   `json:"cardId"`
	PlayerID int64 `json:"playerId"`
}

func (CardSelected) Kind() string { return "card_selected" }

// WinnerDeclared announces the first accepted claim of the round.
type WinnerDeclared struct {
	PlayerID int64   `json:"playerId"`
	CardID   int     `json:"cardId"`
	Pattern  Pattern `json:"pattern"`
	Prize    float64 `json:"prize"`
}

func (WinnerDeclared) Kind() string { return "winner" }

// RoundCancelled announces a round that ended without a winner.
type RoundCancelled struct {
	Reason string `json:"reason"`
}

func (RoundCancelled) Kind() string { return "round_cancelled" }
