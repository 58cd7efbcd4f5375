package game

import "github.com/trytobebee/mole_go/pkg/clock"

// Phase is the session state
type Phase int

const (
	PhaseIdle      Phase = iota // Waiting for Start (initial and terminal)
	PhaseRunning                // Countdown and spawners active
	PhaseRevealing              // Snake was clicked, game over is pending
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseRevealing:
		return "revealing"
	default:
		return "idle"
	}
}

// Reason tells why a session ended
type Reason string

const (
	ReasonTimeout Reason = "timeout"
	ReasonSnake   Reason = "snake"
)

// cell is one board position. expiry is owned by the cell and is set only while HasMole is true.
type cell struct {
	hasMole  bool
	hasSnake bool
	expiry   *task
}

// CellView is the read-only state of a cell sent to renderers
type CellView struct {
	ID       int  `json:"id"`
	HasMole  bool `json:"hasMole"`
	HasSnake bool `json:"hasSnake"`
}

// Board is a snapshot of every cell, indexed by cell id
type Board []CellView

// Moles returns the number of cells holding a mole
func (b Board) Moles() int {
	n := 0
	for _, c := range b {
		if c.HasMole {
			n++
		}
	}
	return n
}

// Snakes returns the number of cells holding the snake
func (b Board) Snakes() int {
	n := 0
	for _, c := range b {
		if c.HasSnake {
			n++
		}
	}
	return n
}

// SnakeCell returns the id of the first snake cell, or -1
func (b Board) SnakeCell() int {
	for _, c := range b {
		if c.HasSnake {
			return c.ID
		}
	}
	return -1
}

// MoleCells returns the ids of all mole cells
func (b Board) MoleCells() []int {
	var ids []int
	for _, c := range b {
		if c.HasMole {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// GameState is a snapshot of the session for client synchronization
type GameState struct {
	Board            Board  `json:"board"`
	Score            int    `json:"score"`
	Missed           int    `json:"missed"`
	RemainingSeconds int    `json:"remainingSeconds"`
	Phase            string `json:"phase"`
	StartEnabled     bool   `json:"startEnabled"`
	GameOver         bool   `json:"gameOver"`
	Reason           Reason `json:"reason,omitempty"`
}

// GameConfig is a DTO for game settings sent to client on connect
type GameConfig struct {
	BoardSize          int `json:"boardSize"`
	Columns            int `json:"columns"`
	MaxConcurrentMoles int `json:"maxConcurrentMoles"`
	StartSeconds       int `json:"startSeconds"`
	MoleLifetime       int `json:"moleLifetime"` // ms
}

// task is a cancellable scheduled action. cancelled is only read and written
// under the engine mutex, so a runtime timer that already fired but has not
// yet taken the lock still sees the cancellation.
type task struct {
	handle    clock.Handle
	cancelled bool
}

func (t *task) cancel() {
	if t == nil || t.cancelled {
		return
	}
	t.cancelled = true
	if t.handle != nil {
		t.handle.Stop()
	}
}
