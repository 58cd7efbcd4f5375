package game

import (
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/trytobebee/mole_go/pkg/clock"
	"github.com/trytobebee/mole_go/pkg/config"
)

// Engine is one game session: the board, the countdown and the spawn processes.
// Every entry point and every scheduled callback runs under mu.
type Engine struct {
	mu       sync.Mutex
	cfg      config.Options
	clock    clock.Clock
	listener Listener
	logger   *log.Logger
	rng      *rand.Rand

	cells        []cell
	score        int
	missed       int
	remaining    int
	phase        Phase
	reason       Reason
	startEnabled bool

	// Periodic processes and the delayed game-over signal
	timer     *task
	moleSpawn *task
	snakeMove *task
	gameOver  *task
}

// Option customizes an Engine
type Option func(*Engine)

// WithClock replaces the runtime clock, mostly for tests
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger used for session lifecycle messages
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an idle session ready for its first render
func NewEngine(cfg config.Options, listener Listener, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if listener == nil {
		listener = NopListener{}
	}

	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	e := &Engine{
		cfg:          cfg,
		clock:        clock.Real(),
		listener:     listener,
		logger:       log.New(io.Discard, "", 0),
		rng:          rand.New(rand.NewSource(seed)),
		cells:        make([]cell, cfg.BoardSize),
		remaining:    cfg.StartSeconds,
		startEnabled: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Start begins a session. It does nothing unless the engine is idle, so the
// periodic processes are never launched twice.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseIdle {
		return false
	}

	e.resetLocked()
	e.phase = PhaseRunning
	e.startEnabled = false
	e.relocateSnake()

	e.timer = e.every(e.cfg.TimerPeriod, e.tick)
	e.moleSpawn = e.every(e.cfg.MoleSpawnPeriod, func() {
		e.placeMole()
		e.listener.BoardChanged(e.board())
	})
	e.snakeMove = e.every(e.cfg.SnakeMovePeriod, func() {
		e.relocateSnake()
		e.listener.BoardChanged(e.board())
	})

	e.logger.Printf("session started: %d cells, %d ticks", len(e.cells), e.remaining)

	e.listener.StartControlChanged(false)
	e.listener.ScoreChanged(e.score)
	e.listener.TimerChanged(e.remaining)
	e.listener.BoardChanged(e.board())
	return true
}

// Reset cancels everything outstanding and returns to a fresh idle session
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	e.phase = PhaseIdle
	e.startEnabled = true

	e.listener.BoardChanged(e.board())
	e.listener.ScoreChanged(e.score)
	e.listener.TimerChanged(e.remaining)
	e.listener.StartControlChanged(true)
}

// Stop cancels all scheduled work and goes idle without notifying the listener.
// Live moles are removed, the score is kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseIdle {
		e.logger.Printf("session stopped: score %d", e.score)
	}
	e.cancelAll()
	e.phase = PhaseIdle
	e.startEnabled = true
}

// ResolveClick handles a click on a cell. Invalid ids and clicks outside a
// running session are ignored.
func (e *Engine) ResolveClick(cellID int) ClickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseRunning || cellID < 0 || cellID >= len(e.cells) {
		return ClickIgnored
	}

	c := &e.cells[cellID]
	switch {
	case c.hasSnake:
		e.revealSnake()
		return ClickSnake
	case c.hasMole:
		e.clearMole(cellID)
		e.score++
		e.listener.BoardChanged(e.board())
		e.listener.ScoreChanged(e.score)
		return ClickMole
	}
	return ClickEmpty
}

// ExpireMole removes the mole on cellID as if its lifetime ran out
func (e *Engine) ExpireMole(cellID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expireMole(cellID)
}

// Snapshot returns the current session state
func (e *Engine) Snapshot() GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return GameState{
		Board:            e.board(),
		Score:            e.score,
		Missed:           e.missed,
		RemainingSeconds: e.remaining,
		Phase:            e.phase.String(),
		StartEnabled:     e.startEnabled,
		GameOver:         e.phase == PhaseIdle && e.reason != "",
		Reason:           e.reason,
	}
}

// Phase returns the current session phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Config returns the settings sent to clients on connect
func (e *Engine) Config() GameConfig {
	return GameConfig{
		BoardSize:          e.cfg.BoardSize,
		Columns:            e.cfg.Columns,
		MaxConcurrentMoles: e.cfg.MaxConcurrentMoles,
		StartSeconds:       e.cfg.StartSeconds,
		MoleLifetime:       int(e.cfg.MoleLifetime.Milliseconds()),
	}
}

// tick advances the countdown. The 0 value stays on screen for one full
// period; the session ends on the following tick.
func (e *Engine) tick() {
	if e.remaining == 0 {
		e.finish(ReasonTimeout)
		return
	}
	e.remaining--
	e.listener.TimerChanged(e.remaining)
}

// revealSnake freezes the board, shows the snake everywhere and schedules game over
func (e *Engine) revealSnake() {
	e.stopProcesses()
	e.clearMoles()
	for i := range e.cells {
		e.cells[i].hasSnake = true
	}
	e.phase = PhaseRevealing
	e.listener.BoardChanged(e.board())

	e.gameOver = e.after(e.cfg.RevealDelay, func() {
		e.gameOver = nil
		e.finish(ReasonSnake)
	})
}

// finish ends the session and re-enables the start control
func (e *Engine) finish(reason Reason) {
	e.stopProcesses()
	if e.clearMoles() {
		e.listener.BoardChanged(e.board())
	}
	e.phase = PhaseIdle
	e.reason = reason
	e.startEnabled = true

	e.logger.Printf("session over (%s): score %d, missed %d", reason, e.score, e.missed)

	e.listener.GameOver(reason)
	e.listener.StartControlChanged(true)
}

func (e *Engine) resetLocked() {
	e.cancelAll()
	e.cells = make([]cell, e.cfg.BoardSize)
	e.score = 0
	e.missed = 0
	e.remaining = e.cfg.StartSeconds
	e.reason = ""
}

func (e *Engine) cancelAll() {
	e.stopProcesses()
	e.gameOver.cancel()
	e.gameOver = nil
	e.clearMoles()
}

func (e *Engine) stopProcesses() {
	e.timer.cancel()
	e.moleSpawn.cancel()
	e.snakeMove.cancel()
	e.timer, e.moleSpawn, e.snakeMove = nil, nil, nil
}

func (e *Engine) after(d time.Duration, fn func()) *task {
	t := &task{}
	t.handle = e.clock.AfterFunc(d, e.guard(t, fn))
	return t
}

func (e *Engine) every(d time.Duration, fn func()) *task {
	t := &task{}
	t.handle = e.clock.Every(d, e.guard(t, fn))
	return t
}

// guard serializes a scheduled callback with the rest of the engine and
// drops it if its task was cancelled in the meantime.
func (e *Engine) guard(t *task, fn func()) func() {
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if t.cancelled {
			return
		}
		fn()
	}
}

func (e *Engine) board() Board {
	b := make(Board, len(e.cells))
	for i, c := range e.cells {
		b[i] = CellView{ID: i, HasMole: c.hasMole, HasSnake: c.hasSnake}
	}
	return b
}
