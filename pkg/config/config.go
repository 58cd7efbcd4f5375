package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/integrii/flaggy"
)

// Board settings
const (
	BoardSize          = 12
	Columns            = 4 // Display grid: 4 x 3
	MaxConcurrentMoles = 3
)

// Timing settings
const (
	MoleLifetime    = 2000 * time.Millisecond // Time before an unclicked mole disappears
	MoleSpawnPeriod = 1000 * time.Millisecond
	SnakeMovePeriod = 2000 * time.Millisecond
	TimerPeriod     = 1000 * time.Millisecond
	StartSeconds    = 30
	RevealDelay     = 500 * time.Millisecond // Full-board snake reveal before game over
)

// Spawn settings
const (
	MaxPlacementAttempts = 100
)

// ErrInvalidOptions is returned by Validate for unusable settings.
var ErrInvalidOptions = errors.New("invalid options")

// Options holds the overridable engine settings. They are fixed once an engine is built.
type Options struct {
	BoardSize          int
	Columns            int
	MaxConcurrentMoles int
	MoleLifetime       time.Duration
	MoleSpawnPeriod    time.Duration
	SnakeMovePeriod    time.Duration
	TimerPeriod        time.Duration
	StartSeconds       int
	RevealDelay        time.Duration
	Seed               int64 // 0 means seed from the current time
}

// Default returns the standard game settings
func Default() Options {
	return Options{
		BoardSize:          BoardSize,
		Columns:            Columns,
		MaxConcurrentMoles: MaxConcurrentMoles,
		MoleLifetime:       MoleLifetime,
		MoleSpawnPeriod:    MoleSpawnPeriod,
		SnakeMovePeriod:    SnakeMovePeriod,
		TimerPeriod:        TimerPeriod,
		StartSeconds:       StartSeconds,
		RevealDelay:        RevealDelay,
	}
}

// Validate checks that the options describe a playable game
func (o Options) Validate() error {
	switch {
	case o.BoardSize <= 0:
		return fmt.Errorf("%w: board size must be positive, got %d", ErrInvalidOptions, o.BoardSize)
	case o.Columns <= 0:
		return fmt.Errorf("%w: columns must be positive, got %d", ErrInvalidOptions, o.Columns)
	case o.MaxConcurrentMoles < 0:
		return fmt.Errorf("%w: max concurrent moles must not be negative, got %d", ErrInvalidOptions, o.MaxConcurrentMoles)
	case o.StartSeconds < 0:
		return fmt.Errorf("%w: start seconds must not be negative, got %d", ErrInvalidOptions, o.StartSeconds)
	case o.MoleLifetime <= 0, o.RevealDelay < 0:
		return fmt.Errorf("%w: mole lifetime and reveal delay must be positive", ErrInvalidOptions)
	case o.MoleSpawnPeriod <= 0, o.SnakeMovePeriod <= 0, o.TimerPeriod <= 0:
		return fmt.Errorf("%w: periods must be positive", ErrInvalidOptions)
	}
	return nil
}

// Rows returns the number of display rows needed for the board
func (o Options) Rows() int {
	if o.Columns <= 0 {
		return 0
	}
	return (o.BoardSize + o.Columns - 1) / o.Columns
}

// BindFlags registers command-line overrides for every option on p
func BindFlags(p *flaggy.Parser, o *Options) {
	p.Int(&o.BoardSize, "b", "board", "Number of cells on the board")
	p.Int(&o.Columns, "c", "columns", "Number of cells per row when drawing the board")
	p.Int(&o.MaxConcurrentMoles, "m", "moles", "Maximum number of moles on the board at once")
	p.Duration(&o.MoleLifetime, "l", "lifetime", "How long a mole stays up, for example 2000ms")
	p.Duration(&o.MoleSpawnPeriod, "", "spawn", "Interval between mole spawn attempts")
	p.Duration(&o.SnakeMovePeriod, "", "snake", "Interval between snake relocations")
	p.Duration(&o.TimerPeriod, "", "tick", "Countdown tick interval")
	p.Int(&o.StartSeconds, "t", "time", "Countdown start value in ticks")
	p.Duration(&o.RevealDelay, "", "reveal", "Snake reveal time before game over")
	p.Int64(&o.Seed, "", "seed", "Random seed (0 uses the current time)")
}

// Emoji characters for rendering
const (
	CharHole  = "🕳️"
	CharMole  = "🐹"
	CharSnake = "🐍"
)
