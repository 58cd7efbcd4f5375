package game

import "github.com/trytobebee/mole_go/pkg/config"

// ClickResult is what a click on a cell did
type ClickResult int

const (
	ClickIgnored ClickResult = iota // Bad id or no running session
	ClickEmpty
	ClickMole
	ClickSnake
)

// placeMole puts a mole on a random cell holding neither a mole nor the snake
func (e *Engine) placeMole() bool {
	if e.moleCount() >= e.cfg.MaxConcurrentMoles {
		return false
	}

	// Find position that doesn't overlap with the snake or another mole
	for attempts := 0; attempts < config.MaxPlacementAttempts; attempts++ {
		id := e.rng.Intn(len(e.cells))
		c := &e.cells[id]
		if c.hasMole || c.hasSnake {
			continue
		}

		c.hasMole = true
		var expiry *task
		expiry = e.after(e.cfg.MoleLifetime, func() {
			if e.cells[id].expiry != expiry {
				return
			}
			e.expireMole(id)
		})
		c.expiry = expiry
		return true
	}
	return false
}

// expireMole clears an unclicked mole and counts it as missed
func (e *Engine) expireMole(id int) bool {
	if id < 0 || id >= len(e.cells) || !e.cells[id].hasMole {
		return false
	}
	e.clearMole(id)
	e.missed++
	e.listener.BoardChanged(e.board())
	return true
}

// relocateSnake moves the snake to a random cell without a mole
func (e *Engine) relocateSnake() {
	free := make([]int, 0, len(e.cells))
	for i := range e.cells {
		e.cells[i].hasSnake = false
		if !e.cells[i].hasMole {
			free = append(free, i)
		}
	}

	var id int
	if len(free) > 0 {
		id = free[e.rng.Intn(len(free))]
	} else {
		// Every cell has a mole; the snake wins the cell
		id = e.rng.Intn(len(e.cells))
		e.clearMole(id)
	}
	e.cells[id].hasSnake = true
}

// clearMole removes the mole on a cell, cancelling its expiry first
func (e *Engine) clearMole(id int) {
	c := &e.cells[id]
	c.expiry.cancel()
	c.expiry = nil
	c.hasMole = false
}

// clearMoles removes every mole and reports whether any was present
func (e *Engine) clearMoles() bool {
	cleared := false
	for i := range e.cells {
		if e.cells[i].hasMole || e.cells[i].expiry != nil {
			cleared = cleared || e.cells[i].hasMole
			e.clearMole(i)
		}
	}
	return cleared
}

func (e *Engine) moleCount() int {
	n := 0
	for _, c := range e.cells {
		if c.hasMole {
			n++
		}
	}
	return n
}
