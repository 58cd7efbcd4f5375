package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/trytobebee/mole_go/pkg/config"
	"github.com/trytobebee/mole_go/pkg/game"
)

// TerminalRenderer draws game snapshots as text
type TerminalRenderer struct {
	out     io.Writer
	columns int
	labels  []string
	au      aurora.Aurora
	buffer  strings.Builder
}

// NewTerminalRenderer creates a renderer writing to out.
// labels[i] is the key shown next to cell i; missing labels are left blank.
func NewTerminalRenderer(out io.Writer, columns int, labels []string, colors bool) *TerminalRenderer {
	if columns <= 0 {
		columns = config.Columns
	}
	return &TerminalRenderer{
		out:     out,
		columns: columns,
		labels:  labels,
		au:      aurora.NewAurora(colors),
	}
}

// ShowCursor shows the cursor (call on exit)
func (r *TerminalRenderer) ShowCursor() {
	fmt.Fprint(r.out, "\033[?25h")
}

// HideCursor hides the cursor (call on start)
func (r *TerminalRenderer) HideCursor() {
	fmt.Fprint(r.out, "\033[?25l")
}

// Render clears the screen and draws the state in one write
func (r *TerminalRenderer) Render(s game.GameState) error {
	_, err := io.WriteString(r.out, "\033[H\033[2J\033[3J"+r.Frame(s))
	return err
}

// Frame builds the text for one snapshot
func (r *TerminalRenderer) Frame(s game.GameState) string {
	r.buffer.Reset()

	r.buffer.WriteString("\n  " + r.au.Bold("🔨 WHACK-A-MOLE 🔨").String() + "\n")

	timeStr := fmt.Sprintf("%ds", s.RemainingSeconds)
	if s.RemainingSeconds <= 5 {
		timeStr = r.au.Red(timeStr).String()
	}
	fmt.Fprintf(&r.buffer, "  Score: %s  |  Missed: %d  |  Time Left: %s\n\n",
		r.au.Green(s.Score).String(), s.Missed, timeStr)

	for i, c := range s.Board {
		if i%r.columns == 0 {
			r.buffer.WriteString("  ")
		}
		r.buffer.WriteString(r.cell(c))
		if i%r.columns == r.columns-1 || i == len(s.Board)-1 {
			r.buffer.WriteString("\n")
		} else {
			r.buffer.WriteString(" ")
		}
	}

	r.buffer.WriteString("\n")
	switch {
	case s.Phase == game.PhaseRunning.String():
		r.buffer.WriteString("  Hit the key next to a mole. Avoid the snake!\n")
	case s.Phase == game.PhaseRevealing.String():
		r.buffer.WriteString("  " + r.au.Red("💥 You hit the snake!").String() + "\n")
	case s.GameOver && s.Reason == game.ReasonSnake:
		r.buffer.WriteString("  " + r.au.Red("💀 GAME OVER - the snake got you").String() + "\n")
	case s.GameOver:
		r.buffer.WriteString("  " + r.au.Yellow("⏰ TIME'S UP").String() + "\n")
	}
	if s.StartEnabled {
		r.buffer.WriteString("  SPACE to start, ENTER to reset, ESC to quit\n")
	}

	return r.buffer.String()
}

func (r *TerminalRenderer) cell(c game.CellView) string {
	label := " "
	if c.ID < len(r.labels) {
		label = r.labels[c.ID]
	}

	switch {
	case c.HasSnake:
		return "[" + label + "]" + r.au.Red(config.CharSnake).String()
	case c.HasMole:
		return "[" + r.au.Bold(label).String() + "]" + config.CharMole
	default:
		return "[" + label + "]" + config.CharHole
	}
}
