package main

import (
	"fmt"
	"log"
	"os"

	"github.com/integrii/flaggy"

	"github.com/trytobebee/mole_go/pkg/config"
	"github.com/trytobebee/mole_go/pkg/game"
	"github.com/trytobebee/mole_go/pkg/input"
	"github.com/trytobebee/mole_go/pkg/renderer"
)

// repaint coalesces engine notifications into redraw requests. Engine
// callbacks run under the engine lock, so they only signal the main loop.
type repaint chan struct{}

func (r repaint) signal() {
	select {
	case r <- struct{}{}:
	default:
	}
}

func (r repaint) BoardChanged(game.Board) { r.signal() }
func (r repaint) ScoreChanged(int) { r.signal() }
func (r repaint) TimerChanged(int) { r.signal() }
func (r repaint) GameOver(game.Reason) { r.signal() }
func (r repaint) StartControlChanged(bool) { r.signal() }

func main() {
	opts := config.Default()
	var (
		record    bool
		recordDir = "records"
		noColor   bool
	)

	flaggy.SetName("mole")
	flaggy.SetDescription("Whack-a-mole in the terminal")
	config.BindFlags(flaggy.DefaultParser, &opts)
	flaggy.Bool(&record, "", "record", "Write an event journal for the session")
	flaggy.String(&recordDir, "", "records", "Directory for event journals")
	flaggy.Bool(&noColor, "", "no-color", "Disable colored output")
	flaggy.Parse()

	logger := log.New(os.Stderr, "mole: ", log.LstdFlags)

	redraw := make(repaint, 1)
	listeners := game.MultiListener{redraw}
	if record {
		rec, err := game.NewRecorder(recordDir, "")
		if err != nil {
			logger.Fatalf("Error creating journal: %v", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Printf("Error closing journal: %v", err)
			}
		}()
		listeners = append(listeners, rec)
	}

	engine, err := game.NewEngine(opts, listeners)
	if err != nil {
		logger.Fatalf("Invalid settings: %v", err)
	}

	// Initialize input handler
	inputHandler := input.NewKeyboardHandler()
	if err := inputHandler.Start(); err != nil {
		fmt.Println("Error opening keyboard:", err)
		return
	}
	defer inputHandler.Stop()

	// Initialize renderer
	render := renderer.NewTerminalRenderer(os.Stdout, opts.Columns, input.Labels(opts.BoardSize), !noColor)
	render.HideCursor()
	defer render.ShowCursor()

	inputChan := inputHandler.GetInputChan()

	// Initial render
	render.Render(engine.Snapshot())

	for {
		select {
		case inputEvent := <-inputChan:
			switch {
			case input.IsQuit(inputEvent):
				engine.Stop()
				fmt.Println("\n  Thanks for playing! 👋")
				return
			case input.IsStart(inputEvent):
				engine.Start()
			case input.IsReset(inputEvent):
				engine.Reset()
			default:
				if cellID, isValid := input.ParseCell(inputEvent, opts.BoardSize); isValid {
					engine.ResolveClick(cellID)
				}
			}

		case <-redraw:
			if err := render.Render(engine.Snapshot()); err != nil {
				logger.Printf("Render error: %v", err)
			}
		}
	}
}
