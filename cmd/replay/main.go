package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/integrii/flaggy"

	"github.com/trytobebee/mole_go/pkg/config"
	"github.com/trytobebee/mole_go/pkg/game"
	"github.com/trytobebee/mole_go/pkg/input"
	"github.com/trytobebee/mole_go/pkg/renderer"
)

// RecordFile is one journal found in the records directory
type RecordFile struct {
	Name      string
	Size      int64
	Time      time.Time
	SessionID string
}

func main() {
	var (
		recordDir = "records"
		file      string
		speed     = 1.0
		columns   = config.Columns
		noColor   bool
	)

	flaggy.SetName("replay")
	flaggy.SetDescription("Plays back a whack-a-mole journal in the terminal")
	flaggy.String(&recordDir, "d", "dir", "Directory holding journals")
	flaggy.Float64(&speed, "s", "speed", "Playback speed multiplier")
	flaggy.Int(&columns, "c", "columns", "Cells per row")
	flaggy.Bool(&noColor, "", "no-color", "Disable colored output")
	flaggy.AddPositionalValue(&file, "journal", 1, false, "Journal file to play; lists the directory when omitted")
	flaggy.Parse()

	if file == "" {
		records, err := listRecords(recordDir)
		if err != nil {
			log.Fatalf("Failed to list %s: %v", recordDir, err)
		}
		if len(records) == 0 {
			fmt.Printf("No recordings found in %s\n", recordDir)
			return
		}
		fmt.Println("📼 Replay Library")
		for _, r := range records {
			fmt.Printf("  %s  session %s  %d bytes  %s\n", r.Name, r.SessionID, r.Size, r.Time.Format("2006-01-02 15:04:05"))
		}
		return
	}
	if speed <= 0 {
		log.Fatalf("Speed must be positive, got %v", speed)
	}

	path := file
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(recordDir, file)
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open record: %v", err)
	}
	events, err := game.ReadJournal(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read record: %v", err)
	}
	if len(events) == 0 {
		fmt.Println("Journal is empty")
		return
	}

	boardSize := 0
	for _, ev := range events {
		if ev.Type == game.EventBoard {
			boardSize = len(ev.Board)
			break
		}
	}

	render := renderer.NewTerminalRenderer(os.Stdout, columns, input.Labels(boardSize), !noColor)
	render.HideCursor()
	defer render.ShowCursor()

	state := game.GameState{Phase: game.PhaseIdle.String(), StartEnabled: true}
	prev := events[0].Time
	for _, ev := range events {
		if gap := ev.Time.Sub(prev); gap > 0 {
			time.Sleep(time.Duration(float64(gap) / speed))
		}
		prev = ev.Time

		state.Apply(ev)
		if err := render.Render(state); err != nil {
			log.Fatalf("Render error: %v", err)
		}
	}
}

// listRecords returns the journals in dir, newest first
func listRecords(dir string) ([]RecordFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []RecordFile
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		// expecting format: mole_{sessionID}_{timestamp}.jsonl
		sessID := ""
		if parts := strings.Split(strings.TrimSuffix(e.Name(), ".jsonl"), "_"); len(parts) >= 3 {
			sessID = strings.Join(parts[1:len(parts)-1], "_")
		}
		records = append(records, RecordFile{
			Name:      e.Name(),
			Size:      info.Size(),
			Time:      info.ModTime(),
			SessionID: sessID,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Time.After(records[j].Time)
	})
	return records, nil
}
