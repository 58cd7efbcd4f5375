package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Journal event types
const (
	EventBoard   = "board"
	EventScore   = "score"
	EventTimer   = "timer"
	EventOver    = "gameover"
	EventControl = "control"
)

// JournalEvent is one engine notification as written to a journal
type JournalEvent struct {
	Seq     int       `json:"seq"`
	Time    time.Time `json:"time"`
	Type    string    `json:"type"`
	Board   Board     `json:"board,omitempty"`
	Value   int       `json:"value"`
	Reason  Reason    `json:"reason,omitempty"`
	Enabled bool      `json:"enabled,omitempty"`
}

// GameRecorder is a Listener that writes every notification to a JSONL file
// from a background goroutine
type GameRecorder struct {
	SessionID string

	file       *os.File
	writer     *bufio.Writer
	recordChan chan JournalEvent
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	seq        int
	dropped    int
}

// NewRecorder creates a recorder writing to dir.
// Filename format: mole_{sessionID}_{timestamp}.jsonl. An empty sessionID gets a random one.
func NewRecorder(dir, sessionID string) (*GameRecorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create records dir: %w", err)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	filename := fmt.Sprintf("mole_%s_%d.jsonl", sessionID, time.Now().Unix())
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create record file: %w", err)
	}

	r := &GameRecorder{
		SessionID:  sessionID,
		file:       f,
		writer:     bufio.NewWriter(f),
		recordChan: make(chan JournalEvent, 1000),
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r, nil
}

// Path returns the journal file location
func (r *GameRecorder) Path() string {
	return r.file.Name()
}

// Dropped returns how many events were lost because the queue was full
func (r *GameRecorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *GameRecorder) BoardChanged(board Board) {
	r.record(JournalEvent{Type: EventBoard, Board: board})
}

func (r *GameRecorder) ScoreChanged(score int) {
	r.record(JournalEvent{Type: EventScore, Value: score})
}

func (r *GameRecorder) TimerChanged(remainingSeconds int) {
	r.record(JournalEvent{Type: EventTimer, Value: remainingSeconds})
}

func (r *GameRecorder) GameOver(reason Reason) {
	r.record(JournalEvent{Type: EventOver, Reason: reason})
}

func (r *GameRecorder) StartControlChanged(enabled bool) {
	r.record(JournalEvent{Type: EventControl, Enabled: enabled})
}

// record queues an event. Non-blocking (drops if full) since it runs inside engine callbacks.
func (r *GameRecorder) record(ev JournalEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.seq++
	ev.Seq = r.seq
	ev.Time = time.Now()

	select {
	case r.recordChan <- ev:
	default:
		r.dropped++
	}
}

// Close flushes the buffer and closes the file
func (r *GameRecorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.recordChan)
	r.mu.Unlock()

	r.wg.Wait()
	return r.file.Close()
}

func (r *GameRecorder) writeLoop() {
	defer r.wg.Done()

	encoder := json.NewEncoder(r.writer)
	for ev := range r.recordChan {
		if err := encoder.Encode(ev); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording event: %v\n", err)
		}
	}
	if err := r.writer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing journal: %v\n", err)
	}
}

// ReadJournal parses a journal written by GameRecorder
func ReadJournal(rd io.Reader) ([]JournalEvent, error) {
	var events []JournalEvent
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var ev JournalEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return events, nil
}

// Apply folds one journal event into s. Missed moles are not journaled,
// so Missed is left untouched.
func (s *GameState) Apply(ev JournalEvent) {
	switch ev.Type {
	case EventBoard:
		s.Board = ev.Board
		if s.Phase == PhaseRunning.String() && len(ev.Board) > 0 && ev.Board.Snakes() == len(ev.Board) {
			s.Phase = PhaseRevealing.String()
		}
	case EventScore:
		s.Score = ev.Value
	case EventTimer:
		s.RemainingSeconds = ev.Value
	case EventOver:
		s.Phase = PhaseIdle.String()
		s.GameOver = true
		s.Reason = ev.Reason
	case EventControl:
		s.StartEnabled = ev.Enabled
		if ev.Enabled {
			if !s.GameOver {
				s.Phase = PhaseIdle.String()
			}
		} else {
			s.Phase = PhaseRunning.String()
			s.GameOver = false
			s.Reason = ""
		}
	}
}
