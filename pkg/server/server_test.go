package server

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trytobebee/mole_go/pkg/clock"
	"github.com/trytobebee/mole_go/pkg/config"
	"github.com/trytobebee/mole_go/pkg/game"
)

func startServer(t *testing.T, cfg config.Options, opts ...Option) (*Server, *websocket.Conn) {
	t.Helper()
	s, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return s, conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

// slowConfig keeps the board still so a test can aim at the snake
func slowConfig() config.Options {
	cfg := config.Default()
	cfg.MoleSpawnPeriod = time.Hour
	cfg.SnakeMovePeriod = time.Hour
	cfg.TimerPeriod = time.Hour
	cfg.RevealDelay = 10 * time.Millisecond
	cfg.Seed = 3
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.BoardSize = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for empty board")
	}
}

func TestInitialMessages(t *testing.T) {
	_, conn := startServer(t, slowConfig())

	var first, second ServerMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Type != MsgConfig || first.Config == nil || first.Config.BoardSize != config.BoardSize {
		t.Fatalf("expected config message, got %+v", first)
	}
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatal(err)
	}
	if second.Type != MsgState || second.State == nil {
		t.Fatalf("expected state message, got %+v", second)
	}
	if second.State.Phase != "idle" || !second.State.StartEnabled || second.State.RemainingSeconds != config.StartSeconds {
		t.Errorf("unexpected initial state %+v", second.State)
	}
}

func TestSnakeClickOverSocket(t *testing.T) {
	_, conn := startServer(t, slowConfig())

	if err := conn.WriteJSON(ClientMessage{Action: ActionStart}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgControl && !m.Enabled })
	board := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgBoard && m.Board.SnakeCell() >= 0 })

	if err := conn.WriteJSON(ClientMessage{Action: ActionClick, Cell: board.Board.SnakeCell()}); err != nil {
		t.Fatal(err)
	}
	reveal := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgBoard })
	if reveal.Board.Snakes() != config.BoardSize {
		t.Errorf("expected the whole board to show the snake, got %d snakes", reveal.Board.Snakes())
	}

	over := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgGameOver })
	if over.Reason != game.ReasonSnake {
		t.Errorf("expected snake reason, got %q", over.Reason)
	}
	readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgControl && m.Enabled })

	if err := conn.WriteJSON(ClientMessage{Action: ActionReset}); err != nil {
		t.Fatal(err)
	}
	timer := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgTimer })
	if timer.Value != config.StartSeconds {
		t.Errorf("reset should restore the timer, got %d", timer.Value)
	}
}

func TestTimeoutOverSocket(t *testing.T) {
	cfg := slowConfig()
	cfg.TimerPeriod = 5 * time.Millisecond
	cfg.StartSeconds = 2
	_, conn := startServer(t, cfg)

	if err := conn.WriteJSON(ClientMessage{Action: "dance"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(ClientMessage{Action: ActionStart}); err != nil {
		t.Fatal(err)
	}
	over := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgGameOver })
	if over.Reason != game.ReasonTimeout {
		t.Errorf("expected timeout reason, got %q", over.Reason)
	}
}

func TestSessionJournal(t *testing.T) {
	dir := t.TempDir()
	s, conn := startServer(t, slowConfig(), WithRecordDir(dir))

	if err := conn.WriteJSON(ClientMessage{Action: ActionStart}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgTimer })
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Sessions() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session was not closed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}

	files, err := filepath.Glob(filepath.Join(dir, "mole_*.jsonl"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one journal, got %v (%v)", files, err)
	}
	f, err := os.Open(files[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	events, err := game.ReadJournal(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 || events[0].Type != game.EventControl {
		t.Errorf("journal should start with the start control change, got %+v", events)
	}
}

// clientView folds pushed messages the way the browser client does
type clientView struct {
	board        game.Board
	score        int
	remaining    int
	startEnabled bool
	states       int
}

func (v *clientView) apply(m ServerMessage) {
	switch m.Type {
	case MsgState:
		v.board = m.State.Board
		v.score = m.State.Score
		v.remaining = m.State.RemainingSeconds
		v.startEnabled = m.State.StartEnabled
		v.states++
	case MsgBoard:
		v.board = m.Board
	case MsgScore:
		v.score = m.Value
	case MsgTimer:
		v.remaining = m.Value
	case MsgControl:
		v.startEnabled = m.Enabled
	}
}

func TestOverflowResyncsToLatestState(t *testing.T) {
	gs := &GameServer{id: "overflow", outbox: make(chan ServerMessage, 3)}
	clk := clock.NewManual()
	cfg := config.Default()
	cfg.Seed = 5
	engine, err := game.NewEngine(cfg, gs, game.WithClock(clk))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	gs.engine = engine

	// Start fills the queue with control, score and timer and drops the board;
	// two more seconds drop every later notification.
	engine.Start()
	clk.Advance(2 * time.Second)
	if !gs.resync.Load() {
		t.Fatal("expected the full queue to request a resync")
	}

	upgrader := websocket.Upgrader{}
	done := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		gs.writeLoop(conn, done, log.New(io.Discard, "", 0))
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(done) })

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var view clientView
	for {
		conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
		var msg ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		view.apply(msg)
	}

	want := engine.Snapshot()
	if view.states != 1 {
		t.Errorf("expected exactly one resync state, got %d", view.states)
	}
	if view.remaining != want.RemainingSeconds || view.score != want.Score || view.startEnabled != want.StartEnabled {
		t.Errorf("client view (timer %d, score %d, start %v) differs from engine (timer %d, score %d, start %v)",
			view.remaining, view.score, view.startEnabled, want.RemainingSeconds, want.Score, want.StartEnabled)
	}
	if !reflect.DeepEqual(view.board, want.Board) {
		t.Errorf("client board %+v differs from engine board %+v", view.board, want.Board)
	}
	if len(gs.outbox) != 0 {
		t.Errorf("stale messages left in the queue: %d", len(gs.outbox))
	}
}
