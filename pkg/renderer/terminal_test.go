package renderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/trytobebee/mole_go/pkg/config"
	"github.com/trytobebee/mole_go/pkg/game"
)

func testState() game.GameState {
	board := make(game.Board, 12)
	for i := range board {
		board[i].ID = i
	}
	board[1].HasMole = true
	board[6].HasMole = true
	board[9].HasSnake = true
	return game.GameState{
		Board:            board,
		Score:            4,
		Missed:           2,
		RemainingSeconds: 17,
		Phase:            game.PhaseRunning.String(),
	}
}

func TestFrameLayout(t *testing.T) {
	labels := strings.Split("qwerasdfzxcv", "")
	r := NewTerminalRenderer(&bytes.Buffer{}, 4, labels, false)

	frame := r.Frame(testState())

	if !strings.Contains(frame, "Score: 4  |  Missed: 2  |  Time Left: 17s") {
		t.Errorf("header missing from frame:\n%s", frame)
	}
	if n := strings.Count(frame, config.CharMole); n != 2 {
		t.Errorf("expected 2 moles drawn, got %d", n)
	}
	if n := strings.Count(frame, config.CharSnake); n != 1 {
		t.Errorf("expected 1 snake drawn, got %d", n)
	}
	if !strings.Contains(frame, "[w]"+config.CharMole) {
		t.Errorf("cell 1 should be labelled w and hold a mole:\n%s", frame)
	}
	if !strings.Contains(frame, "[x]"+config.CharSnake) {
		t.Errorf("cell 9 should be labelled x and hold the snake:\n%s", frame)
	}

	rows := 0
	for _, line := range strings.Split(frame, "\n") {
		if strings.HasPrefix(line, "  [") {
			rows++
			if n := strings.Count(line, "["); n != 4 {
				t.Errorf("expected 4 cells per row, got %d in %q", n, line)
			}
		}
	}
	if rows != 3 {
		t.Errorf("expected 3 board rows, got %d", rows)
	}
	if strings.Contains(frame, "SPACE to start") {
		t.Error("start hint shown while running")
	}
}

func TestFrameGameOver(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 4, nil, false)

	tests := []struct {
		name   string
		reason game.Reason
		want   string
	}{
		{"timeout", game.ReasonTimeout, "TIME'S UP"},
		{"snake", game.ReasonSnake, "the snake got you"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := testState()
			s.Phase = game.PhaseIdle.String()
			s.GameOver = true
			s.Reason = tc.reason
			s.StartEnabled = true

			frame := r.Frame(s)
			if !strings.Contains(frame, tc.want) {
				t.Errorf("expected %q in frame:\n%s", tc.want, frame)
			}
			if !strings.Contains(frame, "SPACE to start") {
				t.Error("start hint missing after game over")
			}
		})
	}
}

func TestRenderWritesFrame(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 4, nil, true)

	if err := r.Render(testState()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "\033[H\033[2J") {
		t.Error("expected the frame to start with a screen clear")
	}
	if !strings.Contains(out.String(), "\033[") {
		t.Error("expected ANSI colour codes when colours are on")
	}
}

func BenchmarkFrame(b *testing.B) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 4, strings.Split("qwerasdfzxcv", ""), true)
	s := testState()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Frame(s)
	}
}
