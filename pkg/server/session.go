package server

import (
	"log"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/trytobebee/mole_go/pkg/game"
)

// GameServer is one connected player: an engine plus the queue of
// notifications waiting to be written to the socket
type GameServer struct {
	id       string
	engine   *game.Engine
	recorder *game.GameRecorder
	outbox   chan ServerMessage
	resync   atomic.Bool // a notification was dropped, send a full state next
}

// push queues a message without blocking; engine callbacks hold the engine lock
func (gs *GameServer) push(msg ServerMessage) {
	select {
	case gs.outbox <- msg:
	default:
		gs.resync.Store(true)
	}
}

func (gs *GameServer) BoardChanged(board game.Board) {
	gs.push(ServerMessage{Type: MsgBoard, Board: board})
}

func (gs *GameServer) ScoreChanged(score int) {
	gs.push(ServerMessage{Type: MsgScore, Value: score})
}

func (gs *GameServer) TimerChanged(remainingSeconds int) {
	gs.push(ServerMessage{Type: MsgTimer, Value: remainingSeconds})
}

func (gs *GameServer) GameOver(reason game.Reason) {
	gs.push(ServerMessage{Type: MsgGameOver, Reason: reason})
}

func (gs *GameServer) StartControlChanged(enabled bool) {
	gs.push(ServerMessage{Type: MsgControl, Enabled: enabled})
}

func (gs *GameServer) handleAction(msg ClientMessage, logger *log.Logger) {
	switch msg.Action {
	case ActionStart:
		gs.engine.Start()
	case ActionClick:
		gs.engine.ResolveClick(msg.Cell)
	case ActionReset:
		gs.engine.Reset()
	default:
		logger.Printf("Session %s: unknown action %q", gs.id, msg.Action)
	}
}

func (gs *GameServer) writeLoop(conn *websocket.Conn, done <-chan struct{}, logger *log.Logger) {
	for {
		select {
		case msg := <-gs.outbox:
			if gs.resync.Swap(false) {
				// The queue is missing a notification; replace it and the backlog
				// with a snapshot taken after the drain.
				gs.drain()
				state := gs.engine.Snapshot()
				msg = ServerMessage{Type: MsgState, State: &state}
			}
			if err := writeJSON(conn, msg); err != nil {
				logger.Println("Write error:", err)
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}

// drain discards every queued message without blocking
func (gs *GameServer) drain() {
	for {
		select {
		case <-gs.outbox:
		default:
			return
		}
	}
}
