// Package server connects browser clients to game engines over websockets.
// Every connection plays its own independent session.
package server

import (
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/trytobebee/mole_go/pkg/config"
	"github.com/trytobebee/mole_go/pkg/game"
)

// Message types sent to the client
const (
	MsgConfig   = "config"
	MsgState    = "state"
	MsgBoard    = "board"
	MsgScore    = "score"
	MsgTimer    = "timer"
	MsgGameOver = "gameover"
	MsgControl  = "control"
)

// Client actions
const (
	ActionStart = "start"
	ActionClick = "click"
	ActionReset = "reset"
)

const (
	writeWait  = 5 * time.Second
	outboxSize = 256
)

// ServerMessage is one message pushed to the browser
type ServerMessage struct {
	Type    string           `json:"type"`
	Config  *game.GameConfig `json:"config,omitempty"`
	State   *game.GameState  `json:"state,omitempty"`
	Board   game.Board       `json:"board,omitempty"`
	Value   int              `json:"value"`
	Reason  game.Reason      `json:"reason,omitempty"`
	Enabled bool             `json:"enabled"`
}

// ClientMessage is one action sent by the browser
type ClientMessage struct {
	Action string `json:"action"`
	Cell   int    `json:"cell"`
}

// Server accepts websocket connections and runs one engine per connection
type Server struct {
	cfg       config.Options
	logger    *log.Logger
	recordDir string
	staticDir string
	upgrader  websocket.Upgrader
	sessions  atomic.Int32
}

// Option customizes a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRecordDir enables event journals for every session
func WithRecordDir(dir string) Option {
	return func(s *Server) { s.recordDir = dir }
}

// WithStaticDir serves the browser client from dir
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// New creates a server for the given game settings
func New(cfg config.Options, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:    cfg,
		logger: log.New(io.Discard, "", 0),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the HTTP routes: /ws for the game and / for static files
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

// Sessions returns the number of connected players
func (s *Server) Sessions() int {
	return int(s.sessions.Load())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	gs, err := s.newSession()
	if err != nil {
		s.logger.Println("Session error:", err)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session unavailable"))
		return
	}
	defer s.closeSession(gs)

	s.logger.Printf("New WebSocket connection from %s (session %s, %d active)", r.RemoteAddr, gs.id, s.Sessions())

	// Initial config and state; the writer goroutine is not running yet
	gameConfig := gs.engine.Config()
	initialState := gs.engine.Snapshot()
	if err := writeJSON(conn, ServerMessage{Type: MsgConfig, Config: &gameConfig}); err != nil {
		s.logger.Println("Write error:", err)
		return
	}
	if err := writeJSON(conn, ServerMessage{Type: MsgState, State: &initialState}); err != nil {
		s.logger.Println("Write error:", err)
		return
	}

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		gs.writeLoop(conn, done, s.logger)
	}()

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Println("Read error:", err)
			}
			break
		}
		gs.handleAction(msg, s.logger)
	}

	close(done)
	<-writerDone
}

func (s *Server) newSession() (*GameServer, error) {
	gs := &GameServer{
		id:     uuid.NewString(),
		outbox: make(chan ServerMessage, outboxSize),
	}

	listeners := game.MultiListener{gs}
	if s.recordDir != "" {
		rec, err := game.NewRecorder(s.recordDir, gs.id)
		if err != nil {
			return nil, err
		}
		gs.recorder = rec
		listeners = append(listeners, rec)
	}

	engine, err := game.NewEngine(s.cfg, listeners, game.WithLogger(s.logger))
	if err != nil {
		if gs.recorder != nil {
			gs.recorder.Close()
		}
		return nil, err
	}
	gs.engine = engine

	s.sessions.Add(1)
	return gs, nil
}

func (s *Server) closeSession(gs *GameServer) {
	gs.engine.Stop()
	if gs.recorder != nil {
		if err := gs.recorder.Close(); err != nil {
			s.logger.Printf("Journal close error for %s: %v", gs.id, err)
		}
	}
	s.sessions.Add(-1)
	s.logger.Printf("Session %s closed", gs.id)
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
