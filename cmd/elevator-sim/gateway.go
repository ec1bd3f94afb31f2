package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-elevator-dispatch/pkg/sim"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // single-user simulator, no cross-origin concern
	},
}

// ClientMessage is one command from a gateway client.
type ClientMessage struct {
	Action    string `json:"action"`
	Floor     int    `json:"floor,omitempty"`
	Car       int    `json:"car,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// ServerMessage carries fleet state or an error back to the client.
type ServerMessage struct {
	Type      string            `json:"type"`
	Tick      int               `json:"tick"`
	Cars      []sim.CarSnapshot `json:"cars,omitempty"`
	HallCalls []HallCallView    `json:"hallCalls,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type HallCallView struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

// gateway exposes the read-only fleet view, the two request operations and
// the board/alight passenger operations over WebSocket. Hall and car calls
// are pushed as events like any other producer's; board and alight change
// the car's passenger count directly through the engine.
type gateway struct {
	engine *sim.Engine
	logger *slog.Logger
}

func newGateway(engine *sim.Engine) *gateway {
	return &gateway{
		engine: engine,
		logger: slog.Default().With("component", "gateway"),
	}
}

func (g *gateway) serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWebSocket)

	g.logger.Info("gateway listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

func (g *gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := &gatewaySession{
		id:     uuid.NewString(),
		conn:   conn,
		engine: g.engine,
		logger: g.logger,
		done:   make(chan struct{}),
	}
	session.handleMessages()
}

// gatewaySession manages one WebSocket connection.
type gatewaySession struct {
	id     string
	conn   *websocket.Conn
	engine *sim.Engine
	logger *slog.Logger

	mu   sync.Mutex
	done chan struct{}
}

func (s *gatewaySession) handleMessages() {
	s.logger.Info("session started", "session", s.id, "remote_addr", s.conn.RemoteAddr())
	defer func() {
		close(s.done)
		_ = s.conn.Close()
		s.logger.Info("session ended", "session", s.id)
	}()

	// Stream fleet state alongside command responses.
	go s.stateStreamer()

	s.sendState()

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("websocket read error", "session", s.id, "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.logger.Warn("failed to parse message", "session", s.id, "error", err)
			continue
		}

		s.handleAction(msg)
	}
}

func (s *gatewaySession) stateStreamer() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sendState()
		}
	}
}

func (s *gatewaySession) handleAction(msg ClientMessage) {
	var err error
	switch msg.Action {
	case "hallCall":
		err = s.engine.RequestHallCall(msg.Floor, sim.Direction(msg.Direction))
	case "carCall":
		err = s.engine.RequestCarCall(msg.Car, msg.Floor)
	case "board":
		err = s.engine.Board(msg.Car)
	case "alight":
		err = s.engine.Alight(msg.Car)
	case "status":
		// state is sent below either way
	default:
		s.logger.Warn("unknown action", "session", s.id, "action", msg.Action)
		return
	}

	if err != nil {
		s.writeJSON(ServerMessage{
			Type:  "error",
			Tick:  s.engine.CurrentTick(),
			Error: err.Error(),
		})
		return
	}
	s.sendState()
}

func (s *gatewaySession) sendState() {
	calls := s.engine.HallCalls()
	views := make([]HallCallView, 0, len(calls))
	for _, call := range calls {
		views = append(views, HallCallView{Floor: call.Floor, Direction: string(call.Dir)})
	}

	s.writeJSON(ServerMessage{
		Type:      "state",
		Tick:      s.engine.CurrentTick(),
		Cars:      s.engine.CarSnapshots(),
		HallCalls: views,
	})
}

func (s *gatewaySession) writeJSON(msg ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Error("failed to write message", "session", s.id, "error", err)
	}
}
