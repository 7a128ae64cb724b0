// Package servertest provides an in-process stand-in for the authoritative
// game server: a websocket endpoint that tracks channel subscriptions and
// room joins, records every action a surface emits, and the HTTP snapshot
// routes the surfaces fetch on startup. Tests script it to drive surfaces
// end to end without a real backend.
package servertest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/tablero-live/surfaces/pkg/wire"
)

const writeTimeout = 3 * time.Second

type session struct {
	conn *websocket.Conn
	subs map[string]bool
}

type Server struct {
	httpSrv *httptest.Server

	mu        sync.Mutex
	sessions  map[*session]bool
	gameState wire.GameState
	questions map[string][]wire.Question
	chat      []wire.ChatMessage
	overlay   wire.FullState

	// Actions receives every non-subscription action a client sends.
	Actions chan map[string]any
}

func New() *Server {
	s := &Server{
		sessions:  make(map[*session]bool),
		questions: make(map[string][]wire.Question),
		Actions:   make(chan map[string]any, 64),
	}

	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	r.Get("/api/game_state", s.handleGameState)
	r.Get("/api/questions/{questionType}", s.handleQuestions)
	r.Get("/api/overlay/chat", s.handleOverlayChat)
	r.Get("/api/overlay/scoreboard", s.handleOverlayScoreboard)

	s.httpSrv = httptest.NewServer(r)
	return s
}

func (s *Server) Close() {
	s.mu.Lock()
	for sess := range s.sessions {
		_ = sess.conn.Close(websocket.StatusGoingAway, "server closing")
	}
	s.sessions = make(map[*session]bool)
	s.mu.Unlock()
	s.httpSrv.Close()
}

// WSURL is the websocket endpoint surfaces should dial.
func (s *Server) WSURL() string {
	return "ws" + strings.TrimPrefix(s.httpSrv.URL, "http") + "/ws"
}

// APIURL is the base URL for the snapshot routes.
func (s *Server) APIURL() string { return s.httpSrv.URL }

// SetGameState seeds the state returned by /api/game_state and
// get_game_state.
func (s *Server) SetGameState(gs wire.GameState) {
	s.mu.Lock()
	s.gameState = gs
	s.mu.Unlock()
}

func (s *Server) SetQuestions(questionType string, qs []wire.Question) {
	s.mu.Lock()
	s.questions[questionType] = qs
	s.mu.Unlock()
}

func (s *Server) SetChat(msgs []wire.ChatMessage) {
	s.mu.Lock()
	s.chat = msgs
	s.mu.Unlock()
}

func (s *Server) SetOverlayScoreboard(fs wire.FullState) {
	s.mu.Lock()
	s.overlay = fs
	s.mu.Unlock()
}

// Broadcast sends msg to every session subscribed to the named channel or
// room.
func (s *Server) Broadcast(target string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.mu.Lock()
	var conns []*websocket.Conn
	for sess := range s.sessions {
		if sess.subs[target] {
			conns = append(conns, sess.conn)
		}
	}
	s.mu.Unlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		_ = conn.Write(ctx, websocket.MessageText, data)
		cancel()
	}
}

// SessionCount reports how many websocket clients are currently connected.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	sess := &session{conn: conn, subs: make(map[string]bool)}
	s.mu.Lock()
	s.sessions[sess] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		typ, _ := msg["type"].(string)
		switch typ {
		case wire.TypeSubscribe:
			if ch, ok := msg["channel"].(string); ok {
				s.mu.Lock()
				sess.subs[ch] = true
				s.mu.Unlock()
			}
		case wire.TypeJoin:
			if room, ok := msg["room"].(string); ok {
				s.mu.Lock()
				sess.subs[room] = true
				s.mu.Unlock()
				s.reply(r.Context(), conn, wire.Status{Type: wire.TypeStatus, Msg: "joined " + room})
			}
		case wire.TypeGetGameState:
			s.mu.Lock()
			gs := s.gameState
			s.mu.Unlock()
			gs.Type = wire.TypeGameState
			s.reply(r.Context(), conn, gs)
		default:
			select {
			case s.Actions <- msg:
			default:
			}
		}
	}
}

func (s *Server) reply(ctx context.Context, conn *websocket.Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, data)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	gs := s.gameState
	s.mu.Unlock()
	writeJSON(w, gs)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	questionType := chi.URLParam(r, "questionType")
	s.mu.Lock()
	qs := s.questions[questionType]
	s.mu.Unlock()
	if qs == nil {
		qs = []wire.Question{}
	}
	writeJSON(w, qs)
}

func (s *Server) handleOverlayChat(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	msgs := s.chat
	s.mu.Unlock()
	writeJSON(w, map[string]any{"messages": msgs})
}

func (s *Server) handleOverlayScoreboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fs := s.overlay
	s.mu.Unlock()
	writeJSON(w, fs)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
