package overlay

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Server exposes the widgets as browser sources for the streaming software:
// an HTML page per widget plus JSON state routes, and a QR code that sends a
// phone straight to a team's answer pad.
type Server struct {
	alerts *Alerts
	chat   *Chat
	score  *Score

	// joinBase is the public URL the QR codes point at.
	joinBase string
	log      *zap.Logger
}

func NewServer(alerts *Alerts, chat *Chat, score *Score, joinBase string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		alerts:   alerts,
		chat:     chat,
		score:    score,
		joinBase: joinBase,
		log:      log.Named("overlay.server"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/overlay/alerts", s.widgetPage("Alertas", func() string { return RenderAlert(s.alerts.View()) }))
	r.Get("/overlay/chat", s.widgetPage("Chat", func() string { return RenderChat(s.chat.View()) }))
	r.Get("/overlay/scoreboard", s.widgetPage("Marcador", func() string { return RenderScore(s.score.View()) }))

	r.Get("/api/state/alerts", s.jsonState(func() any { return s.alerts.View() }))
	r.Get("/api/state/chat", s.jsonState(func() any { return s.chat.View() }))
	r.Get("/api/state/scoreboard", s.jsonState(func() any { return s.score.View() }))

	r.Get("/join/{team}", s.handleJoinQR)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!doctype html><title>Overlay</title><ul>`+
		`<li><a href="/overlay/alerts">Alertas</a></li>`+
		`<li><a href="/overlay/chat">Chat</a></li>`+
		`<li><a href="/overlay/scoreboard">Marcador</a></li>`+
		`<li><a href="/join/team1">QR equipo 1</a></li>`+
		`<li><a href="/join/team2">QR equipo 2</a></li>`+
		`</ul>`)
}

// widgetPage serves a self-refreshing page around the widget's current frame.
func (s *Server) widgetPage(title string, frame func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w,
			`<!doctype html><title>%s</title><meta http-equiv="refresh" content="1">`+
				`<body style="background:transparent;color:#fff;font-family:monospace">`+
				`<pre>%s</pre></body>`,
			html.EscapeString(title), html.EscapeString(frame()))
	}
}

func (s *Server) jsonState(view func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view()); err != nil {
			s.log.Warn("encode state", zap.Error(err))
		}
	}
}

// handleJoinQR renders a QR code pointing a phone at the team's answer pad.
func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	team := chi.URLParam(r, "team")
	if team != "team1" && team != "team2" {
		http.Error(w, "unknown team", http.StatusNotFound)
		return
	}
	target := fmt.Sprintf("%s/answers/%s", s.joinBase, team)
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		s.log.Error("encode qr", zap.Error(err))
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
