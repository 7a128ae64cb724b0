package overlay

import (
	"context"

	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/pkg/wire"
)

type scoreMsg interface{ isScoreMsg() }

// ScoreFromServer wraps a decoded realtime message for the scoreboard widget.
type ScoreFromServer struct{ Msg wire.Message }

type getScoreView struct{ reply chan ScoreView }

func (ScoreFromServer) isScoreMsg() {}
func (getScoreView) isScoreMsg()   {}

// ScoreView is the widget's renderable snapshot. Empty names fall back to the
// default labels at render time.
type ScoreView struct {
	Team1Name  string
	Team2Name  string
	Team1Score int
	Team2Score int
	Round      string
	Timer      int
}

// Score is the compact scoreboard strip: names, totals, round label and a
// countdown in whole seconds. full_state merges only the sections it carries.
type Score struct {
	inbox  chan scoreMsg
	frames chan string
	view   ScoreView
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScore(parent context.Context, log *zap.Logger) *Score {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	s := &Score{
		inbox:  make(chan scoreMsg, 64),
		frames: make(chan string, 8),
		log:    log.Named("overlay.score"),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Score) Frames() <-chan string { return s.frames }
func (s *Score) Close()                { s.cancel() }

// HandleMessage adapts the widget to realtime.Handler.
func (s *Score) HandleMessage(m wire.Message) {
	select {
	case s.inbox <- ScoreFromServer{Msg: m}:
	case <-s.ctx.Done():
	}
}

// Seed installs the HTTP snapshot as if the server had sent a full_state.
func (s *Score) Seed(fs wire.FullState) {
	s.HandleMessage(fs)
}

func (s *Score) View() ScoreView {
	reply := make(chan ScoreView, 1)
	select {
	case s.inbox <- getScoreView{reply: reply}:
		return <-reply
	case <-s.ctx.Done():
		return ScoreView{}
	}
}

func (s *Score) loop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case m := <-s.inbox:
			switch msg := m.(type) {
			case getScoreView:
				msg.reply <- s.view
				continue
			case ScoreFromServer:
				s.handleServer(msg.Msg)
			}
			s.publish()
		}
	}
}

func (s *Score) handleServer(m wire.Message) {
	switch msg := m.(type) {
	case wire.ScoreUpdate:
		switch msg.Team {
		case wire.RefTeam1:
			s.view.Team1Score = msg.Score
		case wire.RefTeam2:
			s.view.Team2Score = msg.Score
		}

	case wire.TeamNames:
		if msg.Team1 != "" {
			s.view.Team1Name = msg.Team1
		}
		if msg.Team2 != "" {
			s.view.Team2Name = msg.Team2
		}

	case wire.RoundInfo:
		s.view.Round = msg.Round

	case wire.TimerUpdate:
		s.view.Timer = msg.Time

	case wire.FullState:
		if msg.Scores != nil {
			s.view.Team1Score = msg.Scores.Team1
			s.view.Team2Score = msg.Scores.Team2
		}
		if msg.TeamNames != nil {
			s.view.Team1Name = msg.TeamNames.Team1
			s.view.Team2Name = msg.TeamNames.Team2
		}
		if msg.Round != "" {
			s.view.Round = msg.Round
		}
		if msg.Timer > 0 {
			s.view.Timer = msg.Timer
		}
	}
}

func (s *Score) publish() {
	select {
	case s.frames <- RenderScore(s.view):
	default:
	}
}
