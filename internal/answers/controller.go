// Package answers is the contestant answer pad for one team: it mirrors the
// active question, stages an answer, and submits it at most once per
// question. Every precondition is checked locally before anything goes out on
// the wire.
package answers

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/pkg/wire"
)

type Msg interface{ isMsg() }

// FromServer wraps a decoded realtime message.
type FromServer struct{ Msg wire.Message }

// Select stages an answer before confirmation.
type Select struct{ Answer string }

// Cancel unstages the selected answer.
type Cancel struct{}

// Submit confirms the staged answer and emits team_answer.
type Submit struct{}

type getView struct{ reply chan View }

func (FromServer) isMsg() {}
func (Select) isMsg()     {}
func (Cancel) isMsg()     {}
func (Submit) isMsg()     {}
func (getView) isMsg()    {}

// View is the pad's renderable snapshot.
type View struct {
	TeamID        game.TeamID
	Question      *wire.Question
	TargetTeam    game.TargetTeam
	GameActive    bool
	ShowAnswer    bool
	CorrectAnswer string

	Selected    string
	HasAnswered bool
	CanAnswer   bool

	Result *wire.AnswerResult

	Score        int
	CorrectCount int
	WrongCount   int

	Notice *game.Notice
}

type Controller struct {
	teamID game.TeamID
	inbox  chan Msg
	frames chan string
	send   func(any)
	view   View
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts the pad's loop. send is the outbound action emitter, typically
// realtime.Client.Send.
func New(parent context.Context, teamID game.TeamID, send func(any), log *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		teamID: teamID,
		inbox:  make(chan Msg, 64),
		frames: make(chan string, 8),
		send:   send,
		view:   View{TeamID: teamID, TargetTeam: game.TargetBoth},
		log:    log.Named("answers").With(zap.String("team", string(teamID))),
		ctx:    ctx,
		cancel: cancel,
	}
	go c.loop()
	return c
}

func (c *Controller) Inbox() chan<- Msg     { return c.inbox }
func (c *Controller) Frames() <-chan string { return c.frames }
func (c *Controller) Close()                { c.cancel() }

// HandleMessage adapts the controller to realtime.Handler.
func (c *Controller) HandleMessage(m wire.Message) {
	select {
	case c.inbox <- FromServer{Msg: m}:
	case <-c.ctx.Done():
	}
}

// View returns a copy of the current state via the loop, so callers never
// race the handlers.
func (c *Controller) View() View {
	reply := make(chan View, 1)
	select {
	case c.inbox <- getView{reply: reply}:
		return <-reply
	case <-c.ctx.Done():
		return View{TeamID: c.teamID}
	}
}

func (c *Controller) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case m := <-c.inbox:
			switch msg := m.(type) {
			case getView:
				msg.reply <- c.view
				continue
			case FromServer:
				c.handleServer(msg.Msg)
			case Select:
				c.handleSelect(msg.Answer)
			case Cancel:
				c.view.Selected = ""
				c.view.Notice = nil
			case Submit:
				c.handleSubmit()
			}
			c.publish()
		}
	}
}

func (c *Controller) handleServer(m wire.Message) {
	switch msg := m.(type) {
	case wire.NewQuestion:
		target, ok := game.ParseTargetTeam(msg.TargetTeam)
		if !ok {
			target = game.TargetBoth
		}
		c.view.Question = msg.Question
		c.view.TargetTeam = target
		c.view.GameActive = msg.GameActive
		c.view.ShowAnswer = msg.ShowAnswer
		c.view.CorrectAnswer = ""
		c.view.Selected = ""
		c.view.HasAnswered = false
		c.view.CanAnswer = msg.GameActive && target.Eligible(c.teamID)
		c.view.Result = nil
		c.view.Notice = nil

	case wire.ShowCorrectAnswer:
		c.view.ShowAnswer = true
		c.view.CorrectAnswer = msg.CorrectAnswer

	case wire.AnswerResult:
		if msg.OK() {
			result := msg
			c.view.Result = &result
			if msg.CorrectAnswer != "" {
				c.view.CorrectAnswer = msg.CorrectAnswer
			}
			c.view.Notice = nil
			// Scores changed server-side; ask for the fresh snapshot.
			c.send(wire.NewGetGameState())
		} else {
			c.view.Notice = game.ErrorNotice("Error: " + msg.Message)
			c.view.HasAnswered = false
			c.view.CanAnswer = c.view.GameActive && c.view.TargetTeam.Eligible(c.teamID)
		}

	case wire.GameReset:
		teams := game.Teams{}.Replace(msg.Teams)
		info := teams.Team(c.teamID)
		c.view = View{
			TeamID:       c.teamID,
			TargetTeam:   game.TargetBoth,
			Score:        info.Score,
			CorrectCount: info.CorrectAnswers,
			WrongCount:   info.WrongAnswers,
			Notice:       game.SuccessNotice("Juego reiniciado"),
		}

	case wire.GameState:
		target, ok := game.ParseTargetTeam(msg.TargetTeam)
		if !ok {
			target = game.TargetBoth
		}
		c.view.Question = msg.CurrentQuestion
		c.view.TargetTeam = target
		c.view.GameActive = msg.GameActive
		c.view.ShowAnswer = msg.ShowAnswer
		c.view.CanAnswer = msg.GameActive && msg.CurrentQuestion != nil &&
			target.Eligible(c.teamID) && !c.view.HasAnswered
		if msg.ShowAnswer && msg.CurrentQuestion != nil {
			c.view.CorrectAnswer = msg.CurrentQuestion.CorrectAnswer
		}
		if info, ok := msg.Teams[string(c.teamID)]; ok {
			c.view.Score = info.Score
			c.view.CorrectCount = info.CorrectAnswers
			c.view.WrongCount = info.WrongAnswers
		}

	case wire.TeamAnswered:
		if info, ok := msg.Teams[string(c.teamID)]; ok {
			c.view.Score = info.Score
			c.view.CorrectCount = info.CorrectAnswers
			c.view.WrongCount = info.WrongAnswers
		}

	default:
		// Other channels' traffic; nothing for the pad.
	}
}

func (c *Controller) handleSelect(answer string) {
	v := &c.view
	if v.Question == nil || !v.GameActive {
		v.Notice = game.ErrorNotice("No hay pregunta activa")
		return
	}
	if !v.CanAnswer || v.HasAnswered {
		v.Notice = game.ErrorNotice("No puedes responder en este momento")
		return
	}
	if len(v.Question.Options) > 0 && !slices.Contains(v.Question.Options, answer) {
		v.Notice = game.ErrorNotice("Respuesta no válida: " + answer)
		return
	}
	v.Selected = answer
	v.Notice = nil
}

func (c *Controller) handleSubmit() {
	v := &c.view
	if v.Selected == "" {
		v.Notice = game.ErrorNotice("No hay respuesta seleccionada")
		return
	}
	if !v.CanAnswer || v.HasAnswered {
		v.Notice = game.ErrorNotice("No puedes responder en este momento")
		return
	}
	v.HasAnswered = true
	v.CanAnswer = false
	v.Notice = game.SuccessNotice("Respuesta enviada")
	c.send(wire.NewTeamAnswer(string(c.teamID), v.Selected))
	c.log.Info("answer submitted", zap.String("answer", v.Selected))
}

func (c *Controller) publish() {
	select {
	case c.frames <- Render(c.view):
	default:
		// Slow consumer; the next frame supersedes this one anyway.
	}
}
