// Package board is the public game display: a read-only surface that mirrors
// the active question, reveals the answer when told to, and flashes each
// team's verdict. It emits no game actions, only the initial state request.
package board

import (
	"context"

	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/pkg/wire"
)

type Msg interface{ isMsg() }

// FromServer wraps a decoded realtime message.
type FromServer struct{ Msg wire.Message }

type getView struct{ reply chan View }

func (FromServer) isMsg() {}
func (getView) isMsg()    {}

// View is the board's renderable snapshot.
type View struct {
	Question      *wire.Question
	Target        game.TargetTeam
	GameActive    bool
	ShowAnswer    bool
	CorrectAnswer string

	LastAnswered *wire.TeamAnswered
	Teams        game.Teams
}

type Controller struct {
	inbox  chan Msg
	frames chan string
	view   View
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, log *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		inbox:  make(chan Msg, 64),
		frames: make(chan string, 8),
		view:   View{Target: game.TargetBoth, Teams: game.Teams{}},
		log:    log.Named("board"),
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

func (c *Controller) View() View {
	reply := make(chan View, 1)
	select {
	case c.inbox <- getView{reply: reply}:
		return <-reply
	case <-c.ctx.Done():
		return View{}
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
		c.view.Target = target
		c.view.GameActive = msg.GameActive
		c.view.ShowAnswer = msg.ShowAnswer
		c.view.CorrectAnswer = ""
		c.view.LastAnswered = nil

	case wire.ShowCorrectAnswer:
		c.view.ShowAnswer = true
		c.view.CorrectAnswer = msg.CorrectAnswer

	case wire.TeamAnswered:
		answered := msg
		c.view.LastAnswered = &answered
		c.view.Teams = c.view.Teams.Replace(msg.Teams)

	case wire.ScoreUpdated:
		c.view.Teams = c.view.Teams.Replace(msg.Teams)

	case wire.GameReset:
		c.view = View{
			Target: game.TargetBoth,
			Teams:  c.view.Teams.Replace(msg.Teams),
		}

	case wire.GameState:
		target, ok := game.ParseTargetTeam(msg.TargetTeam)
		if !ok {
			target = game.TargetBoth
		}
		c.view.Question = msg.CurrentQuestion
		c.view.Target = target
		c.view.GameActive = msg.GameActive
		c.view.ShowAnswer = msg.ShowAnswer
		c.view.Teams = c.view.Teams.Replace(msg.Teams)
		if msg.ShowAnswer && msg.CurrentQuestion != nil {
			c.view.CorrectAnswer = msg.CurrentQuestion.CorrectAnswer
		}

	default:
	}
}

func (c *Controller) publish() {
	select {
	case c.frames <- Render(c.view):
	default:
	}
}
