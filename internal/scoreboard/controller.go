// Package scoreboard is the public score panel: live totals, derived accuracy
// stats, a bounded log of recent answers and a milestone celebration when a
// team crosses a round score threshold.
package scoreboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/pkg/wire"
)

// HistoryLimit is how many recent answers the panel keeps.
const HistoryLimit = 10

type Msg interface{ isMsg() }

// FromServer wraps a decoded realtime message.
type FromServer struct{ Msg wire.Message }

type getView struct{ reply chan View }

func (FromServer) isMsg() {}
func (getView) isMsg()    {}

// View is the panel's renderable snapshot.
type View struct {
	Teams   game.Teams
	Stats   game.Stats
	History []game.AnswerRecord

	// Milestone is the threshold just crossed, 0 when no celebration is due.
	Milestone int
}

type Controller struct {
	inbox   chan Msg
	frames  chan string
	history *game.History
	view    View
	now     func() time.Time
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, log *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		inbox:   make(chan Msg, 64),
		frames:  make(chan string, 8),
		history: game.NewHistory(HistoryLimit),
		view:    View{Teams: game.Teams{}},
		now:     time.Now,
		log:     log.Named("scoreboard"),
		ctx:     ctx,
		cancel:  cancel,
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
	case wire.GameState:
		c.view.Teams = c.view.Teams.Replace(msg.Teams)
		c.refresh()

	case wire.TeamAnswered:
		c.view.Teams = c.view.Teams.Replace(msg.Teams)
		c.history.Add(game.AnswerRecord{
			Team:    msg.TeamName,
			Answer:  msg.Answer,
			Correct: msg.IsCorrect,
			Points:  msg.Points,
			At:      c.now(),
		})
		c.refresh()
		c.view.Milestone = game.HitMilestone(c.view.Teams)

	case wire.ScoreUpdated:
		c.view.Teams = c.view.Teams.Replace(msg.Teams)
		c.refresh()
		c.view.Milestone = game.HitMilestone(c.view.Teams)

	case wire.NewQuestion:
		// A new question ends the celebration.
		c.view.Milestone = 0

	case wire.GameReset:
		c.history.Clear()
		c.view.Teams = c.view.Teams.Replace(msg.Teams)
		c.view.Milestone = 0
		c.refresh()

	default:
	}
}

func (c *Controller) refresh() {
	c.view.Stats = game.DeriveStats(c.view.Teams)
	c.view.History = c.history.Records()
}

func (c *Controller) publish() {
	select {
	case c.frames <- Render(c.view):
	default:
	}
}
