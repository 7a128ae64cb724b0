// Package overlay holds the stream widgets: the alert queue, the rolling chat
// panel and the compact scoreboard, plus the HTTP server that serves them to
// the streaming software as browser sources.
package overlay

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/pkg/wire"
)

const (
	// DefaultAlertDuration applies when an alert arrives without one.
	DefaultAlertDuration = 5000 * time.Millisecond
	// AlertGap separates consecutive alerts so they read as distinct events.
	AlertGap = 500 * time.Millisecond
)

type alertMsg interface{ isAlertMsg() }

// AlertFromServer wraps a decoded realtime message for the alert widget.
type AlertFromServer struct{ Msg wire.Message }

type hideFired struct{ seq uint64 }
type gapFired struct{ seq uint64 }
type getAlertView struct{ reply chan AlertView }

func (AlertFromServer) isAlertMsg() {}
func (hideFired) isAlertMsg()      {}
func (gapFired) isAlertMsg()       {}
func (getAlertView) isAlertMsg()   {}

// AlertView is the widget's renderable snapshot.
type AlertView struct {
	Current *wire.Alert
	Queued  int
}

// Alerts shows one alert at a time: each is visible for its duration, then a
// short gap passes before the next queued alert appears. clear_alerts cancels
// whatever is showing and empties the queue.
type Alerts struct {
	inbox  chan alertMsg
	frames chan string
	clock  clockwork.Clock
	log    *zap.Logger

	current *wire.Alert
	queue   []wire.Alert
	// gapPending is true between an alert hiding and the gap elapsing; the
	// widget is not idle during that window.
	gapPending bool
	seq        uint64
	hide       clockwork.Timer
	gap        clockwork.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func NewAlerts(parent context.Context, clock clockwork.Clock, log *zap.Logger) *Alerts {
	ctx, cancel := context.WithCancel(parent)
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	a := &Alerts{
		inbox:  make(chan alertMsg, 64),
		frames: make(chan string, 8),
		clock:  clock,
		log:    log.Named("overlay.alerts"),
		ctx:    ctx,
		cancel: cancel,
	}
	go a.loop()
	return a
}

func (a *Alerts) Frames() <-chan string { return a.frames }
func (a *Alerts) Close()                { a.cancel() }

// HandleMessage adapts the widget to realtime.Handler.
func (a *Alerts) HandleMessage(m wire.Message) {
	select {
	case a.inbox <- AlertFromServer{Msg: m}:
	case <-a.ctx.Done():
	}
}

func (a *Alerts) View() AlertView {
	reply := make(chan AlertView, 1)
	select {
	case a.inbox <- getAlertView{reply: reply}:
		return <-reply
	case <-a.ctx.Done():
		return AlertView{}
	}
}

func (a *Alerts) loop() {
	for {
		select {
		case <-a.ctx.Done():
			a.stopTimers()
			return
		case m := <-a.inbox:
			switch msg := m.(type) {
			case getAlertView:
				msg.reply <- AlertView{Current: a.current, Queued: len(a.queue)}
				continue
			case AlertFromServer:
				a.handleServer(msg.Msg)
			case hideFired:
				a.handleHide(msg.seq)
			case gapFired:
				a.handleGap(msg.seq)
			}
			a.publish()
		}
	}
}

func (a *Alerts) handleServer(m wire.Message) {
	switch msg := m.(type) {
	case wire.Alert:
		// Only a truly idle widget displays directly; during the inter-alert
		// gap the newcomer queues behind whatever is already waiting.
		if a.current == nil && !a.gapPending {
			a.show(msg)
		} else {
			a.queue = append(a.queue, msg)
		}
	case wire.ClearAlerts:
		a.stopTimers()
		a.current = nil
		a.queue = nil
		a.gapPending = false
	}
}

func (a *Alerts) show(alert wire.Alert) {
	a.current = &alert
	duration := DefaultAlertDuration
	if alert.Duration > 0 {
		duration = time.Duration(alert.Duration) * time.Millisecond
	}
	a.seq++
	seq := a.seq
	a.hide = a.clock.AfterFunc(duration, func() { a.post(hideFired{seq: seq}) })
	a.log.Debug("alert shown",
		zap.String("title", alert.Title), zap.Duration("duration", duration))
}

func (a *Alerts) handleHide(seq uint64) {
	if seq != a.seq {
		return
	}
	a.current = nil
	a.gapPending = true
	a.gap = a.clock.AfterFunc(AlertGap, func() { a.post(gapFired{seq: seq}) })
}

func (a *Alerts) handleGap(seq uint64) {
	if seq != a.seq {
		return
	}
	a.gapPending = false
	if len(a.queue) == 0 {
		return
	}
	next := a.queue[0]
	a.queue = a.queue[1:]
	a.show(next)
}

// post feeds a timer fire back through the inbox so all state changes stay on
// the loop goroutine. Stale fires are filtered by sequence number.
func (a *Alerts) post(m alertMsg) {
	select {
	case a.inbox <- m:
	case <-a.ctx.Done():
	}
}

func (a *Alerts) stopTimers() {
	a.seq++
	if a.hide != nil {
		a.hide.Stop()
	}
	if a.gap != nil {
		a.gap.Stop()
	}
}

func (a *Alerts) publish() {
	select {
	case a.frames <- RenderAlert(AlertView{Current: a.current, Queued: len(a.queue)}):
	default:
	}
}
