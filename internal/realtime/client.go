// Package realtime owns the duplex channel every surface runs on: dial the
// endpoint, re-announce subscriptions after each (re)connect, decode inbound
// frames and hand them to the surface, and push outbound actions fire-and-
// forget. Reconnection is a fixed-delay retry with no backoff; the delay and
// the optional attempt cap are configuration.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/pkg/wire"
)

type State string

const (
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
)

const (
	DefaultRetryDelay   = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// Handler receives every decoded inbound message, in delivery order, on the
// client's read goroutine.
type Handler func(msg wire.Message)

type Options struct {
	URL string

	// Channels get a subscribe message after every successful open.
	Channels []string
	// Rooms get a join message after every successful open.
	Rooms []string
	// RequestState asks for a fresh game_state after every successful open.
	RequestState bool

	// RetryDelay between reconnect attempts; defaults to 3s.
	RetryDelay time.Duration
	// MaxAttempts caps consecutive failed attempts; 0 retries forever.
	MaxAttempts int

	WriteTimeout time.Duration

	Dial   DialFunc
	Clock  clockwork.Clock
	Logger *zap.Logger
}

type Client struct {
	opts    Options
	id      string
	handler Handler
	outbox  chan []byte
	clock   clockwork.Clock
	log     *zap.Logger

	mu    sync.Mutex
	state State
}

func NewClient(opts Options, handler Handler) *Client {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Dial == nil {
		opts.Dial = Dial
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	id := uuid.NewString()
	return &Client{
		opts:    opts,
		id:      id,
		handler: handler,
		outbox:  make(chan []byte, 64),
		clock:   opts.Clock,
		log:     opts.Logger.With(zap.String("client_id", id), zap.String("url", opts.URL)),
		state:   StateClosed,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Connected() bool { return c.State() == StateOpen }

// Send marshals an outbound action and queues it. There is no ack tracking;
// if the outbox is full the action is dropped with a warning, mirroring how
// slow consumers are handled everywhere else in the pipeline.
func (c *Client) Send(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal outbound message", zap.Error(err))
		return
	}
	select {
	case c.outbox <- data:
	default:
		c.log.Warn("outbox full, dropping outbound message")
	}
}

// Run connects and serves until ctx is cancelled or the bounded-retry budget
// is exhausted. Each failed connect and each dropped connection schedules one
// reconnect after the fixed delay; a successful open resets the counter.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		c.setState(StateConnecting)

		conn, err := c.opts.Dial(ctx, c.opts.URL)
		if err != nil {
			c.setState(StateClosed)
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn("connect failed", zap.Error(err))
			attempts++
			if !c.waitRetry(ctx, attempts) {
				return nil
			}
			continue
		}

		attempts = 0
		c.setState(StateOpen)
		c.log.Info("connected")

		if err := c.announce(ctx, conn); err != nil {
			c.log.Warn("announce failed", zap.Error(err))
		} else {
			c.serve(ctx, conn)
		}
		_ = conn.Close()
		c.setState(StateClosed)

		if ctx.Err() != nil {
			return nil
		}
		c.log.Info("disconnected")
		attempts++
		if !c.waitRetry(ctx, attempts) {
			return nil
		}
	}
}

// announce re-sends the subscription set on every open. The server treats
// repeated subscribes and joins as idempotent.
func (c *Client) announce(ctx context.Context, conn Conn) error {
	var msgs []any
	for _, ch := range c.opts.Channels {
		msgs = append(msgs, wire.NewSubscribe(ch))
	}
	for _, room := range c.opts.Rooms {
		msgs = append(msgs, wire.NewJoin(room))
	}
	if c.opts.RequestState {
		msgs = append(msgs, wire.NewGetGameState())
	}
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := c.writeTimed(ctx, conn, data); err != nil {
			return err
		}
	}
	return nil
}

// serve pumps the connection until it drops: one writer goroutine draining
// the outbox, the read loop dispatching inbound frames on this goroutine.
func (c *Client) serve(ctx context.Context, conn Conn) {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case data := <-c.outbox:
				if err := c.writeTimed(connCtx, conn, data); err != nil {
					c.log.Debug("write failed", zap.Error(err))
					cancel()
					return
				}
			case <-connCtx.Done():
				return
			}
		}
	}()

	for {
		data, err := conn.Read(connCtx)
		if err != nil {
			cancel()
			<-writerDone
			return
		}
		c.dispatch(data)
	}
}

// dispatch routes one inbound frame. Unknown types and malformed payloads are
// dropped: the worst outcome of a bad frame is a debug log line, never a dead
// controller.
func (c *Client) dispatch(data []byte) {
	msg, err := wire.Decode(data)
	if err != nil {
		if errors.Is(err, wire.ErrUnknownType) {
			c.log.Debug("ignoring message", zap.Error(err))
		} else {
			c.log.Debug("dropping malformed message", zap.Error(err))
		}
		return
	}
	if c.handler != nil {
		c.handler(msg)
	}
}

func (c *Client) writeTimed(ctx context.Context, conn Conn, data []byte) error {
	wctx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()
	return conn.Write(wctx, data)
}

// waitRetry sleeps out the fixed delay before the next attempt. With a
// bounded budget it returns false once the budget is spent, leaving the
// client permanently closed.
func (c *Client) waitRetry(ctx context.Context, attempts int) bool {
	if c.opts.MaxAttempts > 0 && attempts > c.opts.MaxAttempts {
		c.log.Warn("giving up after max reconnect attempts", zap.Int("attempts", c.opts.MaxAttempts))
		return false
	}
	c.log.Info("reconnecting", zap.Int("attempt", attempts), zap.Duration("delay", c.opts.RetryDelay))
	select {
	case <-c.clock.After(c.opts.RetryDelay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
