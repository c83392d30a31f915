package broadcast

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/boxy-commentary/internal/logging"
)

type Msg interface{ isBroadcastMsg() }

type Publish struct {
	Text string
}

func (Publish) isBroadcastMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive commentary
}

func (Join) isBroadcastMsg() {}

type Leave struct{ ClientID string }

func (Leave) isBroadcastMsg() {}

type Shutdown struct{}

func (Shutdown) isBroadcastMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isBroadcastMsg() {}

// Snapshot is one line of commentary. Version increases on every publish.
type Snapshot struct {
	Version int
	Text    string
}

type View struct {
	Version    int
	NumClients int
	Text       string
}

// Broadcaster keeps the latest commentary and fans it out to subscribers.
type Broadcaster struct {
	inbox   chan Msg
	text    string
	version int
	clients map[string]chan Snapshot
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewBroadcaster(parent context.Context, initial string, log *zap.Logger) *Broadcaster {
	ctx, cancel := context.WithCancel(parent)

	b := &Broadcaster{
		inbox:   make(chan Msg, 64),
		text:    initial,
		clients: make(map[string]chan Snapshot),
		log:     logging.OrNop(log),
		ctx:     ctx,
		cancel:  cancel,
	}

	go b.loop()
	return b
}

func (b *Broadcaster) loop() {
	for {
		select {
		case <-b.ctx.Done():
			b.shutdown()
			return

		case m := <-b.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current commentary immediately
				b.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: b.version, Text: b.text}

			case Leave:
				if ch, ok := b.clients[msg.ClientID]; ok {
					close(ch)
					delete(b.clients, msg.ClientID)
				}

			case Publish:
				b.text = msg.Text
				b.version++
				b.broadcast(Snapshot{Version: b.version, Text: b.text})

			case GetState:
				msg.Reply <- View{
					Version:    b.version,
					NumClients: len(b.clients),
					Text:       b.text,
				}

			case Shutdown:
				b.shutdown()
				return
			}
		}
	}
}

func (b *Broadcaster) shutdown() {
	for id, ch := range b.clients {
		close(ch) // Tell client no more commentary
		delete(b.clients, id)
	}
	b.cancel()
}

func (b *Broadcaster) broadcast(snap Snapshot) {
	for id, ch := range b.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			b.log.Info("dropping slow subscriber", zap.String("client_id", id))
			close(ch)
			delete(b.clients, id)
		}
	}
}

func (b *Broadcaster) Inbox() chan<- Msg { return b.inbox }

// Render publishes text without waiting for subscribers. After shutdown it
// is a no-op.
func (b *Broadcaster) Render(text string) {
	if b.ctx.Err() != nil {
		return
	}
	select {
	case b.inbox <- Publish{Text: text}:
	case <-b.ctx.Done():
	}
}

// Current returns the latest commentary, or false once shut down.
func (b *Broadcaster) Current(ctx context.Context) (View, bool) {
	reply := make(chan View, 1)
	select {
	case b.inbox <- GetState{Reply: reply}:
	case <-b.ctx.Done():
		return View{}, false
	case <-ctx.Done():
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-b.ctx.Done():
		return View{}, false
	case <-ctx.Done():
		return View{}, false
	}
}

func (b *Broadcaster) Done() <-chan struct{} { return b.ctx.Done() }
