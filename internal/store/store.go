package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/boxy-commentary/internal/logging"
	"github.com/DoyleJ11/boxy-commentary/internal/tournament"
)

// Msg is anything the store loop accepts on its inbox.
type Msg interface{ isStoreMsg() }

// Publish replaces the current state. A nil State clears it.
type Publish struct {
	State *tournament.State
}

type Get struct {
	Reply chan *tournament.State
}

type Shutdown struct{}

func (Publish) isStoreMsg()  {}
func (Get) isStoreMsg()      {}
func (Shutdown) isStoreMsg() {}

// Store holds the most recently published tournament state. The published
// value is never modified in place; a publish swaps the pointer.
type Store struct {
	inbox  chan Msg
	state  *tournament.State
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewStore(parent context.Context, log *zap.Logger) *Store {
	ctx, cancel := context.WithCancel(parent)
	s := &Store{
		inbox:  make(chan Msg, 64),
		log:    logging.OrNop(log),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Store) Inbox() chan<- Msg { return s.inbox }

func (s *Store) loop() {
	for {
		select {
		case <-s.ctx.Done():
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Publish:
				s.state = msg.State
				s.log.Debug("state published", zap.Bool("cleared", msg.State == nil))

			case Get:
				msg.Reply <- s.state // May be nil

			case Shutdown:
				s.state = nil
				s.cancel()
				return
			}
		}
	}
}

// Publish hands st to the loop. It gives up if the store is shut down.
func (s *Store) Publish(ctx context.Context, st *tournament.State) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	select {
	case s.inbox <- Publish{State: st}:
		return nil
	case <-s.ctx.Done():
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sample returns the current state, or nil once the store is shut down. It
// has the shape of a poller sample function.
func (s *Store) Sample() *tournament.State {
	if s.ctx.Err() != nil {
		return nil
	}
	reply := make(chan *tournament.State, 1)
	select {
	case s.inbox <- Get{Reply: reply}:
	case <-s.ctx.Done():
		return nil
	}
	select {
	case st := <-reply:
		return st
	case <-s.ctx.Done():
		return nil
	}
}
