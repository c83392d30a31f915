package poller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/boxy-commentary/internal/logging"
	"github.com/DoyleJ11/boxy-commentary/internal/tournament"
)

var ErrAlreadyRunning = errors.New("poller already running")
var ErrInvalidInterval = errors.New("poll interval must be positive")
var ErrNilCallback = errors.New("sample and onChange must be set")

// SampleFunc reads the current published state. Nil means nothing to read.
type SampleFunc func() *tournament.State

// ChangeFunc receives a state whose fingerprint differs from the last one seen.
type ChangeFunc func(tournament.State)

type Option func(*Poller)

func WithClock(c Clock) Option { return func(p *Poller) { p.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(p *Poller) { p.log = logging.OrNop(l) } }

// Poller samples a state source on a ticker and reports changes. Start and
// Stop may be called from any goroutine but not from inside the callbacks.
type Poller struct {
	clock Clock
	log   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts ...Option) *Poller {
	p := &Poller{clock: realClock{}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Start(interval time.Duration, sample SampleFunc, onChange ChangeFunc) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	if sample == nil || onChange == nil {
		return ErrNilCallback
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, p.clock.NewTicker(interval), sample, onChange, p.done)
	p.log.Debug("poller started", zap.Duration("interval", interval))
	return nil
}

// Stop cancels the ticker and waits for the loop to exit. Calling Stop on a
// stopped poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.cancel()
	done := p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	<-done
	p.log.Debug("poller stopped")
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, ticker Ticker, sample SampleFunc, onChange ChangeFunc, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	// Fingerprint of the last state handed to onChange. Owned by this loop
	// only, so a restart always begins with nothing seen.
	var last []byte

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C():
			// A tick and a cancel can be ready together; stop wins.
			if ctx.Err() != nil {
				return
			}

			s := p.safeSample(sample)
			if s == nil {
				continue
			}

			fp, err := tournament.Fingerprint(*s)
			if err != nil {
				p.log.Debug("skipping unfingerprintable state", zap.Error(err))
				continue
			}
			if last != nil && bytes.Equal(fp, last) {
				continue
			}

			last = fp
			onChange(*s)
		}
	}
}

func (p *Poller) safeSample(sample SampleFunc) (s *tournament.State) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Debug("sample panicked, skipping tick", zap.Any("panic", r))
			s = nil
		}
	}()
	return sample()
}
