// Package widget is the entry point of the commentary widget: it resolves
// the configuration, then drives the poller and renders generated
// commentary into a sink owned by the presentation layer.
package widget

import (
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/boxy-commentary/internal/commentary"
	"github.com/DoyleJ11/boxy-commentary/internal/config"
	"github.com/DoyleJ11/boxy-commentary/internal/logging"
	"github.com/DoyleJ11/boxy-commentary/internal/poller"
	"github.com/DoyleJ11/boxy-commentary/internal/tournament"
)

var ErrNilSink = errors.New("widget sink must be set")

// Sink displays one line of commentary. Render must return promptly.
type Sink interface {
	Render(text string)
}

type SinkFunc func(text string)

func (f SinkFunc) Render(text string) { f(text) }

type Option func(*Widget)

func WithLogger(l *zap.Logger) Option { return func(w *Widget) { w.log = logging.OrNop(l) } }

func WithRand(r commentary.Rand) Option { return func(w *Widget) { w.rng = r } }

func WithClock(c poller.Clock) Option { return func(w *Widget) { w.clock = c } }

type Widget struct {
	cfg    config.Config
	sink   Sink
	rng    commentary.Rand
	log    *zap.Logger
	clock  poller.Clock
	poller *poller.Poller
}

// New resolves overrides over the built-in defaults. An invalid
// configuration is returned as an error wrapping config.ErrInvalidConfig and
// no widget is created. A nil sink fails with ErrNilSink.
func New(overrides *config.Overrides, sink Sink, opts ...Option) (*Widget, error) {
	if f, ok := sink.(SinkFunc); sink == nil || (ok && f == nil) {
		return nil, ErrNilSink
	}
	cfg, err := config.Resolve(config.Defaults(), overrides)
	if err != nil {
		return nil, err
	}

	w := &Widget{
		cfg:  cfg,
		sink: sink,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	popts := []poller.Option{poller.WithLogger(w.log)}
	if w.clock != nil {
		popts = append(popts, poller.WithClock(w.clock))
	}
	w.poller = poller.New(popts...)

	w.log.Info("widget initialized",
		zap.Duration("poll_interval", cfg.PollInterval()),
		zap.Int("fallback_comments", cfg.NumFallbacks()),
	)
	return w, nil
}

func (w *Widget) Config() config.Config { return w.cfg }

// Start begins polling sample. It returns poller.ErrAlreadyRunning if the
// widget is already polling.
func (w *Widget) Start(sample poller.SampleFunc) error {
	return w.poller.Start(w.cfg.PollInterval(), sample, w.update)
}

func (w *Widget) Stop() { w.poller.Stop() }

func (w *Widget) Running() bool { return w.poller.Running() }

// update runs on the poller loop only, so the rng is never shared.
func (w *Widget) update(s tournament.State) {
	text := commentary.Generate(&s, w.cfg, w.rng)
	w.log.Debug("commentary updated", zap.String("text", text))
	w.sink.Render(text)
}
