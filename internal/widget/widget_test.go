package widget

import (
	"sync"
	"testing"
	"time"

	"github.com/DoyleJ11/boxy-commentary/internal/config"
	"github.com/DoyleJ11/boxy-commentary/internal/poller"
	"github.com/DoyleJ11/boxy-commentary/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand int

func (f fixedRand) Intn(int) int { return int(f) }

type manualClock struct {
	ch       chan time.Time
	interval time.Duration
}

func (c *manualClock) NewTicker(d time.Duration) poller.Ticker {
	c.interval = d
	return c
}

func (c *manualClock) C() <-chan time.Time { return c.ch }
func (c *manualClock) Stop()               {}

func (c *manualClock) tick(t *testing.T) {
	t.Helper()
	select {
	case c.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatalf("tick not taken")
	}
}

type lines struct {
	mu  sync.Mutex
	got []string
}

func (l *lines) Render(text string) {
	l.mu.Lock()
	l.got = append(l.got, text)
	l.mu.Unlock()
}

func (l *lines) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.got...)
}

func TestNew_InvalidConfigAborts(t *testing.T) {
	w, err := New(&config.Overrides{PollIntervalMs: config.IntPtr(0)}, &lines{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Nil(t, w)

	w, err = New(&config.Overrides{FallbackComments: []string{}}, &lines{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Nil(t, w)
}

func TestNew_NilSinkRejected(t *testing.T) {
	clk := &manualClock{ch: make(chan time.Time)}
	w, err := New(nil, nil, WithClock(clk))
	assert.ErrorIs(t, err, ErrNilSink)
	assert.Nil(t, w)

	var fn SinkFunc
	w, err = New(nil, fn)
	assert.ErrorIs(t, err, ErrNilSink)
	assert.Nil(t, w)
}

func TestWidget_RendersCommentaryOnChange(t *testing.T) {
	clk := &manualClock{ch: make(chan time.Time)}
	sink := &lines{}
	w, err := New(&config.Overrides{
		PollIntervalMs:   config.IntPtr(250),
		FallbackComments: []string{"quiet", "calm"},
	}, sink, WithClock(clk), WithRand(fixedRand(1)))
	require.NoError(t, err)

	states := []*tournament.State{
		nil,
		{},
		{Players: make([]tournament.Player, 8)},
		{Players: make([]tournament.Player, 8)},
		{Rounds: []tournament.Round{{{Winner: "A"}}, {{Winner: "B"}}}},
		{Winner: "B"},
	}
	i := 0
	sample := func() *tournament.State {
		s := states[i]
		if i < len(states)-1 {
			i++
		}
		return s
	}

	require.NoError(t, w.Start(sample))
	assert.True(t, w.Running())
	assert.Equal(t, 250*time.Millisecond, clk.interval)

	for range states {
		clk.tick(t)
	}
	w.Stop()
	assert.False(t, w.Running())

	assert.Equal(t, []string{
		"calm",
		"The tournament is about to begin with 8 competitors!",
		"B advances to the next round!",
		"And the winner is... B! 🏆",
	}, sink.all())
}

func TestWidget_StartTwiceFails(t *testing.T) {
	clk := &manualClock{ch: make(chan time.Time)}
	w, err := New(nil, SinkFunc(func(string) {}), WithClock(clk))
	require.NoError(t, err)

	sample := func() *tournament.State { return nil }
	require.NoError(t, w.Start(sample))
	defer w.Stop()

	assert.ErrorIs(t, w.Start(sample), poller.ErrAlreadyRunning)
}

func TestWidget_DefaultConfig(t *testing.T) {
	w, err := New(nil, SinkFunc(func(string) {}))
	require.NoError(t, err)
	assert.Equal(t, time.Second, w.Config().PollInterval())
	assert.Equal(t, 5, w.Config().NumFallbacks())
}
