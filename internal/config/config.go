package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

const DefaultPollIntervalMs = 1000

// MaxPollIntervalMs is the largest interval representable as a time.Duration.
const MaxPollIntervalMs = math.MaxInt64 / int64(time.Millisecond)

var defaultFallbackComments = []string{
	"The tension is rising in the arena!",
	"What an exciting match we're seeing!",
	"The crowd is going wild!",
	"This is turning out to be an incredible tournament!",
	"The competition is heating up!",
}

// Config is the effective widget configuration. Build it with Resolve; the
// zero value is not usable.
type Config struct {
	pollInterval     time.Duration
	fallbackComments []string
}

// Overrides are user supplied options. Nil fields keep the default.
type Overrides struct {
	PollIntervalMs   *int     `json:"pollIntervalMs,omitempty"`
	FallbackComments []string `json:"fallbackComments,omitempty"`
}

func New(pollIntervalMs int, fallbackComments []string) (Config, error) {
	if pollIntervalMs <= 0 {
		return Config{}, fmt.Errorf("%w: pollIntervalMs must be positive, got %d", ErrInvalidConfig, pollIntervalMs)
	}
	if int64(pollIntervalMs) > MaxPollIntervalMs {
		return Config{}, fmt.Errorf("%w: pollIntervalMs %d exceeds %d", ErrInvalidConfig, pollIntervalMs, MaxPollIntervalMs)
	}
	if len(fallbackComments) == 0 {
		return Config{}, fmt.Errorf("%w: fallbackComments must not be empty", ErrInvalidConfig)
	}
	return Config{
		pollInterval:     time.Duration(pollIntervalMs) * time.Millisecond,
		fallbackComments: slices.Clone(fallbackComments),
	}, nil
}

func Defaults() Config {
	cfg, _ := New(DefaultPollIntervalMs, defaultFallbackComments)
	return cfg
}

// Resolve merges overrides over defaults. A provided FallbackComments list
// replaces the default pool wholesale.
func Resolve(defaults Config, overrides *Overrides) (Config, error) {
	intervalMs := int(defaults.pollInterval / time.Millisecond)
	comments := defaults.fallbackComments

	if overrides != nil {
		if overrides.PollIntervalMs != nil {
			intervalMs = *overrides.PollIntervalMs
		}
		if overrides.FallbackComments != nil {
			if len(overrides.FallbackComments) == 0 {
				return Config{}, fmt.Errorf("%w: fallbackComments override is empty", ErrInvalidConfig)
			}
			comments = overrides.FallbackComments
		}
	}

	return New(intervalMs, comments)
}

func (c Config) PollInterval() time.Duration { return c.pollInterval }

func (c Config) FallbackComments() []string { return slices.Clone(c.fallbackComments) }

// FallbackAt returns the i-th fallback comment. It panics when i is out of range.
func (c Config) FallbackAt(i int) string { return c.fallbackComments[i] }

func (c Config) NumFallbacks() int { return len(c.fallbackComments) }

func IntPtr(v int) *int { return &v }
