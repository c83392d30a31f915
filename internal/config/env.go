package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Settings are the host process settings read from the environment.
type Settings struct {
	Addr        string
	LogLevel    string
	Development bool
	PublishRate float64
	Widget      *Overrides
}

// FromEnv reads settings from the process environment. Call godotenv.Load
// first to pick up a .env file.
func FromEnv() (Settings, error) {
	v := viper.New()

	v.SetDefault("BOXY_HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BOXY_ENV", "production")
	v.SetDefault("BOXY_PUBLISH_RATE", 20)

	v.AutomaticEnv()

	return load(v)
}

func load(v *viper.Viper) (Settings, error) {
	s := Settings{
		Addr:        strings.TrimSpace(v.GetString("BOXY_HTTP_ADDR")),
		LogLevel:    strings.TrimSpace(v.GetString("LOG_LEVEL")),
		Development: strings.EqualFold(strings.TrimSpace(v.GetString("BOXY_ENV")), "development"),
	}

	// viper's GetFloat64/GetInt swallow parse errors, so parse with the E variants.
	rate, err := cast.ToFloat64E(strings.TrimSpace(v.GetString("BOXY_PUBLISH_RATE")))
	if err != nil || rate < 0 {
		return Settings{}, fmt.Errorf("%w: BOXY_PUBLISH_RATE %q", ErrInvalidConfig, v.GetString("BOXY_PUBLISH_RATE"))
	}
	s.PublishRate = rate

	var ov Overrides
	set := false
	if v.IsSet("BOXY_POLL_INTERVAL_MS") {
		raw := strings.TrimSpace(v.GetString("BOXY_POLL_INTERVAL_MS"))
		ms, err := cast.ToIntE(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: BOXY_POLL_INTERVAL_MS %q", ErrInvalidConfig, raw)
		}
		ov.PollIntervalMs = &ms
		set = true
	}
	if v.IsSet("BOXY_FALLBACK_COMMENTS") {
		// A value that splits to nothing still counts as an override so Resolve rejects it.
		ov.FallbackComments = splitComments(v.GetString("BOXY_FALLBACK_COMMENTS"))
		set = true
	}
	if set {
		s.Widget = &ov
	}
	return s, nil
}

func splitComments(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, "|") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
