package commentary

import (
	"fmt"

	"github.com/DoyleJ11/boxy-commentary/internal/config"
	"github.com/DoyleJ11/boxy-commentary/internal/tournament"
)

const (
	Welcome  = "Welcome to the tournament! 🥊"
	Waiting  = "Waiting for tournament data..."
	Exciting = "An exciting match is happening now!"
)

// Rand is the source of the fallback draw. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Generate maps a snapshot to one line of commentary. It never panics: any
// failure while evaluating degrades to Exciting.
func Generate(s *tournament.State, cfg config.Config, rng Rand) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = Exciting
		}
	}()

	if s == nil {
		return Waiting
	}
	if s.Winner != "" {
		return fmt.Sprintf("And the winner is... %s! 🏆", s.Winner)
	}

	if len(s.Rounds) > 0 {
		current := CurrentRound(s.Rounds)

		// Only results from the current round are reported.
		if m, ok := LastDecided(s.Rounds[current-1 : current]); ok {
			return fmt.Sprintf("%s advances to the next round!", m.Winner)
		}
		return fmt.Sprintf("Round %d is underway!", current)
	}

	if len(s.Players) > 0 {
		return fmt.Sprintf("The tournament is about to begin with %d competitors!", len(s.Players))
	}

	return cfg.FallbackAt(rng.Intn(cfg.NumFallbacks()))
}

// GenerateJSON is Generate over an undecoded snapshot. A document that does
// not have the expected shape yields Exciting.
func GenerateJSON(raw []byte, cfg config.Config, rng Rand) string {
	s, err := tournament.Decode(raw)
	if err != nil {
		return Exciting
	}
	return Generate(s, cfg, rng)
}

// CurrentRound returns the 1-based index of the first round holding an
// undecided match. When every match is decided it is the last round.
func CurrentRound(rounds []tournament.Round) int {
	for i, round := range rounds {
		for _, m := range round {
			if !m.Decided() {
				return i + 1
			}
		}
	}
	return len(rounds)
}

// LastDecided returns the most recently decided match, scanning from the
// last match of the last round backwards.
func LastDecided(rounds []tournament.Round) (tournament.Match, bool) {
	for i := len(rounds) - 1; i >= 0; i-- {
		round := rounds[i]
		for j := len(round) - 1; j >= 0; j-- {
			if round[j].Decided() {
				return round[j], true
			}
		}
	}
	return tournament.Match{}, false
}
