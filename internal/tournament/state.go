package tournament

import (
	"bytes"
	"encoding/json"
)

// State is the externally published tournament snapshot. Only Winner,
// Players and Rounds are interpreted; unknown JSON fields are ignored.
type State struct {
	Winner  string   `json:"winner,omitempty"`
	Players []Player `json:"players,omitempty"`
	Rounds  []Round  `json:"rounds,omitempty"`
}

type Player struct {
	Name string `json:"name,omitempty"`
}

type Round []Match

// Match.Winner is empty while the match is undecided.
type Match struct {
	Winner string `json:"winner,omitempty"`
}

func (m Match) Decided() bool { return m.Winner != "" }

// Decode parses a JSON snapshot. A "null" or empty document yields a nil
// state and no error.
func Decode(raw []byte) (*State, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var s State
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Fingerprint returns a structural representation of s. Two states with
// equal fingerprints render the same commentary.
func Fingerprint(s State) ([]byte, error) {
	return json.Marshal(s)
}
