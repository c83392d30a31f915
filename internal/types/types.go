package types

type ServerMessage struct {
	Type    string `json:"type"` // "Commentary" | "Error"
	Version int    `json:"version,omitempty"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	MsgCommentary = "Commentary"
	MsgError      = "Error"
)
