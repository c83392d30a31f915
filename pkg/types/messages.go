package types

// Host -> Widget (websocket /ws)
// Commentary:
//   version: number // increases on every new line
//   text: string
//
// Error:
//   error: string
//
// A Commentary message is sent immediately on connect with the current
// line (version 0 is the welcome greeting), then once per change.

// Publisher -> Host (PUT /state)
// TournamentState:
//   winner?: string
//   players?: { name?: string }[]
//   rounds?: { winner?: string }[][] // a match without winner is undecided
//
// Unknown fields are ignored. DELETE /state withdraws the published state.

// Widget options (environment of cmd/server)
//   pollIntervalMs: number   // BOXY_POLL_INTERVAL_MS
//   fallbackComments: string[] // BOXY_FALLBACK_COMMENTS, "|"-separated
