package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/boxy-commentary/internal/broadcast"
	"github.com/DoyleJ11/boxy-commentary/internal/poller"
	"github.com/DoyleJ11/boxy-commentary/internal/store"
	"github.com/DoyleJ11/boxy-commentary/internal/tournament"
)

const maxStateBytes = 1 << 20

// Controller starts and stops the commentary loop.
type Controller interface {
	Start(sample poller.SampleFunc) error
	Stop()
	Running() bool
}

type Deps struct {
	Store       *store.Store
	Broadcaster *broadcast.Broadcaster
	Widget      Controller
	Limiter     *rate.Limiter // nil means unlimited
	Log         *zap.Logger
	Origins     []string
}

func PutState(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxStateBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "state too large")
				return
			}
			writeError(w, http.StatusBadRequest, "unreadable body")
			return
		}
		st, err := tournament.Decode(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := d.Store.Publish(r.Context(), st); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteState(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.Publish(r.Context(), nil); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetCommentary(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := d.Broadcaster.Current(r.Context())
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "commentary unavailable")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Version int    `json:"version"`
			Text    string `json:"text"`
			Running bool   `json:"running"`
		}{Version: v.Version, Text: v.Text, Running: d.Widget.Running()})
	}
}

func StartWidget(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Widget.Start(d.Store.Sample)
		switch {
		case err == nil:
			d.Log.Info("commentary polling started")
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, poller.ErrAlreadyRunning):
			writeError(w, http.StatusConflict, err.Error())
		default:
			d.Log.Error("failed to start polling", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to start")
		}
	}
}

func StopWidget(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Widget.Stop()
		d.Log.Info("commentary polling stopped")
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// limitPublishes rejects requests beyond the limiter's rate.
func limitPublishes(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l != nil && !l.Allow() {
				writeError(w, http.StatusTooManyRequests, "slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
