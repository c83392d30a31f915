package broadcast

import (
	"context"
	"testing"
	"time"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvClosed(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if ok {
			t.Fatalf("expected closed outbox, got: %+v", s)
		}
	case <-time.After(within):
		t.Fatalf("timed out waiting for outbox to close")
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func TestBroadcaster_Join_ReceivesCurrentThenUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroadcaster(ctx, "hello", nil)

	out := make(chan Snapshot, 2)
	b.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvSnapshot(t, out, 100*time.Millisecond)
	if first.Version != 0 || first.Text != "hello" {
		t.Fatalf("after join: want v0 %q, got %+v", "hello", first)
	}

	b.Render("Ada advances to the next round!")

	next := recvSnapshot(t, out, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after render: want version=1, got %d", next.Version)
	}
	if next.Text != "Ada advances to the next round!" {
		t.Fatalf("after render: got text %q", next.Text)
	}

	b.Inbox() <- Shutdown{}
	recvClosed(t, out, 100*time.Millisecond)
}

func TestBroadcaster_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroadcaster(ctx, "", nil)

	// Buffer of one is filled by the join snapshot.
	out := make(chan Snapshot, 1)
	b.Inbox() <- Join{ClientID: "c1", Outbox: out}
	b.Render("one")

	reply := make(chan View, 1)
	b.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
	if view.Version != 1 || view.Text != "one" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestBroadcaster_LeaveClosesOutbox(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroadcaster(ctx, "", nil)

	out := make(chan Snapshot, 4)
	b.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	b.Inbox() <- Leave{ClientID: "c1"}
	recvClosed(t, out, 100*time.Millisecond)

	// Unknown IDs are ignored.
	b.Inbox() <- Leave{ClientID: "nobody"}

	v, ok := b.Current(context.Background())
	if !ok || v.NumClients != 0 {
		t.Fatalf("want no clients, got %+v ok=%v", v, ok)
	}
}

func TestBroadcaster_RenderAfterShutdownIsNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBroadcaster(ctx, "", nil)
	cancel()

	select {
	case <-b.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("broadcaster did not stop with its parent context")
	}

	done := make(chan struct{})
	go func() {
		b.Render("late")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("Render blocked after shutdown")
	}

	if _, ok := b.Current(context.Background()); ok {
		t.Fatalf("Current should report false after shutdown")
	}
}
