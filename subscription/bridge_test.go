package subscription

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tasktracker/domain"
)

func TestBridgeRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	hub := NewHub(4)
	bridge := NewBridge(rc, "board:events", hub, log.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bridge.Listen(ctx)
		close(done)
	}()
	// wait for subscription to start
	time.Sleep(50 * time.Millisecond)

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	bridge.Publish(domain.Event{Type: domain.CardCreated, Payload: map[string]any{"id": float64(1)}})

	select {
	case ev := <-ch:
		if ev.Type != domain.CardCreated {
			t.Fatalf("unexpected event type %s", ev.Type)
		}
		payload, ok := ev.Payload.(map[string]any)
		if !ok || payload["id"] != float64(1) {
			t.Fatalf("unexpected payload %#v", ev.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("event never reached the hub")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not exit")
	}
}

func TestBridgeFallsBackToLocalDelivery(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	hub := NewHub(4)
	bridge := NewBridge(rc, "board:events", hub, log.New())
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// With Redis down the event must still reach local subscribers.
	mr.Close()
	bridge.Publish(domain.Event{Type: domain.ListDeleted, Payload: int64(3)})

	select {
	case ev := <-ch:
		if ev.Type != domain.ListDeleted {
			t.Fatalf("unexpected event type %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("local fallback delivery failed")
	}
}
