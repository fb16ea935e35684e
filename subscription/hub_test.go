package subscription

import (
	"testing"
	"time"

	"tasktracker/domain"
)

func TestPublishFIFOPerSubscriber(t *testing.T) {
	h := NewHub(8)
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	types := []string{domain.ListCreated, domain.CardCreated, domain.CardUpdated}
	for _, typ := range types {
		h.Publish(domain.Event{Type: typ})
	}

	for i, want := range types {
		select {
		case ev := <-ch:
			if ev.Type != want {
				t.Fatalf("event %d: expected %s, got %s", i, want, ev.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub(1)
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Publish(domain.Event{Type: domain.ListDeleted, Payload: int64(7)})

	for _, ch := range []chan domain.Event{a, b} {
		select {
		case ev := <-ch:
			if ev.Type != domain.ListDeleted {
				t.Fatalf("unexpected type %s", ev.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed event")
		}
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	h := NewHub(1)
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Publish(domain.Event{Type: domain.ListCreated})
	h.Publish(domain.Event{Type: domain.ListUpdated}) // buffer full, dropped

	ev := <-ch
	if ev.Type != domain.ListCreated {
		t.Fatalf("expected first event, got %s", ev.Type)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected overflow event to be dropped, got %s", ev.Type)
	default:
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(4)
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	h.Publish(domain.Event{Type: domain.ListCreated})

	select {
	case ev := <-ch:
		t.Fatalf("unsubscribed channel received %s", ev.Type)
	default:
	}
}
