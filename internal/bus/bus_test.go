package bus

import (
	"context"
	"testing"
)

func TestHubBroadcastNeverBlocks(t *testing.T) {
	h := NewHub[int]()
	c, cancel := h.Subscribe(context.Background())
	defer cancel()

	// Nothing drains c between broadcasts; every call must still return.
	for i := 1; i <= 3; i++ {
		if err := h.Broadcast(context.Background(), i); err != nil {
			t.Fatalf("Broadcast(%d) = %v", i, err)
		}
	}

	select {
	case got := <-c:
		if got != 3 {
			t.Fatalf("pending event = %d, want newest 3", got)
		}
	default:
		t.Fatal("no pending event after broadcasts")
	}
}

func TestHubUnsubscribeWithUndrainedEvent(t *testing.T) {
	h := NewHub[int]()
	c, cancel := h.Subscribe(context.Background())

	if err := h.Broadcast(context.Background(), 7); err != nil {
		t.Fatalf("Broadcast = %v", err)
	}
	cancel()
	if err := h.Broadcast(context.Background(), 8); err != nil {
		t.Fatalf("Broadcast after unsubscribe = %v", err)
	}

	select {
	case got := <-c:
		if got != 7 {
			t.Fatalf("pending event = %d, want 7 from before unsubscribe", got)
		}
	default:
		t.Fatal("event delivered before unsubscribe was lost")
	}
}

func TestHubDeliversToEverySubscriber(t *testing.T) {
	h := NewHub[string]()
	a, cancelA := h.Subscribe(context.Background())
	defer cancelA()
	b, cancelB := h.Subscribe(context.Background())
	defer cancelB()

	if err := h.Broadcast(context.Background(), "snapshot"); err != nil {
		t.Fatalf("Broadcast = %v", err)
	}

	for name, c := range map[string]<-chan string{"a": a, "b": b} {
		select {
		case got := <-c:
			if got != "snapshot" {
				t.Fatalf("subscriber %s got %q", name, got)
			}
		default:
			t.Fatalf("subscriber %s got nothing", name)
		}
	}
}

func TestRegisteredHubReceivesPublished(t *testing.T) {
	type ping struct{ N int }

	h := NewHub[ping]().Register()
	c, cancel := h.Subscribe(context.Background())
	defer cancel()

	Publish(ping{N: 1})

	select {
	case got := <-c:
		if got.N != 1 {
			t.Fatalf("got %+v, want N=1", got)
		}
	default:
		t.Fatal("published event did not reach the hub subscriber")
	}
}
