package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/khanijo/minewatch/internal/store"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub := testHub()
	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	hub.Broadcast(store.Incident{ID: "abc", Mine: "Test Mine"})

	for _, ch := range []<-chan []byte{first, second} {
		select {
		case payload := <-ch:
			var event map[string]any
			if err := json.Unmarshal(payload, &event); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if event["event"] != "incident.created" {
				t.Fatalf("unexpected event: %v", event["event"])
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber never received event")
		}
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	hub := testHub()
	_, cancel := hub.Subscribe()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected one subscriber, got %d", hub.SubscriberCount())
	}
	cancel()
	cancel() // idempotent
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected zero subscribers, got %d", hub.SubscriberCount())
	}
}

func TestSlowSubscriberDoesNotBlockBroadcast(t *testing.T) {
	hub := testHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Broadcast(store.Incident{ID: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on slow subscriber")
	}
}
