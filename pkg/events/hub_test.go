package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Publish(PowerLevel, PowerLevelEvent{Level: "low", Ts: 123})

	select {
	case ev := <-ch:
		if ev.Name != PowerLevel {
			t.Errorf("event name = %q, want %q", ev.Name, PowerLevel)
		}
		payload, err := DecodeAs[PowerLevelEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs() error = %v", err)
		}
		if payload.Level != "low" || payload.Ts != 123 {
			t.Errorf("payload = %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}

	// Double unsubscribe is safe.
	h.Unsubscribe(ch)
}

func TestPublishOnNilHubIsSafe(t *testing.T) {
	var h *EventHub
	h.Publish(Warning, WarningEvent{Warning: true})
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// Overfill the buffer; Publish must drop rather than block.
	for i := 0; i < 100; i++ {
		h.Publish(Warning, WarningEvent{Warning: i%2 == 0, Ts: int64(i)})
	}
}

func TestDecodeAsEmptyPayload(t *testing.T) {
	payload, err := DecodeAs[WarningEvent](Event{Name: Warning})
	if err != nil {
		t.Fatalf("DecodeAs() error = %v", err)
	}
	if payload.Warning {
		t.Error("empty payload should decode to zero value")
	}
}
