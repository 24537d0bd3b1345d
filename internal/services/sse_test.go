package services

import (
	"testing"
	"time"
)

func TestSSEHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewSSEHub()
	if hub.ClientCount() != 0 {
		t.Fatalf("new hub should have 0 clients, got %d", hub.ClientCount())
	}

	ch1 := hub.Subscribe("tab-a", 1)
	hub.Subscribe("tab-b", 2)
	if hub.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("tab-a")
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after unsubscribe, got %d", hub.ClientCount())
	}

	// Unsubscribe closes the channel so the handler's stream loop ends.
	select {
	case _, open := <-ch1:
		if open {
			t.Error("channel should be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timed out waiting for channel close")
	}

	// Unknown IDs are a no-op, disconnect races make them normal.
	hub.Unsubscribe("tab-a")
	hub.Unsubscribe("never-subscribed")
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}
}

func TestSSEHub_PublishBroadcast(t *testing.T) {
	hub := NewSSEHub()

	ch1 := hub.Subscribe("client1", 1)
	ch2 := hub.Subscribe("client2", 2)

	event := Event{
		Type:  EventBoardElement,
		RefID: 10,
	}

	hub.Publish(event)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Type != EventBoardElement {
				t.Errorf("client%d: Type = %q, expected %q", i+1, received.Type, EventBoardElement)
			}
			if received.RefID != 10 {
				t.Errorf("client%d: RefID = %d, expected 10", i+1, received.RefID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client%d: timed out waiting for event", i+1)
		}
	}
}

func TestSSEHub_PublishTargeted(t *testing.T) {
	hub := NewSSEHub()

	ch1 := hub.Subscribe("client1", 1)
	ch2 := hub.Subscribe("client2", 2)

	hub.Publish(Event{
		Type:   EventNotification,
		UserID: 1,
		RefID:  5,
	})

	select {
	case received := <-ch1:
		if received.RefID != 5 {
			t.Errorf("RefID = %d, expected 5", received.RefID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("target user should receive the event")
	}

	select {
	case <-ch2:
		t.Error("other users should not receive a targeted event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHub_TargetedEventReachesAllUserConnections(t *testing.T) {
	hub := NewSSEHub()

	ch1 := hub.Subscribe("tab1", 7)
	ch2 := hub.Subscribe("tab2", 7)

	hub.Publish(Event{Type: EventNotification, UserID: 7, RefID: 3})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.RefID != 3 {
				t.Errorf("connection%d: RefID = %d, expected 3", i+1, received.RefID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("connection%d: timed out waiting for event", i+1)
		}
	}
}

func TestSSEHub_NonBlockingPublish(t *testing.T) {
	hub := NewSSEHub()

	hub.Subscribe("slow_client", 1)

	for i := 0; i < 200; i++ {
		hub.Publish(Event{Type: EventImportProgress, RefID: uint(i)})
	}
}

func TestGetSSEHub_Singleton(t *testing.T) {
	hub1 := GetSSEHub()
	hub2 := GetSSEHub()

	if hub1 != hub2 {
		t.Error("GetSSEHub should return the same instance")
	}
}
