package services

import (
	"testing"
	"time"
)

func TestEventHub_Subscribe(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe("client1")
	if ch == nil {
		t.Error("Subscribe should return a channel")
	}
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}

	hub.Subscribe("client2")
	if hub.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", hub.ClientCount())
	}
}

func TestEventHub_Unsubscribe(t *testing.T) {
	hub := NewEventHub()

	hub.Subscribe("client1")
	hub.Subscribe("client2")

	hub.Unsubscribe("client1")
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after unsubscribe, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("nonexistent")
	if hub.ClientCount() != 1 {
		t.Errorf("unsubscribing nonexistent should not affect count, got %d", hub.ClientCount())
	}
}

func TestEventHub_PublishReachesAllClients(t *testing.T) {
	hub := NewEventHub()

	ch1 := hub.Subscribe("client1")
	ch2 := hub.Subscribe("client2")

	event := EntityEvent{Section: "tasks", Action: "updated", ProjectID: 3, EntityID: 7}
	hub.Publish(event)

	for i, ch := range []<-chan EntityEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got != event {
				t.Errorf("client %d got %+v, want %+v", i, got, event)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d did not receive the event", i)
		}
	}
}

func TestEventHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewEventHub()
	hub.Subscribe("slow")

	// Fill the buffer and then some; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(EntityEvent{Section: "projects", Action: "updated", ProjectID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow client")
	}
}

func TestEventHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewEventHub()
	ch := hub.Subscribe("client1")
	hub.Unsubscribe("client1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("closed channel should be readable immediately")
	}
}
