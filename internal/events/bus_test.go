package events

import (
	"testing"
	"time"
)

func TestBus_PublishReachesSubscriber(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	defer bus.Close()

	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	bus.Publish(Event{Type: TypeWorkItemChanged, ProjectID: 1, EntityID: 7})

	select {
	case got := <-ch:
		if got.Type != TypeWorkItemChanged {
			t.Errorf("Expected work_item_changed, got %s", got.Type)
		}
		if got.EntityID != 7 {
			t.Errorf("Expected entity 7, got %d", got.EntityID)
		}
		if got.OccurredAt.IsZero() {
			t.Error("Expected OccurredAt to be stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	defer bus.Close()

	id, _ := bus.Subscribe()
	defer bus.Unsubscribe(id)

	// Publish more than the buffer holds; must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBuffer*3; i++ {
			bus.Publish(Event{Type: TypeBoardChanged, EntityID: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	defer bus.Close()

	id, ch := bus.Subscribe()
	bus.Unsubscribe(id)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected closed channel after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(Event{Type: TypeProjectChanged})
}

func TestBus_CloseClosesAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	_, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()

	bus.Close()

	for _, ch := range []<-chan Event{ch1, ch2} {
		if _, ok := <-ch; ok {
			t.Error("Expected closed channel after bus close")
		}
	}

	// Subscribe after close returns an already-closed channel.
	_, ch3 := bus.Subscribe()
	if _, ok := <-ch3; ok {
		t.Error("Expected closed channel when subscribing after close")
	}
}
