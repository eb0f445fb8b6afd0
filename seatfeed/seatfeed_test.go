package seatfeed

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	feed := NewFeed()
	ch := feed.subscribe("cls1")
	defer feed.unsubscribe("cls1", ch)

	feed.Publish("cls1", 4, 6)

	select {
	case data := <-ch:
		var got seatUpdate
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ClassID != "cls1" || got.AvailableSeats != 4 || got.EnrolledStudents != 6 {
			t.Fatalf("update = %+v", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for update")
	}
}

func TestPublishScopedToClass(t *testing.T) {
	feed := NewFeed()
	ch := feed.subscribe("cls1")
	defer feed.unsubscribe("cls1", ch)

	feed.Publish("other", 1, 1)

	select {
	case <-ch:
		t.Fatal("subscriber received an update for another class")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	feed := NewFeed()
	ch := feed.subscribe("cls1")
	feed.unsubscribe("cls1", ch)

	feed.Publish("cls1", 1, 1)

	select {
	case <-ch:
		t.Fatal("unsubscribed channel received an update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishSkipsSlowSubscriber(t *testing.T) {
	feed := NewFeed()
	ch := feed.subscribe("cls1")
	defer feed.unsubscribe("cls1", ch)

	// Fill the buffer; further publishes must not block.
	for i := 0; i < cap(ch)+3; i++ {
		feed.Publish("cls1", i, i)
	}
}
