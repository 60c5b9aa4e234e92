package realtime

import (
	"testing"
)

func TestNewBroadcaster(t *testing.T) {
	b := NewBroadcaster[string]()
	if b == nil {
		t.Fatal("NewBroadcaster returned nil")
	}
	if b.Len() != 0 {
		t.Errorf("Len %d, want 0", b.Len())
	}
}

func TestBroadcaster_Subscribe(t *testing.T) {
	b := NewBroadcaster[string]()
	sub, ok := b.Subscribe("alice", 4)
	if !ok || sub == nil {
		t.Fatal("Subscribe returned no subscription")
	}
	if sub.Key != "alice" {
		t.Errorf("Key %q, want alice", sub.Key)
	}
	b.Unsubscribe(sub)
}

func TestBroadcaster_SubscribeRejectsDuplicateKey(t *testing.T) {
	b := NewBroadcaster[string]()
	first, _ := b.Subscribe("alice", 4)
	defer b.Unsubscribe(first)

	if _, ok := b.Subscribe("alice", 4); ok {
		t.Error("second Subscribe for the same key should fail")
	}
}

func TestBroadcaster_SubscribeQueuesBacklogFirst(t *testing.T) {
	b := NewBroadcaster[string]()
	sub, _ := b.Subscribe("alice", 1, "h1", "h2")
	defer b.Unsubscribe(sub)

	b.Publish("live")
	for _, want := range []string{"h1", "h2", "live"} {
		if got := <-sub.C; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestBroadcaster_PublishDeliversToMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster[string]()
	s1, _ := b.Subscribe("alice", 4)
	s2, _ := b.Subscribe("bob", 4)
	defer b.Unsubscribe(s1)
	defer b.Unsubscribe(s2)

	b.Publish("scores")
	if got := <-s1.C; got != "scores" {
		t.Errorf("s1 got %q, want scores", got)
	}
	if got := <-s2.C; got != "scores" {
		t.Errorf("s2 got %q, want scores", got)
	}
}

func TestBroadcaster_PublishPreservesOrder(t *testing.T) {
	b := NewBroadcaster[int]()
	sub, _ := b.Subscribe("alice", 100)
	defer b.Unsubscribe(sub)

	for i := 0; i < 100; i++ {
		b.Publish(i)
	}
	for i := 0; i < 100; i++ {
		if got := <-sub.C; got != i {
			t.Fatalf("event %d arrived as %d", i, got)
		}
	}
}

func TestBroadcaster_PublishDropsLaggingSubscriber(t *testing.T) {
	b := NewBroadcaster[string]()
	slow, _ := b.Subscribe("slow", 1)
	fast, _ := b.Subscribe("fast", 4)
	defer b.Unsubscribe(fast)

	if dropped := b.Publish("one"); len(dropped) != 0 {
		t.Fatalf("dropped %v after first publish", dropped)
	}
	dropped := b.Publish("two")
	if len(dropped) != 1 || dropped[0] != "slow" {
		t.Fatalf("dropped %v, want [slow]", dropped)
	}

	if got := <-slow.C; got != "one" {
		t.Errorf("slow got %q, want one", got)
	}
	if _, open := <-slow.C; open {
		t.Error("slow subscription should be closed")
	}
	<-fast.C
	if got := <-fast.C; got != "two" {
		t.Errorf("fast got %q, want two", got)
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster[string]()
	sub, _ := b.Subscribe("alice", 4)
	b.Unsubscribe(sub)
	_, open := <-sub.C
	if open {
		t.Error("channel should be closed after Unsubscribe")
	}
	if b.Unsubscribe(sub) {
		t.Error("second Unsubscribe should be a no-op")
	}
}

func TestBroadcaster_UnsubscribeIgnoresStaleSubscription(t *testing.T) {
	b := NewBroadcaster[string]()
	old, _ := b.Subscribe("alice", 4)
	b.Unsubscribe(old)
	current, _ := b.Subscribe("alice", 4)
	defer b.Unsubscribe(current)

	if b.Unsubscribe(old) {
		t.Error("stale subscription must not remove the current one")
	}
	if got, ok := b.Lookup("alice"); !ok || got != current {
		t.Error("current subscription should still be registered")
	}
}

func TestBroadcaster_Send(t *testing.T) {
	b := NewBroadcaster[string]()
	s1, _ := b.Subscribe("alice", 4)
	s2, _ := b.Subscribe("bob", 4)
	defer b.Unsubscribe(s1)
	defer b.Unsubscribe(s2)

	if !b.Send("alice", "private") {
		t.Fatal("Send to alice failed")
	}
	if b.Send("carol", "private") {
		t.Error("Send to unknown key should fail")
	}
	if got := <-s1.C; got != "private" {
		t.Errorf("alice got %q, want private", got)
	}
	select {
	case got := <-s2.C:
		t.Errorf("bob should not receive, got %q", got)
	default:
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster[string]()
	s1, _ := b.Subscribe("alice", 4)
	s2, _ := b.Subscribe("bob", 4)

	keys := b.Close()
	if len(keys) != 2 {
		t.Errorf("closed %d subscriptions, want 2", len(keys))
	}
	for _, sub := range []*Subscription[string]{s1, s2} {
		if _, open := <-sub.C; open {
			t.Errorf("%s should be closed", sub.Key)
		}
	}
	if b.Len() != 0 {
		t.Errorf("Len %d, want 0", b.Len())
	}
}
