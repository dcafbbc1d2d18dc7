package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func collect(t *testing.T) (func(Event), func(n int) []Event) {
	t.Helper()

	var mu sync.Mutex
	var got []Event

	record := func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	}
	wait := func(n int) []Event {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			mu.Lock()
			if len(got) >= n {
				out := make([]Event, len(got))
				copy(out, got)
				mu.Unlock()
				return out
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}
		mu.Lock()
		defer mu.Unlock()
		t.Fatalf("timeout waiting for %d events, got %d", n, len(got))
		return nil
	}
	return record, wait
}

func TestBusDeliversByKind(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	record, wait := collect(t)
	bus.Subscribe(KindContract, nil, record)

	bus.Publish(Event{Kind: KindContract, Op: OpCreated, ID: "c1"})
	bus.Publish(Event{Kind: KindListing, Op: OpUpdated, ID: "l1"})
	bus.Publish(Event{Kind: KindContract, Op: OpUpdated, ID: "c1"})

	got := wait(2)
	assert.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, KindContract, e.Kind)
		assert.Equal(t, "c1", e.ID)
	}
}

func TestBusFilter(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	record, wait := collect(t)
	bus.Subscribe(KindListing, func(e Event) bool { return e.ID == "wanted" }, record)

	bus.Publish(Event{Kind: KindListing, Op: OpUpdated, ID: "other"})
	bus.Publish(Event{Kind: KindListing, Op: OpUpdated, ID: "wanted"})
	bus.Publish(Event{Kind: KindListing, Op: OpDeleted, ID: "other"})

	wait(1)
	// Give the dispatcher a moment to prove nothing else arrives.
	time.Sleep(20 * time.Millisecond)
	got := wait(1)
	assert.Len(t, got, 1)
	assert.Equal(t, "wanted", got[0].ID)
}

func TestSubscriptionsAreIndependent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	recordA, waitA := collect(t)
	recordB, waitB := collect(t)
	subA := bus.Subscribe(KindUser, nil, recordA)
	bus.Subscribe(KindUser, nil, recordB)

	bus.Publish(Event{Kind: KindUser, Op: OpUpdated, ID: "u1"})
	waitA(1)
	waitB(1)

	// Dropping one subscription leaves the other attached.
	subA.Unsubscribe()
	bus.Publish(Event{Kind: KindUser, Op: OpUpdated, ID: "u2"})

	got := waitB(2)
	assert.Equal(t, "u2", got[1].ID)

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, waitA(1), 1)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	record, _ := collect(t)
	sub := bus.Subscribe(KindStats, nil, record)

	sub.Unsubscribe()
	assert.NotPanics(t, func() {
		sub.Unsubscribe()
		sub.Unsubscribe()
	})
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	bus := NewBus()

	record, wait := collect(t)
	bus.Subscribe(KindTransaction, nil, record)

	bus.Publish(Event{Kind: KindTransaction, Op: OpCreated, ID: "t1"})
	wait(1)

	bus.Close()
	assert.NotPanics(t, func() {
		bus.Publish(Event{Kind: KindTransaction, Op: OpCreated, ID: "t2"})
	})
}

func TestCloseDrainsQueued(t *testing.T) {
	bus := NewBus()

	record, wait := collect(t)
	bus.Subscribe(KindContract, nil, record)

	for i := 0; i < 50; i++ {
		bus.Publish(Event{Kind: KindContract, Op: OpCreated, ID: "c"})
	}
	bus.Close()

	got := wait(50)
	assert.Len(t, got, 50)
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := NewBus()

	assert.NotPanics(t, func() {
		bus.Close()
		bus.Close()
	})

	// Still a no-op afterwards.
	bus.Publish(Event{Kind: KindUser, Op: OpUpdated, ID: "u1"})
}
