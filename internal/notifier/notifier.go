package notifier

import (
	"sync"
)

// Kind identifies a ledger record type carried by an event.
type Kind string

const (
	KindUser        Kind = "users"
	KindListing     Kind = "listings"
	KindContract    Kind = "contracts"
	KindTransaction Kind = "transactions"
	KindStats       Kind = "stats"
)

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Event describes one committed change to a ledger record. Services publish
// events only after their database transaction commits, so a subscriber
// never observes a change that was rolled back.
type Event struct {
	Kind    Kind
	Op      Op
	ID      string
	Payload interface{}
}

// Filter restricts which events of a kind reach a subscriber. A nil filter
// matches everything of that kind.
type Filter func(Event) bool

type subscriber struct {
	kind   Kind
	filter Filter
	fn     func(Event)
}

// Bus fans committed ledger changes out to subscribers. Delivery is
// at-least-once and per-change; ordering is only guaranteed within a single
// kind, not across kinds.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64

	events    chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewBus() *Bus {
	b := &Bus{
		subs:   make(map[uint64]*subscriber),
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Subscription is the handle returned by Subscribe. Unsubscribe is
// idempotent and releases the underlying registration.
type Subscription struct {
	bus  *Bus
	id   uint64
	once sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
	})
}

// Subscribe registers fn for every event of the given kind that passes the
// filter. Independent subscriptions on the same kind and filter do not
// interfere with each other.
func (b *Bus) Subscribe(kind Kind, filter Filter, fn func(Event)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[id] = &subscriber{kind: kind, filter: filter, fn: fn}
	return &Subscription{bus: b, id: id}
}

// Publish queues an event for delivery. Publishing on a closed bus is a
// no-op.
func (b *Bus) Publish(e Event) {
	select {
	case <-b.done:
	case b.events <- e:
	}
}

// Close stops dispatching. Events already queued are drained before the
// dispatch goroutine exits. Close is idempotent.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			for {
				select {
				case e := <-b.events:
					b.deliver(e)
				default:
					return
				}
			}
		case e := <-b.events:
			b.deliver(e)
		}
	}
}

func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	targets := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind != e.Kind {
			continue
		}
		if s.filter != nil && !s.filter(e) {
			continue
		}
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, s := range targets {
		s.fn(e)
	}
}
