// internal/coordinator/subscription.go
package coordinator

import (
	"sync"

	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
)

const subscriberBuffer = 16

// Subscription delivers snapshots to one callback, in publication order,
// from its own goroutine. A slow callback loses the oldest queued
// snapshots, never the order.
type Subscription struct {
	c    *Coordinator
	id   uint64
	ch   chan luxtronik.Snapshot
	once sync.Once
	done chan struct{}
}

// Subscribe registers fn. If a snapshot was already published, fn gets it
// first.
func (c *Coordinator) Subscribe(fn func(luxtronik.Snapshot)) *Subscription {
	s := &Subscription{
		c:    c,
		ch:   make(chan luxtronik.Snapshot, subscriberBuffer),
		done: make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		for snap := range s.ch {
			fn(snap)
		}
	}()

	c.mu.Lock()
	if c.state == StateShutdown {
		c.mu.Unlock()
		s.closeChan()
		return s
	}
	c.nextSub++
	s.id = c.nextSub
	c.subs[s.id] = s
	if !c.last.IsZero() {
		s.offer(c.last)
	}
	c.mu.Unlock()

	return s
}

// Unsubscribe stops delivery. Snapshots already queued are still handed
// to the callback.
func (s *Subscription) Unsubscribe() {
	s.c.mu.Lock()
	delete(s.c.subs, s.id)
	s.c.mu.Unlock()

	s.closeChan()
}

// Done is closed after the callback has returned for the last time.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) closeChan() {
	s.once.Do(func() { close(s.ch) })
}

// offer must be called with c.mu held. The lane is the only sender, so
// after dropping one entry the send below cannot block.
func (s *Subscription) offer(snap luxtronik.Snapshot) {
	select {
	case s.ch <- snap:
		return
	default:
	}

	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

// publishLocked must be called with c.mu held.
func (c *Coordinator) publishLocked(snap luxtronik.Snapshot) {
	for _, s := range c.subs {
		s.offer(snap)
	}
}
