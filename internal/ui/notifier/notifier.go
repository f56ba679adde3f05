// Package notifier broadcasts change events to connected SSE clients.
package notifier

import "sync"

// Event describes a change clients may want to re-render for.
type Event struct {
	// Learner is the learner whose progress changed. Empty means the change
	// concerns everyone, such as a catalog reload.
	Learner string
}

// Concerns reports whether the event is relevant to the given learner.
func (e Event) Concerns(learnerID string) bool {
	return e.Learner == "" || e.Learner == learnerID
}

// Notifier fans events out to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 4)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends ev to all listeners. A listener whose buffer is full misses
// the event.
func (n *Notifier) Broadcast(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// CatalogReloaded notifies every listener that the exercises changed.
func (n *Notifier) CatalogReloaded() {
	n.Broadcast(Event{})
}

// ProgressChanged notifies the listeners of one learner.
func (n *Notifier) ProgressChanged(learnerID string) {
	n.Broadcast(Event{Learner: learnerID})
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
