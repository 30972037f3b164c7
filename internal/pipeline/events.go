package pipeline

import "sync"

// Event is published to subscribers after every store write. FirstRun
// distinguishes a fresh start from a genuine zero-new-articles outcome so
// the UI can suppress a noisy "no news" toast on startup.
type Event struct {
	NewCount int  `json:"new_count"`
	FirstRun bool `json:"first_run,omitempty"`
}

// Notifier is an explicit observer registry; listeners subscribe here
// instead of on a global event bus.
type Notifier struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Subscribe(fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

func (n *Notifier) Publish(e Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, fn := range n.subs {
		fn(e)
	}
}
