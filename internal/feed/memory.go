package feed

import "sync"

// Broker is the in-process Feed used for single-node deployments and tests.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[int]Handler)}
}

func (b *Broker) Publish(change Change) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[subject(change.AgencyID, change.Table)]))
	for _, fn := range b.subs[subject(change.AgencyID, change.Table)] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}

func (b *Broker) Subscribe(agencyID uint, table string, fn Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := subject(agencyID, table)
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]Handler)
	}
	b.nextID++
	id := b.nextID
	b.subs[key][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[key], id)
		if len(b.subs[key]) == 0 {
			delete(b.subs, key)
		}
	}, nil
}

// SubscriberCount reports live subscriptions for one agency across all
// tables. Used to verify teardown on tenant switches.
func (b *Broker) SubscriberCount(agencyID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, table := range []string{TableAgencies, TableProjects, TableInvoices, TableExpenses, TableNotifications, TableInvitations} {
		n += len(b.subs[subject(agencyID, table)])
	}
	return n
}
