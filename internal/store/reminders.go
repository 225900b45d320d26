package store

import (
	"sync"

	"github.com/hanvo/tickler/internal/model"
)

// Reminders is the in-memory reminder set for the active session. It is
// refreshed wholesale from the backend and mutated optimistically by
// user actions. All mutations go through its methods; a patch is
// applied under the lock so no reader ever observes a partial update.
type Reminders struct {
	mu       sync.RWMutex
	order    []string
	items    map[string]model.Reminder
	onChange func()
}

// NewReminders creates an empty reminder set.
func NewReminders() *Reminders {
	return &Reminders{items: make(map[string]model.Reminder)}
}

// SetOnChange registers a hook invoked after every mutation. The hook
// runs outside the store lock and must not block.
func (r *Reminders) SetOnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func (r *Reminders) notify() {
	r.mu.RLock()
	fn := r.onChange
	r.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// ReplaceAll swaps in a full refresh from the backend, preserving the
// backend's ordering.
func (r *Reminders) ReplaceAll(list []model.Reminder) {
	r.mu.Lock()
	r.order = make([]string, 0, len(list))
	r.items = make(map[string]model.Reminder, len(list))
	for _, rem := range list {
		if _, dup := r.items[rem.ID]; dup {
			continue
		}
		r.order = append(r.order, rem.ID)
		r.items[rem.ID] = rem
	}
	r.mu.Unlock()
	r.notify()
}

// Upsert inserts rem or replaces the stored record with the same id,
// keeping its position in store order.
func (r *Reminders) Upsert(rem model.Reminder) {
	r.mu.Lock()
	if _, ok := r.items[rem.ID]; !ok {
		r.order = append(r.order, rem.ID)
	}
	r.items[rem.ID] = rem
	r.mu.Unlock()
	r.notify()
}

// Patch atomically applies fn to the stored reminder with the given id.
// It reports whether the reminder existed.
func (r *Reminders) Patch(id string, fn func(*model.Reminder)) bool {
	r.mu.Lock()
	rem, ok := r.items[id]
	if ok {
		fn(&rem)
		rem.ID = id
		r.items[id] = rem
	}
	r.mu.Unlock()
	if ok {
		r.notify()
	}
	return ok
}

// Remove deletes the reminder with the given id, reporting whether it
// was present.
func (r *Reminders) Remove(id string) bool {
	r.mu.Lock()
	_, ok := r.items[id]
	if ok {
		delete(r.items, id)
		for i, oid := range r.order {
			if oid == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if ok {
		r.notify()
	}
	return ok
}

// Get returns a copy of the reminder with the given id.
func (r *Reminders) Get(id string) (model.Reminder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rem, ok := r.items[id]
	return rem, ok
}

// All returns a snapshot of the set in store order. The slice is a
// copy; callers may hold it across further mutations.
func (r *Reminders) All() []model.Reminder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Reminder, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// IDs returns the set of ids currently held.
func (r *Reminders) IDs() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{}, len(r.items))
	for id := range r.items {
		out[id] = struct{}{}
	}
	return out
}

// Len returns the number of reminders held.
func (r *Reminders) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
