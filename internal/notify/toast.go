// Package notify carries user-facing toast notifications from the session
// controller and page handlers to the next rendered page.
package notify

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/loganlanou/colink-venture/internal/clientstore"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// maxFlash bounds how many toasts wait for a tab that never renders.
const maxFlash = 20

type Toast struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
}

// Info builds a default toast.
func Info(title, description string) Toast {
	return Toast{ID: ulid.Make().String(), Title: title, Description: description, Variant: VariantDefault}
}

// Error builds a destructive toast.
func Error(title, description string) Toast {
	return Toast{ID: ulid.Make().String(), Title: title, Description: description, Variant: VariantDestructive}
}

// Notifier receives toasts. Implementations must not block.
type Notifier interface {
	Notify(t Toast)
}

// Queue keeps toasts in memory until drained.
type Queue struct {
	mu     sync.Mutex
	toasts []Toast
}

func (q *Queue) Notify(t Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = append(q.toasts, t)
}

// Drain returns the queued toasts and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.toasts
	q.toasts = nil
	if out == nil {
		return []Toast{}
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}

// Flash stores toasts in a tab's storage so they survive a redirect and
// show on whichever page the tab renders next.
type Flash struct {
	mu    sync.Mutex
	store clientstore.Store
}

func NewFlash(store clientstore.Store) *Flash {
	return &Flash{store: store}
}

func (f *Flash) Notify(t Toast) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending := f.read()
	pending = append(pending, t)
	if len(pending) > maxFlash {
		pending = pending[len(pending)-maxFlash:]
	}

	data, err := json.Marshal(pending)
	if err != nil {
		slog.Error("failed to encode flash toasts", "error", err)
		return
	}
	f.store.Set(clientstore.KeyFlash, string(data))
}

// Pop returns and removes every pending toast.
func (f *Flash) Pop() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending := f.read()
	f.store.Remove(clientstore.KeyFlash)
	return pending
}

func (f *Flash) read() []Toast {
	raw, ok := f.store.Get(clientstore.KeyFlash)
	if !ok || raw == "" {
		return []Toast{}
	}
	var pending []Toast
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		slog.Warn("discarding unreadable flash toasts", "error", err)
		return []Toast{}
	}
	return pending
}
