// Package audit records who changed what, per profile.
package audit

import (
	"sync"
	"time"

	"finance-ledger-backend/internal/profile"

	"github.com/google/uuid"
)

// DefaultUser is stamped on entries when no user is configured.
const DefaultUser = "Max Mustermann"

// Event is what a component reports; the recorder adds the context.
type Event struct {
	Action  string
	Details string
}

// Entry is a stored audit log line.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Profile   profile.Profile `json:"profile"`
	User      string          `json:"user"`
	Action    string          `json:"action"`
	Details   string          `json:"details,omitempty"`
}

// Sink receives audit events.
type Sink interface {
	Record(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Record(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder collects events of a single request as entries, stamped with
// the active profile and user. Entries are persisted once the mutation
// they describe has been committed.
type Recorder struct {
	Profile profile.Profile
	User    string
	Now     func() time.Time

	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns a Recorder for the given profile and user.
func NewRecorder(p profile.Profile, user string) *Recorder {
	if user == "" {
		user = DefaultUser
	}
	return &Recorder{Profile: p, User: user, Now: time.Now}
}

// Record implements Sink.
func (r *Recorder) Record(e Event) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: now().UTC(),
		Profile:   r.Profile,
		User:      r.User,
		Action:    e.Action,
		Details:   e.Details,
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

// Entries returns the recorded entries in the order they were recorded.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

