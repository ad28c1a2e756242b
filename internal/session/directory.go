// Package session owns the process-wide registry of live sessions. The
// directory maps opaque tokens to session records; sessions carry no TTL
// and live until explicitly destroyed.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("unknown or missing session token")
	ErrForbidden       = errors.New("session category does not satisfy requirement")
)

// Requirement is the role a route demands of the presented token.
type Requirement int

const (
	RequireAny Requirement = iota
	RequireAdministrator
	RequireUser
)

// Session is a live authenticated actor. The embedded mutex serializes all
// cart and checkout mutations performed on behalf of this token, so two
// requests bearing the same token (two browser tabs) are linearized.
type Session struct {
	Token     string
	Handle    string
	Category  domain.ActorCategory
	CreatedAt time.Time
	Cart      *domain.Cart // present iff Category == user

	mu sync.Mutex
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Directory is the shared token registry. Structural mutation is mutually
// exclusive with enumeration through the RWMutex.
type Directory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*Session)}
}

// Create registers a new session under a fresh opaque token. User sessions
// start with an empty cart; administrator sessions carry none.
func (d *Directory) Create(handle string, category domain.ActorCategory) *Session {
	s := &Session{
		Token:     uuid.New().String(),
		Handle:    handle,
		Category:  category,
		CreatedAt: time.Now(),
	}
	if category == domain.CategoryUser {
		s.Cart = domain.NewCart()
	}

	d.mu.Lock()
	d.sessions[s.Token] = s
	d.mu.Unlock()
	return s
}

// Resolve authenticates a token and gates it by role. Unknown tokens fail
// with ErrUnauthenticated; known tokens of the wrong category with
// ErrForbidden. RequireAny is satisfied by either category.
func (d *Directory) Resolve(token string, req Requirement) (*Session, error) {
	d.mu.RLock()
	s, ok := d.sessions[token]
	d.mu.RUnlock()

	if !ok {
		return nil, ErrUnauthenticated
	}
	switch req {
	case RequireAdministrator:
		if s.Category != domain.CategoryAdministrator {
			return nil, ErrForbidden
		}
	case RequireUser:
		if s.Category != domain.CategoryUser {
			return nil, ErrForbidden
		}
	}
	return s, nil
}

// Destroy removes a session. Destroying an unknown token is a no-op;
// callers are expected to have resolved the token first.
func (d *Directory) Destroy(token string) {
	d.mu.Lock()
	delete(d.sessions, token)
	d.mu.Unlock()
}

// Info is the diagnostic projection of a session, shaped like the original
// session table dump: the handle key depends on the actor category, and
// user sessions carry their live cart.
type Info struct {
	Username  string       `json:"username,omitempty"`
	Email     string       `json:"email,omitempty"`
	Category  string       `json:"category"`
	Timestamp float64      `json:"timestamp"`
	Cart      *domain.Cart `json:"cart,omitempty"`
}

// Snapshot returns the full session table keyed by token. Debug affordance
// only; the HTTP layer gates it behind configuration. Each user cart is
// copied under the session lock, so a concurrent mutation never tears a
// dumped record.
func (d *Directory) Snapshot() map[string]Info {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]Info, len(d.sessions))
	for token, s := range d.sessions {
		info := Info{
			Category:  string(s.Category),
			Timestamp: float64(s.CreatedAt.UnixNano()) / float64(time.Second),
		}
		if s.Category == domain.CategoryAdministrator {
			info.Username = s.Handle
		} else {
			info.Email = s.Handle
			s.mu.Lock()
			info.Cart = s.Cart.Clone()
			s.mu.Unlock()
		}
		out[token] = info
	}
	return out
}

// Len reports the number of live sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}
