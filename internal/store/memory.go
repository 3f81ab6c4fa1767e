// internal/store/memory.go
//
// In-memory Store. Used by tests and when STORE=memory; state is lost on
// restart.
//
// Characteristics:
//   - Maps keyed by ID, guarded by one RWMutex.
//   - Values are cloned on the way in and on the way out.

package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/robalobadob/bunny-rescue/internal/game"
	"github.com/robalobadob/bunny-rescue/internal/profile"
)

type memory struct {
	mu       sync.RWMutex
	accounts map[string]Account // keyed by ID
	profiles map[string]*profile.Profile
	sessions map[string]*game.Session
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		accounts: make(map[string]Account),
		profiles: make(map[string]*profile.Profile),
		sessions: make(map[string]*game.Session),
	}
}

func (m *memory) CreateAccount(ctx context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Username, a.Username) {
			return ErrUsernameTaken
		}
	}
	m.accounts[a.ID] = *a
	return nil
}

func (m *memory) AccountByID(ctx context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		return &a, nil
	}
	return nil, ErrNotFound
}

func (m *memory) AccountByUsername(ctx context.Context, username string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Username, username) {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memory) SaveProfile(ctx context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[p.AccountID]; !ok {
		return ErrNotFound
	}
	m.profiles[p.ID] = p.Clone()
	return nil
}

func (m *memory) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[id]; ok {
		return p.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) ListProfiles(ctx context.Context, accountID string) ([]*profile.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*profile.Profile{}
	for _, p := range m.profiles {
		if p.AccountID == accountID {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *profile.Profile) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (m *memory) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(m.profiles, id)
	for sid, s := range m.sessions {
		if owner(s) == id {
			delete(m.sessions, sid)
		}
	}
	return nil
}

func (m *memory) SaveSession(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[owner(s)]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *memory) GetSession(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) ListSessions(ctx context.Context, profileID string, limit int) ([]*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*game.Session{}
	for _, s := range m.sessions {
		if owner(s) == profileID {
			out = append(out, s.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *game.Session) int {
		return cmp.Or(b.SessionStart.Compare(a.SessionStart), strings.Compare(a.ID, b.ID))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}
