// internal/store/store.go
//
// Persistence interface for accounts, profiles and sessions.
// Implementations: in-memory (memory.go) and SQLite (sqlite.go).
//
// Stores hand out copies: mutating a returned value never changes what is
// stored until it is saved again.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/bunny-rescue/internal/game"
	"github.com/robalobadob/bunny-rescue/internal/profile"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrUsernameTaken = errors.New("store: username taken")
)

// Account is a parent or teacher login. Usernames are unique without
// regard to case.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is implemented by the memory and SQLite backends.
type Store interface {
	CreateAccount(ctx context.Context, a *Account) error
	AccountByID(ctx context.Context, id string) (*Account, error)
	AccountByUsername(ctx context.Context, username string) (*Account, error)

	SaveProfile(ctx context.Context, p *profile.Profile) error
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
	// ListProfiles returns an account's profiles, oldest first.
	ListProfiles(ctx context.Context, accountID string) ([]*profile.Profile, error)
	// DeleteProfile also deletes the sessions the profile owns.
	DeleteProfile(ctx context.Context, id string) error

	// SaveSession inserts or replaces a session. Its owner is the first
	// profile in ProfileIDs.
	SaveSession(ctx context.Context, s *game.Session) error
	GetSession(ctx context.Context, id string) (*game.Session, error)
	// ListSessions returns up to limit sessions owned by a profile,
	// newest first.
	ListSessions(ctx context.Context, profileID string, limit int) ([]*game.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// owner is the profile a session is filed under.
func owner(s *game.Session) string {
	if len(s.ProfileIDs) == 0 {
		return ""
	}
	return s.ProfileIDs[0]
}
