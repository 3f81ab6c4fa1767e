// internal/store/sqlite.go
//
// SQLite-backed Store.
// Profiles and sessions are JSON documents; the id, owner and timestamp
// columns exist for lookups and ordering. Constraint failures reported by
// the driver are mapped onto ErrUsernameTaken and ErrNotFound.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/bunny-rescue/internal/game"
	"github.com/robalobadob/bunny-rescue/internal/profile"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps a database opened with Open.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

// mapConstraint translates driver constraint errors into store errors.
func mapConstraint(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return ErrUsernameTaken
	case sqlite3.ErrConstraintForeignKey:
		return ErrNotFound
	}
	return err
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// ------------------------------ accounts ------------------------------------

func (s *sqliteStore) CreateAccount(ctx context.Context, a *Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		a.ID, a.Username, a.PasswordHash, formatTime(a.CreatedAt))
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

func (s *sqliteStore) AccountByID(ctx context.Context, id string) (*Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM accounts WHERE id=?`, id))
}

func (s *sqliteStore) AccountByUsername(ctx context.Context, username string) (*Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM accounts WHERE lower(username)=lower(?)`, username))
}

func (s *sqliteStore) scanAccount(row *sql.Row) (*Account, error) {
	var (
		a       Account
		created string
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.CreatedAt = parseTime(created)
	return &a, nil
}

// ------------------------------ profiles ------------------------------------

func (s *sqliteStore) SaveProfile(ctx context.Context, p *profile.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO profiles (id, account_id, data, created_at) VALUES (?,?,?,?)
        ON CONFLICT(id) DO UPDATE SET data=excluded.data`,
		p.ID, p.AccountID, string(data), formatTime(p.CreatedAt))
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

func (s *sqliteStore) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(data)
}

func (s *sqliteStore) ListProfiles(ctx context.Context, accountID string) ([]*profile.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM profiles WHERE account_id=? ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*profile.Profile{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		p, err := decodeProfile(data)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func decodeProfile(data string) (*profile.Profile, error) {
	var p profile.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (s *sqliteStore) DeleteProfile(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM profiles WHERE id=?`, id)
}

// ------------------------------ sessions ------------------------------------

func (s *sqliteStore) SaveSession(ctx context.Context, sess *game.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, profile_id, completed, data, started_at, updated_at)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(id) DO UPDATE SET
            completed=excluded.completed, data=excluded.data, updated_at=excluded.updated_at`,
		sess.ID, owner(sess), sess.Completed, string(data),
		formatTime(sess.SessionStart), formatTime(time.Now()))
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

func (s *sqliteStore) GetSession(ctx context.Context, id string) (*game.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}

func (s *sqliteStore) ListSessions(ctx context.Context, profileID string, limit int) ([]*game.Session, error) {
	if limit <= 0 {
		limit = -1 // no LIMIT in SQLite
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT data FROM sessions WHERE profile_id=?
        ORDER BY started_at DESC, id ASC
        LIMIT ?`, profileID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*game.Session{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		sess, err := decodeSession(data)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func decodeSession(data string) (*game.Session, error) {
	var sess game.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *sqliteStore) DeleteSession(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM sessions WHERE id=?`, id)
}

func (s *sqliteStore) deleteByID(ctx context.Context, query, id string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
