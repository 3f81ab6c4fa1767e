// internal/httpserver/routes_sessions.go
//
// Game sessions.
//   - POST   /sessions               start a session for one or more profiles
//   - GET    /sessions/{id}          current view
//   - POST   /sessions/{id}/select   {row, col}
//   - POST   /sessions/{id}/undo|clear|submit|tick|hint
//   - DELETE /sessions/{id}          abandon (breaks the players' streaks)
//
// Each live session is driven by one game.Controller held in memory and
// guarded by its own mutex. The session is saved after every action, so a
// restart resumes from the store. When a session completes, the players'
// profiles are updated and, for daily sessions, the result is recorded.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/robalobadob/bunny-rescue/internal/board"
	"github.com/robalobadob/bunny-rescue/internal/daily"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/game"
	"github.com/robalobadob/bunny-rescue/internal/profile"
	"github.com/robalobadob/bunny-rescue/internal/store"
	"github.com/robalobadob/bunny-rescue/internal/words"
)

// ------------------------------ live sessions ------------------------------

type liveSession struct {
	mu        sync.Mutex // guards c
	c         *game.Controller
	accountID string
	owner     string // first profile id
}

type liveSessions struct {
	mu sync.Mutex // guards m; held while a session is resumed from the store
	m  map[string]*liveSession
}

func newLiveSessions() *liveSessions {
	return &liveSessions{m: make(map[string]*liveSession)}
}

func (l *liveSessions) put(id string, ls *liveSession) {
	l.mu.Lock()
	l.m[id] = ls
	l.mu.Unlock()
}

func (l *liveSessions) drop(id string) {
	l.mu.Lock()
	delete(l.m, id)
	l.mu.Unlock()
}

// dropProfile forgets every live session owned by profileID.
func (l *liveSessions) dropProfile(profileID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ls := range l.m {
		if ls.owner == profileID {
			delete(l.m, id)
		}
	}
}

// session returns the live controller for id, resuming it from the store
// when it is not in memory. Sessions of other accounts are rejected.
func (s *Server) session(ctx context.Context, me *authUser, id string) (*liveSession, error) {
	s.live.mu.Lock()
	defer s.live.mu.Unlock()

	if ls, ok := s.live.m[id]; ok {
		if ls.accountID != me.ID {
			return nil, errForbidden
		}
		return ls, nil
	}

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(sess.ProfileIDs) == 0 {
		return nil, fmt.Errorf("session %s: %w", id, game.ErrNoProfile)
	}
	owner, err := s.ownedProfile(ctx, me, sess.ProfileIDs[0])
	if err != nil {
		return nil, err
	}
	perf := game.PlayerPerformance{owner.ID: owner.WordPerformance}
	for _, pid := range sess.ProfileIDs[1:] {
		// a deleted partner simply starts from no records
		if p, err := s.store.GetProfile(ctx, pid); err == nil {
			perf[pid] = p.WordPerformance
		}
	}
	c, err := game.Resume(sess, perf, s.now)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", id, err)
	}
	ls := &liveSession{c: c, accountID: me.ID, owner: owner.ID}
	s.live.m[id] = ls
	return ls, nil
}

// --------------------------------- views -----------------------------------

// sessionView is what clients see of a session. In multi-word rounds the
// unfound target words are reduced to their lengths.
type sessionView struct {
	ID             string                      `json:"id"`
	ProfileIDs     []string                    `json:"profileIds"`
	CurrentPlayer  int                         `json:"currentPlayerIndex"`
	Difficulty     difficulty.Tier             `json:"difficulty"`
	Grade          difficulty.Grade            `json:"grade"`
	DailyKey       string                      `json:"dailyKey,omitempty"`
	Board          board.Board                 `json:"board"`
	Traps          []board.Trap                `json:"bunnyTraps"`
	Mode           string                      `json:"mode"`
	CurrentWord    string                      `json:"currentWord,omitempty"`
	FoundWords     []string                    `json:"foundWords,omitempty"`
	HiddenWords    []int                       `json:"hiddenWordLengths,omitempty"`
	Strikes        int                         `json:"strikes"`
	MaxStrikes     int                         `json:"maxStrikes"`
	CurrentInput   string                      `json:"currentInput"`
	Selected       []board.Position            `json:"selectedTiles"`
	Focus          int                         `json:"gardenFocus"`
	FocusMax       int                         `json:"gardenFocusMax"`
	Streak         int                         `json:"streak"`
	BunniesRescued int                         `json:"bunniesRescued"`
	TotalBunnies   int                         `json:"totalBunnies"`
	WordsSpelled   int                         `json:"wordsSpelled"`
	HintsDisabled  bool                        `json:"hintsDisabled"`
	TurnNumber     int                         `json:"turnNumber"`
	ReviewCount    int                         `json:"reviewCount"`
	TimeLeftMs     *int64                      `json:"timeLeftMs,omitempty"`
	Completed      bool                        `json:"completed"`
	CompletedAt    *time.Time                  `json:"completedAt,omitempty"`
	Stats          map[string]game.PlayerStats `json:"stats"`
}

func modeName(m game.Mode) string {
	if _, ok := m.(game.MultiWord); ok {
		return "multi"
	}
	return "single"
}

func newView(sess *game.Session, cfg difficulty.Config, now time.Time) sessionView {
	v := sessionView{
		ID:             sess.ID,
		ProfileIDs:     sess.ProfileIDs,
		CurrentPlayer:  sess.CurrentPlayer,
		Difficulty:     sess.Tier,
		Grade:          sess.Grade,
		DailyKey:       sess.DailyKey,
		Board:          sess.Board,
		Traps:          sess.Traps,
		Mode:           modeName(sess.Mode),
		MaxStrikes:     cfg.MaxStrikes,
		CurrentInput:   sess.CurrentInput,
		Selected:       sess.Selected,
		Focus:          sess.Focus,
		FocusMax:       sess.FocusMax,
		Streak:         sess.Streak,
		BunniesRescued: sess.BunniesRescued,
		TotalBunnies:   sess.TotalBunnies,
		WordsSpelled:   sess.WordsSpelled,
		HintsDisabled:  sess.HintsDisabled,
		TurnNumber:     sess.TurnNumber,
		ReviewCount:    len(sess.ReviewWords),
		Completed:      sess.Completed,
		Stats:          sess.Stats,
	}
	if v.Selected == nil {
		v.Selected = []board.Position{}
	}

	clockStart := sess.TurnStart
	switch m := sess.Mode.(type) {
	case game.SingleWord:
		v.CurrentWord = m.CurrentWord
	case game.MultiWord:
		v.FoundWords = m.FoundWords
		for _, w := range m.Remaining() {
			v.HiddenWords = append(v.HiddenWords, len(w))
		}
		v.Strikes = m.Strikes
		clockStart = m.RoundStart
	}
	if cfg.Timed() && !sess.Completed {
		left := max(cfg.TimerDuration-now.Sub(clockStart), 0).Milliseconds()
		v.TimeLeftMs = &left
	}
	if sess.Completed {
		at := sess.CompletedAt
		v.CompletedAt = &at
	}
	return v
}

// ------------------------------- routes ------------------------------------

func (s *Server) mountSessions(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleAbandonSession)
			r.Post("/select", s.act(func(c *game.Controller, r *http.Request) (any, error) {
				var req struct {
					Row int `json:"row"`
					Col int `json:"col"`
				}
				if err := decode(r, &req); err != nil {
					return nil, errBadJSON
				}
				return c.SelectTile(req.Row, req.Col)
			}))
			r.Post("/undo", s.act(func(c *game.Controller, _ *http.Request) (any, error) { return c.Undo() }))
			r.Post("/clear", s.act(func(c *game.Controller, _ *http.Request) (any, error) { return c.Clear() }))
			r.Post("/submit", s.act(func(c *game.Controller, _ *http.Request) (any, error) { return c.Submit() }))
			r.Post("/tick", s.act(func(c *game.Controller, _ *http.Request) (any, error) { return c.Tick(s.now()) }))
			r.Post("/hint", s.act(func(c *game.Controller, _ *http.Request) (any, error) {
				h, out, err := c.Hint()
				if err != nil {
					return nil, err
				}
				return hintOutcome{Outcome: out, Hint: h}, nil
			}))
		})
	})
}

var errBadJSON = errors.New("invalid_json")

type hintOutcome struct {
	game.Outcome
	Hint game.Hint `json:"hint"`
}

type actionRes struct {
	Outcome any         `json:"outcome"`
	Session sessionView `json:"session"`
}

type startSessionReq struct {
	ProfileID  string          `json:"profileId"`
	ProfileIDs []string        `json:"profileIds"` // co-op; the first profile owns the session
	Tier       difficulty.Tier `json:"difficulty"`
	Mode       game.ModeChoice `json:"mode"`
	Seed       *int64          `json:"seed"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	ids := req.ProfileIDs
	if len(ids) == 0 && req.ProfileID != "" {
		ids = []string{req.ProfileID}
	}
	switch req.Mode {
	case game.ModeDefault, game.ModeSingle, game.ModeMulti:
	default:
		writeError(w, http.StatusBadRequest, "mode must be single or multi")
		return
	}
	ls, err := s.startSession(r.Context(), currentUser(r), ids, req.Tier, req.Mode, req.Seed, "", "")
	if err != nil {
		fail(w, r, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusCreated, newView(ls.c.Session(), ls.c.Config(), s.now()))
}

// startSession builds a controller for profiles owned by the caller, saves
// the session and registers it as live. The owner's grade, tier preference,
// word list and mastered words shape the game; co-op partners add their
// custom words. Daily sessions instead deal the shared list of the tier.
// Each player's word records are tracked separately.
func (s *Server) startSession(ctx context.Context, me *authUser, profileIDs []string, tier difficulty.Tier, mode game.ModeChoice, seed *int64, id, dailyKey string) (*liveSession, error) {
	if len(profileIDs) == 0 {
		return nil, game.ErrNoProfile
	}
	var (
		owner   *profile.Profile
		players []string
		wordSet []string
		perf    = game.PlayerPerformance{}
	)
	for _, pid := range profileIDs {
		if slices.Contains(players, pid) {
			continue
		}
		p, err := s.ownedProfile(ctx, me, pid)
		if err != nil {
			return nil, err
		}
		players = append(players, pid)
		perf[pid] = p.WordPerformance
		if owner == nil {
			owner = p
			wordSet = p.WordList()
			continue
		}
		wordSet = append(wordSet, p.CustomWords...)
	}
	if tier == "" {
		tier = owner.Tier()
	}
	if dailyKey != "" {
		wordSet = words.ForTier(tier)
	}
	c, err := game.Start(game.Options{
		ID:          id,
		ProfileIDs:  players,
		Tier:        tier,
		Grade:       owner.Grade,
		Words:       wordSet,
		Mode:        mode,
		Seed:        seed,
		DailyKey:    dailyKey,
		Performance: perf,
		Clock:       s.now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSession(ctx, c.Session()); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	ls := &liveSession{c: c, accountID: me.ID, owner: owner.ID}
	s.live.put(c.Session().ID, ls)
	zerolog.Ctx(ctx).Info().
		Str("session", c.Session().ID).
		Str("profile", owner.ID).
		Str("difficulty", string(tier)).
		Str("daily", dailyKey).
		Msg("session started")
	return ls, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, err := s.session(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, newView(ls.c.Session(), ls.c.Config(), s.now()))
}

// act runs one controller action under the session lock, persists the
// result and settles the session if the action completed it.
func (s *Server) act(fn func(c *game.Controller, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls, err := s.session(r.Context(), currentUser(r), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}
		ls.mu.Lock()
		defer ls.mu.Unlock()

		out, err := fn(ls.c, r)
		if errors.Is(err, errBadJSON) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			fail(w, r, err)
			return
		}

		sess := ls.c.Session()
		if err := s.store.SaveSession(r.Context(), sess); err != nil {
			fail(w, r, fmt.Errorf("save session: %w", err))
			return
		}
		if sess.Completed {
			s.settle(r.Context(), ls.c, false)
			s.live.drop(sess.ID)
		}
		writeJSON(w, http.StatusOK, actionRes{Outcome: out, Session: newView(sess, ls.c.Config(), s.now())})
	}
}

// handleAbandonSession deletes a session. An unfinished session counts as
// a game played that breaks each player's streak.
func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	ls, err := s.session(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	sess := ls.c.Session()
	if !sess.Completed {
		s.settle(r.Context(), ls.c, true)
	}
	if err := s.store.DeleteSession(r.Context(), sess.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		fail(w, r, err)
		return
	}
	s.live.drop(sess.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// settle writes a finished (or abandoned) session back to its players'
// profiles and records daily results. Failures are logged; the game itself
// is already saved.
func (s *Server) settle(ctx context.Context, c *game.Controller, abandoned bool) {
	logger := zerolog.Ctx(ctx)
	sess := c.Session()
	perf := c.Performance()
	now := s.now()

	for _, pid := range sess.ProfileIDs {
		p, err := s.store.GetProfile(ctx, pid)
		if err != nil {
			logger.Warn().Err(err).Str("profile", pid).Msg("settle: load profile")
			continue
		}
		st := sess.Stats[pid]
		p.UpdateStats(st.BunniesRescued, st.WordsSpelled, st.Accuracy(), abandoned)
		if !abandoned {
			p.UpdateDailyStreak(now)
		}
		p.MergePerformance(perf[pid])
		if err := s.store.SaveProfile(ctx, p); err != nil {
			logger.Warn().Err(err).Str("profile", pid).Msg("settle: save profile")
		}
	}

	if sess.DailyKey == "" {
		return
	}
	if abandoned {
		// the marker closes the day without ranking
		marker := daily.Result{
			ProfileID: sess.ProfileIDs[0],
			Date:      sess.DailyKey,
			Tier:      sess.Tier,
			Seed:      sess.Seed,
			Abandoned: true,
		}
		if err := s.results.InsertResult(ctx, marker); err != nil {
			logger.Warn().Err(err).Str("session", sess.ID).Msg("settle: daily marker")
		}
		return
	}
	res := daily.Result{
		ProfileID:      sess.ProfileIDs[0],
		Date:           sess.DailyKey,
		Tier:           sess.Tier,
		Seed:           sess.Seed,
		WordsSpelled:   sess.WordsSpelled,
		BunniesRescued: sess.BunniesRescued,
		ElapsedMs:      sess.CompletedAt.Sub(sess.SessionStart).Milliseconds(),
	}
	if err := s.results.InsertResult(ctx, res); err != nil {
		logger.Warn().Err(err).Str("session", sess.ID).Msg("settle: daily result")
	}
	logger.Info().Str("session", sess.ID).Int("bunnies", sess.BunniesRescued).Msg("session completed")
}
