// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
//   - POST /daily/new         → start (or resume) today's session for a profile
//   - GET  /daily/leaderboard → top results of one tier for today
//     (?difficulty=Explorer, optional ?date=YYYY-MM-DD)
//
// Every profile on a given day gets the same board seed, derived from the
// date and DAILY_SALT. Grid size and word list follow the difficulty tier,
// so each tier has its own board and its own leaderboard. A profile plays
// once per day: the session id is derived from profile and date, and a
// recorded result (or the marker left by abandoning) closes the day.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/bunny-rescue/internal/daily"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/game"
	"github.com/robalobadob/bunny-rescue/internal/store"
)

// dailyNamespace scopes the name-based UUIDs of daily sessions.
var dailyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bunny-rescue/daily"))

func dailySessionID(profileID, date string) string {
	return uuid.NewSHA1(dailyNamespace, []byte(profileID+"|"+date)).String()
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.With(s.requireAuth).Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

type dailyNewReq struct {
	ProfileID string `json:"profileId"`
}

// dailyNewRes is returned by /daily/new. Session is omitted once the day
// has been played.
type dailyNewRes struct {
	Date       string          `json:"date"`
	Difficulty difficulty.Tier `json:"difficulty"`
	Played     bool            `json:"played"`
	Session    *sessionView    `json:"session,omitempty"`
}

// handleDailyNew starts or resumes today's session.
//   - A recorded result for today → Played=true.
//   - An unfinished session for today → that session.
//   - Otherwise a new session seeded from the date.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	me := currentUser(r)
	ctx := r.Context()
	now := s.now()
	date := daily.DateKey(now)

	p, err := s.ownedProfile(ctx, me, req.ProfileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	tier := p.Tier()
	played, err := s.results.AlreadyPlayed(ctx, p.ID, date)
	if err != nil {
		fail(w, r, err)
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Difficulty: tier, Played: true})
		return
	}

	id := dailySessionID(p.ID, date)
	ls, err := s.session(ctx, me, id)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		seed := daily.SeedForKey(date, s.cfg.DailySalt)
		ls, err = s.startSession(ctx, me, []string{p.ID}, tier, game.ModeDefault, &seed, id, date)
		if err != nil {
			fail(w, r, err)
			return
		}
	default:
		fail(w, r, err)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	sess := ls.c.Session()
	if sess.Completed {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Difficulty: sess.Tier, Played: true})
		return
	}
	v := newView(sess, ls.c.Config(), now)
	writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Difficulty: sess.Tier, Session: &v})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date       string          `json:"date"`
	Difficulty difficulty.Tier `json:"difficulty"`
	Top        []daily.Result  `json:"top"`
}

// handleLeaderboard returns the leaderboard of one tier for the given date
// (default today), with nicknames filled in where the profile still exists.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	tier := difficulty.Tier(r.URL.Query().Get("difficulty"))
	if !tier.Valid() {
		writeError(w, http.StatusBadRequest, "difficulty must be Sprout, Explorer, Ranger or Guardian")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	limit := daily.DefaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	rows, err := s.results.Leaderboard(r.Context(), date, tier, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	for i := range rows {
		if p, err := s.store.GetProfile(r.Context(), rows[i].ProfileID); err == nil {
			rows[i].Nickname = p.Nickname
		}
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Difficulty: tier, Top: rows})
}
