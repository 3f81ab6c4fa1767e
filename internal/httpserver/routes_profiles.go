// internal/httpserver/routes_profiles.go
//
// Child profiles owned by the signed-in account.
//   - POST   /profiles                 create
//   - GET    /profiles                 list (oldest first)
//   - GET    /profiles/{id}            one profile
//   - DELETE /profiles/{id}            delete with its sessions
//   - POST   /profiles/{id}/words      import custom words
//   - GET    /profiles/{id}/sessions   recent sessions

package httpserver

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/game"
	"github.com/robalobadob/bunny-rescue/internal/profile"
	"github.com/robalobadob/bunny-rescue/internal/words"
)

const defaultSessionList = 20

func (s *Server) mountProfiles(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", s.handleCreateProfile)
		r.Get("/", s.handleListProfiles)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Delete("/", s.handleDeleteProfile)
			r.Post("/words", s.handleImportWords)
			r.Get("/sessions", s.handleProfileSessions)
		})
	})
}

// ownedProfile loads a profile and checks it belongs to the caller.
func (s *Server) ownedProfile(ctx context.Context, me *authUser, id string) (*profile.Profile, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AccountID != me.ID {
		return nil, errForbidden
	}
	return p, nil
}

type createProfileReq struct {
	Nickname      string           `json:"nickname"`
	Grade         difficulty.Grade `json:"grade"`
	PreferredTier difficulty.Tier  `json:"preferredDifficulty"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := profile.New(currentUser(r).ID, req.Nickname, req.Grade, req.PreferredTier, s.now())
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.store.SaveProfile(r.Context(), p); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListProfiles(r.Context(), currentUser(r).ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.ownedProfile(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.ownedProfile(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.store.DeleteProfile(r.Context(), p.ID); err != nil {
		fail(w, r, err)
		return
	}
	s.live.dropProfile(p.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type importWordsReq struct {
	Text string `json:"text"`
}

type importWordsRes struct {
	Added      []string `json:"added"`
	Invalid    []string `json:"invalid"`
	Duplicates []string `json:"duplicates"`
	Total      int      `json:"totalCustomWords"`
}

// handleImportWords parses free text (newline or comma separated) and adds
// the valid words to the profile. Words already on the profile count as
// duplicates.
func (s *Server) handleImportWords(w http.ResponseWriter, r *http.Request) {
	var req importWordsReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := s.ownedProfile(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	parsed := words.ParseImport(req.Text)
	res := importWordsRes{Invalid: parsed.Invalid, Duplicates: parsed.Duplicates}
	res.Added = p.AddCustomWords(parsed.Valid)
	for _, v := range parsed.Valid {
		if !slices.Contains(res.Added, v) {
			res.Duplicates = append(res.Duplicates, v)
		}
	}
	res.Total = len(p.CustomWords)

	if len(res.Added) > 0 {
		if err := s.store.SaveProfile(r.Context(), p); err != nil {
			fail(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// sessionSummary is the list view of a stored session.
type sessionSummary struct {
	ID             string          `json:"id"`
	Difficulty     difficulty.Tier `json:"difficulty"`
	Mode           string          `json:"mode"`
	DailyKey       string          `json:"dailyKey,omitempty"`
	BunniesRescued int             `json:"bunniesRescued"`
	TotalBunnies   int             `json:"totalBunnies"`
	WordsSpelled   int             `json:"wordsSpelled"`
	Completed      bool            `json:"completed"`
	StartedAt      time.Time       `json:"startedAt"`
}

func summarize(sess *game.Session) sessionSummary {
	return sessionSummary{
		ID:             sess.ID,
		Difficulty:     sess.Tier,
		Mode:           modeName(sess.Mode),
		DailyKey:       sess.DailyKey,
		BunniesRescued: sess.BunniesRescued,
		TotalBunnies:   sess.TotalBunnies,
		WordsSpelled:   sess.WordsSpelled,
		Completed:      sess.Completed,
		StartedAt:      sess.SessionStart,
	}
}

func (s *Server) handleProfileSessions(w http.ResponseWriter, r *http.Request) {
	p, err := s.ownedProfile(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	limit := defaultSessionList
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	list, err := s.store.ListSessions(r.Context(), p.ID, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]sessionSummary, 0, len(list))
	for _, sess := range list {
		out = append(out, summarize(sess))
	}
	writeJSON(w, http.StatusOK, out)
}
