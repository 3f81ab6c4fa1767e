// internal/profile/profile.go
//
// Child profiles: who is playing, their grade, lifetime stats, custom words
// and per-word performance.
//
// A profile belongs to one account. The game core never touches profiles;
// the HTTP layer reads them to start sessions and writes results back when
// a session ends.

package profile

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/performance"
	"github.com/robalobadob/bunny-rescue/internal/words"
)

// dateLayout is the calendar-day key used for daily streaks.
const dateLayout = "2006-01-02"

const maxNicknameLen = 32

var (
	ErrNickname = errors.New("profile: nickname must be 1-32 characters")
	ErrGrade    = errors.New("profile: unknown grade")
	ErrTier     = errors.New("profile: unknown difficulty tier")
)

// Stats are lifetime counters.
type Stats struct {
	GamesPlayed    int     `json:"totalGamesPlayed"`
	BunniesRescued int     `json:"totalBunniesRescued"`
	WordsSpelled   int     `json:"totalWordsSpelled"`
	CurrentStreak  int     `json:"currentStreak"`
	BestStreak     int     `json:"bestStreak"`
	Accuracy       float64 `json:"accuracy"`
}

// Profile is one player.
type Profile struct {
	ID              string                                 `json:"id"`
	AccountID       string                                 `json:"accountId"`
	Nickname        string                                 `json:"nickname"`
	Grade           difficulty.Grade                       `json:"defaultGrade"`
	PreferredTier   difficulty.Tier                        `json:"preferredDifficulty,omitempty"`
	CreatedAt       time.Time                              `json:"createdAt"`
	Stats           Stats                                  `json:"stats"`
	CustomWords     []string                               `json:"customWords"`
	WordPerformance map[string]performance.WordPerformance `json:"wordPerformance"`
	DailyStreak     int                                    `json:"dailyStreak"`
	LastPlayedDate  string                                 `json:"lastPlayedDate"`
}

// New validates the inputs and returns a fresh profile.
func New(accountID, nickname string, grade difficulty.Grade, tier difficulty.Tier, now time.Time) (*Profile, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || len(nickname) > maxNicknameLen {
		return nil, ErrNickname
	}
	if !grade.Valid() {
		return nil, ErrGrade
	}
	if tier != "" && !tier.Valid() {
		return nil, ErrTier
	}
	return &Profile{
		ID:              uuid.NewString(),
		AccountID:       accountID,
		Nickname:        nickname,
		Grade:           grade,
		PreferredTier:   tier,
		CreatedAt:       now.UTC(),
		CustomWords:     []string{},
		WordPerformance: map[string]performance.WordPerformance{},
	}, nil
}

// Tier is the preferred tier, or the one the grade maps to.
func (p *Profile) Tier() difficulty.Tier {
	if p.PreferredTier != "" {
		return p.PreferredTier
	}
	return difficulty.ForGrade(p.Grade)
}

// UpdateStats folds one finished game into the lifetime stats. accuracy is
// the game's accuracy percentage; streakEnded breaks the game streak.
func (p *Profile) UpdateStats(bunniesRescued, wordsSpelled int, accuracy float64, streakEnded bool) {
	prevWords := p.Stats.WordsSpelled

	p.Stats.GamesPlayed++
	p.Stats.BunniesRescued += bunniesRescued
	p.Stats.WordsSpelled += wordsSpelled

	if streakEnded {
		p.Stats.CurrentStreak = 0
	} else {
		p.Stats.CurrentStreak++
	}
	p.Stats.BestStreak = max(p.Stats.BestStreak, p.Stats.CurrentStreak)

	// accuracy is weighted by words spelled
	switch total := prevWords + wordsSpelled; {
	case prevWords == 0:
		p.Stats.Accuracy = accuracy
	case total > 0:
		p.Stats.Accuracy = (p.Stats.Accuracy*float64(prevWords) + accuracy*float64(wordsSpelled)) / float64(total)
	}
}

// UpdateDailyStreak records play on now's calendar day (UTC). Playing on
// consecutive days grows the streak; a gap restarts it at 1.
func (p *Profile) UpdateDailyStreak(now time.Time) {
	today := now.UTC().Format(dateLayout)
	if p.LastPlayedDate == today {
		return
	}
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dateLayout)
	if p.LastPlayedDate == yesterday {
		p.DailyStreak++
	} else {
		p.DailyStreak = 1
	}
	p.LastPlayedDate = today
}

// AddCustomWords appends valid words not already present and returns the
// ones that were added, uppercased.
func (p *Profile) AddCustomWords(list []string) []string {
	added := []string{}
	for _, w := range list {
		w = strings.ToUpper(strings.TrimSpace(w))
		if !words.ValidateWord(w) || slices.Contains(p.CustomWords, w) {
			continue
		}
		p.CustomWords = append(p.CustomWords, w)
		added = append(added, w)
	}
	return added
}

// MergePerformance replaces the stored performance with the tracker's view.
func (p *Profile) MergePerformance(perf map[string]performance.WordPerformance) {
	if p.WordPerformance == nil {
		p.WordPerformance = make(map[string]performance.WordPerformance, len(perf))
	}
	for k, v := range perf {
		p.WordPerformance[k] = v
	}
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.CustomWords = slices.Clone(p.CustomWords)
	cp.WordPerformance = maps.Clone(p.WordPerformance)
	return &cp
}

// WordList is the grade starter list plus the profile's custom words.
func (p *Profile) WordList() []string {
	return words.ForGrade(p.Grade, p.CustomWords)
}
