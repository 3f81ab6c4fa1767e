// internal/words/words.go
//
// Grade word lists for the selector.
//
// Responsibilities:
//   - Load one starter list per grade from WORDS_DIR or the embedded assets.
//   - Merge a profile's custom words into its grade list.
//   - Build the shared per-tier list used by the daily challenge.
//
// Initialization behavior (Init):
//  1. If WORDS_DIR is set, each grade is read from <WORDS_DIR>/<grade>.txt
//     (one word per line, '#' comments allowed); missing files fall back
//     to the embedded list for that grade.
//  2. Otherwise the embedded lists in assets/words are used.
//
// Constraints:
//   - Words must satisfy ValidateWord (1–20 letters A–Z).
//   - Lists are normalized to uppercase and de-duplicated.
//   - Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robalobadob/bunny-rescue/assets"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
)

var (
	initOnce   sync.Once
	gradeLists map[difficulty.Grade][]string
	initialErr error
)

// Init loads every grade list exactly once.
// Returns an error if any grade ends up with no words.
func Init() error {
	initOnce.Do(func() {
		gradeLists = make(map[difficulty.Grade][]string, len(difficulty.Grades))
		dir := os.Getenv("WORDS_DIR")
		for _, g := range difficulty.Grades {
			list, err := loadGrade(dir, g)
			if err != nil {
				initialErr = err
				return
			}
			if len(list) == 0 {
				initialErr = fmt.Errorf("words: list for grade %s is empty", g)
				return
			}
			gradeLists[g] = list
		}
	})
	return initialErr
}

func loadGrade(dir string, g difficulty.Grade) ([]string, error) {
	if dir != "" {
		list, err := readWordFile(filepath.Join(dir, string(g)+".txt"))
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("words: grade %s: %w", g, err)
		}
	}
	list, err := assets.GradeList(string(g))
	if err != nil {
		return nil, fmt.Errorf("words: embedded grade %s: %w", g, err)
	}
	return normalize(list), nil
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return normalize(out), nil
}

// normalize uppercases, keeps valid words and drops duplicates, in order.
func normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToUpper(strings.TrimSpace(w))
		if !ValidateWord(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// ForGrade returns the grade's starter list followed by the custom words.
// Unknown grades get the grade 1 list. Init must have succeeded.
func ForGrade(g difficulty.Grade, custom []string) []string {
	base, ok := gradeLists[g]
	if !ok {
		base = gradeLists[difficulty.Grade1]
	}
	merged := make([]string, 0, len(base)+len(custom))
	merged = append(merged, base...)
	merged = append(merged, custom...)
	return normalize(merged)
}

// ForTier returns the starter lists of every grade the tier covers, with
// no custom words. Every player of a tier gets the same list, which the
// daily challenge relies on.
func ForTier(t difficulty.Tier) []string {
	cfg, ok := difficulty.For(t)
	if !ok || len(cfg.Grades) == 0 {
		return ForGrade(difficulty.Grade1, nil)
	}
	var merged []string
	for _, g := range cfg.Grades {
		merged = append(merged, gradeLists[g]...)
	}
	return normalize(merged)
}

// Stats returns the number of words loaded per grade.
func Stats() map[difficulty.Grade]int {
	out := make(map[difficulty.Grade]int, len(gradeLists))
	for g, l := range gradeLists {
		out[g] = len(l)
	}
	return out
}
