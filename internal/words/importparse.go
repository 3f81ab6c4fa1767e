// internal/words/importparse.go
//
// Parsing and validation of pasted word lists (custom words).

package words

import (
	"regexp"
	"strings"
)

var (
	validWord = regexp.MustCompile(`^[A-Z]{1,20}$`)
	splitter  = regexp.MustCompile(`[\n,]+`)
)

// ImportResult partitions parsed entries. Every entry is uppercased.
type ImportResult struct {
	Valid      []string `json:"valid"`
	Invalid    []string `json:"invalid"`
	Duplicates []string `json:"duplicates"`
}

// ParseImport splits input on commas and newlines, trims and uppercases
// each entry, drops empty ones, and sorts the rest into valid, invalid and
// duplicate (case-insensitive repeats of an earlier valid word).
func ParseImport(input string) ImportResult {
	res := ImportResult{Valid: []string{}, Invalid: []string{}, Duplicates: []string{}}
	seen := make(map[string]struct{})
	for _, part := range splitter.Split(input, -1) {
		w := strings.ToUpper(strings.TrimSpace(part))
		if w == "" {
			continue
		}
		if !validWord.MatchString(w) {
			res.Invalid = append(res.Invalid, w)
			continue
		}
		if _, dup := seen[w]; dup {
			res.Duplicates = append(res.Duplicates, w)
			continue
		}
		seen[w] = struct{}{}
		res.Valid = append(res.Valid, w)
	}
	return res
}

// ValidateWord reports whether w is 1–20 letters A–Z, ignoring case.
func ValidateWord(w string) bool {
	return validWord.MatchString(strings.ToUpper(w))
}
