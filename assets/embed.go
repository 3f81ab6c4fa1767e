// Package assets embeds the starter word lists, one file per grade
// (words/PreK.txt, words/K.txt, words/1.txt … words/8.txt).
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed words/*.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

// GradeList returns the embedded starter words for a grade key
// ("PreK", "K", "1" … "8"), uppercased.
func GradeList(grade string) ([]string, error) {
	return readLines("words/" + grade + ".txt")
}
