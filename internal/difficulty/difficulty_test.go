package difficulty

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestForGrade(t *testing.T) {
	tests := []struct {
		grade Grade
		want  Tier
	}{
		{GradePreK, Sprout},
		{GradeK, Sprout},
		{Grade1, Explorer},
		{Grade2, Explorer},
		{Grade3, Ranger},
		{Grade5, Ranger},
		{Grade6, Guardian},
		{Grade8, Guardian},
		{Grade("12"), Explorer},
	}
	for _, tt := range tests {
		t.Run(string(tt.grade), func(t *testing.T) {
			if got := ForGrade(tt.grade); got != tt.want {
				t.Errorf("ForGrade(%q) = %s, want %s", tt.grade, got, tt.want)
			}
		})
	}
}

func TestDefaultsValid(t *testing.T) {
	for _, c := range All() {
		if err := c.Validate(); err != nil {
			t.Errorf("%s: %v", c.Tier, err)
		}
	}
	if len(All()) != len(Tiers) {
		t.Fatalf("All() returned %d configs", len(All()))
	}
}

func TestTierShape(t *testing.T) {
	g := MustFor(Guardian)
	if g.GridSize != 7 || g.FocusBudget != 2 {
		t.Errorf("Guardian = %+v", g)
	}
	if g.Consequences.OnIncorrectLetter != LockTile {
		t.Error("Guardian must lock tiles on wrong letters")
	}
	if !g.Timed() || !g.MultiWord() {
		t.Error("Guardian should be timed and multi-word")
	}

	s := MustFor(Sprout)
	if !s.GentleMode || s.MultiWord() || s.Timed() {
		t.Errorf("Sprout = %+v", s)
	}
}

func TestForReturnsCopy(t *testing.T) {
	c := MustFor(Sprout)
	c.Grades[0] = Grade8
	if MustFor(Sprout).Grades[0] != GradePreK {
		t.Error("For leaked the table's grade slice")
	}
}

func TestUnknownTier(t *testing.T) {
	if _, ok := For("Wizard"); ok {
		t.Error("For(Wizard) reported ok")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustFor(Wizard) did not panic")
		}
	}()
	MustFor("Wizard")
}

func TestPolicyText(t *testing.T) {
	b, err := json.Marshal(MustFor(Guardian).Consequences)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"onFocusZero":"endTurnLoseMultiplier","onIncorrectSubmit":"blockProgress","onIncorrectLetter":"lockTile"}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	var c Consequences
	if err := json.Unmarshal([]byte(`{"onFocusZero":"endTurnDisableHint","onIncorrectSubmit":"requireRetry","onIncorrectLetter":"none"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.OnFocusZero != EndTurnDisableHint || c.OnIncorrectSubmit != RequireRetry || c.OnIncorrectLetter != NoLetterPenalty {
		t.Errorf("decoded %+v", c)
	}

	if err := json.Unmarshal([]byte(`{"onFocusZero":"explode"}`), &c); err == nil {
		t.Error("unknown policy decoded without error")
	}
}

const overrideYAML = `
tiers:
  - tier: Sprout
    grades: ["PreK", "K", "1"]
    gridSize: 4
    focusBudget: 5
    gentleMode: true
    wordsPerRound: 1
    maxStrikes: 3
    consequences:
      onFocusZero: endTurn
      onIncorrectSubmit: addToReview
  - tier: Explorer
    grades: ["2"]
    gridSize: 5
    focusBudget: 3
    wordsPerRound: 2
    maxStrikes: 2
    timerDuration: 45s
    consequences:
      onFocusZero: endTurnResetStreak
      onIncorrectSubmit: immediateReset
  - tier: Ranger
    grades: ["3", "4", "5"]
    gridSize: 6
    focusBudget: 3
    wordsPerRound: 3
    maxStrikes: 3
    shuffleInterval: 15s
    consequences:
      onFocusZero: endTurnDisableHint
      onIncorrectSubmit: requireRetry
  - tier: Guardian
    grades: ["6", "7", "8"]
    gridSize: 7
    focusBudget: 2
    wordsPerRound: 4
    maxStrikes: 3
    consequences:
      onFocusZero: endTurnLoseMultiplier
      onIncorrectSubmit: blockProgress
      onIncorrectLetter: lockTile
`

func TestLoadFile(t *testing.T) {
	defer Restore()

	path := filepath.Join(t.TempDir(), "difficulty.yaml")
	if err := os.WriteFile(path, []byte(overrideYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got := ForGrade(Grade1); got != Sprout {
		t.Errorf("ForGrade(1) after override = %s", got)
	}
	e := MustFor(Explorer)
	if e.TimerDuration != 45*time.Second || e.WordsPerRound != 2 {
		t.Errorf("Explorer after override = %+v", e)
	}
	if MustFor(Ranger).ShuffleInterval != 15*time.Second {
		t.Error("Ranger shuffle interval not loaded")
	}

	Restore()
	if MustFor(Sprout).FocusBudget != 999 {
		t.Error("Restore did not bring back defaults")
	}
}

func TestOverrideRejects(t *testing.T) {
	defer Restore()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "empty", yaml: "tiers: []", want: "no tiers"},
		{name: "missing tiers", yaml: "tiers:\n  - tier: Sprout\n    gridSize: 4\n    focusBudget: 1\n    wordsPerRound: 1\n    maxStrikes: 1\n", want: "missing"},
		{name: "bad grid", yaml: "tiers:\n  - tier: Sprout\n    gridSize: 0\n", want: "gridSize"},
		{name: "unknown tier", yaml: "tiers:\n  - tier: Wizard\n", want: "unknown tier"},
		{name: "bad policy", yaml: "tiers:\n  - tier: Sprout\n    consequences:\n      onFocusZero: nap\n", want: "unknown policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configs, err := Parse([]byte(tt.yaml))
			if err == nil {
				err = Override(configs)
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
	if MustFor(Sprout).GridSize != 4 {
		t.Error("a rejected override changed the table")
	}
}
