package words

import (
	"slices"
	"testing"

	"github.com/robalobadob/bunny-rescue/internal/review"
	"github.com/robalobadob/bunny-rescue/internal/rng"
)

func TestSelectorCyclesWholeList(t *testing.T) {
	list := []string{"cat", "dog", "sun", "hat", "CAT"}
	s := NewSelector(list, rng.New(7))
	if s.Len() != 4 {
		t.Fatalf("Len = %d, want 4", s.Len())
	}

	// two full passes, each a permutation of the list
	for pass := 0; pass < 2; pass++ {
		var got []string
		for i := 0; i < 4; i++ {
			got = append(got, s.Next(1, nil))
		}
		slices.Sort(got)
		if want := []string{"CAT", "DOG", "HAT", "SUN"}; !slices.Equal(got, want) {
			t.Errorf("pass %d = %v, want %v", pass, got, want)
		}
	}
}

func TestSelectorIsDeterministic(t *testing.T) {
	a := NewSelector([]string{"a", "b", "c", "d", "e"}, rng.New(11))
	b := NewSelector([]string{"a", "b", "c", "d", "e"}, rng.New(11))
	for i := 0; i < 12; i++ {
		if x, y := a.Next(i+1, nil), b.Next(i+1, nil); x != y {
			t.Fatalf("draw %d: %q != %q", i, x, y)
		}
	}
}

func TestSelectorReviewCadence(t *testing.T) {
	basket := review.New(rng.New(3), "moon")
	s := NewSelector([]string{"cat", "dog"}, rng.New(5))

	tests := []struct {
		turn       int
		wantReview bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{3, true},
		{4, false},
		{6, true},
		{9, true},
	}
	for _, tt := range tests {
		got := s.Next(tt.turn, basket)
		if isReview := got == "MOON"; isReview != tt.wantReview {
			t.Errorf("turn %d: got %q, review=%v want %v", tt.turn, got, isReview, tt.wantReview)
		}
	}

	basket.Clear()
	if got := s.Next(3, basket); got == "MOON" {
		t.Error("empty basket still produced a review word")
	}
}

func TestSelectorReviewDoesNotAdvancePermutation(t *testing.T) {
	basket := review.New(nil, "moon")
	withReview := NewSelector([]string{"a", "b", "c"}, rng.New(9))
	plain := NewSelector([]string{"a", "b", "c"}, rng.New(9))

	withReview.Next(3, basket)
	for i := 0; i < 3; i++ {
		if x, y := withReview.Next(1, nil), plain.Next(1, nil); x != y {
			t.Fatalf("draw %d: %q != %q", i, x, y)
		}
	}
}

func TestSelectorAddWords(t *testing.T) {
	s := NewSelector([]string{"cat"}, rng.New(1))
	s.Next(1, nil)
	s.AddWords([]string{"Cat", "dog", " ", "frog"})
	if got := s.Words(); !slices.Equal(got, []string{"CAT", "DOG", "FROG"}) {
		t.Fatalf("Words = %v", got)
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[s.Next(1, nil)] = true
	}
	if len(seen) != 3 {
		t.Errorf("cursor not reset after AddWords: %v", seen)
	}
}

func TestSelectorDeprioritize(t *testing.T) {
	mastered := map[string]bool{"CAT": true, "DOG": true}
	s := NewSelector([]string{"cat", "dog", "sun", "hat", "map"}, rng.New(21))
	s.Deprioritize(func(w string) bool { return mastered[w] })

	for i := 0; i < 3; i++ {
		if w := s.Next(1, nil); mastered[w] {
			t.Fatalf("draw %d returned mastered word %q before fresh ones", i, w)
		}
	}
	for i := 0; i < 2; i++ {
		if w := s.Next(1, nil); !mastered[w] {
			t.Fatalf("draw %d = %q, want a mastered word", i+3, w)
		}
	}
}

func TestSelectorEmpty(t *testing.T) {
	s := NewSelector(nil, rng.New(1))
	if got := s.Next(1, nil); got != "" {
		t.Errorf("Next on empty list = %q", got)
	}
	basket := review.New(nil, "sun")
	if got := s.Next(3, basket); got != "SUN" {
		t.Errorf("review word on empty list = %q", got)
	}
}
