package noise

import (
	"math"
	"math/rand"
	"strings"
	"testing"
)

func newTestModel(t *testing.T, probs map[Typo]float64) *Model {
	t.Helper()
	m, err := New("en-US",
		WithCommonTypos(map[string][]string{"wave": {"waze"}}),
		WithProbabilities(probs),
		WithGaussian(0, 0, math.Inf(1), math.Inf(1)),
	)
	if err != nil {
		t.Fatalf("failed to build noise model: %v", err)
	}
	return m
}

func probsWith(typo Typo, p float64) map[Typo]float64 {
	probs := make(map[Typo]float64, len(AllTypos))
	for _, t := range AllTypos {
		probs[t] = 0
	}
	probs[typo] = p
	return probs
}

func TestDeleteChar(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "abcd", false)

	if strings.ContainsAny(noisy, "bc") {
		t.Fatalf("middle characters should always be deleted, got %q", noisy)
	}
	if !strings.HasSuffix(noisy, "d") {
		t.Fatalf("last character should never be deleted, got %q", noisy)
	}
	for _, typo := range applied {
		if typo != DeleteChar {
			t.Fatalf("unexpected typo %s", typo)
		}
	}
}

func TestAddChar(t *testing.T) {
	m := newTestModel(t, probsWith(AddChar, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "hi", false)

	if noisy != "hhii" {
		t.Fatalf("expected every character doubled, got %q", noisy)
	}
	if len(applied) != 2 || applied[0] != AddChar || applied[1] != AddChar {
		t.Fatalf("expected two ADD_CHAR typos, got %v", applied)
	}
}

func TestTransposeChar(t *testing.T) {
	m := newTestModel(t, probsWith(TransposeChar, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "hi", false)
	if noisy != "ih" {
		t.Fatalf("expected transposition, got %q", noisy)
	}
	if len(applied) != 1 || applied[0] != TransposeChar {
		t.Fatalf("expected a single TRANSPOSE_CHAR typo, got %v", applied)
	}
}

func TestTransposeAcrossLayersDoesNothing(t *testing.T) {
	m := newTestModel(t, probsWith(TransposeChar, 1))
	rng := rand.New(rand.NewSource(11))

	// H and i live on different layers, so they can't be swapped.
	noisy, applied := m.introduceTypos(rng, "Hi", false)
	if noisy != "Hi" {
		t.Fatalf("expected word untouched, got %q", noisy)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no typos, got %v", applied)
	}
}

func TestTransposedCharIsNotEditedAgain(t *testing.T) {
	probs := probsWith(TransposeChar, 1)
	probs[AddChar] = 0 // explicit: nothing else may fire
	m := newTestModel(t, probs)
	rng := rand.New(rand.NewSource(3))

	noisy, applied := m.introduceTypos(rng, "abcd", false)

	if len(noisy) != 4 {
		t.Fatalf("transpositions preserve length, got %q", noisy)
	}
	// ab swaps, then (pushed a is skipped) cd swaps.
	if noisy != "badc" {
		t.Fatalf("expected pairwise swaps, got %q", noisy)
	}
	if len(applied) != 2 {
		t.Fatalf("expected two transpositions, got %v", applied)
	}
}

func TestCommonTypo(t *testing.T) {
	m := newTestModel(t, probsWith(CommonTypo, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "wave", false)
	if noisy != "waze" {
		t.Fatalf("expected the common misspelling, got %q", noisy)
	}
	if len(applied) != 1 || applied[0] != CommonTypo {
		t.Fatalf("expected a single COMMON_TYPO, got %v", applied)
	}

	// Words outside the table pass through.
	noisy, applied = m.introduceTypos(rng, "hello", false)
	if noisy != "hello" || len(applied) != 0 {
		t.Fatalf("expected word untouched, got %q %v", noisy, applied)
	}
}

func TestSimplifyCase(t *testing.T) {
	m := newTestModel(t, probsWith(SimplifyCase, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "Hi", false)
	if noisy != "hi" {
		t.Fatalf("expected lowercased word, got %q", noisy)
	}
	if len(applied) != 1 || applied[0] != SimplifyCase {
		t.Fatalf("expected a single SIMPLIFY_CASE, got %v", applied)
	}
}

func TestSimplifyCaseSkipsFullUppercase(t *testing.T) {
	m := newTestModel(t, probsWith(SimplifyCase, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "NASA", false)
	if noisy != "NASA" || len(applied) != 0 {
		t.Fatalf("acronyms should keep their case, got %q %v", noisy, applied)
	}
}

func TestSimplifyCaseSkipsSingleChar(t *testing.T) {
	m := newTestModel(t, probsWith(SimplifyCase, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "I", false)
	if noisy != "I" || len(applied) != 0 {
		t.Fatalf("single characters should keep their case, got %q %v", noisy, applied)
	}
}

func TestSimplifyAccent(t *testing.T) {
	m := newTestModel(t, probsWith(SimplifyAccent, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "café", false)
	if noisy != "cafe" {
		t.Fatalf("expected accent stripped, got %q", noisy)
	}
	if len(applied) != 1 || applied[0] != SimplifyAccent {
		t.Fatalf("expected a single SIMPLIFY_ACCENT, got %v", applied)
	}
}

func TestNumbersAreNeverEdited(t *testing.T) {
	probs := probsWith(DeleteChar, 1)
	probs[AddChar] = 0
	m := newTestModel(t, probs)
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "a1b2c", false)
	if strings.ContainsRune(noisy, 'b') {
		t.Fatalf("expected b deleted, got %q", noisy)
	}
	if !strings.Contains(noisy, "1") || !strings.Contains(noisy, "2") {
		t.Fatalf("numerals must survive, got %q", noisy)
	}
	if !strings.HasSuffix(noisy, "c") {
		t.Fatalf("last character must survive, got %q", noisy)
	}
	for _, typo := range applied {
		if typo != DeleteChar {
			t.Fatalf("unexpected typo %s", typo)
		}
	}
}

func TestErrorFreeTypingIsExact(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 1))
	rng := rand.New(rand.NewSource(11))

	noisy, applied := m.introduceTypos(rng, "hello", true)
	if noisy != "hello" || len(applied) != 0 {
		t.Fatalf("error-free typing must not alter the word, got %q %v", noisy, applied)
	}
}

func TestFuzzyTypeZeroVariance(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	keystrokes, typed, applied := m.fuzzyType(rng, "hello", false)
	if typed != "hello" {
		t.Fatalf("zero-variance taps must resolve exactly, got %q", typed)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no substitutions, got %v", applied)
	}
	if len(keystrokes) != 5 {
		t.Fatalf("expected one keystroke per character, got %d", len(keystrokes))
	}
	for i, k := range keystrokes {
		if k == nil {
			t.Fatalf("keystroke %d should not be nil", i)
		}
	}
}

func TestFuzzyTypeUnknownCharPassesThrough(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	keystrokes, typed, _ := m.fuzzyType(rng, "a☂b", false)
	if typed != "a☂b" {
		t.Fatalf("off-keyboard characters pass through, got %q", typed)
	}
	if keystrokes[1] != nil {
		t.Fatalf("off-keyboard characters must not produce a keystroke")
	}
}

func TestFuzzyTypeNonDefaultLayerHasNoKeystroke(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	keystrokes, typed, _ := m.fuzzyType(rng, "Hi", false)
	if typed != "Hi" {
		t.Fatalf("expected exact typing, got %q", typed)
	}
	if keystrokes[0] != nil {
		t.Fatalf("uppercase characters must not record a keystroke")
	}
	if keystrokes[1] == nil {
		t.Fatalf("default-layer characters must record a keystroke")
	}
}

func TestTypeTillSpaceCleanStop(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	keystrokes, typed, consumed, applied := m.TypeTillSpace(rng, []string{"hello", "world"})
	if typed != "hello" {
		t.Fatalf("the clean separating space must not be emitted, got %q", typed)
	}
	if consumed != 1 {
		t.Fatalf("expected a single word consumed, got %d", consumed)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no typos, got %v", applied)
	}
	if len(keystrokes) != 5 {
		t.Fatalf("expected 5 keystrokes, got %d", len(keystrokes))
	}
}

func TestTypeTillSpaceNoisySpaceContinues(t *testing.T) {
	m := newTestModel(t, probsWith(AddSpace, 1))
	rng := rand.New(rand.NewSource(11))

	_, typed, consumed, applied := m.TypeTillSpace(rng, []string{"hello", "world"})
	if typed != "hello  world  " {
		t.Fatalf("a noisy space must be emitted and typing continued, got %q", typed)
	}
	if consumed != 2 {
		t.Fatalf("expected both words consumed, got %d", consumed)
	}
	if len(applied) != 2 || applied[0] != AddSpace || applied[1] != AddSpace {
		t.Fatalf("expected two ADD_SPACE typos, got %v", applied)
	}
}

func TestTypeTillSpaceNumbersTypedVerbatim(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 1))
	rng := rand.New(rand.NewSource(11))

	_, typed, consumed, _ := m.TypeTillSpace(rng, []string{"2024", "x"})
	if typed != "2024" {
		t.Fatalf("non-correctable words must be typed verbatim, got %q", typed)
	}
	if consumed != 1 {
		t.Fatalf("expected a single word consumed, got %d", consumed)
	}
}

func TestTypeTillSpaceDeterminism(t *testing.T) {
	words := []string{"the", "quick", "brown", "fox"}
	m, err := New("en-US", WithCommonTypos(map[string][]string{}))
	if err != nil {
		t.Fatalf("failed to build noise model: %v", err)
	}

	_, typedA, consumedA, typosA := m.TypeTillSpace(rand.New(rand.NewSource(42)), words)
	_, typedB, consumedB, typosB := m.TypeTillSpace(rand.New(rand.NewSource(42)), words)

	if typedA != typedB || consumedA != consumedB || len(typosA) != len(typosB) {
		t.Fatalf("same seed must reproduce the same stream: %q/%d vs %q/%d", typedA, consumedA, typedB, consumedB)
	}
}

func TestSwipe(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	gesture := m.Swipe(rng, "hello")
	if len(gesture) < 2 {
		t.Fatalf("expected a gesture path, got %d points", len(gesture))
	}
}

func TestSwipeRejectsNonCorrectable(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	if g := m.Swipe(rng, "1234"); g != nil {
		t.Fatalf("numbers can't be swiped, got %d points", len(g))
	}
}

func TestSwipeRejectsSingleKeystroke(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	if g := m.Swipe(rng, "a"); g != nil {
		t.Fatalf("single-key words can't be swiped, got %d points", len(g))
	}
}

func TestSwipeRejectsNonDefaultLayerChars(t *testing.T) {
	m := newTestModel(t, probsWith(DeleteChar, 0))
	rng := rand.New(rand.NewSource(11))

	if g := m.Swipe(rng, "Hi"); g != nil {
		t.Fatalf("words needing layer switches can't be swiped, got %d points", len(g))
	}
}

func TestIsCorrectable(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"hello", true},
		{"Hi", true},
		{"don't", true},
		{"1234", false},
		{"!?", false},
		{" ", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := isCorrectable(tt.word); got != tt.want {
			t.Fatalf("isCorrectable(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestStripAccentRune(t *testing.T) {
	tests := []struct {
		in   rune
		want rune
	}{
		{'é', 'e'},
		{'ü', 'u'},
		{'ñ', 'n'},
		{'a', 'a'},
	}
	for _, tt := range tests {
		if got := stripAccentRune(tt.in); got != tt.want {
			t.Fatalf("stripAccentRune(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
