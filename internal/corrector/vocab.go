package corrector

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/vintr-dev/tapscore/internal/layout"
	"github.com/vintr-dev/tapscore/internal/noise"
)

const maxCandidates = 3

// Vocab is a frequency-ranked vocabulary baseline. It corrects by edit
// distance against the vocabulary, completes by prefix, predicts the most
// frequent words, and resolves swipes from the gesture endpoints. It exists
// so an evaluation can run without an external corrector attached.
type Vocab struct {
	Base
	words  []string
	rank   map[string]int
	layout *layout.Helper
}

// NewVocab builds a baseline corrector from a frequency-ordered word list.
// Duplicate words keep their first (best) rank.
func NewVocab(words []string, helper *layout.Helper) *Vocab {
	v := &Vocab{
		rank:   make(map[string]int, len(words)),
		layout: helper,
	}
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, ok := v.rank[word]; ok {
			continue
		}
		v.rank[word] = len(v.words)
		v.words = append(v.words, word)
	}
	return v
}

// LoadWords reads one word per line from the provided file path, best rank
// first.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// AutoCorrect returns the typed word when it is in the vocabulary, followed
// by vocabulary words within edit distance 1, best rank first.
func (v *Vocab) AutoCorrect(_ context.Context, _ string, _ []*noise.Keystroke, typedWord string) ([]string, error) {
	typed := strings.ToLower(typedWord)
	var candidates []string
	if _, ok := v.rank[typed]; ok {
		candidates = append(candidates, typed)
	}
	for _, word := range v.words {
		if len(candidates) >= maxCandidates {
			break
		}
		if word == typed {
			continue
		}
		if withinEditDistance1(typed, word) {
			candidates = append(candidates, word)
		}
	}
	return candidates, nil
}

// AutoComplete returns vocabulary words starting with the partial word, best
// rank first.
func (v *Vocab) AutoComplete(_ context.Context, _ string, _ []*noise.Keystroke, partialWord string) ([]string, error) {
	prefix := strings.ToLower(partialWord)
	if prefix == "" {
		return nil, nil
	}
	var candidates []string
	for _, word := range v.words {
		if len(candidates) >= maxCandidates {
			break
		}
		if strings.HasPrefix(word, prefix) {
			candidates = append(candidates, word)
		}
	}
	return candidates, nil
}

// PredictNextWord returns the most frequent vocabulary words. The baseline
// carries no language model, so the context is ignored.
func (v *Vocab) PredictNextWord(_ context.Context, _ string) ([]string, error) {
	n := maxCandidates
	if n > len(v.words) {
		n = len(v.words)
	}
	return append([]string(nil), v.words[:n]...), nil
}

// ResolveSwipe maps the gesture endpoints back to keys and returns
// vocabulary words with that first and last letter, best rank first.
func (v *Vocab) ResolveSwipe(_ context.Context, _ string, gesture []noise.Keystroke) ([]string, error) {
	if v.layout == nil || len(gesture) < 2 {
		return nil, nil
	}
	first := v.layout.KeyAt(gesture[0].X, gesture[0].Y, 0)
	last := v.layout.KeyAt(gesture[len(gesture)-1].X, gesture[len(gesture)-1].Y, 0)
	var candidates []string
	for _, word := range v.words {
		if len(candidates) >= maxCandidates {
			break
		}
		runes := []rune(word)
		if len(runes) < 2 {
			continue
		}
		if runes[0] == first && runes[len(runes)-1] == last {
			candidates = append(candidates, word)
		}
	}
	return candidates, nil
}

// withinEditDistance1 reports whether b can be reached from a with at most
// one insertion, deletion, or substitution.
func withinEditDistance1(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(rb)-len(ra) > 1 {
		return false
	}
	i, j, edits := 0, 0, 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(ra) == len(rb) {
			i++
		}
		j++
	}
	edits += len(rb) - j + len(ra) - i
	return edits <= 1
}
