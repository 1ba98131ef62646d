package scorer

import (
	"math"
	"sort"
)

// Count holds the basic tallies for one task bucket.
type Count struct {
	Correct  int `json:"correct"`
	Correct3 int `json:"correct_3"`
	Total    int `json:"total"`
}

// Add returns the element-wise sum of two counts.
func (c Count) Add(other Count) Count {
	return Count{
		Correct:  c.Correct + other.Correct,
		Correct3: c.Correct3 + other.Correct3,
		Total:    c.Total + other.Total,
	}
}

// Scale returns the count multiplied by a proportion, rounded to whole
// tallies.
func (c Count) Scale(proportion float64) Count {
	return Count{
		Correct:  int(math.Round(float64(c.Correct) * proportion)),
		Correct3: int(math.Round(float64(c.Correct3) * proportion)),
		Total:    int(math.Round(float64(c.Total) * proportion)),
	}
}

// Mistake records one wrong top-3 prediction. Occurrences are aggregated by
// expected word, keeping one representative prediction/context sample per
// word: the first occurrence within a scorer, replaced by the incoming
// sample whenever scorers merge.
type Mistake struct {
	Actual  string   `json:"actual"`
	Preds   []string `json:"preds"`
	Context string   `json:"context"`
	Count   int      `json:"count"`
}

type mistakeCounter struct {
	byWord map[string]*Mistake
}

func newMistakeCounter() *mistakeCounter {
	return &mistakeCounter{byWord: make(map[string]*Mistake)}
}

func (m *mistakeCounter) record(actual string, preds []string, context string) {
	if existing, ok := m.byWord[actual]; ok {
		existing.Count++
		return
	}
	kept := make([]string, len(preds))
	copy(kept, preds)
	m.byWord[actual] = &Mistake{Actual: actual, Preds: kept, Context: context, Count: 1}
}

func (m *mistakeCounter) merge(other *mistakeCounter) {
	for word, mistake := range other.byWord {
		if existing, ok := m.byWord[word]; ok {
			existing.Count += mistake.Count
			existing.Preds = append([]string(nil), mistake.Preds...)
			existing.Context = mistake.Context
			continue
		}
		clone := *mistake
		clone.Preds = append([]string(nil), mistake.Preds...)
		m.byWord[word] = &clone
	}
}

// topN returns the n most frequent mistakes, most frequent first.
func (m *mistakeCounter) topN(n int) []Mistake {
	out := make([]Mistake, 0, len(m.byWord))
	for _, mistake := range m.byWord {
		out = append(out, *mistake)
	}
	sortMistakes(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func sortMistakes(mistakes []Mistake) {
	sort.SliceStable(mistakes, func(i, j int) bool {
		if mistakes[i].Count != mistakes[j].Count {
			return mistakes[i].Count > mistakes[j].Count
		}
		return mistakes[i].Actual < mistakes[j].Actual
	})
}
