package oracle

import (
	"context"
	"math/rand"
	"testing"

	"github.com/vintr-dev/tapscore/internal/corrector"
	"github.com/vintr-dev/tapscore/internal/noise"
)

type constCorrector struct {
	corrector.Base
	preds []string
}

func (c constCorrector) AutoCorrect(context.Context, string, []*noise.Keystroke, string) ([]string, error) {
	return c.preds, nil
}

func (c constCorrector) AutoComplete(context.Context, string, []*noise.Keystroke, string) ([]string, error) {
	return c.preds, nil
}

func (c constCorrector) ResolveSwipe(context.Context, string, []noise.Keystroke) ([]string, error) {
	return c.preds, nil
}

func (c constCorrector) PredictNextWord(context.Context, string) ([]string, error) {
	return c.preds, nil
}

var testData = map[string][]string{
	"chat": {
		"hello world how are you",
		"see you tomorrow then",
	},
	"news": {
		"the quick brown fox jumps",
	},
}

func newTestOracle(opts ...Option) *Oracle {
	opts = append([]Option{WithCommonTypos(map[string][]string{})}, opts...)
	return New("en-US", testData, opts...)
}

func TestEvaluateCounts(t *testing.T) {
	o := newTestOracle()
	report, err := o.Evaluate(context.Background(), []corrector.Corrector{constCorrector{preds: []string{"x"}}}, 42)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	r := report.Results
	if r.AutoCorrection.Score.N < 3 {
		t.Fatalf("expected at least one correction per sentence, got %d", r.AutoCorrection.Score.N)
	}
	if r.AutoCorrection.Score.N > 14 {
		t.Fatalf("more corrections than words: %d", r.AutoCorrection.Score.N)
	}
	if r.NextWordPrediction.Score.N > 11 {
		t.Fatalf("more next-word predictions than word boundaries: %d", r.NextWordPrediction.Score.N)
	}
	for _, domain := range []string{"chat", "news"} {
		if _, ok := r.AutoCorrection.PerDomain[domain]; !ok {
			t.Fatalf("missing domain %s in results", domain)
		}
	}
	// The corrector never matches, so everything scores zero.
	if r.OverallScore != 0 {
		t.Fatalf("constant wrong predictions should score 0, got %v", r.OverallScore)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	run := func(correctors []corrector.Corrector) Report {
		o := newTestOracle()
		report, err := o.Evaluate(context.Background(), correctors, 42)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return *report
	}

	c := constCorrector{preds: []string{"x"}}
	one := run([]corrector.Corrector{c})
	two := run([]corrector.Corrector{c, c})

	if one.Results.AutoCorrection.Score != two.Results.AutoCorrection.Score {
		t.Fatalf("auto-correction counts depend on worker count: %+v vs %+v",
			one.Results.AutoCorrection.Score, two.Results.AutoCorrection.Score)
	}
	if one.Results.NextWordPrediction.Score != two.Results.NextWordPrediction.Score {
		t.Fatalf("next-word counts depend on worker count: %+v vs %+v",
			one.Results.NextWordPrediction.Score, two.Results.NextWordPrediction.Score)
	}
	if one.Results.AutoCompletion.Score != two.Results.AutoCompletion.Score {
		t.Fatalf("auto-completion counts depend on worker count: %+v vs %+v",
			one.Results.AutoCompletion.Score, two.Results.AutoCompletion.Score)
	}
}

func TestEvaluateRequiresCorrector(t *testing.T) {
	o := newTestOracle()
	if _, err := o.Evaluate(context.Background(), nil, 42); err == nil {
		t.Fatalf("expected an error without correctors")
	}
}

func TestEvaluateCancelled(t *testing.T) {
	o := newTestOracle()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Evaluate(ctx, []corrector.Corrector{constCorrector{}}, 42)
	if err == nil {
		t.Fatalf("expected a cancellation error")
	}
}

func TestEvaluateProgress(t *testing.T) {
	calls := 0
	lastDone, lastTotal := 0, 0
	o := newTestOracle(WithProgress(func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}))

	if _, err := o.Evaluate(context.Background(), []corrector.Corrector{constCorrector{}}, 42); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected one progress call per sentence, got %d", calls)
	}
	if lastDone != 3 || lastTotal != 3 {
		t.Fatalf("unexpected final progress %d/%d", lastDone, lastTotal)
	}
}

func TestEvaluateTracksMistakes(t *testing.T) {
	o := newTestOracle(TrackMistakes(5))
	report, err := o.Evaluate(context.Background(), []corrector.Corrector{constCorrector{preds: []string{"x"}}}, 42)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(report.Mistakes["auto_correction"]) == 0 {
		t.Fatalf("expected recorded auto-correction mistakes")
	}
}

func TestSamplePartialWordBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	keystrokes := make([]*noise.Keystroke, 6)
	for i := range keystrokes {
		keystrokes[i] = &noise.Keystroke{X: float64(i), Y: 0}
	}

	for i := 0; i < 200; i++ {
		partialKs, partial := samplePartialWord(rng, keystrokes, "abcdef", "abcdef")
		if len(partial) < 1 || len(partial) > 5 {
			t.Fatalf("partial word %q out of bounds", partial)
		}
		if len(partialKs) != len(partial) {
			t.Fatalf("keystrokes and partial word diverge: %d vs %d", len(partialKs), len(partial))
		}
		if partial == "abcdef" {
			t.Fatalf("the full word must never be sampled")
		}
	}
}

func TestSamplePartialWordShorterTyped(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	keystrokes := make([]*noise.Keystroke, 3)

	for i := 0; i < 50; i++ {
		_, partial := samplePartialWord(rng, keystrokes, "abc", "abcdef")
		if len(partial) < 1 || len(partial) > 2 {
			t.Fatalf("partial word %q out of bounds for short typed word", partial)
		}
	}
}

func TestSentenceSeed(t *testing.T) {
	a := sentenceSeed("hello world")
	b := sentenceSeed("hello world")
	c := sentenceSeed("hello world!")
	if a != b {
		t.Fatalf("seed must be stable")
	}
	if a == c {
		t.Fatalf("different sentences should get different seeds")
	}
}
