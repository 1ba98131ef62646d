// Package oracle drives an evaluation: it feeds clean sentences through
// the noise model, queries the corrector under test, and aggregates the
// scores.
package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/vintr-dev/tapscore/internal/corrector"
	"github.com/vintr-dev/tapscore/internal/layout"
	"github.com/vintr-dev/tapscore/internal/noise"
	"github.com/vintr-dev/tapscore/internal/scorer"
	"github.com/vintr-dev/tapscore/internal/tokenizer"
)

const (
	chunkSize = 10

	// Contexts longer than this stop the sentence early; keyboards are not
	// exercised with paragraph-length context anyway.
	maxCharPerSentence = 256

	// Swipe gestures are expensive to generate, so only a sample of words
	// gets one.
	swipeProb = 0.01
)

// Oracle evaluates a corrector against a dataset of clean sentences,
// grouped by domain.
type Oracle struct {
	lang        string
	data        map[string][]string
	keyboard    *layout.Keyboard
	commonTypos map[string][]string
	cacheDir    string
	probs       map[noise.Typo]float64
	gaussian    *gaussianParams

	trackMistakes bool
	nMostCommon   int
	rawPerf       bool
	beta          float64
	progress      func(done, total int)
}

// Option tunes Oracle construction.
type Option func(*Oracle)

// WithKeyboard overrides the built-in keyboard layout used by the noise
// model.
func WithKeyboard(kb layout.Keyboard) Option {
	return func(o *Oracle) { o.keyboard = &kb }
}

// WithCommonTypos supplies the common-typo table directly, skipping the
// corpus lookup.
func WithCommonTypos(table map[string][]string) Option {
	return func(o *Oracle) { o.commonTypos = table }
}

// WithCacheDir sets the directory used to cache the common-typo corpus.
func WithCacheDir(dir string) Option {
	return func(o *Oracle) { o.cacheDir = dir }
}

// WithProbabilities overrides the typo probability table used by the noise
// model.
func WithProbabilities(probs map[noise.Typo]float64) Option {
	return func(o *Oracle) { o.probs = probs }
}

type gaussianParams struct {
	xOffset, yOffset float64
	xRatio, yRatio   float64
}

// WithGaussian tunes the fat-finger tap distribution of the noise model.
func WithGaussian(xOffset, yOffset, xRatio, yRatio float64) Option {
	return func(o *Oracle) {
		o.gaussian = &gaussianParams{xOffset, yOffset, xRatio, yRatio}
	}
}

// TrackMistakes records the n most common wrong predictions per task.
func TrackMistakes(n int) Option {
	return func(o *Oracle) {
		o.trackMistakes = true
		o.nMostCommon = n
	}
}

// RawPerformances reports memory and runtime figures as plain numbers
// instead of human-readable strings.
func RawPerformances() Option {
	return func(o *Oracle) { o.rawPerf = true }
}

// WithBeta overrides the beta used for the auto-correction F-score.
func WithBeta(beta float64) Option {
	return func(o *Oracle) { o.beta = beta }
}

// WithProgress installs a callback invoked after each scored sentence.
func WithProgress(fn func(done, total int)) Option {
	return func(o *Oracle) { o.progress = fn }
}

// New builds an oracle for a language and dataset.
func New(lang string, data map[string][]string, opts ...Option) *Oracle {
	o := &Oracle{
		lang: lang,
		data: data,
		beta: scorer.DefaultBeta,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Report is the outcome of an evaluation.
type Report struct {
	Results scorer.Results
	// Mistakes maps task names to the most common wrong predictions, only
	// populated when mistake tracking is enabled.
	Mistakes map[string][]scorer.Mistake
}

type job struct {
	domain    string
	sentences []string
}

type result struct {
	domain string
	scores *scorer.Scorer
}

// Evaluate runs the full dataset through the given correctors, one worker
// per corrector. Results are deterministic for a given seed regardless of
// the number of workers, since every sentence seeds its own random stream.
func (o *Oracle) Evaluate(ctx context.Context, correctors []corrector.Corrector, seed int64) (*Report, error) {
	if len(correctors) == 0 {
		return nil, errors.New("at least one corrector is required")
	}

	workers := make([]*worker, 0, len(correctors))
	for _, c := range correctors {
		w, err := o.newWorker(c, seed)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}

	domains := make([]string, 0, len(o.data))
	total := 0
	for domain, sentences := range o.data {
		domains = append(domains, domain)
		total += len(sentences)
	}
	sort.Strings(domains)

	jobs := make(chan job)
	results := make(chan result)

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			for jb := range jobs {
				for _, sentence := range jb.sentences {
					if ctx.Err() != nil {
						return
					}
					scores := w.testSentence(ctx, sentence)
					select {
					case results <- result{domain: jb.domain, scores: scores}:
					case <-ctx.Done():
						return
					}
				}
			}
		}(w)
	}

	go func() {
		defer close(jobs)
		for _, domain := range domains {
			sentences := o.data[domain]
			chunk := len(sentences) / len(workers)
			if chunk > chunkSize {
				chunk = chunkSize
			}
			if chunk < 1 {
				chunk = 1
			}
			for start := 0; start < len(sentences); start += chunk {
				end := start + chunk
				if end > len(sentences) {
					end = len(sentences)
				}
				select {
				case jobs <- job{domain: domain, sentences: sentences[start:end]}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	globalOpts := []scorer.ScorerOption{}
	if o.trackMistakes {
		globalOpts = append(globalOpts, scorer.TrackMistakes())
	}
	if o.rawPerf {
		globalOpts = append(globalOpts, scorer.RawPerformances())
	}
	global := scorer.New(domains, globalOpts...)

	done := 0
	for r := range results {
		r.scores.SetDomain(r.domain)
		global.Merge(r.scores)
		done++
		if o.progress != nil {
			o.progress(done, total)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Results: global.Score(o.beta)}
	if o.trackMistakes {
		report.Mistakes = global.Mistakes(o.nMostCommon)
	}
	return report, nil
}

type worker struct {
	oracle    *Oracle
	tok       tokenizer.Basic
	noisy     *noise.Model
	corrector *corrector.Profiled
	baseSeed  int64
}

func (o *Oracle) newWorker(c corrector.Corrector, seed int64) (*worker, error) {
	noiseOpts := []noise.Option{}
	if o.keyboard != nil {
		noiseOpts = append(noiseOpts, noise.WithKeyboard(*o.keyboard))
	}
	if o.commonTypos != nil {
		noiseOpts = append(noiseOpts, noise.WithCommonTypos(o.commonTypos))
	}
	if o.cacheDir != "" {
		noiseOpts = append(noiseOpts, noise.WithCacheDir(o.cacheDir))
	}
	if o.probs != nil {
		noiseOpts = append(noiseOpts, noise.WithProbabilities(o.probs))
	}
	if o.gaussian != nil {
		g := o.gaussian
		noiseOpts = append(noiseOpts, noise.WithGaussian(g.xOffset, g.yOffset, g.xRatio, g.yRatio))
	}
	noisy, err := noise.New(o.lang, noiseOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build noise model: %w", err)
	}
	return &worker{
		oracle:    o,
		noisy:     noisy,
		corrector: corrector.Profile(c),
		baseSeed:  seed,
	}, nil
}

// testSentence types one sentence with noise and records how the corrector
// handles each task. Every sentence gets its own random stream so results
// don't depend on scheduling.
func (w *worker) testSentence(ctx context.Context, sentence string) *scorer.Scorer {
	rng := rand.New(rand.NewSource(w.baseSeed + sentenceSeed(sentence)))

	words := w.tok.WordSplit(w.tok.Preprocess(sentence))

	var scorerOpts []scorer.ScorerOption
	if w.oracle.trackMistakes {
		scorerOpts = append(scorerOpts, scorer.TrackMistakes())
	}
	scores := scorer.New(nil, scorerOpts...)

	prev := ""
	for len(words) > 0 && utf8.RuneCountInString(prev) < maxCharPerSentence {
		wordToSwipe := words[0]
		var gesture []noise.Keystroke
		if rng.Float64() < swipeProb {
			gesture = w.noisy.Swipe(rng, wordToSwipe)
		}

		keystrokes, typedWord, nTyped, typos := w.noisy.TypeTillSpace(rng, words)

		// A noisy space can merge several words into one typed unit.
		actualWord := strings.Join(words[:nTyped], " ")
		words = words[nTyped:]
		nextWord := ""
		if len(words) > 0 {
			nextWord = words[0]
		}

		if len(gesture) > 0 {
			preds, memory, runtime := w.corrector.ResolveSwipe(ctx, prev, gesture)
			scores.RecordSwipe(wordToSwipe, preds, prev, memory, runtime)
		}

		if utf8.RuneCountInString(typedWord) > 1 && utf8.RuneCountInString(actualWord) > 1 {
			partialKeystrokes, partialWord := samplePartialWord(rng, keystrokes, typedWord, actualWord)
			preds, memory, runtime := w.corrector.AutoComplete(ctx, prev, partialKeystrokes, partialWord)
			scores.RecordCompletion(actualWord, preds, partialWord, prev, memory, runtime)
		}

		preds, memory, runtime := w.corrector.AutoCorrect(ctx, prev, keystrokes, typedWord)
		scores.RecordCorrection(actualWord, preds, typedWord, prev, typos, memory, runtime)

		prev = w.tok.UpdateContext(prev, actualWord)

		if nextWord != "" {
			preds, memory, runtime := w.corrector.PredictNextWord(ctx, prev)
			scores.RecordNextWord(nextWord, preds, prev, memory, runtime)
		}
	}

	return scores
}

// samplePartialWord cuts a typed word (and its keystrokes) to a random
// prefix, with longer prefixes more likely. The cut stays below the clean
// word's length so there is always something left to complete.
func samplePartialWord(rng *rand.Rand, keystrokes []*noise.Keystroke, word, trueWord string) ([]*noise.Keystroke, string) {
	wordRunes := []rune(word)
	upper := utf8.RuneCountInString(trueWord)
	if len(wordRunes) < upper {
		upper = len(wordRunes)
	}

	// Weighted pick from [1, upper): prefix length i has weight i.
	totalWeight := upper * (upper - 1) / 2
	pick := rng.Intn(totalWeight)
	cut := 1
	for cum := 0; cut < upper-1; cut++ {
		cum += cut
		if pick < cum {
			break
		}
	}

	return keystrokes[:cut], string(wordRunes[:cut])
}

// sentenceSeed derives a stable per-sentence seed from its content.
func sentenceSeed(sentence string) int64 {
	sum := sha256.Sum256([]byte(sentence))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
