// Package scorer tallies predictions for the four typing tasks and turns
// them into the final evaluation metrics.
package scorer

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/vintr-dev/tapscore/internal/noise"
)

// DefaultBeta slightly favors precision over recall when scoring
// auto-correction: a keyboard wrongly "fixing" a clean word is worse than
// one missing a typo.
const DefaultBeta = 0.9

// NoDomain is the key under which predictions land before a domain is
// assigned with SetDomain.
const NoDomain = ""

const (
	withTypo    = "with_typo"
	withoutTypo = "without_typo"
)

// typoClass buckets an auto-correction call by what was injected: no typo,
// exactly one typo of a known kind, or a count of stacked typos.
type typoClass struct {
	n    int
	typo noise.Typo
}

func classifyTypos(typos []noise.Typo) typoClass {
	switch len(typos) {
	case 0:
		return typoClass{}
	case 1:
		return typoClass{n: 1, typo: typos[0]}
	default:
		return typoClass{n: len(typos)}
	}
}

// Scorer accumulates per-domain counts for next-word prediction,
// auto-completion, auto-correction and swipe resolution. It is not safe for
// concurrent use; merge per-worker scorers instead.
type Scorer struct {
	trackMistakes bool
	rawPerf       bool

	nwpCounts map[string]Count
	acpCounts map[string]map[string]map[float64]Count
	acrCounts map[string]map[typoClass]Count
	swpCounts map[string]Count

	nwpMemories, acpMemories, acrMemories, swpMemories []int64
	nwpRuntimes, acpRuntimes, acrRuntimes, swpRuntimes []int64

	nwpMistakes, acpMistakes, acrMistakes, swpMistakes *mistakeCounter
}

// ScorerOption tunes Scorer construction.
type ScorerOption func(*Scorer)

// TrackMistakes enables keeping the most common wrong predictions.
func TrackMistakes() ScorerOption {
	return func(s *Scorer) { s.trackMistakes = true }
}

// RawPerformances keeps memory and runtime metrics as raw numbers instead
// of human-readable strings.
func RawPerformances() ScorerOption {
	return func(s *Scorer) { s.rawPerf = true }
}

// New builds a scorer tracking the given domains. Every domain gets a zero
// count for each task so domains without predictions still show up in the
// results.
func New(domains []string, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		nwpCounts:   make(map[string]Count),
		acpCounts:   make(map[string]map[string]map[float64]Count),
		acrCounts:   make(map[string]map[typoClass]Count),
		swpCounts:   make(map[string]Count),
		nwpMistakes: newMistakeCounter(),
		acpMistakes: newMistakeCounter(),
		acrMistakes: newMistakeCounter(),
		swpMistakes: newMistakeCounter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, d := range domains {
		s.nwpCounts[d] = Count{}
		s.acpBucket(d, withTypo, 0)
		s.acrBucket(d, typoClass{})
		s.swpCounts[d] = Count{}
	}
	return s
}

func (s *Scorer) acpBucket(domain, hasTypo string, rate float64) Count {
	if s.acpCounts[domain] == nil {
		s.acpCounts[domain] = make(map[string]map[float64]Count)
	}
	if s.acpCounts[domain][hasTypo] == nil {
		s.acpCounts[domain][hasTypo] = make(map[float64]Count)
	}
	c, ok := s.acpCounts[domain][hasTypo][rate]
	if !ok {
		s.acpCounts[domain][hasTypo][rate] = Count{}
	}
	return c
}

func (s *Scorer) acrBucket(domain string, class typoClass) Count {
	if s.acrCounts[domain] == nil {
		s.acrCounts[domain] = make(map[typoClass]Count)
	}
	c, ok := s.acrCounts[domain][class]
	if !ok {
		s.acrCounts[domain][class] = Count{}
	}
	return c
}

func tally(c Count, trueWord string, preds []string) (Count, bool) {
	top3Hit := false
	if len(preds) > 0 && preds[0] == trueWord {
		c.Correct++
	}
	for _, p := range preds[:min(3, len(preds))] {
		if p == trueWord {
			c.Correct3++
			top3Hit = true
			break
		}
	}
	c.Total++
	return c, top3Hit
}

// RecordNextWord records one next-word prediction under NoDomain.
func (s *Scorer) RecordNextWord(trueWord string, preds []string, context string, memory, runtime int64) {
	if memory >= 0 {
		s.nwpMemories = append(s.nwpMemories, memory)
	}
	if runtime >= 0 {
		s.nwpRuntimes = append(s.nwpRuntimes, runtime)
	}
	c, hit := tally(s.nwpCounts[NoDomain], trueWord, preds)
	s.nwpCounts[NoDomain] = c
	if !hit && s.trackMistakes {
		s.nwpMistakes.record(trueWord, preds[:min(3, len(preds))], context)
	}
}

// RecordCompletion records one auto-completion prediction under NoDomain.
// The partial word is what was sent to the engine, potentially noisy.
func (s *Scorer) RecordCompletion(trueWord string, preds []string, partialWord, context string, memory, runtime int64) {
	if memory >= 0 {
		s.acpMemories = append(s.acpMemories, memory)
	}
	if runtime >= 0 {
		s.acpRuntimes = append(s.acpRuntimes, runtime)
	}

	hasTypo := withTypo
	if strings.HasPrefix(trueWord, partialWord) {
		hasTypo = withoutTypo
	}
	rate := completionRate(partialWord, trueWord)

	c, hit := tally(s.acpBucket(NoDomain, hasTypo, rate), trueWord, preds)
	s.acpCounts[NoDomain][hasTypo][rate] = c
	if !hit && s.trackMistakes {
		s.acpMistakes.record(trueWord, preds[:min(3, len(preds))], context+partialWord)
	}
}

// RecordCorrection records one auto-correction prediction under NoDomain,
// bucketed by the typos that were injected into the typed word.
func (s *Scorer) RecordCorrection(trueWord string, preds []string, typedWord, context string, typos []noise.Typo, memory, runtime int64) {
	if memory >= 0 {
		s.acrMemories = append(s.acrMemories, memory)
	}
	if runtime >= 0 {
		s.acrRuntimes = append(s.acrRuntimes, runtime)
	}

	class := classifyTypos(typos)
	c, hit := tally(s.acrBucket(NoDomain, class), trueWord, preds)
	s.acrCounts[NoDomain][class] = c
	if !hit && s.trackMistakes {
		s.acrMistakes.record(trueWord, preds[:min(3, len(preds))], context+typedWord)
	}
}

// RecordSwipe records one swipe-resolution prediction under NoDomain.
func (s *Scorer) RecordSwipe(trueWord string, preds []string, context string, memory, runtime int64) {
	if memory >= 0 {
		s.swpMemories = append(s.swpMemories, memory)
	}
	if runtime >= 0 {
		s.swpRuntimes = append(s.swpRuntimes, runtime)
	}
	c, hit := tally(s.swpCounts[NoDomain], trueWord, preds)
	s.swpCounts[NoDomain] = c
	if !hit && s.trackMistakes {
		s.swpMistakes.record(trueWord, preds[:min(3, len(preds))], context)
	}
}

// SetDomain moves all counts recorded under NoDomain to the given domain,
// replacing anything already recorded there. Setting NoDomain itself is a
// no-op, so counts are never rebound onto their own key and erased.
func (s *Scorer) SetDomain(domain string) {
	if domain == NoDomain {
		return
	}
	if c, ok := s.nwpCounts[NoDomain]; ok {
		s.nwpCounts[domain] = c
		delete(s.nwpCounts, NoDomain)
	}
	if m, ok := s.acpCounts[NoDomain]; ok {
		s.acpCounts[domain] = m
		delete(s.acpCounts, NoDomain)
	}
	if m, ok := s.acrCounts[NoDomain]; ok {
		s.acrCounts[domain] = m
		delete(s.acrCounts, NoDomain)
	}
	if c, ok := s.swpCounts[NoDomain]; ok {
		s.swpCounts[domain] = c
		delete(s.swpCounts, NoDomain)
	}
}

// Merge folds another scorer's counts, performance samples and mistakes
// into this one.
func (s *Scorer) Merge(other *Scorer) {
	for d, c := range other.nwpCounts {
		s.nwpCounts[d] = s.nwpCounts[d].Add(c)
	}
	for d, byTypo := range other.acpCounts {
		for hasTypo, byRate := range byTypo {
			for rate, c := range byRate {
				merged := s.acpBucket(d, hasTypo, rate).Add(c)
				s.acpCounts[d][hasTypo][rate] = merged
			}
		}
	}
	for d, byClass := range other.acrCounts {
		for class, c := range byClass {
			merged := s.acrBucket(d, class).Add(c)
			s.acrCounts[d][class] = merged
		}
	}
	for d, c := range other.swpCounts {
		s.swpCounts[d] = s.swpCounts[d].Add(c)
	}

	s.nwpMemories = append(s.nwpMemories, other.nwpMemories...)
	s.acpMemories = append(s.acpMemories, other.acpMemories...)
	s.acrMemories = append(s.acrMemories, other.acrMemories...)
	s.swpMemories = append(s.swpMemories, other.swpMemories...)
	s.nwpRuntimes = append(s.nwpRuntimes, other.nwpRuntimes...)
	s.acpRuntimes = append(s.acpRuntimes, other.acpRuntimes...)
	s.acrRuntimes = append(s.acrRuntimes, other.acrRuntimes...)
	s.swpRuntimes = append(s.swpRuntimes, other.swpRuntimes...)

	s.nwpMistakes.merge(other.nwpMistakes)
	s.acpMistakes.merge(other.acpMistakes)
	s.acrMistakes.merge(other.acrMistakes)
	s.swpMistakes.merge(other.swpMistakes)
}

// Mistakes returns the most common wrong predictions per task, most
// frequent first. Empty unless the scorer was built with TrackMistakes.
func (s *Scorer) Mistakes(n int) map[string][]Mistake {
	return map[string][]Mistake{
		"next_word_prediction": s.nwpMistakes.topN(n),
		"auto_completion":      s.acpMistakes.topN(n),
		"auto_correction":      s.acrMistakes.topN(n),
		"swipe_resolution":     s.swpMistakes.topN(n),
	}
}

// completionRate is the typed share of the target word, rounded to two
// decimals so equal rates land in the same bucket.
func completionRate(partial, trueWord string) float64 {
	rate := float64(utf8.RuneCountInString(partial)) / float64(utf8.RuneCountInString(trueWord))
	return math.Round(rate*100) / 100
}
