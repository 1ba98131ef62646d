package noise

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/vintr-dev/tapscore/internal/layout"
	"github.com/vintr-dev/tapscore/internal/typos"
)

const (
	// DefaultSigmaRatio keeps ~99% of taps inside the intended key.
	DefaultSigmaRatio = 3.0

	// Deleting the first character of a word is not so common.
	frontDeletionMultiplier = 0.36

	// Layers above this id (emoji panels, alt symbol pages) are not modeled.
	layerCutoff = 3

	space = " "
)

// asciiPunctuation mirrors the classic ASCII punctuation class.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Keystroke is a tap position on the keyboard.
type Keystroke struct {
	X float64
	Y float64
}

// Model turns clean words into noisy keystreams. All randomness flows
// through the *rand.Rand passed to each call, never a global source.
type Model struct {
	lang        string
	xOffset     float64
	yOffset     float64
	xRatio      float64
	yRatio      float64
	layout      *layout.Helper
	probs       map[Typo]float64
	commonTypos map[string][]string
}

// Option tunes Model construction.
type Option func(*modelOptions)

type modelOptions struct {
	keyboard    *layout.Keyboard
	commonTypos map[string][]string
	probs       map[Typo]float64
	xOffset     float64
	yOffset     float64
	xRatio      float64
	yRatio      float64
	cacheDir    string
}

// WithKeyboard overrides the built-in keyboard layout.
func WithKeyboard(kb layout.Keyboard) Option {
	return func(o *modelOptions) { o.keyboard = &kb }
}

// WithCommonTypos supplies the common-typo table directly, skipping the
// corpus lookup.
func WithCommonTypos(table map[string][]string) Option {
	return func(o *modelOptions) { o.commonTypos = table }
}

// WithProbabilities overrides the default per-typo probabilities.
func WithProbabilities(probs map[Typo]float64) Option {
	return func(o *modelOptions) { o.probs = probs }
}

// WithGaussian tunes the fat-finger tap distribution: position offsets and
// precision ratios for both axes.
func WithGaussian(xOffset, yOffset, xRatio, yRatio float64) Option {
	return func(o *modelOptions) {
		o.xOffset, o.yOffset = xOffset, yOffset
		o.xRatio, o.yRatio = xRatio, yRatio
	}
}

// WithCacheDir sets the directory used to cache the common-typo corpus.
func WithCacheDir(dir string) Option {
	return func(o *modelOptions) { o.cacheDir = dir }
}

// New builds a noise model for a language. Unless overridden, the keyboard
// comes from the built-in layouts and the common-typo table from the corpus
// cache (fetched over the network on first use).
func New(lang string, opts ...Option) (*Model, error) {
	o := modelOptions{
		xRatio:   DefaultSigmaRatio,
		yRatio:   DefaultSigmaRatio,
		probs:    DefaultProbs,
		cacheDir: typos.DefaultCacheDir(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	kb := layout.Keyboard{}
	if o.keyboard != nil {
		kb = *o.keyboard
	} else {
		var err error
		kb, err = layout.Builtin(lang)
		if err != nil {
			return nil, err
		}
	}

	table := o.commonTypos
	if table == nil {
		var err error
		table, err = typos.Load(lang, o.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load common typos: %w", err)
		}
	}

	return &Model{
		lang:        lang,
		xOffset:     o.xOffset,
		yOffset:     o.yOffset,
		xRatio:      o.xRatio,
		yRatio:      o.yRatio,
		layout:      layout.New(kb, layout.IgnoreLayersAfter(layerCutoff)),
		probs:       o.probs,
		commonTypos: table,
	}, nil
}

// Layout exposes the keyboard helper built for this model.
func (m *Model) Layout() *layout.Helper { return m.layout }

// TypeTillSpace types the first of the remaining words, with typos, followed
// by a separating space. If the space itself comes out noisy (deleted or
// mistyped, merging words), typing continues into the next word until a
// clean space is produced or the words run out. It returns the keystrokes
// (nil entries for characters without a default-layer key), the typed
// string, how many words were consumed, and the injected typo labels.
func (m *Model) TypeTillSpace(rng *rand.Rand, words []string) ([]*Keystroke, string, int, []Typo) {
	var keystrokes []*Keystroke
	var typed strings.Builder
	var all []Typo

	consumed := 0
	for _, word := range words {
		// Words without any letter (numbers, symbols) can't be corrected,
		// so no typos are introduced in them.
		errorFree := !isCorrectable(word)

		noisy, wordTypos := m.introduceTypos(rng, word, errorFree)
		all = append(all, wordTypos...)

		ks, typedChars, fuzzTypos := m.fuzzyType(rng, noisy, errorFree)
		keystrokes = append(keystrokes, ks...)
		typed.WriteString(typedChars)
		all = append(all, fuzzTypos...)
		consumed++

		noisySpace, spEdit := m.introduceTypos(rng, space, false)
		spKs, spTyped, spFuzz := m.fuzzyType(rng, noisySpace, false)

		// A cleanly typed space ends the stream (and is not emitted).
		if len(spEdit) == 0 && len(spFuzz) == 0 {
			break
		}
		keystrokes = append(keystrokes, spKs...)
		typed.WriteString(spTyped)
		all = append(all, spEdit...)
		all = append(all, spFuzz...)
	}

	return keystrokes, typed.String(), consumed, all
}

// Swipe produces a synthetic swipe gesture for a word: ideal per-character
// tap positions turned into a smooth path. It returns nil when the word is
// not correctable or resolves to fewer than two usable keystrokes.
func (m *Model) Swipe(rng *rand.Rand, word string) []Keystroke {
	if !isCorrectable(word) {
		return nil
	}

	// Swipe engines see raw geometry, so the taps themselves are not fuzzed.
	keystrokes, _, _ := m.fuzzyType(rng, word, true)

	points := make([]Keystroke, 0, len(keystrokes))
	for _, k := range keystrokes {
		if k == nil {
			return nil
		}
		points = append(points, *k)
	}
	if len(points) <= 1 {
		return nil
	}
	return makeSwipeGesture(rng, points)
}

// introduceTypos applies the character-edit layer: either a whole-word
// common misspelling, or per-character simplifications and at most one
// structural edit per position.
func (m *Model) introduceTypos(rng *rand.Rand, word string, errorFree bool) (string, []Typo) {
	if errorFree {
		return word, nil
	}

	if alts, ok := m.commonTypos[word]; ok && len(alts) > 0 && sample(rng, m.probs[CommonTypo]) {
		return alts[rng.Intn(len(alts))], []Typo{CommonTypo}
	}

	chars := []rune(word)
	allUpper := isUpperWord(word)
	var out []rune
	var applied []Typo

	// A transposition pushes the current character one position forward;
	// the pushed character is emitted as-is when iteration reaches it.
	pushed := make([]bool, len(chars))

	for i := 0; i < len(chars); i++ {
		char := chars[i]
		if pushed[i] {
			out = append(out, char)
			continue
		}

		if m.isLetterAccent(char) && sample(rng, m.probs[SimplifyAccent]) {
			char = stripAccentRune(char)
			applied = append(applied, SimplifyAccent)
		}
		if unicode.IsUpper(char) && len(chars) > 1 && !allUpper && sample(rng, m.probs[SimplifyCase]) {
			char = unicode.ToLower(char)
			applied = append(applied, SimplifyCase)
		}

		onKeyboard := false
		layerID := -1
		if info, err := m.layout.KeyInfo(char); err == nil {
			onKeyboard = true
			layerID = info.LayerID
		}

		isFirst := i == 0
		isLast := i >= len(chars)-1

		var events []weightedTypo
		if !unicode.IsNumber(char) && onKeyboard {
			if !isLast {
				// Transpose only within the same keyboard layer.
				if next, err := m.layout.KeyInfo(chars[i+1]); err == nil && next.LayerID == layerID {
					events = append(events, weightedTypo{TransposeChar, m.probs[TransposeChar]})
				}
			}
			switch {
			case m.layout.IsSpellingSymbol(char):
				events = append(events,
					weightedTypo{DeleteSpellingSymbol, m.probs[DeleteSpellingSymbol]},
					weightedTypo{AddSpellingSymbol, m.probs[AddSpellingSymbol]})
			case unicode.IsSpace(char):
				events = append(events,
					weightedTypo{DeleteSpace, m.probs[DeleteSpace]},
					weightedTypo{AddSpace, m.probs[AddSpace]})
			case strings.ContainsRune(asciiPunctuation, char):
				events = append(events,
					weightedTypo{DeletePunctuation, m.probs[DeletePunctuation]},
					weightedTypo{AddPunctuation, m.probs[AddPunctuation]})
			case layerID == layout.DefaultLayerID:
				events = append(events,
					weightedTypo{DeleteChar, m.probs[DeleteChar]},
					weightedTypo{AddChar, m.probs[AddChar]})
			}
		}

		// Deleting the last character is an auto-completion scenario, not an
		// auto-correction one, so it is never injected here (unless the word
		// being typed is the separating space itself).
		if isLast && word != space {
			kept := events[:0]
			for _, e := range events {
				if !e.typo.isDeletion() {
					kept = append(kept, e)
				}
			}
			events = kept
		}
		if isFirst {
			for j, e := range events {
				if e.typo.isDeletion() {
					events[j].prob = e.prob * frontDeletionMultiplier
				}
			}
		}

		typo, ok := sampleAmong(rng, events)
		switch {
		case !ok:
			out = append(out, char)
		case typo == TransposeChar:
			out = append(out, chars[i+1])
			chars[i+1] = char
			pushed[i+1] = true
		case typo.isDeletion():
			// Emit nothing.
		default:
			// Additions duplicate the character.
			out = append(out, char, char)
		}
		if ok {
			applied = append(applied, typo)
		}
	}

	return string(out), applied
}

// fuzzyType applies the physical-tap layer: every character is typed by
// sampling a tap position from two Gaussians centered on its key, then
// resolving the tap back to a character. Characters without a key pass
// through untouched, as if pasted.
func (m *Model) fuzzyType(rng *rand.Rand, word string, errorFree bool) ([]*Keystroke, string, []Typo) {
	var keystrokes []*Keystroke
	var typed strings.Builder
	var applied []Typo

	for _, char := range word {
		info, err := m.layout.KeyInfo(char)
		if err != nil {
			keystrokes = append(keystrokes, nil)
			typed.WriteRune(char)
			continue
		}

		var x, y float64
		if errorFree || info.LayerID != layout.DefaultLayerID {
			// Non-default layers are never fuzzed.
			x, y = info.CenterX, info.CenterY
		} else {
			x = rng.NormFloat64()*((info.Width/2)/m.xRatio) + info.CenterX + m.xOffset
			y = rng.NormFloat64()*((info.Height/2)/m.yRatio) + info.CenterY + m.yOffset
		}

		fuzzyChar := m.layout.KeyAt(x, y, info.LayerID)

		if info.LayerID == layout.DefaultLayerID {
			keystrokes = append(keystrokes, &Keystroke{X: x, Y: y})
		} else {
			keystrokes = append(keystrokes, nil)
		}
		typed.WriteRune(fuzzyChar)
		if fuzzyChar != char {
			applied = append(applied, SubstituteChar)
		}
	}

	return keystrokes, typed.String(), applied
}

func (m *Model) isLetterAccent(char rune) bool {
	for _, r := range m.layout.LetterAccents() {
		if r == char {
			return true
		}
	}
	return false
}

// isCorrectable reports whether typos may be injected into the word: words
// without a single letter (numbers, bare punctuation) are typed verbatim.
func isCorrectable(word string) bool {
	if word == "" {
		return true
	}
	for _, r := range word {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isUpperWord(word string) bool {
	return strings.ToUpper(word) == word && strings.ToLower(word) != word
}

// stripAccentRune removes diacritics from a character via NFKD
// decomposition.
func stripAccentRune(char rune) rune {
	decomposed := norm.NFKD.String(string(char))
	for _, r := range decomposed {
		if !unicode.Is(unicode.Mn, r) {
			return r
		}
	}
	return char
}
