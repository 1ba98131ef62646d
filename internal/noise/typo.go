// Package noise corrupts clean words into realistic noisy keystreams: whole
// word misspellings, character-level edits, and Gaussian fat-finger taps on a
// geometric keyboard layout.
package noise

// Typo is the closed set of injectable typo kinds.
type Typo int

const (
	// Deletions.
	DeleteSpellingSymbol Typo = iota
	DeleteSpace
	DeletePunctuation
	DeleteChar

	// Additions.
	AddSpellingSymbol
	AddSpace
	AddPunctuation
	AddChar

	// Substitutions (only produced by fuzzy typing).
	SubstituteChar

	// Simplifications.
	SimplifyAccent
	SimplifyCase

	// Transposition.
	TransposeChar

	// Whole-word common misspelling.
	CommonTypo
)

var typoNames = map[Typo]string{
	DeleteSpellingSymbol: "DELETE_SPELLING_SYMBOL",
	DeleteSpace:          "DELETE_SPACE",
	DeletePunctuation:    "DELETE_PUNCTUATION",
	DeleteChar:           "DELETE_CHAR",
	AddSpellingSymbol:    "ADD_SPELLING_SYMBOL",
	AddSpace:             "ADD_SPACE",
	AddPunctuation:       "ADD_PUNCTUATION",
	AddChar:              "ADD_CHAR",
	SubstituteChar:       "SUBSTITUTE_CHAR",
	SimplifyAccent:       "SIMPLIFY_ACCENT",
	SimplifyCase:         "SIMPLIFY_CASE",
	TransposeChar:        "TRANSPOSE_CHAR",
	CommonTypo:           "COMMON_TYPO",
}

// AllTypos lists every typo kind, in declaration order.
var AllTypos = []Typo{
	DeleteSpellingSymbol,
	DeleteSpace,
	DeletePunctuation,
	DeleteChar,
	AddSpellingSymbol,
	AddSpace,
	AddPunctuation,
	AddChar,
	SubstituteChar,
	SimplifyAccent,
	SimplifyCase,
	TransposeChar,
	CommonTypo,
}

func (t Typo) String() string {
	if name, ok := typoNames[t]; ok {
		return name
	}
	return "UNKNOWN_TYPO"
}

// ParseTypo resolves a typo kind from its name.
func ParseTypo(name string) (Typo, bool) {
	for t, n := range typoNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

func (t Typo) isDeletion() bool {
	switch t {
	case DeleteSpellingSymbol, DeleteSpace, DeletePunctuation, DeleteChar:
		return true
	}
	return false
}

// DefaultProbs is the default probability of each typo kind.
var DefaultProbs = map[Typo]float64{
	// Sampled on every character except the last one.
	TransposeChar: 0.01,
	// Sampled on spelling symbols.
	DeleteSpellingSymbol: 0.1,
	AddSpellingSymbol:    0,
	// Sampled on spaces.
	DeleteSpace: 0.01,
	AddSpace:    0,
	// Sampled on punctuation.
	DeletePunctuation: 0,
	AddPunctuation:    0,
	// Sampled on regular characters.
	DeleteChar: 0.005,
	AddChar:    0.005,
	// Sampled on accented letters.
	SimplifyAccent: 0.08,
	// Sampled on uppercase letters.
	SimplifyCase: 0.08,
	// Sampled once per word.
	CommonTypo: 0.05,
}
