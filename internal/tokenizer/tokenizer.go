// Package tokenizer splits sentences into typeable words for latin
// languages.
package tokenizer

import (
	"regexp"
	"strings"
)

var (
	dotRunRe      = regexp.MustCompile(`\s*\.+\s*`)
	punctuationRe = regexp.MustCompile(`\s*[,:;()"!?\[\]{}~]\s*`)

	normalizer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"’", "'", "ʻ", "'", "‘", "'", "´", "'", "ʼ", "'",
		"–", "-", "—", "-", "‑", "-", "−", "-", "ー", "-",
		"…", "...", "‚", ",", "․", ".",
	)
)

// Basic splits on whitespace. It exists to feed clean word streams into the
// typing simulation, not to be a linguistically complete tokenizer.
type Basic struct{}

// Preprocess normalizes characters that don't exist on the keyboard (curly
// quotes, long dashes, ellipsis) into their typeable counterparts, then
// drops the remaining punctuation since keyboards disagree on how to treat
// it.
func (Basic) Preprocess(sentence string) string {
	sentence = normalizer.Replace(sentence)
	sentence = dotRunRe.ReplaceAllString(sentence, " ")
	sentence = punctuationRe.ReplaceAllString(sentence, " ")
	return sentence
}

// WordSplit splits a sentence into words on whitespace.
func (Basic) WordSplit(sentence string) []string {
	return strings.Fields(strings.TrimSpace(sentence))
}

// UpdateContext appends a typed word to the typing context.
func (Basic) UpdateContext(context, word string) string {
	return context + word + " "
}
