// Package moderation backs the app moderation filter with a profanity lexicon.
package moderation

import (
	"strings"
	"unicode"

	goaway "github.com/TwiN/go-away"
)

// inflections may follow a listed word inside one token, optionally after a
// doubled final consonant ("frakking").
var inflections = map[string]bool{
	"": true, "s": true, "es": true, "ed": true, "er": true, "ers": true,
	"ing": true, "in": true, "y": true, "ies": true,
}

// Lexicon flags text containing a listed word as a whole token. Leetspeak
// and accent variants are normalized. Words that merely contain a listed
// word ("assessment", "Dickens") pass.
type Lexicon struct {
	d *goaway.ProfanityDetector
}

func NewLexicon(extra []string) *Lexicon {
	return NewLexiconWith(append(clone(goaway.DefaultProfanities), normalize(extra)...),
		goaway.DefaultFalsePositives, goaway.DefaultFalseNegatives)
}

// NewLexiconWith replaces the default dictionaries entirely.
func NewLexiconWith(profanities, falsePositives, falseNegatives []string) *Lexicon {
	d := goaway.NewProfanityDetector().
		WithCustomDictionary(normalize(profanities), normalize(falsePositives), normalize(falseNegatives))
	return &Lexicon{d: d}
}

func (l *Lexicon) IsProfane(text string) bool {
	for _, tok := range strings.Fields(text) {
		tok = strings.TrimFunc(tok, isEdgeMark)
		if tok != "" && l.wholeWord(tok) {
			return true
		}
	}
	return false
}

// wholeWord reports whether the censored form of tok is masked from its
// first rune up to at most an inflection suffix.
func (l *Lexicon) wholeWord(tok string) bool {
	orig := []rune(tok)
	masked := []rune(l.d.Censor(tok))
	if len(masked) != len(orig) {
		return false
	}

	i, stars := 0, 0
	for ; i < len(orig); i++ {
		if masked[i] == '*' && orig[i] != '*' {
			stars++
			continue
		}
		if unicode.IsLetter(orig[i]) || unicode.IsDigit(orig[i]) {
			break
		}
	}
	if stars == 0 {
		return false
	}

	rest := make([]rune, 0, len(orig)-i)
	for _, r := range orig[i:] {
		if unicode.IsLetter(r) {
			rest = append(rest, unicode.ToLower(r))
		}
	}
	if inflections[string(rest)] {
		return true
	}
	return len(rest) > 0 && unicode.ToLower(orig[i-1]) == rest[0] && inflections[string(rest[1:])]
}

// isEdgeMark matches leading/trailing punctuation that is not a leetspeak
// stand-in for a letter.
func isEdgeMark(r rune) bool {
	if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
		return false
	}
	repl, ok := goaway.DefaultCharacterReplacements[r]
	return !ok || repl == ' '
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func clone(s []string) []string { return append([]string(nil), s...) }
