package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sentinel tokens substituted for structural patterns so the classifier can
// learn "contains a URL" independently of the specific URL. They are plain
// alphabetic strings so the punctuation stage leaves them intact.
const (
	URLToken   = "urltoken"
	PhoneToken = "phonetoken"
	MoneyToken = "moneytoken"
)

var (
	urlPattern = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	// French 10-digit numbers, optionally in +33 form, with common separators.
	phonePattern = regexp.MustCompile(`(?:\+33[-. ]?|0)[1-9](?:[-. ]?\d{2}){4}`)
	moneyPattern = regexp.MustCompile(`[€$£¥₹]`)
)

// Options selects the optional normalization stages. The zero value is the
// minimal pipeline: lowercase, sentinel substitution, punctuation strip,
// stopword removal.
type Options struct {
	StripDiacritics bool
	Leetspeak       bool
	Stemming        bool
}

// Normalizer turns raw message text into an ordered token sequence. It is
// stateless apart from its fixed option set and stopword table, and the same
// instance configuration must be used for training and inference.
type Normalizer struct {
	opts      Options
	stopwords map[string]struct{}
}

// New builds a normalizer for the given options.
func New(opts Options) *Normalizer {
	stop := make(map[string]struct{}, len(frenchStopwords))
	for _, w := range frenchStopwords {
		if opts.StripDiacritics {
			w = stripDiacritics(w)
		}
		stop[w] = struct{}{}
	}
	return &Normalizer{opts: opts, stopwords: stop}
}

// Normalize runs the full pipeline. Degenerate input (empty, pure
// punctuation, pure stopwords) yields an empty, non-nil slice.
func (n *Normalizer) Normalize(text string) []string {
	s := strings.ToLower(Sanitize(text))
	if n.opts.StripDiacritics {
		s = stripDiacritics(s)
	}
	if n.opts.Leetspeak {
		s = deleet(s)
	}
	s = urlPattern.ReplaceAllString(s, " "+URLToken+" ")
	s = phonePattern.ReplaceAllString(s, " "+PhoneToken+" ")
	s = moneyPattern.ReplaceAllString(s, " "+MoneyToken+" ")
	s = strings.Map(dropPunct, s)

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, w := range fields {
		if _, stop := n.stopwords[w]; stop {
			continue
		}
		if n.opts.Stemming {
			if stemmed, err := snowball.Stem(w, "french", true); err == nil && stemmed != "" {
				w = stemmed
			}
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Options returns the option set this normalizer was built with.
func (n *Normalizer) Options() Options {
	return n.opts
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

var leetLetters = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
}

// deleet substitutes digit-for-letter only when the digit is flanked by
// letters on both sides, so "g4gner" becomes "gagner" while phone numbers
// are untouched.
func deleet(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		sub, ok := leetLetters[r]
		if !ok {
			continue
		}
		if i == 0 || i == len(rs)-1 {
			continue
		}
		if unicode.IsLetter(rs[i-1]) && unicode.IsLetter(rs[i+1]) {
			rs[i] = sub
		}
	}
	return string(rs)
}

// dropPunct replaces punctuation with a space rather than deleting it, so
// elided forms like "l'offre" split into separate tokens.
func dropPunct(r rune) rune {
	if unicode.IsPunct(r) || unicode.IsSymbol(r) {
		return ' '
	}
	return r
}

// Sanitize drops invalid UTF-8 sequences so downstream stages only ever see
// well-formed text.
func Sanitize(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				continue
			}
		}
		result = append(result, r)
	}
	return string(result)
}

// Truncate cuts text to at most maxLen bytes on a rune boundary, appending an
// ellipsis when anything was removed.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}
