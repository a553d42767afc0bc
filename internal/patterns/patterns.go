// Package patterns computes secondary spam signals on raw, unnormalized
// text: six boolean pattern flags and a scan against a fixed spam-keyword
// list. Both detection paths use the same signals so results stay comparable
// whichever path produced them.
package patterns

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mlefebvre/spamguard/internal/core"
)

// Keywords is the fixed spam vocabulary reported as indicators. Every match
// is collected, not just the first.
var Keywords = []string{
	"gratuit", "gagnant", "prix", "urgent", "félicitations",
	"cliquez", "offre", "promotion", "réduction", "loterie",
	"héritage", "argent", "crédit", "virement", "gagner",
	"free", "winner", "prize", "click", "offer", "discount",
	"lottery", "inheritance", "money", "credit", "transfer",
}

var (
	urlPattern = regexp.MustCompile(`https?://|www\.|\.com|\.net|\.org|\.fr`)
	// French 10-digit numbers, optionally in +33 form, with common separators.
	phonePattern = regexp.MustCompile(`(?:\+33[-. ]?|0)[1-9](?:[-. ]?\d{2}){4}`)
	moneyPattern = regexp.MustCompile(`[$€£¥₹]|\d+\s*(?:euros?|dollars?|usd|eur)`)
)

// Indicators returns every keyword present in the lowercased text.
func Indicators(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, kw := range Keywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// Detect computes the six pattern flags on the raw text.
func Detect(text string) core.Flags {
	var flags core.Flags
	lower := strings.ToLower(text)

	if strings.Count(text, "!") >= 3 {
		flags.MultipleExclamations = true
	}

	var alpha, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			alpha++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if alpha > 0 && float64(upper)/float64(alpha) > 0.6 {
		flags.AllCaps = true
	}

	if urlPattern.MatchString(lower) {
		flags.SuspiciousURL = true
	}
	if phonePattern.MatchString(text) {
		flags.PhoneNumber = true
	}
	if moneyPattern.MatchString(lower) {
		flags.MoneySymbol = true
	}

	if len(text) > 0 {
		punct := 0
		for _, r := range text {
			if strings.ContainsRune("!?.,;:", r) {
				punct++
			}
		}
		if float64(punct)/float64(len([]rune(text))) > 0.1 {
			flags.ExcessivePunctuation = true
		}
	}

	return flags
}
