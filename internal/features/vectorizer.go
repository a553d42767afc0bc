// Package features converts token sequences into weighted numeric vectors.
//
// A Vectorizer is fitted once on a training corpus: it collects every n-gram
// up to a configured order, assigns each a stable index, and records smoothed
// inverse-document-frequency weights. Transform then produces sparse TF-IDF
// vectors against that frozen vocabulary; n-grams unseen at fit time are
// silently ignored.
package features

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// ErrEmptyCorpus is returned when fitting yields no vocabulary at all.
var ErrEmptyCorpus = errors.New("features: empty corpus, no n-grams to index")

// Vector is a sparse feature vector keyed by vocabulary index.
type Vector map[int]float64

// Vectorizer holds the fit-time vocabulary and IDF weights. Fields are
// exported for gob persistence and must not be mutated after fitting.
type Vectorizer struct {
	NGramMax   int
	Vocabulary map[string]int
	IDF        []float64
}

// NewVectorizer creates an unfitted vectorizer producing 1..nGramMax grams.
func NewVectorizer(nGramMax int) *Vectorizer {
	if nGramMax < 1 {
		nGramMax = 1
	}
	return &Vectorizer{NGramMax: nGramMax}
}

// Fit builds the vocabulary and IDF table from a corpus of token sequences.
func (v *Vectorizer) Fit(corpus [][]string) error {
	df := make(map[string]int)
	for _, tokens := range corpus {
		seen := make(map[string]struct{})
		for _, gram := range v.ngrams(tokens) {
			if _, ok := seen[gram]; ok {
				continue
			}
			seen[gram] = struct{}{}
			df[gram]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyCorpus
	}

	// Sorted terms give every n-gram a stable index across refits of the
	// same corpus.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return nil
}

// Transform counts known n-grams in tokens and applies IDF weighting with L2
// normalization. Unknown n-grams are skipped; an all-unknown input yields an
// empty vector.
func (v *Vectorizer) Transform(tokens []string) Vector {
	vec := make(Vector)
	for _, gram := range v.ngrams(tokens) {
		if idx, ok := v.Vocabulary[gram]; ok {
			vec[idx]++
		}
	}
	var sumSq float64
	for idx := range vec {
		vec[idx] *= v.IDF[idx]
		sumSq += vec[idx] * vec[idx]
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// Dimension reports the fitted vocabulary size.
func (v *Vectorizer) Dimension() int {
	return len(v.Vocabulary)
}

func (v *Vectorizer) ngrams(tokens []string) []string {
	grams := make([]string, 0, len(tokens)*v.NGramMax)
	for n := 1; n <= v.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
