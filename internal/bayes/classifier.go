// Package bayes implements a multinomial Naive Bayes classifier over sparse
// feature vectors. All probability accumulation happens in log space and
// posteriors are normalized with a softmax, so PredictProba returns a
// calibrated distribution summing to one.
package bayes

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mlefebvre/spamguard/internal/features"
)

var (
	// ErrNotFitted is returned when predicting before Fit.
	ErrNotFitted = errors.New("bayes: classifier is not fitted")
	// ErrSingleClass is returned when the training data contains fewer than
	// two classes; a one-class fit is meaningless.
	ErrSingleClass = errors.New("bayes: training data must contain at least two classes")
)

// Classifier holds fitted class-conditional statistics. Fields are exported
// for gob persistence and are read-only after Fit.
type Classifier struct {
	Alpha          float64
	Labels         []string
	ClassLogPrior  []float64
	FeatureLogProb [][]float64
}

// NewClassifier creates a classifier with the given Laplace smoothing
// parameter. Alpha must be positive; zero or negative falls back to 1.
func NewClassifier(alpha float64) *Classifier {
	if alpha <= 0 {
		alpha = 1
	}
	return &Classifier{Alpha: alpha}
}

// Fit learns class priors and per-feature log likelihoods from samples. dim
// is the fitted vocabulary size of the vectorizer that produced the vectors.
func (c *Classifier) Fit(samples []features.Vector, labels []string, dim int) error {
	if len(samples) != len(labels) {
		return fmt.Errorf("bayes: %d samples but %d labels", len(samples), len(labels))
	}
	classSet := make(map[string]struct{})
	for _, l := range labels {
		classSet[l] = struct{}{}
	}
	if len(classSet) < 2 {
		return ErrSingleClass
	}

	c.Labels = make([]string, 0, len(classSet))
	for l := range classSet {
		c.Labels = append(c.Labels, l)
	}
	sort.Strings(c.Labels)

	classIdx := make(map[string]int, len(c.Labels))
	for i, l := range c.Labels {
		classIdx[l] = i
	}

	counts := make([][]float64, len(c.Labels))
	totals := make([]float64, len(c.Labels))
	docs := make([]float64, len(c.Labels))
	for i := range counts {
		counts[i] = make([]float64, dim)
	}
	for i, vec := range samples {
		ci := classIdx[labels[i]]
		docs[ci]++
		for idx, val := range vec {
			counts[ci][idx] += val
			totals[ci] += val
		}
	}

	c.ClassLogPrior = make([]float64, len(c.Labels))
	c.FeatureLogProb = make([][]float64, len(c.Labels))
	vocab := float64(dim)
	for ci := range c.Labels {
		c.ClassLogPrior[ci] = math.Log(docs[ci] / float64(len(samples)))
		c.FeatureLogProb[ci] = make([]float64, dim)
		denom := totals[ci] + c.Alpha*vocab
		for idx := 0; idx < dim; idx++ {
			c.FeatureLogProb[ci][idx] = math.Log((counts[ci][idx] + c.Alpha) / denom)
		}
	}
	return nil
}

// Predict returns the most probable label for the vector.
func (c *Classifier) Predict(vec features.Vector) (string, error) {
	probs, err := c.PredictProba(vec)
	if err != nil {
		return "", err
	}
	best, bestP := "", math.Inf(-1)
	for _, label := range c.Labels {
		if p := probs[label]; p > bestP {
			best, bestP = label, p
		}
	}
	return best, nil
}

// PredictProba returns the posterior probability for each class. The values
// sum to 1 within floating tolerance.
func (c *Classifier) PredictProba(vec features.Vector) (map[string]float64, error) {
	if len(c.Labels) == 0 {
		return nil, ErrNotFitted
	}
	joint := make([]float64, len(c.Labels))
	for ci := range c.Labels {
		score := c.ClassLogPrior[ci]
		logProb := c.FeatureLogProb[ci]
		for idx, val := range vec {
			if idx >= 0 && idx < len(logProb) {
				score += val * logProb[idx]
			}
		}
		joint[ci] = score
	}

	// Softmax with max subtraction for numeric stability.
	maxScore := joint[0]
	for _, s := range joint[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	exp := make([]float64, len(joint))
	for i, s := range joint {
		exp[i] = math.Exp(s - maxScore)
		sum += exp[i]
	}
	probs := make(map[string]float64, len(c.Labels))
	for i, label := range c.Labels {
		probs[label] = exp[i] / sum
	}
	return probs, nil
}
