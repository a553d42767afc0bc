package bayes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlefebvre/spamguard/internal/bayes"
	"github.com/mlefebvre/spamguard/internal/features"
)

// Tiny two-class problem: feature 0 fires for spam, feature 1 for ham.
func fitToy(t *testing.T) *bayes.Classifier {
	t.Helper()
	c := bayes.NewClassifier(1.0)
	samples := []features.Vector{
		{0: 1},
		{0: 1},
		{1: 1},
		{1: 1},
	}
	labels := []string{"spam", "spam", "ham", "ham"}
	require.NoError(t, c.Fit(samples, labels, 2))
	return c
}

func TestPredictSeparatesClasses(t *testing.T) {
	c := fitToy(t)

	got, err := c.Predict(features.Vector{0: 1})
	require.NoError(t, err)
	assert.Equal(t, "spam", got)

	got, err = c.Predict(features.Vector{1: 1})
	require.NoError(t, err)
	assert.Equal(t, "ham", got)
}

func TestPredictProbaSumsToOne(t *testing.T) {
	c := fitToy(t)

	for _, vec := range []features.Vector{
		{0: 1},
		{1: 0.5},
		{},
	} {
		probs, err := c.PredictProba(vec)
		require.NoError(t, err)
		require.Len(t, probs, 2)

		var sum float64
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestPredictProbaEmptyVectorFollowsPriors(t *testing.T) {
	// Three spam documents against one ham document. With no features an
	// input can only be scored by the class priors.
	c := bayes.NewClassifier(1.0)
	samples := []features.Vector{{0: 1}, {0: 1}, {0: 1}, {1: 1}}
	labels := []string{"spam", "spam", "spam", "ham"}
	require.NoError(t, c.Fit(samples, labels, 2))

	probs, err := c.PredictProba(features.Vector{})
	require.NoError(t, err)
	assert.Greater(t, probs["spam"], probs["ham"])
}

func TestSmoothingKeepsUnseenFeaturesFinite(t *testing.T) {
	c := fitToy(t)

	// Feature 1 never occurred in spam training documents; with Laplace
	// smoothing it must not drive the posterior to exactly zero.
	probs, err := c.PredictProba(features.Vector{1: 1})
	require.NoError(t, err)
	assert.Greater(t, probs["spam"], 0.0)
}

func TestFitRejectsSingleClass(t *testing.T) {
	c := bayes.NewClassifier(1.0)
	err := c.Fit([]features.Vector{{0: 1}, {1: 1}}, []string{"spam", "spam"}, 2)
	assert.ErrorIs(t, err, bayes.ErrSingleClass)
}

func TestFitRejectsLengthMismatch(t *testing.T) {
	c := bayes.NewClassifier(1.0)
	err := c.Fit([]features.Vector{{0: 1}}, []string{"spam", "ham"}, 2)
	assert.Error(t, err)
}

func TestPredictBeforeFit(t *testing.T) {
	c := bayes.NewClassifier(1.0)
	_, err := c.Predict(features.Vector{0: 1})
	assert.ErrorIs(t, err, bayes.ErrNotFitted)
}

func TestNewClassifierClampsAlpha(t *testing.T) {
	assert.Equal(t, 1.0, bayes.NewClassifier(0).Alpha)
	assert.Equal(t, 1.0, bayes.NewClassifier(-3).Alpha)
	assert.Equal(t, 0.5, bayes.NewClassifier(0.5).Alpha)
}

func TestLabelsSorted(t *testing.T) {
	c := fitToy(t)
	assert.Equal(t, []string{"ham", "spam"}, c.Labels)
}
