// Package detector provides the two detection paths behind the hybrid
// service: an inference engine backed by the persisted model artifact and a
// deterministic rule-based scorer used when the engine is unavailable.
package detector

import (
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/patterns"
	"github.com/mlefebvre/spamguard/internal/pipeline"
)

// Engine is the ML inference path. The artifact is loaded lazily exactly
// once per process; after a successful load it is read-only, so concurrent
// analyses need no locking.
type Engine struct {
	artifactPath string
	logger       *zap.Logger

	loadOnce sync.Once
	pipe     *pipeline.Pipeline
	loadErr  error
}

// NewEngine creates an engine reading the artifact at path on first use.
func NewEngine(artifactPath string, logger *zap.Logger) *Engine {
	return &Engine{
		artifactPath: artifactPath,
		logger:       logger,
	}
}

// Analyze classifies a message with the fitted pipeline and augments the
// prediction with pattern flags and keyword indicators computed on the raw
// text. It returns an error when the artifact cannot be loaded or the
// prediction fails; the hybrid service recovers from both.
func (e *Engine) Analyze(text string) (*core.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return core.EmptyResult(core.MethodML), nil
	}

	e.loadOnce.Do(func() {
		e.pipe, e.loadErr = pipeline.Load(e.artifactPath)
		if e.loadErr != nil {
			return
		}
		e.logger.Info("Loaded model artifact",
			zap.String("path", e.artifactPath),
			zap.Int("vocabulary_size", e.pipe.Vectorizer.Dimension()),
			zap.Float64("training_accuracy", e.pipe.Accuracy),
			zap.Time("trained_at", e.pipe.TrainedAt))
	})
	if e.loadErr != nil {
		return nil, e.loadErr
	}

	label, probs, err := e.pipe.Predict(text)
	if err != nil {
		return nil, err
	}

	return &core.AnalysisResult{
		IsSpam:     label == core.LabelSpam,
		Confidence: round2(probs[label] * 100),
		Indicators: patterns.Indicators(text),
		Flags:      patterns.Detect(text),
		Method:     core.MethodML,
		AnalyzedAt: time.Now(),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
