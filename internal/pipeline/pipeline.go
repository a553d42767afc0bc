// Package pipeline bundles a fitted feature extractor and classifier with
// the normalizer options they were fitted under, and persists the whole unit
// as one gob artifact. The artifact is immutable: retraining writes a new
// blob and atomically replaces the old one.
package pipeline

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mlefebvre/spamguard/internal/bayes"
	"github.com/mlefebvre/spamguard/internal/features"
	"github.com/mlefebvre/spamguard/internal/textproc"
)

// ErrArtifactMissing is returned by Load when no artifact exists at the
// given path.
var ErrArtifactMissing = errors.New("pipeline: model artifact missing")

// Pipeline is the fitted model artifact. The recorded normalizer options
// guarantee inference normalizes text exactly as training did.
type Pipeline struct {
	Normalizer textproc.Options
	Vectorizer *features.Vectorizer
	Classifier *bayes.Classifier
	Accuracy   float64
	TrainedAt  time.Time

	normOnce sync.Once
	norm     *textproc.Normalizer
}

// Predict classifies a single message, returning the winning label and the
// full class-probability distribution.
func (p *Pipeline) Predict(text string) (string, map[string]float64, error) {
	p.normOnce.Do(func() {
		p.norm = textproc.New(p.Normalizer)
	})
	tokens := p.norm.Normalize(text)
	vec := p.Vectorizer.Transform(tokens)
	probs, err := p.Classifier.PredictProba(vec)
	if err != nil {
		return "", nil, err
	}
	label, err := p.Classifier.Predict(vec)
	if err != nil {
		return "", nil, err
	}
	return label, probs, nil
}

// Save writes the artifact to path via a temp file and rename, so readers
// never observe a partial blob.
func (p *Pipeline) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pipeline: create artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.gob")
	if err != nil {
		return fmt.Errorf("pipeline: create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(p); err != nil {
		tmp.Close()
		return fmt.Errorf("pipeline: encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pipeline: close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("pipeline: replace artifact: %w", err)
	}
	return nil
}

// Load reads a persisted artifact. A missing file maps to ErrArtifactMissing
// so callers can distinguish absence from corruption.
func Load(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("pipeline: open artifact: %w", err)
	}
	defer f.Close()

	var p Pipeline
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("pipeline: decode artifact %s: %w", path, err)
	}
	if p.Vectorizer == nil || p.Classifier == nil {
		return nil, fmt.Errorf("pipeline: artifact %s is incomplete", path)
	}
	return &p, nil
}
