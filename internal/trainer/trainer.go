// Package trainer fits the full pipeline from a labeled CSV dataset,
// evaluates it on a held-out split, and persists the fitted artifact. A
// failed run never writes or overwrites an artifact.
package trainer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/bayes"
	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/features"
	"github.com/mlefebvre/spamguard/internal/pipeline"
	"github.com/mlefebvre/spamguard/internal/textproc"
)

var (
	// ErrDatasetMissing is returned when the dataset file cannot be read.
	ErrDatasetMissing = errors.New("trainer: dataset missing or unreadable")
	// ErrDatasetInvalid is returned for malformed rows, unknown labels or
	// missing columns.
	ErrDatasetInvalid = errors.New("trainer: dataset invalid")
	// ErrClassImbalance is returned when a class cannot appear in both
	// splits.
	ErrClassImbalance = errors.New("trainer: a class is missing from a training split")
)

// Config controls a training run.
type Config struct {
	DatasetPath  string
	ArtifactPath string
	TextColumn   string
	LabelColumn  string
	TestFraction float64
	Seed         int64
	Alpha        float64
	NGramMax     int
	Normalizer   textproc.Options
}

// ClassMetrics is the held-out evaluation for one class.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes a completed training run.
type Report struct {
	Accuracy       float64
	PerClass       map[string]ClassMetrics
	TrainSize      int
	TestSize       int
	VocabularySize int
}

type sample struct {
	text  string
	label string
}

// Train runs the full fit-evaluate-persist cycle. It is deterministic for a
// fixed dataset and seed.
func Train(cfg Config, logger *zap.Logger) (*Report, error) {
	samples, err := loadDataset(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded dataset",
		zap.String("path", cfg.DatasetPath),
		zap.Int("messages", len(samples)))

	train, test, err := stratifiedSplit(samples, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("Split dataset",
		zap.Int("train", len(train)),
		zap.Int("test", len(test)))

	normalizer := textproc.New(cfg.Normalizer)
	corpus := make([][]string, len(train))
	labels := make([]string, len(train))
	for i, s := range train {
		corpus[i] = normalizer.Normalize(s.text)
		labels[i] = s.label
	}

	vectorizer := features.NewVectorizer(cfg.NGramMax)
	if err := vectorizer.Fit(corpus); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetInvalid, err)
	}
	vectors := make([]features.Vector, len(corpus))
	for i, tokens := range corpus {
		vectors[i] = vectorizer.Transform(tokens)
	}

	classifier := bayes.NewClassifier(cfg.Alpha)
	if err := classifier.Fit(vectors, labels, vectorizer.Dimension()); err != nil {
		return nil, err
	}

	report := evaluate(normalizer, vectorizer, classifier, test)
	report.TrainSize = len(train)
	report.TestSize = len(test)
	report.VocabularySize = vectorizer.Dimension()
	logger.Info("Evaluated model",
		zap.Float64("accuracy", report.Accuracy),
		zap.Int("vocabulary_size", report.VocabularySize))

	pipe := &pipeline.Pipeline{
		Normalizer: cfg.Normalizer,
		Vectorizer: vectorizer,
		Classifier: classifier,
		Accuracy:   report.Accuracy,
		TrainedAt:  time.Now(),
	}
	if err := pipe.Save(cfg.ArtifactPath); err != nil {
		return nil, err
	}
	logger.Info("Persisted model artifact", zap.String("path", cfg.ArtifactPath))

	return report, nil
}

// loadDataset reads and validates the labeled CSV dataset.
func loadDataset(cfg Config) ([]sample, error) {
	f, err := os.Open(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetMissing, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetMissing, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: no data rows", ErrDatasetInvalid)
	}

	textIdx, labelIdx := -1, -1
	for i, name := range rows[0] {
		switch name {
		case cfg.TextColumn:
			textIdx = i
		case cfg.LabelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("%w: columns %q and %q required", ErrDatasetInvalid, cfg.TextColumn, cfg.LabelColumn)
	}

	samples := make([]sample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if textIdx >= len(row) || labelIdx >= len(row) {
			return nil, fmt.Errorf("%w: row %d has %d fields", ErrDatasetInvalid, i+2, len(row))
		}
		label := row[labelIdx]
		if label != core.LabelSpam && label != core.LabelHam {
			return nil, fmt.Errorf("%w: row %d has unknown label %q", ErrDatasetInvalid, i+2, label)
		}
		samples = append(samples, sample{text: row[textIdx], label: label})
	}
	return samples, nil
}

// stratifiedSplit partitions samples so that every class present in the
// dataset appears in both splits. The partition is reproducible for a fixed
// seed.
func stratifiedSplit(samples []sample, testFraction float64, seed int64) (train, test []sample, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("%w: test fraction %v out of range", ErrDatasetInvalid, testFraction)
	}

	byClass := make(map[string][]sample)
	for _, s := range samples {
		byClass[s.label] = append(byClass[s.label], s)
	}
	if len(byClass) < 2 {
		return nil, nil, fmt.Errorf("%w: dataset contains a single class", ErrClassImbalance)
	}

	classes := make([]string, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	rng := rand.New(rand.NewSource(seed))
	for _, class := range classes {
		group := byClass[class]
		if len(group) < 2 {
			return nil, nil, fmt.Errorf("%w: class %q has %d sample(s), need at least 2",
				ErrClassImbalance, class, len(group))
		}
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		nTest := int(float64(len(group)) * testFraction)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(group) {
			nTest = len(group) - 1
		}
		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test, nil
}

// evaluate computes accuracy and per-class precision/recall/F1 on the
// held-out set.
func evaluate(normalizer *textproc.Normalizer, vectorizer *features.Vectorizer, classifier *bayes.Classifier, test []sample) *Report {
	truePos := make(map[string]int)
	falsePos := make(map[string]int)
	falseNeg := make(map[string]int)
	support := make(map[string]int)
	correct := 0

	for _, s := range test {
		vec := vectorizer.Transform(normalizer.Normalize(s.text))
		predicted, err := classifier.Predict(vec)
		if err != nil {
			continue
		}
		support[s.label]++
		if predicted == s.label {
			correct++
			truePos[s.label]++
		} else {
			falsePos[predicted]++
			falseNeg[s.label]++
		}
	}

	perClass := make(map[string]ClassMetrics, len(classifier.Labels))
	for _, class := range classifier.Labels {
		tp := float64(truePos[class])
		var precision, recall, f1 float64
		if tp+float64(falsePos[class]) > 0 {
			precision = tp / (tp + float64(falsePos[class]))
		}
		if tp+float64(falseNeg[class]) > 0 {
			recall = tp / (tp + float64(falseNeg[class]))
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		perClass[class] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support[class],
		}
	}

	accuracy := 0.0
	if len(test) > 0 {
		accuracy = float64(correct) / float64(len(test))
	}
	return &Report{Accuracy: accuracy, PerClass: perClass}
}
