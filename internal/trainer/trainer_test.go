package trainer_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/pipeline"
	"github.com/mlefebvre/spamguard/internal/textproc"
	"github.com/mlefebvre/spamguard/internal/trainer"
)

var datasetRows = [][]string{
	{"Gagner de l'argent gratuit, cliquez vite", "spam"},
	{"Félicitations, vous êtes le gagnant du prix", "spam"},
	{"URGENT offre exclusive, virement immédiat", "spam"},
	{"Promotion incroyable, réduction sur tout", "spam"},
	{"Loterie nationale, votre héritage vous attend", "spam"},
	{"Crédit gratuit sans justificatif, cliquez", "spam"},
	{"Salut, tu viens manger ce soir", "ham"},
	{"Je passe te chercher demain matin", "ham"},
	{"La réunion est déplacée à quinze heures", "ham"},
	{"Merci pour le dîner, c'était délicieux", "ham"},
	{"On se retrouve au parc avec les enfants", "ham"},
	{"Peux-tu racheter du pain en rentrant", "ham"},
}

func writeDataset(t *testing.T, dir string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(dir, "dataset.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write([]string{"text_fr", "labels"}))
	require.NoError(t, w.WriteAll(rows))
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func testConfig(t *testing.T, datasetPath string) trainer.Config {
	t.Helper()
	return trainer.Config{
		DatasetPath:  datasetPath,
		ArtifactPath: filepath.Join(t.TempDir(), "model.gob"),
		TextColumn:   "text_fr",
		LabelColumn:  "labels",
		TestFraction: 0.2,
		Seed:         42,
		Alpha:        1.0,
		NGramMax:     2,
		Normalizer:   textproc.Options{StripDiacritics: true, Leetspeak: true, Stemming: true},
	}
}

func TestTrainProducesArtifact(t *testing.T) {
	cfg := testConfig(t, writeDataset(t, t.TempDir(), datasetRows))

	report, err := trainer.Train(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, len(datasetRows), report.TrainSize+report.TestSize)
	assert.Positive(t, report.VocabularySize)
	assert.GreaterOrEqual(t, report.Accuracy, 0.0)
	assert.LessOrEqual(t, report.Accuracy, 1.0)
	assert.Contains(t, report.PerClass, "spam")
	assert.Contains(t, report.PerClass, "ham")

	p, err := pipeline.Load(cfg.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Normalizer, p.Normalizer)
	assert.Equal(t, report.Accuracy, p.Accuracy)

	label, _, err := p.Predict("argent gratuit, cliquez pour gagner")
	require.NoError(t, err)
	assert.Equal(t, "spam", label)
}

func TestTrainDeterministicForFixedSeed(t *testing.T) {
	dataset := writeDataset(t, t.TempDir(), datasetRows)

	first, err := trainer.Train(testConfig(t, dataset), zap.NewNop())
	require.NoError(t, err)
	second, err := trainer.Train(testConfig(t, dataset), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, first.Accuracy, second.Accuracy)
	assert.Equal(t, first.TrainSize, second.TrainSize)
	assert.Equal(t, first.VocabularySize, second.VocabularySize)
	assert.Equal(t, first.PerClass, second.PerClass)
}

func TestTrainMissingDataset(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent.csv"))

	_, err := trainer.Train(cfg, zap.NewNop())
	assert.ErrorIs(t, err, trainer.ErrDatasetMissing)
}

func TestTrainRejectsUnknownLabel(t *testing.T) {
	rows := append([][]string{}, datasetRows...)
	rows = append(rows, []string{"message douteux", "peut-etre"})
	cfg := testConfig(t, writeDataset(t, t.TempDir(), rows))

	_, err := trainer.Train(cfg, zap.NewNop())
	assert.ErrorIs(t, err, trainer.ErrDatasetInvalid)
}

func TestTrainRejectsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte("message,category\nbonjour,ham\n"), 0o644))

	cfg := testConfig(t, path)
	_, err := trainer.Train(cfg, zap.NewNop())
	assert.ErrorIs(t, err, trainer.ErrDatasetInvalid)
}

func TestTrainRejectsSingleClass(t *testing.T) {
	rows := [][]string{
		{"Salut, tu viens manger ce soir", "ham"},
		{"Je passe te chercher demain matin", "ham"},
		{"On se retrouve au parc", "ham"},
	}
	cfg := testConfig(t, writeDataset(t, t.TempDir(), rows))

	_, err := trainer.Train(cfg, zap.NewNop())
	assert.ErrorIs(t, err, trainer.ErrClassImbalance)
}

func TestTrainRejectsUndersizedClass(t *testing.T) {
	rows := [][]string{
		{"Gagner de l'argent gratuit", "spam"},
		{"Salut, tu viens manger ce soir", "ham"},
		{"Je passe te chercher demain matin", "ham"},
	}
	cfg := testConfig(t, writeDataset(t, t.TempDir(), rows))

	_, err := trainer.Train(cfg, zap.NewNop())
	assert.ErrorIs(t, err, trainer.ErrClassImbalance)
}

func TestTrainFailureLeavesNoArtifact(t *testing.T) {
	rows := [][]string{
		{"Salut, tu viens manger ce soir", "ham"},
		{"Je passe te chercher demain matin", "ham"},
	}
	cfg := testConfig(t, writeDataset(t, t.TempDir(), rows))

	_, err := trainer.Train(cfg, zap.NewNop())
	require.Error(t, err)

	_, err = pipeline.Load(cfg.ArtifactPath)
	assert.ErrorIs(t, err, pipeline.ErrArtifactMissing)
}

func TestTrainRejectsBadTestFraction(t *testing.T) {
	for _, fraction := range []float64{0, -0.1, 1, 1.5} {
		cfg := testConfig(t, writeDataset(t, t.TempDir(), datasetRows))
		cfg.TestFraction = fraction
		_, err := trainer.Train(cfg, zap.NewNop())
		assert.ErrorIs(t, err, trainer.ErrDatasetInvalid, "fraction %v", fraction)
	}
}

func TestServiceAppendAndRetrain(t *testing.T) {
	dataset := writeDataset(t, t.TempDir(), datasetRows)
	cfg := testConfig(t, dataset)
	svc := trainer.NewService(cfg, zap.NewNop())

	report, err := svc.AppendAndRetrain("Nouvelle promotion urgente, argent facile", "spam")
	require.NoError(t, err)
	assert.Equal(t, len(datasetRows)+1, report.TrainSize+report.TestSize)

	// The example must be persisted in the dataset, not only used once.
	report, err = svc.Retrain()
	require.NoError(t, err)
	assert.Equal(t, len(datasetRows)+1, report.TrainSize+report.TestSize)
}

func TestServiceAppendToDatasetWithoutTrailingNewline(t *testing.T) {
	dataset := writeDataset(t, t.TempDir(), datasetRows)

	// Simulate a hand-edited dataset whose last line lacks a newline.
	raw, err := os.ReadFile(dataset)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dataset, bytes.TrimRight(raw, "\n"), 0o644))

	cfg := testConfig(t, dataset)
	svc := trainer.NewService(cfg, zap.NewNop())

	report, err := svc.AppendAndRetrain("Nouvelle promotion urgente, argent facile", "spam")
	require.NoError(t, err)
	// The appended row must land on its own line, not merge into the
	// previous record.
	assert.Equal(t, len(datasetRows)+1, report.TrainSize+report.TestSize)
}

func TestServiceAppendRejectsBadInput(t *testing.T) {
	cfg := testConfig(t, writeDataset(t, t.TempDir(), datasetRows))
	svc := trainer.NewService(cfg, zap.NewNop())

	_, err := svc.AppendAndRetrain("texte", "unknown")
	assert.ErrorIs(t, err, trainer.ErrDatasetInvalid)

	_, err = svc.AppendAndRetrain("", "spam")
	assert.ErrorIs(t, err, trainer.ErrDatasetInvalid)
}
