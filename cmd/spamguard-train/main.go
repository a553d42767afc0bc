package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/config"
	"github.com/mlefebvre/spamguard/internal/logging"
	"github.com/mlefebvre/spamguard/internal/textproc"
	"github.com/mlefebvre/spamguard/internal/trainer"
)

var (
	// Dataset flags
	datasetPath  = flag.String("dataset", "", "Path to the training CSV")
	artifactPath = flag.String("artifact", "", "Output path for the trained model artifact")
	textColumn   = flag.String("text-column", "", "Name of the CSV column holding the message text")
	labelColumn  = flag.String("label-column", "", "Name of the CSV column holding the label")

	// Training flags
	testFraction = flag.Float64("test-fraction", 0, "Fraction of the dataset held out for evaluation")
	seed         = flag.Int64("seed", 0, "Seed for the train/test split")
	alpha        = flag.Float64("alpha", 0, "Laplace smoothing strength")
	ngramMax     = flag.Int("ngram-max", 0, "Maximum n-gram length for the vectorizer")

	// Normalizer flags
	keepDiacritics = flag.Bool("keep-diacritics", false, "Keep accents instead of stripping them")
	noLeetspeak    = flag.Bool("no-leetspeak", false, "Disable leetspeak digit substitution")
	noStemming     = flag.Bool("no-stemming", false, "Disable French stemming")

	// Append flags
	appendText  = flag.String("append-text", "", "Append this example to the dataset before training")
	appendLabel = flag.String("append-label", "", "Label for the appended example (spam or ham)")

	// Logging flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (flags override its values)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	trainCfg := buildTrainerConfig(cfg)
	service := trainer.NewService(trainCfg, logger)

	var report *trainer.Report
	if *appendText != "" || *appendLabel != "" {
		if *appendText == "" || *appendLabel == "" {
			logger.Fatal("Both -append-text and -append-label are required to append an example")
		}
		report, err = service.AppendAndRetrain(*appendText, *appendLabel)
	} else {
		report, err = service.Retrain()
	}
	if err != nil {
		logger.Fatal("Training failed", zap.Error(err))
	}

	printReport(trainCfg, report)
}

func loadConfig(logger *zap.Logger) (*config.Config, error) {
	if *configFile == "" {
		return config.NewFromViper(config.NewEmptyViper()), nil
	}
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	return cfg, nil
}

// buildTrainerConfig merges configuration values with any flags that were
// explicitly set on the command line.
func buildTrainerConfig(cfg *config.Config) trainer.Config {
	training := cfg.GetTraining()
	trainCfg := trainer.Config{
		DatasetPath:  training.DatasetPath,
		ArtifactPath: cfg.GetDetector().ArtifactPath,
		TextColumn:   training.TextColumn,
		LabelColumn:  training.LabelColumn,
		TestFraction: training.TestFraction,
		Seed:         training.Seed,
		Alpha:        training.Alpha,
		NGramMax:     training.NGramMax,
		Normalizer: textproc.Options{
			StripDiacritics: training.StripDiacritics,
			Leetspeak:       training.Leetspeak,
			Stemming:        training.Stemming,
		},
	}

	if *datasetPath != "" {
		trainCfg.DatasetPath = *datasetPath
	}
	if *artifactPath != "" {
		trainCfg.ArtifactPath = *artifactPath
	}
	if *textColumn != "" {
		trainCfg.TextColumn = *textColumn
	}
	if *labelColumn != "" {
		trainCfg.LabelColumn = *labelColumn
	}
	if *testFraction > 0 {
		trainCfg.TestFraction = *testFraction
	}
	if *seed != 0 {
		trainCfg.Seed = *seed
	}
	if *alpha > 0 {
		trainCfg.Alpha = *alpha
	}
	if *ngramMax > 0 {
		trainCfg.NGramMax = *ngramMax
	}
	if *keepDiacritics {
		trainCfg.Normalizer.StripDiacritics = false
	}
	if *noLeetspeak {
		trainCfg.Normalizer.Leetspeak = false
	}
	if *noStemming {
		trainCfg.Normalizer.Stemming = false
	}
	return trainCfg
}

func printReport(cfg trainer.Config, report *trainer.Report) {
	fmt.Printf("\n=== Training Report ===\n")
	fmt.Printf("Dataset: %s\n", cfg.DatasetPath)
	fmt.Printf("Artifact: %s\n", cfg.ArtifactPath)
	fmt.Printf("Train size: %d\n", report.TrainSize)
	fmt.Printf("Test size: %d\n", report.TestSize)
	fmt.Printf("Vocabulary size: %d\n", report.VocabularySize)
	fmt.Printf("Accuracy: %.4f\n", report.Accuracy)

	classes := make([]string, 0, len(report.PerClass))
	for class := range report.PerClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	fmt.Printf("\n=== Per-class Metrics ===\n")
	for _, class := range classes {
		m := report.PerClass[class]
		fmt.Printf("%-10s precision=%.4f recall=%.4f f1=%.4f support=%d\n",
			class, m.Precision, m.Recall, m.F1, m.Support)
	}
}
