package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/config"
	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/factory"
	"github.com/mlefebvre/spamguard/internal/logging"
)

var (
	// Detection flags
	artifactPath = flag.String("artifact", "", "Path to the trained model artifact")
	noJitter     = flag.Bool("no-jitter", false, "Disable confidence jitter in the rule-based fallback")
	jitterSeed   = flag.Int64("jitter-seed", 0, "Seed for the fallback confidence jitter (0 uses the clock)")

	// Input flags
	inputFile  = flag.String("file", "", "Input text file (use the argument or stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Build the hybrid detection service
	detectorFactory := factory.NewDetectorFactory(cfg, logger)
	service := detectorFactory.CreateSpamService()

	// Read the message from the argument, a file or stdin
	text, err := readText(logger)
	if err != nil {
		logger.Fatal("Failed to read input text", zap.Error(err))
	}

	// Print message summary
	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("Length: %d bytes\n", len(text))
	fmt.Printf("Artifact: %s\n", cfg.GetDetector().ArtifactPath)
	fmt.Printf("\n")

	startTime := time.Now()
	result := service.Analyze(text)
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("=== Results ===\n")
	fmt.Printf("Is spam: %t\n", result.IsSpam)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	fmt.Printf("Spam level: %s\n", core.SpamLevel(result.Confidence))
	fmt.Printf("Method: %s\n", result.Method)
	if len(result.Indicators) > 0 {
		fmt.Printf("Indicators: %s\n", strings.Join(result.Indicators, ", "))
	}
	fmt.Printf("Flags: exclamations=%t caps=%t url=%t phone=%t money=%t punctuation=%t\n",
		result.Flags.MultipleExclamations,
		result.Flags.AllCaps,
		result.Flags.SuspiciousURL,
		result.Flags.PhoneNumber,
		result.Flags.MoneySymbol,
		result.Flags.ExcessivePunctuation)
	fmt.Printf("Processing time: %v\n", duration)
}

// readText reads the message to analyze from the first positional argument,
// the -file flag, or stdin in that order of preference
func readText(logger *zap.Logger) (string, error) {
	if flag.NArg() > 0 {
		return strings.Join(flag.Args(), " "), nil
	}

	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file %s: %w", *inputFile, err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading message from file", zap.String("file", *inputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	data, err := io.ReadAll(bufio.NewReader(reader))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	if *artifactPath != "" {
		v.Set("detector.artifact_path", *artifactPath)
	}
	v.Set("detector.jitter", !*noJitter)
	v.Set("detector.jitter_seed", *jitterSeed)

	return config.NewFromViper(v)
}
