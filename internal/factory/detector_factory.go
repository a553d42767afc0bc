package factory

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/config"
	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/detector"
)

// DetectorFactory creates the detection paths based on configuration
type DetectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewDetectorFactory creates a new detector factory
func NewDetectorFactory(cfg *config.Config, logger *zap.Logger) *DetectorFactory {
	return &DetectorFactory{cfg: cfg, logger: logger}
}

// CreateEngine creates the ML inference engine
func (f *DetectorFactory) CreateEngine() *detector.Engine {
	return detector.NewEngine(f.cfg.GetDetector().ArtifactPath, f.logger)
}

// CreateRuleScorer creates the rule-based fallback scorer
func (f *DetectorFactory) CreateRuleScorer() *detector.RuleScorer {
	detectorCfg := f.cfg.GetDetector()
	var jitter *rand.Rand
	if detectorCfg.Jitter {
		jitter = detector.NewJitterSource(detectorCfg.JitterSeed)
	}
	return detector.NewRuleScorer(f.logger, jitter)
}

// CreateSpamService assembles the hybrid detection service
func (f *DetectorFactory) CreateSpamService() *core.SpamService {
	return core.NewSpamService(f.CreateEngine(), f.CreateRuleScorer(), f.logger)
}
