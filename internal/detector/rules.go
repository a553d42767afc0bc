package detector

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/patterns"
)

// Fixed weights for the rule-based score.
const (
	keywordWeight              = 15
	multipleExclamationsWeight = 20
	allCapsWeight              = 15
	suspiciousURLWeight        = 10
	phoneNumberWeight          = 5
	moneySymbolWeight          = 10
	excessivePunctuationWeight = 10

	spamThreshold = 30

	// The heuristic path reports confidence inside a deliberately narrow
	// band, reflecting lower trust than the calibrated ML probability.
	confidenceFloor   = 60
	confidenceCeiling = 95
	jitterRange       = 5
)

// RuleScorer is the deterministic fallback path: weighted keyword and
// pattern matching against a fixed threshold. With a nil jitter source its
// output is fully deterministic.
type RuleScorer struct {
	logger *zap.Logger

	mu     sync.Mutex
	jitter *rand.Rand
}

// NewRuleScorer creates a rule-based scorer. jitter may be nil to disable
// the confidence offset.
func NewRuleScorer(logger *zap.Logger, jitter *rand.Rand) *RuleScorer {
	return &RuleScorer{logger: logger, jitter: jitter}
}

// Analyze scores a message against the keyword list and pattern flags.
func (r *RuleScorer) Analyze(text string) *core.AnalysisResult {
	if strings.TrimSpace(text) == "" {
		return core.EmptyResult(core.MethodRules)
	}

	indicators := patterns.Indicators(text)
	flags := patterns.Detect(text)

	score := len(indicators) * keywordWeight
	if flags.MultipleExclamations {
		score += multipleExclamationsWeight
	}
	if flags.AllCaps {
		score += allCapsWeight
	}
	if flags.SuspiciousURL {
		score += suspiciousURLWeight
	}
	if flags.PhoneNumber {
		score += phoneNumberWeight
	}
	if flags.MoneySymbol {
		score += moneySymbolWeight
	}
	if flags.ExcessivePunctuation {
		score += excessivePunctuationWeight
	}

	confidence := clamp(score + 40)
	if r.jitter != nil {
		r.mu.Lock()
		offset := r.jitter.Intn(2*jitterRange+1) - jitterRange
		r.mu.Unlock()
		confidence = clamp(confidence + offset)
	}

	r.logger.Debug("Rule-based analysis",
		zap.Int("score", score),
		zap.Int("indicator_count", len(indicators)),
		zap.Bool("is_spam", score > spamThreshold))

	return &core.AnalysisResult{
		IsSpam:     score > spamThreshold,
		Confidence: float64(confidence),
		Indicators: indicators,
		Flags:      flags,
		Method:     core.MethodRules,
		AnalyzedAt: time.Now(),
	}
}

func clamp(v int) int {
	if v < confidenceFloor {
		return confidenceFloor
	}
	if v > confidenceCeiling {
		return confidenceCeiling
	}
	return v
}

// NewJitterSource builds the rand source for confidence jitter. A zero seed
// seeds from the clock.
func NewJitterSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
