package core

import (
	"go.uber.org/zap"
)

// SpamService is the single entry point for spam analysis. It tries the ML
// path first and degrades to the rule-based path on any failure; a pipeline
// error never reaches the caller.
type SpamService struct {
	ml       Analyzer
	fallback FallbackAnalyzer
	logger   *zap.Logger
}

// NewSpamService creates a new hybrid spam detection service.
func NewSpamService(ml Analyzer, fallback FallbackAnalyzer, logger *zap.Logger) *SpamService {
	return &SpamService{
		ml:       ml,
		fallback: fallback,
		logger:   logger,
	}
}

// Analyze classifies a message, marking the result with the path that
// produced it ("ml" or "rules").
func (s *SpamService) Analyze(text string) *AnalysisResult {
	result, err := s.ml.Analyze(text)
	if err == nil {
		return result
	}

	s.logger.Warn("ML analysis unavailable, using rule-based fallback",
		zap.Error(err),
		zap.String("method", MethodRules))
	return s.fallback.Analyze(text)
}
