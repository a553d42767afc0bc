package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/core"
)

type stubAnalyzer struct {
	result *core.AnalysisResult
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(_ string) (*core.AnalysisResult, error) {
	s.calls++
	return s.result, s.err
}

type stubFallback struct {
	result *core.AnalysisResult
	calls  int
}

func (s *stubFallback) Analyze(_ string) *core.AnalysisResult {
	s.calls++
	return s.result
}

func TestAnalyzeUsesMLPath(t *testing.T) {
	ml := &stubAnalyzer{result: &core.AnalysisResult{IsSpam: true, Confidence: 87.5, Method: core.MethodML}}
	fallback := &stubFallback{result: &core.AnalysisResult{Method: core.MethodRules}}
	svc := core.NewSpamService(ml, fallback, zap.NewNop())

	result := svc.Analyze("gagner de l'argent")

	require.NotNil(t, result)
	assert.Equal(t, core.MethodML, result.Method)
	assert.True(t, result.IsSpam)
	assert.Equal(t, 1, ml.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestAnalyzeFallsBackOnMLFailure(t *testing.T) {
	ml := &stubAnalyzer{err: errors.New("artifact missing")}
	fallback := &stubFallback{result: &core.AnalysisResult{IsSpam: true, Confidence: 75, Method: core.MethodRules}}
	svc := core.NewSpamService(ml, fallback, zap.NewNop())

	result := svc.Analyze("gagner de l'argent")

	require.NotNil(t, result)
	assert.Equal(t, core.MethodRules, result.Method)
	assert.Equal(t, 1, ml.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestSpamLevel(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{0, "low"},
		{39.9, "low"},
		{40, "medium"},
		{59.9, "medium"},
		{60, "high"},
		{79.9, "high"},
		{80, "critical"},
		{100, "critical"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, core.SpamLevel(tt.confidence), "confidence %.1f", tt.confidence)
	}
}

func TestEmptyResult(t *testing.T) {
	result := core.EmptyResult(core.MethodRules)

	assert.False(t, result.IsSpam)
	assert.Equal(t, 0.0, result.Confidence)
	assert.NotNil(t, result.Indicators)
	assert.Empty(t, result.Indicators)
	assert.Equal(t, core.MethodRules, result.Method)
	assert.False(t, result.AnalyzedAt.IsZero())
}
