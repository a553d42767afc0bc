package core

import (
	"errors"
	"time"
)

// Class labels produced by the classifier.
const (
	LabelSpam = "spam"
	LabelHam  = "ham"
)

// Analysis provenance values reported in results.
const (
	MethodML    = "ml"
	MethodRules = "rules"
)

// Storage errors shared by all store adapters.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Flags are the raw-text pattern signals computed for every analysis,
// regardless of which detection path produced the classification.
type Flags struct {
	MultipleExclamations bool `json:"multipleExclamations"`
	AllCaps              bool `json:"allCaps"`
	SuspiciousURL        bool `json:"suspiciousUrl"`
	PhoneNumber          bool `json:"phoneNumber"`
	MoneySymbol          bool `json:"moneySymbol"`
	ExcessivePunctuation bool `json:"excessivePunctuation"`
}

// AnalysisResult is the unified result shape produced by both the ML and the
// rule-based paths. Confidence is a percentage tied to the probability of
// the returned label.
type AnalysisResult struct {
	IsSpam     bool      `json:"isSpam"`
	Confidence float64   `json:"confidence"`
	Indicators []string  `json:"indicators"`
	Flags      Flags     `json:"flags"`
	Method     string    `json:"method"`
	AnalyzedAt time.Time `json:"-"`
}

// EmptyResult is the fixed result for empty or whitespace-only input.
func EmptyResult(method string) *AnalysisResult {
	return &AnalysisResult{
		IsSpam:     false,
		Confidence: 0,
		Indicators: []string{},
		Method:     method,
		AnalyzedAt: time.Now(),
	}
}

// SpamLevel buckets a confidence percentage into four severity bands. Both
// detection paths share these thresholds.
func SpamLevel(confidence float64) string {
	switch {
	case confidence < 40:
		return "low"
	case confidence < 60:
		return "medium"
	case confidence < 80:
		return "high"
	default:
		return "critical"
	}
}

// User is a registered account that owns analysis history.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Analysis is a persisted history entry wrapping an AnalysisResult.
type Analysis struct {
	ID         int64
	UserID     int64
	Text       string
	IsSpam     bool
	Confidence float64
	Indicators []string
	Flags      Flags
	Method     string
	AnalyzedAt time.Time
}

// UserStats aggregates a user's analysis history.
type UserStats struct {
	Total             int64   `json:"total"`
	Spam              int64   `json:"spam"`
	Legitimate        int64   `json:"legitimate"`
	SpamRate          float64 `json:"spamRate"`
	AverageConfidence float64 `json:"averageConfidence"`
	Recent            Recent  `json:"recent"`
}

// Recent covers the trailing 24 hours of a user's history.
type Recent struct {
	Total      int64 `json:"total"`
	Spam       int64 `json:"spam"`
	Legitimate int64 `json:"legitimate"`
}
