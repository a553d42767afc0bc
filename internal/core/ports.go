package core

import (
	"context"
	"time"
)

// Analyzer is the ML detection path. It may fail when the model artifact is
// missing or unreadable; callers decide how to degrade.
type Analyzer interface {
	Analyze(text string) (*AnalysisResult, error)
}

// FallbackAnalyzer is the deterministic rule-based path. It cannot fail.
type FallbackAnalyzer interface {
	Analyze(text string) *AnalysisResult
}

// Store persists user accounts and analysis history.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)

	SaveAnalysis(ctx context.Context, analysis *Analysis) error
	ListAnalyses(ctx context.Context, userID int64, page, perPage int) ([]*Analysis, int64, error)
	GetAnalysis(ctx context.Context, userID, id int64) (*Analysis, error)
	DeleteAnalysis(ctx context.Context, userID, id int64) error
	ClearAnalyses(ctx context.Context, userID int64) error
	Stats(ctx context.Context, userID int64, since time.Time) (*UserStats, error)
}
