package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/adapters/store"
	"github.com/mlefebvre/spamguard/internal/core"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteUserRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	user := createUser(t, s, "marie@example.com")

	got, err := s.UserByEmail(context.Background(), "MARIE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Name, got.Name)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())

	err = s.CreateUser(context.Background(), &core.User{Name: "Autre", Email: "marie@example.com"})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	_, err = s.UserByID(context.Background(), 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteAnalysisRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	user := createUser(t, s, "marie@example.com")

	saved := &core.Analysis{
		UserID:     user.ID,
		Text:       "URGENT gagnez 1000€",
		IsSpam:     true,
		Confidence: 92.5,
		Indicators: []string{"urgent", "gagner"},
		Flags:      core.Flags{MoneySymbol: true, AllCaps: true},
		Method:     core.MethodML,
		AnalyzedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveAnalysis(context.Background(), saved))
	require.NotZero(t, saved.ID)

	got, err := s.GetAnalysis(context.Background(), user.ID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Text, got.Text)
	assert.True(t, got.IsSpam)
	assert.Equal(t, 92.5, got.Confidence)
	assert.Equal(t, []string{"urgent", "gagner"}, got.Indicators)
	assert.Equal(t, saved.Flags, got.Flags)
	assert.Equal(t, core.MethodML, got.Method)
	assert.WithinDuration(t, saved.AnalyzedAt, got.AnalyzedAt, time.Second)
}

func TestSQLiteListAndPaginate(t *testing.T) {
	s := newSQLiteStore(t)
	user := createUser(t, s, "marie@example.com")
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		saveAnalysis(t, s, user.ID, i%2 == 0, 70, now.Add(time.Duration(i)*time.Minute))
	}

	page1, total, err := s.ListAnalyses(context.Background(), user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)
	// Newest first.
	assert.True(t, page1[0].AnalyzedAt.After(page1[1].AnalyzedAt))

	page3, _, err := s.ListAnalyses(context.Background(), user.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}

func TestSQLiteDeleteAndClear(t *testing.T) {
	s := newSQLiteStore(t)
	marie := createUser(t, s, "marie@example.com")
	paul := createUser(t, s, "paul@example.com")
	now := time.Now().UTC()

	entry := saveAnalysis(t, s, marie.ID, true, 90, now)
	saveAnalysis(t, s, marie.ID, false, 60, now)
	kept := saveAnalysis(t, s, paul.ID, false, 60, now)

	// Ownership is enforced on both delete paths.
	assert.ErrorIs(t, s.DeleteAnalysis(context.Background(), paul.ID, entry.ID), core.ErrNotFound)
	require.NoError(t, s.DeleteAnalysis(context.Background(), marie.ID, entry.ID))

	require.NoError(t, s.ClearAnalyses(context.Background(), marie.ID))
	_, total, err := s.ListAnalyses(context.Background(), marie.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	got, err := s.GetAnalysis(context.Background(), paul.ID, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, kept.ID, got.ID)
}

func TestSQLiteStats(t *testing.T) {
	s := newSQLiteStore(t)
	user := createUser(t, s, "marie@example.com")
	now := time.Now().UTC()

	saveAnalysis(t, s, user.ID, true, 90, now.Add(-time.Hour))
	saveAnalysis(t, s, user.ID, false, 70, now.Add(-48*time.Hour))

	stats, err := s.Stats(context.Background(), user.ID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Spam)
	assert.Equal(t, int64(1), stats.Legitimate)
	assert.Equal(t, 50.0, stats.SpamRate)
	assert.Equal(t, 80.0, stats.AverageConfidence)
	assert.Equal(t, int64(1), stats.Recent.Total)
	assert.Equal(t, int64(1), stats.Recent.Spam)
}
