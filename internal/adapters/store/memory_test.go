package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/adapters/store"
	"github.com/mlefebvre/spamguard/internal/core"
)

func newStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	return store.NewMemoryStore(zap.NewNop())
}

func createUser(t *testing.T, s core.Store, email string) *core.User {
	t.Helper()
	user := &core.User{Name: "Marie", Email: email, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func saveAnalysis(t *testing.T, s core.Store, userID int64, isSpam bool, confidence float64, at time.Time) *core.Analysis {
	t.Helper()
	a := &core.Analysis{
		UserID:     userID,
		Text:       "un message",
		IsSpam:     isSpam,
		Confidence: confidence,
		Indicators: []string{},
		Method:     core.MethodML,
		AnalyzedAt: at,
	}
	require.NoError(t, s.SaveAnalysis(context.Background(), a))
	require.NotZero(t, a.ID)
	return a
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newStore(t)
	createUser(t, s, "marie@example.com")

	err := s.CreateUser(context.Background(), &core.User{Name: "Autre", Email: "MARIE@example.com"})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)
}

func TestUserLookups(t *testing.T) {
	s := newStore(t)
	user := createUser(t, s, "marie@example.com")

	byEmail, err := s.UserByEmail(context.Background(), "Marie@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := s.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	_, err = s.UserByEmail(context.Background(), "absent@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.UserByID(context.Background(), 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListAnalysesNewestFirst(t *testing.T) {
	s := newStore(t)
	user := createUser(t, s, "marie@example.com")
	now := time.Now().UTC()

	oldest := saveAnalysis(t, s, user.ID, false, 60, now.Add(-2*time.Hour))
	middle := saveAnalysis(t, s, user.ID, true, 90, now.Add(-time.Hour))
	newest := saveAnalysis(t, s, user.ID, false, 70, now)

	list, total, err := s.ListAnalyses(context.Background(), user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	assert.Equal(t, newest.ID, list[0].ID)
	assert.Equal(t, middle.ID, list[1].ID)
	assert.Equal(t, oldest.ID, list[2].ID)
}

func TestListAnalysesPagination(t *testing.T) {
	s := newStore(t)
	user := createUser(t, s, "marie@example.com")
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		saveAnalysis(t, s, user.ID, false, 60, now.Add(time.Duration(i)*time.Minute))
	}

	page1, total, err := s.ListAnalyses(context.Background(), user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page1, 2)

	page3, _, err := s.ListAnalyses(context.Background(), user.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	empty, total, err := s.ListAnalyses(context.Background(), user.ID, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, empty)
}

func TestListAnalysesScopedToUser(t *testing.T) {
	s := newStore(t)
	marie := createUser(t, s, "marie@example.com")
	paul := createUser(t, s, "paul@example.com")
	now := time.Now().UTC()

	saveAnalysis(t, s, marie.ID, true, 90, now)
	saveAnalysis(t, s, paul.ID, false, 60, now)

	list, total, err := s.ListAnalyses(context.Background(), marie.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, marie.ID, list[0].UserID)
}

func TestGetAndDeleteAnalysisOwnership(t *testing.T) {
	s := newStore(t)
	marie := createUser(t, s, "marie@example.com")
	paul := createUser(t, s, "paul@example.com")
	entry := saveAnalysis(t, s, marie.ID, true, 90, time.Now().UTC())

	got, err := s.GetAnalysis(context.Background(), marie.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	// Another user cannot see or delete the entry.
	_, err = s.GetAnalysis(context.Background(), paul.ID, entry.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	err = s.DeleteAnalysis(context.Background(), paul.ID, entry.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.DeleteAnalysis(context.Background(), marie.ID, entry.ID))
	_, err = s.GetAnalysis(context.Background(), marie.ID, entry.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestClearAnalyses(t *testing.T) {
	s := newStore(t)
	marie := createUser(t, s, "marie@example.com")
	paul := createUser(t, s, "paul@example.com")
	now := time.Now().UTC()

	saveAnalysis(t, s, marie.ID, true, 90, now)
	saveAnalysis(t, s, marie.ID, false, 60, now)
	kept := saveAnalysis(t, s, paul.ID, false, 60, now)

	require.NoError(t, s.ClearAnalyses(context.Background(), marie.ID))

	_, total, err := s.ListAnalyses(context.Background(), marie.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	// The other user's history is untouched.
	got, err := s.GetAnalysis(context.Background(), paul.ID, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, kept.ID, got.ID)
}

func TestStats(t *testing.T) {
	s := newStore(t)
	user := createUser(t, s, "marie@example.com")
	now := time.Now().UTC()
	since := now.Add(-24 * time.Hour)

	saveAnalysis(t, s, user.ID, true, 90, now.Add(-time.Hour))
	saveAnalysis(t, s, user.ID, true, 80, now.Add(-2*time.Hour))
	saveAnalysis(t, s, user.ID, false, 70, now.Add(-48*time.Hour))

	stats, err := s.Stats(context.Background(), user.ID, since)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Spam)
	assert.Equal(t, int64(1), stats.Legitimate)
	assert.Equal(t, 66.7, stats.SpamRate)
	assert.Equal(t, 80.0, stats.AverageConfidence)
	assert.Equal(t, int64(2), stats.Recent.Total)
	assert.Equal(t, int64(2), stats.Recent.Spam)
	assert.Equal(t, int64(0), stats.Recent.Legitimate)
}

func TestStatsEmptyHistory(t *testing.T) {
	s := newStore(t)
	user := createUser(t, s, "marie@example.com")

	stats, err := s.Stats(context.Background(), user.ID, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.SpamRate)
	assert.Zero(t, stats.AverageConfidence)
}
