// Package store provides the persistence adapters for user accounts and
// analysis history: an in-memory store for tests and development, and SQL
// stores backed by SQLite or MySQL.
package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/core"
)

// MemoryStore is an in-memory implementation of core.Store.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]*core.User
	analyses   map[int64]*core.Analysis
	nextUser   int64
	nextRecord int64
	logger     *zap.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]*core.User),
		analyses:   make(map[int64]*core.Analysis),
		nextUser:   1,
		nextRecord: 1,
		logger:     logger,
	}
}

// CreateUser registers a user, assigning its ID.
func (s *MemoryStore) CreateUser(_ context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return core.ErrDuplicateEmail
		}
	}
	user.ID = s.nextUser
	s.nextUser++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// UserByEmail looks a user up by email, case-insensitively.
func (s *MemoryStore) UserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrNotFound
}

// UserByID looks a user up by ID.
func (s *MemoryStore) UserByID(_ context.Context, id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// SaveAnalysis stores a history entry, assigning its ID.
func (s *MemoryStore) SaveAnalysis(_ context.Context, analysis *core.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis.ID = s.nextRecord
	s.nextRecord++
	clone := *analysis
	clone.Indicators = append([]string(nil), analysis.Indicators...)
	s.analyses[analysis.ID] = &clone
	return nil
}

// ListAnalyses returns a page of the user's history, newest first, plus the
// total entry count.
func (s *MemoryStore) ListAnalyses(_ context.Context, userID int64, page, perPage int) ([]*core.Analysis, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*core.Analysis, 0)
	for _, a := range s.analyses {
		if a.UserID == userID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].AnalyzedAt.Equal(all[j].AnalyzedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].AnalyzedAt.After(all[j].AnalyzedAt)
	})

	total := int64(len(all))
	start := (page - 1) * perPage
	if start >= len(all) {
		return []*core.Analysis{}, total, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}

	out := make([]*core.Analysis, 0, end-start)
	for _, a := range all[start:end] {
		clone := *a
		out = append(out, &clone)
	}
	return out, total, nil
}

// GetAnalysis fetches one entry owned by the user.
func (s *MemoryStore) GetAnalysis(_ context.Context, userID, id int64) (*core.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analyses[id]
	if !ok || a.UserID != userID {
		return nil, core.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

// DeleteAnalysis removes one entry owned by the user.
func (s *MemoryStore) DeleteAnalysis(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analyses[id]
	if !ok || a.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.analyses, id)
	return nil
}

// ClearAnalyses removes the user's whole history.
func (s *MemoryStore) ClearAnalyses(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.analyses {
		if a.UserID == userID {
			delete(s.analyses, id)
		}
	}
	return nil
}

// Stats aggregates the user's history; since bounds the recent window.
func (s *MemoryStore) Stats(_ context.Context, userID int64, since time.Time) (*core.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.UserStats{}
	var confidenceSum float64
	for _, a := range s.analyses {
		if a.UserID != userID {
			continue
		}
		stats.Total++
		confidenceSum += a.Confidence
		if a.IsSpam {
			stats.Spam++
		}
		if !a.AnalyzedAt.Before(since) {
			stats.Recent.Total++
			if a.IsSpam {
				stats.Recent.Spam++
			}
		}
	}
	finalizeStats(stats, confidenceSum)
	return stats, nil
}

// finalizeStats derives the ratio fields shared by every adapter.
func finalizeStats(stats *core.UserStats, confidenceSum float64) {
	stats.Legitimate = stats.Total - stats.Spam
	stats.Recent.Legitimate = stats.Recent.Total - stats.Recent.Spam
	if stats.Total > 0 {
		stats.SpamRate = round1(float64(stats.Spam) / float64(stats.Total) * 100)
		stats.AverageConfidence = round1(confidenceSum / float64(stats.Total))
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
