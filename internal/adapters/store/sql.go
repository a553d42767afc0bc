package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/core"
)

// sqlStore implements core.Store over database/sql. The SQLite and MySQL
// adapters share it and differ only in driver, DSN and schema DDL.
// Timestamps are stored as UTC RFC 3339 strings so both backends compare
// them consistently.
type sqlStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// CreateUser registers a user, assigning its ID.
func (s *sqlStore) CreateUser(ctx context.Context, user *core.User) error {
	var exists int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)`, user.Email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("store: check email: %w", err)
	}
	if exists > 0 {
		return core.ErrDuplicateEmail
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, user.Name, user.Email, user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: user id: %w", err)
	}
	user.ID = id
	return nil
}

// UserByEmail looks a user up by email, case-insensitively.
func (s *sqlStore) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE LOWER(email) = LOWER(?)
	`, email))
}

// UserByID looks a user up by ID.
func (s *sqlStore) UserByID(ctx context.Context, id int64) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE id = ?
	`, id))
}

func (s *sqlStore) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// SaveAnalysis stores a history entry, assigning its ID.
func (s *sqlStore) SaveAnalysis(ctx context.Context, analysis *core.Analysis) error {
	indicators, err := json.Marshal(analysis.Indicators)
	if err != nil {
		return fmt.Errorf("store: marshal indicators: %w", err)
	}
	flags, err := json.Marshal(analysis.Flags)
	if err != nil {
		return fmt.Errorf("store: marshal flags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO spam_analyses (user_id, text, is_spam, confidence, indicators, flags, method, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, analysis.UserID, analysis.Text, analysis.IsSpam, analysis.Confidence,
		string(indicators), string(flags), analysis.Method, formatTime(analysis.AnalyzedAt))
	if err != nil {
		return fmt.Errorf("store: insert analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: analysis id: %w", err)
	}
	analysis.ID = id
	return nil
}

// ListAnalyses returns a page of the user's history, newest first, plus the
// total entry count.
func (s *sqlStore) ListAnalyses(ctx context.Context, userID int64, page, perPage int) ([]*core.Analysis, int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM spam_analyses WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("store: count analyses: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, is_spam, confidence, indicators, flags, method, analyzed_at
		FROM spam_analyses
		WHERE user_id = ?
		ORDER BY analyzed_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list analyses: %w", err)
	}
	defer rows.Close()

	analyses := []*core.Analysis{}
	for rows.Next() {
		a, err := s.scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: list analyses: %w", err)
	}
	return analyses, total, nil
}

// GetAnalysis fetches one entry owned by the user.
func (s *sqlStore) GetAnalysis(ctx context.Context, userID, id int64) (*core.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, is_spam, confidence, indicators, flags, method, analyzed_at
		FROM spam_analyses
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("store: get analysis: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("store: get analysis: %w", err)
		}
		return nil, core.ErrNotFound
	}
	return s.scanAnalysis(rows)
}

func (s *sqlStore) scanAnalysis(rows *sql.Rows) (*core.Analysis, error) {
	var a core.Analysis
	var indicators, flags, analyzedAt string
	err := rows.Scan(&a.ID, &a.UserID, &a.Text, &a.IsSpam, &a.Confidence,
		&indicators, &flags, &a.Method, &analyzedAt)
	if err != nil {
		return nil, fmt.Errorf("store: scan analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(indicators), &a.Indicators); err != nil {
		s.logger.Warn("Malformed indicators JSON in history row", zap.Int64("id", a.ID), zap.Error(err))
		a.Indicators = []string{}
	}
	if err := json.Unmarshal([]byte(flags), &a.Flags); err != nil {
		s.logger.Warn("Malformed flags JSON in history row", zap.Int64("id", a.ID), zap.Error(err))
	}
	a.AnalyzedAt = parseTime(analyzedAt)
	return &a, nil
}

// DeleteAnalysis removes one entry owned by the user.
func (s *sqlStore) DeleteAnalysis(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM spam_analyses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("store: delete analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete analysis: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ClearAnalyses removes the user's whole history.
func (s *sqlStore) ClearAnalyses(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM spam_analyses WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("store: clear analyses: %w", err)
	}
	return nil
}

// Stats aggregates the user's history; since bounds the recent window.
func (s *sqlStore) Stats(ctx context.Context, userID int64, since time.Time) (*core.UserStats, error) {
	stats := &core.UserStats{}
	var confidenceSum sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_spam THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(confidence), 0)
		FROM spam_analyses WHERE user_id = ?
	`, userID).Scan(&stats.Total, &stats.Spam, &confidenceSum)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_spam THEN 1 ELSE 0 END), 0)
		FROM spam_analyses WHERE user_id = ? AND analyzed_at >= ?
	`, userID, formatTime(since)).Scan(&stats.Recent.Total, &stats.Recent.Spam)
	if err != nil {
		return nil, fmt.Errorf("store: recent stats: %w", err)
	}

	finalizeStats(stats, confidenceSum.Float64)
	return stats, nil
}

// Close closes the underlying database.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Fixed-width fractional seconds, unlike RFC3339Nano which trims trailing
// zeros. Equal width keeps the string comparisons in ORDER BY and the
// recent-window filter consistent with time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
