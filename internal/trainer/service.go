package trainer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/core"
)

// Service wraps training with retrain-on-append. Runs are serialized by a
// mutex; the artifact swap inside Train is atomic, so readers never observe
// a partial model.
type Service struct {
	cfg    Config
	logger *zap.Logger
	mu     sync.Mutex
}

// NewService creates a training service.
func NewService(cfg Config, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// Retrain re-fits the pipeline from the current dataset and replaces the
// artifact.
func (s *Service) Retrain() (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Train(s.cfg, s.logger)
}

// AppendAndRetrain adds one labeled example to the dataset, then retrains.
// The example is appended before training so a training failure still leaves
// the dataset updated for the retry.
func (s *Service) AppendAndRetrain(text, label string) (*Report, error) {
	if label != core.LabelSpam && label != core.LabelHam {
		return nil, fmt.Errorf("%w: unknown label %q", ErrDatasetInvalid, label)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty example text", ErrDatasetInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendExample(text, label); err != nil {
		return nil, err
	}
	s.logger.Info("Appended labeled example",
		zap.String("label", label),
		zap.Int("text_length", len(text)))

	return Train(s.cfg, s.logger)
}

func (s *Service) appendExample(text, label string) error {
	f, err := os.OpenFile(s.cfg.DatasetPath, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetMissing, err)
	}
	defer f.Close()

	// A hand-edited dataset may lack a trailing newline; appending straight
	// onto it would merge the new row into the last record.
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("trainer: append example: %w", err)
	}
	if size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return fmt.Errorf("trainer: append example: %w", err)
		}
		if last[0] != '\n' {
			if _, err := f.Write([]byte("\n")); err != nil {
				return fmt.Errorf("trainer: append example: %w", err)
			}
		}
	}

	// Column order must match the header; look it up instead of assuming.
	textIdx, labelIdx, width, err := s.columnLayout()
	if err != nil {
		return err
	}
	row := make([]string, width)
	row[textIdx] = text
	row[labelIdx] = label

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("trainer: append example: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("trainer: append example: %w", err)
	}
	return nil
}

func (s *Service) columnLayout() (textIdx, labelIdx, width int, err error) {
	f, err := os.Open(s.cfg.DatasetPath)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrDatasetMissing, err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrDatasetInvalid, err)
	}
	textIdx, labelIdx = -1, -1
	for i, name := range header {
		switch name {
		case s.cfg.TextColumn:
			textIdx = i
		case s.cfg.LabelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return 0, 0, 0, fmt.Errorf("%w: columns %q and %q required",
			ErrDatasetInvalid, s.cfg.TextColumn, s.cfg.LabelColumn)
	}
	return textIdx, labelIdx, len(header), nil
}
