// SPDX-License-Identifier: Apache-2.0

package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xataio/anonymiser/internal/json"
	"github.com/xataio/anonymiser/internal/progress"
	"github.com/xataio/anonymiser/pkg/anonymiser"
	loglib "github.com/xataio/anonymiser/pkg/log"
)

// Masker reads requests encoded as JSON lines, masks them in batches and
// writes the masked requests as JSON lines, in the same order.
type Masker struct {
	masker       anonymiser.Masker
	logger       loglib.Logger
	bar          progress.Bar
	workers      int
	batchSize    int
	maxLineBytes int
}

type Config struct {
	// Workers masking each batch concurrently. Defaults to 4.
	Workers int
	// BatchSize is the number of lines read before masking. Defaults to 1000.
	BatchSize int
	// MaxLineBytes is the maximum size of a single line. Defaults to 1MiB.
	MaxLineBytes int
}

type Option func(*Masker)

const (
	defaultWorkers      = 4
	defaultBatchSize    = 1000
	defaultMaxLineBytes = 1024 * 1024
)

var ErrInvalidLine = errors.New("invalid json line")

func New(cfg *Config, masker anonymiser.Masker, opts ...Option) *Masker {
	m := &Masker{
		masker:       masker,
		logger:       loglib.NewNoopLogger(),
		bar:          progress.NewNoopBar(),
		workers:      cfg.workers(),
		batchSize:    cfg.batchSize(),
		maxLineBytes: cfg.maxLineBytes(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithLogger(l loglib.Logger) Option {
	return func(m *Masker) {
		m.logger = loglib.NewModuleLogger(l, "jsonl_masker")
	}
}

func WithProgressBar(bar progress.Bar) Option {
	return func(m *Masker) {
		m.bar = bar
	}
}

// Mask processes the lines of r until EOF and returns the number of masked
// records. Blank lines are skipped.
func (m *Masker) Mask(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, m.maxLineBytes)), m.maxLineBytes)
	writer := bufio.NewWriter(w)

	total := 0
	lineNum := 0
	batch := make([]*anonymiser.Request, 0, m.batchSize)
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		req := &anonymiser.Request{}
		if err := json.Unmarshal(line, req); err != nil {
			m.logger.Debug("invalid json line", loglib.Fields{"line": lineNum, "content": loglib.Redacted(line)})
			return total, fmt.Errorf("%w: line %d: %w", ErrInvalidLine, lineNum, err)
		}
		if err := req.Validate(); err != nil {
			return total, fmt.Errorf("%w: line %d: %w", ErrInvalidLine, lineNum, err)
		}
		batch = append(batch, req)

		if len(batch) == m.batchSize {
			if err := m.flush(ctx, batch, writer); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("reading input: %w", err)
	}

	if len(batch) > 0 {
		if err := m.flush(ctx, batch, writer); err != nil {
			return total, err
		}
		total += len(batch)
	}

	if err := writer.Flush(); err != nil {
		return total, fmt.Errorf("writing output: %w", err)
	}

	m.logger.Info("json lines masked", loglib.Fields{loglib.RecordsField: total})
	return total, nil
}

func (m *Masker) flush(ctx context.Context, batch []*anonymiser.Request, w *bufio.Writer) error {
	masked, err := m.masker.MaskAll(ctx, batch, m.workers)
	if err != nil {
		return fmt.Errorf("masking batch: %w", err)
	}

	for _, req := range masked {
		line, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encoding masked record: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if err := m.bar.Add(len(masked)); err != nil {
		m.logger.Warn(err, "updating progress bar")
	}
	return nil
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return defaultWorkers
}

func (c *Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return defaultBatchSize
}

func (c *Config) maxLineBytes() int {
	if c.MaxLineBytes > 0 {
		return c.MaxLineBytes
	}
	return defaultMaxLineBytes
}
