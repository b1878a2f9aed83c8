// Package autosubmit periodically re-submits a file of cracked hashes and records
// every line it has forwarded in the hash list's dedup record.
package autosubmit

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/client/report"
	"github.com/jabbercracky/jabbercracky-client/internal/client/storage"
	"github.com/jabbercracky/jabbercracky-client/internal/models"
)

// DefaultInterval is the pause between two submission cycles.
const DefaultInterval = 5 * time.Minute

// Submitter uploads a results file for a hash list.
type Submitter interface {
	SubmitHashList(ctx context.Context, id, filePath string) (*models.SubmissionResult, error)
}

// Recorder is the dedup record of one hash list.
type Recorder interface {
	Load() (storage.Set, error)
	AppendNew(candidates []string, known storage.Set) (storage.Set, error)
}

// Loop re-submits one file to one hash list until its context is cancelled.
type Loop struct {
	submitter Submitter
	record    Recorder
	id        string
	filePath  string

	interval time.Duration
	out      io.Writer
	log      *zap.Logger

	cycles int
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the pause between cycles.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) { l.interval = d }
}

// WithOutput sets where result lines are printed.
func WithOutput(w io.Writer) Option {
	return func(l *Loop) { l.out = w }
}

// WithLogger sets the diagnostics logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// New returns a Loop submitting filePath to hash list id.
func New(submitter Submitter, record Recorder, id, filePath string, opts ...Option) *Loop {
	l := &Loop{
		submitter: submitter,
		record:    record,
		id:        id,
		filePath:  filePath,
		interval:  DefaultInterval,
		out:       os.Stdout,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cycles returns how many cycles have completed.
func (l *Loop) Cycles() int { return l.cycles }

// Run executes cycles until ctx is done and then returns ctx.Err().
// A failed submission is reported and the loop carries on; a failure of the
// dedup record itself ends the loop with that error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.cycle(ctx); err != nil {
			return err
		}
		l.cycles++
		l.log.Info("auto-submit cycle done",
			zap.String("hash_list_id", l.id),
			zap.Int("cycle", l.cycles),
			zap.Duration("next_in", l.interval),
		)

		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Loop) cycle(ctx context.Context) error {
	known, err := l.record.Load()
	if err != nil {
		return err
	}

	res, err := l.submitter.SubmitHashList(ctx, l.id, l.filePath)
	if err != nil {
		fmt.Fprintf(l.out, "[!] [ID: %s] Error submitting game data: %v\n", l.id, err)
		l.log.Error("submission failed, retrying next cycle",
			zap.String("hash_list_id", l.id),
			zap.Error(err),
		)
	} else {
		fmt.Fprintln(l.out, report.Submission(l.id, res))
	}

	lines, err := storage.ReadLines(l.filePath)
	if err != nil {
		l.log.Error("cannot read submission file, record not updated",
			zap.String("file", l.filePath),
			zap.Error(err),
		)
		return nil
	}

	updated, err := l.record.AppendNew(lines, known)
	if err != nil {
		return err
	}
	l.log.Debug("dedup record updated",
		zap.String("hash_list_id", l.id),
		zap.Int("known", len(known)),
		zap.Int("appended", len(updated)-len(known)),
	)
	return nil
}
