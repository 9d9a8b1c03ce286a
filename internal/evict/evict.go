package evict

import (
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"dircap/internal/config"
	"dircap/internal/fsops"
	"dircap/internal/history"
	"dircap/internal/metrics"
	"dircap/internal/safety"
	"dircap/internal/walk"
)

// Logger is the progress sink the engine reports to.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
	verbose bool
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Engine enforces the size cap on a single directory tree: one walk to
// measure, and if the tree is over the goal, a second mtime-ordered walk
// that deletes oldest-first until the running total is at or below it.
type Engine struct {
	cfg       *config.Config
	logger    Logger
	deleter   fsops.Deleter
	validator *safety.Validator
	metrics   *metrics.Metrics
	history   *history.DB

	deleted int
	freed   uint64
	pruned  int
}

// New creates an Engine for the given (finalized) configuration.
func New(cfg *config.Config, logger *log.Logger) *Engine {
	l := &stdLogger{Logger: logger, verbose: cfg.Verbose}
	if logger == nil {
		l.Logger = log.Default()
	}
	return &Engine{
		cfg:       cfg,
		logger:    l,
		deleter:   fsops.OSDeleter{},
		validator: safety.NewValidator(cfg.Root),
	}
}

// SetDeleter overrides the filesystem deleter. Used by tests.
func (e *Engine) SetDeleter(d fsops.Deleter) {
	e.deleter = d
}

// SetHistory attaches an eviction-history database.
func (e *Engine) SetHistory(db *history.DB) {
	e.history = db
}

// SetMetrics attaches run metrics.
func (e *Engine) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// Run performs the two-pass cap enforcement. The two walks are
// independent: if another process mutates the tree between them the
// running total can diverge from on-disk reality. That is an accepted
// limitation, the tool assumes it is the sole writer for the run.
func (e *Engine) Run() error {
	start := time.Now()

	entries, err := walk.Walk(e.cfg.Root)
	if err != nil {
		return err
	}
	size := walk.TotalSize(entries)

	goal := e.cfg.GoalBytes
	e.logger.Info("initial size",
		"size", humanize.IBytes(size),
		"goal", humanize.IBytes(goal),
		"entries", len(entries),
	)
	if e.metrics != nil {
		e.metrics.SizeBytes.WithLabelValues("initial").Set(float64(size))
		if e.cfg.DryRun {
			e.metrics.DryRun.Set(1)
		}
	}

	if size <= goal {
		e.logger.Info("no need to delete anything, exiting")
		e.finish(size, start)
		return nil
	}

	ordered, err := walk.WalkByModTime(e.cfg.Root)
	if err != nil {
		return err
	}

	action := "deleting"
	historyAction := history.ActionDelete
	if e.cfg.DryRun {
		action = "would delete"
		historyAction = history.ActionDryRun
	}

	for _, entry := range ordered {
		// Only counted entries are eviction targets. Directories are
		// cleaned up solely via ancestor pruning; special files (fifos,
		// sockets, devices) never contributed to the total in pass 1 and
		// must not be deleted or subtracted here.
		if !entry.Counted() {
			e.logger.Debug("skipping uncounted entry", "path", entry.Path)
			continue
		}

		// Size was captured by the walk, before any deletion: metadata is
		// gone once the file is removed.
		size -= uint64(entry.Size)
		e.logger.Info(action,
			"path", entry.Path,
			"freed", humanize.IBytes(uint64(entry.Size)),
			"size_now", humanize.IBytes(size),
		)
		e.record(historyAction, entry.Path, entry.Size, size)

		if !e.cfg.DryRun {
			if err := e.validator.ValidateDeleteTarget(entry.Path); err != nil {
				return fmt.Errorf("validating %s: %w", entry.Path, err)
			}
			if err := e.deleter.Remove(entry.Path); err != nil {
				return fmt.Errorf("deleting %s: %w", entry.Path, err)
			}
			if !e.cfg.KeepParents {
				e.pruneAncestors(entry.Path, size)
			}
		}

		e.deleted++
		e.freed += uint64(entry.Size)
		if e.metrics != nil {
			e.metrics.FilesDeletedTotal.Inc()
			e.metrics.BytesFreedTotal.Add(float64(entry.Size))
		}

		if size <= goal {
			e.logger.Info("size is now under limit, exiting",
				"size", humanize.IBytes(size),
			)
			break
		}
	}

	e.finish(size, start)
	return nil
}

func (e *Engine) finish(size uint64, start time.Time) {
	elapsed := time.Since(start).Seconds()
	if e.metrics != nil {
		e.metrics.SizeBytes.WithLabelValues("final").Set(float64(size))
		e.metrics.RunDurationSeconds.Set(elapsed)
	}
	e.logger.Info("run complete",
		"deleted", e.deleted,
		"freed", humanize.IBytes(e.freed),
		"dirs_pruned", e.pruned,
		"final_size", humanize.IBytes(size),
		"duration", fmt.Sprintf("%.3fs", elapsed),
	)
}

// record writes one event to the history database. History is an
// observability artifact: a failed write is logged, never fatal.
func (e *Engine) record(action, path string, size int64, running uint64) {
	if e.history == nil {
		return
	}
	if err := e.history.RecordEviction(action, path, size, running); err != nil {
		e.logger.Error("failed to record history", "path", path, "error", err)
	}
}
