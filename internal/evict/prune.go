package evict

import (
	"path/filepath"

	"dircap/internal/history"
	"dircap/internal/safety"
)

// pruneAncestors removes now-empty parent directories of a just-deleted
// file, walking upward from the immediate parent. The walk stops at the
// first ancestor outside the managed root, or at the first failed
// removal. Removal failure is the loop's normal termination signal, not
// an error to surface: "directory not empty" is the common case. The
// managed root itself is inside its own boundary, so it is removed too
// if the run empties it completely.
func (e *Engine) pruneAncestors(path string, running uint64) {
	for dir := filepath.Dir(path); safety.HasPathPrefix(dir, e.cfg.Root); dir = filepath.Dir(dir) {
		if err := e.deleter.RemoveDir(dir); err != nil {
			return
		}
		e.logger.Info("removed empty directory", "path", dir)
		e.record(history.ActionPruneDir, dir, 0, running)
		e.pruned++
		if e.metrics != nil {
			e.metrics.DirsPrunedTotal.Inc()
		}
	}
}
