// Package rename applies canonical filenames to an album's files. It
// never touches tag content. Renames are non-transactional: files
// renamed before a failure stay renamed, and re-running converges
// because canonical names are deterministic.
package rename

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kstrohbeck/maestro/internal/match"
	"github.com/kstrohbeck/maestro/internal/report"
)

// tmpSuffix is used to break rename cycles (e.g. two tracks swapping
// names) with a two-phase move.
const tmpSuffix = ".maestro-tmp"

// Op is a single planned rename, in folder-relative names.
type Op struct {
	From string
	To   string

	// orig is the name the file had when the plan was made; From can
	// move to a temporary name during cycle breaking.
	orig string
}

// Plan computes the renames needed to bring matched files to their
// canonical names. Files already named canonically are recorded as
// skipped in the summary.
func Plan(res match.Result, sum *report.Summary) []Op {
	var ops []Op
	for _, p := range res.Pairs {
		target := p.Track.CanonicalFilename()
		if p.File.Rel == target {
			sum.AddSkipped(p.File.Rel)
			continue
		}
		ops = append(ops, Op{From: p.File.Rel, To: target, orig: p.File.Rel})
	}
	return ops
}

// Apply executes the planned renames. Collisions with files that are
// themselves about to move are deferred and retried; true cycles break
// through a temporary name. Per-file failures are collected in the
// summary, not returned: a failed rename never aborts the rest.
func Apply(folder string, ops []Op, sum *report.Summary, log zerolog.Logger) {
	pending := make([]Op, len(ops))
	copy(pending, ops)

	// Names still owned by a pending source. A target occupied by one
	// of these will free up once that op runs.
	pendingSrc := make(map[string]bool, len(pending))
	for _, op := range pending {
		pendingSrc[op.From] = true
	}

	for len(pending) > 0 {
		progress := false
		var deferred []Op

		for _, op := range pending {
			dst := filepath.Join(folder, filepath.FromSlash(op.To))
			if _, err := os.Lstat(dst); err == nil {
				deferred = append(deferred, op)
				continue
			}

			src := filepath.Join(folder, filepath.FromSlash(op.From))
			if err := os.Rename(src, dst); err != nil {
				sum.AddFailed(op.orig, fmt.Errorf("rename to %q: %w", op.To, err))
				delete(pendingSrc, op.From)
				progress = true
				continue
			}

			log.Debug().Str("from", op.From).Str("to", op.To).Msg("renamed")
			sum.AddOK(op.orig, "renamed to "+op.To)
			delete(pendingSrc, op.From)
			progress = true
		}

		if progress {
			pending = deferred
			continue
		}

		// Every remaining op is blocked. If one of them is blocked by
		// another pending source we have a cycle: move the blocker to a
		// temporary name and try again.
		if blocker := findBlocker(pending, pendingSrc); blocker >= 0 {
			op := &pending[blocker]
			tmp := op.From + tmpSuffix
			src := filepath.Join(folder, filepath.FromSlash(op.From))
			if err := os.Rename(src, filepath.Join(folder, filepath.FromSlash(tmp))); err != nil {
				sum.AddFailed(op.orig, fmt.Errorf("rename to temporary name: %w", err))
				delete(pendingSrc, op.From)
				pending = append(pending[:blocker], pending[blocker+1:]...)
				continue
			}
			log.Debug().Str("from", op.From).Str("to", tmp).Msg("moved aside to break rename cycle")
			delete(pendingSrc, op.From)
			pendingSrc[tmp] = true
			op.From = tmp
			continue
		}

		// Remaining targets are occupied by files outside the plan.
		for _, op := range pending {
			sum.AddFailed(op.orig, fmt.Errorf("target name %q already exists", op.To))
		}
		return
	}
}

// findBlocker returns the index of a pending op whose current name is
// the target of another pending op, or -1 if no such cycle exists.
func findBlocker(pending []Op, pendingSrc map[string]bool) int {
	for _, op := range pending {
		if !pendingSrc[op.To] {
			continue
		}
		for j := range pending {
			if pending[j].From == op.To {
				return j
			}
		}
	}
	return -1
}
