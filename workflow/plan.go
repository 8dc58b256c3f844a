package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrius-ordojan/video-renamer/console"
	"github.com/andrius-ordojan/video-renamer/media"
)

var ErrCollision = errors.New("target name collides with another file in this run")

// CollisionPolicy decides what happens when two files in one run map to the
// same new name.
type CollisionPolicy string

const (
	// CollisionFail keeps the name for the first file in path order and
	// reports the rest as failures.
	CollisionFail CollisionPolicy = "fail"
	// CollisionSuffix appends _2, _3, ... before the extension.
	CollisionSuffix CollisionPolicy = "suffix"
)

func (c *CollisionPolicy) UnmarshalText(b []byte) error {
	switch p := CollisionPolicy(strings.ToLower(string(b))); p {
	case CollisionFail, CollisionSuffix:
		*c = p
		return nil
	default:
		return fmt.Errorf("unknown collision policy %q (want %q or %q)", string(b), CollisionFail, CollisionSuffix)
	}
}

type Plan struct {
	actions []action
}

func (p *Plan) addAction(a action) {
	p.actions = append(p.actions, a)
}

// Targets maps each planned source to its target, for rename and skip
// actions only.
func (p *Plan) Targets() map[string]string {
	targets := make(map[string]string, len(p.actions))
	for _, a := range p.actions {
		if a.aType != ActionConflict {
			targets[a.source] = a.target
		}
	}
	return targets
}

func (p *Plan) Count(t actionType) int {
	n := 0
	for _, a := range p.actions {
		if a.aType == t {
			n++
		}
	}
	return n
}

// CreatePlan works out the new name of every video. infos should be in a
// stable order; the first file to claim a name keeps it.
func CreatePlan(infos []media.VideoInfo, prefix string, policy CollisionPolicy) Plan {
	if policy == "" {
		policy = CollisionFail
	}

	var plan Plan
	claimed := make(map[string]string, len(infos))

	for _, info := range infos {
		target := info.TargetPath(prefix)

		if target == info.Path {
			claimed[target] = info.Path
			plan.addAction(newSkipAction(info.Path))
			continue
		}

		if owner, taken := claimed[target]; taken {
			if policy == CollisionFail {
				plan.addAction(newConflictAction(info.Path, target, owner))
				continue
			}
			target = nextFreeName(target, info.Path, claimed)
			if target == info.Path {
				claimed[target] = info.Path
				plan.addAction(newSkipAction(info.Path))
				continue
			}
		}

		claimed[target] = info.Path
		plan.addAction(newRenameAction(info.Path, target))
	}

	return plan
}

// nextFreeName numbers target from _2 up until the name is neither claimed in
// this run nor present on disk. A candidate equal to source is free, so a
// file suffixed by an earlier run keeps its name.
func nextFreeName(target, source string, claimed map[string]string) string {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if candidate == source {
			return candidate
		}
		if _, taken := claimed[candidate]; taken {
			continue
		}
		if _, err := os.Lstat(candidate); err == nil {
			continue
		}
		return candidate
	}
}

func (p *Plan) PrintSummary(out *console.Printer) {
	out.Plain("Detailed Actions:")
	for _, a := range p.actions {
		out.Plain("  %s", a.summary())
	}
	out.Plain("")

	out.Plain("Plan Summary:")
	out.Plain("  Files to rename: %d", p.Count(ActionRename))
	out.Plain("  Files skipped: %d", p.Count(ActionSkip))
	out.Plain("  Conflicts: %d", p.Count(ActionConflict))
	out.Plain("")
}

type ApplyResult struct {
	Renamed  int
	Skipped  int
	Failures []Failure
}

// Apply carries out every action. One failed rename does not stop the
// rest. With dryRun set, each action is only checked against the
// filesystem.
func (p *Plan) Apply(dryRun bool, out *console.Printer) ApplyResult {
	var res ApplyResult

	for _, a := range p.actions {
		if dryRun {
			if err := a.check(); err != nil {
				res.Failures = append(res.Failures, Failure{Path: a.source, Stage: media.StageRename, Err: err})
				continue
			}
			if a.aType == ActionRename {
				out.Detail("Would rename `%s` to `%s`", a.source, a.target)
				res.Renamed++
			} else {
				res.Skipped++
			}
			continue
		}

		msg, err := a.execute()
		if err != nil {
			res.Failures = append(res.Failures, Failure{Path: a.source, Stage: media.StageRename, Err: err})
			continue
		}

		switch a.aType {
		case ActionRename:
			res.Renamed++
		case ActionSkip:
			res.Skipped++
		}
		out.Detail("%s", msg)
	}

	return res
}
