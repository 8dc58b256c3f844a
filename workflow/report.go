package workflow

import (
	"sort"
	"time"

	"github.com/andrius-ordojan/video-renamer/console"
	"github.com/andrius-ordojan/video-renamer/media"
)

const (
	ExitOK     = 0
	ExitFailed = 1
	ExitFatal  = 2
)

// Failure records why a single file was left untouched.
type Failure struct {
	Path  string
	Stage media.Stage
	Err   error
}

func (f Failure) Reason() string {
	if f.Err == nil {
		return "unknown"
	}
	return f.Err.Error()
}

type Report struct {
	Root   string
	DryRun bool

	Discovered int
	Extracted  int
	Renamed    int
	Skipped    int

	Failures []Failure
	Warnings []string

	Elapsed time.Duration
}

func (r *Report) addFailures(failures ...Failure) {
	r.Failures = append(r.Failures, failures...)
	sort.SliceStable(r.Failures, func(i, j int) bool { return r.Failures[i].Path < r.Failures[j].Path })
}

func (r Report) Failed() bool {
	return len(r.Failures) > 0
}

func (r Report) ExitCode() int {
	if r.Failed() {
		return ExitFailed
	}
	return ExitOK
}

// Print lists every failure on stderr and, from level 1 up, a closing
// summary.
func (r Report) Print(out *console.Printer) {
	for _, f := range r.Failures {
		out.Error("%s failed for %s: %s", f.Stage, f.Path, f.Reason())
	}

	verb := "Renamed"
	if r.DryRun {
		verb = "Would rename"
	}
	out.Success("Done! %s %d of %d video files (%d skipped, %d failed) in %s",
		verb, r.Renamed, r.Discovered, r.Skipped, len(r.Failures), r.Elapsed.Round(time.Millisecond))
}
