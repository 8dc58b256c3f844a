package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andrius-ordojan/video-renamer/console"
	"github.com/andrius-ordojan/video-renamer/media"
)

type Options struct {
	Root       string
	Extensions []string
	Prefix     string

	// DryRun prints and checks the plan without renaming anything.
	DryRun bool
	// Dump prints the extracted metadata as JSON and stops before planning.
	Dump bool

	Workers   int
	Timeout   time.Duration
	ExactFPS  bool
	Collision CollisionPolicy

	Prober media.Prober
}

func (o Options) validate() error {
	if o.Root == "" {
		return errors.New("input directory not set")
	}
	if o.Prober == nil {
		return errors.New("prober not set")
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", o.Timeout)
	}
	return nil
}

// Run discovers, probes and renames every video under opts.Root. Only a bad
// configuration, an unreadable root or a cancelled ctx returns an error;
// per-file problems end up in Report.Failures.
func Run(ctx context.Context, opts Options, out *console.Printer) (Report, error) {
	start := time.Now()
	report := Report{Root: opts.Root, DryRun: opts.DryRun}

	if err := opts.validate(); err != nil {
		return report, err
	}

	files, err := Discover(opts.Root, opts.Extensions, func(path string, err error) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", path, err))
		out.Warn("Skipping unreadable directory `%s`: %v", path, err)
	})
	if err != nil {
		return report, fmt.Errorf("error occured while scanning input directory: %w", err)
	}
	report.Discovered = len(files)
	out.Progress("Found %d video files under `%s`", len(files), opts.Root)

	extractor := &media.Extractor{
		Prober:   opts.Prober,
		Timeout:  opts.Timeout,
		ExactFPS: opts.ExactFPS,
	}

	bar := out.Bar(len(files), "Probing")
	outcomes := extractAll(ctx, files, extractor, opts.Workers, func() { _ = bar.Add(1) })
	_ = bar.Finish()

	// An interrupted run leaves every file where it was.
	if err := ctx.Err(); err != nil {
		report.Elapsed = time.Since(start)
		return report, fmt.Errorf("interrupted before renaming: %w", err)
	}

	infos := make([]media.VideoInfo, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			report.addFailures(Failure{Path: o.Path, Stage: media.StageOf(o.Err), Err: o.Err})
			out.Detail("No metadata for `%s`: %v", o.Path, o.Err)
			continue
		}
		infos = append(infos, *o.Info)
	}
	report.Extracted = len(infos)
	out.Progress("Extracted metadata from %d of %d video files", len(infos), len(files))

	if opts.Dump {
		enc := json.NewEncoder(out.Out())
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return report, fmt.Errorf("failed to write metadata dump: %w", err)
		}
		report.Elapsed = time.Since(start)
		return report, nil
	}

	plan := CreatePlan(infos, opts.Prefix, opts.Collision)
	if opts.DryRun || out.Enabled(console.LevelDetail) {
		plan.PrintSummary(out)
	}

	if opts.DryRun {
		out.Progress("Checking %d planned renames (dry run)...", plan.Count(ActionRename))
	} else {
		out.Progress("Renaming %d video files...", plan.Count(ActionRename))
	}

	res := plan.Apply(opts.DryRun, out)
	report.Renamed = res.Renamed
	report.Skipped = res.Skipped
	report.addFailures(res.Failures...)

	report.Elapsed = time.Since(start)
	return report, nil
}
